package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out at the named level. Unknown level names
// fall back to info.
func New(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(LevelFromString(level))
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	return l
}

// LevelFromString parses a logrus level name. "none" silences everything short of a
// panic.
func LevelFromString(s string) logrus.Level {
	if strings.EqualFold(s, "none") {
		return logrus.PanicLevel
	}
	level, err := logrus.ParseLevel(s)
	if nil != err {
		return logrus.InfoLevel
	}
	return level
}

// Discard is a logger that drops everything. Packages use it when no logger is given.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}
