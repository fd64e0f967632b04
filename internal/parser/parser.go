package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/lanes/internal/game"
)

// ErrUnknownFormat is returned for chart files with an unrecognised extension.
var ErrUnknownFormat = errors.New("unknown chart format")

type Parser interface {
	Parse(file string) ([]*game.Chart, error)
}

// ForFile picks a parser by file extension.
func ForFile(file string, lanes int) (Parser, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json", ".chart", ".txt":
		return &JSONParser{Lanes: lanes}, nil
	case ".sm":
		return &StepManiaParser{Lanes: lanes, RowsPerBeat: DefaultRowsPerBeat}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, file)
}
