package input

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/sirupsen/logrus"
)

// From linux/input-event-codes.h
const evKey = 0x01

const (
	released = 0
	pressed  = 1
	repeated = 2
)

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// codeRunes maps evdev key codes to the runes a US layout produces, so the lane keys
// flag works for both sources.
var codeRunes = map[uint16]rune{
	2: '1', 3: '2', 4: '3', 5: '4', 6: '5', 7: '6', 8: '7', 9: '8', 10: '9', 11: '0',
	12: '-', 13: '=',
	16: 'q', 17: 'w', 18: 'e', 19: 'r', 20: 't', 21: 'y', 22: 'u', 23: 'i', 24: 'o', 25: 'p',
	26: '[', 27: ']',
	30: 'a', 31: 's', 32: 'd', 33: 'f', 34: 'g', 35: 'h', 36: 'j', 37: 'k', 38: 'l',
	39: ';', 40: '\'',
	44: 'z', 45: 'x', 46: 'c', 47: 'v', 48: 'b', 49: 'n', 50: 'm',
	51: ',', 52: '.', 53: '/',
}

// CodeRune returns the rune of an evdev key code, or 0.
func CodeRune(code uint16) rune {
	return codeRunes[code]
}

// decode reads key events from r until it fails, sending lane presses and releases.
// Auto repeat is dropped since a held lane stays held.
func decode(ctx context.Context, r io.Reader, lanes func(r rune) int, out chan<- Event) error {
	var ev keyEvent
	for {
		if err := binary.Read(r, binary.LittleEndian, &ev); nil != err {
			return err
		}
		if ev.Type != evKey || ev.Value == repeated {
			continue
		}
		lane := lanes(CodeRune(ev.Code))
		if lane < 0 {
			continue
		}
		select {
		case out <- Event{Kind: Lane, Lane: lane, Pressed: ev.Value == pressed}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadInput opens an evdev keyboard and reads it in the background. Unlike the
// terminal it reports real releases.
func ReadInput(ctx context.Context, kbd string, lanes func(r rune) int, out chan<- Event, log logrus.FieldLogger) error {
	file, err := os.Open(kbd)
	if err != nil {
		return fmt.Errorf("unable to open input device: %w", err)
	}
	go func() {
		<-ctx.Done()
		file.Close()
	}()
	go func() {
		err := decode(ctx, file, lanes, out)
		if nil != err && !errors.Is(err, context.Canceled) && !errors.Is(err, os.ErrClosed) {
			log.WithError(err).Error("input: unable to read keyboard device")
		}
	}()
	return nil
}
