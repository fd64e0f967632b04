package input

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// ErrNoMIDIPort is returned when no MIDI input matches the requested name.
var ErrNoMIDIPort = errors.New("no matching MIDI input")

// MIDILanes maps consecutive notes from Base upward onto lanes, a semitone per lane.
type MIDILanes struct {
	Base  uint8
	Lanes int
}

// Lane returns the lane played by key, or -1.
func (m MIDILanes) Lane(key uint8) int {
	if key < m.Base {
		return -1
	}
	lane := int(key - m.Base)
	if lane >= m.Lanes {
		return -1
	}
	return lane
}

// Event converts a note start or end on a mapped key into a lane event. A note on
// with zero velocity is a release.
func (m MIDILanes) Event(msg midi.Message) (Event, bool) {
	var ch, key, vel uint8
	pressed := false
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		pressed = true
	case msg.GetNoteEnd(&ch, &key):
	default:
		return Event{}, false
	}
	lane := m.Lane(key)
	if lane < 0 {
		return Event{}, false
	}
	return Event{Kind: Lane, Lane: lane, Pressed: pressed}, true
}

// findPort picks the port named want, or failing that the first whose name contains
// it, ignoring case.
func findPort(names []string, want string) (int, error) {
	for i, n := range names {
		if n == want {
			return i, nil
		}
	}
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), strings.ToLower(want)) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q among %v", ErrNoMIDIPort, want, names)
}

// ReadMIDI opens a MIDI input and forwards its notes until ctx is done. Like evdev
// it reports real releases. When the device fails every lane is released.
func ReadMIDI(ctx context.Context, port string, lanes MIDILanes, out chan<- Event, log logrus.FieldLogger) error {
	drv, err := rtmididrv.New()
	if nil != err {
		return fmt.Errorf("unable to open MIDI driver: %w", err)
	}
	ins, err := drv.Ins()
	if nil != err {
		drv.Close()
		return fmt.Errorf("unable to list MIDI inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	i, err := findPort(names, port)
	if nil != err {
		drv.Close()
		return err
	}
	var in drivers.In = ins[i]
	if err := in.Open(); nil != err {
		drv.Close()
		return fmt.Errorf("unable to open MIDI input %q: %w", names[i], err)
	}

	send := func(ev Event) {
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		if ev, ok := lanes.Event(msg); ok {
			send(ev)
		}
	}, midi.HandleError(func(listenErr error) {
		log.WithError(listenErr).WithField("port", names[i]).Warn("input: MIDI device failed, releasing lanes")
		go func() {
			for lane := 0; lane < lanes.Lanes; lane++ {
				send(Event{Kind: Lane, Lane: lane})
			}
		}()
	}))
	if nil != err {
		in.Close()
		drv.Close()
		return fmt.Errorf("unable to listen to MIDI input %q: %w", names[i], err)
	}
	log.WithField("port", names[i]).Info("input: MIDI connected")

	go func() {
		<-ctx.Done()
		stop()
		in.Close()
		drv.Close()
	}()
	return nil
}
