package input

import (
	"context"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/sirupsen/logrus"
)

// Keys turns terminal key presses into lane presses and releases. A terminal only
// reports presses, so a lane is released once no repeat arrives for releaseAfter.
type Keys struct {
	lanes        func(r rune) int
	releaseAfter time.Duration
	lanesOff     bool

	deadlines map[int]time.Time
}

// NewKeys maps runes with lanes. With lanesOff only control keys are reported, for
// when another source supplies lane input.
func NewKeys(lanes func(r rune) int, releaseAfter time.Duration, lanesOff bool) *Keys {
	return &Keys{
		lanes:        lanes,
		releaseAfter: releaseAfter,
		lanesOff:     lanesOff,
		deadlines:    map[int]time.Time{},
	}
}

// Key handles one key event received at now.
func (k *Keys) Key(ev keyboard.KeyEvent, now time.Time) []Event {
	if kind, ok := Control(ev.Key); ok {
		return []Event{{Kind: kind}}
	}
	if k.lanesOff || ev.Key != 0 {
		return nil
	}
	lane := k.lanes(ev.Rune)
	if lane < 0 {
		return nil
	}
	_, held := k.deadlines[lane]
	k.deadlines[lane] = now.Add(k.releaseAfter)
	if held {
		// auto repeat
		return nil
	}
	return []Event{{Kind: Lane, Lane: lane, Pressed: true}}
}

// Expire releases every lane whose deadline has passed.
func (k *Keys) Expire(now time.Time) []Event {
	var events []Event
	for lane, deadline := range k.deadlines {
		if !now.Before(deadline) {
			delete(k.deadlines, lane)
			events = append(events, Event{Kind: Lane, Lane: lane})
		}
	}
	return events
}

// Run reads the terminal keyboard until ctx is done or the keyboard fails.
func (k *Keys) Run(ctx context.Context, keys <-chan keyboard.KeyEvent, out chan<- Event, log logrus.FieldLogger) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	send := func(events []Event) {
		for _, ev := range events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-keys:
			if !ok {
				return
			}
			if nil != ev.Err {
				log.WithError(ev.Err).Error("input: unable to read keyboard")
				send([]Event{{Kind: Quit}})
				return
			}
			send(k.Key(ev, time.Now()))
		case now := <-ticker.C:
			send(k.Expire(now))
		}
	}
}
