package input

import (
	"github.com/eiannone/keyboard"
)

// Kind says what an Event asks the host to do.
type Kind uint8

const (
	Lane Kind = iota
	Quit
	Pause
	Restart
	Stats
)

// Event is one input from any source, delivered to the tick goroutine.
type Event struct {
	Kind    Kind
	Lane    int
	Pressed bool
}

// Control maps a terminal key to a host control, if it is one.
func Control(key keyboard.Key) (Kind, bool) {
	switch key {
	case keyboard.KeyCtrlC, keyboard.KeyCtrlQ:
		return Quit, true
	case keyboard.KeyEsc, keyboard.KeySpace:
		return Pause, true
	case keyboard.KeyCtrlR:
		return Restart, true
	case keyboard.KeyTab:
		return Stats, true
	}
	return Lane, false
}

// Drain moves every event already queued on events into fn, without blocking.
func Drain(events <-chan Event, fn func(Event)) {
	for {
		select {
		case ev := <-events:
			fn(ev)
		default:
			return
		}
	}
}
