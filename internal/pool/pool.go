package pool

import (
	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/logging"
)

// Pool recycles note slots. Slots live in an arena addressed by Handle, free slots
// sit on a stack and each lane keeps the handles of its live notes in spawn order.
// The pool grows on demand and never shrinks.
type Pool struct {
	notes []Note
	free  []Handle
	lanes [][]Handle
	seq   uint64

	log logrus.FieldLogger
}

func New(lanes, capacity int, log logrus.FieldLogger) *Pool {
	if lanes < 1 {
		lanes = 1
	}
	if capacity < 0 {
		capacity = 0
	}
	if log == nil {
		log = logging.Discard()
	}
	p := &Pool{
		notes: make([]Note, 0, capacity),
		free:  make([]Handle, 0, capacity),
		lanes: make([][]Handle, lanes),
		log:   log,
	}
	for i := 0; i < capacity; i++ {
		p.grow()
	}
	return p
}

func (p *Pool) grow() Handle {
	h := Handle(len(p.notes))
	p.notes = append(p.notes, Note{Lane: -1})
	p.free = append(p.free, h)
	return h
}

// Lanes is the number of lanes the pool tracks.
func (p *Pool) Lanes() int {
	return len(p.lanes)
}

// Cap is the number of slots ever allocated.
func (p *Pool) Cap() int {
	return len(p.notes)
}

// Available is the number of free slots.
func (p *Pool) Available() int {
	return len(p.free)
}

// Active is the number of slots that are not free.
func (p *Pool) Active() int {
	return len(p.notes) - len(p.free)
}

// Seq is the spawn sequence of the most recent Spawn, 0 before the first.
func (p *Pool) Seq() uint64 {
	return p.seq
}

// Acquire returns a free slot, allocating one if none is left.
func (p *Pool) Acquire() Handle {
	if len(p.free) == 0 {
		p.grow()
	}
	h := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return h
}

// Spawn acquires a slot, starts it traveling in lane and adds it to the lane.
// It returns None when lane is out of range.
func (p *Pool) Spawn(lane int, speed, offset float64) Handle {
	if lane < 0 || lane >= len(p.lanes) {
		return None
	}
	h := p.Acquire()
	p.seq++
	p.notes[h].spawn(lane, speed, offset, p.seq)
	p.lanes[lane] = append(p.lanes[lane], h)
	return h
}

// Get returns the slot for h, or nil for an unknown handle.
func (p *Pool) Get(h Handle) *Note {
	if h < 0 || int(h) >= len(p.notes) {
		return nil
	}
	return &p.notes[h]
}

// Live returns the live handles of lane in spawn order. The slice is owned by the
// pool and is only valid until the next Spawn or Release.
func (p *Pool) Live(lane int) []Handle {
	if lane < 0 || lane >= len(p.lanes) {
		return nil
	}
	return p.lanes[lane]
}

// Release returns a slot to the free stack and drops it from its lane.
// Releasing a free slot does nothing.
func (p *Pool) Release(h Handle) {
	n := p.Get(h)
	if n == nil {
		assert(false, "release of unknown handle %d", h)
		p.log.Debugf("pool: release of unknown handle %d", h)
		return
	}
	if n.State == Free {
		assert(false, "double release of handle %d", h)
		p.log.Debugf("pool: handle %d already free", h)
		return
	}
	if n.Lane >= 0 && n.Lane < len(p.lanes) {
		p.lanes[n.Lane] = remove(p.lanes[n.Lane], h)
	}
	n.State = Free
	n.Lane = -1
	p.free = append(p.free, h)
}

// ReleaseAll frees every slot that is not already free.
func (p *Pool) ReleaseAll() {
	for i := range p.notes {
		if p.notes[i].State != Free {
			p.Release(Handle(i))
		}
	}
	for i := range p.lanes {
		p.lanes[i] = p.lanes[i][:0]
	}
}

// Each calls fn for every live handle of every lane. fn may release the handle it is
// given.
func (p *Pool) Each(fn func(h Handle, n *Note)) {
	var buf [32]Handle
	for lane := range p.lanes {
		live := append(buf[:0], p.lanes[lane]...)
		for _, h := range live {
			fn(h, &p.notes[h])
		}
	}
}

func remove(s []Handle, h Handle) []Handle {
	for i, x := range s {
		if x == h {
			copy(s[i:], s[i+1:])
			return s[:len(s)-1]
		}
	}
	return s
}
