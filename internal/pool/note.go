package pool

import (
	"time"
)

// State is the lifecycle phase of a note slot.
type State uint8

const (
	Free State = iota
	Traveling
	Resolving
)

func (s State) String() string {
	switch s {
	case Free:
		return "Free"
	case Traveling:
		return "Traveling"
	case Resolving:
		return "Resolving"
	}
	return "Unknown"
}

// Handle addresses a note slot in the pool. Handles stay valid for the life of the pool.
type Handle int32

// None is the zero value for "no note".
const None Handle = -1

type Note struct {
	Lane     int
	Position float64 // distance units, decreasing while traveling
	Speed    float64 // distance units per second
	State    State

	// Spawn sequence, used to keep lane order stable and to tell spawns apart
	Spawn uint64

	processed   bool
	resolveLeft time.Duration
}

// Processed reports whether the note was judged since it last spawned.
func (n *Note) Processed() bool {
	return n.processed
}

func (n *Note) spawn(lane int, speed, offset float64, seq uint64) {
	n.Lane = lane
	n.Speed = speed
	n.Position = offset
	n.State = Traveling
	n.Spawn = seq
	n.processed = false
	n.resolveLeft = 0
}

// SignedDistance is the note's distance to the hit line. Negative once it has passed.
func (n *Note) SignedDistance(hitOffset float64) float64 {
	return n.Position - hitOffset
}

// Judge marks the note as processed. It returns false if it already was, in which
// case nothing changes.
func (n *Note) Judge() bool {
	if n.processed {
		return false
	}
	n.processed = true
	return true
}

// Resolve starts the resolve phase for a judged note.
func (n *Note) Resolve(d time.Duration) {
	n.State = Resolving
	n.resolveLeft = d
}

// Event is what a note reports after an update.
type Event uint8

const (
	Nothing Event = iota
	AutoMiss
	Expired
)

// Update advances the note by dt. A traveling note that passes missDistance without
// being judged reports AutoMiss exactly once and starts resolving. A resolving note
// reports Expired when its resolve phase has run out.
func (n *Note) Update(dt time.Duration, hitOffset, missDistance float64, resolve time.Duration) Event {
	switch n.State {
	case Traveling:
		n.Position -= n.Speed * dt.Seconds()
		if n.SignedDistance(hitOffset) < -missDistance && n.Judge() {
			n.Resolve(resolve)
			return AutoMiss
		}
	case Resolving:
		n.resolveLeft -= dt
		if n.resolveLeft <= 0 {
			return Expired
		}
	case Free:
	}
	return Nothing
}
