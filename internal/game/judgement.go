package game

// Outcome is the result of judging a single press or a missed note.
type Outcome uint8

const (
	Perfect Outcome = iota
	Good
	Ok
	TooEarly
	Miss

	// NumOutcomes is the number of distinct outcomes, used to size count tables.
	NumOutcomes = int(Miss) + 1
)

// Outcomes lists every outcome in window order.
var Outcomes = [NumOutcomes]Outcome{Perfect, Good, Ok, TooEarly, Miss}

func (o Outcome) String() string {
	switch o {
	case Perfect:
		return "Perfect"
	case Good:
		return "Good"
	case Ok:
		return "Ok"
	case TooEarly:
		return "TooEarly"
	case Miss:
		return "Miss"
	}
	return "Unknown"
}

// Successful reports whether the outcome keeps the combo going and consumes the note.
func (o Outcome) Successful() bool {
	switch o {
	case Perfect, Good, Ok:
		return true
	case TooEarly, Miss:
		return false
	}
	return false
}

// Indicator is the outcome shown to the player. An early press is shown as a miss.
func (o Outcome) Indicator() Outcome {
	if o == TooEarly {
		return Miss
	}
	return o
}

// Windows are the nested judgement radii in distance units from the hit line.
// Perfect <= Good <= Ok; anything further than Ok is too early.
type Windows struct {
	Perfect float64
	Good    float64
	Ok      float64
	// How far past the hit line a note may travel before it is missed
	Miss float64
}

func DefaultWindows() Windows {
	return Windows{Perfect: 50, Good: 100, Ok: 150, Miss: 200}
}

// Classify maps an absolute distance to an outcome. Boundaries are inclusive.
func (w Windows) Classify(abs float64) Outcome {
	switch {
	case abs <= w.Perfect:
		return Perfect
	case abs <= w.Good:
		return Good
	case abs <= w.Ok:
		return Ok
	}
	return TooEarly
}

// Valid reports whether the windows are ordered.
func (w Windows) Valid() bool {
	return w.Perfect >= 0 && w.Perfect <= w.Good && w.Good <= w.Ok && w.Miss >= 0
}
