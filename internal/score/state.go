package score

import (
	"git.lost.host/meutraa/lanes/internal/game"
)

// Points are the base scores of the successful outcomes.
type Points struct {
	Perfect int
	Good    int
	Ok      int
}

func DefaultPoints() Points {
	return Points{Perfect: 100, Good: 50, Ok: 25}
}

// Base is the unmultiplied score for o.
func (p Points) Base(o game.Outcome) int {
	switch o {
	case game.Perfect:
		return p.Perfect
	case game.Good:
		return p.Good
	case game.Ok:
		return p.Ok
	case game.TooEarly, game.Miss:
		return 0
	}
	return 0
}

// State is the score of one session. It is replaced, not cleared, on reset.
type State struct {
	TotalScore int
	Combo      int
	MaxCombo   int
	Counts     [game.NumOutcomes]int
	History    []game.Outcome
}

func NewState() *State {
	return &State{History: []game.Outcome{}}
}

// Apply records o and returns the points it added. A successful outcome increments
// the combo first, so the hit that reaches combo N scores base * (1 + N/10).
func (s *State) Apply(o game.Outcome, points Points) int {
	s.Counts[o]++
	s.History = append(s.History, o)

	switch o {
	case game.Perfect, game.Good, game.Ok:
		s.Combo++
		added := points.Base(o) * (1 + s.Combo/10)
		s.TotalScore += added
		if s.Combo > s.MaxCombo {
			s.MaxCombo = s.Combo
		}
		return added
	case game.TooEarly, game.Miss:
		s.Combo = 0
	}
	return 0
}

// Stats is a snapshot of the outcome counts.
type Stats struct {
	Perfect  int
	Good     int
	Ok       int
	Miss     int
	TooEarly int
}

func (s *State) Stats() Stats {
	return Stats{
		Perfect:  s.Counts[game.Perfect],
		Good:     s.Counts[game.Good],
		Ok:       s.Counts[game.Ok],
		Miss:     s.Counts[game.Miss],
		TooEarly: s.Counts[game.TooEarly],
	}
}

// Successful is the number of Perfect, Good and Ok judgements.
func (s Stats) Successful() int {
	return s.Perfect + s.Good + s.Ok
}

// Ratio is successful / (successful + miss). Early presses are not counted, and an
// empty session is a perfect one.
func (s Stats) Ratio() float64 {
	total := s.Successful() + s.Miss
	if total == 0 {
		return 1
	}
	return float64(s.Successful()) / float64(total)
}

// Snapshot is the read-only view of score and combo.
type Snapshot struct {
	TotalScore int
	Combo      int
	MaxCombo   int
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{TotalScore: s.TotalScore, Combo: s.Combo, MaxCombo: s.MaxCombo}
}
