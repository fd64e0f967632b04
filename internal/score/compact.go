package score

import (
	"git.lost.host/meutraa/lanes/internal/game"
)

// InputsCompact is a run of consecutive inputs on the same lane with the same
// direction. A sequence of runs keeps the original arrival order.
type InputsCompact struct {
	Lane    int
	Pressed bool
	Ticks   []uint64
}

func compactInputs(inputs []game.Input) []InputsCompact {
	runs := []InputsCompact{}
	for _, i := range inputs {
		n := len(runs)
		if n > 0 && runs[n-1].Lane == i.Lane && runs[n-1].Pressed == i.Pressed {
			runs[n-1].Ticks = append(runs[n-1].Ticks, i.Tick)
			continue
		}
		runs = append(runs, InputsCompact{Lane: i.Lane, Pressed: i.Pressed, Ticks: []uint64{i.Tick}})
	}
	return runs
}

func uncompactInputs(runs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, r := range runs {
		for _, t := range r.Ticks {
			ins = append(ins, game.Input{Tick: t, Lane: r.Lane, Pressed: r.Pressed})
		}
	}
	return ins
}
