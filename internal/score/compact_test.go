package score

import (
	"testing"

	"git.lost.host/meutraa/lanes/internal/game"
)

var compactTests = []struct {
	inputs  []game.Input
	compact []InputsCompact
}{
	{[]game.Input{}, []InputsCompact{}},
	{
		[]game.Input{{Tick: 100, Lane: 0, Pressed: true}, {Tick: 200, Lane: 3, Pressed: true}},
		[]InputsCompact{
			{Lane: 0, Pressed: true, Ticks: []uint64{100}},
			{Lane: 3, Pressed: true, Ticks: []uint64{200}},
		},
	},
	{
		[]game.Input{
			{Tick: 1, Lane: 1, Pressed: true},
			{Tick: 2, Lane: 1, Pressed: true},
			{Tick: 2, Lane: 1, Pressed: false},
			{Tick: 2, Lane: 0, Pressed: true},
			{Tick: 5, Lane: 1, Pressed: false},
		},
		[]InputsCompact{
			{Lane: 1, Pressed: true, Ticks: []uint64{1, 2}},
			{Lane: 1, Pressed: false, Ticks: []uint64{2}},
			{Lane: 0, Pressed: true, Ticks: []uint64{2}},
			{Lane: 1, Pressed: false, Ticks: []uint64{5}},
		},
	},
}

func TestCompactInputs(t *testing.T) {
	equal := func(p, q []InputsCompact) bool {
		if len(p) != len(q) {
			return false
		}
		for i := 0; i < len(p); i++ {
			pi, qi := p[i], q[i]
			if pi.Lane != qi.Lane || pi.Pressed != qi.Pressed {
				return false
			}
			if len(pi.Ticks) != len(qi.Ticks) {
				return false
			}
			for j := 0; j < len(pi.Ticks); j++ {
				if pi.Ticks[j] != qi.Ticks[j] {
					return false
				}
			}
		}
		return true
	}

	for _, test := range compactTests {
		out := compactInputs(test.inputs)
		if !equal(out, test.compact) {
			t.Log("out     ", out)
			t.Log("expected", test.compact)
			t.Fail()
		}
	}
}

func TestUncompactInputsKeepsOrder(t *testing.T) {
	for _, test := range compactTests {
		out := uncompactInputs(test.compact)
		if len(out) != len(test.inputs) {
			t.Log("out     ", out)
			t.Log("expected", test.inputs)
			t.Fail()
			continue
		}
		for i := range out {
			if out[i] != test.inputs[i] {
				t.Log("out     ", out)
				t.Log("expected", test.inputs)
				t.Fail()
				break
			}
		}
	}
}
