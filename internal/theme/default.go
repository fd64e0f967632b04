package theme

import (
	"fmt"

	"git.lost.host/meutraa/lanes/internal/game"
)

// Color is a 24 bit terminal color.
type Color struct {
	R, G, B uint8
}

func (c Color) Wrap(s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(lane int) string {
	return LaneColor(lane).Wrap(noteSym)
}

func (t *DefaultTheme) RenderHitField(lane int, held bool) string {
	if held {
		return LaneColor(lane).Wrap(heldSym)
	}
	return barSym
}

// RenderOutcome is the centred indicator shown after a judgement.
func (t *DefaultTheme) RenderOutcome(o game.Outcome) string {
	return fmt.Sprintf("\033[1m%v\033[0m", OutcomeColor(o).Wrap(fmt.Sprintf("%8v", o)))
}

// RenderLabel is the outcome name used in the stats panel.
func (t *DefaultTheme) RenderLabel(o game.Outcome) string {
	return OutcomeColor(o).Wrap(fmt.Sprintf("%8v", o))
}

const (
	noteSym = "⬤"
	heldSym = "▀"
	barSym  = "-"
)

var (
	// Lanes follow a chromatic octave, sharps are the dark lanes
	sharps     = [12]bool{1: true, 3: true, 6: true, 8: true, 10: true}
	naturalCol = Color{236, 195, 0}   // yellow
	sharpCol   = Color{0, 118, 236}   // blue
	white      = Color{255, 255, 255} // other white

	outcomeColors = map[game.Outcome]Color{
		game.Perfect:  {173, 236, 236}, // light blue
		game.Good:     {0, 236, 128},   // green
		game.Ok:       {236, 128, 0},   // orange
		game.TooEarly: {236, 0, 106},   // pink
		game.Miss:     {236, 30, 0},    // red
	}
)

func LaneColor(lane int) Color {
	if lane < 0 {
		return white
	}
	if sharps[lane%12] {
		return sharpCol
	}
	return naturalCol
}

func OutcomeColor(o game.Outcome) Color {
	col, ok := outcomeColors[o]
	if !ok {
		return white
	}
	return col
}
