package theme

import "git.lost.host/meutraa/lanes/internal/game"

type Theme interface {
	RenderNote(lane int) string
	RenderHitField(lane int, held bool) string
	RenderOutcome(o game.Outcome) string
	RenderLabel(o game.Outcome) string
}
