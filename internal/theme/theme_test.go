package theme

import (
	"strings"
	"testing"

	"git.lost.host/meutraa/lanes/internal/game"
)

func TestLaneColor(t *testing.T) {
	if LaneColor(1) != sharpCol || LaneColor(13) != sharpCol || LaneColor(0) != naturalCol {
		t.Fatal("lane colors do not follow the octave")
	}
	if LaneColor(-1) != white {
		t.Fatal("negative lane colored")
	}
}

func TestRenderOutcome(t *testing.T) {
	var th Theme = &DefaultTheme{}
	for _, o := range game.Outcomes {
		s := th.RenderOutcome(o)
		if !strings.Contains(s, o.String()) {
			t.Fatalf("%q does not name %v", s, o)
		}
	}
	if th.RenderHitField(0, false) != barSym {
		t.Fatal("idle hit field is not the bar")
	}
	if !strings.Contains(th.RenderHitField(0, true), heldSym) {
		t.Fatal("held hit field is not highlighted")
	}
}
