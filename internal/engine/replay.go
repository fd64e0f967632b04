package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/score"
)

// maxReplayTicks bounds a replay of a chart that never completes.
const maxReplayTicks = 1 << 24

// Replay plays recorded inputs against a fresh session with the same fixed tick and
// returns the final score. Inputs must be ordered by tick. A run of ticks ticks stops
// where the recording stopped; with 0 it runs until the chart is done.
func Replay(config Config, chart *game.Chart, inputs []game.Input, tick time.Duration, ticks uint64, log logrus.FieldLogger) (score.Snapshot, score.Stats) {
	config.Record = false
	s := New(config, log)
	s.Load(chart)

	last := uint64(maxReplayTicks)
	if ticks > 0 {
		last = ticks
	}
	next := 0
	for t := uint64(1); t <= last; t++ {
		for next < len(inputs) && inputs[next].Tick <= t {
			s.OnInputEvent(inputs[next].Lane, inputs[next].Pressed)
			next++
		}
		s.Advance(tick)
		if ticks == 0 && next >= len(inputs) && s.Done() {
			break
		}
	}
	return s.ScoreState(), s.Stats()
}
