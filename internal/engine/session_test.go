package engine

import (
	"testing"
	"time"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/pool"
	"git.lost.host/meutraa/lanes/internal/score"
)

const tick = 10 * time.Millisecond

func chart(bpm int, flags ...[]int) *game.Chart {
	steps := make([][]bool, len(flags))
	for i, row := range flags {
		steps[i] = make([]bool, game.DefaultLanes)
		for lane, on := range row {
			steps[i][lane] = on == 1
		}
	}
	return &game.Chart{BPM: bpm, Steps: steps, Lanes: game.DefaultLanes}
}

func testConfig() Config {
	c := DefaultConfig()
	c.Schedule.Delay = 0
	return c
}

func advance(s *Session, ticks int) {
	for i := 0; i < ticks; i++ {
		s.Advance(tick)
	}
}

func lanesOf(s *Session) []int {
	lanes := []int{}
	s.Notes(func(h pool.Handle, n pool.Note) {
		lanes = append(lanes, n.Lane)
	})
	return lanes
}

func TestChartSpawnsAtBeat(t *testing.T) {
	s := New(testConfig(), nil)
	completed := 0
	s.OnComplete = func() { completed++ }
	s.Load(chart(120, []int{1}, []int{0}))

	advance(s, 99)
	if s.Live() != 0 {
		t.Fatalf("note spawned before 1s")
	}
	advance(s, 1)
	if lanes := lanesOf(s); len(lanes) != 1 || lanes[0] != 0 {
		t.Fatalf("lanes after 1s = %v, want [0]", lanes)
	}
	advance(s, 300)
	if completed != 1 {
		t.Fatalf("completed %d times", completed)
	}
}

func TestAutoMissScenario(t *testing.T) {
	c := testConfig()
	c.SpawnDistance = 0
	s := New(c, nil)
	s.Load(&game.Chart{BPM: 120})
	s.SpawnNote(0)
	s.SpawnNote(0)
	s.OnInputEvent(0, true)
	s.OnInputEvent(0, false)
	s.OnInputEvent(0, true)
	s.OnInputEvent(0, false)
	advance(s, 1)
	if s.ScoreState().Combo != 2 {
		t.Fatalf("combo %d before miss", s.ScoreState().Combo)
	}

	if !s.SpawnNote(3) {
		t.Fatalf("spawn failed")
	}
	var h pool.Handle = pool.None
	s.Notes(func(handle pool.Handle, n pool.Note) {
		if n.Lane == 3 {
			h = handle
		}
	})
	misses := 0
	for i := 0; i < 100; i++ {
		before := s.Stats().Miss
		advance(s, 1)
		if s.Stats().Miss != before {
			misses++
			if d, ok := s.SignedDistance(h); ok && d >= -200 {
				t.Fatalf("missed at distance %v", d)
			}
		}
	}
	if misses != 1 || s.Stats().Miss != 1 || s.ScoreState().Combo != 0 {
		t.Fatalf("misses %d stats %+v score %+v", misses, s.Stats(), s.ScoreState())
	}
	if s.Live() != 0 {
		t.Fatalf("%d notes still live", s.Live())
	}
}

func TestPerfectRun(t *testing.T) {
	s := New(testConfig(), nil)
	s.Load(&game.Chart{BPM: 120})
	for i := 0; i < 3; i++ {
		s.SpawnNote(6)
		// 1600 units at 800/s reach the hit line after 2s
		advance(s, 199)
		s.OnInputEvent(6, true)
		advance(s, 1)
		s.OnInputEvent(6, false)
		advance(s, 1)
	}
	if st := s.Stats(); st.Perfect != 3 {
		t.Fatalf("stats %+v", st)
	}
	if sc := s.ScoreState(); sc.TotalScore != 300 || sc.Combo != 3 || sc.MaxCombo != 3 {
		t.Fatalf("score %+v", sc)
	}
}

func TestEmptyLanePress(t *testing.T) {
	s := New(testConfig(), nil)
	s.Load(chart(120, []int{1}))
	s.OnInputEvent(2, true)
	advance(s, 1)
	if s.Stats().Miss != 1 || s.ScoreState().Combo != 0 {
		t.Fatalf("stats %+v", s.Stats())
	}
}

func TestAutoMissResolvesBeforePress(t *testing.T) {
	c := testConfig()
	c.SpawnDistance = -195
	s := New(c, nil)
	s.Load(&game.Chart{BPM: 120})
	s.SpawnNote(1)
	// this tick moves the note 8 units, past the miss line, before the press is seen
	s.OnInputEvent(1, true)
	advance(s, 1)
	st := s.Stats()
	if st.Miss != 2 || st.Perfect+st.Good+st.Ok+st.TooEarly != 0 {
		t.Fatalf("stats %+v, want an auto miss and an empty lane press", st)
	}
}

func TestInputsApplyInArrivalOrder(t *testing.T) {
	c := testConfig()
	c.SpawnDistance = 0
	c.Speed = 0
	s := New(c, nil)
	s.Load(&game.Chart{BPM: 120})
	s.SpawnNote(0)
	s.OnInputEvent(0, true)
	s.OnInputEvent(0, true)
	s.OnInputEvent(0, false)
	s.OnInputEvent(0, true)
	advance(s, 1)
	h := s.History()
	if len(h) != 2 || h[0] != game.Perfect || h[1] != game.Miss {
		t.Fatalf("history %v", h)
	}
	if !s.Held(0) {
		t.Fatalf("lane 0 should still be held")
	}
	in := s.Inputs()
	if len(in) != 4 || in[0].Tick != 1 || in[3].Tick != 1 {
		t.Fatalf("recorded %v", in)
	}
}

func TestResetRoundTrip(t *testing.T) {
	s := New(testConfig(), nil)
	c := chart(240, []int{1, 1, 1}, []int{0, 1}, []int{1, 0, 0, 1}, []int{1})
	s.Load(c)
	advance(s, 60)
	s.OnInputEvent(0, true)
	s.OnInputEvent(5, true)
	advance(s, 20)
	if s.Live() == 0 || len(s.History()) == 0 {
		t.Fatalf("nothing happened before reset")
	}

	s.Reset()
	s.Load(c)
	if sc := s.ScoreState(); sc != (score.Snapshot{}) {
		t.Fatalf("score after reset %+v", sc)
	}
	if s.Stats() != (score.Stats{}) || s.Live() != 0 || len(lanesOf(s)) != 0 {
		t.Fatalf("stats %+v live %d", s.Stats(), s.Live())
	}
	for lane := 0; lane < s.Lanes(); lane++ {
		if s.Held(lane) {
			t.Fatalf("lane %d held after reset", lane)
		}
	}
	if s.Feedback().Started() || s.Scheduler().Cursor() != 0 {
		t.Fatalf("feedback or scheduler not reset")
	}
}

func TestPauseStopsTime(t *testing.T) {
	s := New(testConfig(), nil)
	s.Load(chart(120, []int{1}))
	s.SetPaused(true)
	advance(s, 500)
	if s.Live() != 0 || s.Tick() != 0 {
		t.Fatalf("paused session advanced")
	}
	s.SetPaused(false)
	advance(s, 100)
	if s.Live() != 1 {
		t.Fatalf("live %d after resume", s.Live())
	}
}

func TestSignedDistanceOfFreeNote(t *testing.T) {
	s := New(testConfig(), nil)
	if _, ok := s.SignedDistance(pool.Handle(0)); ok {
		t.Fatalf("free slot reported a distance")
	}
	if _, ok := s.SignedDistance(pool.None); ok {
		t.Fatalf("no handle reported a distance")
	}
	if s.SpawnNote(-1) || s.SpawnNote(game.DefaultLanes) {
		t.Fatalf("out of range spawn succeeded")
	}
}

func TestReplayReproducesScore(t *testing.T) {
	c := chart(150,
		[]int{1, 0, 1}, []int{0},
		[]int{0, 1}, []int{0},
		[]int{1, 1, 1}, []int{0},
		[]int{0, 0, 0, 1}, []int{0},
	)
	config := testConfig()
	s := New(config, nil)
	s.Load(c)
	// press every lane on a fixed rhythm, hitting some notes and missing others
	for i := 0; i < 700; i++ {
		if i%37 == 0 {
			s.OnInputEvent(i%4, true)
		}
		if i%37 == 5 {
			s.OnInputEvent((i-5)%4, false)
		}
		s.Advance(tick)
	}
	for !s.Done() {
		s.Advance(tick)
	}

	sc, st := Replay(config, c, s.Inputs(), tick, s.Tick(), nil)
	if sc != s.ScoreState() || st != s.Stats() {
		t.Fatalf("replay %+v %+v, want %+v %+v", sc, st, s.ScoreState(), s.Stats())
	}
}

func TestScheduledNoteStartsAtSpawnDistance(t *testing.T) {
	s := New(testConfig(), nil)
	s.Load(chart(120, []int{0, 1}))
	advance(s, 100)
	var h pool.Handle = pool.None
	s.Notes(func(handle pool.Handle, n pool.Note) { h = handle })
	if d, ok := s.SignedDistance(h); !ok || d != 1600 {
		t.Fatalf("distance on the spawn tick %v, want 1600", d)
	}
	advance(s, 1)
	if d, _ := s.SignedDistance(h); d != 1592 {
		t.Fatalf("distance a tick later %v, want 1592", d)
	}
}

func TestReplayStopsWhereRecordingStopped(t *testing.T) {
	c := chart(120, []int{1})
	config := testConfig()
	config.Speed = 400
	s := New(config, nil)
	s.Load(c)
	// the note is still on its way when the recording ends
	advance(s, 150)
	if s.Stats().Miss != 0 || s.Live() != 1 {
		t.Fatalf("stats %+v live %d", s.Stats(), s.Live())
	}

	saved := DefaultConfig().WithSettings(config.Settings())
	if saved.Speed != 400 || saved.Schedule.Delay != 0 {
		t.Fatalf("settings not applied: %+v", saved)
	}
	if _, st := Replay(saved, c, s.Inputs(), tick, s.Tick(), nil); st != s.Stats() {
		t.Fatalf("replay stats %+v, want %+v", st, s.Stats())
	}
	if _, st := Replay(saved, c, s.Inputs(), tick, 0, nil); st.Miss != 1 {
		t.Fatalf("open ended replay stats %+v, want the late auto miss", st)
	}
}

func TestWithSettingsIgnoresMissingSettings(t *testing.T) {
	c := testConfig()
	c.Speed = 123
	if got := c.WithSettings(score.Settings{}); got.Speed != 123 {
		t.Fatalf("speed %v after empty settings", got.Speed)
	}
}
