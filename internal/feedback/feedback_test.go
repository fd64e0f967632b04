package feedback

import (
	"math"
	"testing"
	"time"
)

const eps = 1e-9

func TestAccuracyIsClamped(t *testing.T) {
	f := New(DefaultConfig(), nil)
	f.RegisterGoodHit()
	if f.Accuracy() != 1 {
		t.Fatalf("accuracy %v above 1", f.Accuracy())
	}
	for i := 0; i < 20; i++ {
		f.RegisterError()
	}
	if f.Accuracy() != 0 {
		t.Fatalf("accuracy %v below 0", f.Accuracy())
	}
	f.RegisterGoodHit()
	if math.Abs(f.Accuracy()-0.08) > eps {
		t.Fatalf("accuracy %v, want 0.08", f.Accuracy())
	}
}

func TestIdleUntilFirstJudgement(t *testing.T) {
	f := New(DefaultConfig(), nil)
	f.Update(time.Second)
	if f.Started() || f.Level() != 0 {
		t.Fatalf("started %v level %v before any judgement", f.Started(), f.Level())
	}
	f.RegisterError()
	if !f.Started() {
		t.Fatalf("not started after first judgement")
	}
	if math.Abs(f.Accuracy()-0.82) > eps {
		t.Fatalf("first error was not applied: %v", f.Accuracy())
	}
}

func TestVolumeSmoothsTowardTarget(t *testing.T) {
	f := New(DefaultConfig(), nil)
	f.Start()
	prev := f.Level()
	for i := 0; i < 10; i++ {
		f.Update(10 * time.Millisecond)
		if f.Level() <= prev || f.Level() > f.TargetVolume() {
			t.Fatalf("step %d: level %v prev %v target %v", i, f.Level(), prev, f.TargetVolume())
		}
		prev = f.Level()
	}
	// one 10ms step at rate 10 closes a tenth of the gap
	g := New(DefaultConfig(), nil)
	g.Start()
	g.Update(10 * time.Millisecond)
	if math.Abs(g.Level()-0.1) > eps {
		t.Fatalf("level %v, want 0.1", g.Level())
	}
	// long frames snap to the target instead of overshooting
	g.Update(time.Second)
	if math.Abs(g.Level()-g.TargetVolume()) > eps {
		t.Fatalf("level %v, target %v", g.Level(), g.TargetVolume())
	}
}

func TestCurveMapsAccuracy(t *testing.T) {
	c := DefaultConfig()
	c.Recovery = 0
	f := New(c, nil)
	for i := 0; i < 10; i++ {
		f.RegisterError()
	}
	if math.Abs(f.TargetVolume()-0.3) > eps {
		t.Fatalf("target at zero accuracy %v, want 0.3", f.TargetVolume())
	}
	c.PitchDepth = 0.5
	g := New(c, nil)
	for i := 0; i < 10; i++ {
		g.RegisterError()
	}
	g.Update(time.Second)
	if math.Abs(g.Pitch()-0.5) > eps {
		t.Fatalf("pitch %v, want 0.5", g.Pitch())
	}
}

func TestPassiveRecovery(t *testing.T) {
	f := New(DefaultConfig(), nil)
	f.RegisterError()
	f.Update(time.Second)
	if math.Abs(f.Accuracy()-0.84) > eps {
		t.Fatalf("accuracy %v, want 0.84", f.Accuracy())
	}
	f.Update(time.Hour)
	if f.Accuracy() != 1 {
		t.Fatalf("accuracy %v did not recover to 1", f.Accuracy())
	}
}

func TestPenaltyEscalatesAndClears(t *testing.T) {
	c := DefaultConfig()
	c.Recovery = 0
	c.PenaltyInterval = time.Second
	f := New(c, nil)

	for i := 0; i < 3; i++ {
		f.RegisterError()
	}
	if f.Penalty() != 0 {
		t.Fatalf("penalty %d at accuracy %v", f.Penalty(), f.Accuracy())
	}
	f.RegisterError() // 0.28
	if f.Penalty() != 1 {
		t.Fatalf("penalty %d right after crossing, want 1", f.Penalty())
	}
	f.RegisterError()
	if f.Penalty() != 1 {
		t.Fatalf("penalty %d after a second error below threshold, want 1", f.Penalty())
	}
	for i := 0; i < 25; i++ {
		f.Update(100 * time.Millisecond)
	}
	if f.Penalty() != 3 {
		t.Fatalf("penalty %d after 2.5s below, want 3", f.Penalty())
	}

	for f.Accuracy() < c.PenaltyThreshold {
		f.RegisterGoodHit()
	}
	if f.Penalty() != 0 {
		t.Fatalf("penalty %d after recovering, want 0", f.Penalty())
	}

	for f.Accuracy() >= c.PenaltyThreshold {
		f.RegisterError()
	}
	if f.Penalty() != 1 {
		t.Fatalf("penalty %d after dropping again, want 1", f.Penalty())
	}
}

func TestReset(t *testing.T) {
	f := New(DefaultConfig(), nil)
	for i := 0; i < 6; i++ {
		f.RegisterError()
	}
	f.Update(time.Second)
	f.Reset()
	if f.Started() || f.Accuracy() != 1 || f.Level() != 0 || f.Pitch() != 1 || f.Penalty() != 0 {
		t.Fatalf("reset left started %v accuracy %v level %v pitch %v penalty %d",
			f.Started(), f.Accuracy(), f.Level(), f.Pitch(), f.Penalty())
	}
}
