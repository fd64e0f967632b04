package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/judge"
)

func TestGain(t *testing.T) {
	if v, silent := gain(1); v != 0 || silent {
		t.Fatalf("gain(1) = %v %v", v, silent)
	}
	if v, silent := gain(0.5); v != -1 || silent {
		t.Fatalf("gain(0.5) = %v %v", v, silent)
	}
	if _, silent := gain(0); !silent {
		t.Fatal("gain(0) is not silent")
	}
}

func TestToneLength(t *testing.T) {
	rate := beep.SampleRate(1000)
	tn := newTone(100, 1, square, 100*time.Millisecond, 0, rate)
	buf := make([][2]float64, 64)
	total := 0
	for {
		n, ok := tn.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if total != 100 {
		t.Fatalf("tone streamed %d samples, want 100", total)
	}
	if buf[0][0] != 1 || buf[0][1] != 1 {
		t.Fatalf("square wave starts at %v", buf[0])
	}
}

func TestToneDecays(t *testing.T) {
	rate := beep.SampleRate(1000)
	tn := newTone(250, 1, sine, 10*time.Millisecond, 10*time.Millisecond, rate)
	buf := make([][2]float64, 10)
	n, _ := tn.Stream(buf)
	if n != 10 {
		t.Fatalf("n %d", n)
	}
	// a quarter period in, at 90% level
	if math.Abs(buf[1][0]-0.9) > 1e-9 {
		t.Fatalf("sample 1 = %v, want 0.9", buf[1][0])
	}
}

func TestToneCut(t *testing.T) {
	tn := newTone(440, 1, sine, time.Second, 0, beep.SampleRate(1000))
	tn.Cut()
	if n, ok := tn.Stream(make([][2]float64, 8)); n != 0 || ok {
		t.Fatalf("cut tone streamed %d %v", n, ok)
	}
}

func TestStemFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bass.ogg", "lead.wav", "drums.mp3", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := StemFiles(dir)
	if nil != err {
		t.Fatal(err)
	}
	expected := []string{"lead.wav", "bass.ogg", "drums.mp3"}
	if len(files) != len(expected) {
		t.Fatalf("files %v", files)
	}
	for i, f := range files {
		if filepath.Base(f) != expected[i] {
			t.Fatalf("file %d = %s, want %s", i, filepath.Base(f), expected[i])
		}
	}

	if _, err := StemFiles(t.TempDir()); !errors.Is(err, ErrNoStems) {
		t.Fatalf("err %v, want ErrNoStems", err)
	}
}

type levels struct{ level, pitch float64 }

func (l levels) Level() float64 { return l.level }
func (l levels) Pitch() float64 { return l.pitch }

func TestMixerEffects(t *testing.T) {
	m := NewMixer(nil, false, nil)
	if m.mixer.Len() != 1 {
		t.Fatalf("mixer starts with %d streamers", m.mixer.Len())
	}
	m.Sync(levels{0.5, 1})

	m.Judged(judge.Judgement{Outcome: game.Perfect})
	if m.mixer.Len() != 1 {
		t.Fatal("a perfect hit buzzed")
	}
	m.Judged(judge.Judgement{Outcome: game.TooEarly})
	if m.mixer.Len() != 2 {
		t.Fatal("an early press did not buzz")
	}

	m.LanePressed(3)
	tap := m.taps[3]
	if tap == nil || m.mixer.Len() != 3 {
		t.Fatal("press did not tap")
	}
	m.LaneReleased(3)
	if !tap.cut || len(m.taps) != 0 {
		t.Fatal("release did not cut the tap")
	}
}

func TestMixerStartPause(t *testing.T) {
	m := NewMixer(nil, false, nil)
	if !m.song.Paused {
		t.Fatal("song plays before start")
	}
	m.Start()
	if m.song.Paused || !m.Started() {
		t.Fatal("start did not unpause")
	}
	m.SetPaused(true)
	if !m.song.Paused {
		t.Fatal("pause ignored")
	}
	m.Rewind()
	if m.Started() {
		t.Fatal("rewind kept the song started")
	}
}
