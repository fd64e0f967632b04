package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

type wave uint8

const (
	sine wave = iota
	square
)

// tone is a decaying oscillator. Cut ends it at the next buffer.
type tone struct {
	freq  float64
	amp   float64
	wave  wave
	rate  beep.SampleRate
	total int
	decay int // samples of linear fade at the end

	phase float64
	pos   int
	cut   bool
}

func newTone(freq, amp float64, w wave, d, decay time.Duration, rate beep.SampleRate) *tone {
	return &tone{
		freq:  freq,
		amp:   amp,
		wave:  w,
		rate:  rate,
		total: rate.N(d),
		decay: rate.N(decay),
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.cut {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}
		var v float64
		switch t.wave {
		case square:
			if t.phase < 0.5 {
				v = 1
			} else {
				v = -1
			}
		default:
			v = math.Sin(2 * math.Pi * t.phase)
		}
		v *= t.amp
		if left := t.total - t.pos; t.decay > 0 && left < t.decay {
			v *= float64(left) / float64(t.decay)
		}
		samples[i][0] = v
		samples[i][1] = v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Cut stops the tone. Call it with the speaker locked.
func (t *tone) Cut() {
	t.cut = true
}

// Buzz is the short low square played on an error.
func Buzz(rate beep.SampleRate) beep.Streamer {
	return newTone(110, 0.25, square, 150*time.Millisecond, 40*time.Millisecond, rate)
}

// laneFrequency spreads lanes over a chromatic octave starting at middle C.
func laneFrequency(lane int) float64 {
	return 261.63 * math.Pow(2, float64(lane)/12)
}

// gain converts a linear multiplier to the exponent effects.Volume expects at base 2.
func gain(multiplier float64) (volume float64, silent bool) {
	if multiplier <= 0 {
		return 0, true
	}
	return math.Log2(multiplier), false
}
