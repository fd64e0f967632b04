package schedule

import (
	"time"

	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/logging"
)

type Config struct {
	// Countdown before the first interval starts counting
	Delay time.Duration
	// Interval length in beats, (60 / bpm) * StepMultiplier
	StepMultiplier float64
	// Rows the cursor moves per interval
	RowStep int
}

// DefaultConfig matches charts authored at twice the scheduling resolution.
func DefaultConfig() Config {
	return Config{
		Delay:          2 * time.Second,
		StepMultiplier: 2,
		RowStep:        2,
	}
}

// Scheduler turns a chart into beat events against a virtual clock.
type Scheduler struct {
	OnBeat     func(row int, lanes []bool)
	OnComplete func()

	config   Config
	chart    *game.Chart
	interval time.Duration

	countdown time.Duration
	timer     time.Duration
	cursor    int
	playing   bool
	complete  bool

	log logrus.FieldLogger
}

func New(config Config, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logging.Discard()
	}
	if config.StepMultiplier <= 0 {
		log.Warnf("schedule: step multiplier %v is not positive, using 1", config.StepMultiplier)
		config.StepMultiplier = 1
	}
	if config.RowStep < 1 {
		log.Warnf("schedule: row step %d is not positive, using 1", config.RowStep)
		config.RowStep = 1
	}
	if config.Delay < 0 {
		config.Delay = 0
	}
	return &Scheduler{config: config, log: log, countdown: config.Delay}
}

// Interval is the time between beat events for bpm.
func Interval(bpm int, stepMultiplier float64) time.Duration {
	if bpm <= 0 {
		bpm = game.DefaultBPM
	}
	return time.Duration(float64(time.Minute) / float64(bpm) * stepMultiplier)
}

// Load replaces the chart and restarts. A nil or empty chart gives a scheduler that
// never fires and completes on the first Advance.
func (s *Scheduler) Load(chart *game.Chart) {
	s.chart = chart
	bpm := game.DefaultBPM
	if chart != nil {
		for _, w := range chart.Warnings {
			s.log.Warn("chart: " + w)
		}
		if chart.BPM > 0 {
			bpm = chart.BPM
		} else {
			s.log.Warnf("schedule: chart bpm %d is not positive, using %d", chart.BPM, game.DefaultBPM)
		}
	}
	if !chart.Playable() {
		s.log.Warn("schedule: chart has no steps, nothing will spawn")
	}
	s.interval = Interval(bpm, s.config.StepMultiplier)
	s.Restart()
}

// Restart rewinds to the start of the countdown. It is safe to call mid song.
func (s *Scheduler) Restart() {
	s.countdown = s.config.Delay
	s.timer = 0
	s.cursor = 0
	s.playing = false
	s.complete = false
}

// Advance consumes dt of elapsed time and fires any beats that fall inside it.
func (s *Scheduler) Advance(dt time.Duration) {
	if s.complete || dt <= 0 {
		return
	}
	if !s.chart.Playable() {
		s.finish()
		return
	}

	if !s.playing {
		if dt < s.countdown {
			s.countdown -= dt
			return
		}
		dt -= s.countdown
		s.countdown = 0
		s.playing = true
		s.log.Debug("schedule: playback started")
	}

	s.timer += dt
	for !s.complete && s.timer >= s.interval {
		s.timer -= s.interval
		s.beat()
	}
}

func (s *Scheduler) beat() {
	if s.cursor >= len(s.chart.Steps) {
		s.finish()
		return
	}
	if s.OnBeat != nil {
		s.OnBeat(s.cursor, s.chart.Steps[s.cursor])
	}
	s.cursor += s.config.RowStep
	if s.cursor >= len(s.chart.Steps) {
		s.finish()
	}
}

func (s *Scheduler) finish() {
	if s.complete {
		return
	}
	s.complete = true
	s.playing = false
	s.log.Debug("schedule: chart complete")
	if s.OnComplete != nil {
		s.OnComplete()
	}
}

// Playing reports whether the countdown is over and the chart is not yet complete.
func (s *Scheduler) Playing() bool {
	return s.playing
}

func (s *Scheduler) Complete() bool {
	return s.complete
}

// Interval is the beat interval for the loaded chart.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Cursor is the index of the next row to fire.
func (s *Scheduler) Cursor() int {
	return s.cursor
}

// Countdown is the time left before playback starts.
func (s *Scheduler) Countdown() time.Duration {
	return s.countdown
}

// Progress is the fraction of rows already scheduled.
func (s *Scheduler) Progress() float64 {
	if !s.chart.Playable() {
		return 0
	}
	p := float64(s.cursor) / float64(len(s.chart.Steps))
	if p > 1 {
		return 1
	}
	return p
}
