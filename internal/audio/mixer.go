package audio

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/judge"
	"git.lost.host/meutraa/lanes/internal/logging"
)

const defaultRate = beep.SampleRate(44100)

// Levels are the smoothed mixer parameters driven by the session tick.
type Levels interface {
	Level() float64
	Pitch() float64
}

// Mixer plays the song stems and the lane effects. The first stem is the lead: its
// volume and pitch follow the player's accuracy, the others play at full volume.
type Mixer struct {
	rate  beep.SampleRate
	stems []*Stem

	mixer *beep.Mixer
	song  *beep.Ctrl
	lead  *effects.Volume
	pitch *beep.Resampler
	taps  map[int]*tone

	lock, unlock func()
	started      bool

	log logrus.FieldLogger
}

// NewMixer wires stems into a paused song. It does not touch the audio device until
// Init, so it can be driven without one.
func NewMixer(stems []*Stem, loop bool, log logrus.FieldLogger) *Mixer {
	if log == nil {
		log = logging.Discard()
	}
	m := &Mixer{
		rate:   defaultRate,
		stems:  stems,
		mixer:  &beep.Mixer{},
		taps:   map[int]*tone{},
		lock:   func() {},
		unlock: func() {},
		log:    log,
	}
	if len(stems) > 0 {
		m.rate = stems[0].Format.SampleRate
	}

	tracks := make([]beep.Streamer, 0, len(stems))
	for i, stem := range stems {
		var s beep.Streamer = stem.Streamer
		if loop {
			s = beep.Loop(-1, stem.Streamer)
		}
		if stem.Format.SampleRate != m.rate {
			log.WithField("stem", stem.Name).Debugf("audio: resampling %d to %d", stem.Format.SampleRate, m.rate)
			s = beep.Resample(4, stem.Format.SampleRate, m.rate, s)
		}
		if i == 0 {
			m.pitch = beep.ResampleRatio(4, 1, s)
			m.lead = &effects.Volume{Streamer: m.pitch, Base: 2, Silent: true}
			s = m.lead
		}
		tracks = append(tracks, s)
	}
	m.song = &beep.Ctrl{Streamer: beep.Mix(tracks...), Paused: true}
	m.mixer.Add(m.song)
	return m
}

// Init opens the audio device and starts the output stream.
func (m *Mixer) Init() error {
	if err := speaker.Init(m.rate, m.rate.N(time.Second/30)); nil != err {
		return err
	}
	m.lock, m.unlock = speaker.Lock, speaker.Unlock
	speaker.Play(m.mixer)
	return nil
}

func (m *Mixer) Deinit() {
	speaker.Clear()
	for _, s := range m.stems {
		if err := s.Streamer.Close(); nil != err {
			m.log.WithError(err).Warn("audio: unable to close stem")
		}
	}
}

// Start unpauses the song, once the countdown is over.
func (m *Mixer) Start() {
	if m.started {
		return
	}
	m.started = true
	m.SetPaused(false)
}

func (m *Mixer) Started() bool {
	return m.started
}

func (m *Mixer) SetPaused(paused bool) {
	m.lock()
	m.song.Paused = paused
	m.unlock()
}

// Rewind seeks every stem back to the start and pauses until the next Start.
func (m *Mixer) Rewind() {
	m.lock()
	defer m.unlock()
	for _, s := range m.stems {
		if err := s.Streamer.Seek(0); nil != err {
			m.log.WithError(err).WithField("stem", s.Name).Warn("audio: unable to rewind")
		}
	}
	m.song.Paused = true
	m.started = false
}

// Sync copies the smoothed levels onto the lead stem. Call it after each tick.
func (m *Mixer) Sync(l Levels) {
	if m.lead == nil {
		return
	}
	v, silent := gain(l.Level())
	ratio := l.Pitch()
	m.lock()
	m.lead.Volume, m.lead.Silent = v, silent
	if ratio > 0 {
		m.pitch.SetRatio(ratio)
	}
	m.unlock()
}

func (m *Mixer) play(s beep.Streamer) {
	m.lock()
	m.mixer.Add(s)
	m.unlock()
}

// Judged buzzes on every miss and early press.
func (m *Mixer) Judged(j judge.Judgement) {
	if j.Outcome.Successful() {
		return
	}
	m.play(Buzz(m.rate))
}

// LanePressed plays the lane's tap until the lane is released.
func (m *Mixer) LanePressed(lane int) {
	t := newTone(laneFrequency(lane), 0.15, sine, 250*time.Millisecond, 120*time.Millisecond, m.rate)
	m.lock()
	if old, ok := m.taps[lane]; ok {
		old.Cut()
	}
	m.taps[lane] = t
	m.mixer.Add(t)
	m.unlock()
}

func (m *Mixer) LaneReleased(lane int) {
	m.lock()
	if t, ok := m.taps[lane]; ok {
		t.Cut()
		delete(m.taps, lane)
	}
	m.unlock()
}
