package feedback

import (
	"time"

	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/logging"
)

// Curve maps accuracy in [0,1] to a volume multiplier.
type Curve func(accuracy float64) float64

// Linear returns a curve from (0, low) to (1, high).
func Linear(low, high float64) Curve {
	return func(a float64) float64 {
		return low + (high-low)*a
	}
}

type Config struct {
	InitialAccuracy float64
	GoodHitGain     float64
	ErrorLoss       float64
	// Passive recovery toward 1 per second, 0 disables it
	Recovery float64

	BaseVolume float64
	Curve      Curve
	// Smoothing rate of the volume and pitch followers, per second
	LerpRate float64
	// How far the pitch ratio drops at zero accuracy, 0 keeps pitch fixed
	PitchDepth float64

	PenaltyThreshold float64
	PenaltyInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		InitialAccuracy:  1,
		GoodHitGain:      0.08,
		ErrorLoss:        0.18,
		Recovery:         0.02,
		BaseVolume:       1,
		Curve:            Linear(0.3, 1),
		LerpRate:         10,
		PitchDepth:       0,
		PenaltyThreshold: 0.3,
		PenaltyInterval:  5 * time.Second,
	}
}

// Feedback keeps a smoothed accuracy metric and turns it into mixer parameters.
// It is driven from the session tick; the audio side only reads it.
type Feedback struct {
	config Config

	accuracy float64
	started  bool
	volume   float64
	pitch    float64
	penalty  penalty

	log logrus.FieldLogger
}

func New(config Config, log logrus.FieldLogger) *Feedback {
	if log == nil {
		log = logging.Discard()
	}
	if config.Curve == nil {
		config.Curve = Linear(0.3, 1)
	}
	f := &Feedback{config: config, log: log}
	f.Reset()
	return f
}

// Reset restores the initial accuracy and silences the follower.
func (f *Feedback) Reset() {
	f.accuracy = clamp01(f.config.InitialAccuracy)
	f.started = false
	f.volume = 0
	f.pitch = 1
	f.penalty = penalty{}
}

// Start begins the feedback loop without registering an outcome.
func (f *Feedback) Start() {
	if !f.started {
		f.started = true
		f.log.Debug("feedback: started")
	}
}

// RegisterGoodHit raises accuracy after a Perfect, Good or Ok.
func (f *Feedback) RegisterGoodHit() {
	f.Start()
	f.accuracy = clamp01(f.accuracy + f.config.GoodHitGain)
	f.checkPenalty(0)
}

// RegisterError lowers accuracy after a miss or an early press.
func (f *Feedback) RegisterError() {
	f.Start()
	f.accuracy = clamp01(f.accuracy - f.config.ErrorLoss)
	f.checkPenalty(0)
}

// Update runs passive recovery, the penalty timer and the volume and pitch followers.
func (f *Feedback) Update(dt time.Duration) {
	if !f.started || dt <= 0 {
		return
	}
	s := dt.Seconds()
	if f.config.Recovery > 0 && f.accuracy < 1 {
		f.accuracy = clamp01(f.accuracy + f.config.Recovery*s)
	}
	f.checkPenalty(dt)

	k := f.config.LerpRate * s
	if k > 1 {
		k = 1
	}
	f.volume += (f.TargetVolume() - f.volume) * k
	f.pitch += (f.TargetPitch() - f.pitch) * k
}

// TargetVolume is the unsmoothed volume multiplier for the current accuracy.
func (f *Feedback) TargetVolume() float64 {
	return clamp01(f.config.BaseVolume * f.config.Curve(f.accuracy))
}

// TargetPitch is the unsmoothed pitch ratio for the current accuracy.
func (f *Feedback) TargetPitch() float64 {
	return 1 - f.config.PitchDepth*(1-f.accuracy)
}

// Level is the smoothed volume multiplier for the mixer.
func (f *Feedback) Level() float64 {
	return f.volume
}

// Pitch is the smoothed playback ratio for the mixer.
func (f *Feedback) Pitch() float64 {
	return f.pitch
}

func (f *Feedback) Accuracy() float64 {
	return f.accuracy
}

func (f *Feedback) Started() bool {
	return f.started
}

// Penalty is the current escalation index, 0 while accuracy is above threshold.
func (f *Feedback) Penalty() int {
	return f.penalty.level
}

func (f *Feedback) checkPenalty(dt time.Duration) {
	if !f.started {
		return
	}
	before := f.penalty.level
	f.penalty.step(f.accuracy < f.config.PenaltyThreshold, dt, f.config.PenaltyInterval)
	if f.penalty.level != before {
		f.log.WithField("level", f.penalty.level).Info("feedback: penalty changed")
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
