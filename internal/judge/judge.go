package judge

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/logging"
	"git.lost.host/meutraa/lanes/internal/pool"
	"git.lost.host/meutraa/lanes/internal/score"
)

type Config struct {
	Windows game.Windows
	Points  score.Points
	// Position of the hit line relative to the note origin
	HitOffset float64
	// How long a judged note stays in the resolve phase before it is freed
	ResolveDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		Windows:         game.DefaultWindows(),
		Points:          score.DefaultPoints(),
		ResolveDuration: 200 * time.Millisecond,
	}
}

// Feedback receives every resolved outcome.
type Feedback interface {
	RegisterGoodHit()
	RegisterError()
}

// Observer is told about judgements and lane presses, for presentation and audio.
type Observer interface {
	Judged(j Judgement)
	LanePressed(lane int)
	LaneReleased(lane int)
}

// Judgement is one resolved outcome.
type Judgement struct {
	Lane     int
	Outcome  game.Outcome
	Distance float64     // signed distance of the judged note, 0 for an empty lane
	Note     pool.Handle // None for an empty lane press
	Points   int
}

// Engine matches lane input against live notes and keeps the session score.
type Engine struct {
	config    Config
	pool      *pool.Pool
	feedback  Feedback
	observers []Observer

	held  []bool
	state *score.State

	log logrus.FieldLogger
}

func New(config Config, p *pool.Pool, fb Feedback, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	if !config.Windows.Valid() {
		log.Warnf("judge: windows %+v are not ordered, using defaults", config.Windows)
		config.Windows = game.DefaultWindows()
	}
	return &Engine{
		config:   config,
		pool:     p,
		feedback: fb,
		held:     make([]bool, p.Lanes()),
		state:    score.NewState(),
		log:      log,
	}
}

func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

func (e *Engine) Config() Config {
	return e.config
}

// Held reports whether lane is currently pressed.
func (e *Engine) Held(lane int) bool {
	return lane >= 0 && lane < len(e.held) && e.held[lane]
}

// Press handles a lane going down. A lane that is already held is ignored, so a
// sustained input only judges once. It returns false when the press was ignored.
func (e *Engine) Press(lane int) (Judgement, bool) {
	if lane < 0 || lane >= len(e.held) {
		e.log.Debugf("judge: press on lane %d out of range", lane)
		return Judgement{}, false
	}
	if e.held[lane] {
		return Judgement{}, false
	}
	e.held[lane] = true
	for _, o := range e.observers {
		o.LanePressed(lane)
	}

	h, distance, ok := e.Nearest(lane)
	if !ok {
		// nothing to hit in this lane, pressing is itself a mistake
		return e.resolve(Judgement{Lane: lane, Outcome: game.Miss, Note: pool.None}), true
	}

	j := Judgement{Lane: lane, Distance: distance, Note: h}
	j.Outcome = e.config.Windows.Classify(math.Abs(distance))
	switch j.Outcome {
	case game.Perfect, game.Good, game.Ok:
		n := e.pool.Get(h)
		if !n.Judge() {
			return Judgement{}, false
		}
		n.Resolve(e.config.ResolveDuration)
	case game.TooEarly, game.Miss:
		// the note stays live, only the press failed
	}
	return e.resolve(j), true
}

// Release handles a lane going up. It only clears the held flag.
func (e *Engine) Release(lane int) bool {
	if lane < 0 || lane >= len(e.held) || !e.held[lane] {
		return false
	}
	e.held[lane] = false
	for _, o := range e.observers {
		o.LaneReleased(lane)
	}
	return true
}

// AutoMiss records a note that passed the miss line unjudged. The note reports this
// once per spawn.
func (e *Engine) AutoMiss(h pool.Handle) Judgement {
	n := e.pool.Get(h)
	j := Judgement{Lane: -1, Outcome: game.Miss, Note: h}
	if n != nil {
		j.Lane = n.Lane
		j.Distance = n.SignedDistance(e.config.HitOffset)
	}
	return e.resolve(j)
}

// Nearest finds the unjudged note in lane closest to the hit line that has not yet
// passed the miss line. On ties the older note wins.
func (e *Engine) Nearest(lane int) (pool.Handle, float64, bool) {
	best, bestAbs, bestDistance := pool.None, math.Inf(1), 0.0
	for _, h := range e.pool.Live(lane) {
		n := e.pool.Get(h)
		if n.State != pool.Traveling || n.Processed() {
			continue
		}
		d := n.SignedDistance(e.config.HitOffset)
		if d < -e.config.Windows.Miss {
			continue
		}
		if abs := math.Abs(d); abs < bestAbs {
			best, bestAbs, bestDistance = h, abs, d
		}
	}
	return best, bestDistance, best != pool.None
}

func (e *Engine) resolve(j Judgement) Judgement {
	j.Points = e.state.Apply(j.Outcome, e.config.Points)
	if e.feedback != nil {
		if j.Outcome.Successful() {
			e.feedback.RegisterGoodHit()
		} else {
			e.feedback.RegisterError()
		}
	}
	for _, o := range e.observers {
		o.Judged(j)
	}
	e.log.WithFields(logrus.Fields{
		"lane":     j.Lane,
		"outcome":  j.Outcome,
		"distance": j.Distance,
		"combo":    e.state.Combo,
	}).Debug("judged")
	return j
}

// Reset starts a new score state and releases every held lane.
func (e *Engine) Reset() {
	e.state = score.NewState()
	for i := range e.held {
		e.held[i] = false
	}
}

func (e *Engine) Stats() score.Stats {
	return e.state.Stats()
}

func (e *Engine) Snapshot() score.Snapshot {
	return e.state.Snapshot()
}

// History is the ordered outcome history. The slice must not be modified.
func (e *Engine) History() []game.Outcome {
	return e.state.History
}
