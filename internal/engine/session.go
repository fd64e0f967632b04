package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/feedback"
	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/judge"
	"git.lost.host/meutraa/lanes/internal/logging"
	"git.lost.host/meutraa/lanes/internal/pool"
	"git.lost.host/meutraa/lanes/internal/schedule"
	"git.lost.host/meutraa/lanes/internal/score"
)

type Config struct {
	Lanes    int
	PoolSize int
	// Note travel speed in distance units per second
	Speed float64
	// Where a note starts, relative to the note origin
	SpawnDistance float64

	Judge    judge.Config
	Schedule schedule.Config
	Feedback feedback.Config

	// Keep every applied input for replays
	Record bool
}

func DefaultConfig() Config {
	return Config{
		Lanes:         game.DefaultLanes,
		PoolSize:      50,
		Speed:         800,
		SpawnDistance: 1600,
		Judge:         judge.DefaultConfig(),
		Schedule:      schedule.DefaultConfig(),
		Feedback:      feedback.DefaultConfig(),
		Record:        true,
	}
}

// Settings are the parameters saved with a run so it can be replayed.
func (c Config) Settings() score.Settings {
	return score.Settings{
		Lanes:          c.Lanes,
		Speed:          c.Speed,
		SpawnDistance:  c.SpawnDistance,
		HitOffset:      c.Judge.HitOffset,
		Windows:        c.Judge.Windows,
		Delay:          c.Schedule.Delay,
		StepMultiplier: c.Schedule.StepMultiplier,
		RowStep:        c.Schedule.RowStep,
	}
}

// WithSettings returns c with the saved run parameters applied. Settings saved
// without parameters leave c unchanged.
func (c Config) WithSettings(s score.Settings) Config {
	if s.Lanes < 1 {
		return c
	}
	c.Lanes = s.Lanes
	c.Speed = s.Speed
	c.SpawnDistance = s.SpawnDistance
	c.Judge.HitOffset = s.HitOffset
	c.Judge.Windows = s.Windows
	c.Schedule = schedule.Config{
		Delay:          s.Delay,
		StepMultiplier: s.StepMultiplier,
		RowStep:        s.RowStep,
	}
	return c
}

// Session drives one chart. Every mutation happens inside Advance or the calls the
// host makes between ticks; nothing here is safe for concurrent use.
type Session struct {
	// Called once when the scheduler has fired the last row
	OnComplete func()

	config    Config
	pool      *pool.Pool
	scheduler *schedule.Scheduler
	judge     *judge.Engine
	feedback  *feedback.Feedback

	pending []game.Input
	inputs  []game.Input
	tick    uint64
	paused  bool

	log logrus.FieldLogger
}

func New(config Config, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logging.Discard()
	}
	if config.Lanes < 1 {
		log.Warnf("engine: lane count %d is not positive, using %d", config.Lanes, game.DefaultLanes)
		config.Lanes = game.DefaultLanes
	}
	s := &Session{config: config, log: log}
	s.pool = pool.New(config.Lanes, config.PoolSize, log)
	s.feedback = feedback.New(config.Feedback, log)
	s.judge = judge.New(config.Judge, s.pool, s.feedback, log)
	s.scheduler = schedule.New(config.Schedule, log)
	s.scheduler.OnBeat = s.beat
	s.scheduler.OnComplete = func() {
		if s.OnComplete != nil {
			s.OnComplete()
		}
	}
	return s
}

// Load resets the session and starts the countdown for chart.
func (s *Session) Load(chart *game.Chart) {
	s.Reset()
	s.scheduler.Load(chart)
}

func (s *Session) beat(row int, lanes []bool) {
	for lane, on := range lanes {
		if on && lane < s.config.Lanes {
			s.SpawnNote(lane)
		}
	}
}

// SpawnNote starts a note in lane. It returns false for a lane out of range.
func (s *Session) SpawnNote(lane int) bool {
	return s.pool.Spawn(lane, s.config.Speed, s.config.SpawnDistance) != pool.None
}

// OnInputEvent queues a press or release. Queued inputs are applied on the next
// Advance, after notes have moved, in the order they arrived.
func (s *Session) OnInputEvent(lane int, pressed bool) {
	if lane < 0 || lane >= s.config.Lanes {
		s.log.Debugf("engine: input on lane %d out of range", lane)
		return
	}
	s.pending = append(s.pending, game.Input{Lane: lane, Pressed: pressed})
}

// Advance runs one tick: scheduler, note movement and auto-misses, queued input,
// then feedback smoothing. Notes the scheduler spawns during the tick start moving
// on the next one, so each is first seen at the spawn distance.
func (s *Session) Advance(dt time.Duration) {
	if s.paused || dt < 0 {
		return
	}
	s.tick++

	spawned := s.pool.Seq()
	s.scheduler.Advance(dt)

	jc := s.judge.Config()
	s.pool.Each(func(h pool.Handle, n *pool.Note) {
		if n.Spawn > spawned {
			return
		}
		switch n.Update(dt, jc.HitOffset, jc.Windows.Miss, jc.ResolveDuration) {
		case pool.AutoMiss:
			s.judge.AutoMiss(h)
		case pool.Expired:
			s.pool.Release(h)
		case pool.Nothing:
		}
	})

	for _, in := range s.pending {
		in.Tick = s.tick
		if in.Pressed {
			s.judge.Press(in.Lane)
		} else {
			s.judge.Release(in.Lane)
		}
		if s.config.Record {
			s.inputs = append(s.inputs, in)
		}
	}
	s.pending = s.pending[:0]

	s.feedback.Update(dt)
}

// SignedDistance is the distance of a live note to the hit line.
func (s *Session) SignedDistance(h pool.Handle) (float64, bool) {
	n := s.pool.Get(h)
	if n == nil || n.State == pool.Free {
		return 0, false
	}
	return n.SignedDistance(s.judge.Config().HitOffset), true
}

// Notes calls fn for every live note, for presentation. fn must not keep n.
func (s *Session) Notes(fn func(h pool.Handle, n pool.Note)) {
	s.pool.Each(func(h pool.Handle, n *pool.Note) {
		fn(h, *n)
	})
}

func (s *Session) Stats() score.Stats {
	return s.judge.Stats()
}

func (s *Session) ScoreState() score.Snapshot {
	return s.judge.Snapshot()
}

func (s *Session) History() []game.Outcome {
	return s.judge.History()
}

// Reset frees every note and starts over with a clean score, feedback and scheduler.
func (s *Session) Reset() {
	s.pool.ReleaseAll()
	s.judge.Reset()
	s.feedback.Reset()
	s.scheduler.Restart()
	s.pending = s.pending[:0]
	s.inputs = nil
	s.tick = 0
	s.paused = false
}

func (s *Session) SetPaused(paused bool) {
	s.paused = paused
}

func (s *Session) Paused() bool {
	return s.paused
}

func (s *Session) AddObserver(o judge.Observer) {
	s.judge.AddObserver(o)
}

// Feedback exposes the accuracy feedback for the audio mixer.
func (s *Session) Feedback() *feedback.Feedback {
	return s.feedback
}

func (s *Session) Scheduler() *schedule.Scheduler {
	return s.scheduler
}

// Held reports whether lane is currently pressed.
func (s *Session) Held(lane int) bool {
	return s.judge.Held(lane)
}

// Live is the number of notes that are not free.
func (s *Session) Live() int {
	return s.pool.Active()
}

func (s *Session) Tick() uint64 {
	return s.tick
}

// Inputs are the inputs applied so far, stamped with their tick.
func (s *Session) Inputs() []game.Input {
	return s.inputs
}

func (s *Session) Lanes() int {
	return s.config.Lanes
}

// Done reports whether the chart is complete and every note has been resolved.
func (s *Session) Done() bool {
	return s.scheduler.Complete() && s.pool.Active() == 0
}
