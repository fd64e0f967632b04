package score

import (
	"errors"
	"time"

	"git.lost.host/meutraa/lanes/internal/game"
)

// ErrNoDatabase is returned when a Scorer is used before Init.
var ErrNoDatabase = errors.New("score database is not open")

// Scorer persists finished sessions.
type Scorer interface {
	Init() error
	Deinit()

	// Save the result of this performance
	Save(chart *game.Chart, result *Result) error

	// Load previous results for the chart, newest first
	Load(chart *game.Chart) ([]Result, error)

	// Best is the highest scoring result for the chart
	Best(chart *game.Chart) (*Result, error)
}

// Result is a finished session as stored in history.
type Result struct {
	Sum      string
	BPM      int
	Score    Snapshot
	Stats    Stats
	Tick     time.Duration // the fixed tick the inputs were recorded with
	Ticks    uint64        // ticks the session ran for, 0 when unknown
	Settings Settings
	Inputs   []game.Input
	Played   time.Time
}

// Settings are the session parameters that decide a run's outcome. A zero Lanes
// means the run was saved without them.
type Settings struct {
	Lanes          int
	Speed          float64
	SpawnDistance  float64
	HitOffset      float64
	Windows        game.Windows
	Delay          time.Duration
	StepMultiplier float64
	RowStep        int
}
