package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/sirupsen/logrus"

	"git.lost.host/meutraa/lanes/internal/audio"
	"git.lost.host/meutraa/lanes/internal/config"
	"git.lost.host/meutraa/lanes/internal/engine"
	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/input"
	"git.lost.host/meutraa/lanes/internal/logging"
	"git.lost.host/meutraa/lanes/internal/parser"
	"git.lost.host/meutraa/lanes/internal/render"
	"git.lost.host/meutraa/lanes/internal/score"
	"git.lost.host/meutraa/lanes/internal/theme"
)

// resizeEvery is how many frames pass between terminal size checks.
const resizeEvery = 30

type Program struct {
	Scorer   *score.DefaultScorer
	Theme    *theme.DefaultTheme
	Renderer *render.DefaultRenderer
	Mixer    *audio.Mixer // nil when muted

	hud     *render.HUD
	session *engine.Session
	chart   *game.Chart
	config  engine.Config
	events  chan input.Event

	frameCounter uint64
	looped       bool
	ending       bool
	endLeft      time.Duration
	finished     bool

	log logrus.FieldLogger
}

func run(args []string) error {
	if err := config.Parse(args); nil != err {
		return err
	}

	var out io.Writer = os.Stderr
	if *config.LogFile != "" {
		f, err := os.OpenFile(*config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if nil != err {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	log := logging.New(out, *config.LogLevel)

	p := &Program{
		Scorer: &score.DefaultScorer{Path: *config.Database, Log: log},
		Theme:  &theme.DefaultTheme{},
		log:    log,
	}
	if err := p.Init(); nil != err {
		return err
	}
	defer p.Scorer.Deinit()

	if *config.Replay {
		return p.Replay(os.Stdout)
	}
	return p.Play()
}

// Init loads the chart and the score database.
func (p *Program) Init() error {
	psr, err := parser.ForFile(*config.Chart, *config.Lanes)
	if nil != err {
		return err
	}
	charts, err := psr.Parse(*config.Chart)
	if nil != err {
		return err
	}
	if len(charts) == 0 {
		return errors.New("no playable difficulty in chart")
	}
	index := *config.Difficulty
	if index < 0 || index >= len(charts) {
		return fmt.Errorf("difficulty %d out of range, chart has %d", index, len(charts))
	}
	p.chart = charts[index]
	p.log.WithFields(logrus.Fields{
		"chart":      *config.Chart,
		"difficulty": index,
		"notes":      p.chart.NoteCount(),
		"bpm":        p.chart.BPM,
	}).Info("chart loaded")

	p.config = config.Engine()
	if strings.EqualFold(filepath.Ext(*config.Chart), ".sm") {
		p.config.Schedule = config.ForStepMania(p.config.Schedule, parser.DefaultRowsPerBeat)
	}

	return p.Scorer.Init()
}

// Replay plays the latest saved run of the chart without a terminal.
func (p *Program) Replay(w io.Writer) error {
	results, err := p.Scorer.Load(p.chart)
	if nil != err {
		return err
	}
	if len(results) == 0 {
		return errors.New("no saved run for this chart")
	}
	r := results[0]
	snap, stats := engine.Replay(p.config.WithSettings(r.Settings), p.chart, r.Inputs, r.Tick, r.Ticks, p.log)
	fmt.Fprintf(w, "played %v\n", r.Played.Format(time.RFC3339))
	fmt.Fprintf(w, "score %d (saved %d), max combo %d\n", snap.TotalScore, r.Score.TotalScore, snap.MaxCombo)
	fmt.Fprintf(w, "perfect %d good %d ok %d early %d miss %d\n",
		stats.Perfect, stats.Good, stats.Ok, stats.TooEarly, stats.Miss)
	if snap.TotalScore != r.Score.TotalScore {
		p.log.WithFields(logrus.Fields{
			"replayed": snap.TotalScore,
			"saved":    r.Score.TotalScore,
		}).Warn("replay diverged from the saved run")
	}
	return nil
}

func (p *Program) initAudio() {
	if *config.Mute {
		return
	}
	var stems []*audio.Stem
	if *config.AudioDirectory != "" {
		var err error
		stems, err = audio.LoadStems(*config.AudioDirectory)
		if nil != err {
			p.log.WithError(err).Warn("playing without song audio")
		}
	}
	m := audio.NewMixer(stems, *config.Loop, p.log)
	if err := m.Init(); nil != err {
		p.log.WithError(err).Warn("unable to open audio device, muted")
		m.Deinit()
		return
	}
	p.Mixer = m
	p.session.AddObserver(m)
}

// Play runs the chart in the terminal until it ends or the player quits.
func (p *Program) Play() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.session = engine.New(p.config, p.log)
	p.session.OnComplete = p.onComplete

	p.initAudio()
	if p.Mixer != nil {
		defer p.Mixer.Deinit()
	}

	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			p.log.WithError(err).Warn("unable to close keyboard")
		}
	}()

	p.events = make(chan input.Event, 256)
	evdev := false
	if *config.Device != "" {
		if err := input.ReadInput(ctx, *config.Device, config.KeyLane, p.events, p.log); nil != err {
			p.log.WithError(err).Warn("falling back to terminal key presses")
		} else {
			evdev = true
		}
	}
	if *config.MIDIPort != "" {
		lanes := input.MIDILanes{Base: *config.MIDIBaseNote, Lanes: p.session.Lanes()}
		if err := input.ReadMIDI(ctx, *config.MIDIPort, lanes, p.events, p.log); nil != err {
			p.log.WithError(err).Warn("playing without MIDI input")
		}
	}
	k := input.NewKeys(config.KeyLane, *config.ReleaseAfter, evdev)
	go k.Run(ctx, keys, p.events, p.log)

	p.Renderer = render.NewDefaultRenderer(os.Stdout)
	if err := p.Renderer.Init(); nil != err {
		return fmt.Errorf("unable to prepare terminal: %w", err)
	}
	defer func() {
		// Restore the terminal state
		if err := p.Renderer.Deinit(); nil != err {
			p.log.WithError(err).Warn("unable to restore terminal")
		}
	}()

	w, h := p.Renderer.Size()
	p.hud = render.NewHUD(p.Renderer, p.Theme, render.NewLayout(w, h, p.session.Lanes(), p.config.SpawnDistance))
	p.session.AddObserver(p.hud)
	p.session.Load(p.chart)

	p.Renderer.RenderLoop(*config.FramePeriod, p.Update, p.Render)

	if !p.finished {
		return nil
	}
	return p.finish()
}

// Update runs one fixed tick. It returns false to leave the loop.
func (p *Program) Update(dt time.Duration) bool {
	cont := true
	input.Drain(p.events, func(ev input.Event) {
		switch ev.Kind {
		case input.Lane:
			p.session.OnInputEvent(ev.Lane, ev.Pressed)
		case input.Quit:
			cont = false
		case input.Pause:
			p.setPaused(!p.session.Paused())
		case input.Restart:
			p.restart()
		case input.Stats:
			p.hud.ToggleStats()
		}
	})
	if !cont {
		return false
	}

	p.session.Advance(dt)
	if p.Mixer != nil {
		if p.session.Scheduler().Playing() && !p.Mixer.Started() {
			p.Mixer.Start()
		}
		p.Mixer.Sync(p.session.Feedback())
	}

	if p.looped {
		p.looped = false
		p.log.Info("looping chart")
		p.restart()
		return true
	}
	if p.ending && !p.session.Paused() {
		p.endLeft -= dt
		if p.endLeft <= 0 {
			p.ending = false
			p.finished = true
			return false
		}
	}
	return true
}

// onComplete runs once the last row has been scheduled. A looping chart starts over
// on the same tick with a fresh score and nothing is saved.
func (p *Program) onComplete() {
	if *config.Loop {
		p.looped = true
		return
	}
	p.ending = true
	p.endLeft = *config.EndDelay
}

func (p *Program) setPaused(paused bool) {
	p.session.SetPaused(paused)
	if p.Mixer != nil && p.Mixer.Started() {
		p.Mixer.SetPaused(paused)
	}
}

func (p *Program) restart() {
	p.ending = false
	p.looped = false
	p.session.Load(p.chart)
	if p.Mixer != nil {
		p.Mixer.Rewind()
	}
}

func (p *Program) Render() {
	p.frameCounter++
	if p.frameCounter%resizeEvery == 0 {
		w, h := p.Renderer.Size()
		if l := p.hud.Layout(); l.Width != w || l.Height != h {
			p.hud.Resize(render.NewLayout(w, h, p.session.Lanes(), p.config.SpawnDistance))
		}
	}
	p.hud.Draw(p.session)
}

// finish saves the run and shows the results until a key is pressed.
func (p *Program) finish() error {
	result, best, err := p.save()
	if nil != err {
		return err
	}
	p.hud.Results(result.Score, result.Stats, best)
	for ev := range p.events {
		if ev.Kind != input.Lane || ev.Pressed {
			break
		}
	}
	return nil
}

// save stores the run and returns it with the best run saved before it.
func (p *Program) save() (*score.Result, *score.Result, error) {
	result := &score.Result{
		BPM:      p.chart.BPM,
		Score:    p.session.ScoreState(),
		Stats:    p.session.Stats(),
		Tick:     *config.FramePeriod,
		Ticks:    p.session.Tick(),
		Settings: p.config.Settings(),
		Inputs:   p.session.Inputs(),
		Played:   time.Now(),
	}
	best, err := p.Scorer.Best(p.chart)
	if nil != err {
		p.log.WithError(err).Warn("unable to load best score")
	}
	if err := p.Scorer.Save(p.chart, result); nil != err {
		return nil, nil, err
	}
	return result, best, nil
}
