package config

import (
	"fmt"

	"gopkg.in/alecthomas/kingpin.v2"

	"git.lost.host/meutraa/lanes/internal/engine"
	"git.lost.host/meutraa/lanes/internal/feedback"
	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/judge"
	"git.lost.host/meutraa/lanes/internal/schedule"
)

const Version = "0.3.0"

var (
	app = kingpin.New("lanes", "Lane rhythm trainer for the terminal")

	Chart          = app.Arg("chart", "Chart file (.json, .chart, .txt or .sm)").Required().ExistingFile()
	AudioDirectory = app.Flag("audio-dir", "Directory of stems played under the chart, lead stem first").Short('a').Envar("LANES_AUDIO_DIR").String()
	Lanes          = app.Flag("lanes", "Number of lanes").Default("12").Short('l').Envar("LANES_LANES").Int()
	Delay          = app.Flag("delay", "Countdown before the first row").Default("2s").Short('d').Envar("LANES_DELAY").Duration()
	StepMultiplier = app.Flag("step-multiplier", "Beats per scheduler interval").Default("2").Envar("LANES_STEP_MULTIPLIER").Float64()
	RowStep        = app.Flag("row-step", "Rows the cursor advances per interval").Default("2").Envar("LANES_ROW_STEP").Int()
	Speed          = app.Flag("speed", "Note speed in units per second").Default("800").Short('s').Envar("LANES_SPEED").Float64()
	SpawnDistance  = app.Flag("spawn-distance", "Distance from the hit line notes spawn at").Default("1600").Envar("LANES_SPAWN_DISTANCE").Float64()
	HitOffset      = app.Flag("hit-offset", "Hit line position relative to the note origin").Default("0").Short('o').Envar("LANES_HIT_OFFSET").Float64()
	Perfect        = app.Flag("perfect", "Perfect window radius").Default("50").Envar("LANES_PERFECT").Float64()
	Good           = app.Flag("good", "Good window radius").Default("100").Envar("LANES_GOOD").Float64()
	Ok             = app.Flag("ok", "Ok window radius").Default("150").Envar("LANES_OK").Float64()
	Miss           = app.Flag("miss", "Distance past the hit line before a note is missed").Default("200").Envar("LANES_MISS").Float64()
	FramePeriod    = app.Flag("tick", "Fixed simulation tick").Default("8333us").Short('p').Envar("LANES_TICK").Duration()
	keys           = app.Flag("keys", "Keys for each lane, left to right").Default("zsxdcvgbhnjm").Short('k').Envar("LANES_KEYS").String()
	Device         = app.Flag("device", "Evdev keyboard device, for real key releases").Envar("LANES_DEVICE").String()
	MIDIPort       = app.Flag("midi-port", "MIDI input port name, or part of it").Envar("LANES_MIDI_PORT").String()
	MIDIBaseNote   = app.Flag("midi-base-note", "MIDI note played on the first lane").Default("48").Envar("LANES_MIDI_BASE_NOTE").Uint8()
	ReleaseAfter   = app.Flag("release-after", "Synthetic release delay for terminal key presses").Default("120ms").Envar("LANES_RELEASE_AFTER").Duration()
	Database       = app.Flag("db", "Score database").Default("./scores.db").Envar("LANES_DB").String()
	LogLevel       = app.Flag("log-level", "debug, info, warn, error or none").Default("warn").Envar("LANES_LOG_LEVEL").String()
	LogFile        = app.Flag("log-file", "Write logs here instead of stderr").Envar("LANES_LOG_FILE").String()
	PenaltyLimit   = app.Flag("penalty-threshold", "Accuracy below which penalties escalate").Default("0.3").Envar("LANES_PENALTY_THRESHOLD").Float64()
	PenaltyPeriod  = app.Flag("penalty-interval", "Time below the threshold per penalty level").Default("5s").Envar("LANES_PENALTY_INTERVAL").Duration()
	PitchDepth     = app.Flag("pitch-depth", "Pitch drop of the lead stem at zero accuracy").Default("0").Envar("LANES_PITCH_DEPTH").Float64()
	Mute           = app.Flag("mute", "Disable audio").Short('m').Envar("LANES_MUTE").Bool()
	EndDelay       = app.Flag("end-delay", "Hold after the last row before the results").Default("5s").Envar("LANES_END_DELAY").Duration()
	Loop           = app.Flag("loop", "Restart the chart when it completes").Envar("LANES_LOOP").Bool()
	Difficulty     = app.Flag("difficulty", "Chart index for files with several difficulties").Default("0").Envar("LANES_DIFFICULTY").Int()
	Replay         = app.Flag("replay", "Replay the latest saved run of the chart and print its score").Envar("LANES_REPLAY").Bool()
)

func init() {
	app.Version(Version)
	app.HelpFlag.Short('h')
}

// Parse reads flags and environment. Call it once from main.
func Parse(args []string) error {
	if _, err := app.Parse(args); nil != err {
		return fmt.Errorf("unable to parse arguments: %w", err)
	}
	if *Lanes < 1 {
		return fmt.Errorf("lane count must be positive, got %d", *Lanes)
	}
	if *FramePeriod <= 0 {
		return fmt.Errorf("tick must be positive, got %v", *FramePeriod)
	}
	return nil
}

// Keys are the lane keys, one rune per lane.
func Keys() []rune {
	return []rune(*keys)
}

// KeyLane returns the lane bound to r, or -1.
func KeyLane(r rune) int {
	for i, c := range Keys() {
		if r == c {
			return i
		}
	}
	return -1
}

func Windows() game.Windows {
	return game.Windows{Perfect: *Perfect, Good: *Good, Ok: *Ok, Miss: *Miss}
}

// Engine builds the session configuration from the parsed flags.
func Engine() engine.Config {
	c := engine.DefaultConfig()
	c.Lanes = *Lanes
	c.Speed = *Speed
	c.SpawnDistance = *SpawnDistance

	c.Judge = judge.DefaultConfig()
	c.Judge.Windows = Windows()
	c.Judge.HitOffset = *HitOffset

	c.Schedule = schedule.Config{
		Delay:          *Delay,
		StepMultiplier: *StepMultiplier,
		RowStep:        *RowStep,
	}

	c.Feedback = feedback.DefaultConfig()
	c.Feedback.PenaltyThreshold = *PenaltyLimit
	c.Feedback.PenaltyInterval = *PenaltyPeriod
	c.Feedback.PitchDepth = *PitchDepth
	return c
}

// ForStepMania adjusts a schedule config for charts imported at rowsPerBeat rows per
// beat, unless the flags were changed from their defaults.
func ForStepMania(c schedule.Config, rowsPerBeat int) schedule.Config {
	d := schedule.DefaultConfig()
	if c.StepMultiplier == d.StepMultiplier && c.RowStep == d.RowStep && rowsPerBeat > 0 {
		c.StepMultiplier = 1 / float64(rowsPerBeat)
		c.RowStep = 1
	}
	return c
}
