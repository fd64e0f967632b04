package parser

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"git.lost.host/meutraa/lanes/internal/game"
)

// JSONParser reads {"bpm": 120, "steps": [[0,1,...], ...]} charts. The reader is
// permissive: documents that are not strictly valid still load whatever can be found,
// and anything unusable degrades to an empty chart with warnings.
type JSONParser struct {
	Lanes int
}

func (p *JSONParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read chart: %w", err)
	}
	return []*game.Chart{p.ParseBytes(data)}, nil
}

func (p *JSONParser) ParseBytes(data []byte) *game.Chart {
	lanes := p.Lanes
	if lanes < 1 {
		lanes = game.DefaultLanes
	}
	chart := &game.Chart{BPM: game.DefaultBPM, Lanes: lanes, Steps: [][]bool{}}
	warn := func(format string, v ...interface{}) {
		chart.Warnings = append(chart.Warnings, fmt.Sprintf(format, v...))
	}

	if !gjson.ValidBytes(data) {
		warn("document is not valid json, reading it permissively")
	}

	bpm := gjson.GetBytes(data, "bpm")
	switch {
	case !bpm.Exists():
		warn("no bpm, using %d", game.DefaultBPM)
	case bpm.Type != gjson.Number || bpm.Int() <= 0:
		warn("invalid bpm %q, using %d", bpm.Raw, game.DefaultBPM)
	default:
		chart.BPM = int(bpm.Int())
	}

	steps := gjson.GetBytes(data, "steps")
	if !steps.Exists() {
		// older charts call the rows notes
		steps = gjson.GetBytes(data, "notes")
	}
	if !steps.IsArray() {
		warn("no steps, the chart is empty")
		return chart
	}

	mismatched := 0
	steps.ForEach(func(_, row gjson.Result) bool {
		if !row.IsArray() {
			warn("skipping row %s", row.Raw)
			return true
		}
		values := row.Array()
		if len(values) == 0 {
			return true
		}
		if len(values) != lanes {
			mismatched++
		}
		flags := make([]bool, lanes)
		for lane, v := range values {
			if lane >= lanes {
				break
			}
			flags[lane] = v.Type == gjson.Number && v.Int() == 1
		}
		chart.Steps = append(chart.Steps, flags)
		return true
	})
	if mismatched > 0 {
		warn("%d rows are not %d lanes wide", mismatched, lanes)
	}
	if len(chart.Steps) == 0 {
		warn("no steps, the chart is empty")
	}
	return chart
}
