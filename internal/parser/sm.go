package parser

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"git.lost.host/meutraa/lanes/internal/game"
)

// DefaultRowsPerBeat quantizes StepMania notes to sixteenths.
const DefaultRowsPerBeat = 4

// StepManiaParser converts .sm charts into fixed resolution step rows, one chart per
// supported difficulty. Tempo changes are flattened to the first BPM. Schedule these
// charts with a step multiplier of 1/RowsPerBeat and a row step of 1.
type StepManiaParser struct {
	Lanes       int
	RowsPerBeat int
}

type bpmChange struct {
	StartingBeat float64
	Value        float64
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note

func (p *StepManiaParser) isNote(ch byte) bool {
	return ch == '1' || ch == '2' || ch == '4'
}

func (p *StepManiaParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read chart: %w", err)
	}
	return p.ParseString(string(data))
}

func (p *StepManiaParser) ParseString(data string) ([]*game.Chart, error) {
	rpb := p.RowsPerBeat
	if rpb < 1 {
		rpb = DefaultRowsPerBeat
	}
	lanes := p.Lanes
	if lanes < 1 {
		lanes = game.DefaultLanes
	}

	str := strings.ReplaceAll(data, "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]

	type difficulty struct {
		game.Difficulty
		section string
	}
	difficulties := []difficulty{}
	for _, section := range sections[1:] {
		lines := strings.SplitN(section, "\n", 7)
		if len(lines) < 7 {
			continue
		}
		chartType := strings.TrimSuffix(strings.TrimSpace(lines[1]), ":")
		nKeys, ok := game.NKeyMap[chartType]
		if !ok {
			continue
		}
		difficulties = append(difficulties, difficulty{
			Difficulty: game.Difficulty{
				Name:  strings.TrimSuffix(strings.TrimSpace(lines[3]), ":"),
				Meter: strings.TrimSuffix(strings.TrimSpace(lines[4]), ":"),
				NKeys: nKeys,
			},
			section: lines[6],
		})
	}

	offset := 0.0
	bpms := []bpmChange{}

	for _, mdl := range strings.Split(meta, "\n#") {
		mdl = strings.TrimPrefix(strings.TrimSpace(mdl), "#")
		if strings.HasPrefix(mdl, "OFFSET:") {
			mdl = strings.TrimPrefix(mdl, "OFFSET:")
			mdl = strings.TrimSuffix(mdl, ";")
			offs, err := strconv.ParseFloat(strings.TrimSpace(mdl), 64)
			if nil != err {
				return nil, fmt.Errorf("invalid offset %q: %w", mdl, err)
			}
			offset = -offs
		} else if strings.HasPrefix(mdl, "BPMS:") {
			mdl = strings.TrimPrefix(mdl, "BPMS:")
			mdl = strings.ReplaceAll(mdl, "\n", "")
			for _, bpm := range strings.Split(strings.TrimSuffix(mdl, ";"), ",") {
				as := strings.Split(bpm, "=")
				if len(as) != 2 {
					return nil, fmt.Errorf("invalid bpm change %q", bpm)
				}
				sb, err := strconv.ParseFloat(strings.TrimSpace(as[0]), 64)
				if nil != err {
					return nil, fmt.Errorf("invalid bpm beat %q: %w", as[0], err)
				}
				value, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
				if nil != err {
					return nil, fmt.Errorf("invalid bpm value %q: %w", as[1], err)
				}
				bpms = append(bpms, bpmChange{StartingBeat: sb, Value: value})
			}
		}
	}

	warnings := []string{}
	bpm := game.DefaultBPM
	if len(bpms) == 0 || bpms[0].Value <= 0 {
		warnings = append(warnings, fmt.Sprintf("no usable bpm, using %d", game.DefaultBPM))
	} else {
		bpm = int(math.Round(bpms[0].Value))
		if float64(bpm) != bpms[0].Value {
			warnings = append(warnings, fmt.Sprintf("bpm %v rounded to %d", bpms[0].Value, bpm))
		}
		if len(bpms) > 1 {
			warnings = append(warnings, fmt.Sprintf("%d tempo changes ignored", len(bpms)-1))
		}
	}

	// Leading silence before the first measure, in rows
	lead := 0
	if offset > 0 {
		lead = int(math.Round(offset * float64(bpm) / 60 * float64(rpb)))
	} else if offset < 0 {
		warnings = append(warnings, fmt.Sprintf("negative offset %vs ignored", offset))
	}

	charts := []*game.Chart{}
	for _, difficulty := range difficulties {
		chart := &game.Chart{
			BPM:        bpm,
			Lanes:      lanes,
			Difficulty: difficulty.Difficulty,
			Warnings:   append([]string{}, warnings...),
		}
		if int(difficulty.NKeys) > lanes {
			chart.Warnings = append(chart.Warnings,
				fmt.Sprintf("%d columns do not fit %d lanes, extra columns dropped", difficulty.NKeys, lanes))
		}

		section := difficulty.section
		if i := strings.Index(section, ";"); i >= 0 {
			section = section[:i]
		}
		blocks := strings.Split(section, ",")
		chart.Steps = make([][]bool, lead+len(blocks)*4*rpb)
		for i := range chart.Steps {
			chart.Steps[i] = make([]bool, lanes)
		}

		merged := 0
		for m, block := range blocks {
			lines := []string{}
			for _, l := range strings.Split(block, "\n") {
				if i := strings.Index(l, "//"); i >= 0 {
					l = l[:i]
				}
				l = strings.TrimSpace(l)
				if len(l) == int(difficulty.NKeys) {
					lines = append(lines, l)
				}
			}
			if len(lines) == 0 {
				continue
			}

			// Beat count is 4 per block
			beatsPerLine := 4.0 / float64(len(lines))
			for i, line := range lines {
				beat := float64(m*4) + float64(i)*beatsPerLine
				row := lead + int(math.Round(beat*float64(rpb)))
				if row >= len(chart.Steps) {
					row = len(chart.Steps) - 1
				}
				for c := 0; c < len(line) && c < lanes; c++ {
					if !p.isNote(line[c]) {
						continue
					}
					if chart.Steps[row][c] {
						merged++
					}
					chart.Steps[row][c] = true
				}
			}
		}
		if merged > 0 {
			chart.Warnings = append(chart.Warnings, fmt.Sprintf("%d notes merged by quantization", merged))
		}
		charts = append(charts, chart)
	}

	return charts, nil
}
