package testdata

import (
	"git.lost.host/meutraa/lanes/internal/game"
)

// ChartJSON is a short two lane pattern in the chart text format.
const ChartJSON = `{
  "bpm": 150,
  "steps": [
    [1,0,0,0,0,0,0,0,0,0,0,0],
    [0,0,0,0,0,0,0,0,0,0,0,0],
    [0,1,0,0,0,0,0,0,0,0,0,0],
    [0,0,0,0,0,0,0,0,0,0,0,0],
    [1,1,0,0,0,0,0,0,0,0,0,1],
    [0,0,0,0,0,0,0,0,0,0,0,0]
  ]
}`

// Loose is the older format: rows under "notes" and trailing commas a strict decoder
// would refuse.
const Loose = `{
  "bpm": 96,
  "notes": [
    [0, 0, 1],
    [1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1],
    [],
  ],
}`

// StepMania is a minimal single difficulty .sm file with two measures.
const StepMania = `#TITLE:Test;
#OFFSET:-0.000;
#BPMS:0.000=140.000;
#NOTES:
     dance-single:
     :
     Hard:
     7:
     0.1,0.2,0.3,0.4,0.5:
1000
0100
0010
0001
,  // measure 2
1000
0000
0000
0000
0000
0000
0000
0110
;
`

// Chart builds a chart from 0/1 rows.
func Chart(bpm int, rows ...[]int) *game.Chart {
	steps := make([][]bool, len(rows))
	for i, row := range rows {
		steps[i] = make([]bool, game.DefaultLanes)
		for lane, on := range row {
			if lane < game.DefaultLanes {
				steps[i][lane] = on == 1
			}
		}
	}
	return &game.Chart{BPM: bpm, Steps: steps, Lanes: game.DefaultLanes}
}
