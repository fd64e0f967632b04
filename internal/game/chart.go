package game

// DefaultBPM replaces a missing or non-positive tempo.
const DefaultBPM = 120

// DefaultLanes is the canonical lane count of a chart row.
const DefaultLanes = 12

// Chart is an immutable, fully loaded song chart.
type Chart struct {
	BPM   int
	Steps [][]bool // one row of lane flags per step
	Lanes int

	// Load time corrections, for example a replaced tempo
	Warnings []string

	Difficulty Difficulty
}

// Playable reports whether the chart has any rows to schedule.
func (c *Chart) Playable() bool {
	return c != nil && len(c.Steps) > 0
}

// NoteCount is the number of lane activations in the chart.
func (c *Chart) NoteCount() int {
	n := 0
	for _, row := range c.Steps {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}
