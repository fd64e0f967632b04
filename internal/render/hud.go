package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"git.lost.host/meutraa/lanes/internal/feedback"
	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/judge"
	"git.lost.host/meutraa/lanes/internal/pool"
	"git.lost.host/meutraa/lanes/internal/schedule"
	"git.lost.host/meutraa/lanes/internal/score"
	"git.lost.host/meutraa/lanes/internal/theme"
)

// View is what the HUD reads from a running session.
type View interface {
	Lanes() int
	Notes(fn func(h pool.Handle, n pool.Note))
	SignedDistance(h pool.Handle) (float64, bool)
	Held(lane int) bool
	Stats() score.Stats
	ScoreState() score.Snapshot
	Feedback() *feedback.Feedback
	Scheduler() *schedule.Scheduler
	Paused() bool
}

// Layout places lanes and the hit bar on the terminal grid. Rows and columns are
// 1 based like the cursor escape codes.
type Layout struct {
	Width, Height int
	Lanes         int
	Spacing       int
	// Rows between the hit bar and the bottom of the screen
	BarRow int
	// Distance units covered by one terminal row
	UnitsPerRow float64
}

// NewLayout fits lanes into width and scales rows so a note spawned at
// spawnDistance starts near the top.
func NewLayout(width, height, lanes int, spawnDistance float64) Layout {
	l := Layout{Width: width, Height: height, Lanes: lanes, Spacing: 4, BarRow: 3}
	if lanes > 1 {
		if fit := (width - 34) / lanes; fit < l.Spacing {
			l.Spacing = fit
		}
	}
	if l.Spacing < 2 {
		l.Spacing = 2
	}
	field := l.HitRow() - 2
	if field < 1 {
		field = 1
	}
	l.UnitsPerRow = spawnDistance / float64(field)
	if l.UnitsPerRow <= 0 {
		l.UnitsPerRow = 1
	}
	return l
}

func (l Layout) HitRow() int {
	return l.Height - l.BarRow
}

// Column is the screen column of a lane.
func (l Layout) Column(lane int) int {
	return l.Width/2 - (l.Lanes-1)*l.Spacing/2 + lane*l.Spacing
}

// SideColumn is where the stats panel starts.
func (l Layout) SideColumn() int {
	c := l.Column(0) - 28
	if c < 2 {
		return 2
	}
	return c
}

// NoteRow converts a signed distance to a screen row.
func (l Layout) NoteRow(distance float64) (int, bool) {
	row := l.HitRow() - int(math.Round(distance/l.UnitsPerRow))
	return row, row >= 2 && row <= l.Height
}

type cell struct {
	row, col int
}

// HUD draws the playfield and the stats panel, and shows judgements as they happen.
type HUD struct {
	r      Renderer
	th     theme.Theme
	layout Layout

	drawn []cell
	stats bool
}

func NewHUD(r Renderer, th theme.Theme, layout Layout) *HUD {
	return &HUD{r: r, th: th, layout: layout, stats: true}
}

func (h *HUD) Layout() Layout {
	return h.layout
}

// Resize switches to a new layout and redraws from a clear screen.
func (h *HUD) Resize(layout Layout) {
	h.layout = layout
	h.drawn = h.drawn[:0]
	h.r.Clear()
}

func (h *HUD) ToggleStats() {
	h.stats = !h.stats
	h.r.Clear()
	h.drawn = h.drawn[:0]
}

func (h *HUD) Draw(v View) {
	l := h.layout
	for _, c := range h.drawn {
		h.r.Fill(c.row, c.col, " ")
	}
	h.drawn = h.drawn[:0]

	for lane := 0; lane < v.Lanes(); lane++ {
		h.r.Fill(l.HitRow(), l.Column(lane), h.th.RenderHitField(lane, v.Held(lane)))
	}

	v.Notes(func(handle pool.Handle, n pool.Note) {
		if n.State != pool.Traveling || n.Processed() {
			return
		}
		d, ok := v.SignedDistance(handle)
		if !ok {
			return
		}
		row, visible := l.NoteRow(d)
		if !visible || row == l.HitRow() {
			return
		}
		c := cell{row: row, col: l.Column(n.Lane)}
		h.r.Fill(c.row, c.col, h.th.RenderNote(n.Lane))
		h.drawn = append(h.drawn, c)
	})

	h.drawProgress(v.Scheduler())
	if h.stats {
		h.drawStats(v)
	}
}

func (h *HUD) drawProgress(s *schedule.Scheduler) {
	w := h.layout.Width
	filled := int(math.Round(float64(w) * s.Progress()))
	if filled > w {
		filled = w
	}
	h.r.Fill(1, 1, strings.Repeat("━", filled)+strings.Repeat(" ", w-filled))
}

func (h *HUD) drawStats(v View) {
	col := h.layout.SideColumn()
	snap := v.ScoreState()
	stats := v.Stats()
	fb := v.Feedback()

	h.r.Fill(3, col, fmt.Sprintf("     Score:  %8d", snap.TotalScore))
	h.r.Fill(4, col, fmt.Sprintf("     Combo:  %8d", snap.Combo))
	h.r.Fill(5, col, fmt.Sprintf(" Max combo:  %8d", snap.MaxCombo))
	h.r.Fill(6, col, fmt.Sprintf("  Hit rate:  %7.1f%%", stats.Ratio()*100))

	h.r.Fill(8, col, fmt.Sprintf("  Accuracy:  %s", bar(fb.Accuracy(), 10)))
	h.r.Fill(9, col, fmt.Sprintf("    Volume:  %s", bar(fb.Level(), 10)))
	penalty := "          "
	if fb.Penalty() > 0 {
		penalty = fmt.Sprintf("\033[1;31m%10d\033[0m", fb.Penalty())
	}
	h.r.Fill(10, col, "   Penalty:  "+penalty)

	counts := [game.NumOutcomes]int{stats.Perfect, stats.Good, stats.Ok, stats.TooEarly, stats.Miss}
	for i, o := range game.Outcomes {
		h.r.Fill(12+i, col, fmt.Sprintf("%s:  %6d", h.th.RenderLabel(o), counts[i]))
	}

	s := v.Scheduler()
	status := "          "
	switch {
	case v.Paused():
		status = "  PAUSED  "
	case !s.Playing() && !s.Complete():
		status = fmt.Sprintf("%8.1fs ", s.Countdown().Round(100*time.Millisecond).Seconds())
	}
	h.r.Fill(18, col, status)
}

// bar draws v in [0,1] as a gauge of n cells.
func bar(v float64, n int) string {
	full := int(math.Round(v * float64(n)))
	if full < 0 {
		full = 0
	}
	if full > n {
		full = n
	}
	return strings.Repeat("█", full) + strings.Repeat("░", n-full)
}

// Judged shows the outcome indicator in the middle of the screen.
func (h *HUD) Judged(j judge.Judgement) {
	l := h.layout
	h.r.AddDecoration(l.Width/2-4, l.Height/2, h.th.RenderOutcome(j.Outcome.Indicator()), 60)
	if j.Outcome.Indicator() == game.Miss && j.Note != pool.None {
		col := l.Column(j.Lane)
		h.r.AddDecoration(col-1, l.HitRow()-1, "\033[1;31m╭ ╮\033[0m", 120)
		h.r.AddDecoration(col-1, l.HitRow()+1, "\033[1;31m╰ ╯\033[0m", 120)
	}
}

func (h *HUD) LanePressed(lane int)  {}
func (h *HUD) LaneReleased(lane int) {}

// Results is the final screen.
func (h *HUD) Results(snap score.Snapshot, stats score.Stats, best *score.Result) {
	h.r.Clear()
	col := h.layout.Width/2 - 12
	row := h.layout.Height/2 - 6
	lines := []string{
		fmt.Sprintf("     Score:  %8d", snap.TotalScore),
		fmt.Sprintf(" Max combo:  %8d", snap.MaxCombo),
		fmt.Sprintf("  Hit rate:  %7.1f%%", stats.Ratio()*100),
	}
	counts := [game.NumOutcomes]int{stats.Perfect, stats.Good, stats.Ok, stats.TooEarly, stats.Miss}
	for i, o := range game.Outcomes {
		lines = append(lines, fmt.Sprintf("%s:  %8d", h.th.RenderLabel(o), counts[i]))
	}
	if best != nil {
		lines = append(lines, fmt.Sprintf("      Best:  %8d", best.Score.TotalScore))
	}
	lines = append(lines, "", "  press any key")
	for i, line := range lines {
		h.r.Fill(row+i, col, line)
	}
	h.r.Flush()
}
