package render

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// maxCatchUp bounds the ticks run in one frame after a stall.
const maxCatchUp = 8

type DefaultRenderer struct {
	Out io.Writer

	fd           int
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	X, Y    int
	Content string
	Frames  int // remaining frames until removed
}

// NewDefaultRenderer draws to a terminal.
func NewDefaultRenderer(out *os.File) *DefaultRenderer {
	return &DefaultRenderer{Out: out, fd: int(out.Fd())}
}

func (r *DefaultRenderer) Init() error {
	state, err := term.MakeRaw(r.fd)
	if nil != err {
		return err
	}
	r.restoreState = state

	r.buffer.WriteString("\033[?1049h") // Enable alternate buffer
	r.buffer.WriteString("\033[?25l")   // Make the cursor invisible
	r.buffer.WriteString("\033[2J")     // Clear the screen
	r.Flush()
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	r.buffer.WriteString("\033[?1049l") // Disable alternate buffer
	r.buffer.WriteString("\033[?25h")   // Make the cursor visible
	r.Flush()
	if r.restoreState == nil {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

// Size is the terminal size, 80x24 when it cannot be read.
func (r *DefaultRenderer) Size() (width, height int) {
	width, height, err := term.GetSize(r.fd)
	if nil != err || width <= 0 || height <= 0 {
		return 80, 24
	}
	return width, height
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, strings.Repeat(" ", visibleLen(d.Content)))
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop runs update once per elapsed period, with a fixed dt, then draws a frame.
// It returns when update returns false.
func (r *DefaultRenderer) RenderLoop(
	period time.Duration,
	update func(dt time.Duration) bool,
	render func(),
) {
	last := time.Now()
	var acc time.Duration
	for {
		now := time.Now()
		acc += now.Sub(last)
		last = now
		deadline := now.Add(period)

		steps := 0
		for acc >= period {
			if !update(period) {
				return
			}
			acc -= period
			if steps++; steps == maxCatchUp {
				acc = 0
			}
		}

		render()
		r.tickDecorations()
		r.Flush()

		time.Sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) Clear() {
	r.buffer.WriteString("\033[2J")
}

func (r *DefaultRenderer) Flush() {
	if r.buffer.Len() == 0 {
		return
	}
	io.WriteString(r.Out, r.buffer.String())
	r.buffer.Reset()
}

// visibleLen counts runes outside escape sequences.
func visibleLen(s string) int {
	n := 0
	esc := false
	for _, c := range s {
		switch {
		case esc:
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				esc = false
			}
		case c == '\033':
			esc = true
		default:
			n++
		}
	}
	return n
}
