package render

import (
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (width, height int)
	AddDecoration(col, row int, content string, frames int)
	RenderLoop(period time.Duration, update func(dt time.Duration) bool, render func())
	Fill(row, column int, message string)
	Clear()
	Flush()
}
