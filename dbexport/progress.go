package dbexport

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Progress receives row counts while rows are streamed.
type Progress interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int64)  {}
func (noProgress) Update(int64) {}
func (noProgress) Finish()      {}

// BarProgress renders a text progress bar on one terminal line.
type BarProgress struct {
	w       io.Writer
	every   int64
	total   int64
	current int64
	started time.Time
}

// NewBarProgress writes to w and redraws every `every` rows.
func NewBarProgress(w io.Writer, every int64) *BarProgress {
	if every <= 0 {
		every = 1000
	}
	return &BarProgress{w: w, every: every}
}

func (p *BarProgress) Start(total int64) {
	p.total, p.current, p.started = total, 0, time.Now()
	p.render()
}

func (p *BarProgress) Update(current int64) {
	p.current = current
	if current%p.every == 0 {
		p.render()
	}
}

func (p *BarProgress) Finish() {
	p.render()
	fmt.Fprintln(p.w)
}

func (p *BarProgress) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\rDownloaded %d rows...", p.current)
		return
	}
	percent := float64(p.current) / float64(p.total) * 100
	if percent > 100 {
		percent = 100
	}
	const barWidth = 40
	filled := int(float64(barWidth) * percent / 100)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}
	fmt.Fprintf(p.w, "\rProgress: [%s] %.1f%% (%d/%d) %.0f rows/s", bar, percent, p.current, p.total, rate)
}
