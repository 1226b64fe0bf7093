package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
)

const (
	barWidth  = 25
	nameWidth = 25
)

// FormatETA renders the remaining time as hours, minutes or seconds, or a
// dash when it cannot be estimated.
func FormatETA(s Snapshot) string {
	if !s.ETAKnown {
		return "---"
	}
	secs := s.ETA.Seconds()
	switch {
	case secs > 3600:
		return fmt.Sprintf("%.1fh", secs/3600)
	case secs > 60:
		return fmt.Sprintf("%.1fm", secs/60)
	default:
		return fmt.Sprintf("%.1fs", secs)
	}
}

// Bar draws a fixed-width bar with cells filled in proportion to percent.
func Bar(percent float64) string {
	filled := min(max(int(barWidth*percent/100), 0), barWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func fitName(name string) string {
	runes := []rune(name)
	if len(runes) > nameWidth {
		runes = runes[:nameWidth]
	}
	return fmt.Sprintf("%-*s", nameWidth, string(runes))
}

func megabytes(n int64) float64 {
	return float64(n) / 1024 / 1024
}

// LineRenderer redraws a single terminal line in place and ends it with a
// newline once the transfer is complete.
type LineRenderer struct {
	w io.Writer
}

func NewLineRenderer(w io.Writer) *LineRenderer {
	return &LineRenderer{w: w}
}

func (r *LineRenderer) Render(s Snapshot) {
	fmt.Fprint(r.w, Line(s))
	if s.Complete {
		fmt.Fprintln(r.w)
	}
}

func Line(s Snapshot) string {
	return fmt.Sprintf("\r📥 %s [%s] %5.1f%% | %6.1fMB/%6.1fMB | %5.0f KB/s | ETA: %6s",
		fitName(s.FileName), Bar(s.Percent), s.Percent,
		megabytes(s.Transferred), megabytes(s.Total), s.KBPerSec(), FormatETA(s))
}

// BarRenderer feeds snapshots into a progressbar for terminals that handle
// its ANSI output. One BarRenderer serves one file.
type BarRenderer struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func NewBarRenderer(w io.Writer) *BarRenderer {
	return &BarRenderer{w: w}
}

func (r *BarRenderer) Render(s Snapshot) {
	if r.bar == nil {
		r.bar = progressbar.NewOptions64(
			max(s.Total, 1),
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription(fitName(s.FileName)),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	if s.Complete {
		_ = r.bar.Finish()
		fmt.Fprintln(r.w)
		return
	}
	_ = r.bar.Set64(s.Transferred)
}

// NewRenderer returns the renderer for a configured style name.
func NewRenderer(style string, w io.Writer) Renderer {
	if style == "bar" {
		return NewBarRenderer(w)
	}
	return NewLineRenderer(w)
}
