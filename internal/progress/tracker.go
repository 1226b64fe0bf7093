// Package progress turns raw byte counts reported by a transfer into
// throttled progress, throughput and ETA updates.
package progress

import (
	"math"
	"time"
)

const (
	minRenderInterval = 500 * time.Millisecond
	minPercentStep    = 0.5
	completePercent   = 99.9
)

// Snapshot is the numeric state of a transfer at one render.
type Snapshot struct {
	FileName    string
	Total       int64
	Transferred int64
	Percent     float64
	Elapsed     time.Duration
	BytesPerSec float64
	ETA         time.Duration
	ETAKnown    bool
	Complete    bool
}

func (s Snapshot) KBPerSec() float64 {
	return s.BytesPerSec / 1024
}

// Renderer displays snapshots. Render is called on the transfer hot path.
type Renderer interface {
	Render(Snapshot)
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithRenderer(r Renderer) Option {
	return func(t *Tracker) {
		t.renderer = r
	}
}

// Tracker accumulates progress for a single file. It is owned by one
// download and is not safe for concurrent use.
type Tracker struct {
	fileName    string
	total       int64
	transferred int64
	start       time.Time
	lastDisplay time.Time
	lastPercent float64
	complete    bool
	firstUpdate bool
	renders     int

	now      func() time.Time
	renderer Renderer
}

func New(fileName string, total int64, opts ...Option) *Tracker {
	t := &Tracker{
		fileName:    fileName,
		total:       total,
		firstUpdate: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.start = t.now()
	return t
}

// OnProgress adapts the tracker to the transfer notification contract.
func (t *Tracker) OnProgress(transferred, _ int64) {
	t.Update(transferred)
}

// Update records transferred bytes and reports whether a render happened.
// Once the transfer reached completion further calls are no-ops.
func (t *Tracker) Update(transferred int64) bool {
	if t.complete {
		return false
	}

	transferred = min(max(transferred, 0), max(t.total, 0))
	t.transferred = max(t.transferred, transferred)

	now := t.now()
	percent := t.percent()

	due := now.Sub(t.lastDisplay) >= minRenderInterval ||
		math.Abs(percent-t.lastPercent) >= minPercentStep ||
		percent >= completePercent ||
		t.firstUpdate
	if !due {
		return false
	}

	t.lastDisplay = now
	t.lastPercent = percent
	t.firstUpdate = false

	if percent >= completePercent {
		t.complete = true
	}
	t.render(t.snapshotAt(now))
	return true
}

// Snapshot computes the current state without rendering.
func (t *Tracker) Snapshot() Snapshot {
	return t.snapshotAt(t.now())
}

func (t *Tracker) Complete() bool {
	return t.complete
}

func (t *Tracker) Transferred() int64 {
	return t.transferred
}

// Renders counts how many times the tracker has drawn.
func (t *Tracker) Renders() int {
	return t.renders
}

func (t *Tracker) Start() time.Time {
	return t.start
}

func (t *Tracker) render(s Snapshot) {
	t.renders++
	if t.renderer != nil {
		t.renderer.Render(s)
	}
}

func (t *Tracker) percent() float64 {
	if t.total <= 0 {
		return 100
	}
	return min(100, 100*float64(t.transferred)/float64(t.total))
}

func (t *Tracker) snapshotAt(now time.Time) Snapshot {
	s := Snapshot{
		FileName:    t.fileName,
		Total:       t.total,
		Transferred: t.transferred,
		Percent:     t.percent(),
		Elapsed:     now.Sub(t.start),
		Complete:    t.complete,
	}

	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.BytesPerSec = float64(t.transferred) / secs
	}

	if s.Complete {
		s.Percent = 100
		s.Transferred = t.total
		return s
	}

	if s.BytesPerSec > 0 && s.Percent < 100 {
		remaining := float64(t.total - t.transferred)
		s.ETA = time.Duration(remaining / s.BytesPerSec * float64(time.Second))
		s.ETAKnown = true
	}
	return s
}
