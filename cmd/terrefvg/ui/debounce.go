package ui

import (
	"sync"
	"time"
)

// DefaultResizeDuration is the debounce window for terminal resizes.
const DefaultResizeDuration = 150 * time.Millisecond

// Debouncer runs the last scheduled func once calls stop arriving for the
// configured duration.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// Debounce schedules fn, replacing any pending func.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops the pending func, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// ResizeDebouncer coalesces bursts of window size events into one call
// with the final size.
type ResizeDebouncer struct {
	debouncer     *Debouncer
	mu            sync.Mutex
	lastWidth     int
	lastHeight    int
	pendingWidth  int
	pendingHeight int
}

func NewResizeDebouncer(duration time.Duration) *ResizeDebouncer {
	return &ResizeDebouncer{debouncer: NewDebouncer(duration)}
}

// Resize records the size and calls handler with the latest size once the
// burst settles. The handler runs on a timer goroutine.
func (rd *ResizeDebouncer) Resize(width, height int, handler func(width, height int)) {
	rd.mu.Lock()
	rd.pendingWidth, rd.pendingHeight = width, height
	rd.mu.Unlock()

	rd.debouncer.Debounce(func() {
		rd.mu.Lock()
		w, h := rd.pendingWidth, rd.pendingHeight
		rd.lastWidth, rd.lastHeight = w, h
		rd.mu.Unlock()

		handler(w, h)
	})
}

// LastSize returns the last size delivered to a handler.
func (rd *ResizeDebouncer) LastSize() (width, height int) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.lastWidth, rd.lastHeight
}

func (rd *ResizeDebouncer) Cancel() {
	rd.debouncer.Cancel()
}
