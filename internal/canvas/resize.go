package canvas

import "sync"

// Resizer fans container resize notifications out to listeners. It
// implements mapview.ResizeSource.
type Resizer struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func()
}

// NewResizer creates an empty Resizer.
func NewResizer() *Resizer {
	return &Resizer{listeners: make(map[int]func())}
}

// OnResize registers fn and returns its unregister func.
func (r *Resizer) OnResize(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.listeners, id)
		})
	}
}

// Notify calls every registered listener.
func (r *Resizer) Notify() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered listeners.
func (r *Resizer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
