package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"terrefvg/internal/logging"
	"terrefvg/internal/store"
)

// DefaultKey is the store slot holding the usage totals.
const DefaultKey = "geminiUsage"

type contextKey struct{}

// Tracker aggregates token usage in memory; Flush writes it to the slot.
type Tracker struct {
	mu    sync.Mutex
	slots store.Slots
	key   string
	stats Stats
	dirty bool
}

// NewTracker loads the totals stored under key. A corrupt slot is logged
// and counting restarts from zero.
func NewTracker(ctx context.Context, slots store.Slots, key string) (*Tracker, error) {
	if key == "" {
		key = DefaultKey
	}
	t := &Tracker{slots: slots, key: key, stats: newStats()}

	raw, ok, err := slots.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	if !ok {
		return t, nil
	}
	var loaded Stats
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		logging.StoreWarn("usage slot %q unreadable, starting over: %v", key, err)
		return t, nil
	}
	if loaded.ByModel == nil {
		loaded.ByModel = make(map[string]Counts)
	}
	if loaded.ByOperation == nil {
		loaded.ByOperation = make(map[string]Counts)
	}
	t.stats = loaded
	return t, nil
}

// Track records one model call.
func (t *Tracker) Track(model, operation string, input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Total.Add(input, output)
	addTo(t.stats.ByModel, model, input, output)
	addTo(t.stats.ByOperation, operation, input, output)
	t.dirty = true
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.clone()
}

// Flush persists the totals if anything was tracked since the last flush.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}
	data, err := json.Marshal(t.stats)
	if err != nil {
		return fmt.Errorf("failed to encode usage: %w", err)
	}
	if err := t.slots.Put(ctx, t.key, string(data)); err != nil {
		return fmt.Errorf("failed to save usage: %w", err)
	}
	t.dirty = false
	return nil
}

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context, or nil.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}
