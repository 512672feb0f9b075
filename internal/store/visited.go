package store

import (
	"context"
	"encoding/json"
	"fmt"

	"terrefvg/internal/logging"
)

// VisitedSet is the ordered set of farm ids the user checked in to. It
// only grows; every successful check-in rewrites the whole slot.
type VisitedSet struct {
	slots Slots
	key   string
	ids   []string
	index map[string]struct{}
}

// LoadVisited reads the set stored under key. An absent or malformed slot
// yields an empty set. A read failure also yields an empty, usable set
// together with the error so the caller can report it.
func LoadVisited(ctx context.Context, slots Slots, key string) (*VisitedSet, error) {
	v := &VisitedSet{slots: slots, key: key, index: make(map[string]struct{})}

	raw, ok, err := slots.Get(ctx, key)
	if err != nil {
		logging.StoreError("failed to load visited set: %v", err)
		return v, fmt.Errorf("failed to load visited set: %w", err)
	}
	if !ok {
		return v, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logging.StoreWarn("visited slot %q malformed, starting empty: %v", key, err)
		return v, nil
	}
	for _, id := range ids {
		v.add(id)
	}
	logging.StoreDebug("loaded %d visited farms", len(v.ids))
	return v, nil
}

func (v *VisitedSet) add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := v.index[id]; ok {
		return false
	}
	v.index[id] = struct{}{}
	v.ids = append(v.ids, id)
	return true
}

// CheckIn records a visit. Checking in twice is a no-op that performs no
// write. On a failed write the in-memory set is left unchanged.
func (v *VisitedSet) CheckIn(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("empty farm id")
	}
	if v.Has(id) {
		return false, nil
	}

	next := make([]string, len(v.ids), len(v.ids)+1)
	copy(next, v.ids)
	next = append(next, id)

	data, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to encode visited set: %w", err)
	}
	if err := v.slots.Put(ctx, v.key, string(data)); err != nil {
		return false, fmt.Errorf("failed to persist check-in: %w", err)
	}

	v.add(id)
	logging.Store("checked in to %s (%d visited)", id, len(v.ids))
	return true, nil
}

func (v *VisitedSet) Has(id string) bool {
	_, ok := v.index[id]
	return ok
}

// IDs returns the visited ids in check-in order.
func (v *VisitedSet) IDs() []string {
	out := make([]string, len(v.ids))
	copy(out, v.ids)
	return out
}

func (v *VisitedSet) Len() int { return len(v.ids) }
