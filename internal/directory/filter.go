package directory

import "strings"

// FilterSet is the set of active categories. The zero value is empty and
// means "show everything". It is a comparable value, so snapshots can be
// passed around and compared freely.
type FilterSet struct {
	mask uint8
}

// NewFilterSet builds a set from the given categories. Unknown categories
// are ignored.
func NewFilterSet(cats ...Category) FilterSet {
	var fs FilterSet
	for _, c := range cats {
		if i := c.index(); i >= 0 {
			fs.mask |= 1 << i
		}
	}
	return fs
}

// Toggle returns a copy with c flipped.
func (fs FilterSet) Toggle(c Category) FilterSet {
	if i := c.index(); i >= 0 {
		fs.mask ^= 1 << i
	}
	return fs
}

func (fs FilterSet) Has(c Category) bool {
	i := c.index()
	return i >= 0 && fs.mask&(1<<i) != 0
}

func (fs FilterSet) Empty() bool { return fs.mask == 0 }

// Len returns the number of active categories.
func (fs FilterSet) Len() int {
	n := 0
	for m := fs.mask; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// Categories lists the active categories in filter-bar order.
func (fs FilterSet) Categories() []Category {
	var out []Category
	for _, c := range AllCategories {
		if fs.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether a farm is shown under this filter: an empty set
// shows every farm, otherwise at least one product category must be active.
func (fs FilterSet) Matches(f Farm) bool {
	if fs.Empty() {
		return true
	}
	for _, p := range f.Products {
		if fs.Has(p.Category) {
			return true
		}
	}
	return false
}

func (fs FilterSet) String() string {
	if fs.Empty() {
		return "all"
	}
	cats := fs.Categories()
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
