// Package mapview keeps a retained-mode map surface in step with the farm
// list and the itinerary highlight set. The View owns one surface for its
// whole life and reconciles markers by farm id, so a farm that stays in the
// list keeps the same marker handle across updates.
package mapview

import (
	"sort"
	"sync"

	"terrefvg/internal/directory"
	"terrefvg/internal/geo"
	"terrefvg/internal/logging"
)

// Options configures the one-time initialization of the surface.
type Options struct {
	Bounds      geo.Bounds
	Center      geo.LatLng
	Zoom        int
	MinZoom     int
	Tiles       TileLayer
	ZoomControl ControlPosition
}

// DefaultOptions frames Friuli Venezia Giulia.
func DefaultOptions() Options {
	return Options{
		Bounds: geo.Bounds{
			SouthWest: geo.LatLng{Lat: 45.5, Lng: 12.0},
			NorthEast: geo.LatLng{Lat: 46.8, Lng: 14.0},
		},
		Center:  geo.LatLng{Lat: 46.1, Lng: 13.0},
		Zoom:    9,
		MinZoom: 8,
		Tiles: TileLayer{
			Name:          "graticule",
			Attribution:   "© OpenStreetMap contributors © CARTO",
			GraticuleStep: 0.25,
		},
		ZoomControl: TopRight,
	}
}

// View reconciles markers and connection lines on a Surface.
type View struct {
	mu         sync.Mutex
	surface    Surface
	unregister func()
	markers    map[string]Marker
	lines      []Polyline
	onSelect   func(id string)
	closed     bool
}

// New runs the initialization protocol on surface: sticky home bounds,
// minimum zoom, initial view, base tiles, zoom control and the resize
// listener. resize may be nil.
func New(surface Surface, resize ResizeSource, opts Options) *View {
	surface.SetMaxBounds(opts.Bounds, 1.0)
	surface.SetMinZoom(opts.MinZoom)
	surface.SetView(opts.Center, opts.Zoom)
	surface.AddTileLayer(opts.Tiles)
	surface.AddZoomControl(opts.ZoomControl)

	v := &View{
		surface: surface,
		markers: make(map[string]Marker),
	}
	if resize != nil {
		v.unregister = resize.OnResize(v.invalidate)
	}
	logging.MapDebug("map view initialized at %s zoom %d", opts.Center, opts.Zoom)
	return v
}

func (v *View) invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.surface.InvalidateSize()
}

// OnSelect sets the callback invoked with a farm id when its marker is
// clicked. Existing markers pick up the new callback.
func (v *View) OnSelect(fn func(id string)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onSelect = fn
}

func (v *View) selected(id string) {
	v.mu.Lock()
	fn := v.onSelect
	closed := v.closed
	v.mu.Unlock()

	if fn != nil && !closed {
		fn(id)
	}
}

// Update reconciles the surface against farms and highlight. Connection
// lines are rebuilt from scratch; markers are updated in place, created or
// removed by farm id. It is a no-op after Close.
func (v *View) Update(farms []directory.Farm, highlight []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	for _, l := range v.lines {
		l.Remove()
	}
	v.lines = v.lines[:0]

	present := make(map[string]directory.Farm, len(farms))
	for _, f := range farms {
		present[f.ID] = f
	}
	lit := make(map[string]bool, len(highlight))
	for _, id := range highlight {
		lit[id] = true
	}

	// Lines first so they sit beneath the markers.
	for _, f := range farms {
		for _, target := range f.Connections {
			to, ok := present[target]
			if !ok {
				continue
			}
			v.lines = append(v.lines, v.surface.AddPolyline(f.Position(), to.Position(), ConnectionStyle))
		}
	}

	for _, f := range farms {
		isHighlighted := lit[f.ID]
		icon := IconFor(f, isHighlighted)
		z := ZIndexFor(isHighlighted)

		if m, ok := v.markers[f.ID]; ok {
			m.SetLatLng(f.Position())
			m.SetIcon(icon)
			m.SetZIndexOffset(z)
			continue
		}

		m := v.surface.AddMarker(f.Position(), icon, z)
		id := f.ID
		m.OnClick(func() { v.selected(id) })
		v.markers[id] = m
	}

	for id, m := range v.markers {
		if _, ok := present[id]; !ok {
			m.Remove()
			delete(v.markers, id)
		}
	}

	logging.MapDebug("reconciled %d markers, %d lines, %d highlighted", len(v.markers), len(v.lines), len(lit))
}

// Close unregisters the resize listener and disposes the surface. It is
// safe to call more than once.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.unregister != nil {
		v.unregister()
		v.unregister = nil
	}
	v.surface.Remove()
	v.markers = make(map[string]Marker)
	v.lines = nil
}

// MarkerIDs returns the registered marker ids, sorted.
func (v *View) MarkerIDs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	ids := make([]string, 0, len(v.markers))
	for id := range v.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarkerFor returns the marker registered for a farm id.
func (v *View) MarkerFor(id string) (Marker, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	m, ok := v.markers[id]
	return m, ok
}

// LineCount returns the number of connection lines currently drawn.
func (v *View) LineCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.lines)
}
