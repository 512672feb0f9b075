package mapview

import (
	"sync"

	"terrefvg/internal/geo"
)

type call struct {
	op   string
	args []any
}

type fakeMarker struct {
	pos      geo.LatLng
	icon     MarkerIcon
	z        int
	click    func()
	removed  bool
	setIcons int
}

func (m *fakeMarker) SetLatLng(pos geo.LatLng) { m.pos = pos }
func (m *fakeMarker) SetIcon(icon MarkerIcon)  { m.icon = icon; m.setIcons++ }
func (m *fakeMarker) SetZIndexOffset(z int)    { m.z = z }
func (m *fakeMarker) OnClick(fn func())        { m.click = fn }
func (m *fakeMarker) Remove()                  { m.removed = true }

type fakeLine struct {
	a, b    geo.LatLng
	style   LineStyle
	removed bool
}

func (l *fakeLine) Remove() { l.removed = true }

// fakeSurface records every call the view makes.
type fakeSurface struct {
	calls       []call
	markers     []*fakeMarker
	lines       []*fakeLine
	invalidated int
	removed     int
}

func (s *fakeSurface) record(op string, args ...any) {
	s.calls = append(s.calls, call{op: op, args: args})
}

func (s *fakeSurface) SetMaxBounds(b geo.Bounds, viscosity float64) {
	s.record("SetMaxBounds", b, viscosity)
}
func (s *fakeSurface) SetMinZoom(z int)                   { s.record("SetMinZoom", z) }
func (s *fakeSurface) SetView(c geo.LatLng, zoom int)     { s.record("SetView", c, zoom) }
func (s *fakeSurface) AddTileLayer(layer TileLayer)       { s.record("AddTileLayer", layer.Name) }
func (s *fakeSurface) AddZoomControl(pos ControlPosition) { s.record("AddZoomControl", pos) }

func (s *fakeSurface) AddMarker(pos geo.LatLng, icon MarkerIcon, z int) Marker {
	s.record("AddMarker", icon.Label)
	m := &fakeMarker{pos: pos, icon: icon, z: z}
	s.markers = append(s.markers, m)
	return m
}

func (s *fakeSurface) AddPolyline(a, b geo.LatLng, style LineStyle) Polyline {
	s.record("AddPolyline")
	l := &fakeLine{a: a, b: b, style: style}
	s.lines = append(s.lines, l)
	return l
}

func (s *fakeSurface) InvalidateSize() { s.invalidated++ }
func (s *fakeSurface) Remove()         { s.removed++ }

func (s *fakeSurface) liveLines() int {
	n := 0
	for _, l := range s.lines {
		if !l.removed {
			n++
		}
	}
	return n
}

type fakeResize struct {
	mu           sync.Mutex
	listeners    []func()
	unregistered int
}

func (r *fakeResize) OnResize(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.unregistered++
		r.listeners = nil
	}
}

func (r *fakeResize) fire() {
	r.mu.Lock()
	ls := append([]func(){}, r.listeners...)
	r.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}
