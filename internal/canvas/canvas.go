// Package canvas is a terminal map surface. It projects lat/lng onto a
// character grid, keeps the viewport inside sticky bounds and renders tile
// graticule, dashed polylines and z-ordered markers. It implements
// mapview.Surface.
package canvas

import (
	"math"
	"sort"
	"sync"

	"terrefvg/internal/geo"
	"terrefvg/internal/logging"
	"terrefvg/internal/mapview"
)

const (
	// At baseZoom the viewport spans baseSpan degrees of longitude.
	baseZoom = 8
	baseSpan = 2.2

	// Terminal cells are about twice as tall as they are wide.
	cellAspect = 2.0

	DefaultMaxZoom = 14

	// PanStep is the number of columns moved per pan step; rows move half.
	PanStep = 4
)

var _ mapview.Surface = (*Canvas)(nil)

// Canvas is a retained-mode map drawn with runes.
type Canvas struct {
	mu sync.Mutex

	width, height      int
	pendingW, pendingH int
	center             geo.LatLng
	zoom               int
	minZoom, maxZoom   int
	bounds             geo.Bounds
	hasBounds          bool
	viscosity          float64
	tiles              []mapview.TileLayer
	zoomControl        mapview.ControlPosition
	markers            []*marker
	lines              []*polyline
	seq                int
	focused            *marker
	removed            bool
	palette            Palette
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithPalette sets the colours used to draw.
func WithPalette(p Palette) Option {
	return func(c *Canvas) { c.palette = p }
}

// WithMaxZoom caps zooming in.
func WithMaxZoom(z int) Option {
	return func(c *Canvas) { c.maxZoom = z }
}

// New creates a canvas of width x height cells.
func New(width, height int, opts ...Option) *Canvas {
	c := &Canvas{
		width:    max(width, 1),
		height:   max(height, 1),
		zoom:     baseZoom,
		minZoom:  0,
		maxZoom:  DefaultMaxZoom,
		palette:  DefaultPalette(),
		pendingW: width,
		pendingH: height,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMaxBounds restricts the viewport. viscosity 1 keeps the whole viewport
// inside b; anything lower only keeps the center inside.
func (c *Canvas) SetMaxBounds(b geo.Bounds, viscosity float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.bounds = b
	c.hasBounds = b.Valid()
	c.viscosity = viscosity
	c.clampLocked()
}

func (c *Canvas) SetMinZoom(z int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.minZoom = z
	if c.zoom < z {
		c.zoom = z
	}
	c.clampLocked()
}

func (c *Canvas) SetView(center geo.LatLng, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.center = center
	c.zoom = c.clampZoom(zoom)
	c.clampLocked()
}

func (c *Canvas) AddTileLayer(layer mapview.TileLayer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.tiles = append(c.tiles, layer)
}

func (c *Canvas) AddZoomControl(pos mapview.ControlPosition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.zoomControl = pos
}

// AddMarker places a marker. On a removed canvas the returned handle is
// inert.
func (c *Canvas) AddMarker(pos geo.LatLng, icon mapview.MarkerIcon, z int) mapview.Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	m := &marker{c: c, seq: c.seq, pos: pos, icon: icon, z: z}
	if c.removed {
		m.removed = true
		return m
	}
	c.markers = append(c.markers, m)
	return m
}

func (c *Canvas) AddPolyline(a, b geo.LatLng, style mapview.LineStyle) mapview.Polyline {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := &polyline{c: c, a: a, b: b, style: style}
	if c.removed {
		l.removed = true
		return l
	}
	c.lines = append(c.lines, l)
	return l
}

// Resize records the container size. It takes effect on InvalidateSize.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingW, c.pendingH = width, height
}

// InvalidateSize adopts the last container size and re-clamps the view.
func (c *Canvas) InvalidateSize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed || c.pendingW <= 0 || c.pendingH <= 0 {
		return
	}
	if c.pendingW == c.width && c.pendingH == c.height {
		return
	}
	c.width, c.height = c.pendingW, c.pendingH
	c.clampLocked()
	logging.MapDebug("canvas resized to %dx%d", c.width, c.height)
}

// Remove disposes the canvas. Every later call is a no-op.
func (c *Canvas) Remove() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.removed = true
	for _, m := range c.markers {
		m.removed = true
	}
	for _, l := range c.lines {
		l.removed = true
	}
	c.markers = nil
	c.lines = nil
	c.focused = nil
}

// Removed reports whether Remove has been called.
func (c *Canvas) Removed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

// Size returns the viewport size in cells.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Center returns the viewport center.
func (c *Canvas) Center() geo.LatLng {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

// Zoom returns the current zoom level.
func (c *Canvas) Zoom() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Pan moves the view by dx columns and dy rows, respecting the bounds.
func (c *Canvas) Pan(dx, dy int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.center.Lng += float64(dx) * c.degPerCol()
	c.center.Lat -= float64(dy) * c.degPerRow()
	c.clampLocked()
}

// ZoomIn zooms one level in, up to the max zoom.
func (c *Canvas) ZoomIn() { c.zoomBy(1) }

// ZoomOut zooms one level out, down to the min zoom.
func (c *Canvas) ZoomOut() { c.zoomBy(-1) }

func (c *Canvas) zoomBy(d int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return
	}
	c.zoom = c.clampZoom(c.zoom + d)
	c.clampLocked()
}

// Visible returns the viewport as a box.
func (c *Canvas) Visible() geo.Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	halfLat, halfLng := c.halfSpans()
	return geo.Bounds{
		SouthWest: geo.LatLng{Lat: c.center.Lat - halfLat, Lng: c.center.Lng - halfLng},
		NorthEast: geo.LatLng{Lat: c.center.Lat + halfLat, Lng: c.center.Lng + halfLng},
	}
}

// Project maps pos to a cell. ok is false when the cell is off screen.
func (c *Canvas) Project(pos geo.LatLng) (x, y int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project(pos)
}

// MarkerCount returns the number of live markers.
func (c *Canvas) MarkerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.markers)
}

// LineCount returns the number of live polylines.
func (c *Canvas) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// FocusNext moves keyboard focus to the next marker in creation order.
func (c *Canvas) FocusNext() { c.cycleFocus(1) }

// FocusPrev moves keyboard focus to the previous marker.
func (c *Canvas) FocusPrev() { c.cycleFocus(-1) }

func (c *Canvas) cycleFocus(step int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.markers)
	if n == 0 {
		c.focused = nil
		return
	}
	order := c.byCreation()
	idx := -1
	for i, m := range order {
		if m == c.focused {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = n - 1
	default:
		idx = (idx + step + n) % n
	}
	c.focused = order[idx]
}

// Focused returns the label of the focused marker.
func (c *Canvas) Focused() (label string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.focused == nil {
		return "", false
	}
	return c.focused.icon.Label, true
}

// Click dispatches the focused marker's click handler. It reports whether
// a handler ran.
func (c *Canvas) Click() bool {
	c.mu.Lock()
	var fn func()
	if c.focused != nil && !c.removed {
		fn = c.focused.click
	}
	c.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

func (c *Canvas) byCreation() []*marker {
	order := append([]*marker(nil), c.markers...)
	sort.Slice(order, func(i, j int) bool { return order[i].seq < order[j].seq })
	return order
}

func (c *Canvas) clampZoom(z int) int {
	if z < c.minZoom {
		return c.minZoom
	}
	if z > c.maxZoom {
		return c.maxZoom
	}
	return z
}

func (c *Canvas) degPerCol() float64 {
	span := baseSpan / math.Pow(2, float64(c.zoom-baseZoom))
	return span / float64(c.width)
}

func (c *Canvas) degPerRow() float64 {
	return c.degPerCol() * cellAspect * math.Cos(c.refLat()*math.Pi/180)
}

// refLat is the latitude the row scale is computed at. A bounded canvas
// uses the bounds center so the scale does not drift while panning.
func (c *Canvas) refLat() float64 {
	if c.hasBounds {
		return c.bounds.Center().Lat
	}
	return c.center.Lat
}

func (c *Canvas) halfSpans() (halfLat, halfLng float64) {
	return c.degPerRow() * float64(c.height) / 2, c.degPerCol() * float64(c.width) / 2
}

func (c *Canvas) clampLocked() {
	if !c.hasBounds {
		return
	}
	if c.viscosity >= 1 {
		halfLat, halfLng := c.halfSpans()
		c.center = c.bounds.ClampView(c.center, halfLat, halfLng)
		return
	}
	c.center = c.bounds.Clamp(c.center)
}

func (c *Canvas) project(pos geo.LatLng) (x, y int, ok bool) {
	halfLat, halfLng := c.halfSpans()
	x = int(math.Floor((pos.Lng - (c.center.Lng - halfLng)) / c.degPerCol()))
	y = int(math.Floor(((c.center.Lat + halfLat) - pos.Lat) / c.degPerRow()))
	ok = x >= 0 && x < c.width && y >= 0 && y < c.height
	return x, y, ok
}
