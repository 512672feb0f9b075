package canvas

import (
	"terrefvg/internal/geo"
	"terrefvg/internal/mapview"
)

type marker struct {
	c       *Canvas
	seq     int
	pos     geo.LatLng
	icon    mapview.MarkerIcon
	z       int
	click   func()
	removed bool
}

func (m *marker) SetLatLng(pos geo.LatLng) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	m.pos = pos
}

func (m *marker) SetIcon(icon mapview.MarkerIcon) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	m.icon = icon
}

func (m *marker) SetZIndexOffset(z int) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	m.z = z
}

func (m *marker) OnClick(fn func()) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	m.click = fn
}

func (m *marker) Remove() {
	c := m.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.removed {
		return
	}
	m.removed = true
	for i, other := range c.markers {
		if other == m {
			c.markers = append(c.markers[:i], c.markers[i+1:]...)
			break
		}
	}
	if c.focused == m {
		c.focused = nil
	}
}

type polyline struct {
	c       *Canvas
	a, b    geo.LatLng
	style   mapview.LineStyle
	removed bool
}

func (l *polyline) Remove() {
	c := l.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if l.removed {
		return
	}
	l.removed = true
	for i, other := range c.lines {
		if other == l {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
}
