package canvas

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"terrefvg/internal/geo"
	"terrefvg/internal/mapview"
)

const (
	glyphGrid      = '·'
	glyphLine      = '•'
	glyphMarker    = '●'
	glyphHighlight = '◉'
	zoomControl    = "[+|-]"
)

type cell struct {
	r  rune
	st *lipgloss.Style
}

type grid struct {
	w, h  int
	cells []cell
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([]cell, w*h)}
	for i := range g.cells {
		g.cells[i].r = ' '
	}
	return g
}

func (g *grid) set(x, y int, r rune, st *lipgloss.Style) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = cell{r: r, st: st}
}

func (g *grid) text(x, y int, s string, st *lipgloss.Style) {
	for _, r := range s {
		g.set(x, y, r, st)
		x++
	}
}

func (g *grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		row := g.cells[y*g.w : (y+1)*g.w]
		start := 0
		for i := 1; i <= len(row); i++ {
			if i < len(row) && row[i].st == row[start].st {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:i] {
				run.WriteRune(c.r)
			}
			if st := row[start].st; st != nil {
				sb.WriteString(st.Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
			start = i
		}
	}
	return sb.String()
}

// Render draws the map: tiles, then lines, then markers by z-offset, then
// the zoom control. A removed canvas renders as an empty string.
func (c *Canvas) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return ""
	}

	g := newGrid(c.width, c.height)
	for _, layer := range c.tiles {
		c.drawTiles(g, layer)
	}
	for _, l := range c.lines {
		c.drawLine(g, l)
	}
	for _, m := range c.byZ() {
		c.drawMarker(g, m)
	}
	c.drawZoomControl(g)
	return g.String()
}

func (c *Canvas) byZ() []*marker {
	order := c.byCreation()
	sort.SliceStable(order, func(i, j int) bool { return order[i].z < order[j].z })
	return order
}

func (c *Canvas) drawTiles(g *grid, layer mapview.TileLayer) {
	halfLat, halfLng := c.halfSpans()
	if step := layer.GraticuleStep; step > 0 {
		st := &c.palette.Grid
		for lat := math.Ceil((c.center.Lat-halfLat)/step) * step; lat <= c.center.Lat+halfLat; lat += step {
			for lng := math.Ceil((c.center.Lng-halfLng)/step) * step; lng <= c.center.Lng+halfLng; lng += step {
				if x, y, ok := c.project(geo.LatLng{Lat: lat, Lng: lng}); ok {
					g.set(x, y, glyphGrid, st)
				}
			}
		}
	}
	if c.hasBounds {
		c.drawFrame(g)
	}
}

func (c *Canvas) drawFrame(g *grid) {
	st := &c.palette.Frame
	x0, y0, _ := c.project(geo.LatLng{Lat: c.bounds.NorthEast.Lat, Lng: c.bounds.SouthWest.Lng})
	x1, y1, _ := c.project(geo.LatLng{Lat: c.bounds.SouthWest.Lat, Lng: c.bounds.NorthEast.Lng})
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, '─', st)
		g.set(x, y1, '─', st)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, '│', st)
		g.set(x1, y, '│', st)
	}
	g.set(x0, y0, '┌', st)
	g.set(x1, y0, '┐', st)
	g.set(x0, y1, '└', st)
	g.set(x1, y1, '┘', st)
}

// dashPattern converts a pixel dash array into cell counts.
func dashPattern(dash []int) (on, off int) {
	if len(dash) < 2 {
		return 1, 0
	}
	on = max(dash[0]/5, 1)
	off = dash[1] / 5
	return on, off
}

func (c *Canvas) drawLine(g *grid, l *polyline) {
	st := lineStyle(l.style.Color, l.style.Opacity)
	on, off := dashPattern(l.style.DashArray)

	x0, y0, _ := c.project(l.a)
	x1, y1, _ := c.project(l.b)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for i := 0; ; i++ {
		if i%(on+off) < on {
			g.set(x0, y0, glyphLine, &st)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) drawMarker(g *grid, m *marker) {
	x, y, ok := c.project(m.pos)
	if !ok {
		return
	}
	focused := m == c.focused

	st := &c.palette.Marker
	glyph := glyphMarker
	if m.icon.Highlighted {
		st = &c.palette.Highlight
		glyph = glyphHighlight
	}
	if m.icon.Halo {
		g.set(x-1, y, '(', &c.palette.Halo)
		g.set(x+1, y, ')', &c.palette.Halo)
	}
	if focused {
		st = &c.palette.Focus
	}
	g.set(x, y, glyph, st)

	if m.icon.AlwaysLabel || focused {
		g.text(x+2, y, " "+m.icon.Label, &c.palette.Label)
	}
}

func (c *Canvas) drawZoomControl(g *grid) {
	if c.zoomControl == "" {
		return
	}
	w := len(zoomControl)
	x, y := 0, 0
	switch c.zoomControl {
	case mapview.TopRight:
		x = g.w - w
	case mapview.BottomLeft:
		y = g.h - 1
	case mapview.BottomRight:
		x, y = g.w-w, g.h-1
	}
	g.text(x, y, zoomControl, &c.palette.Control)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
