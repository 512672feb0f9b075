package mapview

import "terrefvg/internal/geo"

// ControlPosition names a map corner.
type ControlPosition string

const (
	TopLeft     ControlPosition = "topleft"
	TopRight    ControlPosition = "topright"
	BottomLeft  ControlPosition = "bottomleft"
	BottomRight ControlPosition = "bottomright"
)

// TileLayer describes the base layer drawn under everything else.
type TileLayer struct {
	Name        string
	Attribution string
	// GraticuleStep is the spacing in degrees of the reference grid a
	// terminal surface draws in place of raster tiles.
	GraticuleStep float64
}

// LineStyle is the stroke of a connection line.
type LineStyle struct {
	Color     string
	Weight    int
	Opacity   float64
	DashArray []int
}

// MarkerIcon is the visual descriptor of a farm marker.
type MarkerIcon struct {
	Label       string
	Badge       string
	Size        int     // nominal size in pixels
	Scale       float64 // display scale, 1 = nominal
	HoverScale  float64 // scale while focused or hovered
	BorderColor string
	Halo        bool // animated ping ring
	AlwaysLabel bool
	Highlighted bool
}

// Marker is a point marker handle owned by a Surface.
type Marker interface {
	SetLatLng(pos geo.LatLng)
	SetIcon(icon MarkerIcon)
	SetZIndexOffset(z int)
	OnClick(fn func())
	Remove()
}

// Polyline is a line handle owned by a Surface.
type Polyline interface {
	Remove()
}

// Surface is the retained-mode map library the View drives.
type Surface interface {
	// SetMaxBounds restricts panning to b. A viscosity of 1 makes the
	// bounds sticky: the view can never leave them.
	SetMaxBounds(b geo.Bounds, viscosity float64)
	SetMinZoom(z int)
	SetView(center geo.LatLng, zoom int)
	AddTileLayer(layer TileLayer)
	AddZoomControl(pos ControlPosition)
	AddMarker(pos geo.LatLng, icon MarkerIcon, zIndexOffset int) Marker
	AddPolyline(a, b geo.LatLng, style LineStyle) Polyline
	// InvalidateSize makes the surface re-read its container size.
	InvalidateSize()
	// Remove disposes the surface. Later calls must be no-ops.
	Remove()
}

// ResizeSource delivers container resize notifications. The returned func
// unregisters the listener.
type ResizeSource interface {
	OnResize(fn func()) (unregister func())
}
