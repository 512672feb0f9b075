package mapview

import "terrefvg/internal/directory"

const (
	// HighlightZIndex lifts itinerary markers above the rest.
	HighlightZIndex = 1000

	IconSize = 40

	highlightBorder = "#dc2626"
	neutralBorder   = "#ffffff"
)

// ConnectionStyle is the stroke used for partner connections.
var ConnectionStyle = LineStyle{
	Color:     "#8a6a5c",
	Weight:    2,
	Opacity:   0.5,
	DashArray: []int{5, 10},
}

// IconFor builds the marker descriptor of a farm.
func IconFor(f directory.Farm, highlighted bool) MarkerIcon {
	icon := MarkerIcon{
		Label:       f.Name,
		Badge:       f.Initial(),
		Size:        IconSize,
		Scale:       1,
		HoverScale:  1.1,
		BorderColor: neutralBorder,
	}
	if highlighted {
		icon.Scale = 1.25
		icon.HoverScale = 1.25
		icon.BorderColor = highlightBorder
		icon.Halo = true
		icon.AlwaysLabel = true
		icon.Highlighted = true
	}
	return icon
}

// ZIndexFor returns the stacking offset of a marker.
func ZIndexFor(highlighted bool) int {
	if highlighted {
		return HighlightZIndex
	}
	return 0
}
