package ui

// Layout constants for the shell screen.
const (
	HeaderHeight    = 1
	FilterBarHeight = 1
	FooterHeight    = 1

	// Right-hand itinerary panel
	PanelWidth       = 40
	PanelBorderWidth = 2
	PanelPaddingH    = 1

	// Overlays are inset from the screen edges
	OverlayMarginH = 4
	OverlayMarginV = 2

	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 16
	CompactModeWidth      = 100
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	ShowPanel      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal
// size. The itinerary panel is only shown when an itinerary is active and
// the terminal is wide enough.
func NewLayoutConfig(width, height int, itinerary bool) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		ShowPanel:      itinerary && width >= CompactModeWidth,
	}
}

// MapWidth is the number of columns available to the map canvas.
func (l LayoutConfig) MapWidth() int {
	w := l.TerminalWidth
	if l.ShowPanel {
		w -= PanelWidth
	}
	return max(w, 1)
}

// MapHeight is the number of rows available to the map canvas.
func (l LayoutConfig) MapHeight() int {
	return max(l.TerminalHeight-HeaderHeight-FilterBarHeight-FooterHeight, 1)
}

// PanelContentWidth returns the text width inside the itinerary panel.
func (l LayoutConfig) PanelContentWidth() int {
	return PanelWidth - PanelBorderWidth - PanelPaddingH*2
}

// OverlaySize returns the outer size of a centered overlay.
func (l LayoutConfig) OverlaySize() (width, height int) {
	return max(l.TerminalWidth-OverlayMarginH*2, MinimumTerminalWidth/2),
		max(l.TerminalHeight-OverlayMarginV*2, MinimumTerminalHeight/2)
}

// TooSmall reports whether the terminal is below the usable minimum.
func (l LayoutConfig) TooSmall() bool {
	return l.TerminalWidth < MinimumTerminalWidth || l.TerminalHeight < MinimumTerminalHeight
}
