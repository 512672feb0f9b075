package canvas

import "github.com/charmbracelet/lipgloss"

// Palette holds the styles used for each map layer.
type Palette struct {
	Grid      lipgloss.Style
	Frame     lipgloss.Style
	Marker    lipgloss.Style
	Highlight lipgloss.Style
	Halo      lipgloss.Style
	Focus     lipgloss.Style
	Label     lipgloss.Style
	Control   lipgloss.Style
}

// DefaultPalette uses the farm-directory colours.
func DefaultPalette() Palette {
	return Palette{
		Grid:      lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Faint(true),
		Frame:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8a6a5c")),
		Marker:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4d7c0f")).Bold(true),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true),
		Halo:      lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")),
		Focus:     lipgloss.NewStyle().Reverse(true).Bold(true),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("#44403c")),
		Control:   lipgloss.NewStyle().Foreground(lipgloss.Color("#57534e")).Bold(true),
	}
}

// lineStyle derives the stroke style for a polyline colour and opacity.
func lineStyle(color string, opacity float64) lipgloss.Style {
	s := lipgloss.NewStyle()
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	if opacity > 0 && opacity < 1 {
		s = s.Faint(true)
	}
	return s
}
