// Package ui holds the visual styling and layout helpers of the terrefvg
// interactive shell.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"terrefvg/internal/directory"
)

// Palette of the farm directory: earth browns, vineyard greens, the red
// of the itinerary highlight.
var (
	LightBackground = lipgloss.Color("#faf7f2")
	LightForeground = lipgloss.Color("#292524")
	LightPrimary    = lipgloss.Color("#8a6a5c")
	LightAccent     = lipgloss.Color("#4d7c0f")
	LightMuted      = lipgloss.Color("#a8a29e")
	LightBorder     = lipgloss.Color("#e7e5e4")
	LightCard       = lipgloss.Color("#ffffff")

	DarkBackground = lipgloss.Color("#1c1917")
	DarkForeground = lipgloss.Color("#f5f5f4")
	DarkPrimary    = lipgloss.Color("#d6bcab")
	DarkAccent     = lipgloss.Color("#a3e635")
	DarkMuted      = lipgloss.Color("#78716c")
	DarkBorder     = lipgloss.Color("#44403c")
	DarkCard       = lipgloss.Color("#292524")

	Highlight   = lipgloss.Color("#dc2626")
	Success     = lipgloss.Color("#16a34a")
	Warning     = lipgloss.Color("#d97706")
	Info        = lipgloss.Color("#2563eb")
	VisitedGold = lipgloss.Color("#ca8a04")
)

var categoryColors = map[directory.Category]lipgloss.Color{
	directory.Wine:      lipgloss.Color("#7f1d1d"),
	directory.Cheese:    lipgloss.Color("#ca8a04"),
	directory.Meat:      lipgloss.Color("#b91c1c"),
	directory.Vegetable: lipgloss.Color("#15803d"),
	directory.Honey:     lipgloss.Color("#d97706"),
	directory.Oil:       lipgloss.Color("#65a30d"),
}

// CategoryColor returns the chip colour of a product category.
func CategoryColor(c directory.Category) lipgloss.Color {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return LightMuted
}

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeFor resolves a configured theme name. "auto" inspects the terminal.
func ThemeFor(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses the terminal background from COLORFGBG
// ("foreground;background"), defaulting to light.
func DetectTheme() Theme {
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	Header lipgloss.Style
	Footer lipgloss.Style
	Panel  lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	Chip       lipgloss.Style
	ChipActive lipgloss.Style
	Badge      lipgloss.Style
	Visited    lipgloss.Style
	StepNumber lipgloss.Style

	Overlay      lipgloss.Style
	UserMessage  lipgloss.Style
	AgentMessage lipgloss.Style
	Suggestion   lipgloss.Style
	Citation     lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Spinner lipgloss.Style
	Divider lipgloss.Style
}

func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Chip: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		ChipActive: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Visited: lipgloss.NewStyle().
			Background(VisitedGold).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		StepNumber: lipgloss.NewStyle().
			Foreground(Highlight).
			Bold(true),

		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Background(theme.Card).
			Padding(1, 2),

		UserMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		AgentMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Suggestion: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Italic(true),

		Citation: lipgloss.NewStyle().
			Foreground(Info).
			Underline(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Highlight).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles for the detected terminal theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// CategoryChip renders a category label in its own colour.
func (s Styles) CategoryChip(c directory.Category, active bool) string {
	if active {
		return s.ChipActive.Background(CategoryColor(c)).Render(c.Label())
	}
	return s.Chip.Foreground(CategoryColor(c)).Render(c.Label())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", max(width, 0)))
}
