package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/google/uuid"

	"terrefvg/cmd/terrefvg/ui"
	"terrefvg/internal/directory"
	"terrefvg/internal/itinerary"
)

// Role of a transcript entry.
type Role string

const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// chatMessage is one transcript entry.
type chatMessage struct {
	ID   string
	Role Role
	Text string
}

// chat is the concierge overlay. A fresh chat is built every time the
// overlay opens, tagged with the epoch it belongs to.
type chat struct {
	epoch    int
	messages []chatMessage
	result   *itinerary.Itinerary
	loading  bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
}

func newChat(epoch int, styles ui.Styles) chat {
	ti := textinput.New()
	ti.Placeholder = "Descrivi la tua gita ideale..."
	ti.CharLimit = 280
	ti.Prompt = "› "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	c := chat{
		epoch:    epoch,
		input:    ti,
		viewport: viewport.New(60, 12),
		spinner:  sp,
	}
	c.add(RoleBot, WelcomeText)
	return c
}

func (c *chat) add(role Role, text string) {
	c.messages = append(c.messages, chatMessage{ID: uuid.NewString(), Role: role, Text: text})
}

// onlyWelcome reports whether the user has not said anything yet.
func (c *chat) onlyWelcome() bool {
	return len(c.messages) == 1
}

func (c *chat) setResult(it *itinerary.Itinerary) {
	c.result = it
	if it != nil {
		c.input.Placeholder = "Fai un'altra richiesta..."
		c.input.Blur()
	}
}

func (c *chat) resize(width, height int) {
	c.viewport.Width = max(width, 10)
	c.viewport.Height = max(height, 3)
	c.input.Width = max(width-4, 10)
}

func (c *chat) refresh(styles ui.Styles) {
	c.viewport.SetContent(c.transcript(styles))
	c.viewport.GotoBottom()
}

func (c *chat) transcript(styles ui.Styles) string {
	width := max(c.viewport.Width-4, 10)
	parts := make([]string, 0, len(c.messages))
	for _, msg := range c.messages {
		switch msg.Role {
		case RoleUser:
			parts = append(parts, styles.UserMessage.Width(width).Render("👤 "+msg.Text))
		default:
			parts = append(parts, styles.AgentMessage.Width(width).Render("🤖 "+msg.Text))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (c *chat) view(styles ui.Styles, width, height int) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("✨ Concierge AI"))
	sb.WriteString(" ")
	sb.WriteString(styles.Subtitle.Render("Pianificatore intelligente TerreFVG"))
	sb.WriteString("\n\n")
	sb.WriteString(c.viewport.View())
	sb.WriteString("\n")

	if c.loading {
		sb.WriteString(c.spinner.View() + " " + styles.Muted.Render("Sto pensando..."))
		sb.WriteString("\n")
	}
	if c.onlyWelcome() {
		chips := make([]string, len(Suggestions))
		for i, s := range Suggestions {
			chips[i] = styles.Suggestion.Render(fmt.Sprintf("[%d] %s", i+1, s.Label))
		}
		sb.WriteString(strings.Join(chips, "  "))
		sb.WriteString("\n")
	}
	sb.WriteString(c.input.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render(c.help()))

	return styles.Overlay.Width(width).Height(height).Render(sb.String())
}

func (c *chat) help() string {
	switch {
	case c.input.Focused() && c.result != nil:
		return "enter invia · tab azioni · esc chiudi"
	case c.input.Focused():
		return "enter invia · esc chiudi"
	default:
		return "m mostra sulla mappa · d come arrivo · tab scrivi · esc chiudi"
	}
}

// itineraryText is the transcript entry for a generated itinerary.
func itineraryText(it *itinerary.Itinerary, dir *directory.Directory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ho creato un itinerario perfetto per te: %s.\n", it.Title)
	if it.Description != "" {
		sb.WriteString(it.Description)
		sb.WriteString("\n")
	}
	for i, step := range it.Steps {
		name := step.FarmID
		if f, ok := dir.Lookup(step.FarmID); ok {
			name = f.Name
		}
		fmt.Fprintf(&sb, "\n  Tappa %d: %s - %s", i+1, name, step.Reason)
	}
	sb.WriteString("\n\n[m] 🗺️ Visualizza sulla Mappa   [d] 📍 Come arrivo alla 1ª tappa?")
	return sb.String()
}

// adviceText is the transcript entry for travel advice.
func adviceText(a itinerary.Advice) string {
	var sb strings.Builder
	sb.WriteString("🚗 Consigli di viaggio (Google Maps):\n")
	sb.WriteString(a.Text)
	if len(a.Citations) > 0 {
		sb.WriteString("\n\nFonti Google Maps:")
		for _, c := range a.Citations {
			title := c.Title
			if title == "" {
				title = "Link Map"
			}
			if c.URI != "" {
				fmt.Fprintf(&sb, "\n  • %s (%s)", title, c.URI)
			} else {
				fmt.Fprintf(&sb, "\n  • %s", title)
			}
		}
	}
	return sb.String()
}
