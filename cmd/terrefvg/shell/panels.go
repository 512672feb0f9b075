package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"terrefvg/cmd/terrefvg/ui"
	"terrefvg/internal/directory"
)

func (m Model) headerView() string {
	farms := len(m.dir.Filter(m.state.Filters))
	kind := "connesse"
	if !m.state.Filters.Empty() {
		kind = "filtrate"
	}
	title := m.styles.Header.Render("Mappa TerreFVG")
	count := m.styles.Muted.Render(fmt.Sprintf(" %d Aziende %s.", farms, kind))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title + count)
}

func (m Model) filterBarView() string {
	chips := make([]string, 0, len(directory.AllCategories)+1)
	for i, c := range directory.AllCategories {
		key := m.styles.Muted.Render(fmt.Sprintf("%d", i+1))
		chips = append(chips, key+m.styles.CategoryChip(c, m.state.Filters.Has(c)))
	}
	if !m.state.Filters.Empty() {
		chips = append(chips, m.styles.Muted.Render("0 Reset"))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(chips, " "))
}

// resolvedSteps pairs each resolvable step with its farm, skipping the rest.
func (m Model) resolvedSteps() []resolvedStep {
	it := m.state.Itinerary
	if it == nil {
		return nil
	}
	out := make([]resolvedStep, 0, len(it.Steps))
	for _, s := range it.Steps {
		if f, ok := m.dir.Lookup(s.FarmID); ok {
			out = append(out, resolvedStep{farm: f, reason: s.Reason})
		}
	}
	return out
}

type resolvedStep struct {
	farm   directory.Farm
	reason string
}

func (m Model) itineraryPanelView(height int) string {
	it := m.state.Itinerary
	width := m.layout().PanelContentWidth()

	var sb strings.Builder
	sb.WriteString(m.styles.Success.Render("🛤️ Itinerario Attivo"))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Title.Width(width).Render(it.Title))
	sb.WriteString("\n")
	if it.Description != "" {
		sb.WriteString(m.styles.Muted.Width(width).Render(it.Description))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	for i, step := range m.resolvedSteps() {
		sb.WriteString(m.styles.StepNumber.Render(fmt.Sprintf("%d ", i+1)))
		sb.WriteString(m.styles.Bold.Render(step.farm.Name))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Width(width).Render("  " + step.reason))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if m.state.PanelFocus {
		sb.WriteString(m.styles.Muted.Render("1-9 apri tappa · i mappa · x chiudi"))
	} else {
		sb.WriteString(m.styles.Muted.Render("i seleziona tappa · x chiudi"))
	}

	return m.styles.Panel.
		Width(ui.PanelWidth - ui.PanelBorderWidth).
		Height(max(height-ui.PanelBorderWidth, 1)).
		Render(sb.String())
}

func (m Model) passportView(width, height int) string {
	table := ui.NewSimpleTable("📖 Passaporto", "Azienda", "Indirizzo")
	for _, id := range m.visited.IDs() {
		if f, ok := m.dir.Lookup(id); ok {
			table.AddRow(f.Name, f.Address)
		} else {
			table.AddRow(id, "")
		}
	}
	body := table.View(m.styles, "Nessun timbro ancora. Apri un'azienda e premi v per il check-in.")
	body += "\n" + m.styles.Muted.Render("esc chiudi")
	return m.styles.Overlay.Width(width).Height(height).Render(body)
}

func (m Model) footerView() string {
	var parts []string
	switch m.state.Mode {
	case ModeExplore:
		parts = append(parts, "←↑↓→ sposta", "+/- zoom", "tab azienda", "enter apri", "a concierge")
	case ModeDetail:
		parts = append(parts, "v check-in", "esc chiudi")
	}
	passport := "p Passaporto"
	if n := m.visited.Len(); n > 0 {
		passport += " " + m.styles.Visited.Render(fmt.Sprintf("%d", n))
	}
	parts = append(parts, passport)
	parts = append(parts, fmt.Sprintf("%d aziende · %d collegamenti", len(m.view.MarkerIDs()), m.view.LineCount()))
	if m.status != "" {
		parts = append(parts, m.styles.Info.Render(m.status))
	}
	return m.styles.Footer.MaxWidth(m.width).Render(strings.Join(parts, " · "))
}
