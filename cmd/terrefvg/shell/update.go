package shell

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"terrefvg/internal/directory"
	"terrefvg/internal/geo"
	"terrefvg/internal/logging"
)

// Update handles one message. It is the only place State changes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.onWindowSize(msg.Width, msg.Height), nil

	case resizeAppliedMsg:
		return m, m.waitForResize()

	case itineraryMsg:
		return m.onItinerary(msg), nil

	case directionsMsg:
		return m.onDirections(msg), nil

	case spinner.TickMsg:
		if !m.chat.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.chat.spinner, cmd = m.chat.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Close()
			return m, tea.Quit
		}
		switch m.state.Mode {
		case ModeDetail:
			return m.handleDetailKey(msg)
		case ModeConcierge:
			return m.handleChatKey(msg)
		case ModePassport:
			return m.handlePassportKey(msg)
		default:
			return m.handleExploreKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleExploreKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.state.PanelFocus {
		if n, ok := digit(key); ok && n > 0 {
			steps := m.resolvedSteps()
			if n <= len(steps) {
				m.state.PanelFocus = false
				return m.openDetail(steps[n-1].farm.ID), nil
			}
			return m, nil
		}
	}

	switch key {
	case "q":
		m.Close()
		return m, tea.Quit
	case "left", "h":
		m.canvas.Pan(-canvasPan, 0)
	case "right", "l":
		m.canvas.Pan(canvasPan, 0)
	case "up", "k":
		m.canvas.Pan(0, -canvasPan/2)
	case "down", "j":
		m.canvas.Pan(0, canvasPan/2)
	case "+", "=":
		m.canvas.ZoomIn()
	case "-", "_":
		m.canvas.ZoomOut()
	case "tab":
		m.canvas.FocusNext()
	case "shift+tab":
		m.canvas.FocusPrev()
	case "enter":
		if m.canvas.Click() {
			if id := m.picked.take(); id != "" {
				return m.openDetail(id), nil
			}
		}
	case "0":
		m.state.Filters = directory.NewFilterSet()
		m.syncMap()
	case "x":
		if m.state.Itinerary != nil {
			m.state.Itinerary = nil
			m.state.PanelFocus = false
			m.syncMap()
			m.relayout()
		}
	case "i":
		if m.state.Itinerary != nil {
			m.state.PanelFocus = !m.state.PanelFocus
		}
	case "esc":
		m.state.PanelFocus = false
	case "a":
		return m.openConcierge()
	case "p":
		m.state.Mode = ModePassport
	default:
		if n, ok := digit(key); ok && n >= 1 && n <= len(directory.AllCategories) {
			m.state.Filters = m.state.Filters.Toggle(directory.AllCategories[n-1])
			m.syncMap()
			logging.ShellDebug("filters now %s", m.state.Filters)
		}
	}
	return m, nil
}

const canvasPan = 4

func digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '0'), true
}

func (m Model) openDetail(id string) Model {
	if _, ok := m.dir.Lookup(id); !ok {
		logging.ShellWarn("select of unknown farm %q ignored", id)
		return m
	}
	m.state.Selected = id
	m.state.Mode = ModeDetail
	m.status = ""
	return m.renderDetail()
}

func (m Model) renderDetail() Model {
	f, ok := m.dir.Lookup(m.state.Selected)
	if !ok {
		m.detail = ""
		return m
	}
	ow, _ := m.layout().OverlaySize()
	if m.width == 0 {
		ow = 72
	}
	md := DetailMarkdown(f, m.visited.Has(f.ID), m.dir)
	action := "[v] 📍 Check-in Qui"
	if m.visited.Has(f.ID) {
		action = "Timbro Collezionato! ✨"
	}
	m.detail = RenderMarkdown(md, m.mdStyle, ow-6) + "\n\n" +
		m.styles.Bold.Render(action) + "   " + m.styles.Muted.Render("[esc] Chiudi")
	return m
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "v":
		id := m.state.Selected
		added, err := m.visited.CheckIn(m.ctx, id)
		switch {
		case err != nil:
			logging.ShellWarn("check-in %s failed: %v", id, err)
			m.status = "Impossibile salvare il timbro."
		case added:
			m.status = "Timbro collezionato!"
		}
		return m.renderDetail(), nil
	case "esc", "q":
		m.state.Selected = ""
		m.state.Mode = ModeExplore
		m.detail = ""
	}
	return m, nil
}

func (m Model) handlePassportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "p":
		m.state.Mode = ModeExplore
	}
	return m, nil
}

func (m Model) openConcierge() (tea.Model, tea.Cmd) {
	m.epoch++
	m.chat = newChat(m.epoch, m.styles)
	if m.width > 0 {
		ow, oh := m.layout().OverlaySize()
		m.chat.resize(ow-6, oh-10)
	}
	m.chat.refresh(m.styles)
	m.state.Mode = ModeConcierge
	m.state.PanelFocus = false
	return m, nil
}

// closeConcierge leaves the overlay. Bumping the epoch orphans any call
// still in flight.
func (m Model) closeConcierge() Model {
	m.epoch++
	m.chat.loading = false
	m.state.Mode = ModeExplore
	return m
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		return m.closeConcierge(), nil
	}

	switch key {
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.chat.viewport, cmd = m.chat.viewport.Update(msg)
		return m, cmd
	}
	if m.chat.loading {
		return m, nil
	}

	if !m.chat.input.Focused() {
		switch key {
		case "m":
			return m.showOnMap(), nil
		case "d":
			return m.requestDirections()
		case "tab", "i":
			m.chat.input.Focus()
		}
		return m, nil
	}

	switch key {
	case "enter":
		return m.submit()
	case "tab":
		if m.chat.result != nil {
			m.chat.input.Blur()
		}
		return m, nil
	}
	if n, ok := digit(key); ok && m.chat.onlyWelcome() && m.chat.input.Value() == "" && n >= 1 && n <= len(Suggestions) {
		m.chat.input.SetValue(Suggestions[n-1].Prompt)
		m.chat.input.CursorEnd()
		return m, nil
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	request := strings.TrimSpace(m.chat.input.Value())
	if request == "" {
		return m, nil
	}
	m.chat.input.SetValue("")
	m.chat.add(RoleUser, request)
	m.chat.setResult(nil)
	m.chat.loading = true
	m.chat.refresh(m.styles)

	client, ctx, epoch := m.client, m.ctx, m.epoch
	logging.ShellDebug("concierge request (epoch %d): %q", epoch, request)
	return m, tea.Batch(m.chat.spinner.Tick, func() tea.Msg {
		return itineraryMsg{epoch: epoch, request: request, result: client.SynthesizeItinerary(ctx, request)}
	})
}

func (m Model) onItinerary(msg itineraryMsg) Model {
	if msg.epoch != m.epoch || m.state.Mode != ModeConcierge {
		logging.ShellDebug("dropping stale itinerary result (epoch %d, now %d)", msg.epoch, m.epoch)
		return m
	}
	m.chat.loading = false
	if msg.result.OK() {
		it := msg.result.Itinerary
		m.chat.add(RoleBot, itineraryText(it, m.dir))
		m.chat.setResult(it)
	} else {
		logging.ShellWarn("no itinerary for %q: %s", msg.request, msg.result.Failure)
		m.chat.add(RoleBot, msg.result.Failure.Message())
	}
	m.chat.refresh(m.styles)
	return m
}

// showOnMap makes the concierge result the active itinerary and returns to
// the map.
func (m Model) showOnMap() Model {
	if m.chat.result == nil {
		return m
	}
	it := *m.chat.result
	m.state.Itinerary = &it
	m = m.closeConcierge()
	m.syncMap()
	m.relayout()
	logging.Shell("itinerary %q shown on map with %d stops", it.Title, len(it.Steps))
	return m
}

func (m Model) requestDirections() (tea.Model, tea.Cmd) {
	it := m.chat.result
	if it == nil {
		return m, nil
	}
	if len(it.Steps) == 0 {
		m.chat.add(RoleBot, NoStepsText)
		m.chat.refresh(m.styles)
		return m, nil
	}

	m.chat.add(RoleUser, DirectionsRequestText)
	m.chat.loading = true
	m.chat.refresh(m.styles)

	client, locator, ctx, epoch := m.client, m.locator, m.ctx, m.epoch
	farmID := it.Steps[0].FarmID
	return m, tea.Batch(m.chat.spinner.Tick, func() tea.Msg {
		pos, err := locator.Locate(ctx)
		if err != nil {
			return directionsMsg{epoch: epoch, farmID: farmID, err: err}
		}
		return directionsMsg{epoch: epoch, farmID: farmID, advice: client.TravelAdvice(ctx, pos, farmID)}
	})
}

func (m Model) onDirections(msg directionsMsg) Model {
	if msg.epoch != m.epoch || m.state.Mode != ModeConcierge {
		logging.ShellDebug("dropping stale directions result (epoch %d, now %d)", msg.epoch, m.epoch)
		return m
	}
	m.chat.loading = false
	switch {
	case errors.Is(msg.err, geo.ErrUnsupported):
		m.chat.add(RoleBot, GeoUnsupportedText)
	case errors.Is(msg.err, geo.ErrPermissionDenied):
		m.chat.add(RoleBot, GeoDeniedText)
	case msg.err != nil:
		logging.GeoWarn("locate failed: %v", msg.err)
		m.chat.add(RoleBot, GeoFailedText)
	default:
		m.chat.add(RoleBot, adviceText(msg.advice))
	}
	m.chat.refresh(m.styles)
	return m
}
