// Package shell is the interactive terrefvg screen: a map of the farm
// directory with category filters, farm details, a visited-farm passport
// and the AI concierge overlay.
package shell

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"terrefvg/cmd/terrefvg/ui"
	"terrefvg/internal/canvas"
	"terrefvg/internal/directory"
	"terrefvg/internal/geo"
	"terrefvg/internal/itinerary"
	"terrefvg/internal/logging"
	"terrefvg/internal/mapview"
	"terrefvg/internal/store"
)

// Options wires the shell to its collaborators.
type Options struct {
	Context   context.Context
	Directory *directory.Directory
	Client    *itinerary.Client
	Visited   *store.VisitedSet
	Locator   geo.Locator
	Styles    ui.Styles

	// MarkdownStyle is a glamour standard style name ("dark", "light",
	// "notty"). Empty follows the theme.
	MarkdownStyle string

	// Map overrides the map home region. The zero value uses the defaults.
	Map *mapview.Options

	ResizeDebounce int // milliseconds; 0 uses ui.DefaultResizeDuration
}

// Model is the bubbletea model of the shell.
type Model struct {
	ctx     context.Context
	dir     *directory.Directory
	client  *itinerary.Client
	visited *store.VisitedSet
	locator geo.Locator
	styles  ui.Styles
	mdStyle string

	canvas    *canvas.Canvas
	resizer   *canvas.Resizer
	view      *mapview.View
	picked    *selection
	debouncer *ui.ResizeDebouncer
	resized   chan struct{}
	done      chan struct{}
	closeOnce *sync.Once

	state  State
	chat   chat
	epoch  int
	detail string
	status string

	width, height int
}

// selection receives marker clicks from the map view.
type selection struct {
	mu sync.Mutex
	id string
}

func (s *selection) set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

func (s *selection) take() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id
	s.id = ""
	return id
}

// New builds the shell and draws the initial map.
func New(opts Options) (Model, error) {
	if opts.Directory == nil {
		return Model{}, errors.New("shell requires a directory")
	}
	if opts.Client == nil {
		return Model{}, errors.New("shell requires an itinerary client")
	}
	if opts.Visited == nil {
		return Model{}, errors.New("shell requires a visited set")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Locator == nil {
		opts.Locator = geo.NoLocator{}
	}
	mdStyle := opts.MarkdownStyle
	if mdStyle == "" {
		mdStyle = "light"
		if opts.Styles.Theme.IsDark {
			mdStyle = "dark"
		}
	}
	mapOpts := mapview.DefaultOptions()
	if opts.Map != nil {
		mapOpts = *opts.Map
	}
	debounce := ui.DefaultResizeDuration
	if opts.ResizeDebounce > 0 {
		debounce = time.Duration(opts.ResizeDebounce) * time.Millisecond
	}

	cv := canvas.New(80, 24)
	resizer := canvas.NewResizer()
	view := mapview.New(cv, resizer, mapOpts)
	picked := &selection{}
	view.OnSelect(picked.set)

	m := Model{
		ctx:       opts.Context,
		dir:       opts.Directory,
		client:    opts.Client,
		visited:   opts.Visited,
		locator:   opts.Locator,
		styles:    opts.Styles,
		mdStyle:   mdStyle,
		canvas:    cv,
		resizer:   resizer,
		view:      view,
		picked:    picked,
		debouncer: ui.NewResizeDebouncer(debounce),
		resized:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		closeOnce: &sync.Once{},
	}
	m.syncMap()
	logging.Shell("shell ready with %d farms, %d visited", opts.Directory.Len(), opts.Visited.Len())
	return m, nil
}

// Init starts listening for debounced resizes.
func (m Model) Init() tea.Cmd {
	return m.waitForResize()
}

// Close tears down the map and stops background listeners. It is safe to
// call more than once.
func (m Model) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.debouncer.Cancel()
		m.view.Close()
		logging.Shell("shell closed")
	})
}

// State returns a copy of the current state.
func (m Model) State() State { return m.state }

func (m Model) waitForResize() tea.Cmd {
	resized, done := m.resized, m.done
	return func() tea.Msg {
		select {
		case <-resized:
			return resizeAppliedMsg{}
		case <-done:
			return nil
		}
	}
}

// syncMap pushes the filtered farms and the highlight set to the map.
func (m Model) syncMap() {
	m.view.Update(m.dir.Filter(m.state.Filters), m.state.HighlightSet())
}

func (m Model) layout() ui.LayoutConfig {
	return ui.NewLayoutConfig(m.width, m.height, m.state.Itinerary != nil)
}

// relayout resizes the map immediately, for layout changes that are not
// window resizes.
func (m Model) relayout() {
	if m.width == 0 {
		return
	}
	l := m.layout()
	m.canvas.Resize(l.MapWidth(), l.MapHeight())
	m.resizer.Notify()
}

// onWindowSize records the terminal size. The first size is applied at
// once; later bursts go through the debouncer.
func (m Model) onWindowSize(width, height int) Model {
	first := m.width == 0
	m.width, m.height = width, height

	l := m.layout()
	m.canvas.Resize(l.MapWidth(), l.MapHeight())
	ow, oh := l.OverlaySize()
	m.chat.resize(ow-6, oh-10)

	if first {
		m.resizer.Notify()
	} else {
		resizer, resized := m.resizer, m.resized
		m.debouncer.Resize(width, height, func(int, int) {
			resizer.Notify()
			select {
			case resized <- struct{}{}:
			default:
			}
		})
	}
	if m.state.Mode == ModeDetail {
		m = m.renderDetail()
	}
	return m
}

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Caricamento mappa..."
	}
	l := m.layout()
	if l.TooSmall() {
		return m.styles.Warning.Render("Finestra troppo piccola per la mappa di TerreFVG.")
	}

	var body string
	ow, oh := l.OverlaySize()
	switch m.state.Mode {
	case ModeDetail:
		body = m.styles.Overlay.Width(ow).MaxHeight(oh + 2).Render(m.detail)
	case ModeConcierge:
		body = m.chat.view(m.styles, ow, oh)
	case ModePassport:
		body = m.passportView(ow, oh)
	default:
		body = m.canvas.Render()
		if l.ShowPanel {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.itineraryPanelView(l.MapHeight()))
		}
	}
	if m.state.Mode != ModeExplore {
		body = lipgloss.Place(m.width, l.MapHeight(), lipgloss.Center, lipgloss.Center, body)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.filterBarView(),
		body,
		m.footerView(),
	)
}
