package shell

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"

	"terrefvg/cmd/terrefvg/ui"
	"terrefvg/internal/directory"
	"terrefvg/internal/geo"
	"terrefvg/internal/itinerary"
	"terrefvg/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

const planJSON = `{"title":"Rossi e formaggi","description":"Un giro tra Collio e colline.","steps":[` +
	`{"farmId":"borgo-collio","reason":"Ribolla Gialla"},` +
	`{"farmId":"ghost-farm","reason":"non esiste"},` +
	`{"farmId":"latteria-fagagna","reason":"Montasio stravecchio"}]}`

// fakeGemini answers itinerary requests with planJSON and advice requests
// (the ones carrying tools) with a grounded text.
type fakeGemini struct {
	mu     sync.Mutex
	plans  int
	advice int
}

func (f *fakeGemini) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if config != nil && len(config.Tools) > 0 {
		f.advice++
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: "Prendi la SS56 verso Cormons."}}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{Maps: &genai.GroundingChunkMaps{Title: "Borgo del Collio", URI: "https://maps.google.com/?cid=7"}},
			}},
		}}}, nil
	}
	f.plans++
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: planJSON}}},
	}}}, nil
}

func (f *fakeGemini) counts() (plans, advice int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plans, f.advice
}

type fixture struct {
	m       Model
	gen     *fakeGemini
	slots   *store.MemorySlots
	dir     *directory.Directory
	visited *store.VisitedSet
}

func newFixture(t *testing.T, gen itinerary.Generator, locator geo.Locator) *fixture {
	t.Helper()
	dir, err := directory.Embedded()
	require.NoError(t, err)
	client, err := itinerary.NewWithGenerator(gen, "", dir)
	require.NoError(t, err)

	slots := store.NewMemorySlots()
	visited, err := store.LoadVisited(t.Context(), slots, "visitedFarms")
	require.NoError(t, err)

	m, err := New(Options{
		Context:        t.Context(),
		Directory:      dir,
		Client:         client,
		Visited:        visited,
		Locator:        locator,
		Styles:         ui.NewStyles(ui.LightTheme()),
		MarkdownStyle:  "notty",
		ResizeDebounce: 10,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	f := &fixture{m: m, slots: slots, dir: dir, visited: visited}
	if g, ok := gen.(*fakeGemini); ok {
		f.gen = g
	}
	f.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.m.Update(msg)
	f.m = next.(Model)
	return cmd
}

func (f *fixture) key(k string) tea.Cmd {
	switch k {
	case "enter":
		return f.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return f.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return f.send(tea.KeyMsg{Type: tea.KeyTab})
	case "ctrl+c":
		return f.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	}
	return f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// run executes cmd and feeds the resulting messages back, skipping
// spinner animation ticks.
func (f *fixture) run(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		f.run(f.send(msg))
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func (f *fixture) ask(request string) {
	f.m.chat.input.SetValue(request)
	f.run(f.key("enter"))
}

func (f *fixture) lastBotMessage() string {
	msgs := f.m.chat.messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleBot {
			return msgs[i].Text
		}
	}
	return ""
}

func ids(farms []directory.Farm) []string {
	out := make([]string, len(farms))
	for i, f := range farms {
		out[i] = f.ID
	}
	sort.Strings(out)
	return out
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestInitialMapShowsEveryFarm(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})
	assert.Equal(t, ids(f.dir.All()), f.m.view.MarkerIDs())
	assert.Empty(t, f.m.State().HighlightSet())

	w, h := f.m.canvas.Size()
	assert.Equal(t, 120, w)
	assert.Equal(t, 37, h)
	assert.Contains(t, f.m.View(), "Mappa TerreFVG")
	assert.Contains(t, f.m.View(), "Aziende connesse")
}

func TestFilterKeys(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})

	f.key("1")
	wine := directory.NewFilterSet(directory.Wine)
	assert.Equal(t, wine, f.m.State().Filters)
	assert.Equal(t, ids(f.dir.Filter(wine)), f.m.view.MarkerIDs())
	assert.Contains(t, f.m.View(), "Aziende filtrate")

	f.key("2")
	both := directory.NewFilterSet(directory.Wine, directory.Cheese)
	assert.Equal(t, ids(f.dir.Filter(both)), f.m.view.MarkerIDs())

	f.key("0")
	assert.True(t, f.m.State().Filters.Empty())
	assert.Equal(t, ids(f.dir.All()), f.m.view.MarkerIDs())
}

func TestConciergeItineraryShownOnMap(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})

	f.key("a")
	require.Equal(t, ModeConcierge, f.m.State().Mode)
	require.Len(t, f.m.chat.messages, 1)
	assert.Equal(t, WelcomeText, f.m.chat.messages[0].Text)

	f.key("1")
	assert.Equal(t, Suggestions[0].Prompt, f.m.chat.input.Value())
	f.run(f.key("enter"))

	require.NotNil(t, f.m.chat.result)
	assert.False(t, f.m.chat.loading)
	assert.Len(t, f.m.chat.messages, 3)
	assert.Contains(t, f.lastBotMessage(), "Rossi e formaggi")
	assert.Contains(t, f.lastBotMessage(), "Borgo del Collio")
	assert.NotEqual(t, f.m.chat.messages[1].ID, f.m.chat.messages[2].ID)
	assert.False(t, f.m.chat.input.Focused(), "actions take the keyboard after a result")

	f.key("m")
	st := f.m.State()
	assert.Equal(t, ModeExplore, st.Mode)
	assert.Equal(t, []string{"borgo-collio", "ghost-farm", "latteria-fagagna"}, st.HighlightSet())

	// The panel lists resolvable stops only.
	view := f.m.View()
	assert.Contains(t, view, "Itinerario Attivo")
	assert.Contains(t, view, "Borgo del Collio")
	assert.NotContains(t, view, "ghost-farm")
	w, _ := f.m.canvas.Size()
	assert.Equal(t, 120-ui.PanelWidth, w)

	f.key("x")
	assert.Nil(t, f.m.State().Itinerary)
	assert.Empty(t, f.m.State().HighlightSet())
	w, _ = f.m.canvas.Size()
	assert.Equal(t, 120, w)
}

func TestPanelStepSelectsFarm(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})
	f.key("a")
	f.ask("formaggi")
	f.key("m")

	f.key("i")
	require.True(t, f.m.State().PanelFocus)
	f.key("2") // second resolvable stop, the ghost step is skipped

	assert.Equal(t, ModeDetail, f.m.State().Mode)
	assert.Equal(t, "latteria-fagagna", f.m.State().Selected)
	assert.True(t, f.m.State().Filters.Empty(), "digits go to the panel while it has focus")
}

func TestStaleResultIsDropped(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})
	f.key("a")
	f.m.chat.input.SetValue("vino")
	cmd := f.key("enter")
	require.True(t, f.m.chat.loading)

	f.key("esc")
	require.Equal(t, ModeExplore, f.m.State().Mode)

	f.run(cmd)
	assert.Nil(t, f.m.State().Itinerary)
	assert.Equal(t, ModeExplore, f.m.State().Mode)

	// Reopening starts a fresh conversation that the old call cannot reach.
	f.key("a")
	assert.Len(t, f.m.chat.messages, 1)
	f.run(cmd)
	assert.Len(t, f.m.chat.messages, 1)
}

func TestEmptyRequestIsIgnored(t *testing.T) {
	gen := &fakeGemini{}
	f := newFixture(t, gen, geo.StaticLocator{})
	f.key("a")
	f.ask("   ")

	plans, _ := gen.counts()
	assert.Zero(t, plans)
	assert.Len(t, f.m.chat.messages, 1)
}

func TestMissingCredentialMessage(t *testing.T) {
	f := newFixture(t, nil, geo.StaticLocator{})
	f.key("a")
	f.ask("miele")

	assert.Nil(t, f.m.chat.result)
	assert.Equal(t, itinerary.MissingCredentialText, f.lastBotMessage())
	assert.True(t, f.m.chat.input.Focused())
}

func TestDirections(t *testing.T) {
	udine := geo.LatLng{Lat: 46.0637, Lng: 13.2358}
	tests := []struct {
		name       string
		locator    geo.Locator
		want       string
		wantAdvice int
	}{
		{"located", geo.StaticLocator{Position: udine}, "Prendi la SS56 verso Cormons.", 1},
		{"permission denied", geo.DeniedLocator{}, GeoDeniedText, 0},
		{"unsupported", geo.NoLocator{}, GeoUnsupportedText, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGemini{}
			f := newFixture(t, gen, tt.locator)
			f.key("a")
			f.ask("vino")
			f.run(f.key("d"))

			assert.False(t, f.m.chat.loading)
			assert.Contains(t, f.lastBotMessage(), tt.want)
			_, advice := gen.counts()
			assert.Equal(t, tt.wantAdvice, advice)

			n := len(f.m.chat.messages)
			assert.Equal(t, DirectionsRequestText, f.m.chat.messages[n-2].Text)
			assert.NotNil(t, f.m.chat.result, "directions leave the itinerary intact")
		})
	}
}

func TestDirectionsCitations(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{Position: geo.LatLng{Lat: 46, Lng: 13}})
	f.key("a")
	f.ask("vino")
	f.run(f.key("d"))

	msg := f.lastBotMessage()
	assert.Contains(t, msg, "Fonti Google Maps")
	assert.Contains(t, msg, "https://maps.google.com/?cid=7")
}

func TestTabTogglesChatFocus(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})
	f.key("a")
	f.key("tab")
	assert.True(t, f.m.chat.input.Focused(), "no result yet, input keeps focus")

	f.ask("vino")
	require.False(t, f.m.chat.input.Focused())
	f.key("tab")
	assert.True(t, f.m.chat.input.Focused())

	// With the input focused, m is just a letter.
	f.key("m")
	assert.Equal(t, ModeConcierge, f.m.State().Mode)
	assert.Equal(t, "m", f.m.chat.input.Value())
}

func TestDetailAndCheckIn(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})

	f.key("tab")
	f.key("enter")
	first := f.dir.All()[0]
	require.Equal(t, ModeDetail, f.m.State().Mode)
	assert.Equal(t, first.ID, f.m.State().Selected)
	assert.Contains(t, f.m.detail, first.Name)
	assert.Contains(t, f.m.detail, "Check-in Qui")

	f.key("v")
	assert.True(t, f.visited.Has(first.ID))
	assert.Contains(t, f.m.detail, "VISITATA")
	assert.Contains(t, f.m.detail, "Timbro Collezionato")

	f.key("v")
	assert.Equal(t, 1, f.slots.Puts(), "a second check-in writes nothing")
	assert.Equal(t, 1, f.visited.Len())

	f.key("esc")
	assert.Equal(t, ModeExplore, f.m.State().Mode)
	assert.Empty(t, f.m.State().Selected)
}

func TestPassport(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})
	_, err := f.visited.CheckIn(t.Context(), "speck-sauris")
	require.NoError(t, err)

	f.key("p")
	require.Equal(t, ModePassport, f.m.State().Mode)
	assert.Contains(t, f.m.View(), "Passaporto")

	f.key("esc")
	assert.Equal(t, ModeExplore, f.m.State().Mode)
}

func TestWindowResizeIsDebounced(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})

	f.send(tea.WindowSizeMsg{Width: 90, Height: 30})
	f.send(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Eventually(t, func() bool {
		w, h := f.m.canvas.Size()
		return w == 100 && h == 27
	}, time.Second, 5*time.Millisecond)

	select {
	case <-f.m.resized:
	case <-time.After(time.Second):
		t.Fatal("resize notification not delivered")
	}
}

func TestInitListenerStopsOnClose(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})
	cmd := f.m.Init()
	f.m.Close()
	assert.Nil(t, cmd())
}

func TestQuit(t *testing.T) {
	f := newFixture(t, &fakeGemini{}, geo.StaticLocator{})
	cmd := f.key("ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, f.m.canvas.Removed())
}
