package mapview

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrefvg/internal/directory"
	"terrefvg/internal/geo"
)

func farm(id string, lat, lng float64, connections ...string) directory.Farm {
	return directory.Farm{
		ID:          id,
		Name:        "Azienda " + id,
		Address:     "Via " + id,
		Lat:         lat,
		Lng:         lng,
		Products:    []directory.Product{{Name: "Vino", Category: directory.Wine}},
		Connections: connections,
	}
}

var (
	farmA = farm("a", 46.0, 13.2, "b", "c")
	farmB = farm("b", 46.1, 13.4, "a")
	farmC = farm("c", 45.9, 13.6)
)

func newView(t *testing.T) (*View, *fakeSurface, *fakeResize) {
	t.Helper()
	s := &fakeSurface{}
	r := &fakeResize{}
	v := New(s, r, DefaultOptions())
	t.Cleanup(v.Close)
	return v, s, r
}

func TestNewRunsInitProtocol(t *testing.T) {
	_, s, r := newView(t)

	var ops []string
	for _, c := range s.calls {
		ops = append(ops, c.op)
	}
	want := []string{"SetMaxBounds", "SetMinZoom", "SetView", "AddTileLayer", "AddZoomControl"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("init calls mismatch (-want +got):\n%s", diff)
	}

	bounds := s.calls[0].args[0].(geo.Bounds)
	assert.Equal(t, geo.LatLng{Lat: 45.5, Lng: 12.0}, bounds.SouthWest)
	assert.Equal(t, geo.LatLng{Lat: 46.8, Lng: 14.0}, bounds.NorthEast)
	assert.Equal(t, 1.0, s.calls[0].args[1])
	assert.Equal(t, 8, s.calls[1].args[0])
	assert.Equal(t, geo.LatLng{Lat: 46.1, Lng: 13.0}, s.calls[2].args[0])
	assert.Equal(t, 9, s.calls[2].args[1])
	assert.Equal(t, TopRight, s.calls[4].args[0])
	assert.Len(t, r.listeners, 1)
}

func TestResizeInvalidatesSize(t *testing.T) {
	_, s, r := newView(t)
	r.fire()
	r.fire()
	assert.Equal(t, 2, s.invalidated)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := &fakeSurface{}
	r := &fakeResize{}
	v := New(s, r, DefaultOptions())
	v.Update([]directory.Farm{farmA, farmB}, nil)

	v.Close()
	v.Close()

	assert.Equal(t, 1, s.removed)
	assert.Equal(t, 1, r.unregistered)
	assert.Empty(t, v.MarkerIDs())

	// Updates after teardown do nothing.
	calls := len(s.calls)
	v.Update([]directory.Farm{farmC}, nil)
	assert.Len(t, s.calls, calls)
}

func TestMarkerIdentityPreserved(t *testing.T) {
	v, s, _ := newView(t)

	v.Update([]directory.Farm{farmA, farmB}, nil)
	before, ok := v.MarkerFor("a")
	require.True(t, ok)

	moved := farmA
	moved.Lat = 46.05
	v.Update([]directory.Farm{moved, farmB, farmC}, []string{"a"})

	after, ok := v.MarkerFor("a")
	require.True(t, ok)
	assert.Same(t, before, after, "a surviving farm keeps its marker")
	assert.Len(t, s.markers, 3, "only the new farm gets a new marker")

	fm := after.(*fakeMarker)
	assert.Equal(t, moved.Position(), fm.pos)
	assert.False(t, fm.removed)
}

func TestMarkerSetMatchesFarmList(t *testing.T) {
	v, s, _ := newView(t)

	v.Update([]directory.Farm{farmA, farmB, farmC}, nil)
	assert.Equal(t, []string{"a", "b", "c"}, v.MarkerIDs())

	b, _ := v.MarkerFor("b")
	v.Update([]directory.Farm{farmA, farmC}, nil)
	assert.Equal(t, []string{"a", "c"}, v.MarkerIDs())
	assert.True(t, b.(*fakeMarker).removed)

	v.Update(nil, nil)
	assert.Empty(t, v.MarkerIDs())
	for _, m := range s.markers {
		assert.True(t, m.removed)
	}
	assert.Zero(t, v.LineCount())
}

func TestConnectionPruning(t *testing.T) {
	v, s, _ := newView(t)

	// a->b, a->c, b->a
	v.Update([]directory.Farm{farmA, farmB, farmC}, nil)
	assert.Equal(t, 3, v.LineCount())
	assert.Equal(t, 3, s.liveLines())

	// Only a->b and b->a survive without c.
	v.Update([]directory.Farm{farmA, farmB}, nil)
	assert.Equal(t, 2, v.LineCount())
	assert.Equal(t, 2, s.liveLines())

	// Nothing to connect to.
	v.Update([]directory.Farm{farmA}, nil)
	assert.Zero(t, v.LineCount())
	assert.Zero(t, s.liveLines())
}

func TestLinesAreRebuiltEachUpdate(t *testing.T) {
	v, s, _ := newView(t)

	v.Update([]directory.Farm{farmA, farmB}, nil)
	first := append([]*fakeLine{}, s.lines...)
	v.Update([]directory.Farm{farmA, farmB}, nil)

	for _, l := range first {
		assert.True(t, l.removed)
	}
	assert.Equal(t, 2, s.liveLines())
	assert.Equal(t, ConnectionStyle, s.lines[len(s.lines)-1].style)
}

func TestLinesDrawnBeforeMarkers(t *testing.T) {
	v, s, _ := newView(t)
	v.Update([]directory.Farm{farmA, farmB}, nil)

	lastLine, firstMarker := -1, -1
	for i, c := range s.calls {
		switch c.op {
		case "AddPolyline":
			lastLine = i
		case "AddMarker":
			if firstMarker < 0 {
				firstMarker = i
			}
		}
	}
	assert.Less(t, lastLine, firstMarker)
}

func TestHighlightExactness(t *testing.T) {
	v, _, _ := newView(t)
	farms := []directory.Farm{farmA, farmB, farmC}

	highlighted := func() []string {
		var ids []string
		for _, id := range v.MarkerIDs() {
			m, _ := v.MarkerFor(id)
			fm := m.(*fakeMarker)
			if fm.icon.Highlighted {
				assert.Equal(t, HighlightZIndex, fm.z)
				assert.Equal(t, "#dc2626", fm.icon.BorderColor)
				assert.True(t, fm.icon.AlwaysLabel)
				ids = append(ids, id)
			} else {
				assert.Zero(t, fm.z)
				assert.Equal(t, "#ffffff", fm.icon.BorderColor)
			}
		}
		return ids
	}

	v.Update(farms, nil)
	assert.Empty(t, highlighted())

	v.Update(farms, []string{"b"})
	assert.Equal(t, []string{"b"}, highlighted())

	v.Update(farms, nil)
	assert.Empty(t, highlighted())
}

func TestHighlightIgnoresUnknownIDs(t *testing.T) {
	v, _, _ := newView(t)
	v.Update([]directory.Farm{farmA}, []string{"ghost"})

	m, _ := v.MarkerFor("a")
	assert.False(t, m.(*fakeMarker).icon.Highlighted)
	assert.Equal(t, []string{"a"}, v.MarkerIDs())
}

func TestClickReportsFarmID(t *testing.T) {
	v, _, _ := newView(t)
	v.Update([]directory.Farm{farmA, farmB}, nil)

	var got []string
	v.OnSelect(func(id string) { got = append(got, id) })

	m, _ := v.MarkerFor("b")
	m.(*fakeMarker).click()

	// Replacing the callback does not need a marker rebuild.
	var replaced string
	v.OnSelect(func(id string) { replaced = id })
	m, _ = v.MarkerFor("a")
	m.(*fakeMarker).click()

	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, "a", replaced)
}

func TestIconFor(t *testing.T) {
	plain := IconFor(farmA, false)
	assert.Equal(t, 1.0, plain.Scale)
	assert.Equal(t, 1.1, plain.HoverScale)
	assert.False(t, plain.Halo)
	assert.Equal(t, "A", plain.Badge)

	lit := IconFor(farmA, true)
	assert.Equal(t, 1.25, lit.Scale)
	assert.True(t, lit.Halo)
	assert.Equal(t, farmA.Name, lit.Label)
}
