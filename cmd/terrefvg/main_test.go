package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"terrefvg/cmd/terrefvg/shell"
	"terrefvg/internal/itinerary"
)

// setup points the CLI at a fresh workspace with no credentials.
func setup(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "TERREFVG_MODEL", "TERREFVG_DB", "TERREFVG_DARK_MODE"} {
		t.Setenv(k, "")
	}
	logger = zap.NewNop()
	workspace = t.TempDir()
	appConfig = nil
	configFile = ""
	apiKey = ""
	verbose = false
	timeout = time.Minute
	farmsCategory = ""
	planDirections = false
	planMaxStops = 0
	t.Cleanup(func() { appConfig = nil })
	return workspace
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(workspace, ".terrefvg", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	appConfig = nil
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	return captureOutput(t, func() {
		if err := fn(&cobra.Command{}, args); err != nil {
			t.Errorf("command returned error: %v", err)
		}
	})
}

const plan = `{"title":"Collio e Carso","description":"Bianchi e rossi di confine.","steps":[` +
	`{"farmId":"borgo-collio","reason":"Ribolla Gialla"},` +
	`{"farmId":"terrano-carso","reason":"Terrano in osmiza"}]}`

// fakeGemini answers itinerary requests with plan and grounded requests
// with a short route.
func fakeGemini(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var advice atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		candidate := map[string]any{}
		if _, grounded := body["tools"]; grounded {
			advice.Add(1)
			candidate["content"] = map[string]any{"role": "model", "parts": []any{map[string]any{"text": "Prendi la A23 fino a Udine Sud."}}}
			candidate["groundingMetadata"] = map[string]any{"groundingChunks": []any{
				map[string]any{"maps": map[string]any{"uri": "https://maps.google.com/?cid=42"}},
			}}
		} else {
			candidate["content"] = map[string]any{"role": "model", "parts": []any{map[string]any{"text": plan}}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates":    []any{candidate},
			"usageMetadata": map[string]any{"promptTokenCount": 100, "candidatesTokenCount": 20, "totalTokenCount": 120},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &advice
}

func TestJoinArgs(t *testing.T) {
	assert.Equal(t, "vino rosso", joinArgs([]string{"vino", " rosso "}))
	assert.Equal(t, "vino rosso friulano", joinArgs([]string{" vino  rosso", "", "friulano\t"}))
	assert.Equal(t, "", joinArgs([]string{" ", "\t"}))
}

func TestListFarms(t *testing.T) {
	setup(t)
	out := run(t, listFarms)
	assert.Contains(t, out, "Borgo del Collio")
	assert.Contains(t, out, "Latteria Sociale di Fagagna")
	assert.Contains(t, out, "Wine, Oil")
}

func TestListFarmsByCategory(t *testing.T) {
	setup(t)
	farmsCategory = "cheese"
	out := run(t, listFarms)
	assert.Contains(t, out, "Latteria Sociale di Fagagna")
	assert.Contains(t, out, "Apicoltura Monte Amariana")
	assert.NotContains(t, out, "Borgo del Collio")

	farmsCategory = "Truffles"
	assert.Error(t, listFarms(&cobra.Command{}, nil))
}

func TestShowFarm(t *testing.T) {
	setup(t)
	out := run(t, showFarm, "latteria-fagagna")
	assert.Contains(t, out, "Latteria Sociale di Fagagna")
	assert.Contains(t, out, "Montasio DOP stravecchio")

	assert.Error(t, showFarm(&cobra.Command{}, []string{"nope"}))
}

func TestCheckInAndPassport(t *testing.T) {
	setup(t)
	out := run(t, listVisited)
	assert.Contains(t, out, "Nessun timbro")

	out = run(t, runCheckIn, "borgo-collio")
	assert.Contains(t, out, "Timbro collezionato: Borgo del Collio")
	out = run(t, runCheckIn, "borgo-collio")
	assert.Contains(t, out, "già nel tuo passaporto")

	out = run(t, listVisited)
	assert.Contains(t, out, "(1/10)")
	assert.Contains(t, out, "Borgo del Collio")

	out = run(t, listFarms)
	assert.Contains(t, out, "✓")

	assert.Error(t, runCheckIn(&cobra.Command{}, []string{"nope"}))
}

func TestPlanWithoutKey(t *testing.T) {
	setup(t)
	out := run(t, runPlan, "vino", "e", "formaggi")
	assert.Contains(t, out, itinerary.MissingCredentialText)
}

func TestPlanWithDirections(t *testing.T) {
	setup(t)
	srv, advice := fakeGemini(t)
	writeConfig(t, fmt.Sprintf("gemini:\n  base_url: %s\n  timeout: 5s\n", srv.URL))
	apiKey = "test-key"
	planDirections = true

	out := run(t, runPlan, "bianchi di confine")
	assert.Contains(t, out, "Collio e Carso")
	assert.Contains(t, out, "Tappa 1: Borgo del Collio - Ribolla Gialla")
	assert.Contains(t, out, "Tappa 2: Osmiza Terrano del Carso")
	assert.Contains(t, out, "Prendi la A23 fino a Udine Sud.")
	assert.Contains(t, out, "Link Map (https://maps.google.com/?cid=42)")
	assert.Equal(t, int32(1), advice.Load())
}

func TestPlanMaxStops(t *testing.T) {
	setup(t)
	srv, advice := fakeGemini(t)
	writeConfig(t, fmt.Sprintf("gemini:\n  base_url: %s\n", srv.URL))
	apiKey = "test-key"
	planMaxStops = 1

	out := run(t, runPlan, "vino")
	assert.Contains(t, out, "Tappa 1")
	assert.NotContains(t, out, "Tappa 2")
	assert.Zero(t, advice.Load())
}

func TestDirectionsGeolocationDenied(t *testing.T) {
	setup(t)
	srv, advice := fakeGemini(t)
	writeConfig(t, fmt.Sprintf("gemini:\n  base_url: %s\ngeolocation:\n  mode: denied\n", srv.URL))
	apiKey = "test-key"

	out := run(t, runDirections, "borgo-collio")
	assert.Contains(t, out, shell.GeoDeniedText)
	assert.Zero(t, advice.Load())
}

func TestDirectionsUnknownFarm(t *testing.T) {
	setup(t)
	srv, advice := fakeGemini(t)
	writeConfig(t, fmt.Sprintf("gemini:\n  base_url: %s\n", srv.URL))
	apiKey = "test-key"

	out := run(t, runDirections, "nope")
	assert.Contains(t, out, itinerary.DestinationNotFoundText)
	assert.Zero(t, advice.Load())
}

func TestDirectionsRejectsBadPosition(t *testing.T) {
	dir := setup(t)
	rootCmd.SetArgs([]string{"directions", "borgo-collio", "--lat", "200", "--lng", "13", "-w", dir})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	var err error
	captureOutput(t, func() { err = rootCmd.Execute() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid starting position")
}

func TestPrintMap(t *testing.T) {
	setup(t)
	mapWidth, mapHeight = 80, 24
	out := run(t, printMap)
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "10 aziende")
}

func TestConfigInitAndShow(t *testing.T) {
	setup(t)
	apiKey = "secret"

	out := run(t, initConfig)
	assert.Contains(t, out, "Configuration written to")
	data, err := os.ReadFile(configPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Error(t, initConfig(&cobra.Command{}, nil))

	out = run(t, showConfig)
	assert.Contains(t, out, "visited_key: visitedFarms")
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "concierge disabled")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	setup(t)
	writeConfig(t, "theme: neon\n")
	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid theme")
}

func TestUsageIsRecordedByPlan(t *testing.T) {
	setup(t)
	out := run(t, showUsage)
	assert.Contains(t, out, "Nessuna chiamata registrata.")

	srv, _ := fakeGemini(t)
	writeConfig(t, fmt.Sprintf("gemini:\n  base_url: %s\n", srv.URL))
	apiKey = "test-key"
	run(t, runPlan, "vino")

	out = run(t, showUsage)
	assert.NotContains(t, out, "Nessuna chiamata registrata.")
	assert.Contains(t, out, "itinerary")
	assert.Contains(t, out, "gemini-2.5-flash")
}
