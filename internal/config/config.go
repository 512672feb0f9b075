package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"terrefvg/internal/geo"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no Gemini key is set.
var ErrMissingAPIKey = errors.New("gemini API key not configured (set GEMINI_API_KEY or GOOGLE_API_KEY)")

// Config holds all terrefvg configuration.
type Config struct {
	// Gemini backend used by the concierge
	Gemini GeminiConfig `yaml:"gemini"`

	// Visited-set persistence
	Store StoreConfig `yaml:"store"`

	// Map home region and initial view
	Map MapConfig `yaml:"map"`

	// Where "directions" takes the starting point from
	Geolocation GeolocationConfig `yaml:"geolocation"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Optional catalog file replacing the embedded one
	CatalogPath string `yaml:"catalog_path,omitempty"`

	// auto, light or dark
	Theme string `yaml:"theme"`
}

// GeminiConfig configures the generative backend.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Timeout string `yaml:"timeout"`
}

// StoreConfig configures the SQLite slot store.
type StoreConfig struct {
	Driver     string `yaml:"driver"` // sqlite (pure Go) or sqlite3 (cgo)
	Path       string `yaml:"path"`
	VisitedKey string `yaml:"visited_key"`
}

// MapConfig configures the map surface.
type MapConfig struct {
	MinZoom int        `yaml:"min_zoom"`
	Zoom    int        `yaml:"zoom"`
	Center  geo.LatLng `yaml:"center"`
	Bounds  geo.Bounds `yaml:"bounds"`
}

// GeolocationConfig selects the geolocation provider.
type GeolocationConfig struct {
	Mode string  `yaml:"mode"` // static, denied, off
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// Position returns the configured static position.
func (g GeolocationConfig) Position() geo.LatLng {
	return geo.LatLng{Lat: g.Lat, Lng: g.Lng}
}

// Locator builds the geolocation provider for this config.
func (g GeolocationConfig) Locator() geo.Locator {
	return geo.NewLocator(g.Mode, g.Position())
}

const (
	// DirName is the per-workspace state directory.
	DirName = ".terrefvg"

	DefaultModel      = "gemini-2.5-flash"
	DefaultVisitedKey = "visitedFarms"
)

// DefaultConfigPath returns the config file location inside workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, DirName, "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:   DefaultModel,
			Timeout: "60s",
		},

		Store: StoreConfig{
			Driver:     "sqlite",
			Path:       filepath.Join(DirName, "terrefvg.db"),
			VisitedKey: DefaultVisitedKey,
		},

		Map: MapConfig{
			MinZoom: 8,
			Zoom:    9,
			Center:  geo.LatLng{Lat: 46.1, Lng: 13.0},
			Bounds: geo.Bounds{
				SouthWest: geo.LatLng{Lat: 45.5, Lng: 12.0},
				NorthEast: geo.LatLng{Lat: 46.8, Lng: 14.0},
			},
		},

		// Piazza Libertà, Udine
		Geolocation: GeolocationConfig{
			Mode: geo.ModeStatic,
			Lat:  46.0637,
			Lng:  13.2358,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(DirName, "logs", "terrefvg.log"),
		},

		Theme: "auto",
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file. The API key is never written.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	out.Gemini.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over GOOGLE_API_KEY
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}

	if model := os.Getenv("TERREFVG_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if path := os.Getenv("TERREFVG_DB"); path != "" {
		c.Store.Path = path
	}
	if v := os.Getenv("TERREFVG_DARK_MODE"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			c.Theme = "dark"
		default:
			c.Theme = "light"
		}
	}
}

// HasAPIKey reports whether a Gemini credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// RequireAPIKey returns ErrMissingAPIKey when no credential is configured.
func (c *Config) RequireAPIKey() error {
	if !c.HasAPIKey() {
		return ErrMissingAPIKey
	}
	return nil
}

// GetGeminiTimeout returns the Gemini request timeout as a duration.
func (c *Config) GetGeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// ValidDrivers lists the supported database/sql driver names.
var ValidDrivers = []string{"sqlite", "sqlite3"}

// ValidGeolocationModes lists the supported geolocation modes.
var ValidGeolocationModes = []string{geo.ModeStatic, geo.ModeDenied, geo.ModeOff}

// ValidThemes lists the supported theme names.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration. A missing API key is not an error
// here: the concierge reports it at call time instead.
func (c *Config) Validate() error {
	var errs []error

	if !contains(ValidDrivers, c.Store.Driver) {
		errs = append(errs, fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store path is required"))
	}
	if c.Store.VisitedKey == "" {
		errs = append(errs, errors.New("store visited_key is required"))
	}

	if !c.Map.Bounds.Valid() {
		errs = append(errs, fmt.Errorf("invalid map bounds: %+v", c.Map.Bounds))
	} else if !c.Map.Bounds.Contains(c.Map.Center) {
		errs = append(errs, fmt.Errorf("map center %s outside bounds", c.Map.Center))
	}
	if c.Map.MinZoom < 0 || c.Map.Zoom < c.Map.MinZoom {
		errs = append(errs, fmt.Errorf("invalid map zoom: zoom=%d min_zoom=%d", c.Map.Zoom, c.Map.MinZoom))
	}

	if !contains(ValidGeolocationModes, c.Geolocation.Mode) {
		errs = append(errs, fmt.Errorf("invalid geolocation mode: %s (valid: %v)", c.Geolocation.Mode, ValidGeolocationModes))
	} else if c.Geolocation.Mode == geo.ModeStatic && !c.Geolocation.Position().Valid() {
		errs = append(errs, fmt.Errorf("invalid static position: %s", c.Geolocation.Position()))
	}

	if !contains(ValidThemes, c.Theme) {
		errs = append(errs, fmt.Errorf("invalid theme: %s (valid: %v)", c.Theme, ValidThemes))
	}

	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
