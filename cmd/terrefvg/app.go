package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"terrefvg/internal/config"
	"terrefvg/internal/directory"
	"terrefvg/internal/itinerary"
	"terrefvg/internal/logging"
	"terrefvg/internal/store"
	"terrefvg/internal/usage"
)

// resolveWorkspace returns the workspace flag or the current directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// resolvePath anchors relative config paths at the workspace.
func resolvePath(p string) string {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(resolveWorkspace(), p)
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.DefaultConfigPath(resolveWorkspace())
}

// loadConfig loads, overrides and validates the configuration once per
// invocation.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath(), err)
	}
	appConfig = cfg
	return cfg, nil
}

// initLogging configures the logging facade. -v forces debug logging; the
// interactive map always writes to the log file.
func initLogging(cfg *config.Config, interactive bool) error {
	opts := cfg.Logging.Options()
	opts.File = resolvePath(opts.File)
	if verbose {
		opts.DebugMode = true
		opts.Level = "debug"
		if !interactive {
			opts.File = ""
		}
	}
	if err := logging.Initialize(opts); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logging.Zap()
	return nil
}

func getLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func openDirectory(cfg *config.Config) (*directory.Directory, error) {
	if cfg.CatalogPath == "" {
		return directory.Embedded()
	}
	return directory.Load(resolvePath(cfg.CatalogPath))
}

// openVisited opens the slot store and loads the visited set. The caller
// closes the returned store.
func openVisited(ctx context.Context, cfg *config.Config) (*store.SlotStore, *store.VisitedSet, error) {
	db, err := store.Open(cfg.Store.Driver, resolvePath(cfg.Store.Path))
	if err != nil {
		return nil, nil, err
	}
	visited, err := store.LoadVisited(ctx, db, cfg.Store.VisitedKey)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, visited, nil
}

func newClient(ctx context.Context, cfg *config.Config, dir *directory.Directory) (*itinerary.Client, error) {
	return itinerary.NewClient(ctx, itinerary.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.GetGeminiTimeout(),
	}, dir)
}

func commandContext() (context.Context, context.CancelFunc) {
	d := timeout
	if d <= 0 {
		d = 2 * time.Minute
	}
	return context.WithTimeout(context.Background(), d)
}

// flushUsage persists the token totals; failures only reach the log.
func flushUsage(t *usage.Tracker) {
	if t == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.Flush(ctx); err != nil {
		getLogger().Warn("failed to save usage", zap.Error(err))
	}
}
