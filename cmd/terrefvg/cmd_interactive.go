package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"terrefvg/cmd/terrefvg/shell"
	"terrefvg/cmd/terrefvg/ui"
	"terrefvg/internal/config"
	"terrefvg/internal/logging"
	"terrefvg/internal/mapview"
	"terrefvg/internal/usage"
)

// mapOptions turns the map section of the config into view options.
func mapOptions(cfg *config.Config) mapview.Options {
	opts := mapview.DefaultOptions()
	opts.Bounds = cfg.Map.Bounds
	opts.Center = cfg.Map.Center
	opts.Zoom = cfg.Map.Zoom
	opts.MinZoom = cfg.Map.MinZoom
	return opts
}

// runInteractive starts the interactive map.
func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logging.Boot("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	dir, err := openDirectory(cfg)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	db, visited, err := openVisited(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open visited store: %w", err)
	}
	defer db.Close()

	if tracker, err := usage.NewTracker(ctx, db, usage.DefaultKey); err != nil {
		logging.StoreWarn("token usage not tracked: %v", err)
	} else {
		ctx = usage.NewContext(ctx, tracker)
		defer flushUsage(tracker)
	}

	client, err := newClient(ctx, cfg, dir)
	if err != nil {
		return err
	}

	// Keep the log level in sync with edits to the config file.
	if w, err := config.NewWatcher(configPath(), config.ApplyLogging); err != nil {
		logging.ConfigWarn("config watcher disabled: %v", err)
	} else if err := w.Start(ctx); err != nil {
		logging.ConfigWarn("config watcher disabled: %v", err)
		w.Stop()
	} else {
		defer w.Stop()
	}

	mapOpts := mapOptions(cfg)
	model, err := shell.New(shell.Options{
		Context:   ctx,
		Directory: dir,
		Client:    client,
		Visited:   visited,
		Locator:   cfg.Geolocation.Locator(),
		Styles:    ui.NewStyles(ui.ThemeFor(cfg.Theme)),
		Map:       &mapOpts,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	getLogger().Info("starting interactive map",
		zap.Int("farms", dir.Len()),
		zap.Int("visited", visited.Len()),
		zap.Bool("concierge", client.HasCredential()))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
