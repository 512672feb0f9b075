package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"terrefvg/cmd/terrefvg/shell"
	"terrefvg/internal/geo"
	"terrefvg/internal/itinerary"
	"terrefvg/internal/store"
	"terrefvg/internal/usage"
)

var (
	planDirections bool
	planMaxStops   int
	fromLat        float64
	fromLng        float64
)

var planCmd = &cobra.Command{
	Use:   "plan [request]",
	Short: "Ask the concierge for a short itinerary",
	Long: `Asks Gemini for an itinerary of up to three farms matching a free-text
request, using the farm catalog as the only source of stops.

Example:
  terrefvg plan "vini bianchi e formaggi stagionati" --directions`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

var directionsCmd = &cobra.Command{
	Use:   "directions [farm-id]",
	Short: "Driving advice to a farm, grounded in Google Maps",
	Args:  cobra.ExactArgs(1),
	RunE:  runDirections,
}

func joinArgs(args []string) string {
	return strings.Join(strings.Fields(strings.Join(args, " ")), " ")
}

// locateText maps a geolocation failure to the message shown to the user.
func locateText(err error) string {
	switch {
	case errors.Is(err, geo.ErrUnsupported):
		return shell.GeoUnsupportedText
	case errors.Is(err, geo.ErrPermissionDenied):
		return shell.GeoDeniedText
	default:
		return shell.GeoFailedText
	}
}

func printAdvice(a itinerary.Advice) {
	fmt.Println("🚗 Consigli di viaggio (Google Maps):")
	fmt.Println(a.Text)
	if len(a.Citations) == 0 {
		return
	}
	fmt.Println("\nFonti Google Maps:")
	for _, c := range a.Citations {
		title := c.Title
		if title == "" {
			title = "Link Map"
		}
		if c.URI != "" {
			fmt.Printf("  • %s (%s)\n", title, c.URI)
		} else {
			fmt.Printf("  • %s\n", title)
		}
	}
}

// runPlan synthesizes an itinerary. The visited set, the usage totals and,
// with --directions, the starting position are loaded concurrently first.
func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := openDirectory(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(context.Background(), cfg, dir)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	db, err := store.Open(cfg.Store.Driver, resolvePath(cfg.Store.Path))
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		visited *store.VisitedSet
		tracker *usage.Tracker
		origin  geo.LatLng
		geoErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		visited, err = store.LoadVisited(gctx, db, cfg.Store.VisitedKey)
		return err
	})
	g.Go(func() error {
		var err error
		tracker, err = usage.NewTracker(gctx, db, usage.DefaultKey)
		return err
	})
	if planDirections {
		g.Go(func() error {
			origin, geoErr = cfg.Geolocation.Locator().Locate(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	ctx = usage.NewContext(ctx, tracker)
	defer flushUsage(tracker)

	request := joinArgs(args)
	getLogger().Info("planning itinerary", zap.String("request", request), zap.Bool("directions", planDirections))
	result := client.SynthesizeItinerary(ctx, request)

	if !result.OK() {
		fmt.Println(result.Failure.Message())
		return nil
	}

	it := result.Itinerary.Truncated(planMaxStops)
	fmt.Printf("✨ %s\n", it.Title)
	if it.Description != "" {
		fmt.Println(it.Description)
	}
	fmt.Println()
	for i, s := range it.Steps {
		name := s.FarmID
		if f, ok := dir.Lookup(s.FarmID); ok {
			name = f.Name
		}
		mark := ""
		if visited.Has(s.FarmID) {
			mark = " ✓"
		}
		fmt.Printf("Tappa %d: %s%s - %s\n", i+1, name, mark, s.Reason)
	}

	if !planDirections {
		return nil
	}
	fmt.Println()
	if len(it.Steps) == 0 {
		fmt.Println(shell.NoStepsText)
		return nil
	}
	if geoErr != nil {
		getLogger().Warn("locate failed", zap.Error(geoErr))
		fmt.Println(locateText(geoErr))
		return nil
	}
	printAdvice(client.TravelAdvice(ctx, origin, it.Steps[0].FarmID))
	return nil
}

// runDirections prints travel advice to one farm. --lat/--lng replace the
// configured geolocation.
func runDirections(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := openDirectory(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(context.Background(), cfg, dir)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	var locator geo.Locator = cfg.Geolocation.Locator()
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		pos := geo.LatLng{Lat: fromLat, Lng: fromLng}
		if !pos.Valid() {
			return fmt.Errorf("invalid starting position %s", pos)
		}
		locator = geo.StaticLocator{Position: pos}
	}

	origin, err := locator.Locate(ctx)
	if err != nil {
		fmt.Println(locateText(err))
		return nil
	}

	db, err := store.Open(cfg.Store.Driver, resolvePath(cfg.Store.Path))
	if err != nil {
		return err
	}
	defer db.Close()
	tracker, err := usage.NewTracker(ctx, db, usage.DefaultKey)
	if err != nil {
		return err
	}
	defer flushUsage(tracker)

	printAdvice(client.TravelAdvice(usage.NewContext(ctx, tracker), origin, args[0]))
	return nil
}
