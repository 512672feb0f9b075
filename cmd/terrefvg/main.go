package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"terrefvg/internal/config"
	"terrefvg/internal/logging"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	workspace  string
	configFile string
	timeout    time.Duration

	// Loaded once per invocation by loadConfig.
	appConfig *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "terrefvg",
	Short: "TerreFVG - farm directory map and AI concierge for Friuli Venezia Giulia",
	Long: `terrefvg shows the farms of the TerreFVG network on a terminal map.

Filter by product category, open a farm to read about it and collect a
passport stamp, or ask the concierge for a short itinerary and directions
to its first stop.

Run without arguments to start the interactive map.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// The interactive map owns the terminal, so it logs to a file.
		interactive := cmd == cmd.Root()
		return initLogging(cfg, interactive)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runInteractive,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY / GOOGLE_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: <workspace>/.terrefvg/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	farmsCmd.Flags().StringVar(&farmsCategory, "category", "", "Only farms selling this category (Wine, Cheese, Meat, Vegetable, Honey, Oil)")
	planCmd.Flags().BoolVar(&planDirections, "directions", false, "Also ask for directions to the first stop")
	planCmd.Flags().IntVar(&planMaxStops, "max-stops", 0, "Show at most this many stops (0 = all)")
	directionsCmd.Flags().Float64Var(&fromLat, "lat", 0, "Starting latitude (default: configured position)")
	directionsCmd.Flags().Float64Var(&fromLng, "lng", 0, "Starting longitude (default: configured position)")
	mapCmd.Flags().IntVar(&mapWidth, "width", 100, "Map width in cells")
	mapCmd.Flags().IntVar(&mapHeight, "height", 30, "Map height in cells")
	mapCmd.Flags().StringVar(&farmsCategory, "category", "", "Only show farms selling this category")

	rootCmd.AddCommand(farmsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(directionsCmd)
	rootCmd.AddCommand(visitedCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
