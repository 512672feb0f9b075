package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"terrefvg/cmd/terrefvg/ui"
	"terrefvg/internal/store"
	"terrefvg/internal/usage"
)

var visitedCmd = &cobra.Command{
	Use:   "visited",
	Short: "Show the passport of visited farms",
	Args:  cobra.NoArgs,
	RunE:  listVisited,
}

var checkinCmd = &cobra.Command{
	Use:   "checkin [farm-id]",
	Short: "Collect the passport stamp of a farm",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckIn,
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the Gemini tokens spent by the concierge",
	Args:  cobra.NoArgs,
	RunE:  showUsage,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (API key omitted)",
	Args:  cobra.NoArgs,
	RunE:  showConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  initConfig,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func listVisited(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := openDirectory(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	db, visited, err := openVisited(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	table := ui.NewSimpleTable(fmt.Sprintf("📖 Passaporto (%d/%d)", visited.Len(), dir.Len()), "ID", "Nome", "Indirizzo")
	for _, id := range visited.IDs() {
		if f, ok := dir.Lookup(id); ok {
			table.AddRow(f.ID, f.Name, f.Address)
		} else {
			table.AddRow(id, "(non più in catalogo)")
		}
	}
	fmt.Println(table.View(ui.DefaultStyles(), "Nessun timbro ancora. Visita un'azienda per iniziare!"))
	return nil
}

func runCheckIn(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := openDirectory(cfg)
	if err != nil {
		return err
	}
	f, ok := dir.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown farm %q", args[0])
	}

	ctx, cancel := commandContext()
	defer cancel()
	db, visited, err := openVisited(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	added, err := visited.CheckIn(ctx, f.ID)
	if err != nil {
		return fmt.Errorf("failed to save check-in: %w", err)
	}
	getLogger().Info("check-in", zap.String("farm", f.ID), zap.Bool("new", added))
	if added {
		fmt.Printf("✨ Timbro collezionato: %s\n", f.Name)
	} else {
		fmt.Printf("✓ %s è già nel tuo passaporto.\n", f.Name)
	}
	return nil
}

func showUsage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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
	tracker, err := usage.NewTracker(ctx, db, usage.DefaultKey)
	if err != nil {
		return err
	}

	stats := tracker.Stats()
	table := ui.NewSimpleTable("🔢 Token Gemini", "Voce", "Chiamate", "Input", "Output", "Totale")
	row := func(name string, c usage.Counts) {
		table.AddRow(name, fmt.Sprint(c.Calls), fmt.Sprint(c.Input), fmt.Sprint(c.Output), fmt.Sprint(c.Total))
	}
	if stats.Total.Calls > 0 {
		row("totale", stats.Total)
		for _, op := range []string{usage.OpItinerary, usage.OpAdvice} {
			if c, ok := stats.ByOperation[op]; ok {
				row(op, c)
			}
		}
		models := make([]string, 0, len(stats.ByModel))
		for m := range stats.ByModel {
			models = append(models, m)
		}
		sort.Strings(models)
		for _, m := range models {
			row(m, stats.ByModel[m])
		}
	}
	fmt.Println(table.View(ui.DefaultStyles(), "Nessuna chiamata registrata."))
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := *cfg
	out.Gemini.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Printf("# %s\n%s", configPath(), data)
	if !cfg.HasAPIKey() {
		fmt.Println("# concierge disabled:", cfg.RequireAPIKey())
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Println("Configuration written to", path)
	return nil
}
