package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"terrefvg/cmd/terrefvg/shell"
	"terrefvg/cmd/terrefvg/ui"
	"terrefvg/internal/canvas"
	"terrefvg/internal/directory"
	"terrefvg/internal/mapview"
)

var (
	farmsCategory string
	mapWidth      int
	mapHeight     int
)

var farmsCmd = &cobra.Command{
	Use:   "farms",
	Short: "List the farms of the network",
	Long: `Lists every farm in the catalog with its categories and visit status.

Example:
  terrefvg farms --category Wine`,
	Args: cobra.NoArgs,
	RunE: listFarms,
}

var showCmd = &cobra.Command{
	Use:   "show [farm-id]",
	Short: "Show the details of a farm",
	Args:  cobra.ExactArgs(1),
	RunE:  showFarm,
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print a static render of the farm map",
	Args:  cobra.NoArgs,
	RunE:  printMap,
}

func categoryFilter() (directory.FilterSet, error) {
	if farmsCategory == "" {
		return directory.NewFilterSet(), nil
	}
	var cats []directory.Category
	for _, name := range strings.Split(farmsCategory, ",") {
		c, err := directory.ParseCategory(name)
		if err != nil {
			return directory.FilterSet{}, err
		}
		cats = append(cats, c)
	}
	return directory.NewFilterSet(cats...), nil
}

func categoryList(f directory.Farm) string {
	cats := f.Categories()
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = string(c)
	}
	return strings.Join(labels, ", ")
}

// listFarms prints the (optionally filtered) catalog.
func listFarms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fs, err := categoryFilter()
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

	table := ui.NewSimpleTable(fmt.Sprintf("🌾 Aziende TerreFVG (%s)", fs), "ID", "Nome", "Categorie", "Visitata")
	for _, f := range dir.Filter(fs) {
		mark := ""
		if visited.Has(f.ID) {
			mark = "✓"
		}
		table.AddRow(f.ID, f.Name, categoryList(f), mark)
	}
	fmt.Println(table.View(ui.DefaultStyles(), "Nessuna azienda per questi filtri."))
	return nil
}

// showFarm prints one farm as rendered markdown.
func showFarm(cmd *cobra.Command, args []string) error {
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

	fmt.Println(shell.RenderMarkdown(shell.DetailMarkdown(f, visited.Has(f.ID), dir), markdownStyle(), 80))
	return nil
}

// markdownStyle is plain output unless the theme asks otherwise.
func markdownStyle() string {
	switch appConfig.Theme {
	case "dark", "light":
		return appConfig.Theme
	default:
		return "notty"
	}
}

// printMap renders the map once, the way the interactive shell draws it.
func printMap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fs, err := categoryFilter()
	if err != nil {
		return err
	}
	dir, err := openDirectory(cfg)
	if err != nil {
		return err
	}

	cv := canvas.New(max(mapWidth, 10), max(mapHeight, 5))
	view := mapview.New(cv, nil, mapOptions(cfg))
	defer view.Close()

	farms := dir.Filter(fs)
	view.Update(farms, nil)
	fmt.Println(cv.Render())
	fmt.Printf("%d aziende · %d collegamenti\n", len(farms), view.LineCount())
	return nil
}
