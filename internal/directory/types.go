// Package directory holds the static farm catalog: the records, the closed
// set of product categories and the read-only lookups built over them.
package directory

import (
	"fmt"
	"strings"

	"terrefvg/internal/geo"
)

// Category is a product family. The set is closed.
type Category string

const (
	Wine      Category = "Wine"
	Cheese    Category = "Cheese"
	Meat      Category = "Meat"
	Vegetable Category = "Vegetable"
	Honey     Category = "Honey"
	Oil       Category = "Oil"
)

// AllCategories lists every category in filter-bar order.
var AllCategories = []Category{Wine, Cheese, Meat, Vegetable, Honey, Oil}

var categoryLabels = map[Category]string{
	Wine:      "🍷 Vino",
	Cheese:    "🧀 Formaggi",
	Meat:      "🥩 Carne",
	Vegetable: "🥕 Ortofrutta",
	Honey:     "🍯 Miele",
	Oil:       "🫒 Olio",
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Label is the Italian display label with its emoji.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Initial is the single-letter badge used next to product names.
func (c Category) Initial() string {
	if c == "" {
		return "?"
	}
	return string(c)[:1]
}

func (c Category) index() int {
	for i, k := range AllCategories {
		if k == c {
			return i
		}
	}
	return -1
}

type Product struct {
	Name     string   `yaml:"name" json:"name" validate:"required"`
	Category Category `yaml:"category" json:"category" validate:"required,oneof=Wine Cheese Meat Vegetable Honey Oil"`
}

type Owner struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Role     string `yaml:"role" json:"role"`
	PhotoURL string `yaml:"photo_url" json:"photoUrl"`
}

// Farm is one catalog record. Records are loaded once and never mutated;
// callers must treat the slices as read-only.
type Farm struct {
	ID          string    `yaml:"id" json:"id" validate:"required"`
	Name        string    `yaml:"name" json:"name" validate:"required"`
	Address     string    `yaml:"address" json:"address" validate:"required"`
	Description string    `yaml:"description" json:"description"`
	Specialty   string    `yaml:"specialty" json:"specialty"`
	Logo        string    `yaml:"logo" json:"logo"`
	Lat         float64   `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lng         float64   `yaml:"lng" json:"lng" validate:"gte=-180,lte=180"`
	Products    []Product `yaml:"products" json:"products" validate:"dive"`
	Owners      []Owner   `yaml:"owners" json:"owners" validate:"dive"`
	Connections []string  `yaml:"connections" json:"connections"`
}

// Position returns the farm coordinates.
func (f Farm) Position() geo.LatLng {
	return geo.LatLng{Lat: f.Lat, Lng: f.Lng}
}

// Categories returns the distinct product categories in product order.
func (f Farm) Categories() []Category {
	var out []Category
	seen := make(map[Category]bool, len(f.Products))
	for _, p := range f.Products {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// ProductNames returns the product names in catalog order.
func (f Farm) ProductNames() []string {
	names := make([]string, len(f.Products))
	for i, p := range f.Products {
		names[i] = p.Name
	}
	return names
}

// Initial is the first letter of the farm name, used as the map badge.
func (f Farm) Initial() string {
	for _, r := range f.Name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
