package directory

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Farms []Farm `yaml:"farms"`
}

// Directory is the ordered, immutable farm catalog with an id index.
type Directory struct {
	farms []Farm
	index map[string]int
}

// New validates the records and builds a Directory. Duplicate ids are an
// error; connections to unknown ids are not.
func New(farms []Farm) (*Directory, error) {
	d := &Directory{
		farms: make([]Farm, len(farms)),
		index: make(map[string]int, len(farms)),
	}
	copy(d.farms, farms)

	for i, f := range d.farms {
		if err := ValidateFarm(f); err != nil {
			return nil, fmt.Errorf("farm %d (%q): %w", i, f.ID, err)
		}
		if _, dup := d.index[f.ID]; dup {
			return nil, fmt.Errorf("duplicate farm id %q", f.ID)
		}
		d.index[f.ID] = i
	}
	return d, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Directory, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(cf.Farms)
}

// Embedded returns the catalog bundled with the binary.
func Embedded() (*Directory, error) {
	return Parse(embeddedCatalog)
}

// Load reads a catalog from path, or the embedded one when path is empty.
func Load(path string) (*Directory, error) {
	if path == "" {
		return Embedded()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// All returns the farms in catalog order.
func (d *Directory) All() []Farm {
	out := make([]Farm, len(d.farms))
	copy(out, d.farms)
	return out
}

func (d *Directory) Len() int { return len(d.farms) }

// Lookup finds a farm by id.
func (d *Directory) Lookup(id string) (Farm, bool) {
	i, ok := d.index[id]
	if !ok {
		return Farm{}, false
	}
	return d.farms[i], true
}

// Filter returns the farms shown under fs, in catalog order.
func (d *Directory) Filter(fs FilterSet) []Farm {
	if fs.Empty() {
		return d.All()
	}
	var out []Farm
	for _, f := range d.farms {
		if fs.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// ResolveSteps maps farm ids to records, in order, silently skipping ids
// that are not in the catalog.
func (d *Directory) ResolveSteps(ids []string) []Farm {
	var out []Farm
	for _, id := range ids {
		if f, ok := d.Lookup(id); ok {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the display names of the resolvable ids.
func (d *Directory) Names(ids []string) []string {
	farms := d.ResolveSteps(ids)
	names := make([]string, len(farms))
	for i, f := range farms {
		names[i] = f.Name
	}
	return names
}

// DanglingConnections reports, per farm id, the connection targets that do
// not exist in the catalog. It is diagnostic only.
func (d *Directory) DanglingConnections() map[string][]string {
	out := make(map[string][]string)
	for _, f := range d.farms {
		for _, c := range f.Connections {
			if _, ok := d.index[c]; !ok {
				out[f.ID] = append(out[f.ID], c)
			}
		}
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out
}
