// Package config defines the format-agnostic model of a workspace: which
// dataset files to load, which aggregation views to expose, how narrative
// sampling is seeded, and where invalidation events get published. Parsing
// concerns live in the adapter that produces this model.
package config

import (
	"fmt"
	"time"
)

// Dataset formats understood by the loader.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// The three tables every workspace must provide.
const (
	DatasetInjuries   = "injuries"
	DatasetProducts   = "products"
	DatasetPopulation = "population"
)

// Model is the unified representation of one workspace configuration.
type Model struct {
	Datasets  map[string]*Dataset
	Views     []*View
	Narrative *Narrative
	Notify    *Notify
}

// Dataset names one source table and where to read it from.
type Dataset struct {
	Name   string
	Format string
	Path   string
	Table  string // sqlite only; defaults to the dataset name
}

// View is one named weighted top-N aggregation over a record dimension.
type View struct {
	Name      string
	Dimension string
	TopN      int
}

// Narrative configures the event-triggered narrative sampler.
type Narrative struct {
	Seed int64
}

// Notify configures the optional socket.io invalidation publisher.
type Notify struct {
	URL       string
	Namespace string
	Event     string
	Timeout   time.Duration
}

// Validate checks cross-field constraints the decoder cannot express.
func (m *Model) Validate() error {
	for _, name := range []string{DatasetInjuries, DatasetProducts, DatasetPopulation} {
		ds, ok := m.Datasets[name]
		if !ok {
			return fmt.Errorf("workspace is missing required dataset %q", name)
		}
		if ds.Format != FormatCSV && ds.Format != FormatSQLite {
			return fmt.Errorf("dataset %q: unsupported format %q", name, ds.Format)
		}
		if ds.Path == "" {
			return fmt.Errorf("dataset %q: path is required", name)
		}
	}
	if len(m.Views) == 0 {
		return fmt.Errorf("workspace declares no views")
	}
	seen := make(map[string]bool, len(m.Views))
	for _, v := range m.Views {
		if seen[v.Name] {
			return fmt.Errorf("duplicate view %q", v.Name)
		}
		seen[v.Name] = true
		if v.TopN < 1 {
			return fmt.Errorf("view %q: top_n must be at least 1, got %d", v.Name, v.TopN)
		}
	}
	return nil
}

// ViewNames lists declared view names in declaration order.
func (m *Model) ViewNames() []string {
	names := make([]string, 0, len(m.Views))
	for _, v := range m.Views {
		names = append(names, v.Name)
	}
	return names
}
