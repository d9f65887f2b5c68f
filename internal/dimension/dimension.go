// Package dimension maps the dimension names a workspace file may reference
// onto the record fields they select. Views declared in configuration are
// validated against this registry before any graph is built, so a typo in a
// workspace file fails at startup rather than at pull time.
package dimension

import (
	"fmt"
	"sort"

	"github.com/vk/injurylens/internal/store"
)

// Func extracts the grouping label for one record.
type Func func(r *store.Record) string

// Registry holds the named dimension selectors available to workspace views.
type Registry struct {
	funcs map[string]Func
}

// New returns a registry pre-populated with the record's categorical columns.
func New() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.Register("diagnosis", func(rec *store.Record) string { return rec.Diagnosis })
	r.Register("body_part", func(rec *store.Record) string { return rec.BodyPart })
	r.Register("location", func(rec *store.Record) string { return rec.Location })
	r.Register("race", func(rec *store.Record) string { return rec.Race })
	r.Register("sex", func(rec *store.Record) string { return rec.Sex.String() })
	return r
}

// Register adds or replaces a named selector.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Lookup returns the selector registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Validate checks that every referenced dimension name is registered.
func (r *Registry) Validate(names ...string) error {
	for _, name := range names {
		if _, ok := r.funcs[name]; !ok {
			return fmt.Errorf("unknown dimension %q (known: %v)", name, r.Names())
		}
	}
	return nil
}

// Names lists the registered dimension names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
