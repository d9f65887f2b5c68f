package config

import "context"

// Loader translates workspace files of some concrete format into the
// agnostic Model. The application depends on this interface, not on any
// particular syntax.
type Loader interface {
	// Load parses every workspace file found under the given paths and
	// merges them into a single validated Model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
