// Package loader reads the three source tables named by a workspace
// configuration and assembles the immutable store. It understands CSV files
// and SQLite databases; all schema semantics live with the callers — the
// loader only parses types.
package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/injurylens/internal/config"
	"github.com/vk/injurylens/internal/ctxlog"
	"github.com/vk/injurylens/internal/store"
)

// Load reads every dataset the model names and builds the store.
func Load(ctx context.Context, model *config.Model) (*store.Store, error) {
	logger := ctxlog.FromContext(ctx)

	records, err := loadInjuries(ctx, model.Datasets[config.DatasetInjuries])
	if err != nil {
		return nil, fmt.Errorf("loading injuries: %w", err)
	}
	products, err := loadProducts(ctx, model.Datasets[config.DatasetProducts])
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	population, err := loadPopulation(ctx, model.Datasets[config.DatasetPopulation])
	if err != nil {
		return nil, fmt.Errorf("loading population: %w", err)
	}

	logger.Info("Datasets loaded.",
		"injuries", len(records), "products", len(products), "population_rows", len(population))
	return store.New(records, products, population), nil
}

func loadInjuries(ctx context.Context, ds *config.Dataset) ([]store.Record, error) {
	switch ds.Format {
	case config.FormatCSV:
		f, err := os.Open(ds.Path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return ParseInjuries(f)
	case config.FormatSQLite:
		return loadInjuriesSQLite(ctx, ds.Path, ds.Table)
	}
	return nil, fmt.Errorf("dataset %q: unsupported format %q", ds.Name, ds.Format)
}

func loadProducts(ctx context.Context, ds *config.Dataset) ([]store.Product, error) {
	switch ds.Format {
	case config.FormatCSV:
		f, err := os.Open(ds.Path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return ParseProducts(f)
	case config.FormatSQLite:
		return loadProductsSQLite(ctx, ds.Path, ds.Table)
	}
	return nil, fmt.Errorf("dataset %q: unsupported format %q", ds.Name, ds.Format)
}

func loadPopulation(ctx context.Context, ds *config.Dataset) ([]store.PopulationCount, error) {
	switch ds.Format {
	case config.FormatCSV:
		f, err := os.Open(ds.Path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return ParsePopulation(f)
	case config.FormatSQLite:
		return loadPopulationSQLite(ctx, ds.Path, ds.Table)
	}
	return nil, fmt.Errorf("dataset %q: unsupported format %q", ds.Name, ds.Format)
}
