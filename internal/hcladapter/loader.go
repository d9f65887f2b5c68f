// Package hcladapter is the HCL implementation of config.Loader. Workspace
// files declare dataset, view, narrative, and notify blocks; the adapter
// parses them, evaluates defaults, and merges everything into the agnostic
// config model.
package hcladapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/injurylens/internal/config"
	"github.com/vk/injurylens/internal/ctxlog"
)

// Loader parses .hcl workspace files.
type Loader struct{}

// NewLoader creates a new HCL workspace loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all possible top-level blocks from any workspace file.
type fileRoot struct {
	Datasets  []*datasetBlock `hcl:"dataset,block"`
	Views     []*viewBlock    `hcl:"view,block"`
	Narrative *narrativeBlock `hcl:"narrative,block"`
	Notify    *notifyBlock    `hcl:"notify,block"`
	Remain    hcl.Body        `hcl:",remain"`
}

type datasetBlock struct {
	Name   string `hcl:"name,label"`
	Format string `hcl:"format,optional"`
	Path   string `hcl:"path"`
	Table  string `hcl:"table,optional"`
}

type viewBlock struct {
	Name      string         `hcl:"name,label"`
	Dimension string         `hcl:"dimension"`
	TopN      hcl.Expression `hcl:"top_n,optional"`
}

type narrativeBlock struct {
	Seed hcl.Expression `hcl:"seed,optional"`
}

type notifyBlock struct {
	URL       string `hcl:"url"`
	Namespace string `hcl:"namespace,optional"`
	Event     string `hcl:"event,optional"`
	Timeout   string `hcl:"timeout,optional"`
}

// Load orchestrates the workspace loading process. It is agnostic to the
// origin of the paths and accepts any mix of files and directories.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Datasets: make(map[string]*config.Dataset),
	}

	files, err := l.findWorkspaceFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered workspace files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse workspace file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode workspace file %s: %w", file, diags)
		}

		for _, ds := range root.Datasets {
			translated, err := translateDataset(ds, filepath.Dir(file))
			if err != nil {
				return nil, err
			}
			model.Datasets[translated.Name] = translated
		}
		for _, v := range root.Views {
			translated, err := translateView(v)
			if err != nil {
				return nil, err
			}
			model.Views = append(model.Views, translated)
		}
		if root.Narrative != nil {
			translated, err := translateNarrative(root.Narrative)
			if err != nil {
				return nil, err
			}
			model.Narrative = translated
		}
		if root.Notify != nil {
			translated, err := translateNotify(root.Notify)
			if err != nil {
				return nil, err
			}
			model.Notify = translated
		}
	}

	if model.Narrative == nil {
		model.Narrative = &config.Narrative{Seed: defaultSeed}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Workspace loading complete.",
		"datasets", len(model.Datasets), "views", len(model.Views), "notify", model.Notify != nil)
	return model, nil
}

// findWorkspaceFiles walks the given paths and returns all .hcl files found.
func (l *Loader) findWorkspaceFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, dup := seen[p]; !dup {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return all, nil
}
