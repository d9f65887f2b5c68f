package hcladapter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/injurylens/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

const (
	defaultTopN          = 5
	defaultSeed          = int64(1)
	defaultNotifyEvent   = "invalidated"
	defaultNotifyNS      = "/"
	defaultNotifyTimeout = 10 * time.Second
)

// translateDataset converts a dataset block into the agnostic model,
// inferring the format from the file extension when it is omitted. Relative
// paths resolve against the directory of the declaring workspace file.
func translateDataset(b *datasetBlock, baseDir string) (*config.Dataset, error) {
	format := b.Format
	if format == "" {
		switch filepath.Ext(b.Path) {
		case ".csv":
			format = config.FormatCSV
		case ".db", ".sqlite", ".sqlite3":
			format = config.FormatSQLite
		default:
			return nil, fmt.Errorf("dataset %q: cannot infer format from path %q, set format explicitly", b.Name, b.Path)
		}
	}

	table := b.Table
	if table == "" {
		table = b.Name
	}

	path := b.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return &config.Dataset{
		Name:   b.Name,
		Format: format,
		Path:   path,
		Table:  table,
	}, nil
}

// translateView converts a view block, evaluating the optional top_n
// expression and applying its default.
func translateView(b *viewBlock) (*config.View, error) {
	topN := defaultTopN
	if n, set, err := intAttr(b.TopN); err != nil {
		return nil, fmt.Errorf("view %q: invalid top_n: %w", b.Name, err)
	} else if set {
		topN = int(n)
	}

	return &config.View{
		Name:      b.Name,
		Dimension: b.Dimension,
		TopN:      topN,
	}, nil
}

func translateNarrative(b *narrativeBlock) (*config.Narrative, error) {
	seed := defaultSeed
	if n, set, err := intAttr(b.Seed); err != nil {
		return nil, fmt.Errorf("narrative block: invalid seed: %w", err)
	} else if set {
		seed = n
	}
	return &config.Narrative{Seed: seed}, nil
}

func translateNotify(b *notifyBlock) (*config.Notify, error) {
	timeout := defaultNotifyTimeout
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("notify block: invalid timeout %q: %w", b.Timeout, err)
		}
		timeout = d
	}

	n := &config.Notify{
		URL:       b.URL,
		Namespace: b.Namespace,
		Event:     b.Event,
		Timeout:   timeout,
	}
	if n.Namespace == "" {
		n.Namespace = defaultNotifyNS
	}
	if n.Event == "" {
		n.Event = defaultNotifyEvent
	}
	return n, nil
}

// intAttr evaluates an optional numeric attribute expression. The second
// return value reports whether the attribute was present in the file.
func intAttr(expr hcl.Expression) (int64, bool, error) {
	if expr == nil {
		return 0, false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, false, diags
	}
	if val.IsNull() {
		return 0, false, nil
	}
	converted, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, false, err
	}
	var n int64
	if err := gocty.FromCtyValue(converted, &n); err != nil {
		return 0, false, err
	}
	return n, true, nil
}
