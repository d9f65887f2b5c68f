// Package session owns one user's computation graph over the shared store.
// It applies input mutations, drives invalidation, and serializes every pull
// so that no recomputation ever runs concurrently with a mutation or with
// another recomputation. Many sessions may share one store; each gets its
// own graph and its own deterministic sampling stream.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/vk/injurylens/internal/aggregate"
	"github.com/vk/injurylens/internal/config"
	"github.com/vk/injurylens/internal/ctxlog"
	"github.com/vk/injurylens/internal/dag"
	"github.com/vk/injurylens/internal/dimension"
	"github.com/vk/injurylens/internal/notify"
	"github.com/vk/injurylens/internal/store"
)

// ErrEmptySelection reports a narrative pull against an empty filtered set.
// It is recoverable: the caller may keep showing the previous narrative.
var ErrEmptySelection = errors.New("empty selection")

// Mode selects what the age/sex plot series carries on its y axis.
type Mode uint8

const (
	ModeCount Mode = iota
	ModeRate
)

// String returns the workspace-facing label of the mode.
func (m Mode) String() string {
	if m == ModeRate {
		return "rate"
	}
	return "count"
}

// ParseMode maps a label onto a Mode.
func ParseMode(v string) (Mode, error) {
	switch v {
	case "count":
		return ModeCount, nil
	case "rate":
		return ModeRate, nil
	}
	return 0, fmt.Errorf("unrecognized mode %q, want count or rate", v)
}

// Node identities inside a session's graph.
const (
	nodeFiltered  = "filtered"
	nodeAgeSex    = "age_sex"
	nodeNarrative = "narrative"
)

func viewNodeID(name string) string { return "view." + name }

// inputs is the session's mutable input state. Only external input events
// mutate it; node compute functions read it and never write.
type inputs struct {
	productCode int
	mode        Mode
	trigger     uint64
}

// Point is one value of the age/sex plot series under the current mode.
type Point struct {
	Age   int
	Sex   store.Sex
	Value float64
}

// Session drives one graph instance over the shared read-only store.
type Session struct {
	mu sync.Mutex

	store    *store.Store
	graph    *dag.Graph
	inputs   inputs
	rng      *rand.Rand
	notifier notify.Notifier
	dims     *dimension.Registry

	viewNames []string
	filtered  *dag.Node
}

// Option customizes session construction.
type Option func(*Session)

// WithNotifier attaches an invalidation publisher. The default discards.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithDimensions replaces the default dimension registry.
func WithDimensions(r *dimension.Registry) Option {
	return func(s *Session) { s.dims = r }
}

// New wires the session's graph from the workspace model: one filter node
// fed by the product selection, one top-N node per declared view, the
// age/sex summary, and the trigger-gated narrative sampler. A dependency
// cycle or an unknown view dimension fails construction.
func New(ctx context.Context, st *store.Store, model *config.Model, opts ...Option) (*Session, error) {
	logger := ctxlog.FromContext(ctx)

	s := &Session{
		store:     st,
		graph:     dag.New(),
		rng:       rand.New(rand.NewSource(model.Narrative.Seed)),
		notifier:  notify.Nop{},
		viewNames: model.ViewNames(),
		dims:      dimension.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dimNames := make([]string, 0, len(model.Views))
	for _, v := range model.Views {
		dimNames = append(dimNames, v.Dimension)
	}
	if err := s.dims.Validate(dimNames...); err != nil {
		return nil, err
	}

	// Default selection: the first catalog entry in title order, so a fresh
	// session starts on a non-empty filtered set when a catalog exists.
	if titles := st.ProductTitles(); len(titles) > 0 {
		s.inputs.productCode = titles[0].Code
	}

	if err := s.buildGraph(ctx, model); err != nil {
		return nil, err
	}

	logger.Debug("Session graph built.", "node_count", s.graph.Len(), "views", len(s.viewNames))
	return s, nil
}

func (s *Session) buildGraph(ctx context.Context, model *config.Model) error {
	filtered, err := s.graph.AddNode(nodeFiltered, func(ctx context.Context, deps []any) (any, error) {
		return s.store.FilterByProduct(s.inputs.productCode), nil
	})
	if err != nil {
		return err
	}
	s.filtered = filtered

	for _, v := range model.Views {
		selector, _ := s.dims.Lookup(v.Dimension)
		topN := v.TopN
		id := viewNodeID(v.Name)
		_, err := s.graph.AddNode(id, func(ctx context.Context, deps []any) (any, error) {
			return aggregate.WeightedTopN(deps[0].(store.View), selector, topN)
		})
		if err != nil {
			return err
		}
		if err := s.graph.AddEdge(nodeFiltered, id); err != nil {
			return err
		}
	}

	_, err = s.graph.AddNode(nodeAgeSex, func(ctx context.Context, deps []any) (any, error) {
		return aggregate.AgeSexSummary(deps[0].(store.View), s.store), nil
	})
	if err != nil {
		return err
	}
	if err := s.graph.AddEdge(nodeFiltered, nodeAgeSex); err != nil {
		return err
	}

	_, err = s.graph.AddEventNode(nodeNarrative, func(ctx context.Context, deps []any) (any, error) {
		v := deps[0].(store.View)
		if v.Len() == 0 {
			return nil, fmt.Errorf("%w: no records match the current selection", ErrEmptySelection)
		}
		return v.At(s.rng.Intn(v.Len())).Narrative, nil
	}, func() uint64 { return s.inputs.trigger })
	if err != nil {
		return err
	}
	if err := s.graph.AddEdge(nodeFiltered, nodeNarrative); err != nil {
		return err
	}

	return s.graph.Finalize(ctx)
}

// SelectProduct changes the root product selection and invalidates every
// node that transitively depends on the filtered record set.
func (s *Session) SelectProduct(ctx context.Context, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == s.inputs.productCode {
		return
	}
	s.inputs.productCode = code
	s.filtered.Invalidate()
	ctxlog.FromContext(ctx).Debug("Product selection changed.", "product", code)
	s.notifier.Publish(ctx, map[string]any{"reason": "product_selected", "product": code})
}

// ProductCode returns the current product selection.
func (s *Session) ProductCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs.productCode
}

// SetMode switches the y-axis mode. The age/sex summary carries both count
// and rate, so a mode change is a read-time projection and dirties nothing.
func (s *Session) SetMode(ctx context.Context, m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.mode = m
}

// Mode returns the current y-axis mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs.mode
}

// ViewNames lists the declared top-N views in declaration order.
func (s *Session) ViewNames() []string {
	return s.viewNames
}

// Store exposes the shared store for catalog enumeration by the caller.
func (s *Session) Store() *store.Store {
	return s.store
}

// TopN pulls the current weighted top-N table of a declared view.
func (s *Session) TopN(ctx context.Context, view string) ([]aggregate.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.graph.Value(ctx, viewNodeID(view))
	if err != nil {
		return nil, err
	}
	return v.([]aggregate.Bucket), nil
}

// AgeSexRows pulls the current age/sex summary with both counts and rates.
func (s *Session) AgeSexRows(ctx context.Context) ([]aggregate.AgeSexRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ageSexRowsLocked(ctx)
}

func (s *Session) ageSexRowsLocked(ctx context.Context) ([]aggregate.AgeSexRow, error) {
	v, err := s.graph.Value(ctx, nodeAgeSex)
	if err != nil {
		return nil, err
	}
	return v.([]aggregate.AgeSexRow), nil
}

// PlotSeries projects the age/sex summary under the current mode. In rate
// mode, cohorts whose rate is undefined are omitted rather than plotted as
// zero.
func (s *Session) PlotSeries(ctx context.Context) ([]Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.ageSexRowsLocked(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		switch s.inputs.mode {
		case ModeRate:
			if row.Rate == nil {
				continue
			}
			points = append(points, Point{Age: row.Age, Sex: row.Sex, Value: *row.Rate})
		default:
			points = append(points, Point{Age: row.Age, Sex: row.Sex, Value: row.Weight})
		}
	}
	return points, nil
}

// TellStory advances the trigger counter and pulls a fresh narrative sampled
// from whatever filtered record set is current at this moment.
func (s *Session) TellStory(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.trigger++
	return s.narrativeLocked(ctx)
}

// Narrative pulls the current narrative without firing the trigger. Before
// the first TellStory this performs the initial sample.
func (s *Session) Narrative(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.narrativeLocked(ctx)
}

func (s *Session) narrativeLocked(ctx context.Context) (string, error) {
	v, err := s.graph.Value(ctx, nodeNarrative)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Close releases the session's notifier transport.
func (s *Session) Close() {
	s.notifier.Close()
}
