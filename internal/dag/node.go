package dag

import (
	"context"
	"fmt"

	"github.com/vk/injurylens/internal/ctxlog"
)

// ComputeFunc recomputes a node's value from the resolved values of its
// upstream dependencies, in edge-declaration order. Compute functions must be
// pure: the engine memoizes their results and will not detect impurity.
type ComputeFunc func(ctx context.Context, deps []any) (any, error)

// TriggerFunc reads the current value of an event node's trigger counter.
// The counter is owned by the session's input state and only ever increases.
type TriggerFunc func() uint64

type nodeKind uint8

const (
	computeKind nodeKind = iota
	eventKind
)

// Node is a single vertex of the computation graph. A node is Dirty until
// its first pull and after any upstream invalidation; a pull resolves
// dirtiness bottom-up, recomputes at most once, and caches the result.
type Node struct {
	id   string
	kind nodeKind
	fn   ComputeFunc

	deps       []*Node // in edge-declaration order
	dependents []*Node

	dirty    bool
	hasValue bool
	value    any

	// Event-node state: the counter value consumed by the last successful
	// recompute. fired distinguishes "never computed" from counter zero.
	trigger     TriggerFunc
	lastTrigger uint64
	fired       bool

	recomputes int
}

// ID returns the node's graph-unique identity.
func (n *Node) ID() string { return n.id }

// Invalidate transitions the node and everything downstream of it to Dirty.
// Repeated invalidations before the next pull collapse: propagation stops at
// the first node that is already dirty.
func (n *Node) Invalidate() {
	if n.dirty {
		return
	}
	n.dirty = true
	for _, d := range n.dependents {
		d.Invalidate()
	}
}

// resolve returns the node's current value, recomputing it first if needed.
func (n *Node) resolve(ctx context.Context) (any, error) {
	if n.kind == eventKind {
		return n.resolveEvent(ctx)
	}
	if n.hasValue && !n.dirty {
		return n.value, nil
	}
	return n.recompute(ctx)
}

// resolveEvent applies the trigger-gated recompute condition: a dirty data
// dependency alone never forces work, only an advanced trigger counter (or a
// first pull) does. The recompute still reads live upstream values, so it
// observes any selection change made since the last fire.
func (n *Node) resolveEvent(ctx context.Context) (any, error) {
	cur := n.trigger()
	if n.fired && cur == n.lastTrigger {
		return n.value, nil
	}
	v, err := n.recompute(ctx)
	if err != nil {
		// The trigger is not consumed on failure; the next pull retries.
		return nil, err
	}
	n.lastTrigger = cur
	n.fired = true
	return v, nil
}

func (n *Node) recompute(ctx context.Context) (any, error) {
	in := make([]any, len(n.deps))
	for i, dep := range n.deps {
		v, err := dep.resolve(ctx)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}

	v, err := n.fn(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.id, err)
	}
	n.recomputes++
	ctxlog.FromContext(ctx).Debug("Node recomputed.", "node_id", n.id, "recomputes", n.recomputes)

	n.value = v
	n.hasValue = true
	n.dirty = false
	return v, nil
}
