package dag

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/injurylens/internal/ctxlog"
)

// ErrCyclicDependency reports a dependency cycle found while finalizing a
// graph. A graph that failed finalization must not be pulled from.
var ErrCyclicDependency = errors.New("cyclic dependency")

// Graph owns every node of one session's computation pipeline. Build it by
// adding nodes and edges, then call Finalize before the first pull.
type Graph struct {
	nodes  map[string]*Node
	order  []string // insertion order, for deterministic traversal
	sealed bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode registers an ordinary compute node. It starts Dirty with no cached
// value and recomputes whenever pulled while any upstream changed.
func (g *Graph) AddNode(id string, fn ComputeFunc) (*Node, error) {
	return g.add(&Node{id: id, kind: computeKind, fn: fn, dirty: true})
}

// AddEventNode registers a trigger-gated node. Its compute function runs only
// when the trigger counter advanced since the last successful recompute,
// reading the then-current values of its data dependencies.
func (g *Graph) AddEventNode(id string, fn ComputeFunc, trigger TriggerFunc) (*Node, error) {
	if trigger == nil {
		return nil, fmt.Errorf("event node %q requires a trigger source", id)
	}
	return g.add(&Node{id: id, kind: eventKind, fn: fn, trigger: trigger, dirty: true})
}

func (g *Graph) add(n *Node) (*Node, error) {
	if g.sealed {
		return nil, fmt.Errorf("graph is finalized, cannot add node %q", n.id)
	}
	if n.fn == nil {
		return nil, fmt.Errorf("node %q has no compute function", n.id)
	}
	if _, exists := g.nodes[n.id]; exists {
		return nil, fmt.Errorf("duplicate node id %q", n.id)
	}
	g.nodes[n.id] = n
	g.order = append(g.order, n.id)
	return n, nil
}

// AddEdge declares that the toID node depends on the fromID node. Edge order
// is significant: a node's compute function receives upstream values in the
// order its inbound edges were declared.
func (g *Graph) AddEdge(fromID, toID string) error {
	if g.sealed {
		return fmt.Errorf("graph is finalized, cannot add edge %s -> %s", fromID, toID)
	}
	if fromID == toID {
		return fmt.Errorf("%w: self-referential edge %s -> %s", ErrCyclicDependency, fromID, toID)
	}
	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	to.deps = append(to.deps, from)
	from.dependents = append(from.dependents, to)
	return nil
}

// Node returns a registered node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Finalize validates the declared dependencies and seals the graph. A cycle
// is a construction-time failure: the graph stays unusable when one exists.
func (g *Graph) Finalize(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if err := g.detectCycles(); err != nil {
		return err
	}
	g.sealed = true
	logger.Debug("Graph finalized.", "node_count", len(g.nodes))
	return nil
}

// Value pulls the current value of the named node, lazily recomputing it and
// any stale upstream nodes first. Pulling a Clean node is a cache read.
func (g *Graph) Value(ctx context.Context, id string) (any, error) {
	if !g.sealed {
		return nil, fmt.Errorf("graph is not finalized, refusing to evaluate %q", id)
	}
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return n.resolve(ctx)
}

// detectCycles runs a depth-first search with the classic three node sets:
// permanent (fully visited, known safe), temporary (on the current recursion
// stack), and unvisited.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("%w: involving node %q", ErrCyclicDependency, n.id)
		}
		temporary[n.id] = true
		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if !permanent[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}
