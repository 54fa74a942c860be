// Package dag resolves component execution order for the daily simulation
// pipeline. The graph is built once at engine construction, validated, and
// the resolved order replayed for every simulated day.
package dag

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateNode     = errors.New("node already exists")
	ErrMissingDependency = errors.New("dependency not found in graph")
	ErrCycleDetected     = errors.New("cycle detected in dependency graph")
	ErrNodeNotFound      = errors.New("node does not exist")
	ErrNodeInUse         = errors.New("node has dependents")
)

// StepFunc transforms a per-day execution context and returns the updated
// context, so data flow through the pipeline stays auditable.
type StepFunc[C any] func(ctx C) (C, error)

type node[C any] struct {
	name string
	run  StepFunc[C]
	deps []string
}

type Graph[C any] struct {
	nodes map[string]*node[C]
	// insertion order; keeps the topological sort deterministic when
	// multiple nodes are free at once
	order []string
}

func New[C any]() *Graph[C] {
	return &Graph[C]{
		nodes: map[string]*node[C]{},
	}
}

func (g *Graph[C]) AddNode(name string, run StepFunc[C], dependencies ...string) error {
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, name)
	}
	g.nodes[name] = &node[C]{
		name: name,
		run:  run,
		deps: append([]string{}, dependencies...),
	}
	g.order = append(g.order, name)
	return nil
}

// RemoveNode refuses to remove a node that another node still depends on.
func (g *Graph[C]) RemoveNode(name string) error {
	if _, ok := g.nodes[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	for _, other := range g.order {
		for _, dep := range g.nodes[other].deps {
			if dep == name {
				return fmt.Errorf("%w: %q depends on %q", ErrNodeInUse, other, name)
			}
		}
	}
	delete(g.nodes, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// TopologicalSort resolves execution order via Kahn's algorithm. Nodes with
// equal in-degree are dequeued in insertion order.
func (g *Graph[C]) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = 0
	}
	for _, name := range g.order {
		for _, dep := range g.nodes[name].deps {
			if _, ok := g.nodes[dep]; !ok {
				return nil, fmt.Errorf("%w: %q (required by %q)", ErrMissingDependency, dep, name)
			}
			inDegree[name]++
		}
	}

	queue := []string{}
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, name := range g.order {
			for _, dep := range g.nodes[name].deps {
				if dep != current {
					continue
				}
				inDegree[name]--
				if inDegree[name] == 0 {
					queue = append(queue, name)
				}
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, ErrCycleDetected
	}
	return result, nil
}

// Run folds the context through each node in the given order.
func (g *Graph[C]) Run(order []string, ctx C) (C, error) {
	for _, name := range order {
		n, ok := g.nodes[name]
		if !ok {
			return ctx, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
		}
		var err error
		ctx, err = n.run(ctx)
		if err != nil {
			return ctx, fmt.Errorf("step %q failed: %w", name, err)
		}
	}
	return ctx, nil
}

// Validate checks the graph for missing dependencies and cycles.
func (g *Graph[C]) Validate() error {
	_, err := g.TopologicalSort()
	return err
}
