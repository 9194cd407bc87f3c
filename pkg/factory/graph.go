package factory

import (
	"context"
	"fmt"
	"strings"
)

// Node is the type-erased view of a factory used to wire dependent factories
// and to inspect the build graph.
type Node interface {
	ID() string
	EntityName() string
	Dependents() []Node
	BuildAny(ctx context.Context) (any, error)
	PersistAny(ctx context.Context) (any, error)
}

type buildChainKey struct{}

type chainLink struct {
	id   string
	name string
}

// enterBuild records n on the build chain carried by ctx. Re-entering a
// factory that is already on the chain fails with ErrDependencyCycle instead
// of recursing without bound.
func enterBuild(ctx context.Context, n Node) (context.Context, error) {
	chain, _ := ctx.Value(buildChainKey{}).([]chainLink)
	for i, link := range chain {
		if link.id == n.ID() {
			names := make([]string, 0, len(chain)-i+1)
			for _, l := range chain[i:] {
				names = append(names, l.name)
			}
			names = append(names, n.EntityName())
			return ctx, &Error{
				Kind:   ErrDependencyCycle,
				Entity: n.EntityName(),
				Err:    fmt.Errorf("%s", strings.Join(names, " -> ")),
			}
		}
	}

	next := make([]chainLink, len(chain), len(chain)+1)
	copy(next, chain)
	next = append(next, chainLink{id: n.ID(), name: n.EntityName()})
	return context.WithValue(ctx, buildChainKey{}, next), nil
}

// Graph returns the declared dependency edges reachable from nodes, keyed by
// factory ID.
func Graph(nodes ...Node) map[string][]string {
	edges := make(map[string][]string)
	var walk func(n Node)
	walk = func(n Node) {
		if _, seen := edges[n.ID()]; seen {
			return
		}
		deps := n.Dependents()
		ids := make([]string, 0, len(deps))
		for _, d := range deps {
			ids = append(ids, d.ID())
		}
		edges[n.ID()] = ids
		for _, d := range deps {
			walk(d)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return edges
}

const (
	white = iota
	gray
	black
)

// CheckAcyclic walks the declared dependents reachable from nodes and returns
// ErrDependencyCycle naming the first cycle found.
func CheckAcyclic(nodes ...Node) error {
	state := make(map[string]int)
	var path []Node

	var visit func(n Node) error
	visit = func(n Node) error {
		switch state[n.ID()] {
		case gray:
			return cycleError(path, n)
		case black:
			return nil
		}
		state[n.ID()] = gray
		path = append(path, n)
		for _, d := range n.Dependents() {
			if err := visit(d); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[n.ID()] = black
		return nil
	}

	for _, n := range nodes {
		if state[n.ID()] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func cycleError(path []Node, back Node) error {
	start := 0
	for i, n := range path {
		if n.ID() == back.ID() {
			start = i
			break
		}
	}
	names := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		names = append(names, n.EntityName())
	}
	names = append(names, back.EntityName())
	return &Error{
		Kind:   ErrDependencyCycle,
		Entity: back.EntityName(),
		Err:    fmt.Errorf("%s", strings.Join(names, " -> ")),
	}
}
