package scc

import (
	"golang.org/x/exp/slices"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/graph"
)

// IsExitComponent reports whether no regular forward edge leaves the component.
func IsExitComponent(g *graph.Graph, c Component) bool {
	return len(outside(g, c)) == 0
}

// outside returns the regular forward neighbours of c that are not members
// of c, in ascending order.
func outside(g *graph.Graph, c Component) []graph.StatID {
	set := make(map[graph.StatID]struct{})
	for _, s := range c {
		for _, n := range g.Neighbours(s, graph.EdgeRegular, graph.DirectionForward) {
			set[n] = struct{}{}
		}
	}
	out := make([]graph.StatID, 0, len(set))
	for n := range set {
		if !c.Contains(n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// ExitReps returns the first member of every exit component, preserving
// the order of components.
func ExitReps(g *graph.Graph, components []Component) []graph.StatID {
	var reps []graph.StatID
	for _, c := range components {
		if len(c) == 0 {
			continue
		}
		if IsExitComponent(g, c) {
			reps = append(reps, c[0])
		}
	}
	return reps
}
