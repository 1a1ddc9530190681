package graph

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// StatID addresses a statement inside its Graph.
type StatID int

const InvalidStatID StatID = -1

// EdgeType is a bit mask of edge kinds.
type EdgeType uint8

const (
	EdgeRegular EdgeType = 1 << iota
	EdgeException
	EdgeBreak
	EdgeContinue
	EdgeFinallyExit

	EdgeAll       = EdgeRegular | EdgeException | EdgeBreak | EdgeContinue | EdgeFinallyExit
	EdgeDirectAll = EdgeRegular | EdgeException
)

var edgeTypeNames = []struct {
	t    EdgeType
	name string
}{
	{EdgeRegular, "regular"},
	{EdgeException, "exception"},
	{EdgeBreak, "break"},
	{EdgeContinue, "continue"},
	{EdgeFinallyExit, "finally_exit"},
}

func (t EdgeType) String() string {
	var parts []string
	for _, n := range edgeTypeNames {
		if t&n.t != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

type Direction byte

const (
	DirectionForward Direction = iota
	DirectionBackward
)

type Edge struct {
	Type        EdgeType
	Source      StatID
	Destination StatID
}

func (e Edge) String() string {
	return fmt.Sprintf("%d -%s-> %d", e.Source, e.Type, e.Destination)
}

type statement struct {
	label string
	succs []int
	preds []int
}

// Graph is an arena of statements. Edges are stored once and referenced by
// index from both endpoints, so the graph holds no pointer cycles.
// A Graph is immutable for readers once built; it is not safe to add
// statements or edges concurrently with queries.
type Graph struct {
	stats []statement
	edges []Edge
	first StatID
}

func NewGraph() *Graph {
	return &Graph{first: InvalidStatID}
}

// AddStatement appends a statement and returns its id.
// The first added statement becomes the first statement unless SetFirst is called.
func (g *Graph) AddStatement(label string) StatID {
	id := StatID(len(g.stats))
	g.stats = append(g.stats, statement{label: label})
	if g.first == InvalidStatID {
		g.first = id
	}
	return id
}

func (g *Graph) valid(id StatID) bool {
	return id >= 0 && int(id) < len(g.stats)
}

// AddEdge links from and to with an edge of exactly one kind.
func (g *Graph) AddEdge(t EdgeType, from, to StatID) error {
	if !g.valid(from) || !g.valid(to) {
		return errors.Errorf("edge %d -> %d references unknown statement", from, to)
	}
	if t == 0 || t&(t-1) != 0 || t&^EdgeAll != 0 {
		return errors.Errorf("edge %d -> %d must have exactly one kind, got %s", from, to, t)
	}
	idx := len(g.edges)
	g.edges = append(g.edges, Edge{Type: t, Source: from, Destination: to})
	g.stats[from].succs = append(g.stats[from].succs, idx)
	g.stats[to].preds = append(g.stats[to].preds, idx)
	return nil
}

func (g *Graph) SetFirst(id StatID) error {
	if !g.valid(id) {
		return errors.Errorf("unknown statement %d", id)
	}
	g.first = id
	return nil
}

// First returns the entry statement or InvalidStatID for an empty graph.
func (g *Graph) First() StatID {
	return g.first
}

// Stats returns all statement ids in insertion order.
func (g *Graph) Stats() []StatID {
	out := make([]StatID, len(g.stats))
	for i := range g.stats {
		out[i] = StatID(i)
	}
	return out
}

func (g *Graph) Len() int {
	return len(g.stats)
}

func (g *Graph) Label(id StatID) string {
	if !g.valid(id) {
		return ""
	}
	return g.stats[id].label
}

// Neighbours returns the statements linked to id by edges matching mask,
// successors for DirectionForward and predecessors for DirectionBackward.
// Order follows edge insertion; a statement linked twice is listed twice.
func (g *Graph) Neighbours(id StatID, mask EdgeType, dir Direction) []StatID {
	if !g.valid(id) {
		return nil
	}
	var out []StatID
	if dir == DirectionBackward {
		for _, e := range g.stats[id].preds {
			if g.edges[e].Type&mask != 0 {
				out = append(out, g.edges[e].Source)
			}
		}
		return out
	}
	for _, e := range g.stats[id].succs {
		if g.edges[e].Type&mask != 0 {
			out = append(out, g.edges[e].Destination)
		}
	}
	return out
}

func (g *Graph) SuccessorEdges(id StatID, mask EdgeType) []Edge {
	if !g.valid(id) {
		return nil
	}
	return g.collect(g.stats[id].succs, mask)
}

func (g *Graph) PredecessorEdges(id StatID, mask EdgeType) []Edge {
	if !g.valid(id) {
		return nil
	}
	return g.collect(g.stats[id].preds, mask)
}

func (g *Graph) collect(idx []int, mask EdgeType) []Edge {
	var out []Edge
	for _, e := range idx {
		if g.edges[e].Type&mask != 0 {
			out = append(out, g.edges[e])
		}
	}
	return out
}

// HasEdge reports whether an edge matching mask leads from one statement to another.
func (g *Graph) HasEdge(from, to StatID, mask EdgeType) bool {
	for _, n := range g.Neighbours(from, mask, DirectionForward) {
		if n == to {
			return true
		}
	}
	return false
}
