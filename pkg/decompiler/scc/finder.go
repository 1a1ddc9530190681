package scc

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/graph"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/stack"
	"github.com/wavesplatform/godecompiler/pkg/errs"
)

// Component is a strongly connected set of statements, listed in the order
// they were popped from the working stack.
type Component []graph.StatID

func (c Component) Contains(id graph.StatID) bool {
	return slices.Contains(c, id)
}

type Option func(*Finder)

func WithLogger(logger *zap.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// Finder decomposes a statement graph into strongly connected components
// over regular forward edges.
type Finder struct {
	g      *graph.Graph
	logger *zap.Logger

	components []Component
	owner      map[graph.StatID]int
	finalized  map[graph.StatID]struct{}
	fallback   []graph.StatID

	// per pass state
	counter int
	disc    map[graph.StatID]int
	low     map[graph.StatID]int
	onPath  map[graph.StatID]struct{}
	path    *stack.ListStack[graph.StatID]
}

// frame is an explicit DFS activation record.
type frame struct {
	stat  graph.StatID
	succs []graph.StatID
	next  int
}

// Find runs the decomposition. Roots are tried in this order: the first
// statement, every statement without incoming direct edges, then any
// statement still unassigned. The last group indicates an inconsistent
// graph; such roots are logged and reported by FallbackRoots.
//
// Find panics with an errs.GraphInconsistency if its own bookkeeping is
// broken. Callers analysing many graphs should recover per graph.
func Find(g *graph.Graph, opts ...Option) *Finder {
	f := &Finder{
		g:         g,
		logger:    zap.NewNop(),
		owner:     make(map[graph.StatID]int),
		finalized: make(map[graph.StatID]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if g.Len() == 0 {
		return f
	}
	f.pass(g.First())
	for _, s := range g.Stats() {
		if f.isFinalized(s) {
			continue
		}
		if len(g.PredecessorEdges(s, graph.EdgeDirectAll)) == 0 {
			f.pass(s)
		}
	}
	for _, s := range g.Stats() {
		if f.isFinalized(s) {
			continue
		}
		f.logger.Warn("Statement not reached from any root, running fallback pass",
			zap.Int("stat", int(s)), zap.String("label", g.Label(s)))
		f.fallback = append(f.fallback, s)
		f.pass(s)
	}
	return f
}

func (f *Finder) isFinalized(s graph.StatID) bool {
	_, ok := f.finalized[s]
	return ok
}

func (f *Finder) reset() {
	f.counter = 0
	f.disc = make(map[graph.StatID]int)
	f.low = make(map[graph.StatID]int)
	f.onPath = make(map[graph.StatID]struct{})
	f.path = stack.NewRetreating[graph.StatID]()
}

func (f *Finder) enter(s graph.StatID) *frame {
	f.path.Push(s)
	f.onPath[s] = struct{}{}
	f.disc[s] = f.counter
	f.low[s] = f.counter
	f.counter++
	return &frame{stat: s, succs: f.g.Neighbours(s, graph.EdgeRegular, graph.DirectionForward)}
}

func (f *Finder) lowLink(s graph.StatID) int {
	v, ok := f.low[s]
	if !ok {
		panic(errs.NewGraphInconsistency(fmt.Sprintf("missing low-link for statement %d", s)))
	}
	return v
}

func (f *Finder) pass(root graph.StatID) {
	f.reset()
	frames := []*frame{f.enter(root)}
	for len(frames) > 0 {
		top := frames[len(frames)-1]
		if top.next < len(top.succs) {
			n := top.succs[top.next]
			top.next++
			if f.isFinalized(n) {
				continue
			}
			if _, ok := f.onPath[n]; ok {
				f.low[top.stat] = min(f.lowLink(top.stat), f.disc[n])
				continue
			}
			frames = append(frames, f.enter(n))
			continue
		}
		frames = frames[:len(frames)-1]
		if f.lowLink(top.stat) == f.disc[top.stat] {
			f.complete(top.stat)
		}
		if len(frames) > 0 {
			parent := frames[len(frames)-1].stat
			f.low[parent] = min(f.lowLink(parent), f.lowLink(top.stat))
		}
	}
}

// complete pops the working stack down to and including root.
func (f *Finder) complete(root graph.StatID) {
	idx := len(f.components)
	var c Component
	for {
		s, err := f.path.Pop()
		if err != nil {
			panic(errs.NewGraphInconsistency(fmt.Sprintf("component root %d is not on the working stack", root)))
		}
		delete(f.onPath, s)
		f.finalized[s] = struct{}{}
		f.owner[s] = idx
		c = append(c, s)
		if s == root {
			break
		}
	}
	f.components = append(f.components, c)
}

// Components returns the components in completion order.
func (f *Finder) Components() []Component {
	return f.components
}

// ComponentOf returns the index of the component containing s.
func (f *Finder) ComponentOf(s graph.StatID) (int, bool) {
	i, ok := f.owner[s]
	return i, ok
}

// IsLoop reports whether the component represents a loop: it has more than
// one member or its single member has a regular edge to itself.
func (f *Finder) IsLoop(c Component) bool {
	if len(c) > 1 {
		return true
	}
	return len(c) == 1 && f.g.HasEdge(c[0], c[0], graph.EdgeRegular)
}

// FallbackRoots lists the statements that had to be used as roots because
// no regular root reached them.
func (f *Finder) FallbackRoots() []graph.StatID {
	return f.fallback
}
