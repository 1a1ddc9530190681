package method

import (
	"context"
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/classpath"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/exprent"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/graph"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/scc"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/simulation"
	"github.com/wavesplatform/godecompiler/pkg/errs"
	"github.com/wavesplatform/godecompiler/pkg/logging"
)

type Option func(*options)

type options struct {
	logger   *zap.Logger
	resolver *classpath.Resolver
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResolver enables lookup of the methods invoked by the analysed code.
func WithResolver(r *classpath.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EdgeKey is a regular edge between two blocks. Seq tells apart the edges
// of a block that lists the same successor more than once; the first one
// has Seq 0.
type EdgeKey struct {
	From int
	To   int
	Seq  int
}

func (k EdgeKey) String() string {
	if k.Seq == 0 {
		return fmt.Sprintf("%d->%d", k.From, k.To)
	}
	return fmt.Sprintf("%d->%d#%d", k.From, k.To, k.Seq)
}

// CallSite is an invocation found in the completed statements of a block.
// Target is nil when the method could not be resolved or no resolver was given.
type CallSite struct {
	Block  int
	Call   *exprent.InvocationNode
	Target *classpath.MethodRef
}

type Result struct {
	Method        string
	Graph         *graph.Graph
	Layout        *Layout
	Components    []scc.Component
	Loops         []scc.Component
	ExitReps      []graph.StatID
	FallbackRoots []graph.StatID
	// Blocks holds the simulation result of every block in bytecode order.
	Blocks *orderedmap.OrderedMap[int, *simulation.BlockResult]
	// EdgeStates holds the exit state handed to every regular edge, in the
	// order the edges were produced, one entry per listed successor.
	// Joins are not merged here.
	EdgeStates *orderedmap.OrderedMap[EdgeKey, *simulation.BlockResult]
	Calls      []CallSite
}

// Analyze builds the method graph, finds its components and simulates every
// block. Any contract violation fails the whole method with *errs.MethodError.
func Analyze(ctx context.Context, m Method, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	start := time.Now()
	res, err := analyze(m, o)
	metricAnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metricMethodsAnalysed.WithLabelValues(statusFailed).Inc()
		return nil, err
	}
	metricMethodsAnalysed.WithLabelValues(statusOK).Inc()
	return res, nil
}

func analyze(m Method, o *options) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errs.NewMethodError(m.Name, recovered(r))
		}
	}()
	g, l, err := BuildGraph(m)
	if err != nil {
		return nil, errs.NewMethodError(m.Name, errs.NewGraphInconsistency(err.Error()))
	}
	f := scc.Find(g, scc.WithLogger(o.logger.Named(logging.SCCNamespace).With(zap.String("method", m.Name))))
	res = &Result{
		Method:        m.Name,
		Graph:         g,
		Layout:        l,
		Components:    f.Components(),
		ExitReps:      scc.ExitReps(g, f.Components()),
		FallbackRoots: f.FallbackRoots(),
		Blocks:        orderedmap.NewOrderedMap[int, *simulation.BlockResult](),
		EdgeStates:    orderedmap.NewOrderedMap[EdgeKey, *simulation.BlockResult](),
	}
	if n := len(res.FallbackRoots); n > 0 {
		metricFallbackRoots.Add(float64(n))
	}
	for _, c := range res.Components {
		if f.IsLoop(c) {
			res.Loops = append(res.Loops, c)
		}
	}
	for _, b := range m.Blocks {
		br, err := simulation.Simulate(b.Instructions, res.entryStack(g, l, b.ID))
		if err != nil {
			return nil, errs.NewMethodError(m.Name, errors.Wrapf(err, "block %d", b.ID))
		}
		res.Blocks.Set(b.ID, br)
		seq := make(map[int]int, len(b.Successors))
		for _, succ := range b.Successors {
			res.EdgeStates.Set(EdgeKey{From: b.ID, To: succ, Seq: seq[succ]}, br.Duplicate())
			seq[succ]++
		}
		res.collectCalls(b.ID, br.Exprents(), o.resolver)
	}
	o.logger.Debug("Method analysed", zap.String("method", m.Name),
		zap.Int("blocks", len(m.Blocks)), zap.Int("components", len(res.Components)),
		zap.Int("loops", len(res.Loops)))
	return res, nil
}

// entryStack returns a private copy of the state of the first incoming
// regular edge whose source block is already simulated, or nil.
func (r *Result) entryStack(g *graph.Graph, l *Layout, block int) *exprent.Stack {
	s, _ := l.Stat(block)
	seq := make(map[int]int)
	for _, e := range g.PredecessorEdges(s, graph.EdgeRegular) {
		from := l.Block(e.Source)
		key := EdgeKey{From: from, To: block, Seq: seq[from]}
		seq[from]++
		if st, ok := r.EdgeStates.Get(key); ok {
			return st.Duplicate().Stack()
		}
	}
	return nil
}

func (r *Result) collectCalls(block int, nodes exprent.Nodes, resolver *classpath.Resolver) {
	var walk func(n exprent.Node)
	visit := func(ns ...exprent.Node) {
		for _, n := range ns {
			if n != nil {
				walk(n)
			}
		}
	}
	walk = func(n exprent.Node) {
		switch t := n.(type) {
		case *exprent.InvocationNode:
			visit(t.Instance)
			visit(t.Arguments...)
			site := CallSite{Block: block, Call: t}
			if resolver != nil {
				if ref, ok := resolver.FindMethod(t.Owner, t.Name, t.Descriptor); ok {
					site.Target = ref
				}
			}
			r.Calls = append(r.Calls, site)
		case *exprent.BinaryNode:
			visit(t.Left, t.Right)
		case *exprent.UnaryNode:
			visit(t.Operand)
		case *exprent.AssignmentNode:
			visit(t.Target, t.Value)
		case *exprent.IfNode:
			visit(t.Condition)
		case *exprent.ExitNode:
			visit(t.Value)
		case *exprent.FieldNode:
			visit(t.Instance)
		case *exprent.ArrayNode:
			visit(t.Array, t.Index)
		}
	}
	visit(nodes...)
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		if errs.IsContractViolation(err) {
			return err
		}
		return errors.Wrap(err, "panic")
	}
	return errors.Errorf("panic: %v", r)
}
