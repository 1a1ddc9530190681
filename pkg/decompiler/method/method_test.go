package method

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/classpath"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/exprent"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/graph"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/scc"
	sim "github.com/wavesplatform/godecompiler/pkg/decompiler/simulation"
	"github.com/wavesplatform/godecompiler/pkg/errs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func c(v int64) sim.Instruction { return sim.Instruction{Op: sim.OpConst, Value: v} }

func ld(slot int64) sim.Instruction { return sim.Instruction{Op: sim.OpLoad, Value: slot} }

func st(slot int64) sim.Instruction { return sim.Instruction{Op: sim.OpStore, Value: slot} }

func in(op sim.Opcode, v int64) sim.Instruction { return sim.Instruction{Op: op, Value: v} }

// branchy computes var1 from a value left on the stack by the entry block:
//
//	0: push 7; if var0 < 0 goto 2     -> 1, 2
//	1: var1 = top + 1                 -> 3
//	2: var1 = -top                    -> 3
//	3: return var1
//	4: handler of 1, returns
func branchy() Method {
	return Method{
		Name:  "branchy",
		Entry: 0,
		Blocks: []sim.Block{
			{ID: 0, Instructions: []sim.Instruction{c(7), ld(0), c(0), in(sim.OpIfCmpLT, 2)}, Successors: []int{1, 2}},
			{ID: 1, Instructions: []sim.Instruction{c(1), in(sim.OpAdd, 0), st(1), in(sim.OpGoto, 3)}, Successors: []int{3}, Handlers: []int{4}},
			{ID: 2, Instructions: []sim.Instruction{in(sim.OpNeg, 0), st(1)}, Successors: []int{3}},
			{ID: 3, Instructions: []sim.Instruction{ld(1), sim.Instruction{Op: sim.OpReturn}}},
			{ID: 4, Instructions: []sim.Instruction{{Op: sim.OpReturn, Void: true}}},
		},
	}
}

func exprents(t *testing.T, r *Result, block int) []string {
	br, ok := r.Blocks.Get(block)
	require.True(t, ok, "block %d not simulated", block)
	return exprent.RenderAll(br.Exprents())
}

func TestAnalyzeBranches(t *testing.T) {
	r, err := Analyze(context.Background(), branchy())
	require.NoError(t, err)

	assert.Equal(t, []string{"if (var0 < 0) goto 2"}, exprents(t, r, 0))
	assert.Equal(t, []string{"var1 = (7 + 1)"}, exprents(t, r, 1))
	assert.Equal(t, []string{"var1 = -7"}, exprents(t, r, 2))
	assert.Equal(t, []string{"return var1"}, exprents(t, r, 3))
	assert.Equal(t, []string{"return"}, exprents(t, r, 4))

	var keys []string
	for el := r.EdgeStates.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key.String())
	}
	assert.Equal(t, []string{"0->1", "0->2", "1->3", "2->3"}, keys)

	s01, ok := r.EdgeStates.Get(EdgeKey{From: 0, To: 1})
	require.True(t, ok)
	s02, ok := r.EdgeStates.Get(EdgeKey{From: 0, To: 2})
	require.True(t, ok)
	a, err := s01.Stack().Peek(0)
	require.NoError(t, err)
	b, err := s02.Stack().Peek(0)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, "7", exprent.Render(a))
	// The edge states are kept intact for the join pass.
	assert.Equal(t, 1, s01.Stack().Size())

	var blocks []int
	for el := r.Blocks.Front(); el != nil; el = el.Next() {
		blocks = append(blocks, el.Key)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, blocks)

	// Block 4 is reached only through an exception edge.
	assert.Equal(t, []graph.StatID{4}, r.FallbackRoots)
	assert.Empty(t, r.Loops)
	assert.Len(t, r.Components, 5)
	reps := make([]int, 0, len(r.ExitReps))
	for _, s := range r.ExitReps {
		reps = append(reps, r.Layout.Block(s))
	}
	assert.Equal(t, []int{3, 4}, reps)
}

func TestAnalyzeRepeatedSuccessor(t *testing.T) {
	m := Method{
		Name:  "repeated",
		Entry: 0,
		Blocks: []sim.Block{
			{ID: 0, Instructions: []sim.Instruction{c(5), ld(0), in(sim.OpIfEQ, 1)}, Successors: []int{1, 1}},
			{ID: 1, Instructions: []sim.Instruction{{Op: sim.OpReturn}}},
		},
	}
	r, err := Analyze(context.Background(), m)
	require.NoError(t, err)

	require.Equal(t, 2, r.EdgeStates.Len())
	first, ok := r.EdgeStates.Get(EdgeKey{From: 0, To: 1})
	require.True(t, ok)
	second, ok := r.EdgeStates.Get(EdgeKey{From: 0, To: 1, Seq: 1})
	require.True(t, ok)
	assert.Equal(t, "0->1#1", EdgeKey{From: 0, To: 1, Seq: 1}.String())
	a, err := first.Stack().Peek(0)
	require.NoError(t, err)
	b, err := second.Stack().Peek(0)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, []string{"return 5"}, exprents(t, r, 1))
}

func TestAnalyzeLoop(t *testing.T) {
	m := Method{
		Name:  "loop",
		Entry: 10,
		Blocks: []sim.Block{
			{ID: 10, Instructions: []sim.Instruction{c(0), st(1)}, Successors: []int{11}},
			{ID: 11, Instructions: []sim.Instruction{ld(1), c(10), in(sim.OpIfCmpGE, 13)}, Successors: []int{12, 13}},
			{ID: 12, Instructions: []sim.Instruction{ld(1), c(1), in(sim.OpAdd, 0), st(1), in(sim.OpGoto, 11)}, Successors: []int{11}},
			{ID: 13, Instructions: []sim.Instruction{{Op: sim.OpReturn, Void: true}}},
		},
	}
	r, err := Analyze(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, r.Loops, 1)
	var loop []int
	for _, s := range r.Loops[0] {
		loop = append(loop, r.Layout.Block(s))
	}
	assert.ElementsMatch(t, []int{11, 12}, loop)
	assert.Equal(t, []string{"var1 = (var1 + 1)"}, exprents(t, r, 12))
	assert.True(t, scc.IsExitComponent(r.Graph, r.Components[0]))
	assert.Empty(t, r.FallbackRoots)
}

func TestAnalyzeFailsWholeMethod(t *testing.T) {
	m := branchy()
	m.Blocks[2].Instructions = []sim.Instruction{in(sim.OpNeg, 0), in(sim.OpNeg, 0), in(sim.OpAdd, 0)}
	r, err := Analyze(context.Background(), m)
	require.Error(t, err)
	assert.Nil(t, r)
	var me *errs.MethodError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "branchy", me.Method)
	assert.True(t, errors.Is(err, errs.ErrEmptyStack))
	assert.Contains(t, err.Error(), "block 2")
}

func TestAnalyzeBadGraph(t *testing.T) {
	for _, m := range []Method{
		{Name: "dup", Blocks: []sim.Block{{ID: 1}, {ID: 1}}},
		{Name: "target", Blocks: []sim.Block{{ID: 1, Successors: []int{2}}}},
		{Name: "handler", Blocks: []sim.Block{{ID: 1, Handlers: []int{2}}}},
		{Name: "entry", Entry: 5, Blocks: []sim.Block{{ID: 1}}},
	} {
		t.Run(m.Name, func(t *testing.T) {
			_, err := Analyze(context.Background(), m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrGraphInconsistency))
		})
	}
}

func TestAnalyzeEmptyMethod(t *testing.T) {
	r, err := Analyze(context.Background(), Method{Name: "empty"})
	require.NoError(t, err)
	assert.Empty(t, r.Components)
	assert.Equal(t, 0, r.Blocks.Len())
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, branchy())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeResolvesCalls(t *testing.T) {
	resolver := classpath.NewResolver(classpath.NewMapProvider(
		classpath.Class{Name: "app/Base", Methods: []classpath.MethodInfo{{Name: "size", Descriptor: "()I", Public: true}}},
		classpath.Class{Name: "app/Child", Super: "app/Base"},
	))
	m := Method{
		Name: "calls",
		Blocks: []sim.Block{{ID: 0, Instructions: []sim.Instruction{
			ld(0),
			{Op: sim.OpInvoke, Owner: "app/Child", Name: "size", Descriptor: "()I"},
			{Op: sim.OpInvoke, Owner: "app/Log", Name: "print", Descriptor: "(I)V", Argc: 1, Static: true, Void: true},
			{Op: sim.OpReturn, Void: true},
		}}},
	}
	r, err := Analyze(context.Background(), m, WithResolver(resolver))
	require.NoError(t, err)
	require.Len(t, r.Calls, 2)
	assert.Equal(t, "size", r.Calls[0].Call.Name)
	require.NotNil(t, r.Calls[0].Target)
	assert.Equal(t, "app/Base", r.Calls[0].Target.Owner)
	assert.Equal(t, "print", r.Calls[1].Call.Name)
	assert.Nil(t, r.Calls[1].Target)
}

func TestAnalyzeAllIsolatesFailures(t *testing.T) {
	bad := branchy()
	bad.Name = "bad"
	bad.Blocks[3].Instructions = []sim.Instruction{{Op: sim.OpThrow}}
	methods := []Method{branchy(), bad}
	for i := 0; i < 20; i++ {
		m := branchy()
		m.Name = "m" + strings.Repeat("x", i)
		methods = append(methods, m)
	}

	failedBefore := testutil.ToFloat64(metricMethodsAnalysed.WithLabelValues(statusFailed))
	outcomes, stats := AnalyzeAll(context.Background(), methods, 4)
	require.Len(t, outcomes, len(methods))
	assert.Equal(t, BatchStats{Succeeded: int64(len(methods) - 1), Failed: 1}, stats)
	for i, o := range outcomes {
		assert.Equal(t, methods[i].Name, o.Method)
		if o.Method == "bad" {
			assert.Error(t, o.Err)
			assert.Nil(t, o.Result)
			continue
		}
		require.NoError(t, o.Err)
		assert.Equal(t, o.Method, o.Result.Method)
	}
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(metricMethodsAnalysed.WithLabelValues(statusFailed)))
}

func TestAnalyzeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcomes, stats := AnalyzeAll(ctx, []Method{branchy(), branchy()}, 0)
	assert.Equal(t, int64(2), stats.Skipped)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestFallbackMetric(t *testing.T) {
	before := testutil.ToFloat64(metricFallbackRoots)
	_, err := Analyze(context.Background(), branchy())
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metricFallbackRoots))
}

func TestLoad(t *testing.T) {
	doc := `{"methods":[{"name":"f","entry":0,"blocks":[
		{"id":0,"instructions":[{"op":"const","value":1},{"op":"const","value":2},{"op":"add"},{"op":"const","value":3},{"op":"statementend"}],"successors":[1]},
		{"id":1,"instructions":[{"op":"return","void":true}]}]}]}`
	methods, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "f", methods[0].Name)
	assert.Equal(t, sim.OpStatementEnd, methods[0].Blocks[0].Instructions[4].Op)

	r, err := Analyze(context.Background(), methods[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"(1 + 2)"}, exprents(t, r, 0))
	s, ok := r.EdgeStates.Get(EdgeKey{From: 0, To: 1})
	require.True(t, ok)
	assert.Equal(t, []string{"3"}, exprent.RenderAll(s.Stack().Items()))

	_, err = Load(strings.NewReader(`{"methods":[{"entry":0}]}`))
	assert.Error(t, err)
	_, err = Load(strings.NewReader(`{"methods":[],"extra":1}`))
	assert.Error(t, err)
	_, err = Load(strings.NewReader(`{"methods":[{"name":"g","blocks":[{"id":0,"instructions":[{"op":"jsr"}]}]}]}`))
	assert.True(t, errors.Is(err, sim.ErrUnknownOpcode))
}
