package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/exprent"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/graph"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/method"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/scc"
)

type blockReport struct {
	ID       int      `json:"id"`
	Exprents []string `json:"exprents"`
	Stack    []string `json:"stack"`
}

type callReport struct {
	Block  int    `json:"block"`
	Call   string `json:"call"`
	Target string `json:"target,omitempty"`
}

type methodReport struct {
	Method        string        `json:"method"`
	Error         string        `json:"error,omitempty"`
	Components    [][]int       `json:"components,omitempty"`
	Loops         [][]int       `json:"loops,omitempty"`
	ExitReps      []int         `json:"exit_reps,omitempty"`
	FallbackRoots []int         `json:"fallback_roots,omitempty"`
	Blocks        []blockReport `json:"blocks,omitempty"`
	Calls         []callReport  `json:"calls,omitempty"`
}

func newMethodReport(o method.Outcome) methodReport {
	rep := methodReport{Method: o.Method}
	if o.Err != nil {
		rep.Error = o.Err.Error()
		return rep
	}
	r := o.Result
	blocks := func(ids []graph.StatID) []int {
		out := make([]int, 0, len(ids))
		for _, s := range ids {
			out = append(out, r.Layout.Block(s))
		}
		return out
	}
	components := func(cs []scc.Component) [][]int {
		out := make([][]int, 0, len(cs))
		for _, c := range cs {
			out = append(out, blocks(c))
		}
		return out
	}
	rep.Components = components(r.Components)
	rep.Loops = components(r.Loops)
	rep.ExitReps = blocks(r.ExitReps)
	rep.FallbackRoots = blocks(r.FallbackRoots)
	for el := r.Blocks.Front(); el != nil; el = el.Next() {
		rep.Blocks = append(rep.Blocks, blockReport{
			ID:       el.Key,
			Exprents: exprent.RenderAll(el.Value.Exprents()),
			Stack:    exprent.RenderAll(el.Value.Stack().Items()),
		})
	}
	for _, c := range r.Calls {
		cr := callReport{Block: c.Block, Call: exprent.Render(c.Call)}
		if c.Target != nil {
			cr.Target = c.Target.Owner + "." + c.Target.Name + c.Target.Descriptor
		}
		rep.Calls = append(rep.Calls, cr)
	}
	return rep
}

func writeText(w io.Writer, reports []methodReport) error {
	b := &strings.Builder{}
	for _, rep := range reports {
		fmt.Fprintf(b, "method %s\n", rep.Method)
		if rep.Error != "" {
			fmt.Fprintf(b, "  error: %s\n", rep.Error)
			continue
		}
		fmt.Fprintf(b, "  components: %v\n", rep.Components)
		fmt.Fprintf(b, "  loops: %v\n", rep.Loops)
		fmt.Fprintf(b, "  exit reps: %v\n", rep.ExitReps)
		if len(rep.FallbackRoots) > 0 {
			fmt.Fprintf(b, "  fallback roots: %v\n", rep.FallbackRoots)
		}
		for _, br := range rep.Blocks {
			fmt.Fprintf(b, "  block %d\n", br.ID)
			for _, e := range br.Exprents {
				fmt.Fprintf(b, "    %s\n", e)
			}
			if len(br.Stack) > 0 {
				fmt.Fprintf(b, "    stack: [%s]\n", strings.Join(br.Stack, ", "))
			}
		}
		for _, c := range rep.Calls {
			target := c.Target
			if target == "" {
				target = "unresolved"
			}
			fmt.Fprintf(b, "  call in block %d: %s -> %s\n", c.Block, c.Call, target)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
