package method

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/graph"
	"github.com/wavesplatform/godecompiler/pkg/decompiler/simulation"
)

// Method is a method body split into basic blocks. Blocks are listed in
// bytecode order.
type Method struct {
	Name   string             `json:"name"`
	Entry  int                `json:"entry"`
	Blocks []simulation.Block `json:"blocks"`
}

// Layout maps block ids to statements of the method graph and back.
type Layout struct {
	stats  map[int]graph.StatID
	blocks []int
}

func (l *Layout) Stat(block int) (graph.StatID, bool) {
	s, ok := l.stats[block]
	return s, ok
}

func (l *Layout) Block(s graph.StatID) int {
	return l.blocks[s]
}

// BuildGraph creates one statement per block, a regular edge per successor
// and an exception edge per handler. The entry block becomes the first statement.
func BuildGraph(m Method) (*graph.Graph, *Layout, error) {
	g := graph.NewGraph()
	l := &Layout{stats: make(map[int]graph.StatID, len(m.Blocks))}
	for _, b := range m.Blocks {
		if _, ok := l.stats[b.ID]; ok {
			return nil, nil, errors.Errorf("duplicate block id %d", b.ID)
		}
		l.stats[b.ID] = g.AddStatement(strconv.Itoa(b.ID))
		l.blocks = append(l.blocks, b.ID)
	}
	link := func(t graph.EdgeType, from int, targets []int) error {
		for _, to := range targets {
			dst, ok := l.stats[to]
			if !ok {
				return errors.Errorf("block %d refers to unknown block %d", from, to)
			}
			if err := g.AddEdge(t, l.stats[from], dst); err != nil {
				return err
			}
		}
		return nil
	}
	for _, b := range m.Blocks {
		if err := link(graph.EdgeRegular, b.ID, b.Successors); err != nil {
			return nil, nil, err
		}
		if err := link(graph.EdgeException, b.ID, b.Handlers); err != nil {
			return nil, nil, err
		}
	}
	if len(m.Blocks) == 0 {
		return g, l, nil
	}
	entry, ok := l.stats[m.Entry]
	if !ok {
		return nil, nil, errors.Errorf("entry block %d not found", m.Entry)
	}
	if err := g.SetFirst(entry); err != nil {
		return nil, nil, err
	}
	return g, l, nil
}

type document struct {
	Methods []Method `json:"methods"`
}

// Load reads a JSON document of the form {"methods": [...]}.
func Load(r io.Reader) ([]Method, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode methods")
	}
	for i, m := range doc.Methods {
		if m.Name == "" {
			return nil, errors.Errorf("method #%d has no name", i)
		}
	}
	return doc.Methods, nil
}
