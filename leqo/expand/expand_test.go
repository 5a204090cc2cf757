package expand

import (
	"strings"
	"testing"

	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRepeatGraph(iterations int) *graph.Graph {
	inner := &graph.Graph{}
	_ = inner.AddNode(&graph.Node{
		ID: "g", Kind: graph.KindGate,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Payload: &graph.GatePayload{Gate: "x"},
	})

	g := &graph.Graph{}
	_ = g.AddNode(&graph.Node{ID: "q0", Kind: graph.KindQubit, Outputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}}})
	_ = g.AddNode(&graph.Node{
		ID: "rep", Kind: graph.KindRepeat,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Payload: &graph.RepeatPayload{
			Iterations:   iterations,
			LoopCarried:  1,
			Inner:        inner,
			InnerInputs:  []graph.EndPoint{{Node: "g", Port: 0}},
			InnerOutputs: []graph.EndPoint{{Node: "g", Port: 0}},
		},
	})
	_ = g.AddNode(&graph.Node{ID: "m0", Kind: graph.KindMeasurement,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{{Type: graph.PortClassicalBit, Size: 1}}})

	g.AddEdge(graph.Edge{Source: graph.EndPoint{"q0", 0}, Target: graph.EndPoint{"rep", 0}})
	g.AddEdge(graph.Edge{Source: graph.EndPoint{"rep", 0}, Target: graph.EndPoint{"m0", 0}})
	g.AddEdge(graph.Edge{Source: graph.EndPoint{"rep", 0}, Target: graph.EndPoint{"rep", 0}}) // declared loop carry

	return g
}

func TestExpand_UnrollsRepeatIntoKCopies(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	out, err := Expand(buildRepeatGraph(3), Options{MaxUnroll: 16})
	require.NoError(err)

	var gateCopies, passthroughs int
	for _, n := range out.Nodes {
		assert.NotEqual(graph.KindRepeat, n.Kind, "no repeat node should survive expansion")
		if n.Kind == graph.KindGate {
			gateCopies++
		}
		if n.Kind == graph.KindPassthrough {
			passthroughs++
		}
	}
	assert.Equal(3, gateCopies, "one inner gate copy per iteration")
	assert.Equal(6, passthroughs, "one entry and one exit node per iteration")

	ing, err := graph.Ingest(out)
	require.NoError(err)
	assert.Len(ing.Order, len(out.Nodes))
}

func TestExpand_ZeroIterations_PassesThrough(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	out, err := Expand(buildRepeatGraph(0), Options{MaxUnroll: 16})
	require.NoError(err)

	for _, n := range out.Nodes {
		assert.NotEqual(graph.KindGate, n.Kind, "inner body must not run with zero iterations")
	}
	_, err = graph.Ingest(out)
	require.NoError(err)
}

func TestExpand_UnrollBoundExceeded(t *testing.T) {
	require := require.New(t)
	_, err := Expand(buildRepeatGraph(100), Options{MaxUnroll: 10})
	require.Error(err)
	assert.True(t, cerr.Is(err, cerr.UnrollBoundExceeded))
}

func TestExpand_IfThenElse_NamespacesBranches(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	then := &graph.Graph{}
	_ = then.AddNode(&graph.Node{ID: "h", Kind: graph.KindGate,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}}})
	els := &graph.Graph{}
	_ = els.AddNode(&graph.Node{ID: "h", Kind: graph.KindGate,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}}})

	g := &graph.Graph{}
	_ = g.AddNode(&graph.Node{
		ID: "cond", Kind: graph.KindIfThenElse,
		Inputs: []graph.Port{{Type: graph.PortClassicalBit, Size: 1}, {Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Payload: &graph.IfElsePayload{
			CondPort:    0,
			Then:        then,
			Else:        els,
			ThenInputs:  []graph.EndPoint{{Node: "h", Port: 0}},
			ElseInputs:  []graph.EndPoint{{Node: "h", Port: 0}},
			ThenOutputs: []graph.EndPoint{{Node: "h", Port: 0}},
			ElseOutputs: []graph.EndPoint{{Node: "h", Port: 0}},
		},
	})

	out, err := Expand(g, Options{MaxUnroll: 16})
	require.NoError(err)
	require.Len(out.Nodes, 1)

	p := out.Nodes[0].Payload.(*graph.IfElsePayload)
	require.Len(p.Then.Nodes, 1)
	require.Len(p.Else.Nodes, 1)
	assert.True(strings.Contains(p.Then.Nodes[0].ID, "::then::"))
	assert.True(strings.Contains(p.Else.Nodes[0].ID, "::else::"))
	assert.NotEqual(p.Then.Nodes[0].ID, p.Else.Nodes[0].ID)
}
