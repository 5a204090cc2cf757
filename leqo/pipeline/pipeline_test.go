package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/kegliz/leqo-compile/leqo/graphbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSnippets() SnippetSource {
	return SnippetSource{Enricher: catalogue.NewStubEnricher()}
}

func TestCompile_FlatChain_IdentityPropagatesAcrossEdges(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g, err := graphbuilder.New().
		Qubit("q0", 1).
		Gate("h0", "h", 1).
		Gate("x0", "x", 1).
		Measurement("m0", 1).
		Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "h0", Port: 0}).
		Edge(graph.EndPoint{Node: "h0", Port: 0}, graph.EndPoint{Node: "x0", Port: 0}).
		Edge(graph.EndPoint{Node: "x0", Port: 0}, graph.EndPoint{Node: "m0", Port: 0}).
		Build()
	require.NoError(err)

	res, err := Compile(context.Background(), g, stubSnippets(), Options{Optimize: true, MaxUnroll: 16})
	require.NoError(err)
	require.NotNil(res)

	assert.Contains(res.Program, "OPENQASM 3.1;")
	assert.Equal(1, strings.Count(res.Program, "qubit[1] leqo_reg;"))
	assert.Contains(res.Program, "h ")
	assert.Contains(res.Program, "x ")
	assert.Contains(res.Program, "measure ")

	startH := strings.Index(res.Program, "/* Start node h0 */")
	startX := strings.Index(res.Program, "/* Start node x0 */")
	startM := strings.Index(res.Program, "/* Start node m0 */")
	require.GreaterOrEqual(startH, 0)
	require.Greater(startX, startH, "nodes must stay in topological order")
	require.Greater(startM, startX)
}

func TestCompile_SizeCastPadsNarrowEdge(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	wide := `// @leqo.input 0
qubit[2] q;
h q[0];
cx q[0], q[1];
// @leqo.output 0
let out = q;
`
	g, err := graphbuilder.New().
		Qubit("q0", 1).
		Custom("wide0", wide, 2).
		Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "wide0", Port: 0}).
		Build()
	require.NoError(err)

	res, err := Compile(context.Background(), g, stubSnippets(), Options{Optimize: true, MaxUnroll: 16})
	require.NoError(err)

	assert.Equal(1, strings.Count(res.Program, "qubit[2] leqo_reg;"))
	assert.Contains(res.Program, "cx ")
}

func TestCompile_IfThenElse_BranchesBothAppear(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	then, err := graphbuilder.New().Gate("th", "h", 1).Build()
	require.NoError(err)
	els, err := graphbuilder.New().Gate("tx", "x", 1).Build()
	require.NoError(err)

	ifNode := &graph.Node{
		ID:   "if0",
		Kind: graph.KindIfThenElse,
		Inputs: []graph.Port{
			{Type: graph.PortClassicalBit, Size: 1},
			{Type: graph.PortQuantum, Size: 1},
		},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Payload: &graph.IfElsePayload{
			CondPort:    0,
			Then:        then,
			Else:        els,
			ThenInputs:  []graph.EndPoint{{Node: "th", Port: 0}},
			ElseInputs:  []graph.EndPoint{{Node: "tx", Port: 0}},
			ThenOutputs: []graph.EndPoint{{Node: "th", Port: 0}},
			ElseOutputs: []graph.EndPoint{{Node: "tx", Port: 0}},
		},
	}

	m0 := &graph.Node{
		ID:   "m0",
		Kind: graph.KindMeasurement,
		Inputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{
			{Type: graph.PortQuantum, Size: 1},
			{Type: graph.PortClassicalBit, Size: 1},
		},
	}

	g, err := graphbuilder.New().
		Qubit("q0", 1).
		Node(m0).
		Qubit("q1", 1).
		Node(ifNode).
		Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "m0", Port: 0}).
		Edge(graph.EndPoint{Node: "q1", Port: 0}, graph.EndPoint{Node: "if0", Port: 1}).
		Edge(graph.EndPoint{Node: "m0", Port: 1}, graph.EndPoint{Node: "if0", Port: 0}).
		Build()
	require.NoError(err)

	res, err := Compile(context.Background(), g, stubSnippets(), Options{Optimize: true, MaxUnroll: 16})
	require.NoError(err)

	assert.Contains(res.Program, "if (")
	assert.Contains(res.Program, "h ")
	assert.Contains(res.Program, "x ")
	assert.Contains(res.Program, "/* Start node if0 */")
}

func TestCompile_MissingSnippet_ReturnsMissingSnippetError(t *testing.T) {
	require := require.New(t)

	g, err := graphbuilder.New().
		Qubit("q0", 1).
		Gate("weird0", "not-a-real-gate", 1).
		Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "weird0", Port: 0}).
		Build()
	require.NoError(err)

	_, err = Compile(context.Background(), g, stubSnippets(), Options{Optimize: true, MaxUnroll: 16})
	require.Error(err)
	assert.True(t, cerr.Is(err, cerr.MissingSnippet))
}

func TestCompile_Deterministic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	build := func() *graph.Graph {
		g, err := graphbuilder.New().
			Qubit("q0", 1).
			Gate("h0", "h", 1).
			Measurement("m0", 1).
			Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "h0", Port: 0}).
			Edge(graph.EndPoint{Node: "h0", Port: 0}, graph.EndPoint{Node: "m0", Port: 0}).
			Build()
		require.NoError(err)
		return g
	}

	res1, err := Compile(context.Background(), build(), stubSnippets(), Options{Optimize: true, MaxUnroll: 16})
	require.NoError(err)
	res2, err := Compile(context.Background(), build(), stubSnippets(), Options{Optimize: true, MaxUnroll: 16})
	require.NoError(err)

	assert.Equal(res1.Program, res2.Program)
}
