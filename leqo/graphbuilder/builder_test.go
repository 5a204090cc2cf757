package graphbuilder

import (
	"testing"

	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_ChainsNodesAndEdges(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g, err := New().
		Qubit("q0", 1).
		Gate("h0", "h", 1).
		Measurement("m0", 1).
		Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "h0", Port: 0}).
		Edge(graph.EndPoint{Node: "h0", Port: 0}, graph.EndPoint{Node: "m0", Port: 0}).
		Build()

	require.NoError(err)
	assert.Len(g.Nodes, 3)
	assert.Len(g.Edges, 2)

	ingested, err := graph.Ingest(g)
	require.NoError(err)
	assert.Equal([]string{"q0", "h0", "m0"}, ingested.Order)
}

func TestBuilder_BailsOnFirstError(t *testing.T) {
	require := require.New(t)

	_, err := New().
		Qubit("q0", 1).
		Qubit("q0", 1). // duplicate id
		Gate("h0", "h", 1).
		Build()

	require.Error(err)
}
