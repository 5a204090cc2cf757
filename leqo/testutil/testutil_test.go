package testutil

import (
	"context"
	"testing"

	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBellPairGraph_HasExpectedNodesAndEdge(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := NewBellPairGraph(t)

	require.Len(g.Nodes, 2)
	require.Len(g.Edges, 1)
	assert.NotNil(g.NodeByID("q01"))
	assert.NotNil(g.NodeByID("bell0"))
}

func TestNewIfThenElseGraph_HasExpectedNodes(t *testing.T) {
	require := require.New(t)

	g := NewIfThenElseGraph(t)

	require.NotNil(g.NodeByID("if0"))
	require.NotNil(g.NodeByID("m0"))
	require.Len(g.Edges, 3)
}

func TestStubSnippets_ResolvesBuiltinGates(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := StubSnippets()
	snip, err := s.Lookup(context.Background(), catalogue.NodeDescriptor{Kind: graph.KindGate, Gate: "h"})
	require.NoError(err)
	assert.NotEmpty(snip)
}
