package catalogue

import (
	"context"
	"testing"

	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubEnricher_LookupKnownGates(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := NewStubEnricher()

	h, err := s.Lookup(context.Background(), NodeDescriptor{Kind: graph.KindGate, Gate: "h"})
	require.NoError(err)
	assert.Contains(h, "h q[0];")

	cx, err := s.Lookup(context.Background(), NodeDescriptor{Kind: graph.KindGate, Gate: "cx"})
	require.NoError(err)
	assert.Contains(cx, "qubit[2] q;")
	assert.Contains(cx, "cx q[0], q[1];")

	meas, err := s.Lookup(context.Background(), NodeDescriptor{Kind: graph.KindMeasurement})
	require.NoError(err)
	assert.Contains(meas, "measure q[0];")
}

func TestStubEnricher_LookupUnknownReturnsEmpty(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := NewStubEnricher()
	got, err := s.Lookup(context.Background(), NodeDescriptor{Kind: graph.KindGate, Gate: "unobtainium"})
	require.NoError(err)
	assert.Empty(got)
}

func TestStubEnricher_RegisterOverridesExisting(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := NewStubEnricher()
	s.Register(NodeDescriptor{Kind: graph.KindGate, Gate: "h"}, "// custom h snippet\n")

	got, err := s.Lookup(context.Background(), NodeDescriptor{Kind: graph.KindGate, Gate: "h"})
	require.NoError(err)
	assert.Equal("// custom h snippet\n", got)
}

func TestNodeDescriptor_KeyDistinguishesByPayload(t *testing.T) {
	assert := assert.New(t)

	s := NewStubEnricher()
	s.Register(NodeDescriptor{Kind: graph.KindOperator, Op: "add"}, "// add\n")
	s.Register(NodeDescriptor{Kind: graph.KindOperator, Op: "sub"}, "// sub\n")

	add, _ := s.Lookup(context.Background(), NodeDescriptor{Kind: graph.KindOperator, Op: "add"})
	sub, _ := s.Lookup(context.Background(), NodeDescriptor{Kind: graph.KindOperator, Op: "sub"})
	assert.NotEqual(add, sub)
}
