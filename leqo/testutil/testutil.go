// Package testutil centralizes fixture builders and small test helpers
// shared across leqo's package-level tests: constants for timeouts and
// unroll ceilings, a couple of canonical Program Graph fixtures (mirroring
// _examples/kegliz-qplay's qc/testutil.NewBellStateCircuit/NewGroverCircuit,
// generalized from "a built circuit.Circuit" to "a built *graph.Graph plus
// the SnippetSource that resolves it"), and the timeout/skip helpers every
// package's tests reach for regardless of domain.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/kegliz/leqo-compile/leqo/graphbuilder"
	"github.com/stretchr/testify/require"
)

// Test timeouts and the server-side unroll ceiling tests commonly need to
// pass explicitly rather than relying on a package default.
const (
	DefaultTestTimeout = 10 * time.Second
	LongTestTimeout     = 30 * time.Second

	DefaultMaxUnroll = 1024
	SmallMaxUnroll   = 8
)

// WithTimeout creates a context with timeout for test operations.
func WithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// StubSnippets returns a catalogue.StubEnricher seeded with the
// built-in single/two-qubit gates and bare measurement, good enough to
// resolve any fixture graph this package builds.
func StubSnippets() *catalogue.StubEnricher {
	return catalogue.NewStubEnricher()
}

// NewBellPairGraph builds the canonical two-qubit entangling fixture: a
// fresh 2-qubit register feeding a single custom node that applies h then
// cx and measures both qubits. A single node keeps the fixture inside the
// Program Graph's one-edge-per-port rule rather than trying to fan two
// single-qubit sources into one wide gate port.
func NewBellPairGraph(t *testing.T) *graph.Graph {
	t.Helper()

	bell := `// @leqo.input 0
qubit[2] q;
h q[0];
cx q[0], q[1];
bit[2] c = measure q;
// @leqo.output 0
let out = q;
`
	g, err := graphbuilder.New().
		Qubit("q01", 2).
		Custom("bell0", bell, 2).
		Edge(graph.EndPoint{Node: "q01", Port: 0}, graph.EndPoint{Node: "bell0", Port: 0}).
		Build()
	require.NoError(t, err, "failed to build bell pair graph")
	return g
}

// NewIfThenElseGraph builds a minimal conditional fixture: a measured
// qubit drives the condition of an if-then-else whose Then branch applies
// h and whose Else branch applies x to a second qubit.
func NewIfThenElseGraph(t *testing.T) *graph.Graph {
	t.Helper()

	then, err := graphbuilder.New().Gate("th", "h", 1).Build()
	require.NoError(t, err)
	els, err := graphbuilder.New().Gate("tx", "x", 1).Build()
	require.NoError(t, err)

	m0 := &graph.Node{
		ID:     "m0",
		Kind:   graph.KindMeasurement,
		Inputs: []graph.Port{{Type: graph.PortQuantum, Size: 1}},
		Outputs: []graph.Port{
			{Type: graph.PortQuantum, Size: 1},
			{Type: graph.PortClassicalBit, Size: 1},
		},
	}
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

	g, err := graphbuilder.New().
		Qubit("q0", 1).
		Node(m0).
		Qubit("q1", 1).
		Node(ifNode).
		Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "m0", Port: 0}).
		Edge(graph.EndPoint{Node: "q1", Port: 0}, graph.EndPoint{Node: "if0", Port: 1}).
		Edge(graph.EndPoint{Node: "m0", Port: 1}, graph.EndPoint{Node: "if0", Port: 0}).
		Build()
	require.NoError(t, err, "failed to build if-then-else graph")
	return g
}

// SkipIfShort skips the test if running with -short flag.
func SkipIfShort(t *testing.T, reason string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("skipping test in short mode: %s", reason)
	}
}

// SkipIfCI skips the test if running in a CI environment.
func SkipIfCI(t *testing.T, reason string) {
	t.Helper()
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		t.Skipf("skipping test in CI: %s", reason)
	}
}
