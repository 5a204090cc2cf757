// Package catalogue defines the Enricher contract spec.md §6 fixes as an
// external collaborator: "lookup(node_descriptor) -> snippet | empty",
// called exactly once per node that arrives at S1 without a caller-supplied
// implementation. The production catalogue (persistent storage, real
// enrichment strategies) is explicitly out of scope (spec.md §1); this
// package ships only the interface plus an in-memory stub good enough for
// tests and local runs.
package catalogue

import (
	"context"
	"fmt"

	"github.com/kegliz/leqo-compile/leqo/graph"
)

// NodeDescriptor is the minimal information S1 can offer the catalogue
// about a node lacking its own snippet: its kind, plus whichever
// kind-specific payload field distinguishes it (a gate name, an operator,
// an encoding scheme, ...).
type NodeDescriptor struct {
	Kind  graph.Kind
	Gate  string
	Op    string
	Scheme string
}

func (d NodeDescriptor) key() string {
	switch d.Kind {
	case graph.KindGate, graph.KindGateWithParam:
		return fmt.Sprintf("%s:%s", d.Kind, d.Gate)
	case graph.KindOperator:
		return fmt.Sprintf("%s:%s", d.Kind, d.Op)
	case graph.KindEncoder:
		return fmt.Sprintf("%s:%s", d.Kind, d.Scheme)
	default:
		return d.Kind.String()
	}
}

// Enricher looks up a snippet for a node descriptor. An empty string with a
// nil error means "no known implementation" (the caller surfaces
// MissingSnippet); a non-nil error means the lookup itself failed.
type Enricher interface {
	Lookup(ctx context.Context, desc NodeDescriptor) (string, error)
}

// StubEnricher is an in-memory Enricher seeded with canonical snippets for
// a handful of common single/two-qubit built-ins, for tests and local runs
// that don't wire a real catalogue.
type StubEnricher struct {
	snippets map[string]string
}

// NewStubEnricher returns a StubEnricher pre-populated with single-qubit
// gates (h, x, y, z, s), the two-qubit cx gate, and bare measurement.
func NewStubEnricher() *StubEnricher {
	s := &StubEnricher{snippets: map[string]string{}}
	for _, g := range []string{"h", "x", "y", "z", "s"} {
		s.Register(NodeDescriptor{Kind: graph.KindGate, Gate: g}, singleQubitGateSnippet(g))
	}
	s.Register(NodeDescriptor{Kind: graph.KindGate, Gate: "cx"}, twoQubitGateSnippet("cx"))
	s.Register(NodeDescriptor{Kind: graph.KindMeasurement}, measurementSnippet())
	return s
}

// Register adds or replaces the snippet for a descriptor.
func (s *StubEnricher) Register(desc NodeDescriptor, snippet string) {
	s.snippets[desc.key()] = snippet
}

// Lookup implements Enricher.
func (s *StubEnricher) Lookup(_ context.Context, desc NodeDescriptor) (string, error) {
	return s.snippets[desc.key()], nil
}

func singleQubitGateSnippet(gate string) string {
	return fmt.Sprintf(`// @leqo.input 0
qubit[1] q;
%s q[0];
// @leqo.output 0
let out = q;
`, gate)
}

func twoQubitGateSnippet(gate string) string {
	return fmt.Sprintf(`// @leqo.input 0
qubit[2] q;
%s q[0], q[1];
// @leqo.output 0
let out = q;
`, gate)
}

func measurementSnippet() string {
	return `// @leqo.input 0
qubit[1] q;
bit[1] c = measure q[0];
// @leqo.output 0
let out = q;
`
}
