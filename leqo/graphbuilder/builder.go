// Package graphbuilder constructs Program Graphs (spec.md §3) two ways: a
// fluent, bail-on-first-error DSL for building one programmatically (tests
// and leqo/testutil), and a JSON decoder
// for the wire Compile request of spec.md §6 (decode.go). Both paths bottom
// out in the same *graph.Graph/*graph.Node construction leqo/graph.Ingest
// then validates.
package graphbuilder

import "github.com/kegliz/leqo-compile/leqo/graph"

// Builder is a fluent DSL over graph.Graph: every method checks the
// first error encountered and short-circuits on it, the same bail-once
// pattern _examples/kegliz-qplay's qc/builder.Builder chains gate calls
// with, adapted from "add a gate to a DAG" to "add a node/edge to a
// Program Graph".
type Builder struct {
	g   *graph.Graph
	err error
}

// New returns an empty Builder.
func New() *Builder { return &Builder{g: &graph.Graph{}} }

func (b *Builder) bail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Node appends a fully-formed node, useful for kinds New's convenience
// methods don't cover (repeat, if-then-else) and for port layouts other
// than the single input/output port those methods build.
func (b *Builder) Node(n *graph.Node) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.g.AddNode(n); err != nil {
		return b.bail(err)
	}
	return b
}

// Edge wires source's port to target's port.
func (b *Builder) Edge(source graph.EndPoint, target graph.EndPoint) *Builder {
	if b.err != nil {
		return b
	}
	b.g.AddEdge(graph.Edge{Source: source, Target: target})
	return b
}

// Qubit adds a KindQubit source node of the given width.
func (b *Builder) Qubit(id string, size int) *Builder {
	return b.Node(&graph.Node{
		ID:      id,
		Kind:    graph.KindQubit,
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: size}},
	})
}

// Gate adds a KindGate node with one quantum input and output port of
// width qubits, named by the built-in gate it applies.
func (b *Builder) Gate(id, gate string, qubits int) *Builder {
	return b.Node(&graph.Node{
		ID:      id,
		Kind:    graph.KindGate,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: qubits}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: qubits}},
		Payload: &graph.GatePayload{Gate: gate},
	})
}

// GateWithParam adds a KindGateWithParam node (e.g. a rotation).
func (b *Builder) GateWithParam(id, gate string, param float64, qubits int) *Builder {
	return b.Node(&graph.Node{
		ID:      id,
		Kind:    graph.KindGateWithParam,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: qubits}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: qubits}},
		Payload: &graph.GateWithParamPayload{Gate: gate, Param: param},
	})
}

// Measurement adds a KindMeasurement node taking qubits qubits, passing the
// measured qubits through on output 0 and producing a classical bit
// register of the same width on output 1.
func (b *Builder) Measurement(id string, qubits int) *Builder {
	return b.Node(&graph.Node{
		ID:     id,
		Kind:   graph.KindMeasurement,
		Inputs: []graph.Port{{Type: graph.PortQuantum, Size: qubits}},
		Outputs: []graph.Port{
			{Type: graph.PortQuantum, Size: qubits},
			{Type: graph.PortClassicalBit, Size: qubits},
		},
	})
}

// Ancilla adds a KindAncilla scratch-qubit source node of the given width.
func (b *Builder) Ancilla(id string, size int) *Builder {
	return b.Node(&graph.Node{
		ID:      id,
		Kind:    graph.KindAncilla,
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: size}},
		Payload: &graph.AncillaPayload{Size: size},
	})
}

// ClassicalLiteral adds a KindClassicalLiteral source node carrying a
// constant integer value.
func (b *Builder) ClassicalLiteral(id string, value int64) *Builder {
	return b.Node(&graph.Node{
		ID:      id,
		Kind:    graph.KindClassicalLiteral,
		Outputs: []graph.Port{{Type: graph.PortClassicalInt, Size: 1}},
		Payload: &graph.ClassicalLiteralPayload{IntValue: value},
	})
}

// Custom adds a KindCustom node carrying its own inline OpenQASM-3
// implementation rather than deferring to the catalogue.
func (b *Builder) Custom(id, snippet string, qubits int) *Builder {
	return b.Node(&graph.Node{
		ID:      id,
		Kind:    graph.KindCustom,
		Inputs:  []graph.Port{{Type: graph.PortQuantum, Size: qubits}},
		Outputs: []graph.Port{{Type: graph.PortQuantum, Size: qubits}},
		Snippet: snippet,
	})
}

// Build returns the assembled graph, or the first error any prior call
// produced.
func (b *Builder) Build() (*graph.Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.g, nil
}
