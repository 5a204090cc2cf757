// Package graph is the Program Graph data model of spec.md §3 and the S0
// Graph Ingest stage of spec.md §4.1: port/type/fan-in validation, cycle
// detection, and deterministic topological scheduling. The scheduling
// algorithm (Kahn's algorithm over an explicit adjacency list, built from
// edges rather than the teacher's per-qubit "last writer" hazard tracking)
// is adapted from _examples/kegliz-qplay's qc/dag.DAG — the shape (NodeID,
// parents/children slices, calculateTopoSort, acyclic via DFS state) is the
// same, generalised from "last op per qubit" wiring to "one edge per port"
// wiring, since a program-graph port has exactly one producer by
// construction instead of qplay's many-gates-share-a-qubit model.
package graph

import "github.com/kegliz/leqo-compile/leqo/cerr"

// PortType is the closed set of port data types spec.md §3 allows.
type PortType int

const (
	PortQuantum PortType = iota
	PortClassicalInt
	PortClassicalBit
	PortClassicalFloat
)

func (t PortType) String() string {
	switch t {
	case PortQuantum:
		return "qubit"
	case PortClassicalInt:
		return "int"
	case PortClassicalBit:
		return "bit"
	case PortClassicalFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Port is one typed, sized input or output slot on a node.
type Port struct {
	Type PortType
	Size int
}

// Kind is the closed set of node kinds spec.md §3 allows.
type Kind int

const (
	KindQubit Kind = iota
	KindClassicalLiteral
	KindGate
	KindGateWithParam
	KindMeasurement
	KindOperator
	KindEncoder
	KindCustom
	KindRepeat
	KindIfThenElse
	KindAncilla
	KindPassthrough
)

func (k Kind) String() string {
	names := [...]string{
		"qubit", "classical-literal", "gate", "gate-with-param", "measurement",
		"operator", "encoder", "custom", "repeat", "if-then-else", "ancilla",
		"passthrough",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}

// RepeatPayload is the kind-specific data of a `repeat` node (spec.md §4.2).
// Ports 0..LoopCarried-1 are the loop-carried pair (same index on input and
// output); remaining input ports are broadcast pass-through classical
// inputs. InnerInputs/InnerOutputs name the boundary ports of Inner that
// each outer port index is wired to — one entry per outer input/output
// port, in the same order — so S2 expansion knows where to attach the
// synthetic per-iteration passthrough nodes without Inner needing its own
// notion of "this is the edge of the subgraph".
type RepeatPayload struct {
	Iterations   int
	LoopCarried  int
	Inner        *Graph
	InnerInputs  []EndPoint
	InnerOutputs []EndPoint
}

// IfElsePayload is the kind-specific data of an `if-then-else` node.
// CondPort is the index of the classical boolean input port. ThenInputs/
// ElseInputs and ThenOutputs/ElseOutputs name, like RepeatPayload, the
// boundary ports of each branch subgraph that the outer node's remaining
// (non-condition) ports are wired to; both branches share the same outer
// port signature (spec.md §4.2).
type IfElsePayload struct {
	CondPort    int
	Then        *Graph
	Else        *Graph
	ThenInputs  []EndPoint
	ElseInputs  []EndPoint
	ThenOutputs []EndPoint
	ElseOutputs []EndPoint
}

// GatePayload names a built-in gate for KindGate nodes.
type GatePayload struct{ Gate string }

// GateWithParamPayload names a parameterised built-in gate (e.g. rz(theta)).
type GateWithParamPayload struct {
	Gate  string
	Param float64
}

// OperatorPayload names a classical arithmetic operator node.
type OperatorPayload struct{ Op string }

// EncoderPayload names an encoding scheme (e.g. "amplitude", "basis").
type EncoderPayload struct{ Scheme string }

// ClassicalLiteralPayload carries a constant classical value.
type ClassicalLiteralPayload struct {
	IntValue   int64
	FloatValue float64
}

// AncillaPayload sizes a scratch-qubit region.
type AncillaPayload struct{ Size int }

// Node is one vertex of the Program Graph.
type Node struct {
	ID      string
	Kind    Kind
	Inputs  []Port
	Outputs []Port
	Payload any // one of the *Payload types above, or nil for simple kinds
	// Snippet is the node's OpenQASM-3 source (spec.md §3 "Snippet"),
	// acquired in S1 (out of scope here; populated by the caller or an
	// Enricher before S3 runs). Composite kinds (repeat, if-then-else)
	// never carry a snippet of their own.
	Snippet string
}

// EndPoint names one port of one node.
type EndPoint struct {
	Node string
	Port int
}

// Edge carries the value produced at Source into Target (spec.md §3).
type Edge struct {
	Source EndPoint
	Target EndPoint
}

// Graph is a directed acyclic graph of Nodes connected by Edges.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	byID map[string]*Node
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	if g.byID == nil {
		g.index()
	}
	return g.byID[id]
}

func (g *Graph) index() {
	g.byID = make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		g.byID[n.ID] = n
	}
}

// AddNode appends a node, rejecting duplicate ids.
func (g *Graph) AddNode(n *Node) error {
	if g.byID == nil {
		g.index()
	}
	if _, exists := g.byID[n.ID]; exists {
		return cerr.NewAt(cerr.UnknownNodeKind, n.ID, "duplicate node id")
	}
	g.Nodes = append(g.Nodes, n)
	g.byID[n.ID] = n
	return nil
}

// AddEdge appends an edge.
func (g *Graph) AddEdge(e Edge) { g.Edges = append(g.Edges, e) }
