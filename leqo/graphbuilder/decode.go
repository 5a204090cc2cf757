package graphbuilder

import (
	"encoding/json"
	"fmt"

	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/graph"
)

// Request is the decoded form of spec.md §6's Compile request: a Program
// Graph, the per-node snippet text any node supplied inline, and the
// optimize option (default true, spec.md §6).
type Request struct {
	Metadata map[string]any
	Graph    *graph.Graph
	Snippets map[string]string // nodeID -> inline OpenQASM-3 text, only for nodes that supplied one
	Optimize bool
}

// wireEndpoint decodes a `[node_id, port_index]` tuple (spec.md §6).
type wireEndpoint struct {
	Node string
	Port int
}

func (e *wireEndpoint) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("endpoint must be a 2-element [node_id, port_index] tuple, got %d elements", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &e.Node); err != nil {
		return fmt.Errorf("endpoint node id: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &e.Port); err != nil {
		return fmt.Errorf("endpoint port index: %w", err)
	}
	return nil
}

func (e wireEndpoint) toGraph() graph.EndPoint { return graph.EndPoint{Node: e.Node, Port: e.Port} }

type wirePort struct {
	Type string `json:"type"`
	Size int    `json:"size"`
}

func (p wirePort) toGraph() (graph.Port, error) {
	t, err := parsePortType(p.Type)
	if err != nil {
		return graph.Port{}, err
	}
	size := p.Size
	if size == 0 {
		size = 1
	}
	return graph.Port{Type: t, Size: size}, nil
}

func parsePortType(s string) (graph.PortType, error) {
	switch s {
	case "qubit", "":
		return graph.PortQuantum, nil
	case "int":
		return graph.PortClassicalInt, nil
	case "bit":
		return graph.PortClassicalBit, nil
	case "float":
		return graph.PortClassicalFloat, nil
	default:
		return 0, fmt.Errorf("unknown port type %q", s)
	}
}

type wireEdge struct {
	Source wireEndpoint `json:"source"`
	Target wireEndpoint `json:"target"`
}

// wireBlock is a nested subgraph: a repeat node's inner body, or one
// branch of an if-then-else. Not part of spec.md's own wire grammar (which
// leaves nested-block shape unspecified); this is this repo's own,
// documented choice for expressing RepeatPayload.Inner/IfElsePayload.Then
// and .Else over the wire.
type wireBlock struct {
	Nodes []wireNode `json:"nodes"`
	Edges []wireEdge `json:"edges"`
}

type wireNode struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Inputs []wirePort `json:"inputs,omitempty"`
	Outputs []wirePort `json:"outputs,omitempty"`

	Gate           string  `json:"gate,omitempty"`
	Parameter      float64 `json:"parameter,omitempty"`
	Op             string  `json:"op,omitempty"`
	Scheme         string  `json:"scheme,omitempty"`
	Size           int     `json:"size,omitempty"`
	Value          float64 `json:"value,omitempty"`
	Implementation string  `json:"implementation,omitempty"`

	Iterations   int            `json:"iterations,omitempty"`
	LoopCarried  int            `json:"loop_carried,omitempty"`
	Block        *wireBlock     `json:"block,omitempty"`
	InnerInputs  []wireEndpoint `json:"inner_inputs,omitempty"`
	InnerOutputs []wireEndpoint `json:"inner_outputs,omitempty"`

	CondPort    int            `json:"cond_port,omitempty"`
	ThenBlock   *wireBlock     `json:"then_block,omitempty"`
	ElseBlock   *wireBlock     `json:"else_block,omitempty"`
	ThenInputs  []wireEndpoint `json:"then_inputs,omitempty"`
	ElseInputs  []wireEndpoint `json:"else_inputs,omitempty"`
	ThenOutputs []wireEndpoint `json:"then_outputs,omitempty"`
	ElseOutputs []wireEndpoint `json:"else_outputs,omitempty"`
}

type wireOptions struct {
	Optimize *bool `json:"optimize,omitempty"`
}

type wireRequest struct {
	Metadata map[string]any `json:"metadata,omitempty"`
	Nodes    []wireNode     `json:"nodes"`
	Edges    []wireEdge     `json:"edges"`
	Options  wireOptions    `json:"options,omitempty"`
}

// Decode parses a Compile request document (spec.md §6) into a Request.
func Decode(data []byte) (*Request, error) {
	var wr wireRequest
	if err := json.Unmarshal(data, &wr); err != nil {
		return nil, cerr.New(cerr.SnippetParseError, "malformed compile request: %v", err)
	}

	g, snippets, err := buildGraph(wr.Nodes, wr.Edges)
	if err != nil {
		return nil, err
	}

	optimize := true
	if wr.Options.Optimize != nil {
		optimize = *wr.Options.Optimize
	}

	return &Request{Metadata: wr.Metadata, Graph: g, Snippets: snippets, Optimize: optimize}, nil
}

func buildGraph(nodes []wireNode, edges []wireEdge) (*graph.Graph, map[string]string, error) {
	g := &graph.Graph{}
	snippets := map[string]string{}

	for _, wn := range nodes {
		n, err := wn.toGraphNode()
		if err != nil {
			return nil, nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, nil, err
		}
		if wn.Implementation != "" {
			snippets[wn.ID] = wn.Implementation
		}
	}
	for _, we := range edges {
		g.AddEdge(graph.Edge{Source: we.Source.toGraph(), Target: we.Target.toGraph()})
	}
	return g, snippets, nil
}

func (wn wireNode) toGraphNode() (*graph.Node, error) {
	kind, err := parseKind(wn.Type)
	if err != nil {
		return nil, cerr.NewAt(cerr.UnknownNodeKind, wn.ID, "%v", err)
	}

	inputs, err := wirePorts(wn.Inputs)
	if err != nil {
		return nil, cerr.NewAt(cerr.PortTypeMismatch, wn.ID, "%v", err)
	}
	outputs, err := wirePorts(wn.Outputs)
	if err != nil {
		return nil, cerr.NewAt(cerr.PortTypeMismatch, wn.ID, "%v", err)
	}

	n := &graph.Node{ID: wn.ID, Kind: kind, Inputs: inputs, Outputs: outputs, Snippet: wn.Implementation}

	switch kind {
	case graph.KindGate:
		n.Payload = &graph.GatePayload{Gate: wn.Gate}
	case graph.KindGateWithParam:
		n.Payload = &graph.GateWithParamPayload{Gate: wn.Gate, Param: wn.Parameter}
	case graph.KindOperator:
		n.Payload = &graph.OperatorPayload{Op: wn.Op}
	case graph.KindEncoder:
		n.Payload = &graph.EncoderPayload{Scheme: wn.Scheme}
	case graph.KindClassicalLiteral:
		n.Payload = &graph.ClassicalLiteralPayload{IntValue: int64(wn.Value), FloatValue: wn.Value}
	case graph.KindAncilla:
		n.Payload = &graph.AncillaPayload{Size: wn.Size}

	case graph.KindRepeat:
		if wn.Block == nil {
			return nil, cerr.NewAt(cerr.UnknownNodeKind, wn.ID, "repeat node missing its block")
		}
		inner, _, err := buildGraph(wn.Block.Nodes, wn.Block.Edges)
		if err != nil {
			return nil, err
		}
		n.Payload = &graph.RepeatPayload{
			Iterations:   wn.Iterations,
			LoopCarried:  wn.LoopCarried,
			Inner:        inner,
			InnerInputs:  toEndpoints(wn.InnerInputs),
			InnerOutputs: toEndpoints(wn.InnerOutputs),
		}

	case graph.KindIfThenElse:
		if wn.ThenBlock == nil || wn.ElseBlock == nil {
			return nil, cerr.NewAt(cerr.UnknownNodeKind, wn.ID, "if-then-else node missing then_block/else_block")
		}
		then, _, err := buildGraph(wn.ThenBlock.Nodes, wn.ThenBlock.Edges)
		if err != nil {
			return nil, err
		}
		els, _, err := buildGraph(wn.ElseBlock.Nodes, wn.ElseBlock.Edges)
		if err != nil {
			return nil, err
		}
		n.Payload = &graph.IfElsePayload{
			CondPort:    wn.CondPort,
			Then:        then,
			Else:        els,
			ThenInputs:  toEndpoints(wn.ThenInputs),
			ElseInputs:  toEndpoints(wn.ElseInputs),
			ThenOutputs: toEndpoints(wn.ThenOutputs),
			ElseOutputs: toEndpoints(wn.ElseOutputs),
		}
	}
	return n, nil
}

func wirePorts(ps []wirePort) ([]graph.Port, error) {
	if ps == nil {
		return nil, nil
	}
	out := make([]graph.Port, len(ps))
	for i, p := range ps {
		gp, err := p.toGraph()
		if err != nil {
			return nil, err
		}
		out[i] = gp
	}
	return out, nil
}

func toEndpoints(eps []wireEndpoint) []graph.EndPoint {
	if eps == nil {
		return nil
	}
	out := make([]graph.EndPoint, len(eps))
	for i, e := range eps {
		out[i] = e.toGraph()
	}
	return out
}

func parseKind(s string) (graph.Kind, error) {
	switch s {
	case "qubit":
		return graph.KindQubit, nil
	case "classical-literal":
		return graph.KindClassicalLiteral, nil
	case "gate":
		return graph.KindGate, nil
	case "gate-with-param":
		return graph.KindGateWithParam, nil
	case "measurement":
		return graph.KindMeasurement, nil
	case "operator":
		return graph.KindOperator, nil
	case "encoder":
		return graph.KindEncoder, nil
	case "custom":
		return graph.KindCustom, nil
	case "repeat":
		return graph.KindRepeat, nil
	case "if-then-else":
		return graph.KindIfThenElse, nil
	case "ancilla":
		return graph.KindAncilla, nil
	case "passthrough":
		return graph.KindPassthrough, nil
	default:
		return 0, fmt.Errorf("unknown node type %q", s)
	}
}
