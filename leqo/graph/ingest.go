package graph

import (
	"sort"

	"github.com/kegliz/leqo-compile/leqo/cerr"
)

// Ingested is the S0 result: the validated graph plus its deterministic
// topological node order (spec.md §4.1, §4.4).
type Ingested struct {
	Graph *Graph
	Order []string
}

// Ingest validates a Program Graph and computes its topological order,
// recursing into every nested Repeat.Inner and IfThenElse.Then/Else
// subgraph so composite nodes are fully checked before S2 Nested Expansion
// consumes them.
func Ingest(g *Graph) (*Ingested, error) {
	return ingest(g, nil)
}

// ingest is Ingest's recursive worker. boundaryInputs names the ports of g
// that are a nested subgraph's own boundary (RepeatPayload.InnerInputs or
// IfElsePayload.Then/ElseInputs, graph.go's own doc comment): by
// construction these never receive an internal edge, since their value
// arrives from outside the subgraph at S2 expansion/resolve time, so
// validatePorts must not hold them to the normal fan-in-1 rule. nil at the
// top level, where every port is a real, internally-wired port.
func ingest(g *Graph, boundaryInputs map[EndPoint]bool) (*Ingested, error) {
	if err := validatePorts(g, boundaryInputs); err != nil {
		return nil, err
	}
	if err := validateAcyclic(g); err != nil {
		return nil, err
	}
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}
	for _, n := range g.Nodes {
		switch p := n.Payload.(type) {
		case *RepeatPayload:
			if p.Inner != nil {
				if _, err := ingest(p.Inner, boundarySet(p.InnerInputs)); err != nil {
					return nil, err
				}
			}
		case *IfElsePayload:
			if p.Then != nil {
				if _, err := ingest(p.Then, boundarySet(p.ThenInputs)); err != nil {
					return nil, err
				}
			}
			if p.Else != nil {
				if _, err := ingest(p.Else, boundarySet(p.ElseInputs)); err != nil {
					return nil, err
				}
			}
		}
	}
	return &Ingested{Graph: g, Order: order}, nil
}

// boundarySet turns a payload's InnerInputs/Then/ElseInputs list into the
// set validatePorts exempts from the fan-in-1 check.
func boundarySet(eps []EndPoint) map[EndPoint]bool {
	if len(eps) == 0 {
		return nil
	}
	set := make(map[EndPoint]bool, len(eps))
	for _, ep := range eps {
		set[ep] = true
	}
	return set
}

// TopoSort computes just the deterministic topological order already
// validated by a prior Ingest call, without re-running validatePorts. It is
// for callers (resolveIfThenElse) that re-enter an already-ingested nested
// subgraph and only need its schedule, not a second full validation pass
// that would have to rediscover which of its ports are boundary ports.
func TopoSort(g *Graph) ([]string, error) {
	return topoSort(g)
}

// validatePorts checks every edge references an existing node/port in
// range, that every input port receives exactly one edge (fan-in = 1,
// spec.md §3) unless it is named in boundaryInputs (a nested subgraph's own
// boundary port, which must instead receive zero internal edges since its
// value arrives from outside), that quantum output ports drive at most one
// edge (qubits are linear — no implicit fan-out/copy), and that connected
// port types match exactly. Size mismatches are deliberately not checked
// here: they are S3 Size Casting's job (spec.md §4.3).
func validatePorts(g *Graph, boundaryInputs map[EndPoint]bool) error {
	inDegree := map[EndPoint]int{}
	outDegree := map[EndPoint]int{}

	for _, e := range g.Edges {
		srcNode := g.NodeByID(e.Source.Node)
		if srcNode == nil {
			return cerr.NewAt(cerr.UnknownNodeKind, e.Source.Node, "edge references unknown source node")
		}
		dstNode := g.NodeByID(e.Target.Node)
		if dstNode == nil {
			return cerr.NewAt(cerr.UnknownNodeKind, e.Target.Node, "edge references unknown target node")
		}
		if e.Source.Port < 0 || e.Source.Port >= len(srcNode.Outputs) {
			return cerr.NewAt(cerr.UnknownNodeKind, srcNode.ID, "output port %d out of range", e.Source.Port)
		}
		if e.Target.Port < 0 || e.Target.Port >= len(dstNode.Inputs) {
			return cerr.NewAt(cerr.UnknownNodeKind, dstNode.ID, "input port %d out of range", e.Target.Port)
		}

		srcPort := srcNode.Outputs[e.Source.Port]
		dstPort := dstNode.Inputs[e.Target.Port]
		if srcPort.Type != dstPort.Type {
			return cerr.NewAt(cerr.PortTypeMismatch, dstNode.ID,
				"input port %d expects %s, edge from %q:%d supplies %s",
				e.Target.Port, dstPort.Type, srcNode.ID, e.Source.Port, srcPort.Type)
		}

		inDegree[e.Target]++
		outDegree[e.Source]++
	}

	for _, n := range g.Nodes {
		for i := range n.Inputs {
			ep := EndPoint{Node: n.ID, Port: i}
			if boundaryInputs[ep] {
				if inDegree[ep] != 0 {
					return cerr.NewAt(cerr.PortFanInViolation, n.ID,
						"input port %d is a subgraph boundary input and must not be wired internally, got %d incoming edges", i, inDegree[ep])
				}
				continue
			}
			if inDegree[ep] != 1 {
				return cerr.NewAt(cerr.PortFanInViolation, n.ID,
					"input port %d has %d incoming edges, want exactly 1", i, inDegree[ep])
			}
		}
		for i, p := range n.Outputs {
			if p.Type != PortQuantum {
				continue
			}
			ep := EndPoint{Node: n.ID, Port: i}
			if outDegree[ep] > 1 {
				return cerr.NewAt(cerr.PortFanInViolation, n.ID,
					"quantum output port %d drives %d edges, want at most 1", i, outDegree[ep])
			}
		}
	}
	return nil
}

// validateAcyclic rejects any cycle except a self-loop edge on a Repeat
// node (source node == target node), which is the graph's sole legitimate
// representation of "loop-carried state between iterations" (spec.md
// §4.2, §9 Open Question resolved: the repeat node's own port pairing at
// a shared index *is* the loop carry; no other back-edge is ever valid).
func validateAcyclic(g *Graph) error {
	adj := map[string][]string{}
	for _, e := range g.Edges {
		if e.Source.Node == e.Target.Node {
			n := g.NodeByID(e.Source.Node)
			if n != nil && n.Kind == KindRepeat {
				continue
			}
			return cerr.NewAt(cerr.CyclicGraph, e.Source.Node, "self-loop on non-repeat node")
		}
		adj[e.Source.Node] = append(adj[e.Source.Node], e.Target.Node)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.Nodes))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		stack = append(stack, id)
		for _, next := range adj[id] {
			switch color[next] {
			case white:
				if err := visit(next); err != nil {
					return err
				}
			case gray:
				return cerr.NewAt(cerr.CyclicGraph, next, "cycle through %v", append(append([]string{}, stack...), next))
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	ids := nodeIDsSorted(g)
	for _, id := range ids {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// topoSort computes a Kahn's-algorithm topological order, breaking ties
// lexicographically by node id so identical graphs always yield identical
// schedules (spec.md §4.4, §8 determinism). Adapted from
// _examples/kegliz-qplay's qc/dag.DAG.calculateTopoSort, which uses the
// same indegree-queue shape over its parent/children adjacency.
func topoSort(g *Graph) ([]string, error) {
	indeg := map[string]int{}
	adj := map[string][]string{}
	for _, n := range g.Nodes {
		indeg[n.ID] = 0
	}
	for _, e := range g.Edges {
		if e.Source.Node == e.Target.Node {
			continue // repeat self-loop: not a scheduling dependency
		}
		adj[e.Source.Node] = append(adj[e.Source.Node], e.Target.Node)
		indeg[e.Target.Node]++
	}

	var ready []string
	for _, n := range g.Nodes {
		if indeg[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		next := append([]string{}, adj[id]...)
		sort.Strings(next)
		for _, m := range next {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, cerr.New(cerr.CyclicGraph, "topological sort covered %d of %d nodes", len(order), len(g.Nodes))
	}
	return order, nil
}

func nodeIDsSorted(g *Graph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}
