package expand

import (
	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/kegliz/leqo-compile/leqo/ids"
)

// Options configures S2 Nested Expansion.
type Options struct {
	// MaxUnroll is the configured ceiling on a single repeat node's
	// iteration count (spec.md §4.2 "Fails with UnrollBoundExceeded").
	MaxUnroll int
}

// Expand performs S2 Nested Expansion on an already-ingested graph: every
// `repeat` node is fully unrolled into its k inner-subgraph copies
// threaded by synthetic passthrough entry/exit nodes, and `if-then-else`
// nodes are left in place as guarded regions (their branches get the same
// treatment recursively, since a runtime condition can never be resolved
// away at compile time — only a repeat's bounded, compile-time-known
// iteration count can).
func Expand(g *graph.Graph, opts Options) (*graph.Graph, error) {
	out := &graph.Graph{}
	edges := append([]graph.Edge{}, g.Edges...)

	for _, n := range g.Nodes {
		switch n.Kind {
		case graph.KindRepeat:
			p, ok := n.Payload.(*graph.RepeatPayload)
			if !ok || p == nil {
				return nil, cerr.NewAt(cerr.UnknownNodeKind, n.ID, "repeat node missing payload")
			}
			if p.Iterations > opts.MaxUnroll {
				return nil, cerr.NewAt(cerr.UnrollBoundExceeded, n.ID,
					"repeat iterations %d exceeds configured ceiling %d", p.Iterations, opts.MaxUnroll)
			}
			expandedInner, err := Expand(p.Inner, opts)
			if err != nil {
				return nil, err
			}
			newEdges, err := unrollRepeat(out, n, p, expandedInner, edges)
			if err != nil {
				return nil, err
			}
			edges = newEdges

		case graph.KindIfThenElse:
			p, ok := n.Payload.(*graph.IfElsePayload)
			if !ok || p == nil {
				return nil, cerr.NewAt(cerr.UnknownNodeKind, n.ID, "if-then-else node missing payload")
			}
			newPayload, err := expandBranches(n.ID, p, opts)
			if err != nil {
				return nil, err
			}
			_ = out.AddNode(&graph.Node{
				ID:      n.ID,
				Kind:    n.Kind,
				Inputs:  append([]graph.Port{}, n.Inputs...),
				Outputs: append([]graph.Port{}, n.Outputs...),
				Snippet: n.Snippet,
				Payload: newPayload,
			})

		default:
			_ = out.AddNode(&graph.Node{
				ID:      n.ID,
				Kind:    n.Kind,
				Inputs:  append([]graph.Port{}, n.Inputs...),
				Outputs: append([]graph.Port{}, n.Outputs...),
				Snippet: n.Snippet,
				Payload: n.Payload,
			})
		}
	}

	for _, e := range edges {
		if out.NodeByID(e.Source.Node) == nil || out.NodeByID(e.Target.Node) == nil {
			continue // dangling reference to a node consumed by unrolling; already rewired elsewhere
		}
		out.AddEdge(e)
	}
	return out, nil
}

// expandBranches recursively expands a then/else pair and namespaces every
// node id inside each branch under (ifID, "then"|"else", innerID) so two
// branches — and two instances of the same nested repeat/if pattern in
// each — never collide once spliced into one merged program at S5.
func expandBranches(ifID string, p *graph.IfElsePayload, opts Options) (*graph.IfElsePayload, error) {
	var expandedThen, expandedElse *graph.Graph
	var err error
	if p.Then != nil {
		expandedThen, err = Expand(p.Then, opts)
		if err != nil {
			return nil, err
		}
	}
	if p.Else != nil {
		expandedElse, err = Expand(p.Else, opts)
		if err != nil {
			return nil, err
		}
	}

	thenRename := func(id string) string { return ids.Branch(ifID, "then", id) }
	elseRename := func(id string) string { return ids.Branch(ifID, "else", id) }

	out := &graph.IfElsePayload{CondPort: p.CondPort}
	if expandedThen != nil {
		out.Then = remapGraph(expandedThen, thenRename)
	}
	if expandedElse != nil {
		out.Else = remapGraph(expandedElse, elseRename)
	}
	out.ThenInputs = remapEndpoints(p.ThenInputs, thenRename)
	out.ElseInputs = remapEndpoints(p.ElseInputs, elseRename)
	out.ThenOutputs = remapEndpoints(p.ThenOutputs, thenRename)
	out.ElseOutputs = remapEndpoints(p.ElseOutputs, elseRename)
	return out, nil
}

// unrollRepeat materializes k copies of inner threaded by per-iteration
// passthrough entry/exit nodes (spec.md §4.2), appending them to out and
// returning the outer edge set with every edge touching n rewritten to
// its unrolled equivalent.
func unrollRepeat(out *graph.Graph, n *graph.Node, p *graph.RepeatPayload, inner *graph.Graph, edges []graph.Edge) ([]graph.Edge, error) {
	loopCarried := p.LoopCarried
	k := p.Iterations

	var others []graph.Edge
	incomingByPort := map[int]graph.EndPoint{}
	outgoingByPort := map[int][]graph.EndPoint{}
	for _, e := range edges {
		switch {
		case e.Source.Node == n.ID && e.Target.Node == n.ID:
			// the declared loop-carry self-loop: purely structural, not an
			// expansion wire (the entry/exit chain below realizes it).
		case e.Target.Node == n.ID:
			incomingByPort[e.Target.Port] = e.Source
		case e.Source.Node == n.ID:
			outgoingByPort[e.Source.Port] = append(outgoingByPort[e.Source.Port], e.Target)
		default:
			others = append(others, e)
		}
	}

	if k == 0 {
		// zero iterations: the loop body never runs, loop-carried values
		// pass straight from input to output unchanged.
		for j := 0; j < loopCarried; j++ {
			src, ok := incomingByPort[j]
			if !ok {
				continue
			}
			for _, tgt := range outgoingByPort[j] {
				others = append(others, graph.Edge{Source: src, Target: tgt})
			}
		}
		return others, nil
	}

	newEdges := others
	for i := 0; i < k; i++ {
		entryID := ids.PassthroughEntry(n.ID, i)
		exitID := ids.PassthroughExit(n.ID, i)

		entryPorts := make([]graph.Port, loopCarried)
		for j := 0; j < loopCarried; j++ {
			entryPorts[j] = n.Inputs[j]
		}
		if err := out.AddNode(&graph.Node{
			ID: entryID, Kind: graph.KindPassthrough,
			Inputs: entryPorts, Outputs: append([]graph.Port{}, entryPorts...),
		}); err != nil {
			return nil, err
		}

		exitPorts := make([]graph.Port, loopCarried)
		for j := 0; j < loopCarried; j++ {
			exitPorts[j] = n.Outputs[j]
		}
		if err := out.AddNode(&graph.Node{
			ID: exitID, Kind: graph.KindPassthrough,
			Inputs: append([]graph.Port{}, exitPorts...), Outputs: exitPorts,
		}); err != nil {
			return nil, err
		}

		for j := 0; j < loopCarried; j++ {
			var src graph.EndPoint
			if i == 0 {
				src = incomingByPort[j]
			} else {
				src = graph.EndPoint{Node: ids.PassthroughExit(n.ID, i-1), Port: j}
			}
			newEdges = append(newEdges, graph.Edge{Source: src, Target: graph.EndPoint{Node: entryID, Port: j}})
		}

		rename := func(id string) string { return ids.Unrolled(n.ID, i, id) }
		innerCopy := remapGraph(inner, rename)
		for _, innerNode := range innerCopy.Nodes {
			if err := out.AddNode(innerNode); err != nil {
				return nil, err
			}
		}
		newEdges = append(newEdges, innerCopy.Edges...)

		for j, innerEP := range p.InnerInputs {
			target := graph.EndPoint{Node: rename(innerEP.Node), Port: innerEP.Port}
			if j < loopCarried {
				newEdges = append(newEdges, graph.Edge{Source: graph.EndPoint{Node: entryID, Port: j}, Target: target})
			} else if src, ok := incomingByPort[j]; ok {
				newEdges = append(newEdges, graph.Edge{Source: src, Target: target})
			}
		}
		for j, innerEP := range p.InnerOutputs {
			src := graph.EndPoint{Node: rename(innerEP.Node), Port: innerEP.Port}
			newEdges = append(newEdges, graph.Edge{Source: src, Target: graph.EndPoint{Node: exitID, Port: j}})
		}
	}

	lastExit := ids.PassthroughExit(n.ID, k-1)
	for port, targets := range outgoingByPort {
		for _, tgt := range targets {
			newEdges = append(newEdges, graph.Edge{Source: graph.EndPoint{Node: lastExit, Port: port}, Target: tgt})
		}
	}
	return newEdges, nil
}
