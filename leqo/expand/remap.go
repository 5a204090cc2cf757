// Package expand implements S2 Nested Expansion: fully unrolling `repeat`
// nodes into k copies of their inner subgraph threaded by synthetic
// passthrough entry/exit nodes, and recursively flattening repeats nested
// inside `if-then-else` branches while leaving the branches themselves as
// guarded regions for S5 to wrap in a runtime `if (cond) {...} else {...}`
// (spec.md §4.2: an if-then-else's condition is only known at runtime, so
// — unlike a bounded repeat — it can never be resolved away at compile
// time).
package expand

import "github.com/kegliz/leqo-compile/leqo/graph"

// remapGraph returns a deep copy of g with every node id passed through
// rename, updating every edge endpoint and every nested Repeat/IfThenElse
// payload's boundary endpoint lists to match. It recurses into nested
// subgraphs, applying the same rename function to their node ids too, so
// a node nested several expansions deep accumulates one prefix per level
// exactly like ids.Unrolled/ids.Branch intend.
func remapGraph(g *graph.Graph, rename func(string) string) *graph.Graph {
	out := &graph.Graph{}
	for _, n := range g.Nodes {
		nn := &graph.Node{
			ID:      rename(n.ID),
			Kind:    n.Kind,
			Inputs:  append([]graph.Port{}, n.Inputs...),
			Outputs: append([]graph.Port{}, n.Outputs...),
			Snippet: n.Snippet,
			Payload: remapPayload(n.Payload, rename),
		}
		_ = out.AddNode(nn)
	}
	for _, e := range g.Edges {
		out.AddEdge(graph.Edge{
			Source: graph.EndPoint{Node: rename(e.Source.Node), Port: e.Source.Port},
			Target: graph.EndPoint{Node: rename(e.Target.Node), Port: e.Target.Port},
		})
	}
	return out
}

func remapEndpoints(eps []graph.EndPoint, rename func(string) string) []graph.EndPoint {
	if eps == nil {
		return nil
	}
	out := make([]graph.EndPoint, len(eps))
	for i, ep := range eps {
		out[i] = graph.EndPoint{Node: rename(ep.Node), Port: ep.Port}
	}
	return out
}

func remapPayload(p any, rename func(string) string) any {
	switch payload := p.(type) {
	case *graph.RepeatPayload:
		np := &graph.RepeatPayload{
			Iterations:  payload.Iterations,
			LoopCarried: payload.LoopCarried,
		}
		if payload.Inner != nil {
			np.Inner = remapGraph(payload.Inner, rename)
		}
		np.InnerInputs = remapEndpoints(payload.InnerInputs, rename)
		np.InnerOutputs = remapEndpoints(payload.InnerOutputs, rename)
		return np
	case *graph.IfElsePayload:
		np := &graph.IfElsePayload{CondPort: payload.CondPort}
		if payload.Then != nil {
			np.Then = remapGraph(payload.Then, rename)
		}
		if payload.Else != nil {
			np.Else = remapGraph(payload.Else, rename)
		}
		np.ThenInputs = remapEndpoints(payload.ThenInputs, rename)
		np.ElseInputs = remapEndpoints(payload.ElseInputs, rename)
		np.ThenOutputs = remapEndpoints(payload.ThenOutputs, rename)
		np.ElseOutputs = remapEndpoints(payload.ElseOutputs, rename)
		return np
	default:
		return p
	}
}
