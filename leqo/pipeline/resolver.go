package pipeline

import (
	"context"
	"fmt"

	"github.com/kegliz/leqo-compile/leqo/alloc"
	"github.com/kegliz/leqo-compile/leqo/ast"
	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/kegliz/leqo-compile/leqo/prepare"
)

// emitItem is one splice-ready unit of the final program: either a flat
// prepared node, or an if-then-else node whose Then/Else bodies are
// themselves emitItem lists (spec.md §4.2's branches, resolved
// independently but allocated in the same global register).
type emitItem struct {
	NodeID   string
	Prepared *prepare.Node

	CondText string
	Then     []emitItem
	Else     []emitItem
}

func (it emitItem) isIf() bool { return it.Prepared == nil }

// boundary carries the values an outer if-then-else node hands its Then/
// Else subgraph for ports the branch itself has no source for: shared
// qubit identity (so a pass-through or in-place-gate chain keeps the same
// global id regardless of branch) and classical condition text.
type boundary struct {
	qubit     map[graph.EndPoint][]string
	classical map[graph.EndPoint]string
	// exposed marks an endpoint that is this branch's own boundary output
	// (named in IfElsePayload.ThenOutputs/ElseOutputs): its immortality is
	// decided by the enclosing if-node's own leaf check, not by whether the
	// branch itself happens to consume it further.
	exposed map[graph.EndPoint]bool
}

// resolver walks a (possibly nested) graph in topological order, resolving
// every logical qubit's cross-node identity from edges (spec.md §4.5 step
// 4: "edges propagate index sets, not values") into the alloc.Usage
// timeline S4 needs, and assembling the emitItem tree S5/S6 consume.
type resolver struct {
	ctx      context.Context
	snippets SnippetSource

	rank  int
	usage map[string]*alloc.Usage
	owner map[string]string // global id -> node id that first declared it

	nodeLocal    map[string]map[string][]string // nodeID -> local decl name -> global ids (inputs+internal only)
	nodeOutputs  map[string]map[int][]string     // nodeID -> output port -> resolved global ids
	classicalOut map[graph.EndPoint]string

	warnings map[string][]string
}

func newResolver(ctx context.Context, snippets SnippetSource) *resolver {
	return &resolver{
		ctx:          ctx,
		snippets:     snippets,
		usage:        map[string]*alloc.Usage{},
		owner:        map[string]string{},
		nodeLocal:    map[string]map[string][]string{},
		nodeOutputs:  map[string]map[int][]string{},
		classicalOut: map[graph.EndPoint]string{},
		warnings:     map[string][]string{},
	}
}

func (r *resolver) checkCancel() error {
	select {
	case <-r.ctx.Done():
		if r.ctx.Err() == context.DeadlineExceeded {
			return cerr.New(cerr.Timeout, "compile request timed out")
		}
		return cerr.New(cerr.Cancelled, "compile request cancelled")
	default:
		return nil
	}
}

func (r *resolver) resolveLevel(g *graph.Graph, order []string, b boundary) ([]emitItem, error) {
	var items []emitItem
	for _, id := range order {
		if err := r.checkCancel(); err != nil {
			return nil, err
		}
		n := g.NodeByID(id)
		var (
			item emitItem
			err  error
		)
		if n.Kind == graph.KindIfThenElse {
			item, err = r.resolveIfThenElse(g, n, b)
		} else {
			item, err = r.resolveFlatNode(g, n, b)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *resolver) resolveFlatNode(g *graph.Graph, n *graph.Node, b boundary) (emitItem, error) {
	snippet, ok := builtinSnippet(n)
	if !ok {
		var err error
		snippet, err = r.snippets.resolve(r.ctx, n)
		if err != nil {
			return emitItem{}, err
		}
	}
	if err := r.checkCancel(); err != nil {
		return emitItem{}, err
	}

	prepared, err := prepare.Prepare(n.ID, snippet)
	if err != nil {
		return emitItem{}, err
	}

	rank := r.rank
	r.rank++

	local := map[string][]string{}

	for _, in := range prepared.Inputs {
		target := graph.EndPoint{Node: n.ID, Port: in.Port}
		srcIDs, ok := r.resolveQubitInput(g, b, target)
		if !ok {
			return emitItem{}, cerr.NewAt(cerr.PortFanInViolation, n.ID, "input port %d has no source", in.Port)
		}
		padding, err := prepare.CastSize(n.ID, in.Port, in.Size, len(srcIDs), false)
		if err != nil {
			return emitItem{}, err
		}
		ids := append([]string{}, srcIDs...)
		for i := 0; i < padding; i++ {
			ids = append(ids, fmt.Sprintf("%s::pad%d.%d", n.ID, in.Port, i))
		}
		local[in.Name] = ids
	}

	for _, q := range prepared.Internal {
		ids := make([]string, q.Size)
		for i := 0; i < q.Size; i++ {
			ids[i] = fmt.Sprintf("%s::%s.%d", n.ID, q.Name, i)
		}
		local[q.Name] = ids
	}

	for _, ids := range local {
		for _, id := range ids {
			r.touch(id, n.ID, rank)
		}
	}

	for _, ref := range prepared.Reusable {
		if ids, ok := local[ref.Name]; ok && ref.Pos >= 0 && ref.Pos < len(ids) {
			r.markReusable(ids[ref.Pos], rank)
		}
	}

	outputs := map[int][]string{}
	for _, out := range prepared.Outputs {
		ids := make([]string, len(out.Qubits.Elems))
		for i, ref := range out.Qubits.Elems {
			srcIDs, ok := local[ref.Name]
			if !ok || ref.Pos < 0 || ref.Pos >= len(srcIDs) {
				return emitItem{}, cerr.NewAt(cerr.PostprocessError, n.ID,
					"output port %d references unknown qubit %s[%d]", out.Port, ref.Name, ref.Pos)
			}
			ids[i] = srcIDs[ref.Pos]
		}
		outputs[out.Port] = ids

		ep := graph.EndPoint{Node: n.ID, Port: out.Port}
		if !hasOutgoingEdge(g, ep) && !b.exposesOutput(ep) {
			for _, id := range ids {
				r.markOutput(id)
			}
		}
	}

	if port, ok := classicalOutputPort(n); ok {
		switch {
		case measureTargetName(prepared) != "":
			r.classicalOut[graph.EndPoint{Node: n.ID, Port: port}] = measureTargetName(prepared)
		case n.Payload != nil:
			if lit, ok := n.Payload.(*graph.ClassicalLiteralPayload); ok {
				r.classicalOut[graph.EndPoint{Node: n.ID, Port: port}] = formatClassicalLiteral(n, lit)
			} else if op, ok := n.Payload.(*graph.OperatorPayload); ok {
				r.classicalOut[graph.EndPoint{Node: n.ID, Port: port}] = r.operatorText(g, b, n, op)
			}
		}
	}

	r.nodeLocal[n.ID] = local
	r.nodeOutputs[n.ID] = outputs
	return emitItem{NodeID: n.ID, Prepared: prepared}, nil
}

func (r *resolver) resolveIfThenElse(g *graph.Graph, n *graph.Node, b boundary) (emitItem, error) {
	payload, ok := n.Payload.(*graph.IfElsePayload)
	if !ok || payload == nil {
		return emitItem{}, cerr.NewAt(cerr.UnknownNodeKind, n.ID, "if-then-else node missing payload")
	}

	condEP := graph.EndPoint{Node: n.ID, Port: payload.CondPort}
	condText, ok := r.resolveClassicalInput(g, b, condEP)
	if !ok {
		return emitItem{}, cerr.NewAt(cerr.PortFanInViolation, n.ID, "condition port %d has no source", payload.CondPort)
	}

	nonCond := make([]int, 0, len(n.Inputs))
	for i := range n.Inputs {
		if i != payload.CondPort {
			nonCond = append(nonCond, i)
		}
	}

	thenBoundary := boundary{qubit: map[graph.EndPoint][]string{}, classical: map[graph.EndPoint]string{}, exposed: map[graph.EndPoint]bool{}}
	elseBoundary := boundary{qubit: map[graph.EndPoint][]string{}, classical: map[graph.EndPoint]string{}, exposed: map[graph.EndPoint]bool{}}
	for _, ep := range payload.ThenOutputs {
		thenBoundary.exposed[ep] = true
	}
	for _, ep := range payload.ElseOutputs {
		elseBoundary.exposed[ep] = true
	}
	for i, port := range nonCond {
		target := graph.EndPoint{Node: n.ID, Port: port}
		ids, ok := r.resolveQubitInput(g, b, target)
		if ok {
			if i < len(payload.ThenInputs) {
				thenBoundary.qubit[payload.ThenInputs[i]] = ids
			}
			if i < len(payload.ElseInputs) {
				elseBoundary.qubit[payload.ElseInputs[i]] = ids
			}
			continue
		}
		if text, ok := r.resolveClassicalInput(g, b, target); ok {
			if i < len(payload.ThenInputs) {
				thenBoundary.classical[payload.ThenInputs[i]] = text
			}
			if i < len(payload.ElseInputs) {
				elseBoundary.classical[payload.ElseInputs[i]] = text
			}
		}
	}

	// Then/Else were already fully validated (boundary ports exempted from
	// the fan-in-1 check) by the outer graph.Ingest call that got us here;
	// all that's needed now is their schedule.
	thenOrder, err := graph.TopoSort(payload.Then)
	if err != nil {
		return emitItem{}, err
	}
	elseOrder, err := graph.TopoSort(payload.Else)
	if err != nil {
		return emitItem{}, err
	}

	thenItems, err := r.resolveLevel(payload.Then, thenOrder, thenBoundary)
	if err != nil {
		return emitItem{}, err
	}
	elseItems, err := r.resolveLevel(payload.Else, elseOrder, elseBoundary)
	if err != nil {
		return emitItem{}, err
	}

	outputs := map[int][]string{}
	for p := range payload.ThenOutputs {
		thenIDs := r.outputIDs(payload.ThenOutputs[p])
		elseIDs := r.outputIDs(payload.ElseOutputs[p])
		// The common case (a pass-through or in-place-gate chain rooted at
		// a shared input) gives both branches the identical id chain
		// already. When they genuinely diverge (e.g. a branch-local
		// ancilla exposed as output) there is no register move in this
		// model to reconcile them, so a consumer downstream of the whole
		// if-then-else only ever sees the Then branch's physical slot;
		// documented as a known limitation.
		chosen := thenIDs
		if !sameIDs(thenIDs, elseIDs) {
			r.warnings[n.ID] = append(r.warnings[n.ID], fmt.Sprintf(
				"output port %d is computed from different physical qubits in each branch; "+
					"downstream consumers only see the then-branch's slot", p))
		}
		outputs[p] = chosen

		ep := graph.EndPoint{Node: n.ID, Port: p}
		if !hasOutgoingEdge(g, ep) && !b.exposesOutput(ep) {
			for _, id := range chosen {
				r.markOutput(id)
			}
		}
	}
	r.nodeOutputs[n.ID] = outputs

	return emitItem{NodeID: n.ID, CondText: condText, Then: thenItems, Else: elseItems}, nil
}

func (r *resolver) resolveQubitInput(g *graph.Graph, b boundary, target graph.EndPoint) ([]string, bool) {
	if ids, ok := b.qubit[target]; ok {
		return ids, true
	}
	for _, e := range g.Edges {
		if e.Target == target {
			return r.outputIDs(e.Source), true
		}
	}
	return nil, false
}

func (r *resolver) resolveClassicalInput(g *graph.Graph, b boundary, target graph.EndPoint) (string, bool) {
	if text, ok := b.classical[target]; ok {
		return text, true
	}
	for _, e := range g.Edges {
		if e.Target == target {
			if text, ok := r.classicalOut[e.Source]; ok {
				return text, true
			}
		}
	}
	return "", false
}

func (r *resolver) outputIDs(ep graph.EndPoint) []string {
	return r.nodeOutputs[ep.Node][ep.Port]
}

func (r *resolver) operatorText(g *graph.Graph, b boundary, n *graph.Node, op *graph.OperatorPayload) string {
	parts := make([]string, 0, len(n.Inputs))
	for i := range n.Inputs {
		text, ok := r.resolveClassicalInput(g, b, graph.EndPoint{Node: n.ID, Port: i})
		if !ok {
			text = "0"
		}
		parts = append(parts, text)
	}
	if len(parts) == 2 {
		return fmt.Sprintf("(%s %s %s)", parts[0], op.Op, parts[1])
	}
	return fmt.Sprintf("(%s %s)", op.Op, joinParts(parts))
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func (r *resolver) touch(id, nodeID string, rank int) {
	u, ok := r.usage[id]
	if !ok {
		u = &alloc.Usage{ID: id, BirthRank: rank, LastUseRank: rank}
		r.usage[id] = u
		r.owner[id] = nodeID
		return
	}
	if rank > u.LastUseRank {
		u.LastUseRank = rank
	}
}

func (r *resolver) markReusable(id string, rank int) {
	u := r.usage[id]
	if u == nil {
		return
	}
	u.Reusable = true
	u.LastUseRank = rank
}

func (r *resolver) markOutput(id string) {
	u := r.usage[id]
	if u == nil {
		return
	}
	u.Output = true
}

func (r *resolver) usages() []alloc.Usage {
	out := make([]alloc.Usage, 0, len(r.usage))
	for _, u := range r.usage {
		out = append(out, *u)
	}
	return out
}

func (b boundary) exposesOutput(ep graph.EndPoint) bool {
	return b.exposed[ep]
}

func hasOutgoingEdge(g *graph.Graph, ep graph.EndPoint) bool {
	for _, e := range g.Edges {
		if e.Source == ep {
			return true
		}
	}
	return false
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// classicalOutputPort returns the index of n's first non-quantum output
// port. prepare/ioparse's `@leqo.output` annotation only ever binds a
// qubit alias (spec.md's IO Parsing never defines a classical output
// binding), so a node's classical result — a measurement bit, a literal, an
// operator's result — is identified by port type alone rather than an
// annotation.
func classicalOutputPort(n *graph.Node) (int, bool) {
	for i, p := range n.Outputs {
		if p.Type != graph.PortQuantum {
			return i, true
		}
	}
	return 0, false
}

func measureTargetName(n *prepare.Node) string {
	for _, s := range n.Statements {
		if s.Kind == ast.KindMeasure && s.MeasureTarget != "" {
			return s.MeasureTarget
		}
	}
	return ""
}

func formatClassicalLiteral(n *graph.Node, lit *graph.ClassicalLiteralPayload) string {
	for _, p := range n.Outputs {
		if p.Type == graph.PortClassicalFloat {
			return fmt.Sprintf("%v", lit.FloatValue)
		}
	}
	return fmt.Sprintf("%d", lit.IntValue)
}

// builtinSnippet synthesizes the snippet for node kinds whose OpenQASM-3
// body is fully determined by their own port signature rather than
// anything a catalogue could look up: a bare passthrough, a fresh qubit or
// ancilla source, and the purely-classical kinds whose result never touches
// a qubit statement at all. A node carrying its own explicit Snippet (or,
// for KindQubit/KindAncilla, one a caller wants to run as qubit
// initialization) always wins over synthesis.
func builtinSnippet(n *graph.Node) (string, bool) {
	if n.Snippet != "" {
		return "", false
	}
	switch n.Kind {
	case graph.KindPassthrough:
		size := 1
		if len(n.Inputs) > 0 {
			size = n.Inputs[0].Size
		}
		return fmt.Sprintf("// @leqo.input 0\nqubit[%d] q;\n// @leqo.output 0\nlet out = q;\n", size), true
	case graph.KindQubit, graph.KindAncilla:
		size := 1
		if len(n.Outputs) > 0 {
			size = n.Outputs[0].Size
		}
		return fmt.Sprintf("qubit[%d] q;\n// @leqo.output 0\nlet out = q;\n", size), true
	case graph.KindClassicalLiteral, graph.KindOperator:
		return "", true
	default:
		return "", false
	}
}

// SnippetSource resolves a node's OpenQASM-3 snippet: the graph's own
// inline Snippet field, a caller-supplied per-node override, or the
// catalogue Enricher as a last resort (spec.md §6's "Enrich interface",
// called exactly once per unresolved node).
type SnippetSource struct {
	Inline   map[string]string
	Enricher catalogue.Enricher
}

func (s SnippetSource) resolve(ctx context.Context, n *graph.Node) (string, error) {
	if n.Snippet != "" {
		return n.Snippet, nil
	}
	if snip, ok := s.Inline[n.ID]; ok && snip != "" {
		return snip, nil
	}
	if s.Enricher == nil {
		return "", cerr.NewAt(cerr.MissingSnippet, n.ID, "no snippet supplied and no enricher configured")
	}
	snip, err := s.Enricher.Lookup(ctx, descriptorFor(n))
	if err != nil {
		return "", cerr.NewAt(cerr.MissingSnippet, n.ID, "enricher lookup failed: %v", err)
	}
	if snip == "" {
		return "", cerr.NewAt(cerr.MissingSnippet, n.ID, "no implementation found for %s node", n.Kind)
	}
	return snip, nil
}

func descriptorFor(n *graph.Node) catalogue.NodeDescriptor {
	d := catalogue.NodeDescriptor{Kind: n.Kind}
	switch p := n.Payload.(type) {
	case *graph.GatePayload:
		d.Gate = p.Gate
	case *graph.GateWithParamPayload:
		d.Gate = p.Gate
	case *graph.OperatorPayload:
		d.Op = p.Op
	case *graph.EncoderPayload:
		d.Scheme = p.Scheme
	}
	return d
}
