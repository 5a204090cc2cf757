// Package merge implements S5 Merging (spec.md §4.5): it rewrites every
// prepared node's qubit declarations into `let` aliases over a single
// global `qubit[N] leqo_reg;` register at the slots S4 assigned, splices
// the resulting statement lists in topological order framed by
// `/* Start node <id> */`/`/* End node <id> */` comments, and concatenates
// them into one program for S6 to canonicalize.
package merge

import (
	"fmt"
	"strings"

	"github.com/kegliz/leqo-compile/leqo/ast"
	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/prepare"
)

// Node is one prepared node plus the global register slots its own
// locally-declared qubits (internal and input-bound alike) were assigned.
// The pipeline builds SlotsForLocalQubit from the S4 Assignment: it is
// keyed by the (renamed) local declaration name and lists, per position,
// the slot of the global qubit id at that position, so both internal
// qubits and input-bound qubits — whose declared width may include
// freshly padded ancilla bits from Size Casting — are resolved exactly
// the same way here.
type Node struct {
	ID                 string
	Prepared           *prepare.Node
	SlotsForLocalQubit map[string][]int
}

// Merge splices nodesInOrder (already in topological order) into one
// statement list under a single `qubit[width] leqo_reg;` register.
func Merge(nodesInOrder []Node, width int) ([]*ast.Statement, error) {
	out := Preamble(width)
	for _, n := range nodesInOrder {
		body, err := NodeStatements(n)
		if err != nil {
			return nil, err
		}
		out = append(out, Frame(n.ID, body)...)
	}
	return out, nil
}

// Preamble is the canonical single `OPENQASM 3.1;`/`include "stdgates.inc";`
// /`qubit[width] leqo_reg;` header every merged program starts with.
func Preamble(width int) []*ast.Statement {
	return []*ast.Statement{
		{Kind: ast.KindRaw, Raw: "OPENQASM 3.1;"},
		{Kind: ast.KindInclude, IncludePath: "stdgates.inc"},
		{Kind: ast.KindQubitDecl, DeclName: "leqo_reg", DeclSize: width},
	}
}

// Frame wraps body in the `/* Start node <id> */`/`/* End node <id> */`
// comments that mark a node's contribution to the spliced program. Exported
// so the pipeline can frame a composite node's own wrapping construct (an
// if-then-else's runtime `if`/`else`) the same way it frames a flat node's
// body.
func Frame(id string, body []*ast.Statement) []*ast.Statement {
	out := make([]*ast.Statement, 0, len(body)+2)
	out = append(out, startComment(id))
	out = append(out, body...)
	out = append(out, endComment(id))
	return out
}

func startComment(id string) *ast.Statement {
	return &ast.Statement{Kind: ast.KindRaw, Raw: fmt.Sprintf("/* Start node %s */", id)}
}

func endComment(id string) *ast.Statement {
	return &ast.Statement{Kind: ast.KindRaw, Raw: fmt.Sprintf("/* End node %s */", id)}
}

// NodeStatements rewrites a single node's prepared statement list: its own
// `OPENQASM 3.1;`/`include "stdgates.inc";` preamble is dropped (the
// caller already emitted the single canonical one; any other, differently
// named include is left for S6 to dedupe), every qubit declaration
// becomes a `let` alias into leqo_reg at its assigned slots, and any
// retained output/reusable alias has its right-hand side re-expressed in
// terms of leqo_reg.
func NodeStatements(n Node) ([]*ast.Statement, error) {
	var out []*ast.Statement
	for _, s := range n.Prepared.Statements {
		switch {
		case s.Kind == ast.KindInclude && s.IncludePath == "stdgates.inc":
			continue
		case s.Kind == ast.KindRaw && isVersionPragma(s.Raw):
			continue
		}

		if s.Kind == ast.KindQubitDecl {
			alias, err := globalAliasFor(n.ID, s, n.SlotsForLocalQubit)
			if err != nil {
				return nil, err
			}
			out = append(out, alias)
			continue
		}

		if s.Kind == ast.KindAliasDecl && s.AliasResolved {
			rewritten, ok := resolveToGlobal(s.AliasExpr, n.SlotsForLocalQubit)
			if ok {
				s.AliasExpr = rewritten
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func isVersionPragma(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "OPENQASM")
}

func globalAliasFor(nodeID string, decl *ast.Statement, slots map[string][]int) (*ast.Statement, error) {
	positions, ok := slots[decl.DeclName]
	if !ok || len(positions) != decl.DeclSize {
		return nil, cerr.NewAt(cerr.PostprocessError, nodeID,
			"no complete slot assignment for qubit %q (declared size %d)", decl.DeclName, decl.DeclSize)
	}
	elems := make([]ast.IndexRef, len(positions))
	for i, slot := range positions {
		elems[i] = ast.IndexRef{Name: "leqo_reg", Pos: slot}
	}
	return &ast.Statement{
		Kind:          ast.KindAliasDecl,
		Annotations:   decl.Annotations,
		AliasName:     decl.DeclName,
		AliasExpr:     ast.IndexExpr{Elems: elems},
		AliasResolved: true,
	}, nil
}

// resolveToGlobal re-expresses expr (indexing local qubit declarations) in
// terms of leqo_reg slots, via the same SlotsForLocalQubit table
// globalAliasFor used for the declarations themselves.
func resolveToGlobal(expr ast.IndexExpr, slots map[string][]int) (ast.IndexExpr, bool) {
	elems := make([]ast.IndexRef, len(expr.Elems))
	for i, e := range expr.Elems {
		local, ok := slots[e.Name]
		if !ok || e.Pos < 0 || e.Pos >= len(local) {
			return ast.IndexExpr{}, false
		}
		elems[i] = ast.IndexRef{Name: "leqo_reg", Pos: local[e.Pos]}
	}
	return ast.IndexExpr{Elems: elems}, true
}
