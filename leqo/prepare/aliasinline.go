package prepare

import (
	"strconv"
	"strings"

	"github.com/kegliz/leqo-compile/leqo/ast"
)

// inlineAliases resolves every `let name = expr;` whose right-hand side is
// a constant slice/concat over an earlier qubit declaration or alias, then
// replaces subsequent qubit-operand references to name by the resolved
// literal reference and drops the alias statement — except aliases
// carrying @leqo.output or @leqo.reusable, which are retained (with their
// right-hand side resolved) since they are the node's contract surface (spec.md §4.3). Returns the
// rewritten statement list and the map of every resolved alias (including
// retained ones), keyed by the alias's (already renamed) identifier.
func inlineAliases(stmts []*ast.Statement, qubitSizes map[string]int) ([]*ast.Statement, map[string]ast.IndexExpr) {
	resolved := map[string]ast.IndexExpr{}
	out := inlinePass(stmts, qubitSizes, resolved)
	return out, resolved
}

func inlinePass(stmts []*ast.Statement, qubitSizes map[string]int, resolved map[string]ast.IndexExpr) []*ast.Statement {
	kept := make([]*ast.Statement, 0, len(stmts))
	for _, s := range stmts {
		if s == nil {
			continue
		}
		if s.Kind == ast.KindIf {
			s.Then = inlinePass(s.Then, qubitSizes, resolved)
			s.Else = inlinePass(s.Else, qubitSizes, resolved)
			kept = append(kept, s)
			continue
		}
		if s.Kind != ast.KindAliasDecl {
			substituteRefs(s, resolved)
			kept = append(kept, s)
			continue
		}

		expr, ok := resolveAliasExpr(s.AliasRawExpr, qubitSizes, resolved)
		if ok {
			s.AliasExpr = expr
			s.AliasResolved = true
			resolved[s.AliasName] = expr
		}

		_, isOutput := s.AnnotationOf(ast.AnnotationOutput)
		_, isReusable := s.AnnotationOf(ast.AnnotationReusable)
		if isOutput || isReusable || !ok {
			// contract-surface aliases are retained; unresolved aliases
			// (e.g. depend on a runtime loop variable) are left in place
			// rather than failing the whole snippet — IO Parsing only
			// requires output/reusable aliases to resolve.
			kept = append(kept, s)
			continue
		}
		// plain internal alias, fully resolved: inline and drop.
	}
	return kept
}

// substituteRefs rewrites gate-operand and measure-operand references to
// any already-resolved alias name into an explicit qubit reference drawn
// from its resolved IndexExpr.
func substituteRefs(s *ast.Statement, resolved map[string]ast.IndexExpr) {
	switch s.Kind {
	case ast.KindGateCall:
		for i, q := range s.GateQubits {
			s.GateQubits[i] = substituteRef(q, resolved)
		}
	case ast.KindMeasure:
		s.MeasureQubit = substituteRef(s.MeasureQubit, resolved)
	}
}

func substituteRef(ref string, resolved map[string]ast.IndexExpr) string {
	name, spec := splitIndexSuffix(ref)
	expr, ok := resolved[name]
	if !ok {
		return ref
	}
	if spec == "" {
		if len(expr.Elems) != 1 {
			return ref // ambiguous multi-qubit bare reference; leave as-is
		}
		return qubitRefText(expr.Elems[0])
	}
	idxText := strings.TrimSuffix(strings.TrimPrefix(spec, "["), "]")
	idx, err := strconv.Atoi(strings.TrimSpace(idxText))
	if err != nil || idx < 0 || idx >= len(expr.Elems) {
		return ref
	}
	return qubitRefText(expr.Elems[idx])
}

func qubitRefText(r ast.IndexRef) string {
	return r.Name + "[" + strconv.Itoa(r.Pos) + "]"
}

// resolveAliasExpr resolves a `let` right-hand side — a single register
// reference, a slice, or a "++"-joined concatenation of either — into a
// flat list of (declared-name, index) pairs.
func resolveAliasExpr(raw string, qubitSizes map[string]int, resolved map[string]ast.IndexExpr) (ast.IndexExpr, bool) {
	parts := strings.Split(raw, "++")
	var elems []ast.IndexRef
	for _, part := range parts {
		atom, ok := resolveAtom(strings.TrimSpace(part), qubitSizes, resolved)
		if !ok {
			return ast.IndexExpr{}, false
		}
		elems = append(elems, atom.Elems...)
	}
	return ast.IndexExpr{Elems: elems}, true
}

func resolveAtom(atom string, qubitSizes map[string]int, resolved map[string]ast.IndexExpr) (ast.IndexExpr, bool) {
	name, suffix := splitIndexSuffix(atom)
	spec := strings.TrimSuffix(strings.TrimPrefix(suffix, "["), "]")

	if size, ok := qubitSizes[name]; ok {
		if spec == "" {
			elems := make([]ast.IndexRef, size)
			for i := 0; i < size; i++ {
				elems[i] = ast.IndexRef{Name: name, Pos: i}
			}
			return ast.IndexExpr{Elems: elems}, true
		}
		return resolveSpecOverSize(name, spec, size)
	}
	if expr, ok := resolved[name]; ok {
		if spec == "" {
			return expr, true
		}
		return resolveSpecOverExpr(expr, spec)
	}
	return ast.IndexExpr{}, false
}

func resolveSpecOverSize(name, spec string, size int) (ast.IndexExpr, bool) {
	if a, b, ok := parseRange(spec); ok {
		if a < 0 || b >= size || a > b {
			return ast.IndexExpr{}, false
		}
		elems := make([]ast.IndexRef, 0, b-a+1)
		for i := a; i <= b; i++ {
			elems = append(elems, ast.IndexRef{Name: name, Pos: i})
		}
		return ast.IndexExpr{Elems: elems}, true
	}
	idx, err := strconv.Atoi(strings.TrimSpace(spec))
	if err != nil || idx < 0 || idx >= size {
		return ast.IndexExpr{}, false
	}
	return ast.IndexExpr{Elems: []ast.IndexRef{{Name: name, Pos: idx}}}, true
}

func resolveSpecOverExpr(expr ast.IndexExpr, spec string) (ast.IndexExpr, bool) {
	size := len(expr.Elems)
	if a, b, ok := parseRange(spec); ok {
		if a < 0 || b >= size || a > b {
			return ast.IndexExpr{}, false
		}
		return ast.IndexExpr{Elems: append([]ast.IndexRef{}, expr.Elems[a:b+1]...)}, true
	}
	idx, err := strconv.Atoi(strings.TrimSpace(spec))
	if err != nil || idx < 0 || idx >= size {
		return ast.IndexExpr{}, false
	}
	return ast.IndexExpr{Elems: []ast.IndexRef{expr.Elems[idx]}}, true
}

func parseRange(spec string) (a, b int, ok bool) {
	if !strings.Contains(spec, ":") {
		return 0, 0, false
	}
	bounds := strings.SplitN(spec, ":", 2)
	lo, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
