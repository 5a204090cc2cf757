// Package prepare implements S3 Per-Node Preprocessing: Renaming, Alias
// Inlining, IO Parsing, and Size Casting over a node's parsed snippet AST
// (spec.md §4.3), producing the Prepared Node artifact S4 and S5 consume.
package prepare

import (
	"regexp"
	"strings"

	"github.com/kegliz/leqo-compile/leqo/ast"
)

// rename rewrites every identifier a snippet declares (qubits, classical
// variables, aliases) to carry prefix, leaving built-in references
// (include paths, gate names, anything not declared in this snippet)
// untouched — spec.md §4.3 "no two prepared nodes share any declared
// identifier; built-in identifiers are never renamed".
func rename(stmts []*ast.Statement, prefix string) {
	declared := map[string]bool{}
	ast.Walk(stmts, func(s *ast.Statement) {
		if s == nil {
			return
		}
		switch s.Kind {
		case ast.KindQubitDecl, ast.KindClassicalDecl:
			if s.DeclName != "" {
				declared[s.DeclName] = true
			}
		case ast.KindAliasDecl:
			if s.AliasName != "" {
				declared[s.AliasName] = true
			}
		case ast.KindMeasure:
			if s.MeasureTarget != "" {
				base, _ := splitIndexSuffix(s.MeasureTarget)
				declared[base] = true
			}
		}
	})
	if len(declared) == 0 {
		return
	}

	rewriteIdent := func(raw string) string {
		base, suffix := splitIndexSuffix(raw)
		if declared[base] {
			return prefix + base + suffix
		}
		return raw
	}
	rewriteText := func(text string) string {
		for name := range declared {
			text = identBoundary(name).ReplaceAllString(text, prefix+name)
		}
		return text
	}

	ast.Walk(stmts, func(s *ast.Statement) {
		if s == nil {
			return
		}
		switch s.Kind {
		case ast.KindQubitDecl, ast.KindClassicalDecl:
			if declared[s.DeclName] {
				s.DeclName = prefix + s.DeclName
			}
		case ast.KindAliasDecl:
			if declared[s.AliasName] {
				s.AliasName = prefix + s.AliasName
			}
			for i := range s.AliasExpr.Elems {
				if declared[s.AliasExpr.Elems[i].Name] {
					s.AliasExpr.Elems[i].Name = prefix + s.AliasExpr.Elems[i].Name
				}
			}
			if s.AliasRawExpr != "" {
				s.AliasRawExpr = rewriteText(s.AliasRawExpr)
			}
		case ast.KindGateCall:
			for i, q := range s.GateQubits {
				s.GateQubits[i] = rewriteIdent(q)
			}
			for i, a := range s.GateArgs {
				s.GateArgs[i] = rewriteText(a)
			}
		case ast.KindMeasure:
			s.MeasureQubit = rewriteIdent(s.MeasureQubit)
			if base, _ := splitIndexSuffix(s.MeasureTarget); declared[base] {
				s.MeasureTarget = rewriteIdent(s.MeasureTarget)
			}
		case ast.KindRaw:
			s.Raw = rewriteText(s.Raw)
		}
	})
}

// splitIndexSuffix splits "name[spec]" into ("name", "[spec]"), or returns
// raw unchanged with an empty suffix when there is no index.
func splitIndexSuffix(raw string) (name, suffix string) {
	if i := strings.IndexByte(raw, '['); i >= 0 {
		return raw[:i], raw[i:]
	}
	return raw, ""
}

// identBoundary compiles a fresh regexp on every call; nothing is cached.
// Each snippet's declared-name set is small.
func identBoundary(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
}
