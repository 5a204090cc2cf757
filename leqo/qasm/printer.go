package qasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kegliz/leqo-compile/leqo/ast"
)

// Print serializes stmts as canonical OpenQASM 3.1 text: one statement per
// line, deterministic whitespace, leqo annotations re-emitted verbatim
// above their host statement (spec.md §6 "Emitted program invariants").
func Print(stmts []*ast.Statement) string {
	var b strings.Builder
	printBlock(&b, stmts, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func printBlock(b *strings.Builder, stmts []*ast.Statement, depth int) {
	for _, s := range stmts {
		printAnnotations(b, s, depth)
		printStatement(b, s, depth)
	}
}

func printAnnotations(b *strings.Builder, s *ast.Statement, depth int) {
	for _, a := range s.Annotations {
		indent(b, depth)
		switch a.Kind {
		case ast.AnnotationInput:
			fmt.Fprintf(b, "// @leqo.input %d\n", a.Index)
		case ast.AnnotationOutput:
			fmt.Fprintf(b, "// @leqo.output %d\n", a.Index)
		case ast.AnnotationReusable:
			b.WriteString("// @leqo.reusable\n")
		}
	}
}

func printStatement(b *strings.Builder, s *ast.Statement, depth int) {
	indent(b, depth)
	switch s.Kind {
	case ast.KindRaw:
		b.WriteString(s.Raw)
		b.WriteString("\n")

	case ast.KindInclude:
		fmt.Fprintf(b, "include %q;\n", s.IncludePath)

	case ast.KindQubitDecl:
		if s.DeclSize == 0 {
			fmt.Fprintf(b, "qubit %s;\n", s.DeclName)
		} else {
			fmt.Fprintf(b, "qubit[%d] %s;\n", s.DeclSize, s.DeclName)
		}

	case ast.KindClassicalDecl:
		b.WriteString(s.Raw)
		b.WriteString("\n")

	case ast.KindAliasDecl:
		fmt.Fprintf(b, "let %s = %s;\n", s.AliasName, aliasRHS(s))

	case ast.KindGateCall:
		if len(s.GateArgs) > 0 {
			fmt.Fprintf(b, "%s(%s) %s;\n", s.GateName, strings.Join(s.GateArgs, ", "), strings.Join(s.GateQubits, ", "))
		} else {
			fmt.Fprintf(b, "%s %s;\n", s.GateName, strings.Join(s.GateQubits, ", "))
		}

	case ast.KindMeasure:
		if s.MeasureTarget != "" {
			fmt.Fprintf(b, "bit[1] %s = measure %s;\n", s.MeasureTarget, s.MeasureQubit)
		} else {
			fmt.Fprintf(b, "measure %s;\n", s.MeasureQubit)
		}

	case ast.KindIf:
		fmt.Fprintf(b, "if (%s) {\n", s.IfCond)
		printBlock(b, s.Then, depth+1)
		if len(s.Else) > 0 {
			indent(b, depth)
			b.WriteString("} else {\n")
			printBlock(b, s.Else, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")

	case ast.KindBlock:
		printBlock(b, s.Children, depth)

	default:
		b.WriteString(s.Raw)
		b.WriteString("\n")
	}
}

func aliasRHS(s *ast.Statement) string {
	if !s.AliasResolved {
		return s.AliasRawExpr
	}
	return FormatIndexExpr(s.AliasExpr)
}

// FormatIndexExpr renders a resolved index expression, grouping
// consecutive Elems that share the same source name into that name's
// bracketed index-set form, and joining groups with `++`.
func FormatIndexExpr(e ast.IndexExpr) string {
	if len(e.Elems) == 0 {
		return ""
	}
	var parts []string
	i := 0
	for i < len(e.Elems) {
		name := e.Elems[i].Name
		j := i
		var idx []int
		for j < len(e.Elems) && e.Elems[j].Name == name {
			idx = append(idx, e.Elems[j].Pos)
			j++
		}
		parts = append(parts, fmt.Sprintf("%s[%s]", name, FormatIndexSet(idx)))
		i = j
	}
	return strings.Join(parts, " ++ ")
}

// FormatIndexSet renders a list of register positions as an OpenQASM-3
// index-set literal, e.g. {0, 1, 2}.
func FormatIndexSet(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
