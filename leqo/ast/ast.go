// Package ast is the tagged-variant statement tree the pipeline rewrites
// snippets through (spec.md §9 "AST representation"). Annotations are a
// sidecar on each statement rather than a parallel type hierarchy, which
// keeps validation (leqo/prepare's IO Parsing) a pure pattern match instead
// of a polymorphism explosion.
package ast

// Kind tags a Statement's concrete shape.
type Kind int

const (
	KindInclude Kind = iota
	KindQubitDecl
	KindClassicalDecl
	KindAliasDecl
	KindGateCall
	KindMeasure
	KindIf
	KindBlock
	KindRaw // any statement text the pipeline does not need to understand structurally
)

func (k Kind) String() string {
	switch k {
	case KindInclude:
		return "Include"
	case KindQubitDecl:
		return "QubitDecl"
	case KindClassicalDecl:
		return "ClassicalDecl"
	case KindAliasDecl:
		return "AliasDecl"
	case KindGateCall:
		return "GateCall"
	case KindMeasure:
		return "Measure"
	case KindIf:
		return "If"
	case KindBlock:
		return "Block"
	default:
		return "Raw"
	}
}

// AnnotationKind is the closed set of leqo annotations recognised above a
// statement (spec.md §3, §6 "Annotation grammar").
type AnnotationKind int

const (
	AnnotationNone AnnotationKind = iota
	AnnotationInput
	AnnotationOutput
	AnnotationReusable
)

// Annotation is a single `@leqo.*` line immediately preceding a statement.
type Annotation struct {
	Kind  AnnotationKind
	Index int // meaningful for Input/Output only
}

// IndexExpr is a resolved (or unresolved) qubit index set: either a plain
// declared register name of a given size, or a concat/slice expression over
// earlier names. Alias Inlining (leqo/prepare) collapses chained IndexExprs
// down to a flat list of (name, index) pairs referencing only qubit
// declarations, never other aliases.
type IndexExpr struct {
	// Elems is the ordered list of (source name, index-within-source) pairs
	// this expression resolves to. For a bare declaration of size n this is
	// {(name, 0), (name, 1), ..., (name, n-1)}. For `a[2:3] ++ b[0]` it is
	// {(a,2),(a,3),(b,0)}.
	Elems []IndexRef
}

// IndexRef names one qubit by the identifier that declared it and its
// position within that identifier's register.
type IndexRef struct {
	Name string
	Pos  int
}

func (e IndexExpr) Size() int { return len(e.Elems) }

// Statement is one node of the tagged-variant tree. Only the fields
// relevant to Kind are populated; visitors dispatch on Kind.
type Statement struct {
	Kind        Kind
	Annotations []Annotation

	// KindInclude
	IncludePath string

	// KindQubitDecl
	DeclName string
	DeclSize int // register width; the parser records a bare `qubit name;` as 1, the printer writes the bare form only for 0

	// KindClassicalDecl
	ClassicalType string // "int", "float", "bit"
	ClassicalSize int

	// KindAliasDecl (`let name = expr;`)
	AliasName string
	AliasExpr IndexExpr
	// AliasRawExpr preserves the original right-hand-side text when it
	// could not be resolved to a constant index set at parse time (e.g. it
	// references a classical loop variable); Alias Inlining then leaves it
	// untouched instead of failing the whole snippet.
	AliasRawExpr string
	AliasResolved bool

	// KindGateCall
	GateName   string
	GateArgs   []string // classical parameter expressions, e.g. rotation angles
	GateQubits []string // operand identifiers as written, pre-rename

	// KindMeasure (`bit[...] name = measure qubitExpr;` or bare `measure q;`)
	MeasureTarget string
	MeasureQubit  string

	// KindIf
	IfCond string
	Then   []*Statement
	Else   []*Statement

	// KindBlock groups child statements without its own semantics; the
	// printer writes its children in place. No pipeline stage builds one.
	Children []*Statement

	// KindRaw / fallback verbatim text for anything the merger only needs
	// to relocate, never interpret (gate/function definitions, barriers,
	// reset, classical assignment, …).
	Raw string
}

// Program is a full parsed snippet: a flat top-level statement list plus
// whatever includes/decls/etc it contains.
type Program struct {
	Statements []*Statement
}

// Walk calls fn for every statement in the tree, depth-first, including
// nested If branches. fn may mutate the statement in place.
func Walk(stmts []*Statement, fn func(*Statement)) {
	for _, s := range stmts {
		fn(s)
		if s == nil {
			continue
		}
		if len(s.Then) > 0 {
			Walk(s.Then, fn)
		}
		if len(s.Else) > 0 {
			Walk(s.Else, fn)
		}
		if len(s.Children) > 0 {
			Walk(s.Children, fn)
		}
	}
}

// AnnotationOf returns the first annotation of the given kind on s, and
// whether one was present.
func (s *Statement) AnnotationOf(k AnnotationKind) (Annotation, bool) {
	for _, a := range s.Annotations {
		if a.Kind == k {
			return a, true
		}
	}
	return Annotation{}, false
}
