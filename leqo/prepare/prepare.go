package prepare

import (
	"github.com/kegliz/leqo-compile/leqo/ast"
	"github.com/kegliz/leqo-compile/leqo/ids"
	"github.com/kegliz/leqo-compile/leqo/qasm"
)

// QubitDecl is a renamed qubit declaration a prepared node owns that is
// not bound to any input port (spec.md's "internal qubits" of the
// Prepared Node data model).
type QubitDecl struct {
	Name string
	Size int
}

// Node is the Prepared Node artifact of spec.md §3/§4.3: a node's mutated
// snippet AST plus its resolved IO bindings, internal qubits, and
// reusable set.
type Node struct {
	NodeID     string
	Statements []*ast.Statement
	Inputs     []InputBinding
	Outputs    []OutputBinding
	Internal   []QubitDecl
	Reusable   []ast.IndexRef
}

// Prepare runs S3's four sub-transforms over a node's snippet, in order:
// Renaming, Alias Inlining, IO Parsing, and (input-binding collection for)
// Size Casting. Size Casting's actual width reconciliation happens later,
// once the upstream edge size is known (see CastSize).
func Prepare(nodeID, snippet string) (*Node, error) {
	prog, err := qasm.Parse(snippet)
	if err != nil {
		return nil, err
	}

	prefix := ids.NodePrefix(nodeID)
	rename(prog.Statements, prefix)

	qubitSizes := map[string]int{}
	ast.Walk(prog.Statements, func(s *ast.Statement) {
		if s != nil && s.Kind == ast.KindQubitDecl {
			qubitSizes[s.DeclName] = s.DeclSize
		}
	})

	stmts, _ := inlineAliases(prog.Statements, qubitSizes)

	io, err := parseIO(nodeID, stmts)
	if err != nil {
		return nil, err
	}

	boundInputNames := map[string]bool{}
	for _, b := range io.Inputs {
		boundInputNames[b.Name] = true
	}
	var internal []QubitDecl
	ast.Walk(stmts, func(s *ast.Statement) {
		if s != nil && s.Kind == ast.KindQubitDecl && !boundInputNames[s.DeclName] {
			internal = append(internal, QubitDecl{Name: s.DeclName, Size: s.DeclSize})
		}
	})

	return &Node{
		NodeID:     nodeID,
		Statements: stmts,
		Inputs:     io.Inputs,
		Outputs:    io.Outputs,
		Internal:   internal,
		Reusable:   io.Reusable,
	}, nil
}
