package prepare

import (
	"sort"

	"github.com/kegliz/leqo-compile/leqo/ast"
	"github.com/kegliz/leqo-compile/leqo/cerr"
)

// InputBinding maps an input port index to the qubit declaration a
// snippet's `@leqo.input i` annotation bound it to.
type InputBinding struct {
	Port int
	Name string
	Size int
}

// OutputBinding maps an output port index to the resolved qubit index set
// a snippet's `@leqo.output j` alias aliases.
type OutputBinding struct {
	Port   int
	Name   string
	Qubits ast.IndexExpr
}

// ioBindings is the result of walking a node's prepared statements for
// leqo annotations (spec.md §4.3 "IO Parsing").
type ioBindings struct {
	Inputs   []InputBinding
	Outputs  []OutputBinding
	Reusable []ast.IndexRef
}

func parseIO(nodeID string, stmts []*ast.Statement) (ioBindings, error) {
	var result ioBindings

	var walkErr error
	ast.Walk(stmts, func(s *ast.Statement) {
		if s == nil || walkErr != nil {
			return
		}
		if len(s.Annotations) > 1 {
			kinds := map[ast.AnnotationKind]bool{}
			for _, a := range s.Annotations {
				if kinds[a.Kind] {
					walkErr = cerr.NewAt(cerr.AnnotationMultipleOnStmt, nodeID, "duplicate annotation kind on one statement")
					return
				}
				kinds[a.Kind] = true
			}
		}
		for _, a := range s.Annotations {
			switch a.Kind {
			case ast.AnnotationInput:
				if s.Kind != ast.KindQubitDecl {
					walkErr = cerr.NewAt(cerr.AnnotationWrongHost, nodeID, "@leqo.input must precede a qubit declaration")
					return
				}
				result.Inputs = append(result.Inputs, InputBinding{Port: a.Index, Name: s.DeclName, Size: s.DeclSize})

			case ast.AnnotationOutput:
				if s.Kind != ast.KindAliasDecl {
					walkErr = cerr.NewAt(cerr.AnnotationWrongHost, nodeID, "@leqo.output must precede an alias declaration")
					return
				}
				if !s.AliasResolved {
					walkErr = cerr.NewAt(cerr.AnnotationWrongHost, nodeID, "@leqo.output alias %q does not resolve to a constant qubit index set", s.AliasName)
					return
				}
				result.Outputs = append(result.Outputs, OutputBinding{Port: a.Index, Name: s.AliasName, Qubits: s.AliasExpr})

			case ast.AnnotationReusable:
				if s.Kind != ast.KindAliasDecl {
					walkErr = cerr.NewAt(cerr.AnnotationWrongHost, nodeID, "@leqo.reusable must precede an alias declaration")
					return
				}
				if !s.AliasResolved {
					walkErr = cerr.NewAt(cerr.AnnotationWrongHost, nodeID, "@leqo.reusable alias %q does not resolve to a constant qubit index set", s.AliasName)
					return
				}
				result.Reusable = append(result.Reusable, s.AliasExpr.Elems...)
			}
		}
	})
	if walkErr != nil {
		return ioBindings{}, walkErr
	}

	if err := checkContiguous(nodeID, inputPorts(result.Inputs)); err != nil {
		return ioBindings{}, err
	}
	if err := checkContiguous(nodeID, outputPorts(result.Outputs)); err != nil {
		return ioBindings{}, err
	}

	seen := map[int]bool{}
	for _, b := range result.Inputs {
		if seen[b.Port] {
			return ioBindings{}, cerr.NewAt(cerr.AnnotationDuplicateIndex, nodeID, "input index %d used more than once", b.Port)
		}
		seen[b.Port] = true
	}
	seen = map[int]bool{}
	for _, b := range result.Outputs {
		if seen[b.Port] {
			return ioBindings{}, cerr.NewAt(cerr.AnnotationDuplicateIndex, nodeID, "output index %d used more than once", b.Port)
		}
		seen[b.Port] = true
	}

	if err := checkContiguous(nodeID, inputPorts(result.Inputs)); err != nil {
		return ioBindings{}, err
	}
	if err := checkContiguous(nodeID, outputPorts(result.Outputs)); err != nil {
		return ioBindings{}, err
	}

	qubitOwner := map[ast.IndexRef]int{}
	for _, b := range result.Outputs {
		for _, ref := range b.Qubits.Elems {
			if other, ok := qubitOwner[ref]; ok && other != b.Port {
				return ioBindings{}, cerr.NewAt(cerr.AnnotationOutputOverlap, nodeID, "qubit %s[%d] claimed by outputs %d and %d", ref.Name, ref.Pos, other, b.Port)
			}
			qubitOwner[ref] = b.Port
		}
	}
	for _, ref := range result.Reusable {
		if _, ok := qubitOwner[ref]; ok {
			return ioBindings{}, cerr.NewAt(cerr.AnnotationReusableOverlapsOutput, nodeID, "qubit %s[%d] is both reusable and an output", ref.Name, ref.Pos)
		}
	}

	sort.Slice(result.Inputs, func(i, j int) bool { return result.Inputs[i].Port < result.Inputs[j].Port })
	sort.Slice(result.Outputs, func(i, j int) bool { return result.Outputs[i].Port < result.Outputs[j].Port })
	return result, nil
}

func inputPorts(b []InputBinding) []int {
	out := make([]int, len(b))
	for i, x := range b {
		out[i] = x.Port
	}
	return out
}

func outputPorts(b []OutputBinding) []int {
	out := make([]int, len(b))
	for i, x := range b {
		out[i] = x.Port
	}
	return out
}

// checkContiguous verifies ports forms exactly {0, ..., len(ports)-1}; a
// repeated index fails with AnnotationDuplicateIndex.
func checkContiguous(nodeID string, ports []int) error {
	if len(ports) == 0 {
		return nil
	}
	present := map[int]bool{}
	for _, p := range ports {
		if present[p] {
			return cerr.NewAt(cerr.AnnotationDuplicateIndex, nodeID, "index %d used more than once", p)
		}
		present[p] = true
	}
	for i := 0; i < len(ports); i++ {
		if !present[i] {
			return cerr.NewAt(cerr.AnnotationNonContiguous, nodeID, "indices must form 0..%d contiguous, missing %d", len(ports)-1, i)
		}
	}
	return nil
}
