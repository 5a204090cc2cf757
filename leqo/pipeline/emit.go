package pipeline

import (
	"fmt"

	"github.com/kegliz/leqo-compile/leqo/alloc"
	"github.com/kegliz/leqo-compile/leqo/ast"
	"github.com/kegliz/leqo-compile/leqo/merge"
)

// emitter translates the resolver's global string qubit ids to their final
// S4 register slots and splices the emitItem tree into one statement list
// (spec.md §4.5). Kept separate from resolver so S4's single combined
// AllocateGreedy call sits cleanly between resolution and emission.
type emitter struct {
	assignment alloc.Assignment
	local      map[string]map[string][]string // nodeID -> local decl name -> global ids
}

func (e emitter) emitAll(items []emitItem) ([]*ast.Statement, error) {
	var out []*ast.Statement
	for _, it := range items {
		stmts, err := e.emitOne(it)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func (e emitter) emitOne(it emitItem) ([]*ast.Statement, error) {
	if it.isIf() {
		return e.emitIf(it)
	}
	return e.emitFlat(it)
}

func (e emitter) emitFlat(it emitItem) ([]*ast.Statement, error) {
	slots, err := e.slotsFor(it.NodeID)
	if err != nil {
		return nil, err
	}
	body, err := merge.NodeStatements(merge.Node{ID: it.NodeID, Prepared: it.Prepared, SlotsForLocalQubit: slots})
	if err != nil {
		return nil, err
	}
	return merge.Frame(it.NodeID, body), nil
}

func (e emitter) emitIf(it emitItem) ([]*ast.Statement, error) {
	thenBody, err := e.emitAll(it.Then)
	if err != nil {
		return nil, err
	}
	elseBody, err := e.emitAll(it.Else)
	if err != nil {
		return nil, err
	}
	ifStmt := &ast.Statement{Kind: ast.KindIf, IfCond: it.CondText, Then: thenBody, Else: elseBody}
	return merge.Frame(it.NodeID, []*ast.Statement{ifStmt}), nil
}

// slotsFor translates one node's local decl name -> global id map into the
// final register slots merge.NodeStatements needs.
func (e emitter) slotsFor(nodeID string) (map[string][]int, error) {
	decl, ok := e.local[nodeID]
	if !ok {
		return map[string][]int{}, nil
	}
	out := make(map[string][]int, len(decl))
	for name, ids := range decl {
		slots := make([]int, len(ids))
		for i, id := range ids {
			slot, ok := e.assignment.SlotOf[id]
			if !ok {
				return nil, fmt.Errorf("pipeline: no slot assigned for qubit id %q (node %s, decl %s)", id, nodeID, name)
			}
			slots[i] = slot
		}
		out[name] = slots
	}
	return out, nil
}
