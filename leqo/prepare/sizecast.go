package prepare

import "github.com/kegliz/leqo-compile/leqo/cerr"

// CastSize reconciles a snippet's declared input-port size against the
// size actually arriving over the upstream graph edge (spec.md §4.3 "Size
// Casting"). It returns the number of fresh |0> ancilla qubits the merger
// must append to widen the supplied value up to the declared size, or an
// error if the edge overflows the declaration or widening is disallowed.
// leqo/pipeline's resolver calls it once the actual edge size feeding
// a prepared node's input port is known — not during per-node Prepare,
// which only ever sees the node's own declaration.
func CastSize(nodeID string, port int, nDecl, nEdge int, exact bool) (padding int, err error) {
	switch {
	case nEdge == nDecl:
		return 0, nil
	case nEdge < nDecl:
		if exact {
			return 0, cerr.NewAt(cerr.SizeMismatch, nodeID,
				"input port %d is flagged exact: declared size %d, edge supplies %d", port, nDecl, nEdge)
		}
		return nDecl - nEdge, nil
	default:
		return 0, cerr.NewAt(cerr.SizeMismatch, nodeID,
			"input port %d: edge supplies %d qubits, exceeds declared size %d", port, nEdge, nDecl)
	}
}
