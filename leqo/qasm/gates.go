package qasm

import "strings"

// builtinArity is the known qubit-operand count for every gate the merger
// recognises from "stdgates.inc", adapted from the teacher's
// qc/gate.Gate/Factory singleton-table idiom (qc/gate/builtin.go) into a
// plain lookup table: the merger only needs arity to sanity-check gate
// calls, not the draw symbols or control/target split the simulator-facing
// Gate interface carried.
var builtinArity = map[string]int{
	"h": 1, "x": 1, "y": 1, "z": 1, "s": 1, "sdg": 1, "t": 1, "tdg": 1,
	"rx": 1, "ry": 1, "rz": 1, "p": 1, "id": 1, "reset": 1,
	"cx": 2, "cnot": 2, "cy": 2, "cz": 2, "ch": 2, "swap": 2,
	"crx": 2, "cry": 2, "crz": 2, "cp": 2,
	"ccx": 3, "toffoli": 3, "cswap": 3, "fredkin": 3,
}

// KnownArity reports the expected qubit-operand count for a builtin gate
// name, and whether the name is recognised at all (custom gate definitions
// declared inside a snippet are always accepted without arity checking).
func KnownArity(name string) (int, bool) {
	n, ok := builtinArity[strings.ToLower(name)]
	return n, ok
}
