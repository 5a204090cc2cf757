package merge

import (
	"strings"
	"testing"

	"github.com/kegliz/leqo-compile/leqo/prepare"
	"github.com/kegliz/leqo-compile/leqo/qasm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slotsFor builds the SlotsForLocalQubit map a pipeline would assemble
// from an alloc.Assignment: every position of every declared qubit in a
// prepared node maps to a contiguous block of global register slots
// starting at base.
func slotsFor(n *prepare.Node, base int) map[string][]int {
	out := map[string][]int{}
	next := base
	for _, in := range n.Inputs {
		slots := make([]int, in.Size)
		for i := range slots {
			slots[i] = next
			next++
		}
		out[in.Name] = slots
	}
	for _, q := range n.Internal {
		slots := make([]int, q.Size)
		for i := range slots {
			slots[i] = next
			next++
		}
		out[q.Name] = slots
	}
	return out
}

func TestMerge_SingleNode_FramingAndRegisterDecl(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	snippet := `OPENQASM 3.1;
include "stdgates.inc";
qubit[1] q;
h q[0];
// @leqo.output 0
let out = q;
`
	prepared, err := prepare.Prepare("n1", snippet)
	require.NoError(err)

	node := Node{ID: "n1", Prepared: prepared, SlotsForLocalQubit: slotsFor(prepared, 0)}
	stmts, err := Merge([]Node{node}, 1)
	require.NoError(err)

	text := qasm.Print(stmts)
	assert.Equal(1, strings.Count(text, "OPENQASM 3.1;"))
	assert.Equal(1, strings.Count(text, `include "stdgates.inc";`))
	assert.Contains(text, "qubit[1] leqo_reg;")
	assert.Contains(text, "/* Start node n1 */")
	assert.Contains(text, "/* End node n1 */")
	require.Len(prepared.Internal, 1)
	require.Len(prepared.Outputs, 1)
	assert.Contains(text, "let "+prepared.Internal[0].Name+" = leqo_reg[{0}];")
	assert.Contains(text, "let "+prepared.Outputs[0].Name+" = leqo_reg[{0}];")
}

func TestMerge_TwoNodes_DistinctSlotsAndOrderPreserved(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	snippetA := `qubit[1] a;
h a[0];
// @leqo.output 0
let out = a;
`
	snippetB := `// @leqo.input 0
qubit[1] b;
x b[0];
`
	prepA, err := prepare.Prepare("a", snippetA)
	require.NoError(err)
	prepB, err := prepare.Prepare("b", snippetB)
	require.NoError(err)

	nodeA := Node{ID: "a", Prepared: prepA, SlotsForLocalQubit: slotsFor(prepA, 0)}
	nodeB := Node{ID: "b", Prepared: prepB, SlotsForLocalQubit: slotsFor(prepB, 1)}

	stmts, err := Merge([]Node{nodeA, nodeB}, 2)
	require.NoError(err)
	text := qasm.Print(stmts)

	assert.Contains(text, "qubit[2] leqo_reg;")
	startA := strings.Index(text, "/* Start node a */")
	startB := strings.Index(text, "/* Start node b */")
	require.Greater(startB, startA, "nodes must stay in the order Merge received them")
	require.Len(prepB.Inputs, 1)
	assert.Contains(text, "let "+prepB.Inputs[0].Name+" = leqo_reg[{1}];")
}

func TestMerge_MissingSlotAssignment_Errors(t *testing.T) {
	require := require.New(t)

	prepared, err := prepare.Prepare("n", `qubit[1] q;
h q[0];
`)
	require.NoError(err)

	node := Node{ID: "n", Prepared: prepared, SlotsForLocalQubit: map[string][]int{}}
	_, err = Merge([]Node{node}, 1)
	require.Error(err)
}
