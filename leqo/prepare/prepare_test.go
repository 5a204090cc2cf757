package prepare

import (
	"testing"

	"github.com/kegliz/leqo-compile/leqo/ast"
	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_RenamesAndBindsIO(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	snippet := `OPENQASM 3.1;
include "stdgates.inc";
// @leqo.input 0
qubit[2] q;
qubit[1] anc;
h q[0];
cx q[0], q[1];
x anc[0];
// @leqo.output 0
let out = q;
// @leqo.reusable
let scratch = anc;
`
	node, err := Prepare("node1", snippet)
	require.NoError(err)

	require.Len(node.Inputs, 1)
	assert.Equal(0, node.Inputs[0].Port)
	assert.Contains(node.Inputs[0].Name, "q")

	require.Len(node.Outputs, 1)
	assert.Equal(0, node.Outputs[0].Port)
	assert.Equal(2, node.Outputs[0].Qubits.Size())

	require.Len(node.Reusable, 1)

	require.Len(node.Internal, 1)
	assert.Contains(node.Internal[0].Name, "anc")

	var gateNames []string
	ast.Walk(node.Statements, func(s *ast.Statement) {
		if s != nil && s.Kind == ast.KindGateCall {
			gateNames = append(gateNames, s.GateQubits...)
		}
	})
	for _, q := range gateNames {
		assert.NotEqual("q[0]", q, "declared identifiers must be renamed")
	}
}

func TestPrepare_AliasInlining_DropsInternalAlias(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	snippet := `qubit[2] q;
let tmp = q[0:1];
h tmp[0];
// @leqo.output 0
let out = q;
`
	node, err := Prepare("node2", snippet)
	require.NoError(err)

	var sawTmpDecl bool
	ast.Walk(node.Statements, func(s *ast.Statement) {
		if s != nil && s.Kind == ast.KindAliasDecl && s.AliasName != "" {
			if s.Annotations == nil {
				sawTmpDecl = true
			}
		}
	})
	assert.False(sawTmpDecl, "internal alias should have been inlined away")

	var gateQubit string
	ast.Walk(node.Statements, func(s *ast.Statement) {
		if s != nil && s.Kind == ast.KindGateCall {
			gateQubit = s.GateQubits[0]
		}
	})
	assert.Contains(gateQubit, "q[0]")
}

func TestPrepare_OutputOnNonAlias_WrongHost(t *testing.T) {
	require := require.New(t)
	snippet := `qubit[1] q;
// @leqo.output 0
h q;
`
	_, err := Prepare("node3", snippet)
	require.Error(err)
}

func TestPrepare_DuplicateOutputIndex(t *testing.T) {
	require := require.New(t)
	snippet := `qubit[2] q;
// @leqo.output 0
let a = q[0:0];
// @leqo.output 0
let b = q[1:1];
`
	_, err := Prepare("node4", snippet)
	require.Error(err)
	require.True(cerr.Is(err, cerr.AnnotationDuplicateIndex))
}

func TestPrepare_ReusableOverlapsOutput(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	snippet := `qubit[1] q;
// @leqo.output 0
let a = q;
// @leqo.reusable
let b = q;
`
	_, err := Prepare("node5", snippet)
	require.Error(err)
	assert.True(cerr.Is(err, cerr.AnnotationReusableOverlapsOutput))
}

func TestCastSize_WideningAndOverflow(t *testing.T) {
	assert := assert.New(t)

	pad, err := CastSize("n", 0, 4, 4, false)
	assert.NoError(err)
	assert.Equal(0, pad)

	pad, err = CastSize("n", 0, 4, 2, false)
	assert.NoError(err)
	assert.Equal(2, pad)

	_, err = CastSize("n", 0, 4, 2, true)
	assert.Error(err)
	assert.True(cerr.Is(err, cerr.SizeMismatch))

	_, err = CastSize("n", 0, 2, 4, false)
	assert.Error(err)
	assert.True(cerr.Is(err, cerr.SizeMismatch))
}
