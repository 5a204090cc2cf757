package qasm

import (
	"testing"

	"github.com/kegliz/leqo-compile/leqo/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleHadamard(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := `OPENQASM 3.1;
include "stdgates.inc";
// @leqo.input 0
qubit[1] q;
h q;
// @leqo.output 0
let out = q;
`
	prog, err := Parse(src)
	require.NoError(err)
	require.Len(prog.Statements, 5)

	assert.Equal(ast.KindInclude, prog.Statements[1].Kind)
	assert.Equal("stdgates.inc", prog.Statements[1].IncludePath)

	decl := prog.Statements[2]
	assert.Equal(ast.KindQubitDecl, decl.Kind)
	assert.Equal("q", decl.DeclName)
	assert.Equal(1, decl.DeclSize)
	require.Len(decl.Annotations, 1)
	assert.Equal(ast.AnnotationInput, decl.Annotations[0].Kind)
	assert.Equal(0, decl.Annotations[0].Index)

	gate := prog.Statements[3]
	assert.Equal(ast.KindGateCall, gate.Kind)
	assert.Equal("h", gate.GateName)
	assert.Equal([]string{"q"}, gate.GateQubits)

	alias := prog.Statements[4]
	assert.Equal(ast.KindAliasDecl, alias.Kind)
	assert.Equal("out", alias.AliasName)
	require.Len(alias.Annotations, 1)
	assert.Equal(ast.AnnotationOutput, alias.Annotations[0].Kind)
}

func TestParse_IfElse(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := `if (c == 1) {
h q;
} else {
x q;
}
`
	prog, err := Parse(src)
	require.NoError(err)
	require.Len(prog.Statements, 1)
	ifStmt := prog.Statements[0]
	assert.Equal(ast.KindIf, ifStmt.Kind)
	assert.Equal("c == 1", ifStmt.IfCond)
	require.Len(ifStmt.Then, 1)
	require.Len(ifStmt.Else, 1)
	assert.Equal("h", ifStmt.Then[0].GateName)
	assert.Equal("x", ifStmt.Else[0].GateName)
}

func TestParse_AnnotationWrongHost(t *testing.T) {
	require := require.New(t)
	src := `// @leqo.input 0
h q;
`
	_, err := Parse(src)
	require.Error(err)
}

func TestParse_AnnotationMissingIndex(t *testing.T) {
	require := require.New(t)
	src := `// @leqo.input
qubit[1] q;
`
	_, err := Parse(src)
	require.Error(err)
}

func TestRoundTrip_PrintMatchesCanonicalShape(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := `OPENQASM 3.1;
include "stdgates.inc";
qubit[2] q;
cx q[0], q[1];
`
	prog, err := Parse(src)
	require.NoError(err)
	out := Print(prog.Statements)
	assert.Contains(out, "OPENQASM 3.1;")
	assert.Contains(out, `include "stdgates.inc";`)
	assert.Contains(out, "qubit[2] q;")
	assert.Contains(out, "cx q[0], q[1];")
}
