package qasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownArity(t *testing.T) {
	tests := []struct {
		name     string
		wantN    int
		wantOK   bool
	}{
		{"h", 1, true},
		{"H", 1, true},
		{"cx", 2, true},
		{"CNOT", 2, true},
		{"ccx", 3, true},
		{"my_custom_gate", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			n, ok := KnownArity(tt.name)
			assert.Equal(tt.wantOK, ok)
			if ok {
				assert.Equal(tt.wantN, n)
			}
		})
	}
}
