package jobstore

import (
	"testing"

	"github.com/kegliz/leqo-compile/leqo/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndGet(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := NewStore()
	job := s.Create(func() {})
	require.NotEmpty(job.ID)
	assert.Equal(StatusQueued, job.Status)

	got, err := s.Get(job.ID)
	require.NoError(err)
	assert.Equal(job.ID, got.ID)
	assert.Equal(StatusQueued, got.Status)
}

func TestStore_Get_UnknownID(t *testing.T) {
	require := require.New(t)

	s := NewStore()
	_, err := s.Get("does-not-exist")
	require.Error(err)
}

func TestStore_UpdateTransitionsStatusAndResult(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := NewStore()
	job := s.Create(func() {})

	err := s.Update(job.ID, func(j *Job) {
		j.Status = StatusRunning
	})
	require.NoError(err)

	got, err := s.Get(job.ID)
	require.NoError(err)
	assert.Equal(StatusRunning, got.Status)

	result := &pipeline.Result{Program: "OPENQASM 3.1;\n"}
	err = s.Update(job.ID, func(j *Job) {
		j.Status = StatusSucceeded
		j.Result = result
	})
	require.NoError(err)

	got, err = s.Get(job.ID)
	require.NoError(err)
	assert.Equal(StatusSucceeded, got.Status)
	assert.Equal(result, got.Result)
	assert.True(got.Status.Terminal())
}

func TestStore_CancelInvokesStoredFunc(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	called := false
	s := NewStore()
	job := s.Create(func() { called = true })

	require.NoError(s.Cancel(job.ID))
	assert.True(called)
}

func TestStore_CancelOnTerminalJobIsNoop(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	called := false
	s := NewStore()
	job := s.Create(func() { called = true })
	require.NoError(s.Update(job.ID, func(j *Job) { j.Status = StatusSucceeded }))

	require.NoError(s.Cancel(job.ID))
	assert.False(called, "cancel on an already-terminal job must not invoke its cancel func")
}

func TestStore_UpdateUnknownID(t *testing.T) {
	require := require.New(t)

	s := NewStore()
	err := s.Update("does-not-exist", func(j *Job) {})
	require.Error(err)
}
