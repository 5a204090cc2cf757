package compileservice

import (
	"testing"
	"time"

	"github.com/kegliz/leqo-compile/internal/jobstore"
	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/kegliz/leqo-compile/leqo/graphbuilder"
	"github.com/kegliz/leqo-compile/leqo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() Service {
	return NewService(ServiceOptions{
		Opts: Options{
			Enricher:       catalogue.NewStubEnricher(),
			MaxUnroll:      testutil.SmallMaxUnroll,
			RequestTimeout: testutil.DefaultTestTimeout,
		},
	})
}

func waitTerminal(t *testing.T, s Service, jobID string) jobstore.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		job, err := s.Get(jobID)
		require.NoError(t, err)
		if job.Status.Terminal() {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s did not reach a terminal state in time", jobID)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestService_Submit_Succeeds(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	s := newTestService()
	g := testutil.NewBellPairGraph(t)
	req := &graphbuilder.Request{Graph: g, Optimize: true}

	job := s.Submit(req)
	require.NotEmpty(job.ID)

	final := waitTerminal(t, s, job.ID)
	require.Equal(jobstore.StatusSucceeded, final.Status)
	require.NotNil(final.Result)
	assert.Contains(final.Result.Program, "OPENQASM 3.1;")
}

func TestService_Submit_MissingSnippetFails(t *testing.T) {
	require := require.New(t)

	s := NewService(ServiceOptions{Opts: Options{MaxUnroll: testutil.SmallMaxUnroll, RequestTimeout: testutil.DefaultTestTimeout}})

	g, err := graphbuilder.New().
		Qubit("q0", 1).
		Gate("weird0", "not-a-real-gate", 1).
		Edge(graph.EndPoint{Node: "q0", Port: 0}, graph.EndPoint{Node: "weird0", Port: 0}).
		Build()
	require.NoError(err)

	job := s.Submit(&graphbuilder.Request{Graph: g, Optimize: true})
	final := waitTerminal(t, s, job.ID)

	require.Equal(jobstore.StatusFailed, final.Status)
	require.Error(final.Err)
}

func TestService_Cancel_ReachesTerminalState(t *testing.T) {
	require := require.New(t)

	s := newTestService()
	g := testutil.NewBellPairGraph(t)
	job := s.Submit(&graphbuilder.Request{Graph: g, Optimize: true})

	require.NoError(s.Cancel(job.ID))

	final := waitTerminal(t, s, job.ID)
	assert := assert.New(t)
	assert.True(final.Status == jobstore.StatusCancelled || final.Status == jobstore.StatusSucceeded,
		"a cancel racing a fast compile may still observe success; either is acceptable but it must be terminal")
}

func TestService_Get_UnknownJob(t *testing.T) {
	require := require.New(t)

	s := newTestService()
	_, err := s.Get("does-not-exist")
	require.Error(err)
}
