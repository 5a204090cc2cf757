package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kegliz/leqo-compile/internal/compileservice"
	"github.com/kegliz/leqo-compile/internal/jobstore"
	"github.com/kegliz/leqo-compile/internal/logger"
	"github.com/kegliz/leqo-compile/internal/server/router"
	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/testutil"
	"github.com/stretchr/testify/require"
)

func newTestApp() *appServer {
	l := logger.NewLogger(logger.LoggerOptions{Debug: true})
	r := router.NewRouter(router.RouterOptions{Logger: l})
	cs := compileservice.NewService(compileservice.ServiceOptions{
		Logger: l,
		Store:  jobstore.NewStore(),
		Opts: compileservice.Options{
			Enricher:       catalogue.NewStubEnricher(),
			MaxUnroll:      testutil.SmallMaxUnroll,
			RequestTimeout: testutil.DefaultTestTimeout,
		},
	})
	return newAppServer(appServerOptions{logger: l, router: r, cs: cs, version: "test"})
}

const compileRequestBody = `{
	"nodes": [
		{"id": "q0", "type": "qubit", "outputs": [{"type": "qubit", "size": 1}]},
		{"id": "h0", "type": "gate", "gate": "h", "inputs": [{"type": "qubit", "size": 1}], "outputs": [{"type": "qubit", "size": 1}]}
	],
	"edges": [
		{"source": ["q0", 0], "target": ["h0", 0]}
	]
}`

func TestSubmitCompile_AcceptsAndReturnsJobID(t *testing.T) {
	require := require.New(t)
	a := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/compile", bytes.NewBufferString(compileRequestBody))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	require.Equal(http.StatusAccepted, rec.Code)
	require.Contains(rec.Body.String(), "job_id")
}

func TestSubmitCompile_MalformedBodyReturnsBadRequest(t *testing.T) {
	require := require.New(t)
	a := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/compile", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	require.Equal(http.StatusBadRequest, rec.Code)
}

func TestJobStatus_PollsUntilSucceeded(t *testing.T) {
	require := require.New(t)
	a := newTestApp()

	submit := httptest.NewRequest(http.MethodPost, "/api/compile", bytes.NewBufferString(compileRequestBody))
	submitRec := httptest.NewRecorder()
	a.router.ServeHTTP(submitRec, submit)
	require.Equal(http.StatusAccepted, submitRec.Code)

	var accepted CompileAcceptedResponse
	require.NoError(json.Unmarshal(submitRec.Body.Bytes(), &accepted))
	require.NotEmpty(accepted.JobID)

	deadline := time.Now().Add(5 * time.Second)
	var status JobStatusResponse
	for {
		poll := httptest.NewRequest(http.MethodGet, "/api/compile/"+accepted.JobID, nil)
		pollRec := httptest.NewRecorder()
		a.router.ServeHTTP(pollRec, poll)
		require.Equal(http.StatusOK, pollRec.Code)
		require.NoError(json.Unmarshal(pollRec.Body.Bytes(), &status))
		if status.Status == string(jobstore.StatusSucceeded) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s did not succeed in time, last status %q", accepted.JobID, status.Status)
		}
		time.Sleep(time.Millisecond)
	}
	require.Contains(status.Program, "OPENQASM 3.1;")
}

func TestJobStatus_UnknownIDReturnsNotFound(t *testing.T) {
	require := require.New(t)
	a := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/compile/does-not-exist", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	require.Equal(http.StatusNotFound, rec.Code)
}

func TestCancelCompile_UnknownIDReturnsNotFound(t *testing.T) {
	require := require.New(t)
	a := newTestApp()

	req := httptest.NewRequest(http.MethodDelete, "/api/compile/does-not-exist", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	require.Equal(http.StatusNotFound, rec.Code)
}

func TestHealthHandler_ReportsOK(t *testing.T) {
	require := require.New(t)
	a := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	require.Equal(http.StatusOK, rec.Code)
	require.Equal("OK", rec.Body.String())
}
