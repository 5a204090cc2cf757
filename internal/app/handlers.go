package app

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kegliz/leqo-compile/internal/jobstore"
	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/graphbuilder"
)

var badRequestErrorMsg = "Bad Request - please contact the administrator"
var internalServerErrorMsg = "Internal Server Error - please contact the administrator"

// CompileAcceptedResponse is the body of a submitted compile job
// (spec.md §5: submit returns immediately with an id the caller polls).
type CompileAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// JobStatusResponse reports a job's current lifecycle state, and, once
// terminal, either its compiled program or its error (spec.md §5's "no
// partial-result materialization" rule: Program/Warnings are only ever
// set together with StatusSucceeded).
type JobStatusResponse struct {
	JobID    string              `json:"job_id"`
	Status   string              `json:"status"`
	Program  string              `json:"program,omitempty"`
	Warnings map[string][]string `json:"warnings,omitempty"`
	Error    *ErrorResponse      `json:"error,omitempty"`
}

// ErrorResponse mirrors cerr.Error (spec.md §7's error taxonomy) over the
// wire.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}

func jobStatusResponse(job jobstore.Job) JobStatusResponse {
	resp := JobStatusResponse{JobID: job.ID, Status: string(job.Status)}
	if job.Result != nil {
		resp.Program = job.Result.Program
		resp.Warnings = job.Result.Warnings
	}
	if job.Err != nil {
		resp.Error = toErrorResponse(job.Err)
	}
	return resp
}

func toErrorResponse(err error) *ErrorResponse {
	if ce, ok := err.(*cerr.Error); ok {
		return &ErrorResponse{Kind: string(ce.Kind), NodeID: ce.NodeID, Message: ce.Message}
	}
	return &ErrorResponse{Kind: "Unknown", Message: err.Error()}
}

// RootHandler is the handler for the / endpoint.
func (a *appServer) RootHandler(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving root endpoint")
	c.JSON(http.StatusOK, gin.H{"service": "leqo-compile", "version": a.version})
}

// HealthHandler is the handler for the /health endpoint.
func (a *appServer) HealthHandler(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving health endpoint")
	c.String(http.StatusOK, "OK")
}

// SubmitCompile is the handler for POST /api/compile: it decodes the
// request body into a Program Graph (leqo/graphbuilder.Decode) and submits
// it to the compileservice, returning the new job's id immediately
// (spec.md §5/§6).
func (a *appServer) SubmitCompile(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		l.Error().Err(err).Msg("reading compile request body failed")
		c.String(http.StatusBadRequest, badRequestErrorMsg)
		return
	}

	req, err := graphbuilder.Decode(body)
	if err != nil {
		l.Error().Err(err).Msg("decoding compile request failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": toErrorResponse(err)})
		return
	}

	job := a.cs.Submit(req)
	c.JSON(http.StatusAccepted, CompileAcceptedResponse{JobID: job.ID})
}

// JobStatus is the handler for GET /api/compile/:id.
func (a *appServer) JobStatus(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}

	id := c.Param("id")
	job, err := a.cs.Get(id)
	if err != nil {
		l.Debug().Str("jobID", id).Msg("job not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "no such job"})
		return
	}

	c.JSON(http.StatusOK, jobStatusResponse(job))
}

// CancelCompile is the handler for DELETE /api/compile/:id.
func (a *appServer) CancelCompile(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}

	id := c.Param("id")
	if err := a.cs.Cancel(id); err != nil {
		l.Debug().Str("jobID", id).Msg("cancel requested for unknown job")
		c.JSON(http.StatusNotFound, gin.H{"error": "no such job"})
		return
	}

	c.Status(http.StatusNoContent)
}
