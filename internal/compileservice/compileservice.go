// Package compileservice wraps leqo/pipeline.Compile behind the async
// submit/poll/cancel job model of spec.md §5. Adapted from
// _examples/kegliz-qplay's internal/qservice.Service — same
// ServiceOptions{Logger, Store} constructor shape and logger-per-call
// idiom — generalized from "render/save a program synchronously" to
// "run a compile in its own goroutine and let the caller poll a
// jobstore.Job for its outcome."
package compileservice

import (
	"context"
	"time"

	"github.com/kegliz/leqo-compile/internal/jobstore"
	"github.com/kegliz/leqo-compile/internal/logger"
	"github.com/kegliz/leqo-compile/leqo/catalogue"
	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/kegliz/leqo-compile/leqo/graphbuilder"
	"github.com/kegliz/leqo-compile/leqo/pipeline"
)

// Options configures a Service's defaults for every job it submits.
type Options struct {
	// Enricher resolves any node a request didn't supply its own snippet
	// for (spec.md §1/§6's external catalogue collaborator).
	Enricher catalogue.Enricher
	// MaxUnroll bounds a single repeat node's iteration count
	// server-wide (spec.md §4.2).
	MaxUnroll int
	// RequestTimeout bounds one job end to end (spec.md §5).
	RequestTimeout time.Duration
}

// ServiceOptions are options for constructing a Service.
type ServiceOptions struct {
	Logger *logger.Logger
	Store  jobstore.Store
	Opts   Options
}

// Service submits compile jobs and reports their status.
type Service interface {
	// Submit starts a compile job for the already-decoded req and returns it
	// immediately in StatusQueued/StatusRunning; the caller polls Get
	// for its eventual outcome.
	Submit(req *graphbuilder.Request) *jobstore.Job
	// Get returns a snapshot of the job with the given id.
	Get(jobID string) (jobstore.Job, error)
	// Cancel requests that an in-flight job stop.
	Cancel(jobID string) error
}

type service struct {
	logger *logger.Logger
	store  jobstore.Store
	opts   Options
}

// NewService creates a new compile Service.
func NewService(opts ServiceOptions) Service {
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger(logger.LoggerOptions{Debug: true})
	}
	if opts.Store == nil {
		opts.Store = jobstore.NewStore()
	}
	if opts.Opts.RequestTimeout <= 0 {
		opts.Opts.RequestTimeout = 30 * time.Second
	}
	return &service{logger: opts.Logger, store: opts.Store, opts: opts.Opts}
}

// Submit implements Service.
func (s *service) Submit(req *graphbuilder.Request) *jobstore.Job {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
	job := s.store.Create(cancel)

	l := s.logger.SpawnForJob(job.ID)
	l.Debug().Msg("compile job queued")

	go s.run(ctx, cancel, job.ID, req, l)

	return job
}

func (s *service) run(ctx context.Context, cancel func(), jobID string, req *graphbuilder.Request, l *logger.Logger) {
	defer cancel()

	if err := s.store.Update(jobID, func(j *jobstore.Job) { j.Status = jobstore.StatusRunning }); err != nil {
		return
	}
	l.Debug().Msg("compile job running")

	optimize := req.Optimize
	snippets := pipeline.SnippetSource{Inline: req.Snippets, Enricher: s.opts.Enricher}
	result, err := pipeline.Compile(ctx, req.Graph, snippets, pipeline.Options{
		Optimize:  optimize,
		MaxUnroll: s.opts.MaxUnroll,
	})

	_ = s.store.Update(jobID, func(j *jobstore.Job) {
		if err != nil {
			j.Err = err
			switch {
			case cerr.Is(err, cerr.Cancelled):
				j.Status = jobstore.StatusCancelled
			case cerr.Is(err, cerr.Timeout):
				j.Status = jobstore.StatusFailed
			case cerr.Is(err, cerr.PostprocessError):
				l.Error().Err(err).Msg("postprocess produced unparseable output")
				j.Status = jobstore.StatusFailed
			default:
				j.Status = jobstore.StatusFailed
			}
			return
		}
		j.Status = jobstore.StatusSucceeded
		j.Result = result
	})

	if err != nil {
		l.Debug().Err(err).Msg("compile job finished with error")
	} else {
		l.Debug().Msg("compile job succeeded")
	}
}

// Get implements Service.
func (s *service) Get(jobID string) (jobstore.Job, error) {
	return s.store.Get(jobID)
}

// Cancel implements Service.
func (s *service) Cancel(jobID string) error {
	return s.store.Cancel(jobID)
}
