// Package jobstore tracks in-flight and finished compile jobs behind the
// async request/poll API of spec.md §5: submit returns a job id
// immediately, the caller polls for status and (once terminal) a result
// or error. Adapted from _examples/kegliz-qplay's
// internal/qservice.ProgramStore — same uuid-keyed, RWMutex-guarded
// in-memory map shape — generalized from "store an immutable program" to
// "track a job's status as it moves toward a terminal state."
package jobstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kegliz/leqo-compile/leqo/pipeline"
)

// Status is a compile job's lifecycle state. Queued and Running are
// transient; Succeeded, Failed, and Cancelled are terminal (spec.md §5:
// "no partial-result materialization" — a job only ever carries a Result
// once it reaches Succeeded).
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is one a job never leaves once reached.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// Job is one compile request's tracked state.
type Job struct {
	ID        string
	Status    Status
	Result    *pipeline.Result
	Err       error
	CreatedAt time.Time

	// cancel stops the job's in-flight compile, if any. It is never
	// cleared; Cancel skips calling it once the job is terminal.
	cancel func()
}

// Store tracks compile jobs by id.
type Store interface {
	// Create registers a new job in StatusQueued and returns it.
	Create(cancel func()) *Job
	// Get returns a snapshot of the job with the given id.
	Get(id string) (Job, error)
	// Update applies fn to the job's live record under the store's lock,
	// so readers of Get never observe a partially-updated Job.
	Update(id string, fn func(*Job)) error
	// Cancel requests that an in-flight job stop, if it hasn't already
	// reached a terminal state.
	Cancel(id string) error
}

type store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore creates an empty, in-memory Store.
func NewStore() Store {
	return &store{jobs: make(map[string]*Job)}
}

func (s *store) Create(cancel func()) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		cancel:    cancel,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

func (s *store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("jobstore: job %q not found", id)
	}
	return *j, nil
}

func (s *store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("jobstore: job %q not found", id)
	}
	fn(j)
	return nil
}

// Cancel invokes the job's stored cancel func, if the job hasn't already
// reached a terminal state. It does not change the job's status; whoever
// runs the job records the final status through Update.
func (s *store) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("jobstore: job %q not found", id)
	}
	if j.Status.Terminal() {
		return nil
	}
	if j.cancel != nil {
		j.cancel()
	}
	return nil
}
