// Package queue holds pending file-analysis jobs and drains them one at a
// time. At most one job is ever in flight, which serializes calls to the
// inference collaborator and keeps result ordering FIFO.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/newsguardai/newsguard/internal/models"
)

// AnalyzeFunc runs one job's request through the analysis pipeline.
type AnalyzeFunc func(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)

// Snapshot is a read-only view of the queue for display.
type Snapshot struct {
	Jobs   []models.Job             `json:"jobs"`
	Counts map[models.JobStatus]int `json:"counts"`
}

// Queue is the ordered collection of jobs. Terminal jobs are retained so
// callers can poll for their outcome.
type Queue struct {
	mu    sync.Mutex
	jobs  []*models.Job
	wake  chan struct{}
	clock func() time.Time
}

// New creates an empty queue. A nil clock means time.Now.
func New(clock func() time.Time) *Queue {
	if clock == nil {
		clock = time.Now
	}
	return &Queue{
		wake:  make(chan struct{}, 1),
		clock: clock,
	}
}

// Enqueue appends a pending job and wakes the drain worker. The returned
// job is a copy; the queue owns the live record.
func (q *Queue) Enqueue(req models.AnalysisRequest) models.Job {
	job := &models.Job{
		ID:         uuid.New().String(),
		Request:    req,
		Status:     models.JobPending,
		EnqueuedAt: q.clock(),
	}

	// Copy while holding the lock: the drain worker mutates the shared
	// record as soon as it can claim it.
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	snapshot := *job
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	log.Info().Str("job_id", snapshot.ID).Str("file", req.FileName).Msg("Job enqueued")
	return snapshot
}

// maxTerminalRetained bounds how many finished jobs stay visible in
// snapshots; history holds the durable outcomes.
const maxTerminalRetained = 50

// pruneTerminal drops the oldest done/error jobs beyond the retained
// window. Callers hold q.mu.
func (q *Queue) pruneTerminal() {
	terminal := 0
	for _, j := range q.jobs {
		if j.Terminal() {
			terminal++
		}
	}
	if terminal <= maxTerminalRetained {
		return
	}

	excess := terminal - maxTerminalRetained
	kept := q.jobs[:0]
	for _, j := range q.jobs {
		if excess > 0 && j.Terminal() {
			excess--
			continue
		}
		kept = append(kept, j)
	}
	q.jobs = kept
}

// Job returns a copy of the job with the given id.
func (q *Queue) Job(id string) (models.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.jobs {
		if j.ID == id {
			return *j, true
		}
	}
	return models.Job{}, false
}

// Remove cancels a pending job. It reports false for unknown ids and for
// jobs that are processing or terminal; an in-flight job always runs to
// completion and records its outcome.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, j := range q.jobs {
		if j.ID != id {
			continue
		}
		if j.Status != models.JobPending {
			return false
		}
		q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
		log.Info().Str("job_id", id).Msg("Pending job cancelled")
		return true
	}
	return false
}

// Snapshot returns the ordered job list and per-status counts.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snap := Snapshot{
		Jobs: make([]models.Job, 0, len(q.jobs)),
		Counts: map[models.JobStatus]int{
			models.JobPending:    0,
			models.JobProcessing: 0,
			models.JobDone:       0,
			models.JobError:      0,
		},
	}
	for _, j := range q.jobs {
		snap.Jobs = append(snap.Jobs, *j)
		snap.Counts[j.Status]++
	}
	return snap
}

// Start launches the drain worker. It runs until ctx is cancelled.
func (q *Queue) Start(ctx context.Context, analyze AnalyzeFunc) {
	go q.drain(ctx, analyze)
}

// drain processes pending jobs strictly one at a time, oldest first, and
// keeps going until none remain, then sleeps until the next enqueue.
func (q *Queue) drain(ctx context.Context, analyze AnalyzeFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}

		for {
			job := q.claimNext()
			if job == nil {
				break
			}

			result, err := analyze(ctx, job.Request)
			q.finish(job.ID, result, err)

			if ctx.Err() != nil {
				return
			}
		}
	}
}

// claimNext marks the oldest pending job processing and returns a copy of
// it, or nil when nothing is pending.
func (q *Queue) claimNext() *models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.jobs {
		if j.Status == models.JobPending {
			j.Status = models.JobProcessing
			copied := *j
			return &copied
		}
	}
	return nil
}

// finish mirrors the outcome of a drained job back onto its record.
func (q *Queue) finish(id string, result models.AnalysisResult, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.jobs {
		if j.ID != id {
			continue
		}
		if err != nil {
			j.Status = models.JobError
			j.Error = err.Error()
			log.Warn().Str("job_id", id).Err(err).Msg("Job failed")
		} else {
			j.Status = models.JobDone
			j.Result = &result
			log.Info().Str("job_id", id).Str("result_id", result.ID).Msg("Job completed")
		}
		q.pruneTerminal()
		return
	}
}
