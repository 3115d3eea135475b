// Package jobs runs renders asynchronously on a bounded worker pool and
// keeps their results for polling.
package jobs

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/mdrender/internal/markdown"
)

// JobStatus represents the state of a render job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks a single asynchronous render.
type Job struct {
	mu sync.Mutex

	ID      string
	Mode    markdown.Mode
	TOC     bool
	Status  JobStatus
	Phase   string
	Bytes   int
	Elapsed time.Duration

	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Internal: not serialized.
	source string
	result *markdown.Result
	errors []string
}

// NewJob creates a queued job for source.
func NewJob(source string, opts markdown.Options) *Job {
	now := time.Now()
	return &Job{
		ID:          generateULID(),
		Mode:        opts.Mode,
		TOC:         opts.TOC,
		Status:      StatusQueued,
		Phase:       "queued",
		Bytes:       len(source),
		ContentHash: ContentHashHex([]byte(source)),
		CreatedAt:   now,
		UpdatedAt:   now,
		source:      source,
	}
}

// Options returns the render options the job was submitted with.
func (j *Job) Options() markdown.Options {
	return markdown.Options{TOC: j.TOC, Mode: j.Mode}
}

// Source returns the Markdown to render.
func (j *Job) Source() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.source
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// Complete stores the render result and releases the source.
func (j *Job) Complete(res markdown.Result, elapsed time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.source = ""
	j.Elapsed = elapsed
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs not updated within the TTL.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string           `json:"job_id"`
	Mode        markdown.Mode    `json:"mode"`
	TOC         bool             `json:"toc"`
	Status      JobStatus        `json:"status"`
	Phase       string           `json:"phase"`
	Bytes       int              `json:"bytes"`
	ElapsedUs   int64            `json:"elapsed_us,omitempty"`
	ContentHash string           `json:"content_hash"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Errors      []string         `json:"errors"`
	Result      *markdown.Result `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	return JobSnapshot{
		ID:          j.ID,
		Mode:        j.Mode,
		TOC:         j.TOC,
		Status:      j.Status,
		Phase:       j.Phase,
		Bytes:       j.Bytes,
		ElapsedUs:   j.Elapsed.Microseconds(),
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Errors:      errs,
		Result:      j.result,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
