package domain

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Import job states. Transitions are one-way: processing is the only initial
// state and completed/failed are terminal.
const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ValidJobStatuses returns list of valid import job statuses
func ValidJobStatuses() []string {
	return []string{
		JobStatusProcessing,
		JobStatusCompleted,
		JobStatusFailed,
	}
}

// IsValidJobStatus checks if a status is valid
func IsValidJobStatus(status string) bool {
	for _, s := range ValidJobStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalJobStatus reports whether a job in this status will never change
func IsTerminalJobStatus(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// RowError records a single failed row without aborting the job
type RowError struct {
	Row     int          `json:"row"`
	Message string       `json:"message"`
	Data    ImportRecord `json:"data"`
}

// JobSnapshot is the read-only progress view handed to polling clients.
// Reading it is idempotent and never blocks on job completion.
type JobSnapshot struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Progress   int        `json:"progress"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Errors     []RowError `json:"errors"`
	Message    string     `json:"message"`
	DurationMs int64      `json:"duration_ms"`
}

// ImportJob owns the mutable state of one running import. A single
// background task is the only writer; the mutex exists so concurrent
// pollers read a consistent snapshot.
type ImportJob struct {
	mu sync.Mutex

	id        string
	status    string
	total     int
	processed int
	created   int
	updated   int
	errors    []RowError
	message   string
	startedAt time.Time
}

// NewImportJob creates a job in the processing state
func NewImportJob(id string, total int) *ImportJob {
	return &ImportJob{
		id:        id,
		status:    JobStatusProcessing,
		total:     total,
		message:   "Import started",
		startedAt: time.Now(),
	}
}

// ID returns the opaque job token
func (j *ImportJob) ID() string {
	return j.id
}

// RecordRowError appends a per-row failure in row order. The row still counts
// toward processed when its chunk is recorded; created/updated stay put.
func (j *ImportJob) RecordRowError(rowErr RowError) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, rowErr)
}

// RecordChunk folds one finished chunk into the counters. Counters only move
// forward; the status message tracks cumulative progress.
func (j *ImportJob) RecordChunk(processed, created, updated int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.processed += processed
	j.created += created
	j.updated += updated
	j.message = fmt.Sprintf("Processed %d of %d rows", j.processed, j.total)
}

// Complete marks the job terminal after all chunks ran
func (j *ImportJob) Complete(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if IsTerminalJobStatus(j.status) {
		return
	}
	j.status = JobStatusCompleted
	j.message = message
}

// Fail marks the job terminal after a fatal error escaped the chunk loop.
// Chunks already committed are not rolled back.
func (j *ImportJob) Fail(reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if IsTerminalJobStatus(j.status) {
		return
	}
	j.status = JobStatusFailed
	j.message = reason
}

// Snapshot returns the current progress view. The error slice is copied so
// callers cannot race the owning task.
func (j *ImportJob) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	errs := make([]RowError, len(j.errors))
	copy(errs, j.errors)

	progress := 0
	if j.total > 0 {
		progress = int(math.Round(float64(j.processed) / float64(j.total) * 100))
	}

	return JobSnapshot{
		ID:         j.id,
		Status:     j.status,
		Progress:   progress,
		Total:      j.total,
		Processed:  j.processed,
		Created:    j.created,
		Updated:    j.updated,
		Errors:     errs,
		Message:    j.message,
		DurationMs: time.Since(j.startedAt).Milliseconds(),
	}
}
