package importer

import (
	"context"
	"errors"
	"time"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// ErrJobNotFound is returned by a JobStore when an id is unknown. Evicted and
// never-created ids are indistinguishable by design.
var ErrJobNotFound = errors.New("import job not found")

// MatchCriteria is one row's temporary-match lookup: name and father/husband
// name compared case-insensitively after trimming, centre id compared exactly,
// restricted to TEMPORARY records.
type MatchCriteria struct {
	Name              string
	FatherHusbandName string
	CentreID          string
}

// WriteFailure is a single rejected record inside an unordered bulk write
type WriteFailure struct {
	Index int
	Err   error
}

// BulkWriteResult reports per-item outcomes of one bulk operation. Failure
// granularity is whatever the underlying store provides.
type BulkWriteResult struct {
	Written  int
	Failures []WriteFailure
}

// SewadarRepository is the persistence collaborator the pipeline depends on.
// The pipeline never assumes a concrete store beyond these filters.
type SewadarRepository interface {
	// FindByBadgeNumbers bulk-fetches records owning any of the given badge
	// numbers, scoped to an area when areaCode is non-empty.
	FindByBadgeNumbers(ctx context.Context, badgeNumbers []string, areaCode string) ([]domain.Sewadar, error)

	// FindTemporaryMatches issues one disjunctive query for the whole chunk
	// and returns TEMPORARY records matching any criteria.
	FindTemporaryMatches(ctx context.Context, criteria []MatchCriteria) ([]domain.Sewadar, error)

	// FindBadgeOwner returns the record owning a badge number regardless of
	// area scope, or nil when the badge is unassigned.
	FindBadgeOwner(ctx context.Context, badgeNumber string) (*domain.Sewadar, error)

	// FindBadgeNumbersByPrefix lists badge numbers starting with the prefix,
	// used to seed badge allocation.
	FindBadgeNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)

	// BulkInsert writes new records unordered: one row's failure does not
	// block the others.
	BulkInsert(ctx context.Context, records []domain.Sewadar) (*BulkWriteResult, error)

	// BulkUpdate writes changed records unordered, matched by primary key.
	BulkUpdate(ctx context.Context, records []domain.Sewadar) (*BulkWriteResult, error)
}

// JobStore keeps poll-able job snapshots. The owning background task is the
// only writer for a given id; reads may come from any instance.
type JobStore interface {
	Create(ctx context.Context, snap domain.JobSnapshot) error
	Save(ctx context.Context, snap domain.JobSnapshot) error
	Get(ctx context.Context, id string) (domain.JobSnapshot, error)
	Delete(ctx context.Context, id string) error
}

// ProgressSink receives a snapshot after every finished chunk. A JobStore is
// the default sink; push-based delivery can be added without touching the
// chunk loop.
type ProgressSink interface {
	Publish(ctx context.Context, snap domain.JobSnapshot) error
}

// SequenceStore hands out per-pattern badge sequence numbers atomically.
// seed is the highest suffix already present in the sewadar store; the
// sequence starts above it the first time a pattern is seen.
type SequenceStore interface {
	NextBadgeSequence(ctx context.Context, pattern string, seed int) (int, error)
}

// ImportTask is the unit of background work: one job and its full row list
// plus the per-batch contextual fields.
type ImportTask struct {
	JobID    string                `json:"job_id"`
	AreaCode string                `json:"area_code"`
	ActorID  string                `json:"actor_id"`
	Records  []domain.ImportRecord `json:"records"`
}

// TaskDispatcher schedules an ImportTask on a worker. When absent the
// pipeline runs the task on a local goroutine.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, task ImportTask) error
}

// Config holds the pipeline tuning knobs
type Config struct {
	// ChunkSize is how many rows one batch round-trip covers
	ChunkSize int

	// ChunkDelay is a backpressure pause between chunks, not a correctness
	// requirement
	ChunkDelay time.Duration

	// MaxErrors caps stored per-row errors, 0 = unlimited
	MaxErrors int
}

// DefaultConfig returns the reference pipeline configuration
func DefaultConfig() Config {
	return Config{
		ChunkSize:  50,
		ChunkDelay: 10 * time.Millisecond,
	}
}
