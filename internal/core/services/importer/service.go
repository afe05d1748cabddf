package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// SubmitInput carries an already-materialized row list plus the contextual
// fields injected per batch: the area code scoping centre lookups and the
// actor stamped on written records.
type SubmitInput struct {
	Records  []domain.ImportRecord
	AreaCode string
	ActorID  string
}

// SubmitResult is returned synchronously; all further work is asynchronous
type SubmitResult struct {
	JobID   string `json:"job_id"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Service drives import jobs: it owns the chunk loop and is the sole writer
// of each job's state. Distinct jobs run independently of each other.
type Service struct {
	repo     SewadarRepository
	jobs     JobStore
	resolver *Resolver
	dispatch TaskDispatcher
	sinks    []ProgressSink
	cfg      Config
	logger   *slog.Logger
}

// Option configures optional service collaborators
type Option func(*Service)

// WithDispatcher routes background execution through a task queue instead of
// a local goroutine.
func WithDispatcher(d TaskDispatcher) Option {
	return func(s *Service) { s.dispatch = d }
}

// WithProgressSink registers an additional sink notified after every chunk
func WithProgressSink(sink ProgressSink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sink) }
}

// NewService creates the import pipeline service
func NewService(repo SewadarRepository, jobs JobStore, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}

	s := &Service{
		repo:     repo,
		jobs:     jobs,
		resolver: NewResolver(repo),
		cfg:      cfg,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates a job for the parsed rows and schedules exactly one
// background task for it, returning immediately. An empty row list is
// rejected before any job exists.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if len(input.Records) == 0 {
		return nil, fmt.Errorf("%w: no rows to import", ErrEmptySubmission)
	}

	jobID := uuid.New().String()
	job := domain.NewImportJob(jobID, len(input.Records))

	if err := s.jobs.Create(ctx, job.Snapshot()); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	task := ImportTask{
		JobID:    jobID,
		AreaCode: input.AreaCode,
		ActorID:  input.ActorID,
		Records:  input.Records,
	}

	if s.dispatch != nil {
		if err := s.dispatch.Dispatch(ctx, task); err != nil {
			// No task means no job: roll the snapshot back before reporting.
			_ = s.jobs.Delete(ctx, jobID)
			return nil, fmt.Errorf("dispatch import task: %w", err)
		}
	} else {
		// Detached from the request context: the job runs to completion or
		// failure regardless of whether anyone is still polling.
		go func() {
			if err := s.Execute(context.Background(), task); err != nil {
				s.logger.Error("import job failed",
					slog.String("job_id", jobID),
					"error", err)
			}
		}()
	}

	s.logger.Info("import job submitted",
		slog.String("job_id", jobID),
		slog.Int("total_rows", len(input.Records)),
		slog.String("area_code", input.AreaCode))

	return &SubmitResult{
		JobID:   jobID,
		Total:   len(input.Records),
		Message: fmt.Sprintf("Import of %d rows started", len(input.Records)),
	}, nil
}

// ErrEmptySubmission rejects a submission with no data rows
var ErrEmptySubmission = fmt.Errorf("empty submission")

// Poll returns the current snapshot for a job id. Safe for concurrent
// repeated calls; never blocks on job completion.
func (s *Service) Poll(ctx context.Context, jobID string) (domain.JobSnapshot, error) {
	return s.jobs.Get(ctx, jobID)
}

// Execute runs one import job to a terminal state. Rows are sliced into
// fixed-size chunks processed strictly sequentially; a row-level problem
// never escalates, anything escaping a chunk fails the job. Chunks already
// committed are not rolled back.
func (s *Service) Execute(ctx context.Context, task ImportTask) error {
	job := domain.NewImportJob(task.JobID, len(task.Records))
	log := s.logger.With(slog.String("job_id", task.JobID))

	for start := 0; start < len(task.Records); start += s.cfg.ChunkSize {
		end := start + s.cfg.ChunkSize
		if end > len(task.Records) {
			end = len(task.Records)
		}

		if err := s.processChunk(ctx, task.Records[start:end], job, task.AreaCode, task.ActorID); err != nil {
			job.Fail(fmt.Sprintf("import failed: %v", err))
			s.publish(ctx, job)
			log.Error("chunk processing aborted the job",
				slog.Int("chunk_start", start),
				"error", err)
			return err
		}

		s.publish(ctx, job)

		// Backpressure valve between bulk rounds, skipped after the last chunk.
		if end < len(task.Records) && s.cfg.ChunkDelay > 0 {
			time.Sleep(s.cfg.ChunkDelay)
		}
	}

	snap := job.Snapshot()
	job.Complete(fmt.Sprintf("Import completed: %d created, %d updated, %d errors",
		snap.Created, snap.Updated, len(snap.Errors)))
	s.publish(ctx, job)

	log.Info("import job completed",
		slog.Int("total", snap.Total),
		slog.Int("created", snap.Created),
		slog.Int("updated", snap.Updated),
		slog.Int("errors", len(snap.Errors)))

	return nil
}

// processChunk drives one fixed-size chunk: index prefetch, per-row
// classification, one unordered bulk update and one unordered bulk insert,
// then a single counter update.
func (s *Service) processChunk(ctx context.Context, chunk []domain.ImportRecord, job *domain.ImportJob, areaCode, actorID string) error {
	// Badge status and field normalization happens once per row, before any
	// matching.
	for i := range chunk {
		chunk[i].Normalize()
	}

	badgeIdx, tempIdx, err := s.prefetchIndexes(ctx, chunk, areaCode)
	if err != nil {
		return err
	}

	var (
		creates, updates       []domain.Sewadar
		createRows, updateRows []domain.ImportRecord
	)

	for _, rec := range chunk {
		if ok, violations := Validate(rec); !ok {
			s.recordRowError(job, rec, strings.Join(violations, "; "))
			continue
		}

		res, err := s.resolver.Resolve(ctx, rec, badgeIdx, tempIdx)
		if err != nil {
			// A single record's resolution failure stays a row error.
			s.recordRowError(job, rec, err.Error())
			continue
		}

		switch res.Action {
		case ActionCreate:
			creates = append(creates, rec.ToSewadar(areaCode, actorID))
			createRows = append(createRows, rec)
		default:
			updates = append(updates, mergeRecord(*res.Target, rec, actorID))
			updateRows = append(updateRows, rec)
		}
	}

	updated, err := s.flushWrites(ctx, job, s.repo.BulkUpdate, updates, updateRows)
	if err != nil {
		return fmt.Errorf("bulk update: %w", err)
	}
	created, err := s.flushWrites(ctx, job, s.repo.BulkInsert, creates, createRows)
	if err != nil {
		return fmt.Errorf("bulk insert: %w", err)
	}

	job.RecordChunk(len(chunk), created, updated)
	return nil
}

// prefetchIndexes performs the chunk's two bulk lookups: all badge numbers in
// the chunk, then one disjunctive temporary-match query for rows the badge
// lookup did not resolve.
func (s *Service) prefetchIndexes(ctx context.Context, chunk []domain.ImportRecord, areaCode string) (BadgeIndex, TemporaryIndex, error) {
	badges := make([]string, 0, len(chunk))
	for _, rec := range chunk {
		if rec.BadgeNumber != "" {
			badges = append(badges, rec.BadgeNumber)
		}
	}

	var existing []domain.Sewadar
	if len(badges) > 0 {
		var err error
		existing, err = s.repo.FindByBadgeNumbers(ctx, badges, areaCode)
		if err != nil {
			return nil, nil, fmt.Errorf("prefetch badge index: %w", err)
		}
	}
	badgeIdx := BuildBadgeIndex(existing)

	var criteria []MatchCriteria
	for _, rec := range chunk {
		if _, ok := badgeIdx[rec.BadgeNumber]; ok {
			continue
		}
		if rec.Name == "" || rec.FatherHusbandName == "" || rec.CentreID == "" {
			continue
		}
		criteria = append(criteria, MatchCriteria{
			Name:              rec.Name,
			FatherHusbandName: rec.FatherHusbandName,
			CentreID:          rec.CentreID,
		})
	}

	var temporaries []domain.Sewadar
	if len(criteria) > 0 {
		var err error
		temporaries, err = s.repo.FindTemporaryMatches(ctx, criteria)
		if err != nil {
			return nil, nil, fmt.Errorf("prefetch temporary index: %w", err)
		}
	}

	return badgeIdx, BuildTemporaryIndex(temporaries), nil
}

// flushWrites runs one unordered bulk write and surfaces per-row failures as
// additional row errors. It returns how many records actually landed. A nil
// result with an error is infrastructure failure and aborts the chunk.
func (s *Service) flushWrites(
	ctx context.Context,
	job *domain.ImportJob,
	write func(context.Context, []domain.Sewadar) (*BulkWriteResult, error),
	records []domain.Sewadar,
	rows []domain.ImportRecord,
) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	result, err := write(ctx, records)
	if err != nil {
		return 0, err
	}

	for _, failure := range result.Failures {
		if failure.Index < 0 || failure.Index >= len(rows) {
			continue
		}
		s.recordRowError(job, rows[failure.Index], fmt.Sprintf("write rejected: %v", failure.Err))
	}

	return result.Written, nil
}

func (s *Service) recordRowError(job *domain.ImportJob, rec domain.ImportRecord, message string) {
	if s.cfg.MaxErrors > 0 && len(job.Snapshot().Errors) >= s.cfg.MaxErrors {
		return
	}
	job.RecordRowError(domain.RowError{
		Row:     rec.RowNumber,
		Message: message,
		Data:    rec,
	})
}

// publish pushes the current snapshot to the job store and any extra sinks.
// Sink failures are logged, never fatal: progress reporting is best-effort.
func (s *Service) publish(ctx context.Context, job *domain.ImportJob) {
	snap := job.Snapshot()

	if err := s.jobs.Save(ctx, snap); err != nil {
		s.logger.Error("failed to save job snapshot",
			slog.String("job_id", snap.ID),
			"error", err)
	}
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, snap); err != nil {
			s.logger.Error("progress sink publish failed",
				slog.String("job_id", snap.ID),
				"error", err)
		}
	}
}

// mergeRecord lays the incoming row's data over the stored record, keeping
// identity and creation audit fields.
func mergeRecord(target domain.Sewadar, rec domain.ImportRecord, actorID string) domain.Sewadar {
	target.BadgeNumber = rec.BadgeNumber
	target.Name = rec.Name
	target.FatherHusbandName = rec.FatherHusbandName
	if rec.DOB != "" {
		target.DOB = rec.DOB
	}
	if rec.Age > 0 {
		target.Age = rec.Age
	}
	target.Gender = rec.Gender
	target.BadgeStatus = rec.BadgeStatus
	if rec.Zone != "" {
		target.Zone = rec.Zone
	}
	target.CentreID = rec.CentreID
	if rec.Department != "" {
		target.Department = rec.Department
	}
	if rec.ContactNo != "" {
		target.ContactNo = rec.ContactNo
	}
	target.UpdatedBy = actorID
	return target
}
