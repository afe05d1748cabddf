package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/sewasangat/import-service/internal/core/domain"
	"github.com/sewasangat/import-service/internal/core/services/importer"
)

// SewadarRepository implements importer.SewadarRepository using GORM
type SewadarRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewSewadarRepository creates a new repository instance
func NewSewadarRepository(db *gorm.DB, logger *slog.Logger) *SewadarRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &SewadarRepository{
		db:     db,
		logger: logger,
	}
}

// FindByBadgeNumbers bulk-fetches all records owning any of the given badge
// numbers, scoped to an area when one is set.
func (r *SewadarRepository) FindByBadgeNumbers(ctx context.Context, badgeNumbers []string, areaCode string) ([]domain.Sewadar, error) {
	if len(badgeNumbers) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Where("badge_number IN ?", badgeNumbers)
	if areaCode != "" {
		query = query.Where("area_code = ?", areaCode)
	}

	var records []domain.Sewadar
	if err := query.Find(&records).Error; err != nil {
		r.logger.Error("failed to fetch records by badge numbers",
			slog.Int("badge_count", len(badgeNumbers)),
			"error", err)
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return records, nil
}

// FindTemporaryMatches runs one disjunctive query over the chunk's match
// criteria against TEMPORARY records.
func (r *SewadarRepository) FindTemporaryMatches(ctx context.Context, criteria []importer.MatchCriteria) ([]domain.Sewadar, error) {
	if len(criteria) == 0 {
		return nil, nil
	}

	match := r.db.Where(
		"LOWER(name) = ? AND LOWER(father_husband_name) = ? AND centre_id = ?",
		strings.ToLower(criteria[0].Name),
		strings.ToLower(criteria[0].FatherHusbandName),
		criteria[0].CentreID,
	)
	for _, c := range criteria[1:] {
		match = match.Or(
			"LOWER(name) = ? AND LOWER(father_husband_name) = ? AND centre_id = ?",
			strings.ToLower(c.Name),
			strings.ToLower(c.FatherHusbandName),
			c.CentreID,
		)
	}

	var records []domain.Sewadar
	err := r.db.WithContext(ctx).
		Where("badge_status = ?", domain.BadgeStatusTemporary).
		Where(match).
		Find(&records).
		Error
	if err != nil {
		r.logger.Error("failed to fetch temporary matches",
			slog.Int("criteria_count", len(criteria)),
			"error", err)
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return records, nil
}

// FindBadgeOwner returns the record owning a badge number across all areas,
// or nil when the badge is unassigned.
func (r *SewadarRepository) FindBadgeOwner(ctx context.Context, badgeNumber string) (*domain.Sewadar, error) {
	if badgeNumber == "" {
		return nil, nil
	}

	var record domain.Sewadar
	err := r.db.WithContext(ctx).
		Where("badge_number = ?", badgeNumber).
		First(&record).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return &record, nil
}

// FindBadgeNumbersByPrefix lists badge numbers starting with the prefix
func (r *SewadarRepository) FindBadgeNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var badges []string
	err := r.db.WithContext(ctx).
		Model(&domain.Sewadar{}).
		Where("badge_number LIKE ?", prefix+"%").
		Pluck("badge_number", &badges).
		Error
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return badges, nil
}

// BulkInsert writes new records unordered. The fast path is one batched
// insert; if any row is rejected the chunk is retried row by row so a single
// constraint violation does not sink its neighbours.
func (r *SewadarRepository) BulkInsert(ctx context.Context, records []domain.Sewadar) (*importer.BulkWriteResult, error) {
	result := &importer.BulkWriteResult{}
	if len(records) == 0 {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]domain.Sewadar, len(records))
	copy(batch, records)

	if err := r.db.WithContext(ctx).CreateInBatches(batch, len(batch)).Error; err == nil {
		result.Written = len(records)
		return result, nil
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := records[i]
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			result.Failures = append(result.Failures, importer.WriteFailure{Index: i, Err: err})
			continue
		}
		result.Written++
	}

	r.logger.Info("bulk insert finished",
		slog.Int("written", result.Written),
		slog.Int("rejected", len(result.Failures)))

	return result, nil
}

// BulkUpdate writes changed records unordered, matched by primary key
func (r *SewadarRepository) BulkUpdate(ctx context.Context, records []domain.Sewadar) (*importer.BulkWriteResult, error) {
	result := &importer.BulkWriteResult{}
	if len(records) == 0 {
		return result, nil
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := records[i]
		if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
			result.Failures = append(result.Failures, importer.WriteFailure{Index: i, Err: err})
			continue
		}
		result.Written++
	}

	r.logger.Info("bulk update finished",
		slog.Int("written", result.Written),
		slog.Int("rejected", len(result.Failures)))

	return result, nil
}
