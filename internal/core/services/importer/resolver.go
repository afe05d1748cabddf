package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// ErrBadgeConflict marks a row whose badge number already belongs to a
// different record than its temporary match. The row is reported, not written.
var ErrBadgeConflict = errors.New("badge number already exists for another sewadar")

// Action classifies a record against the store
type Action int

const (
	ActionCreate Action = iota
	ActionUpdateExisting
	ActionUpdateTemporary
)

func (a Action) String() string {
	switch a {
	case ActionUpdateExisting:
		return "update-existing"
	case ActionUpdateTemporary:
		return "update-temporary"
	default:
		return "create"
	}
}

// BadgeIndex maps badge number → stored record, built once per chunk from a
// bulk lookup of all badge numbers in that chunk.
type BadgeIndex map[string]domain.Sewadar

// TemporaryIndex maps dedup key → stored TEMPORARY record, built once per
// chunk from a disjunctive query over rows not resolved by badge.
type TemporaryIndex map[string]domain.Sewadar

// BuildBadgeIndex indexes prefetched records by badge number
func BuildBadgeIndex(records []domain.Sewadar) BadgeIndex {
	idx := make(BadgeIndex, len(records))
	for _, rec := range records {
		idx[rec.BadgeNumber] = rec
	}
	return idx
}

// BuildTemporaryIndex indexes prefetched records by dedup key, keeping only
// TEMPORARY records. If several temporaries collide on a key the first wins;
// row order of the prefetch decides.
func BuildTemporaryIndex(records []domain.Sewadar) TemporaryIndex {
	idx := make(TemporaryIndex, len(records))
	for _, rec := range records {
		if !rec.IsTemporary() {
			continue
		}
		key := domain.DedupKey(rec.Name, rec.FatherHusbandName, rec.CentreID)
		if _, ok := idx[key]; !ok {
			idx[key] = rec
		}
	}
	return idx
}

// Resolution is the resolver's verdict for one record. Target is the stored
// record to update; nil for creates.
type Resolution struct {
	Action Action
	Target *domain.Sewadar
}

// badgeOwnerLookup is the narrow slice of the repository the resolver needs
// for the conflict re-check on the temporary path.
type badgeOwnerLookup interface {
	FindBadgeOwner(ctx context.Context, badgeNumber string) (*domain.Sewadar, error)
}

// Resolver classifies records as create / update-existing / update-temporary.
// An exact badge match always beats a dedup-key match.
type Resolver struct {
	badges badgeOwnerLookup
}

// NewResolver creates a match resolver
func NewResolver(badges badgeOwnerLookup) *Resolver {
	return &Resolver{badges: badges}
}

// Resolve decides exactly one outcome for a normalized, validated record.
//
// 1. Badge number found in the chunk's BadgeIndex → update that record.
// 2. Otherwise, dedup key found in the TemporaryIndex → update the temporary
//    record, unless the incoming badge number already belongs to a different
//    record anywhere in the store, which is a conflict.
// 3. Otherwise → create.
func (r *Resolver) Resolve(ctx context.Context, rec domain.ImportRecord, badgeIdx BadgeIndex, tempIdx TemporaryIndex) (Resolution, error) {
	if hit, ok := badgeIdx[rec.BadgeNumber]; ok {
		return Resolution{Action: ActionUpdateExisting, Target: &hit}, nil
	}

	if tmp, ok := tempIdx[rec.DedupKey()]; ok {
		// The chunk index is area-scoped; the badge may still be taken by an
		// unrelated record elsewhere. Re-check before promoting.
		owner, err := r.badges.FindBadgeOwner(ctx, rec.BadgeNumber)
		if err != nil {
			return Resolution{}, fmt.Errorf("badge ownership check: %w", err)
		}
		if owner != nil && owner.ID != tmp.ID {
			return Resolution{}, ErrBadgeConflict
		}
		return Resolution{Action: ActionUpdateTemporary, Target: &tmp}, nil
	}

	return Resolution{Action: ActionCreate}, nil
}
