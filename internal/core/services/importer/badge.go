package importer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// Badge type letters encoded in the allocation pattern
const (
	badgeTypePermanent = "A"
	badgeTypeTemporary = "T"
)

// BadgePattern derives the fixed allocation prefix from centre, gender and
// the temporary flag. Example: area HI, centre 1000, MALE, permanent →
// "HI1000GA".
func BadgePattern(areaCode, centreID, gender string, temporary bool) string {
	genderCode := "G"
	if gender == domain.GenderFemale {
		genderCode = "L"
	}
	badgeType := badgeTypePermanent
	if temporary {
		badgeType = badgeTypeTemporary
	}
	return fmt.Sprintf("%s%s%s%s", areaCode, centreID, genderCode, badgeType)
}

// NextBadge computes the next unused sequential badge for a pattern. Existing
// badges are recognized by ^pattern\d{4}$; the result is the pattern plus the
// highest matched suffix + 1, left-padded to 4 digits. Uniqueness is not
// enforced here: two concurrent callers can compute the same suffix, so
// callers must re-check or allocate through a SequenceStore.
func NextBadge(existingBadges []string, pattern string) string {
	return fmt.Sprintf("%s%04d", pattern, maxBadgeSuffix(existingBadges, pattern)+1)
}

// maxBadgeSuffix returns the highest 4-digit suffix among pattern matches
func maxBadgeSuffix(existingBadges []string, pattern string) int {
	re := regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + `(\d{4})$`)

	max := 0
	for _, badge := range existingBadges {
		m := re.FindStringSubmatch(badge)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// Allocator issues badge numbers through a per-pattern atomic sequence,
// closing the scan-and-increment race of NextBadge. The sequence is seeded
// from the store the first time a pattern is seen.
type Allocator struct {
	repo SewadarRepository
	seq  SequenceStore
}

// NewAllocator creates a sequence-backed badge allocator
func NewAllocator(repo SewadarRepository, seq SequenceStore) *Allocator {
	return &Allocator{repo: repo, seq: seq}
}

// Allocate returns the next badge number for the pattern
func (a *Allocator) Allocate(ctx context.Context, pattern string) (string, error) {
	existing, err := a.repo.FindBadgeNumbersByPrefix(ctx, pattern)
	if err != nil {
		return "", fmt.Errorf("scan existing badges: %w", err)
	}

	n, err := a.seq.NextBadgeSequence(ctx, pattern, maxBadgeSuffix(existing, pattern))
	if err != nil {
		return "", fmt.Errorf("advance badge sequence: %w", err)
	}

	return fmt.Sprintf("%s%04d", pattern, n), nil
}
