package importer

import (
	"fmt"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// Validate checks a normalized record for required fields and format
// constraints. A failing record is recorded as a per-row error and never
// reaches match resolution or a write.
func Validate(rec domain.ImportRecord) (bool, []string) {
	var violations []string

	if rec.Name == "" {
		violations = append(violations, "name is required")
	}
	if rec.FatherHusbandName == "" {
		violations = append(violations, "father/husband name is required")
	}
	if rec.BadgeNumber == "" {
		violations = append(violations, "badge number is required")
	} else if !domain.IsValidBadgeNumber(rec.BadgeNumber) {
		violations = append(violations, fmt.Sprintf("badge number %q does not match the badge format", rec.BadgeNumber))
	}
	if !domain.IsValidGender(rec.Gender) {
		violations = append(violations, fmt.Sprintf("gender must be %s or %s", domain.GenderMale, domain.GenderFemale))
	}
	if rec.CentreID == "" {
		violations = append(violations, "centre id is required")
	}

	return len(violations) == 0, violations
}
