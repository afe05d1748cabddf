package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sewasangat/import-service/internal/core/domain"
)

func TestValidate(t *testing.T) {
	valid := domain.ImportRecord{
		BadgeNumber:       "HI1000GA0001",
		Name:              "Amar Singh",
		FatherHusbandName: "Baldev Singh",
		Gender:            domain.GenderMale,
		CentreID:          "1000",
	}

	tests := []struct {
		name    string
		mutate  func(*domain.ImportRecord)
		wantErr string
	}{
		{
			name:   "valid record passes",
			mutate: func(r *domain.ImportRecord) {},
		},
		{
			name:    "missing name",
			mutate:  func(r *domain.ImportRecord) { r.Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "missing father husband name",
			mutate:  func(r *domain.ImportRecord) { r.FatherHusbandName = "" },
			wantErr: "father/husband name is required",
		},
		{
			name:    "missing badge number",
			mutate:  func(r *domain.ImportRecord) { r.BadgeNumber = "" },
			wantErr: "badge number is required",
		},
		{
			name:    "malformed badge number",
			mutate:  func(r *domain.ImportRecord) { r.BadgeNumber = "HI-1000" },
			wantErr: "badge format",
		},
		{
			name:    "lowercase badge rejected",
			mutate:  func(r *domain.ImportRecord) { r.BadgeNumber = "hi1000ga0001" },
			wantErr: "badge format",
		},
		{
			name:    "invalid gender",
			mutate:  func(r *domain.ImportRecord) { r.Gender = "OTHER" },
			wantErr: "gender must be MALE or FEMALE",
		},
		{
			name:    "missing centre id",
			mutate:  func(r *domain.ImportRecord) { r.CentreID = "" },
			wantErr: "centre id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)

			ok, violations := Validate(rec)
			if tt.wantErr == "" {
				assert.True(t, ok)
				assert.Empty(t, violations)
				return
			}
			assert.False(t, ok)
			require.NotEmpty(t, violations)
			assert.Contains(t, violations[0], tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	ok, violations := Validate(domain.ImportRecord{})

	assert.False(t, ok)
	// name, father name, badge, gender, centre id all missing at once
	assert.Len(t, violations, 5)
}
