package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBadgeStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase permanent", "permanent", BadgeStatusPermanent},
		{"padded open", "Open ", BadgeStatusOpen},
		{"unknown value", "xyz", BadgeStatusTemporary},
		{"empty value", "", BadgeStatusTemporary},
		{"exact permanent", "PERMANENT", BadgeStatusPermanent},
		{"mixed case open", "oPeN", BadgeStatusOpen},
		{"whitespace only", "   ", BadgeStatusTemporary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBadgeStatus(tt.raw))
		})
	}
}

func TestIsValidBadgeNumber(t *testing.T) {
	assert.True(t, IsValidBadgeNumber("HI1000GA0001"))
	assert.True(t, IsValidBadgeNumber("BD2041LT9999"))

	assert.False(t, IsValidBadgeNumber(""))
	assert.False(t, IsValidBadgeNumber("HI1000GA1"))
	assert.False(t, IsValidBadgeNumber("hi1000ga0001"))
	assert.False(t, IsValidBadgeNumber("HI1000GA00011"))
	assert.False(t, IsValidBadgeNumber("H11000GA0001"))
}

func TestIsValidGender(t *testing.T) {
	assert.True(t, IsValidGender(GenderMale))
	assert.True(t, IsValidGender(GenderFemale))
	assert.False(t, IsValidGender("male"))
	assert.False(t, IsValidGender("OTHER"))
	assert.False(t, IsValidGender(""))
}

func TestImportRecord_Normalize(t *testing.T) {
	rec := ImportRecord{
		BadgeNumber:       " hi1000ga0001 ",
		Name:              "  Amar Singh ",
		FatherHusbandName: " Baldev Singh  ",
		Gender:            " male",
		CentreID:          " 1000 ",
		BadgeStatus:       "permanent",
	}

	rec.Normalize()

	assert.Equal(t, "HI1000GA0001", rec.BadgeNumber)
	assert.Equal(t, "Amar Singh", rec.Name)
	assert.Equal(t, "Baldev Singh", rec.FatherHusbandName)
	assert.Equal(t, GenderMale, rec.Gender)
	assert.Equal(t, "1000", rec.CentreID)
	assert.Equal(t, BadgeStatusPermanent, rec.BadgeStatus)
}

func TestDedupKey_CaseInsensitive(t *testing.T) {
	a := DedupKey("Amar Singh", "Baldev Singh", "1000")
	b := DedupKey("AMAR SINGH", "baldev singh", "1000")
	c := DedupKey(" Amar Singh ", "Baldev Singh", "1000")

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)

	assert.NotEqual(t, a, DedupKey("Amar Singh", "Baldev Singh", "2000"))
	assert.NotEqual(t, a, DedupKey("Amar Singh", "Karam Singh", "1000"))
}

func TestImportRecord_ToSewadar(t *testing.T) {
	rec := ImportRecord{
		RowNumber:         5,
		BadgeNumber:       "HI1000GA0001",
		Name:              "Amar Singh",
		FatherHusbandName: "Baldev Singh",
		Gender:            GenderMale,
		BadgeStatus:       BadgeStatusPermanent,
		CentreID:          "1000",
	}

	s := rec.ToSewadar("HI", "admin@centre")

	assert.Equal(t, "HI1000GA0001", s.BadgeNumber)
	assert.Equal(t, "HI", s.AreaCode)
	assert.Equal(t, "admin@centre", s.CreatedBy)
	assert.Equal(t, "admin@centre", s.UpdatedBy)
	assert.Equal(t, BadgeStatusPermanent, s.BadgeStatus)
}
