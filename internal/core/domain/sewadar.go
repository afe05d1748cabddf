package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge status values. Anything the import file carries that is not
// PERMANENT or OPEN is coerced to TEMPORARY.
const (
	BadgeStatusPermanent = "PERMANENT"
	BadgeStatusOpen      = "OPEN"
	BadgeStatusTemporary = "TEMPORARY"
)

// Gender values accepted on import
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// badgePattern is the organization badge format: two-letter area code,
// four-digit centre code, two-letter gender/type code, four-digit sequence.
// Example: HI1000GA0001.
var badgePattern = regexp.MustCompile(`^[A-Z]{2}\d{4}[A-Z]{2}\d{4}$`)

// Sewadar represents a volunteer record
type Sewadar struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BadgeNumber       string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"badge_number"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	FatherHusbandName string    `gorm:"type:varchar(255);not null" json:"father_husband_name"`
	DOB               string    `gorm:"type:varchar(20)" json:"dob,omitempty"`
	Age               int       `gorm:"default:0" json:"age,omitempty"`
	Gender            string    `gorm:"type:varchar(10);not null" json:"gender"`
	BadgeStatus       string    `gorm:"type:varchar(20);not null;default:'TEMPORARY';index:idx_sewadars_status" json:"badge_status"`
	Zone              string    `gorm:"type:varchar(100)" json:"zone,omitempty"`
	CentreID          string    `gorm:"type:varchar(20);not null;index:idx_sewadars_centre" json:"centre_id"`
	AreaCode          string    `gorm:"type:varchar(10);index:idx_sewadars_area" json:"area_code,omitempty"`
	Department        string    `gorm:"type:varchar(100)" json:"department,omitempty"`
	ContactNo         string    `gorm:"type:varchar(50)" json:"contact_no,omitempty"`
	CreatedBy         string    `gorm:"type:varchar(100)" json:"created_by,omitempty"`
	UpdatedBy         string    `gorm:"type:varchar(100)" json:"updated_by,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Sewadar) TableName() string {
	return "sewadars"
}

// BeforeCreate GORM hook - called before creating a record
func (s *Sewadar) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsTemporary reports whether the record lacks a permanent badge
func (s *Sewadar) IsTemporary() bool {
	return s.BadgeStatus == BadgeStatusTemporary
}

// NormalizeBadgeStatus coerces a raw spreadsheet status to a canonical value.
// PERMANENT and OPEN survive (case-insensitive, trimmed); everything else,
// including an empty cell, becomes TEMPORARY.
func NormalizeBadgeStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case BadgeStatusPermanent:
		return BadgeStatusPermanent
	case BadgeStatusOpen:
		return BadgeStatusOpen
	default:
		return BadgeStatusTemporary
	}
}

// IsValidGender checks if a gender value is accepted
func IsValidGender(gender string) bool {
	return gender == GenderMale || gender == GenderFemale
}

// IsValidBadgeNumber checks a badge number against the organization format
func IsValidBadgeNumber(badge string) bool {
	return badgePattern.MatchString(badge)
}
