package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var keyFolder = cases.Fold()

// ImportRecord is one parsed spreadsheet row handed to the pipeline.
// RowNumber points back at the source file (header row + 1-based index + 1)
// for error attribution.
type ImportRecord struct {
	RowNumber         int    `json:"row_number"`
	BadgeNumber       string `json:"badge_number,omitempty"`
	Name              string `json:"name"`
	FatherHusbandName string `json:"father_husband_name"`
	DOB               string `json:"dob,omitempty"`
	Age               int    `json:"age,omitempty"`
	Gender            string `json:"gender"`
	BadgeStatus       string `json:"badge_status,omitempty"`
	Zone              string `json:"zone,omitempty"`
	CentreID          string `json:"centre_id"`
	Department        string `json:"department,omitempty"`
	ContactNo         string `json:"contact_no,omitempty"`
}

// Normalize trims the identifying fields and coerces the badge status.
// Runs once per row before any matching.
func (r *ImportRecord) Normalize() {
	r.BadgeNumber = strings.ToUpper(strings.TrimSpace(r.BadgeNumber))
	r.Name = strings.TrimSpace(r.Name)
	r.FatherHusbandName = strings.TrimSpace(r.FatherHusbandName)
	r.Gender = strings.ToUpper(strings.TrimSpace(r.Gender))
	r.CentreID = strings.TrimSpace(r.CentreID)
	r.BadgeStatus = NormalizeBadgeStatus(r.BadgeStatus)
}

// DedupKey is the composite key used to match temporary records independent
// of badge number: lowercase(name) + "_" + lowercase(father/husband name) +
// "_" + centreId. Case folding uses Unicode folding rather than ASCII
// lowering so names survive non-Latin scripts.
func (r *ImportRecord) DedupKey() string {
	return DedupKey(r.Name, r.FatherHusbandName, r.CentreID)
}

// DedupKey builds the temporary-match composite key from its parts
func DedupKey(name, fatherHusbandName, centreID string) string {
	return fmt.Sprintf("%s_%s_%s",
		keyFolder.String(strings.TrimSpace(name)),
		keyFolder.String(strings.TrimSpace(fatherHusbandName)),
		strings.TrimSpace(centreID),
	)
}

// ToSewadar builds a store record from the import row. Audit fields carry the
// submitting actor; area code scopes centre lookups.
func (r *ImportRecord) ToSewadar(areaCode, actorID string) Sewadar {
	return Sewadar{
		BadgeNumber:       r.BadgeNumber,
		Name:              r.Name,
		FatherHusbandName: r.FatherHusbandName,
		DOB:               r.DOB,
		Age:               r.Age,
		Gender:            r.Gender,
		BadgeStatus:       r.BadgeStatus,
		Zone:              r.Zone,
		CentreID:          r.CentreID,
		AreaCode:          areaCode,
		Department:        r.Department,
		ContactNo:         r.ContactNo,
		CreatedBy:         actorID,
		UpdatedBy:         actorID,
	}
}
