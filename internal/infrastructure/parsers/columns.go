package parsers

import (
	"strconv"
	"strings"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// Column aliases accepted in the header row. Keys are normalized: lowercased
// with spaces, underscores, slashes and dots collapsed.
var columnAliases = map[string]string{
	"badgenumber":       "badge_number",
	"badgeno":           "badge_number",
	"badge":             "badge_number",
	"name":              "name",
	"sewadarname":       "name",
	"fatherhusbandname": "father_husband_name",
	"fathername":        "father_husband_name",
	"fatherhusband":     "father_husband_name",
	"dob":               "dob",
	"dateofbirth":       "dob",
	"age":               "age",
	"gender":            "gender",
	"badgestatus":       "badge_status",
	"status":            "badge_status",
	"zone":              "zone",
	"centreid":          "centre_id",
	"centerid":          "centre_id",
	"centre":            "centre_id",
	"center":            "centre_id",
	"department":        "department",
	"dept":              "department",
	"contactno":         "contact_no",
	"contactnumber":     "contact_no",
	"mobile":            "contact_no",
	"phone":             "contact_no",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	for _, cut := range []string{" ", "_", "/", ".", "-"} {
		h = strings.ReplaceAll(h, cut, "")
	}
	return h
}

// resolveColumns maps header positions to ImportRecord fields. Unknown
// columns are ignored; the pipeline validates required fields per row.
func resolveColumns(header []string) map[int]string {
	cols := make(map[int]string, len(header))
	for i, h := range header {
		if field, ok := columnAliases[normalizeHeader(h)]; ok {
			cols[i] = field
		}
	}
	return cols
}

// buildRecord fills an ImportRecord from one data row. rowNumber is the
// source file line: header row + 1-based data index.
func buildRecord(row []string, cols map[int]string, rowNumber int, trim bool) domain.ImportRecord {
	rec := domain.ImportRecord{RowNumber: rowNumber}

	for i, field := range cols {
		if i >= len(row) {
			continue
		}
		value := row[i]
		if trim {
			value = strings.TrimSpace(value)
		}

		switch field {
		case "badge_number":
			rec.BadgeNumber = value
		case "name":
			rec.Name = value
		case "father_husband_name":
			rec.FatherHusbandName = value
		case "dob":
			rec.DOB = value
		case "age":
			if n, err := strconv.Atoi(value); err == nil {
				rec.Age = n
			}
		case "gender":
			rec.Gender = value
		case "badge_status":
			rec.BadgeStatus = value
		case "zone":
			rec.Zone = value
		case "centre_id":
			rec.CentreID = value
		case "department":
			rec.Department = value
		case "contact_no":
			rec.ContactNo = value
		}
	}

	return rec
}
