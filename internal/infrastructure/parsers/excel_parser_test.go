package parsers

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func sampleWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	return writeSheet(t, [][]interface{}{
		{"Badge Number", "Name", "Father/Husband Name", "Gender", "Badge Status", "Centre ID", "Age"},
		{"HI1000GA0001", "Amar Singh", "Baldev Singh", "MALE", "PERMANENT", "1000", 35},
		{"", "", "", "", "", "", ""},
		{"HI1000LT0002", "Kiran Kaur", "Harjit Singh", "FEMALE", "temporary", "1000", nil},
	})
}

func TestExcelParser_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sewadars.xlsx")
	require.NoError(t, sampleWorkbook(t).SaveAs(path))

	p := NewExcelParser(nil)
	result, err := p.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "XLSX", result.Format)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.SkippedRows)
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, 2, first.RowNumber)
	assert.Equal(t, "HI1000GA0001", first.BadgeNumber)
	assert.Equal(t, "Amar Singh", first.Name)
	assert.Equal(t, 35, first.Age)
	assert.Equal(t, "1000", first.CentreID)

	second := result.Records[1]
	assert.Equal(t, 4, second.RowNumber)
	assert.Equal(t, "temporary", second.BadgeStatus) // carried verbatim
	assert.Zero(t, second.Age)
}

func TestExcelParser_ParseStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleWorkbook(t).Write(&buf))

	p := NewExcelParser(nil)
	result, err := p.ParseStream(context.Background(), &buf)
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
}

func TestExcelParser_EmptySheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, excelize.NewFile().Write(&buf))

	p := NewExcelParser(nil)
	result, err := p.ParseStream(context.Background(), &buf)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.TotalRows)
}

func TestExcelParser_NotAnExcelFile(t *testing.T) {
	p := NewExcelParser(nil)

	_, err := p.ParseStream(context.Background(), bytes.NewReader([]byte("name,father\n")))
	assert.Error(t, err)
}

func TestParserFactory_ForFile(t *testing.T) {
	factory := NewParserFactory(nil)

	tests := []struct {
		filename   string
		wantFormat string
		wantErr    bool
	}{
		{filename: "sewadars.xlsx", wantFormat: ".xlsx"},
		{filename: "SEWADARS.XLSX", wantFormat: ".xlsx"},
		{filename: "sewadars.xls", wantFormat: ".xls"},
		{filename: "sewadars.csv", wantFormat: ".csv"},
		{filename: "sewadars.pdf", wantErr: true},
		{filename: "sewadars", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			parser, err := factory.ForFile(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported file format")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, parser.SupportedFormats(), tt.wantFormat)
		})
	}
}

func TestParserFactory_SupportedFormats(t *testing.T) {
	factory := NewParserFactory(nil)

	formats := factory.SupportedFormats()
	assert.ElementsMatch(t, []string{".xlsx", ".xls", ".csv"}, formats)
}
