package parsers

import (
	"context"
	"io"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// ParseResult contains the parsed rows and parsing statistics. RowNumber on
// each record points at the source file line (header row + 1-based index).
type ParseResult struct {
	Records     []domain.ImportRecord
	TotalRows   int
	SkippedRows int
	Columns     []string
	Format      string
}

// RowSource is the spreadsheet-parsing collaborator: it turns a binary file
// into the structured records the pipeline expects. Badge status free text is
// carried as-is; normalization belongs to the pipeline, not the parser.
type RowSource interface {
	// Parse reads and parses the file from the given path
	Parse(ctx context.Context, filePath string) (*ParseResult, error)

	// ParseStream reads and parses from an io.Reader
	ParseStream(ctx context.Context, reader io.Reader) (*ParseResult, error)

	// SupportedFormats returns the file extensions this parser supports
	SupportedFormats() []string
}

// ParserConfig holds configuration for all parsers
type ParserConfig struct {
	// SkipEmptyRows determines if empty rows should be skipped
	SkipEmptyRows bool

	// TrimWhitespace determines if cell values should be trimmed
	TrimWhitespace bool

	// MaxFileSize is the maximum file size in bytes (0 = unlimited)
	MaxFileSize int64
}

// DefaultParserConfig returns sensible defaults
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		SkipEmptyRows:  true,
		TrimWhitespace: true,
		MaxFileSize:    100 * 1024 * 1024, // 100 MB
	}
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
