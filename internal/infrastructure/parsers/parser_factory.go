package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParserFactory hands out the right RowSource for a file
type ParserFactory struct {
	config  *ParserConfig
	parsers map[string]RowSource
}

// NewParserFactory creates a factory with all supported parsers registered
func NewParserFactory(config *ParserConfig) *ParserFactory {
	if config == nil {
		config = DefaultParserConfig()
	}

	f := &ParserFactory{
		config:  config,
		parsers: make(map[string]RowSource),
	}

	f.register(NewExcelParser(config))
	f.register(NewCSVParser(config))

	return f
}

func (f *ParserFactory) register(parser RowSource) {
	for _, ext := range parser.SupportedFormats() {
		f.parsers[ext] = parser
	}
}

// ForFile returns the parser for a filename based on its extension
func (f *ParserFactory) ForFile(filename string) (RowSource, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	parser, ok := f.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	return parser, nil
}

// SupportedFormats lists every registered extension
func (f *ParserFactory) SupportedFormats() []string {
	formats := make([]string, 0, len(f.parsers))
	for ext := range f.parsers {
		formats = append(formats, ext)
	}
	return formats
}
