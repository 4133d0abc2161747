// Package parser decodes raw import payloads (CSV, JSON, XLSX) into an
// ordered sequence of flat field->value records, with format and character
// encoding auto-detection.
package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported input format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatXLSX    Format = "xlsx"
	FormatUnknown Format = "unknown"
)

// ParseError is the batch-fatal error returned when content cannot be
// detected or decoded. Row-level problems are reported as warnings on the
// Result instead.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(err error, format string, args ...interface{}) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Err: err}
}

// Options controls parsing behavior. The zero value auto-detects everything.
type Options struct {
	// Filename is the original file name, used as a detection hint.
	Filename string
	// Format forces a specific format and skips detection.
	Format Format
	// Delimiter forces a specific CSV field delimiter.
	Delimiter rune
	// MaxRows limits the number of data rows parsed (0 = unlimited).
	MaxRows int

	// ArrayField names the JSON object field holding the record array.
	ArrayField string
	// FlattenNested flattens nested JSON objects into dotted-path keys.
	FlattenNested bool

	// Sheet selects a spreadsheet sheet by name; empty uses SheetIndex.
	Sheet string
	// SheetIndex selects a spreadsheet sheet by position.
	SheetIndex int
	// HeaderRow is the 0-based row containing column headers.
	HeaderRow int
}

// Result holds the outcome of a parse operation.
type Result struct {
	Records  []map[string]interface{}
	Format   Format
	Encoding string
	Warnings []string
}

// Parse decodes content into records, auto-detecting the format unless a
// hint is given in opts. It returns a *ParseError when the format cannot be
// detected or the content is unparseable; it never returns a partial result
// alongside an error.
func Parse(content []byte, opts Options) (*Result, error) {
	format := opts.Format
	if format == "" || format == FormatUnknown {
		format = DetectFormat(content, opts.Filename)
	}

	switch format {
	case FormatCSV:
		return parseCSV(content, opts)
	case FormatJSON:
		return parseJSON(content, opts)
	case FormatXLSX:
		return parseXLSX(content, opts)
	}
	return nil, parseErrorf(nil, "could not detect format for file %q", opts.Filename)
}

// DetectFormat sniffs the input format from content and filename.
// An explicit filename extension wins over content sniffing.
func DetectFormat(content []byte, filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	}

	sample := content
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(sample, utf8BOM), " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	if bytes.ContainsRune(sample, '\n') {
		for _, d := range csvDelimiters {
			if bytes.ContainsRune(sample, d) {
				return FormatCSV
			}
		}
	}
	return FormatUnknown
}
