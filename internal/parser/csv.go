package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvDelimiters is the delimiter probe order for tabular text.
var csvDelimiters = []rune{',', ';', '\t', '|'}

// csvEncodings is the decode probe order: BOM-prefixed UTF-8, plain UTF-8,
// then the two legacy 8-bit encodings seen in marketplace exports. The BOM
// probe runs first because a BOM is itself valid UTF-8 and would otherwise
// leak into the first header name.
var csvEncodings = []struct {
	name   string
	decode func([]byte) (string, bool)
}{
	{"utf-8-sig", decodeUTF8SIG},
	{"utf-8", decodeUTF8},
	{"latin-1", decodeCharmapFunc(charmap.ISO8859_1)},
	{"windows-1252", decodeCharmapFunc(charmap.Windows1252)},
}

func decodeUTF8(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func decodeUTF8SIG(b []byte) (string, bool) {
	if !bytes.HasPrefix(b, utf8BOM) {
		return "", false
	}
	return decodeUTF8(bytes.TrimPrefix(b, utf8BOM))
}

func decodeCharmapFunc(cm *charmap.Charmap) func([]byte) (string, bool) {
	return func(b []byte) (string, bool) {
		decoded, err := cm.NewDecoder().Bytes(b)
		if err != nil {
			return "", false
		}
		return string(decoded), true
	}
}

// parseCSV tries every encoding x delimiter strategy and accepts the first
// one that yields more than one column and at least one data row. Malformed
// rows are skipped with a warning rather than failing the whole parse.
func parseCSV(content []byte, opts Options) (*Result, error) {
	delimiters := csvDelimiters
	if opts.Delimiter != 0 {
		delimiters = []rune{opts.Delimiter}
	}

	var warnings []string
	for _, enc := range csvEncodings {
		text, ok := enc.decode(content)
		if !ok {
			continue
		}
		for _, delim := range delimiters {
			records, rowWarnings, err := readCSV(text, delim, opts.MaxRows)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("strategy %s/%q failed: %v", enc.name, delim, err))
				continue
			}
			warnings = append(warnings, rowWarnings...)
			return &Result{
				Records:  records,
				Format:   FormatCSV,
				Encoding: enc.name,
				Warnings: warnings,
			}, nil
		}
	}
	return nil, parseErrorf(nil, "no CSV decode strategy succeeded (%d attempts failed)", len(warnings))
}

// errStrategy is returned by readCSV when the decoded table does not look
// like a real CSV for the probed delimiter.
var errStrategy = fmt.Errorf("not a usable table")

func readCSV(text string, delim rune, maxRows int) ([]map[string]interface{}, []string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, errStrategy
	}
	if len(header) < 2 {
		return nil, nil, errStrategy
	}
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}

	var (
		records  []map[string]interface{}
		warnings []string
		rowNum   int
	)
	for {
		if maxRows > 0 && len(records) >= maxRows {
			break
		}
		row, err := r.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped malformed row %d: %v", rowNum, err))
			continue
		}
		if len(row) != len(header) {
			warnings = append(warnings, fmt.Sprintf("skipped row %d: expected %d fields, got %d", rowNum, len(header), len(row)))
			continue
		}
		record := make(map[string]interface{}, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			record[col] = row[i]
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, nil, errStrategy
	}
	return records, warnings, nil
}
