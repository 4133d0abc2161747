package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads one sheet of a spreadsheet, selected by name or index,
// with a configurable header row. A parsed sheet with zero data rows is a
// ParseError.
func parseXLSX(content []byte, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, parseErrorf(err, "could not open spreadsheet")
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if opts.SheetIndex < 0 || opts.SheetIndex >= len(sheets) {
			return nil, parseErrorf(nil, "sheet index %d out of range (%d sheets)", opts.SheetIndex, len(sheets))
		}
		sheet = sheets[opts.SheetIndex]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, parseErrorf(err, "could not read sheet %q", sheet)
	}
	if opts.HeaderRow >= len(rows) {
		return nil, parseErrorf(nil, "header row %d beyond sheet size %d", opts.HeaderRow, len(rows))
	}

	header := rows[opts.HeaderRow]
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}

	var (
		records  []map[string]interface{}
		warnings []string
	)
	for i, row := range rows[opts.HeaderRow+1:] {
		if opts.MaxRows > 0 && len(records) >= opts.MaxRows {
			break
		}
		if len(row) == 0 {
			warnings = append(warnings, fmt.Sprintf("skipped empty row %d", i+1))
			continue
		}
		record := make(map[string]interface{}, len(header))
		for j, col := range header {
			if col == "" {
				continue
			}
			if j < len(row) {
				record[col] = row[j]
			} else {
				record[col] = ""
			}
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, parseErrorf(nil, "sheet %q has no data rows", sheet)
	}

	return &Result{
		Records:  records,
		Format:   FormatXLSX,
		Warnings: warnings,
	}, nil
}
