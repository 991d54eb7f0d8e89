// =============================================================================
// Payments Engine - XLSX Transaction Reader
// =============================================================================
//
// This module reads transaction rows from an Excel workbook. It is the
// spreadsheet counterpart of the CSV parser and yields rows through the same
// Next/Row/RowNumber/Err/Close iteration.
//
// WORKSHEET LAYOUT:
//   | Column A | Column B | Column C | Column D |
//   |----------|----------|----------|----------|
//   | type     | client   | tx       | amount   |   <- optional header row
//   | deposit  | 1        | 1        | 1.0      |
//   | dispute  | 1        | 1        |          |
//
//   Trailing empty cells are dropped, so a dispute row yields three fields.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payments-engine/internal/csvparser"
)

// Settings configures the reader.
type Settings struct {
	// Sheet is the worksheet to read. Empty selects the first sheet.
	Sheet string

	// Headers lists the header shapes recognized on the first row.
	Headers [][]string
}

// Reader streams rows out of one worksheet.
type Reader struct {
	file       *excelize.File
	rows       *excelize.Rows
	headers    [][]string
	sheet      string
	currentRow []string
	rowNumber  int
	sawFirst   bool
	err        error
}

// Open opens the workbook at path and positions the reader before the first
// row of the selected sheet.
func Open(path string, settings Settings) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet := settings.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &Reader{
		file:    f,
		rows:    rows,
		headers: settings.Headers,
		sheet:   sheet,
	}, nil
}

// Next advances to the next data row.
func (r *Reader) Next() bool {
	for {
		if r.err != nil {
			return false
		}

		if !r.rows.Next() {
			if err := r.rows.Error(); err != nil {
				r.err = fmt.Errorf("error reading sheet %q: %w", r.sheet, err)
			}
			return false
		}
		r.rowNumber++

		row, err := r.rows.Columns()
		if err != nil {
			r.err = fmt.Errorf("error reading row %d: %w", r.rowNumber, err)
			return false
		}

		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}

		if isRowEmpty(row) {
			continue
		}

		if !r.sawFirst {
			r.sawFirst = true
			if r.isHeader(row) {
				continue
			}
		}

		r.currentRow = row
		return true
	}
}

func (r *Reader) isHeader(row []string) bool {
	for _, header := range r.headers {
		if csvparser.MatchesHeader(row, header) {
			return true
		}
	}
	return false
}

// Row returns the fields of the current row.
func (r *Reader) Row() []string {
	return r.currentRow
}

// RowNumber returns the 1-indexed worksheet row of the current row.
func (r *Reader) RowNumber() int {
	return r.rowNumber
}

// Err returns the first error met while reading.
func (r *Reader) Err() error {
	return r.err
}

// Sheet returns the name of the worksheet being read.
func (r *Reader) Sheet() string {
	return r.sheet
}

// Close releases the row iterator and the workbook.
func (r *Reader) Close() error {
	if err := r.rows.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
