// =============================================================================
// Payments Engine - CSV Parser Module
// =============================================================================
//
// This module streams transaction rows out of a CSV file. Rows are read one
// at a time so arbitrarily large inputs never have to fit in memory.
//
// FORMAT:
//   - Rows carry either 4 fields (type, client, tx, amount) or 3 fields
//     (type, client, tx). The parser accepts any field count; deciding what
//     is structurally valid is left to the validation package.
//   - Fields are trimmed.
//   - The first row is skipped when it matches one of the recognized header
//     shapes (case-insensitive). Otherwise it is returned as data.
//   - Rows whose fields are all empty are skipped.
//
// USAGE:
//   parser, err := csvparser.Open(path, settings)
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   for parser.Next() {
//       fields := parser.Row()
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Settings configures the parser.
type Settings struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune

	// Headers lists the header shapes recognized on the first row.
	Headers [][]string
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads rows from a CSV stream one at a time.
type StreamingParser struct {
	closer     io.Closer
	reader     *csv.Reader
	headers    [][]string
	currentRow []string
	rowNumber  int
	sawFirst   bool
	err        error
}

// Open opens the CSV file at path. The returned parser owns the file and
// closes it on Close.
func Open(path string, settings Settings) (*StreamingParser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser := NewStreamingParser(file, settings)
	parser.closer = file

	return parser, nil
}

// NewStreamingParser returns a parser reading from r. Close is a no-op unless
// the parser was created by Open.
func NewStreamingParser(r io.Reader, settings Settings) *StreamingParser {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, settings)

	return &StreamingParser{
		reader:  reader,
		headers: settings.Headers,
	}
}

// configureReader applies the settings to the CSV reader.
func configureReader(reader *csv.Reader, settings Settings) {
	if settings.Delimiter != 0 {
		reader.Comma = settings.Delimiter
	}

	// Three- and four-field rows are mixed in one file.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false
}

// Next advances to the next data row. It returns false at end of input or
// on error; check Err afterwards.
func (p *StreamingParser) Next() bool {
	for {
		if p.err != nil {
			return false
		}

		row, err := p.reader.Read()
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
			return false
		}

		if line, _ := p.reader.FieldPos(0); line > 0 {
			p.rowNumber = line
		} else {
			p.rowNumber++
		}

		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}

		if isRowEmpty(row) {
			continue
		}

		if !p.sawFirst {
			p.sawFirst = true
			if p.isHeader(row) {
				continue
			}
		}

		p.currentRow = row
		return true
	}
}

func (p *StreamingParser) isHeader(row []string) bool {
	for _, header := range p.headers {
		if MatchesHeader(row, header) {
			return true
		}
	}
	return false
}

// Row returns the fields of the current row.
func (p *StreamingParser) Row() []string {
	return p.currentRow
}

// RowNumber returns the 1-indexed line of the current row.
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns the first error met while reading.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file, if the parser owns one.
func (p *StreamingParser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// MatchesHeader reports whether row equals header, ignoring case and
// surrounding whitespace.
func MatchesHeader(row, header []string) bool {
	if len(row) != len(header) {
		return false
	}
	for i := range row {
		if !strings.EqualFold(strings.TrimSpace(row[i]), strings.TrimSpace(header[i])) {
			return false
		}
	}
	return true
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
