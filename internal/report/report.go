// =============================================================================
// Payments Engine - Account Report
// =============================================================================
//
// This module renders the final account states. Every format carries the same
// five columns:
//
//   client, available, held, total, locked
//
// Amounts always have exactly four fractional digits and locked is rendered
// as true/false.
//
// FORMATS:
//   csv  - header line followed by one line per client (default)
//   xlsx - one worksheet, header row followed by one row per client
//   xml  - <accounts><account client="1">...</account></accounts>
//
// A row that fails to write is logged and skipped; the remaining rows are
// still written.
//
// =============================================================================

package report

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/ginjaninja78/payments-engine/internal/config"
	"github.com/ginjaninja78/payments-engine/internal/ledger"
)

// Row is one rendered account.
type Row struct {
	Client    string
	Available string
	Held      string
	Total     string
	Locked    string
}

// Fields returns the row's values in column order.
func (r Row) Fields() []string {
	return []string{r.Client, r.Available, r.Held, r.Total, r.Locked}
}

// Rows renders account summaries in the order given.
func Rows(accounts []ledger.Summary) []Row {
	rows := make([]Row, 0, len(accounts))
	for _, account := range accounts {
		rows = append(rows, Row{
			Client:    strconv.FormatUint(uint64(account.Client), 10),
			Available: account.Balance.Available.String(),
			Held:      account.Balance.Held.String(),
			Total:     account.Balance.Total().String(),
			Locked:    strconv.FormatBool(account.Locked),
		})
	}
	return rows
}

// Options configures a Writer.
type Options struct {
	// SheetName names the XLSX worksheet. Empty means "accounts".
	SheetName string

	// Logger receives per-row write failures. Nil discards them.
	Logger *zap.Logger
}

// Writer renders rows in one output format.
type Writer interface {
	Write(w io.Writer, rows []Row) error
}

// NewWriter returns the writer for format.
func NewWriter(format string, options Options) (Writer, error) {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.SheetName == "" {
		options.SheetName = "accounts"
	}

	switch format {
	case config.FormatCSV, "":
		return &csvWriter{logger: options.Logger}, nil
	case config.FormatXLSX:
		return &xlsxWriter{logger: options.Logger, sheet: options.SheetName}, nil
	case config.FormatXML:
		return &xmlWriter{logger: options.Logger}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// Write renders accounts to w in the given format.
func Write(w io.Writer, format string, accounts []ledger.Summary, options Options) error {
	writer, err := NewWriter(format, options)
	if err != nil {
		return err
	}
	return writer.Write(w, Rows(accounts))
}
