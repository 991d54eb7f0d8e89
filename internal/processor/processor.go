// =============================================================================
// Payments Engine - Processor Module
// =============================================================================
//
// This module orchestrates one processing run. It pulls raw rows from a
// source, validates them into transaction records, routes each record to the
// account book, and keeps per-run statistics, rejections and metrics.
//
// PROCESSING PIPELINE:
//   1. Read the next row from the source (CSV or XLSX)
//   2. Validate the row into a TransactionRecord
//   3. Apply the record to the client's ledger
//   4. Log and count the outcome
//   5. At end of input, snapshot the account book
//
// ERROR HANDLING:
//   - A row with the wrong field count, or a source I/O error, aborts the
//     run. No accounts are returned.
//   - A row with a bad field value, or a record the ledger refuses, is
//     logged at WARN and skipped. The run continues.
//
// CONCURRENCY:
//   Records are applied strictly in input order on the calling goroutine.
//   A Processor must not be shared between goroutines.
//
// =============================================================================

package processor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payments-engine/internal/ledger"
	"github.com/ginjaninja78/payments-engine/internal/metrics"
	"github.com/ginjaninja78/payments-engine/internal/types"
	"github.com/ginjaninja78/payments-engine/internal/validation"
)

// Source yields raw input rows. csvparser.StreamingParser and
// xlsxparser.Reader both satisfy it.
type Source interface {
	Next() bool
	Row() []string
	RowNumber() int
	Err() error
	Close() error
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// RunID identifies the run in logs and output file names.
	RunID string

	// Accounts is the final state of every client seen, ordered by client id.
	Accounts []ledger.Summary

	// Stats contains processing statistics.
	Stats Stats

	// Rejections lists every skipped record, when Options.KeepRejections is set.
	Rejections []Rejection
}

// Stats contains statistics about the run.
type Stats struct {
	// RowsRead is the number of data rows read from the source.
	RowsRead int

	// Applied is the number of records that changed a ledger.
	Applied int

	// Rejected is the number of records refused by validation or a ledger.
	Rejected int

	// RejectedByCode breaks Rejected down by error code.
	RejectedByCode map[string]int

	// HeldShortfalls counts resolves and chargebacks that were skipped
	// because the held funds were below the disputed amount.
	HeldShortfalls int

	// Clients is the number of accounts in the result.
	Clients int

	// LockedAccounts is the number of accounts locked by a chargeback.
	LockedAccounts int

	// ProcessingTime is the wall time of the run.
	ProcessingTime time.Duration
}

// Rejection describes one skipped record.
type Rejection struct {
	Row     int
	Code    string
	Record  string
	Message string
}

// Options tunes a Processor.
type Options struct {
	// KeepRejections collects every rejection in Result.Rejections.
	// Off by default since rejections grow with the input.
	KeepRejections bool
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor runs transaction rows through an account book.
type Processor struct {
	book    *ledger.AccountBook
	logger  *zap.Logger
	metrics *metrics.Metrics
	options Options
	runID   string

	stats      Stats
	rejections []Rejection
}

// New creates a Processor with an empty account book.
//
// PARAMETERS:
//   - logger: Destination for per-record diagnostics. Nil discards them.
//   - m: Instruments updated during the run. Nil creates a private set.
//   - options: Processing options.
//
// RETURNS:
//   - A new Processor instance.
func New(logger *zap.Logger, m *metrics.Metrics, options Options) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New("payments")
	}

	runID := uuid.New().String()

	return &Processor{
		book:    ledger.NewAccountBook(),
		logger:  logger.With(zap.String("run_id", runID)),
		metrics: m,
		options: options,
		runID:   runID,
		stats: Stats{
			RejectedByCode: make(map[string]int),
		},
	}
}

// RunID returns the identifier of this processor's run.
func (p *Processor) RunID() string {
	return p.runID
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run consumes the source to the end and returns the final account states.
// The source is closed before Run returns.
//
// RETURNS:
//   - The Result of the run.
//   - An error if the input is malformed or cannot be read.
func (p *Processor) Run(source Source) (result Result, err error) {
	startTime := time.Now()

	defer func() {
		if closeErr := source.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close source: %w", closeErr)
		}
	}()

	p.logger.Info("processing started")

	// =========================================================================
	// STEP 1: STREAM RECORDS
	// =========================================================================
	// Each row is validated and applied before the next one is read.

	for source.Next() {
		if err := p.Process(source.Row(), source.RowNumber()); err != nil {
			return Result{}, err
		}
	}

	if err := source.Err(); err != nil {
		return Result{}, fmt.Errorf("failed to read input: %w", err)
	}

	// =========================================================================
	// STEP 2: SNAPSHOT ACCOUNTS
	// =========================================================================

	accounts := p.book.Snapshot()

	p.stats.Clients = len(accounts)
	p.stats.LockedAccounts = 0
	for _, account := range accounts {
		if account.Locked {
			p.stats.LockedAccounts++
		}
	}
	p.stats.ProcessingTime = time.Since(startTime)

	p.metrics.Clients.Set(float64(p.stats.Clients))
	p.metrics.LockedAccounts.Set(float64(p.stats.LockedAccounts))
	p.metrics.RunDuration.Set(p.stats.ProcessingTime.Seconds())

	// =========================================================================
	// COMPLETE
	// =========================================================================

	p.logger.Info("processing complete",
		zap.Int("rows", p.stats.RowsRead),
		zap.Int("applied", p.stats.Applied),
		zap.Int("rejected", p.stats.Rejected),
		zap.Int("held_shortfalls", p.stats.HeldShortfalls),
		zap.Int("clients", p.stats.Clients),
		zap.Int("locked", p.stats.LockedAccounts),
		zap.Duration("elapsed", p.stats.ProcessingTime),
	)

	return Result{
		RunID:      p.runID,
		Accounts:   accounts,
		Stats:      p.stats,
		Rejections: p.rejections,
	}, nil
}

// Process validates and applies a single raw row. It returns an error only
// for a structurally malformed row; every other problem is recorded as a
// rejection.
func (p *Processor) Process(fields []string, row int) error {
	p.stats.RowsRead++
	p.metrics.RowsRead.Inc()

	record, err := validation.Validate(fields, row)
	if err != nil {
		if errors.Is(err, validation.ErrMalformedRecord) {
			p.logger.Error("malformed record",
				zap.Int("row", row),
				zap.Strings("fields", fields),
				zap.Error(err),
			)
			return err
		}

		p.reject(row, string(validation.CodeOf(err)), strings.Join(fields, ","), err)
		return nil
	}

	p.apply(record)
	return nil
}

// apply routes a validated record to its ledger and accounts for the outcome.
func (p *Processor) apply(record types.TransactionRecord) {
	outcome, err := p.book.Apply(record)

	switch outcome {
	case ledger.OutcomeApplied:
		p.stats.Applied++
		p.metrics.Applied.WithLabelValues(record.Kind.String()).Inc()
		p.logger.Debug("record applied", recordFields(record)...)

	case ledger.OutcomeHeldShortfall:
		p.stats.HeldShortfalls++
		p.metrics.HeldShortfalls.Inc()
		p.logger.Warn("held funds below disputed amount, record skipped", recordFields(record)...)

	default:
		p.reject(record.Row, string(ledger.CodeOf(err)), record.String(), err)
	}
}

// reject logs and counts a skipped record.
func (p *Processor) reject(row int, code, record string, err error) {
	p.stats.Rejected++
	p.stats.RejectedByCode[code]++
	p.metrics.Rejected.WithLabelValues(code).Inc()

	p.logger.Warn("record rejected",
		zap.Int("row", row),
		zap.String("code", code),
		zap.String("record", record),
		zap.Error(err),
	)

	if p.options.KeepRejections {
		p.rejections = append(p.rejections, Rejection{
			Row:     row,
			Code:    code,
			Record:  record,
			Message: err.Error(),
		})
	}
}

func recordFields(record types.TransactionRecord) []zap.Field {
	return []zap.Field{
		zap.Int("row", record.Row),
		zap.Stringer("kind", record.Kind),
		zap.Uint16("client", uint16(record.Client)),
		zap.Uint32("tx", uint32(record.Tx)),
		zap.Stringer("amount", record.Amount),
	}
}
