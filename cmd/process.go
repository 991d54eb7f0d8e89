// =============================================================================
// Payments Engine - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs one transaction file
// through the engine and writes the account report.
//
// COMMAND USAGE:
//   payments process <file> [flags]
//
// FLAGS:
//   --output        : Report file (default: stdout, or output.dir)
//   --format        : Report format: csv, xlsx or xml
//   --input-format  : Input format: csv or xlsx (default: from the extension)
//   --rejections    : Write every rejected record to this file
//   --summary       : Write a run summary to this file
//   --metrics-file  : Write run metrics in Prometheus text format
//
// PROCESSING PIPELINE:
//   1. Load configuration and apply flag overrides
//   2. Build the logger
//   3. Open the input source
//   4. Run every record through the account book
//   5. Write the account report
//   6. Write the optional rejection log, summary and metrics files
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payments-engine/internal/config"
	"github.com/ginjaninja78/payments-engine/internal/csvparser"
	"github.com/ginjaninja78/payments-engine/internal/logging"
	"github.com/ginjaninja78/payments-engine/internal/metrics"
	"github.com/ginjaninja78/payments-engine/internal/processor"
	"github.com/ginjaninja78/payments-engine/internal/report"
	"github.com/ginjaninja78/payments-engine/internal/xlsxparser"
	"github.com/ginjaninja78/payments-engine/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	outputPath     string
	outputFormat   string
	inputFormat    string
	rejectionsPath string
	summaryPath    string
	metricsPath    string
)

// processOptions carries the command line overrides. Empty values keep the
// configured setting.
type processOptions struct {
	ConfigFile  string
	Verbose     bool
	Output      string
	Format      string
	InputFormat string
	Rejections  string
	Summary     string
	MetricsFile string
}

func flagOptions() processOptions {
	return processOptions{
		ConfigFile:  cfgFile,
		Verbose:     verbose,
		Output:      outputPath,
		Format:      outputFormat,
		InputFormat: inputFormat,
		Rejections:  rejectionsPath,
		Summary:     summaryPath,
		MetricsFile: metricsPath,
	}
}

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Apply a transaction file and write the account report",
	Long: `The process command reads the transaction file in order, applies each
record to its client's account, and writes one report row per client:

  client,available,held,total,locked

Records that fail validation or that the account refuses (insufficient
funds, unknown transaction, locked account, ...) are logged and skipped.
A row with the wrong number of fields, or an unreadable input, stops the run
with a non-zero exit status and no report.`,

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.OutOrStdout(), args[0], flagOptions())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	registerProcessFlags(processCmd)
}

// registerProcessFlags adds the process flags to cmd.
func registerProcessFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report file (default: stdout)")
	cmd.Flags().StringVar(&outputFormat, "format", "", "Report format: csv, xlsx or xml")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input format: csv or xlsx (default: from the file extension)")
	cmd.Flags().StringVar(&rejectionsPath, "rejections", "", "Write rejected records to this file")
	cmd.Flags().StringVar(&summaryPath, "summary", "", "Write a run summary to this file")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess runs one input file and writes the report to out unless a
// report file is configured.
func runProcess(out io.Writer, inputPath string, opts processOptions) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: BUILD LOGGER
	// =========================================================================

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger = logger.With(zap.String("input", inputPath))

	// =========================================================================
	// STEP 3: OPEN INPUT
	// =========================================================================

	if !utils.FileExists(inputPath) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	source, err := openSource(cfg, inputPath)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: PROCESS RECORDS
	// =========================================================================

	m := metrics.New(cfg.Metrics.Namespace)
	p := processor.New(logger, m, processor.Options{
		KeepRejections: cfg.Reports.RejectionsFile != "",
	})

	result, err := p.Run(source)
	if err != nil {
		logger.Error("processing failed", zap.Error(err))
		return fmt.Errorf("processing failed: %w", err)
	}

	// =========================================================================
	// STEP 5: WRITE REPORT
	// =========================================================================

	reportPath, err := writeReport(out, cfg, result, logger)
	if err != nil {
		return err
	}
	if reportPath != "" {
		logger.Info("report written", zap.String("path", reportPath))
	}

	// =========================================================================
	// STEP 6: WRITE RUN ARTIFACTS
	// =========================================================================
	// Failures here are logged and do not fail the run.

	if cfg.Reports.RejectionsFile != "" {
		entries := make([]utils.ErrorLogEntry, 0, len(result.Rejections))
		for _, r := range result.Rejections {
			entries = append(entries, utils.ErrorLogEntry{
				RowNumber:    r.Row,
				ErrorType:    r.Code,
				Record:       r.Record,
				ErrorMessage: r.Message,
			})
		}
		if err := utils.WriteErrorLog(entries, inputPath, cfg.Reports.RejectionsFile); err != nil {
			logger.Warn("failed to write rejection log", zap.Error(err))
		}
	}

	if cfg.Reports.SummaryFile != "" {
		summary := utils.ProcessingSummary{
			RunID:          result.RunID,
			InputFile:      inputPath,
			OutputFile:     reportPath,
			StartTime:      startTime,
			EndTime:        time.Now(),
			RowsRead:       result.Stats.RowsRead,
			Applied:        result.Stats.Applied,
			Rejected:       result.Stats.Rejected,
			RejectedByCode: result.Stats.RejectedByCode,
			HeldShortfalls: result.Stats.HeldShortfalls,
			Clients:        result.Stats.Clients,
			LockedAccounts: result.Stats.LockedAccounts,
		}
		if err := utils.WriteSummaryLog(summary, cfg.Reports.SummaryFile); err != nil {
			logger.Warn("failed to write summary", zap.Error(err))
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig loads the configuration file and applies the flag overrides.
func loadConfig(opts processOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if opts.Output != "" {
		cfg.Output.Path = opts.Output
	}
	if opts.Format != "" {
		cfg.Output.Format = strings.ToLower(opts.Format)
	}
	if opts.InputFormat != "" {
		cfg.Input.Format = strings.ToLower(opts.InputFormat)
	}
	if opts.Rejections != "" {
		cfg.Reports.RejectionsFile = opts.Rejections
	}
	if opts.Summary != "" {
		cfg.Reports.SummaryFile = opts.Summary
	}
	if opts.MetricsFile != "" {
		cfg.Metrics.Textfile = opts.MetricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

// openSource opens inputPath with the reader for its format.
func openSource(cfg *config.Config, inputPath string) (processor.Source, error) {
	standard, minimal := cfg.Headers()
	headers := [][]string{standard, minimal}

	switch cfg.InputFormatFor(inputPath) {
	case config.FormatXLSX:
		return xlsxparser.Open(inputPath, xlsxparser.Settings{
			Sheet:   cfg.Input.Sheet,
			Headers: headers,
		})
	default:
		return csvparser.Open(inputPath, csvparser.Settings{
			Delimiter: cfg.Delimiter(),
			Headers:   headers,
		})
	}
}

// writeReport writes the account report. It returns the report file path,
// or "" when the report went to out.
func writeReport(out io.Writer, cfg *config.Config, result processor.Result, logger *zap.Logger) (string, error) {
	options := report.Options{
		SheetName: cfg.Output.SheetName,
		Logger:    logger,
	}

	path := reportFilePath(cfg, result.RunID)
	if path == "" {
		if err := report.Write(out, cfg.Output.Format, result.Accounts, options); err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		return "", nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := report.Write(file, cfg.Output.Format, result.Accounts, options); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	return path, nil
}

// reportFilePath decides where the report goes. An empty result means out.
//
// RULES:
//   - An explicit path always wins.
//   - A configured directory gets a generated file name.
//   - XLSX without either goes to a generated file in the working directory.
//   - Otherwise the report is streamed to out.
func reportFilePath(cfg *config.Config, runID string) string {
	if cfg.Output.Path != "" {
		return cfg.Output.Path
	}

	dir := cfg.Output.Dir
	if dir == "" && cfg.Output.Format != config.FormatXLSX {
		return ""
	}
	if dir == "" {
		dir = "."
	}

	name := utils.GenerateOutputFileName(cfg.Output.FileNameFormat, cfg.Output.Format, map[string]string{
		"run":    runID,
		"format": cfg.Output.Format,
	})
	return filepath.Join(dir, name)
}
