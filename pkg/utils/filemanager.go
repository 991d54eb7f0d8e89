// =============================================================================
// Payments Engine - File Manager Utility
// =============================================================================
//
// This module provides file utilities for a processing run, including:
//   - Report file naming
//   - Rejection log generation
//   - Run summary generation
//
// All writers create the target file (and its directory) or fail. Nothing is
// appended to an existing file.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique report file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               any {key}   - The value of key in params
//   - extension: The extension to ensure, without the dot (e.g. "csv").
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format:    "accounts_{timestamp}_{run}"
//   extension: "csv"
//   params:    {"run": "5f0c..."}
//   output:    "accounts_20240115_143022_5f0c....csv"
func GenerateOutputFileName(format, extension string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if extension != "" {
		ext := "." + strings.TrimPrefix(extension, ".")
		if !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
			result += ext
		}
	}

	return result
}

// =============================================================================
// REJECTION LOG GENERATION
// =============================================================================

// ErrorLogEntry represents one rejected record.
type ErrorLogEntry struct {
	RowNumber    int
	ErrorType    string
	Record       string
	ErrorMessage string
}

// WriteErrorLog writes rejection entries to path.
//
// PARAMETERS:
//   - entries: The rejections to write, in input order.
//   - source: The input file name, shown in the header.
//   - path: The log file to create.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, source, path string) error {
	file, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create rejection log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Payments Engine - Rejection Log\n"+
		"Generated: %s\n"+
		"Input:     %s\n"+
		"Rejected:  %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		source,
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Rejection #%d\n", i+1)
		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row:     %d\n", entry.RowNumber)
		}
		fmt.Fprintf(writer, "  Code:    %s\n", entry.ErrorType)
		if entry.Record != "" {
			fmt.Fprintf(writer, "  Record:  %s\n", entry.Record)
		}
		fmt.Fprintf(writer, "  Message: %s\n\n", entry.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Rejection Log\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush rejection log: %w", err)
	}

	return file.Close()
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID          string
	InputFile      string
	OutputFile     string
	StartTime      time.Time
	EndTime        time.Time
	RowsRead       int
	Applied        int
	Rejected       int
	RejectedByCode map[string]int
	HeldShortfalls int
	Clients        int
	LockedAccounts int
}

// WriteSummaryLog writes a run summary to path.
func WriteSummaryLog(summary ProcessingSummary, path string) error {
	file, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	output := summary.OutputFile
	if output == "" {
		output = "stdout"
	}

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Payments Engine - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Input:          %s\n"+
		"  Output:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Rows Read:       %d\n"+
		"  Applied:         %d\n"+
		"  Rejected:        %d\n"+
		"  Held Shortfalls: %d\n"+
		"  Clients:         %d\n"+
		"  Locked Accounts: %d\n\n",
		summary.RunID,
		summary.InputFile,
		output,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.RowsRead,
		summary.Applied,
		summary.Rejected,
		summary.HeldShortfalls,
		summary.Clients,
		summary.LockedAccounts)

	if len(summary.RejectedByCode) > 0 {
		writer.WriteString("Rejections By Code:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")

		codes := make([]string, 0, len(summary.RejectedByCode))
		for code := range summary.RejectedByCode {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			fmt.Fprintf(writer, "  %-20s %d\n", code, summary.RejectedByCode[code])
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}

	return file.Close()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// createFile creates path, making its parent directory first.
func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
