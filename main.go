// =============================================================================
// Payments Engine - Main Entry Point
// =============================================================================
//
// USAGE:
//   payments <file>             - Process a transaction file, report to stdout
//   payments process <file>     - Same, with output options
//   payments version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Ledger, ingestion, validation, processing and reporting
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payments-engine/cmd"
)

func main() {
	cmd.Execute()
}
