// =============================================================================
// Payments Engine - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command
// accepts an optional input file and, when given one, behaves exactly like
// 'payments process <file>'.
//
// COBRA CLI STRUCTURE:
//   rootCmd (payments [file])
//   ├── processCmd (payments process <file>)
//   └── versionCmd (payments version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Exiting non-zero when a command fails
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the YAML configuration file.
// Empty means built-in defaults.
var cfgFile string

// verbose switches logging to debug level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "payments [file]",
	Short: "Payments Engine - apply a transaction file to client accounts",
	Long: `Payments Engine reads a file of deposits, withdrawals, disputes, resolves
and chargebacks, applies them in order to per-client accounts, and prints the
final state of every account.

Input rows have the columns type, client, tx, amount. Invalid records are
logged to stderr and skipped; the report is written to stdout.

Example Usage:
  payments transactions.csv > accounts.csv
  payments process transactions.xlsx --format xml --output accounts.xml
  payments process transactions.csv --config payments.yaml -v`,

	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runProcess(cmd.OutOrStdout(), args[0], flagOptions())
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to a YAML configuration file (default: built-in settings)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	// The bare 'payments <file>' form accepts the process flags as well.
	registerProcessFlags(rootCmd)
}
