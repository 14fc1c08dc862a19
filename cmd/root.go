// =============================================================================
// EPICS Archive Config Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Unlike multi-stage
// tools, the converter does its main work directly on the root command: one
// database file in, one engine configuration out.
//
// COBRA CLI STRUCTURE:
//   rootCmd (archconf <database-file>)
//   ├── checkCmd (archconf check <database-file>)
//   └── versionCmd (archconf version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the optional configuration file
//   3. Initializing logging
//
// EXIT CODES:
//   0 - conversion succeeded (possibly with skipped attributes)
//   2 - missing argument, unreadable input, unterminated record, or any
//       failure that prevented writing the output
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sbwebb/epics-archive-config/internal/config"
	"github.com/sbwebb/epics-archive-config/internal/converter"
	"github.com/sbwebb/epics-archive-config/internal/dbparser"
	"github.com/sbwebb/epics-archive-config/pkg/logger"
	"github.com/sbwebb/epics-archive-config/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. When empty, built-in
// defaults are used and no file is read.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// writeReport requests the XLSX inventory workbook next to the output file.
var writeReport bool

// dryRun runs the full pipeline without writing any files.
var dryRun bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command. Invoked with a database file it runs
// the conversion; subcommands cover checking and version information.
var rootCmd = &cobra.Command{
	// Use is the one-line usage message.
	Use: "archconf <database-file>",

	// Short is a short description shown in the 'help' output.
	Short: "EPICS Archive Config Converter - Generate archive engine configs from EPICS databases",

	// Long is a longer description shown in the 'help <command>' output.
	Long: `EPICS Archive Config Converter reads an EPICS database (.db) file, collects
the archive sampling policies declared on its records, and writes an archive
engine configuration XML next to the input.

Records opt into archiving with an info attribute:

    record(ai, "CF_BmLn:TT07108:T") {
        field(DESC, "Beamline temperature")
        info(archive, "scan, 00:01:00, HIHI LOLO HIGH LOW")
    }

Key Features:
  - One-shot conversion: motors.db becomes motors_arch.xml
  - Malformed archive attributes are skipped and reported, never fatal
  - Optional channel grouping rules via a YAML configuration file
  - Optional XLSX inventory report of every emitted channel

Example Usage:
  archconf ioc/motors.db                  # Write ioc/motors_arch.xml
  archconf --report ioc/motors.db         # Also write ioc/motors_arch.xlsx
  archconf --config rules.yaml motors.db  # Apply grouping rules
  archconf check ioc/motors.db            # Parse and report problems only`,

	// Exactly one database file per invocation.
	Args: cobra.ExactArgs(1),

	// Errors are printed once by Execute; suppress cobra's own reporting.
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args[0])
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main(). Any failure
// exits with status 2; a run that only skipped attributes exits with 0.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global and root-local flags.
func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to an optional configuration file (built-in defaults when omitted)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	// ==========================================================================
	// LOCAL FLAGS
	// ==========================================================================
	// Local flags only apply to the conversion itself.

	rootCmd.Flags().BoolVar(
		&writeReport,
		"report",
		false,
		"Write an XLSX inventory report next to the output file",
	)

	rootCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the full pipeline without writing any files",
	)
}

// =============================================================================
// MAIN CONVERSION FUNCTION
// =============================================================================

// runConvert converts one database file and prints the run summary.
func runConvert(inputPath string) error {
	startTime := time.Now()

	cfg, err := initializeRun()
	if err != nil {
		return err
	}

	options := converter.Options{DryRun: dryRun}
	if writeReport {
		options.ReportPath = utils.ReportPathFor(inputPath)
	}

	conv := converter.New(inputPath, cfg, options)
	result := conv.Run()
	if !result.Success {
		return result.Error
	}

	// =========================================================================
	// PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Conversion Complete ===")
	fmt.Printf("Input:     %s\n", result.InputFile)
	fmt.Printf("Output:    %s\n", result.OutputFile)
	if result.ReportFile != "" {
		fmt.Printf("Report:    %s\n", result.ReportFile)
	}
	fmt.Printf("Records:   %d\n", result.Stats.RecordsParsed)
	fmt.Printf("Channels:  %d in %d group(s)\n", result.Stats.ChannelsEmitted, result.Stats.GroupsEmitted)
	fmt.Printf("Time:      %s\n", time.Since(startTime))

	if dryRun {
		fmt.Println("\nDry run: no files were written.")
	}

	printDiagnostics(result.Diagnostics)

	return nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// initializeRun loads the configuration and initializes logging. It is
// shared by every command that touches a database file.
func initializeRun() (*config.Config, error) {
	cfg := config.Default()

	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if verbose {
		cfg.Logging.Debug = true
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return cfg, nil
}

// printDiagnostics prints the end-of-run list of parser findings in source
// order, so skipped archive attributes are visible even on a successful run.
func printDiagnostics(diags []*dbparser.Diagnostic) {
	if len(diags) == 0 {
		return
	}

	skipped := dbparser.CountBySeverity(diags, dbparser.SeverityError)
	warnings := dbparser.CountBySeverity(diags, dbparser.SeverityWarning)

	fmt.Printf("\nDiagnostics: %d skipped attribute(s), %d warning(s)\n", skipped, warnings)
	for _, d := range diags {
		fmt.Printf("  %s\n", d.Error())
	}
}
