// =============================================================================
// EPICS Archive Config Converter - Check Command
// =============================================================================
//
// This file defines the 'check' command, which parses a database file and
// reports what a conversion would produce without writing anything. It is
// meant for validating hand-edited database files before deployment.
//
// COMMAND USAGE:
//   archconf check <database-file> [flags]
//
// OUTPUT:
//   === Check Complete ===
//   Records:   14
//   Channels:  19 in 2 group(s)
//
//   Diagnostics: 1 skipped attribute(s), 0 warning(s)
//     [ERROR] line 42, record "BL7:Mot:Parker:HROT": archive attribute ...
//
// EXIT CODES:
//   Mirrors the conversion: 0 when the file parses (skipped attributes and
//   warnings included), 2 on unreadable input or an unterminated record.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbwebb/epics-archive-config/internal/dbparser"
	"github.com/sbwebb/epics-archive-config/internal/expander"
)

// =============================================================================
// CHECK COMMAND DEFINITION
// =============================================================================

// checkCmd represents the 'check' command.
var checkCmd = &cobra.Command{
	Use:   "check <database-file>",
	Short: "Parse a database file and report problems without converting",
	Long: `The check command runs the parser and channel expansion over a database file
and prints what a conversion would emit, without writing the XML. Grouping
rules from --config are applied so the reported group layout matches a real
conversion.

Skipped archive attributes and near-miss lines are listed individually; they
do not fail the check. Unreadable input or a record without its closing
brace fails with exit status 2, exactly as a conversion would.`,

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0])
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the check command with the root command.
func init() {
	rootCmd.AddCommand(checkCmd)
}

// =============================================================================
// MAIN CHECK FUNCTION
// =============================================================================

// runCheck parses one database file and prints the findings.
func runCheck(inputPath string) error {
	cfg, err := initializeRun()
	if err != nil {
		return err
	}

	parseResult, err := dbparser.ParseFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to parse database: %w", err)
	}

	// Expand with the configured rules so the counts match what a real
	// conversion would write.
	groups := expander.Expand(parseResult.Records, cfg.Groups)

	channels := 0
	for _, group := range groups {
		channels += len(group.Channels)
	}

	fmt.Println("\n=== Check Complete ===")
	fmt.Printf("Input:     %s\n", inputPath)
	fmt.Printf("Records:   %d\n", len(parseResult.Records))
	fmt.Printf("Channels:  %d in %d group(s)\n", channels, len(groups))

	printDiagnostics(parseResult.Diagnostics)

	return nil
}
