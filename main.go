// =============================================================================
// EPICS Archive Config Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the EPICS Archive Config Converter CLI.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   archconf <database-file>         - Convert a database file to an engine config
//   archconf check <database-file>   - Parse and report problems, write nothing
//   archconf version                 - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/sbwebb/epics-archive-config/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
