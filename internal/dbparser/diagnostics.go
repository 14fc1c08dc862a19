// =============================================================================
// EPICS Archive Config Converter - Parse Diagnostics
// =============================================================================
//
// This file defines the diagnostic model for recoverable parse findings.
// Diagnostics are collected, not thrown: the parser records a diagnostic and
// keeps going, and the converter reports the full list at the end of the run.
//
// Two situations produce diagnostics:
//   - Near-miss lines: a line that begins like a record header or an
//     attribute but fails the full pattern. These are skipped, but silently
//     dropping them would hide real mistakes in the database file.
//   - Skipped archive attributes: an archive-tagged value that fails the
//     mode/period grammar. The attribute is dropped, the rest of the record
//     is still processed.
//
// =============================================================================

package dbparser

import (
	"fmt"
	"strings"
)

// =============================================================================
// DIAGNOSTIC TYPES
// =============================================================================

// Severity indicates how a diagnostic should be treated.
type Severity string

const (
	// SeverityWarning marks findings that do not affect the run outcome.
	SeverityWarning Severity = "warning"

	// SeverityError marks findings that dropped input, such as a skipped
	// archive attribute. The run still succeeds.
	SeverityError Severity = "error"
)

// Diagnostic represents a single recoverable parse finding.
type Diagnostic struct {
	// Severity is the finding's severity.
	Severity Severity

	// Line is the 1-based line number the finding refers to.
	Line int

	// Record is the name of the enclosing record, if the finding occurred
	// inside a record body. Empty otherwise.
	Record string

	// Message is a human-readable description of the finding.
	Message string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Record != "" {
		return fmt.Sprintf("[%s] line %d, record %q: %s",
			strings.ToUpper(string(d.Severity)), d.Line, d.Record, d.Message)
	}
	return fmt.Sprintf("[%s] line %d: %s",
		strings.ToUpper(string(d.Severity)), d.Line, d.Message)
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// FormatDiagnostics renders a diagnostic list as one line per finding,
// suitable for the end-of-run summary.
func FormatDiagnostics(diags []*Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}

	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.Error()
	}

	return strings.Join(lines, "\n")
}

// CountBySeverity returns the number of diagnostics with the given severity.
func CountBySeverity(diags []*Diagnostic, severity Severity) int {
	count := 0
	for _, d := range diags {
		if d.Severity == severity {
			count++
		}
	}
	return count
}
