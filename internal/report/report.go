// =============================================================================
// EPICS Archive Config Converter - Inventory Report Module
// =============================================================================
//
// This module writes an optional XLSX workbook describing one conversion run.
// The workbook is meant for operators who want to review what will be (or
// was) archived without reading the XML.
//
// WORKBOOK STRUCTURE:
//   - "Channels" sheet: one row per emitted channel, with its group, name,
//     period, mode, and optional monitor deadband.
//   - "Summary" sheet: run metadata (run ID, input and output paths, counts)
//     followed by the list of archive attributes that were skipped because
//     their value did not parse.
//
// =============================================================================

package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sbwebb/epics-archive-config/internal/dbparser"
	"github.com/sbwebb/epics-archive-config/internal/types"
)

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// Report holds everything the workbook records about one conversion run.
type Report struct {
	// RunID is the unique identifier of the conversion run.
	RunID string

	// InputFile is the path to the database file that was converted.
	InputFile string

	// InputBytes is the size of the input file.
	InputBytes int64

	// InputModTime is the modification time of the input file.
	InputModTime time.Time

	// OutputFile is the path to the generated engine configuration.
	OutputFile string

	// GeneratedAt is the time the report was produced.
	GeneratedAt time.Time

	// RecordsParsed is the number of records found in the input.
	RecordsParsed int

	// Groups contains the emitted channel groups in document order.
	Groups []types.ChannelGroup

	// Diagnostics contains the findings collected while parsing.
	Diagnostics []*dbparser.Diagnostic
}

// ChannelCount returns the total number of channels across all groups.
func (r *Report) ChannelCount() int {
	total := 0
	for _, group := range r.Groups {
		total += len(group.Channels)
	}
	return total
}

// =============================================================================
// WORKBOOK WRITING
// =============================================================================

// Write saves the report as an XLSX workbook.
//
// PARAMETERS:
//   - path: The destination path for the workbook.
//   - report: The report content.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(path string, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the channel inventory.
	if err := f.SetSheetName("Sheet1", "Channels"); err != nil {
		return fmt.Errorf("failed to create channels sheet: %w", err)
	}
	if err := writeChannelsSheet(f, report); err != nil {
		return fmt.Errorf("failed to write channels sheet: %w", err)
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, report); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// writeChannelsSheet fills the channel inventory sheet.
func writeChannelsSheet(f *excelize.File, report *Report) error {
	const sheet = "Channels"

	headers := []string{"Group", "Channel", "Period", "Mode", "Delta"}
	for col, header := range headers {
		if err := setCell(f, sheet, col+1, 1, header); err != nil {
			return err
		}
	}
	if err := boldRow(f, sheet, 1, len(headers)); err != nil {
		return err
	}

	row := 2
	for _, group := range report.Groups {
		for _, channel := range group.Channels {
			values := []interface{}{group.Name, channel.Name, channel.Period, channel.Mode, channel.Delta}
			for col, value := range values {
				if err := setCell(f, sheet, col+1, row, value); err != nil {
					return err
				}
			}
			row++
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 42); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "E", 12)
}

// writeSummarySheet fills the run metadata sheet.
func writeSummarySheet(f *excelize.File, report *Report) error {
	const sheet = "Summary"

	entries := []struct {
		key   string
		value interface{}
	}{
		{"Run ID", report.RunID},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Input File", report.InputFile},
		{"Input Size (bytes)", report.InputBytes},
		{"Input Modified", report.InputModTime.Format("2006-01-02 15:04:05")},
		{"Output File", report.OutputFile},
		{"Records Parsed", report.RecordsParsed},
		{"Groups", len(report.Groups)},
		{"Channels", report.ChannelCount()},
		{"Warnings", dbparser.CountBySeverity(report.Diagnostics, dbparser.SeverityWarning)},
		{"Skipped Attributes", dbparser.CountBySeverity(report.Diagnostics, dbparser.SeverityError)},
	}

	row := 1
	for _, entry := range entries {
		if err := setCell(f, sheet, 1, row, entry.key); err != nil {
			return err
		}
		if err := setCell(f, sheet, 2, row, entry.value); err != nil {
			return err
		}
		row++
	}

	// List the skipped attributes below the counters so an operator can fix
	// the database file without rerunning with verbose logging.
	skipped := skippedDiagnostics(report.Diagnostics)
	if len(skipped) > 0 {
		row++
		if err := setCell(f, sheet, 1, row, "Skipped Attribute Details"); err != nil {
			return err
		}
		if err := boldRow(f, sheet, row, 1); err != nil {
			return err
		}
		row++

		for _, d := range skipped {
			if err := setCell(f, sheet, 1, row, fmt.Sprintf("line %d, record %s", d.Line, d.Record)); err != nil {
				return err
			}
			if err := setCell(f, sheet, 2, row, d.Message); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 64)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// setCell writes one value using 1-based column and row coordinates.
func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// boldRow applies a bold font to the first width cells of a row.
func boldRow(f *excelize.File, sheet string, row, width int) error {
	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, styleID)
}

// skippedDiagnostics filters the error-severity findings.
func skippedDiagnostics(diags []*dbparser.Diagnostic) []*dbparser.Diagnostic {
	var skipped []*dbparser.Diagnostic
	for _, d := range diags {
		if d.Severity == dbparser.SeverityError {
			skipped = append(skipped, d)
		}
	}
	return skipped
}
