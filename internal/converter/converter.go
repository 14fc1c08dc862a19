// =============================================================================
// EPICS Archive Config Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the entire
// pipeline for a single database file, from record parsing to XML output.
//
// CONVERSION PIPELINE:
//   1. Parse the EPICS database file into records
//   2. Expand archive policies into channel groups
//   3. Generate the engine configuration XML
//   4. Write the output file atomically
//   5. Write the optional inventory workbook
//
// ERROR HANDLING:
//   Malformed archive attributes never fail the run: they are skipped during
//   parsing and reported in the result's diagnostics. I/O failures and an
//   unterminated record are fatal, and the output file is never written
//   partially.
//
// =============================================================================

package converter

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sbwebb/epics-archive-config/internal/config"
	"github.com/sbwebb/epics-archive-config/internal/dbparser"
	"github.com/sbwebb/epics-archive-config/internal/expander"
	"github.com/sbwebb/epics-archive-config/internal/report"
	"github.com/sbwebb/epics-archive-config/internal/types"
	"github.com/sbwebb/epics-archive-config/internal/xmlwriter"
	"github.com/sbwebb/epics-archive-config/pkg/logger"
	"github.com/sbwebb/epics-archive-config/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single database file.
type Result struct {
	// RunID uniquely identifies this conversion run. It appears in the
	// logs and in the inventory workbook.
	RunID string

	// InputFile is the path to the database file that was converted.
	InputFile string

	// OutputFile is the path of the generated engine configuration. It is
	// set even in dry-run mode, where nothing is written.
	OutputFile string

	// ReportFile is the path of the inventory workbook, when one was
	// requested. Empty otherwise.
	ReportFile string

	// Success indicates whether the conversion succeeded.
	Success bool

	// Error contains the error if the conversion failed.
	// This is nil if the conversion was successful.
	Error error

	// Diagnostics contains the recoverable findings from parsing: skipped
	// archive attributes and near-miss lines.
	Diagnostics []*dbparser.Diagnostic

	// Stats contains conversion statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the conversion.
type ProcessingStats struct {
	// RecordsParsed is the number of records found in the database file.
	RecordsParsed int

	// ChannelsEmitted is the number of channels in the output document.
	ChannelsEmitted int

	// GroupsEmitted is the number of channel groups in the output document.
	GroupsEmitted int

	// AttributesSkipped is the number of archive attributes dropped
	// because their value failed the policy grammar.
	AttributesSkipped int

	// Warnings is the number of near-miss lines skipped during parsing.
	Warnings int

	// ProcessingTime is the time taken to convert the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single database file.
type Converter struct {
	// inputPath is the path to the input database file.
	inputPath string

	// cfg is the application configuration.
	cfg *config.Config

	// options holds the per-run options.
	options Options

	// log is the component logger.
	log zerolog.Logger
}

// Options holds the per-run options.
type Options struct {
	// DryRun runs the full pipeline but writes no files.
	DryRun bool

	// ReportPath requests an inventory workbook at the given path.
	// Empty disables the report.
	ReportPath string
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the input database file.
//   - cfg: The application configuration.
//   - options: The per-run options.
//
// RETURNS:
//   - A new Converter instance.
func New(inputPath string, cfg *config.Config, options Options) *Converter {
	return &Converter{
		inputPath: inputPath,
		cfg:       cfg,
		options:   options,
		log:       logger.WithComponent("converter"),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the conversion.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{
		RunID:     uuid.New().String(),
		InputFile: c.inputPath,
		Success:   false,
	}

	log := c.log.With().Str("run_id", result.RunID).Logger()
	log.Info().Str("input", c.inputPath).Msg("Converting database file")

	// =========================================================================
	// STEP 1: PARSE DATABASE
	// =========================================================================
	// Parse the record/attribute grammar. Malformed archive attributes are
	// collected as diagnostics; an unterminated record aborts the run.

	parseResult, err := dbparser.ParseFile(c.inputPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse database: %w", err)
		return result
	}

	result.Diagnostics = parseResult.Diagnostics
	result.Stats.RecordsParsed = len(parseResult.Records)
	result.Stats.AttributesSkipped = dbparser.CountBySeverity(parseResult.Diagnostics, dbparser.SeverityError)
	result.Stats.Warnings = dbparser.CountBySeverity(parseResult.Diagnostics, dbparser.SeverityWarning)

	log.Debug().
		Int("records", result.Stats.RecordsParsed).
		Int("skipped_attributes", result.Stats.AttributesSkipped).
		Msg("Parsed database file")

	// =========================================================================
	// STEP 2: EXPAND CHANNELS
	// =========================================================================
	// Turn archive policies into channel descriptors and bucket them into
	// groups. With no grouping rules everything lands in Default_Group.

	groups := expander.Expand(parseResult.Records, c.cfg.Groups)

	result.Stats.GroupsEmitted = len(groups)
	for _, group := range groups {
		result.Stats.ChannelsEmitted += len(group.Channels)
	}

	log.Debug().
		Int("channels", result.Stats.ChannelsEmitted).
		Int("groups", result.Stats.GroupsEmitted).
		Msg("Expanded channels")

	// =========================================================================
	// STEP 3: GENERATE XML DOCUMENT
	// =========================================================================

	options := xmlwriter.DefaultGenerateOptions()
	options.Indent = c.cfg.Output.Indent
	options.IncludeXMLDeclaration = !c.cfg.Output.OmitDeclaration

	document, err := xmlwriter.GenerateWithOptions(groups, options)
	if err != nil {
		result.Error = fmt.Errorf("failed to generate XML: %w", err)
		return result
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT FILE
	// =========================================================================
	// The output goes alongside the input. The write is atomic so a failure
	// never leaves a truncated engine configuration behind.

	result.OutputFile = utils.OutputPathFor(c.inputPath)

	if c.options.DryRun {
		log.Info().Str("output", result.OutputFile).Msg("Dry run, skipping output write")
	} else {
		if err := utils.WriteFileAtomic(result.OutputFile, document, 0644); err != nil {
			result.Error = fmt.Errorf("failed to write output: %w", err)
			return result
		}
		log.Info().Str("output", result.OutputFile).Msg("Wrote engine configuration")
	}

	// =========================================================================
	// STEP 5: WRITE INVENTORY REPORT (OPTIONAL)
	// =========================================================================

	if c.options.ReportPath != "" {
		result.ReportFile = c.options.ReportPath

		if c.options.DryRun {
			log.Info().Str("report", result.ReportFile).Msg("Dry run, skipping report write")
		} else {
			if err := report.Write(result.ReportFile, c.buildReport(&result, parseResult, groups)); err != nil {
				result.Error = fmt.Errorf("failed to write report: %w", err)
				return result
			}
			log.Info().Str("report", result.ReportFile).Msg("Wrote inventory report")
		}
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	if result.Stats.AttributesSkipped > 0 {
		log.Warn().
			Int("count", result.Stats.AttributesSkipped).
			Msg("Some archive attributes were skipped; see the run summary")
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// buildReport assembles the inventory report for this run. Input metadata is
// best effort: a stat failure leaves the fields zeroed rather than failing a
// conversion that already succeeded.
func (c *Converter) buildReport(result *Result, parseResult *dbparser.ParseResult, groups []types.ChannelGroup) *report.Report {
	r := &report.Report{
		RunID:         result.RunID,
		InputFile:     c.inputPath,
		OutputFile:    result.OutputFile,
		GeneratedAt:   time.Now(),
		RecordsParsed: len(parseResult.Records),
		Groups:        groups,
		Diagnostics:   parseResult.Diagnostics,
	}

	if size, err := utils.GetFileSize(c.inputPath); err == nil {
		r.InputBytes = size
	}
	if modTime, err := utils.GetFileModTime(c.inputPath); err == nil {
		r.InputModTime = modTime
	}

	return r
}
