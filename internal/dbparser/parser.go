// =============================================================================
// EPICS Archive Config Converter - Database Parser
// =============================================================================
//
// This file parses the two-level record/attribute grammar of an EPICS
// database file:
//
//   record(<type>, "<name>") {
//       field(DESC, "Motor position")
//       info(archive, "monitor, 00:00:10")
//   }
//
// PARSING RULES:
//   - A record header is record(<type>, <name>) with arbitrary surrounding
//     whitespace; the name may be double-quoted (quotes are stripped).
//   - The opening brace may sit on the header line or any later line; lines
//     consumed while looking for it are otherwise ignored.
//   - Every line consumed after the opening brace is offered to the
//     attribute matcher and then checked for the closing brace, so an
//     attribute sharing the closing-brace line is kept. Braces do not nest.
//   - Body lines that match neither annotation shape (blank lines, comments,
//     unrecognized directives) are skipped. Lines that begin like a header
//     or an annotation but fail the full pattern are skipped with a
//     diagnostic instead of silently.
//   - End of input inside a record body is a hard error.
//
// ATTRIBUTE ROUTING:
//   - field(<name>, "<value>")        -> plain attribute, kept on the record
//   - info(archive, "<value>")        -> sampling policy; the value must
//     parse (see archive.go) or the attribute is skipped with a diagnostic
//   - info(<anything else>, "<value>") -> dropped
//
// =============================================================================

package dbparser

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sbwebb/epics-archive-config/internal/types"
	"github.com/sbwebb/epics-archive-config/pkg/logger"
)

// ErrUnterminatedRecord is returned when end of input is reached inside a
// record, before its opening or closing brace was found.
var ErrUnterminatedRecord = errors.New("unterminated record")

// =============================================================================
// GRAMMAR PATTERNS
// =============================================================================

var (
	// recordPattern matches a record header line. Captures: type (text
	// between the opening parenthesis and the first comma) and name (text
	// between that comma and the closing parenthesis, optionally quoted).
	recordPattern = regexp.MustCompile(`^\s*record\s*\(\s*([^,]+?)\s*,\s*"?([^")]*?)"?\s*\)`)

	// attributePattern matches an annotation line inside a record body.
	// Captures: kind (exactly "field" or "info"), name (text up to the
	// next comma), and value (text between double quotes, no escape
	// processing).
	attributePattern = regexp.MustCompile(`^\s*(field|info)\s*\(\s*([^,]+?)\s*,\s*"([^"]*)"\s*\)`)

	// Near-miss detectors: a line that starts like a header or annotation
	// but fails the full pattern deserves a diagnostic, not a silent skip.
	recordPrefixPattern    = regexp.MustCompile(`^\s*record\b`)
	attributePrefixPattern = regexp.MustCompile(`^\s*(?:field|info)\s*\(`)
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult holds the outcome of parsing one database file.
type ParseResult struct {
	// Records contains the parsed records in source order.
	Records []types.Record

	// Diagnostics contains the recoverable findings collected during the
	// parse: near-miss lines and skipped archive attributes.
	Diagnostics []*Diagnostic
}

// SkippedAttributes returns the error-severity diagnostics, i.e. the archive
// attributes that were dropped because their value failed the policy
// grammar.
func (r *ParseResult) SkippedAttributes() []*Diagnostic {
	var skipped []*Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			skipped = append(skipped, d)
		}
	}
	return skipped
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile parses a database file from disk.
//
// PARAMETERS:
//   - filePath: The path to the database file.
//
// RETURNS:
//   - The parse result with records in source order.
//   - An error if the file cannot be opened or read, or if a record body
//     reaches end of input before its closing brace.
func ParseFile(filePath string) (*ParseResult, error) {
	scanner, err := NewLineScanner(filePath)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	return parse(scanner)
}

// Parse parses database content from a reader.
func Parse(r io.Reader) (*ParseResult, error) {
	return parse(NewLineScannerFromReader(r))
}

// parse drives the record/attribute grammar over the scanner.
func parse(scanner *LineScanner) (*ParseResult, error) {
	log := logger.WithComponent("dbparser")
	result := &ParseResult{}

	for scanner.Next() {
		line := scanner.Line()

		m := recordPattern.FindStringSubmatch(line)
		if m == nil {
			// Anything that does not open a record is ignored at the
			// top level, but a line that starts with the record keyword
			// was probably meant to be one.
			if recordPrefixPattern.MatchString(line) {
				result.warn(scanner.LineNumber(), "", "line resembles a record header but does not match the grammar", log)
			}
			continue
		}

		recType := strings.TrimSpace(m[1])
		recName := strings.TrimSpace(m[2])
		if recType == "" || recName == "" {
			result.warn(scanner.LineNumber(), "", "record header has an empty type or name", log)
			continue
		}

		record := types.Record{
			Type: recType,
			Name: recName,
			Line: scanner.LineNumber(),
		}

		// Locate the opening brace. It may close the header line or sit
		// on a later line by itself.
		braceLine := line
		for !strings.Contains(braceLine, "{") {
			if !scanner.Next() {
				return nil, scanEndError(scanner, record, "opening")
			}
			braceLine = scanner.Line()
		}

		// Consume the body. Each consumed line is offered to the
		// attribute matcher before the closing-brace check.
		bodyLine := braceLine
		for !strings.Contains(bodyLine, "}") {
			if !scanner.Next() {
				return nil, scanEndError(scanner, record, "closing")
			}
			bodyLine = scanner.Line()
			matchAttribute(&record, bodyLine, scanner.LineNumber(), result, log)
		}

		result.Records = append(result.Records, record)
		log.Debug().
			Str("record", record.Name).
			Str("type", record.Type).
			Int("attributes", len(record.Attributes)).
			Msg("Parsed record")
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// matchAttribute offers one body line to the attribute matcher and routes
// the result onto the record.
func matchAttribute(record *types.Record, line string, lineNumber int, result *ParseResult, log zerolog.Logger) {
	m := attributePattern.FindStringSubmatch(line)
	if m == nil {
		if attributePrefixPattern.MatchString(line) {
			result.warn(lineNumber, record.Name, "line resembles an attribute but does not match the grammar", log)
		}
		return
	}

	kind := types.AttrKind(m[1])
	name := strings.TrimSpace(m[2])
	value := m[3]

	switch {
	case kind == types.AttrField:
		record.Attributes = append(record.Attributes, types.Attribute{
			Kind:  kind,
			Name:  name,
			Value: value,
		})

	case kind == types.AttrInfo && name == "archive":
		policy, err := ParseArchivePolicy(value)
		if err != nil {
			result.skip(lineNumber, record.Name, fmt.Sprintf("archive attribute skipped: %v", err), log)
			return
		}
		record.Attributes = append(record.Attributes, types.Attribute{
			Kind:   kind,
			Name:   name,
			Value:  value,
			Policy: policy,
		})

	default:
		// Info attributes other than archive carry nothing the archive
		// engine consumes; they are dropped.
	}
}

// scanEndError converts an end-of-scan inside a record into the right error:
// a read failure if the scanner saw one, otherwise an unterminated record.
func scanEndError(scanner *LineScanner, record types.Record, brace string) error {
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: record %q (line %d) reached end of input before its %s brace",
		ErrUnterminatedRecord, record.Name, record.Line, brace)
}

// warn records a warning-severity diagnostic.
func (r *ParseResult) warn(line int, record, message string, log zerolog.Logger) {
	d := &Diagnostic{Severity: SeverityWarning, Line: line, Record: record, Message: message}
	r.Diagnostics = append(r.Diagnostics, d)
	log.Debug().Int("line", line).Str("record", record).Msg(message)
}

// skip records an error-severity diagnostic for a dropped archive attribute.
func (r *ParseResult) skip(line int, record, message string, log zerolog.Logger) {
	d := &Diagnostic{Severity: SeverityError, Line: line, Record: record, Message: message}
	r.Diagnostics = append(r.Diagnostics, d)
	log.Warn().Int("line", line).Str("record", record).Msg(message)
}
