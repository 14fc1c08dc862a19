// =============================================================================
// EPICS Archive Config Converter - Sampling Policy Parser
// =============================================================================
//
// This file parses the mini-grammar embedded in archive-tagged info values.
// The expected shape is:
//
//   <mode>, <period>[, <prop1> <prop2> ...]
//
// where mode is "monitor" or "scan" (case-insensitive), period is HH:MM:SS
// with every component two digits and a tens digit in [0,5], and the
// optional trailing segment is a whitespace-separated list of record
// properties (VAL, RVAL, HIHI, ...).
//
// Examples:
//   "monitor, 00:00:05"                      -> monitor every 5s, one bare channel
//   "scan, 00:01:00, HIHI LOLO HIGH LOW"     -> four property channels
//   "MONITOR, 00:00:10"                      -> mode normalized to lowercase
//
// The parser is a fallible constructor: it returns a fully-populated policy
// or an error, never a partially-initialized value.
//
// =============================================================================

package dbparser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sbwebb/epics-archive-config/internal/types"
)

// ErrPolicySyntax is returned when an archive value does not match the
// mode/period grammar. Callers skip the attribute and record a diagnostic.
var ErrPolicySyntax = errors.New("invalid archive value")

// archivePattern matches the whole archive value in one pass. Mode and
// period are mandatory; everything after the optional second comma is the
// property segment.
var archivePattern = regexp.MustCompile(
	`^\s*((?i:monitor|scan))\s*,\s*([0-5][0-9]:[0-5][0-9]:[0-5][0-9])\s*,?\s*(.*)$`)

// ParseArchivePolicy parses the value string of an archive-tagged info
// attribute.
//
// PARAMETERS:
//   - value: The raw value between the quotes, e.g. "monitor, 00:00:05".
//
// RETURNS:
//   - The parsed policy, with the mode lowercased and the property segment
//     split on whitespace. Properties is nil when the segment is absent or
//     blank, which the expander treats as "one bare channel".
//   - ErrPolicySyntax (wrapped with the offending value) if the value does
//     not match the grammar.
func ParseArchivePolicy(value string) (*types.ArchivePolicy, error) {
	m := archivePattern.FindStringSubmatch(value)
	if m == nil {
		return nil, fmt.Errorf("%w: %q does not match \"<mode>, <HH:MM:SS>[, properties]\"", ErrPolicySyntax, value)
	}

	policy := &types.ArchivePolicy{
		Mode:   strings.ToLower(m[1]),
		Period: m[2],
	}

	// A blank trailing segment (including the bare-trailing-comma form
	// "monitor, 00:00:05,") leaves Properties nil.
	if props := strings.Fields(m[3]); len(props) > 0 {
		policy.Properties = props
	}

	return policy, nil
}
