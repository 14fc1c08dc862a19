// =============================================================================
// EPICS Archive Config Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - dbparser
//   - expander
//   - xmlwriter
//   - converter
//   - report
//
// =============================================================================

package types

// =============================================================================
// RECORD TYPES
// =============================================================================

// AttrKind identifies the kind of a record attribute. The two kinds mirror
// the two annotation keywords of the database grammar.
type AttrKind string

const (
	// AttrField is a plain field annotation, e.g. field(DESC, "...").
	AttrField AttrKind = "field"

	// AttrInfo is an info annotation, e.g. info(archive, "...").
	AttrInfo AttrKind = "info"
)

// Sampling modes recognized by the archive mini-grammar. Values are stored
// lowercase regardless of the casing used in the input.
const (
	ModeMonitor = "monitor"
	ModeScan    = "scan"
)

// Record represents a single record from the EPICS database file.
// A record owns its attributes; attribute order is source order and is
// significant for deterministic output.
type Record struct {
	// Type is the record type, e.g. "ai", "bo", "calc".
	Type string

	// Name is the record name, with surrounding quotes stripped.
	// Example: "BL7:Mot:Parker:HROT.RBV"
	Name string

	// Line is the 1-based line number of the record header.
	// Used in diagnostics only.
	Line int

	// Attributes contains the attributes parsed from the record body,
	// in source order.
	Attributes []Attribute
}

// Attribute represents one annotation line inside a record body.
// It is a tagged value: Policy is non-nil exactly when the attribute is an
// info annotation named "archive" whose value parsed successfully. A policy
// that fails to parse is never attached to a record.
type Attribute struct {
	// Kind is the annotation kind, AttrField or AttrInfo.
	Kind AttrKind

	// Name is the attribute name, e.g. "DESC", "SCAN", "archive".
	Name string

	// Value is the raw quoted value, with the quotes stripped.
	Value string

	// Policy holds the parsed sampling policy for archive-tagged info
	// attributes. Nil for field attributes.
	Policy *ArchivePolicy
}

// =============================================================================
// ARCHIVE POLICY
// =============================================================================

// ArchivePolicy is the parsed form of an archive-tagged info value, e.g.
// info(archive, "monitor, 00:00:05, VAL RVAL"). Instances are only produced
// by the policy parser; Mode and Period are always both set.
type ArchivePolicy struct {
	// Mode is the sampling trigger type, ModeMonitor or ModeScan,
	// normalized to lowercase.
	Mode string

	// Period is the sampling interval exactly as written, HH:MM:SS.
	Period string

	// Properties is the optional list of record properties to archive as
	// separate channels (e.g. VAL, HIHI, LOLO). A nil slice means the
	// value carried no property segment at all; the expander emits one
	// bare channel in that case. A non-nil empty slice means the segment
	// was present but held no names, which expands to zero channels.
	Properties []string
}

// HasProperties reports whether the policy carried a property segment.
func (p *ArchivePolicy) HasProperties() bool {
	return p.Properties != nil
}

// =============================================================================
// CHANNEL TYPES
// =============================================================================

// ChannelDescriptor is one output unit destined for the archive engine
// configuration. Descriptors are derived from archive policies during
// expansion and are never stored back on a record.
type ChannelDescriptor struct {
	// Name is the channel name: the record name, or record name + "." +
	// property for property-derived channels.
	Name string

	// Period is the sampling interval, copied verbatim from the policy.
	Period string

	// Mode is the sampling mode, ModeMonitor or ModeScan.
	Mode string

	// Delta is an optional numeric threshold rendered as the text of a
	// monitor element, e.g. <monitor>0.5</monitor>. Empty for the common
	// empty-tag form. Assigned from grouping rules; never parsed from
	// the database file.
	Delta string
}

// ChannelGroup is a named bucket of channels in the output document.
// Groups appear in the document in slice order.
type ChannelGroup struct {
	// Name is the group name. Channels not captured by any grouping rule
	// land in DefaultGroupName.
	Name string

	// Channels contains the group's channels in
	// record-then-attribute-then-property order.
	Channels []ChannelDescriptor
}

// DefaultGroupName is the group used when no grouping rule matches a
// channel, and the only group emitted when no rules are configured.
const DefaultGroupName = "Default_Group"
