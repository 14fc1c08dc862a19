// =============================================================================
// EPICS Archive Config Converter - Channel Expander
// =============================================================================
//
// This module turns parsed records into the channel groups rendered by the
// XML writer. It applies two rules:
//
//   1. Policy expansion: every archive policy yields channels. A policy
//      without a property segment yields one channel named after its record.
//      A policy with properties yields one channel per property, named
//      <record>.<property>, all sharing the policy's mode and period.
//
//   2. Grouping: each channel is assigned to the first grouping rule whose
//      patterns match its name. Channels matching no rule fall into
//      Default_Group. Groups appear in rule declaration order with
//      Default_Group last; with no rules configured the result is exactly
//      one Default_Group holding every channel.
//
// Channel order inside a group follows the source: records in file order,
// attributes in record order, properties in list order. The expansion is
// deterministic, so converting the same input twice yields identical output.
//
// =============================================================================

package expander

import (
	"path/filepath"

	"github.com/sbwebb/epics-archive-config/internal/config"
	"github.com/sbwebb/epics-archive-config/internal/types"
)

// Expand converts parsed records into ordered channel groups.
//
// PARAMETERS:
//   - records: The parsed records in source order.
//   - rules: The grouping rules from the configuration, possibly empty.
//
// RETURNS:
//   - The channel groups in emission order. Rule groups appear only when
//     they captured at least one channel; Default_Group appears when it
//     holds channels or when no other group does, so the result is never
//     empty.
func Expand(records []types.Record, rules []config.GroupRule) []types.ChannelGroup {
	// One bucket per rule plus a trailing bucket for unmatched channels.
	buckets := make([][]types.ChannelDescriptor, len(rules)+1)

	for _, record := range records {
		for _, attr := range record.Attributes {
			if attr.Policy == nil {
				continue
			}
			for _, channel := range channelsForPolicy(record.Name, attr.Policy) {
				idx := firstMatchingRule(channel.Name, rules)
				if idx < 0 {
					idx = len(rules)
				} else if rules[idx].MonitorDelta != "" && channel.Mode == types.ModeMonitor {
					channel.Delta = rules[idx].MonitorDelta
				}
				buckets[idx] = append(buckets[idx], channel)
			}
		}
	}

	var groups []types.ChannelGroup
	for i, rule := range rules {
		if len(buckets[i]) > 0 {
			groups = append(groups, types.ChannelGroup{Name: rule.Name, Channels: buckets[i]})
		}
	}

	defaultBucket := buckets[len(rules)]
	if len(defaultBucket) > 0 || len(groups) == 0 {
		groups = append(groups, types.ChannelGroup{Name: types.DefaultGroupName, Channels: defaultBucket})
	}

	return groups
}

// channelsForPolicy expands one archive policy into its channels.
func channelsForPolicy(recordName string, policy *types.ArchivePolicy) []types.ChannelDescriptor {
	if !policy.HasProperties() {
		return []types.ChannelDescriptor{{
			Name:   recordName,
			Period: policy.Period,
			Mode:   policy.Mode,
		}}
	}

	channels := make([]types.ChannelDescriptor, 0, len(policy.Properties))
	for _, property := range policy.Properties {
		channels = append(channels, types.ChannelDescriptor{
			Name:   recordName + "." + property,
			Period: policy.Period,
			Mode:   policy.Mode,
		})
	}
	return channels
}

// firstMatchingRule returns the index of the first rule claiming the channel
// name, or -1 when no rule matches. Patterns are validated at configuration
// load, so match errors are treated as non-matches.
func firstMatchingRule(channelName string, rules []config.GroupRule) int {
	for i, rule := range rules {
		for _, pattern := range rule.Patterns {
			if ok, err := filepath.Match(pattern, channelName); err == nil && ok {
				return i
			}
		}
	}
	return -1
}
