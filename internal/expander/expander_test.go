package expander

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbwebb/epics-archive-config/internal/config"
	"github.com/sbwebb/epics-archive-config/internal/types"
)

func recordWithPolicy(name string, policy *types.ArchivePolicy) types.Record {
	return types.Record{
		Type: "ai",
		Name: name,
		Attributes: []types.Attribute{{
			Kind:   types.AttrInfo,
			Name:   "archive",
			Policy: policy,
		}},
	}
}

func channelNames(group types.ChannelGroup) []string {
	names := make([]string, 0, len(group.Channels))
	for _, channel := range group.Channels {
		names = append(names, channel.Name)
	}
	return names
}

func TestExpandWithoutRules(t *testing.T) {
	records := []types.Record{
		recordWithPolicy("BL7:Mot:Parker:HROT.RBV", &types.ArchivePolicy{
			Mode:   types.ModeMonitor,
			Period: "00:00:10",
		}),
		recordWithPolicy("CF_BmLn:TT07108:T", &types.ArchivePolicy{
			Mode:       types.ModeScan,
			Period:     "00:01:00",
			Properties: []string{"HIHI", "LOLO"},
		}),
	}

	groups := Expand(records, nil)

	require.Len(t, groups, 1)
	assert.Equal(t, types.DefaultGroupName, groups[0].Name)
	assert.Equal(t, []string{
		"BL7:Mot:Parker:HROT.RBV",
		"CF_BmLn:TT07108:T.HIHI",
		"CF_BmLn:TT07108:T.LOLO",
	}, channelNames(groups[0]))

	bare := groups[0].Channels[0]
	assert.Equal(t, "00:00:10", bare.Period)
	assert.Equal(t, types.ModeMonitor, bare.Mode)
	assert.Empty(t, bare.Delta)

	derived := groups[0].Channels[1]
	assert.Equal(t, "00:01:00", derived.Period)
	assert.Equal(t, types.ModeScan, derived.Mode)
}

func TestExpandRecordWithTwoPolicies(t *testing.T) {
	record := types.Record{
		Type: "ai",
		Name: "BL7:Temp:A",
		Attributes: []types.Attribute{
			{
				Kind:   types.AttrInfo,
				Name:   "archive",
				Policy: &types.ArchivePolicy{Mode: types.ModeMonitor, Period: "00:00:05"},
			},
			{
				Kind:   types.AttrInfo,
				Name:   "archive",
				Policy: &types.ArchivePolicy{Mode: types.ModeScan, Period: "00:01:00", Properties: []string{"VAL"}},
			},
		},
	}

	groups := Expand([]types.Record{record}, nil)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"BL7:Temp:A", "BL7:Temp:A.VAL"}, channelNames(groups[0]))
}

func TestExpandIgnoresAttributesWithoutPolicy(t *testing.T) {
	record := types.Record{
		Type: "ai",
		Name: "BL7:Temp:A",
		Attributes: []types.Attribute{
			{Kind: types.AttrField, Name: "DESC", Value: "no policy"},
		},
	}

	groups := Expand([]types.Record{record}, nil)

	require.Len(t, groups, 1)
	assert.Equal(t, types.DefaultGroupName, groups[0].Name)
	assert.Empty(t, groups[0].Channels)
}

func TestExpandEmptyPropertyListYieldsNoChannels(t *testing.T) {
	// A non-nil empty property list means "archive these properties" with
	// nothing listed, which is distinct from the no-segment bare channel.
	record := recordWithPolicy("BL7:Temp:A", &types.ArchivePolicy{
		Mode:       types.ModeScan,
		Period:     "00:01:00",
		Properties: []string{},
	})

	groups := Expand([]types.Record{record}, nil)

	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Channels)
}

func TestExpandEmptyInput(t *testing.T) {
	rules := []config.GroupRule{
		{Name: "Motors", Patterns: []string{"BL7:Mot:*"}},
	}

	tests := []struct {
		name  string
		rules []config.GroupRule
	}{
		{"without rules", nil},
		{"with rules", rules},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := Expand(nil, tt.rules)

			// The result is never empty: an input without archived
			// channels still produces the default group.
			require.Len(t, groups, 1)
			assert.Equal(t, types.DefaultGroupName, groups[0].Name)
			assert.Empty(t, groups[0].Channels)
		})
	}
}

func TestExpandGroupingRules(t *testing.T) {
	rules := []config.GroupRule{
		{Name: "Motors", Patterns: []string{"BL7:Mot:*"}, MonitorDelta: "0.5"},
		{Name: "Temperatures", Patterns: []string{"*:Temp:*", "CF_*"}},
	}

	records := []types.Record{
		recordWithPolicy("BL7:Mot:X.RBV", &types.ArchivePolicy{Mode: types.ModeMonitor, Period: "00:00:10"}),
		recordWithPolicy("BL7:Mot:Y.RBV", &types.ArchivePolicy{Mode: types.ModeScan, Period: "00:01:00"}),
		recordWithPolicy("CF_BmLn:TT07108:T", &types.ArchivePolicy{
			Mode:       types.ModeScan,
			Period:     "00:01:00",
			Properties: []string{"HIHI", "LOLO"},
		}),
		recordWithPolicy("BL7:Vac:Pressure", &types.ArchivePolicy{Mode: types.ModeMonitor, Period: "00:00:01"}),
	}

	groups := Expand(records, rules)

	require.Len(t, groups, 3)

	assert.Equal(t, "Motors", groups[0].Name)
	assert.Equal(t, []string{"BL7:Mot:X.RBV", "BL7:Mot:Y.RBV"}, channelNames(groups[0]))

	// The rule's monitor delta applies to monitor channels only.
	assert.Equal(t, "0.5", groups[0].Channels[0].Delta)
	assert.Empty(t, groups[0].Channels[1].Delta)

	assert.Equal(t, "Temperatures", groups[1].Name)
	assert.Equal(t, []string{"CF_BmLn:TT07108:T.HIHI", "CF_BmLn:TT07108:T.LOLO"}, channelNames(groups[1]))

	assert.Equal(t, types.DefaultGroupName, groups[2].Name)
	assert.Equal(t, []string{"BL7:Vac:Pressure"}, channelNames(groups[2]))
	assert.Empty(t, groups[2].Channels[0].Delta)
}

func TestExpandFirstMatchingRuleWins(t *testing.T) {
	rules := []config.GroupRule{
		{Name: "Everything", Patterns: []string{"*"}},
		{Name: "AlsoEverything", Patterns: []string{"*"}},
	}

	records := []types.Record{
		recordWithPolicy("BL7:Temp:A", &types.ArchivePolicy{Mode: types.ModeMonitor, Period: "00:00:10"}),
	}

	groups := Expand(records, rules)

	// The second rule captured nothing and the default group is not needed,
	// so neither appears.
	require.Len(t, groups, 1)
	assert.Equal(t, "Everything", groups[0].Name)
	assert.Len(t, groups[0].Channels, 1)
}

func TestExpandEmptyRuleGroupsAreOmitted(t *testing.T) {
	rules := []config.GroupRule{
		{Name: "Vacuum", Patterns: []string{"BL7:Vac:*"}},
		{Name: "Motors", Patterns: []string{"BL7:Mot:*"}},
	}

	records := []types.Record{
		recordWithPolicy("BL7:Mot:X.RBV", &types.ArchivePolicy{Mode: types.ModeMonitor, Period: "00:00:10"}),
	}

	groups := Expand(records, rules)

	require.Len(t, groups, 1)
	assert.Equal(t, "Motors", groups[0].Name)
}
