package xmlwriter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbwebb/epics-archive-config/internal/types"
)

func TestGenerateSingleMonitorChannel(t *testing.T) {
	groups := []types.ChannelGroup{
		{
			Name: types.DefaultGroupName,
			Channels: []types.ChannelDescriptor{
				{Name: "BL7:Mot:Parker:HROT.RBV", Period: "00:00:10", Mode: types.ModeMonitor},
			},
		},
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<engineconfig>
  <group>
    <name>Default_Group</name>
    <channel>
      <name>BL7:Mot:Parker:HROT.RBV</name>
      <period>00:00:10</period>
      <monitor/>
    </channel>
  </group>
</engineconfig>
`

	got, err := Generate(groups)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))

	// Generation is deterministic.
	again, err := Generate(groups)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestGenerateGroupsAndModes(t *testing.T) {
	groups := []types.ChannelGroup{
		{
			Name: "Motors",
			Channels: []types.ChannelDescriptor{
				{Name: "BL7:Mot:X.RBV", Period: "00:00:10", Mode: types.ModeMonitor, Delta: "0.5"},
			},
		},
		{
			Name: types.DefaultGroupName,
			Channels: []types.ChannelDescriptor{
				{Name: "CF_BmLn:TT07108:T.HIHI", Period: "00:01:00", Mode: types.ModeScan},
				{Name: "CF_BmLn:TT07108:T.LOLO", Period: "00:01:00", Mode: types.ModeScan},
			},
		},
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<engineconfig>
  <group>
    <name>Motors</name>
    <channel>
      <name>BL7:Mot:X.RBV</name>
      <period>00:00:10</period>
      <monitor>0.5</monitor>
    </channel>
  </group>
  <group>
    <name>Default_Group</name>
    <channel>
      <name>CF_BmLn:TT07108:T.HIHI</name>
      <period>00:01:00</period>
      <scan/>
    </channel>
    <channel>
      <name>CF_BmLn:TT07108:T.LOLO</name>
      <period>00:01:00</period>
      <scan/>
    </channel>
  </group>
</engineconfig>
`

	got, err := Generate(groups)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func TestGenerateDeltaIgnoredForScanChannels(t *testing.T) {
	groups := []types.ChannelGroup{
		{
			Name: types.DefaultGroupName,
			Channels: []types.ChannelDescriptor{
				{Name: "BL7:Temp:A", Period: "00:01:00", Mode: types.ModeScan, Delta: "0.5"},
			},
		},
	}

	got, err := Generate(groups)
	require.NoError(t, err)
	assert.Contains(t, string(got), "<scan/>")
	assert.NotContains(t, string(got), "0.5")
}

func TestGenerateWithoutDeclaration(t *testing.T) {
	options := DefaultGenerateOptions()
	options.IncludeXMLDeclaration = false

	got, err := GenerateWithOptions([]types.ChannelGroup{{Name: types.DefaultGroupName}}, options)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "<engineconfig>"), "output should start with the root element, got %q", string(got))
}

func TestGenerateCustomIndent(t *testing.T) {
	options := DefaultGenerateOptions()
	options.Indent = "\t"
	options.IncludeXMLDeclaration = false

	groups := []types.ChannelGroup{
		{
			Name: types.DefaultGroupName,
			Channels: []types.ChannelDescriptor{
				{Name: "BL7:Temp:A", Period: "00:00:05", Mode: types.ModeMonitor},
			},
		},
	}

	want := `<engineconfig>
	<group>
		<name>Default_Group</name>
		<channel>
			<name>BL7:Temp:A</name>
			<period>00:00:05</period>
			<monitor/>
		</channel>
	</group>
</engineconfig>
`

	got, err := GenerateWithOptions(groups, options)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func TestGenerateEscapesSpecialCharacters(t *testing.T) {
	groups := []types.ChannelGroup{
		{
			Name: types.DefaultGroupName,
			Channels: []types.ChannelDescriptor{
				{Name: `BL7:Calc:A<B&"C"`, Period: "00:00:10", Mode: types.ModeMonitor},
			},
		},
	}

	got, err := Generate(groups)
	require.NoError(t, err)
	assert.Contains(t, string(got), "<name>BL7:Calc:A&lt;B&amp;&quot;C&quot;</name>")
}

func TestGenerateEmptyGroup(t *testing.T) {
	got, err := Generate([]types.ChannelGroup{{Name: types.DefaultGroupName}})
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<engineconfig>
  <group>
    <name>Default_Group</name>
  </group>
</engineconfig>
`
	assert.Equal(t, want, string(got))
}

func TestGenerateRootAttributes(t *testing.T) {
	options := DefaultGenerateOptions()
	options.RootAttributes["version"] = "1.0"

	got, err := GenerateWithOptions([]types.ChannelGroup{{Name: types.DefaultGroupName}}, options)
	require.NoError(t, err)
	assert.Contains(t, string(got), `<engineconfig version="1.0">`)
}
