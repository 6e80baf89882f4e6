package highlight

import (
	"context"
	"strings"
	"testing"

	"github.com/ParadoxMajor/highlight-feeder/highlight/feedclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewerVersion(t *testing.T) {
	assert := assert.New(t)

	assert.True(NewerVersion("1.2.3", "1.2.4"))
	assert.True(NewerVersion("1.2.3", "1.3.0"))
	assert.True(NewerVersion("1.2.3", "2.0.0"))
	assert.False(NewerVersion("1.2.3", "1.2.3"))
	assert.False(NewerVersion("1.2.3", "1.2.2"))
	assert.False(NewerVersion("2.0.0", "1.9.9"))

	// short and sloppy inputs
	assert.True(NewerVersion("1.2", "1.2.1"))
	assert.True(NewerVersion(" 1.2.3 ", "1.2.4"))
	assert.False(NewerVersion("1.2.3", ""))
}

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("pics", NormalizeCommunity("pics"))
	assert.Equal("pics", NormalizeCommunity("r/Pics"))
	assert.Equal("pics", NormalizeCommunity("/r/pics/"))
	assert.Equal("pics", NormalizeCommunity("  R/pics "))

	assert.Equal("someone", NormalizeAuthor("Someone"))
	assert.Equal("someone", NormalizeAuthor("u/Someone"))
	assert.Equal("someone", NormalizeAuthor("/u/someone/"))

	assert.Equal("spoiler", NormalizeKeyword("  Spoiler "))
}

func TestBuildStatusReportDefault(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, _, _ := EngineTestFixture()

	report, err := engine.BuildStatusReport(ctx, "pics", "someone", "1.0.0")
	require.NoError(err)
	assert.True(report.Enabled)
	assert.Equal(StatusActive, report.Status)
	assert.False(report.Editable)
}

func TestBuildStatusReportBlocked(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, _, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingBlockedCommunities, `["r/Pics"]`)
	cfgStore.Set(SettingRequiredVersion, "9.0.0")

	// the block overrides the version checks
	report, err := engine.BuildStatusReport(ctx, "pics", "someone", "1.0.0")
	require.NoError(err)
	assert.Equal(StatusBlocked, report.Status)
	assert.Empty(report.RequiredVersion)
}

func TestBuildStatusReportVersions(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, _, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingRecommendedVersion, "1.1.0")

	report, err := engine.BuildStatusReport(ctx, "pics", "someone", "1.0.0")
	require.NoError(err)
	assert.Equal(StatusUpdateAvailable, report.Status)
	assert.Equal("1.1.0", report.RecommendedVersion)

	// required takes precedence over recommended
	cfgStore.Set(SettingRequiredVersion, "1.2.0")
	report, err = engine.BuildStatusReport(ctx, "pics", "someone", "1.0.0")
	require.NoError(err)
	assert.Equal(StatusUpdateRequired, report.Status)
	assert.Equal("1.2.0", report.RequiredVersion)

	// up to date
	report, err = engine.BuildStatusReport(ctx, "pics", "someone", "1.2.0")
	require.NoError(err)
	assert.Equal(StatusActive, report.Status)
}

func TestBuildStatusReportEditable(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingBlockedAuthors, `["spammer"]`)
	client.ModTeams["highlights"] = []feedclient.Moderator{
		{Username: "FeedAdmin", Permissions: []string{"all"}},
		{Username: "JuniorMod", Permissions: []string{"posts"}},
	}

	// full perms on the feed community itself
	report, err := engine.BuildStatusReport(ctx, "highlights", "feedadmin", "1.0.0")
	require.NoError(err)
	assert.True(report.Editable)
	assert.Equal([]string{"spammer"}, report.BlockedAuthors)
	assert.Equal(DefaultGlobalDailyLimit, report.GlobalDailyLimit)

	// partial perms
	report, err = engine.BuildStatusReport(ctx, "highlights", "juniormod", "1.0.0")
	require.NoError(err)
	assert.False(report.Editable)

	// full perms somewhere else do not count
	report, err = engine.BuildStatusReport(ctx, "pics", "feedadmin", "1.0.0")
	require.NoError(err)
	assert.False(report.Editable)
}

func TestHasAllPermsCached(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()
	client.ModTeams["highlights"] = []feedclient.Moderator{
		{Username: "feedadmin", Permissions: []string{"all"}},
	}

	ok, err := engine.hasAllPerms(ctx, "highlights", "feedadmin")
	require.NoError(err)
	assert.True(ok)

	// cached: dropping the mod team does not flip the answer immediately
	client.ModTeams["highlights"] = nil
	ok, err = engine.hasAllPerms(ctx, "highlights", "feedadmin")
	require.NoError(err)
	assert.True(ok)
}

func TestSettingsCommands(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	engine, _, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingAppStatus, "Active")
	cfgStore.Set(SettingBlockedCommunities, `["foo"]`)
	cfgStore.Set(SettingGlobalDailyLimit, "10")

	// no changes, no commands
	cmds := engine.SettingsCommands(ctx, SettingsEdit{
		Status:             StatusActive,
		BlockedCommunities: []string{"r/Foo"},
		GlobalDailyLimit:   10,
	})
	assert.Empty(cmds)

	cmds = engine.SettingsCommands(ctx, SettingsEdit{
		Status:             StatusPaused,
		BlockedCommunities: []string{"foo", "bar"},
		GlobalDailyLimit:   5,
		PerCommunityLimits: map[string]int{"r/Pics": 2},
	})
	assert.Len(cmds, 4)
	for _, c := range cmds {
		assert.True(strings.HasPrefix(c, "app-config set global "), "cmd=%s", c)
	}
	assert.Contains(cmds[0], SettingAppStatus)
	assert.Contains(cmds[0], "Paused")

	var limitCmd string
	for _, c := range cmds {
		if strings.Contains(c, SettingPerCommunityLimits) {
			limitCmd = c
		}
	}
	assert.Contains(limitCmd, `{"pics":2}`)
}
