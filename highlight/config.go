package highlight

import (
	"context"
	"time"

	"github.com/ParadoxMajor/highlight-feeder/highlight/settings"
)

// Settings keys. Names match the external configuration tool.
const (
	SettingEnabled                  = "enableCrossposting"
	SettingCategoryFlair            = "category"
	SettingSourceNotice             = "leaveCommentOnSourcePost"
	SettingPinSourceNotice          = "stickyCommentOnSourcePost"
	SettingSeenTTL                  = "postIdTimeout"
	SettingClearCache               = "clearCacheForPostId"
	SettingAppStatus                = "appStatus"
	SettingRecommendedVersion       = "recommendAppVersion"
	SettingRequiredVersion          = "requiredAppVersion"
	SettingBlockedCommunities       = "blockedCommunities"
	SettingSecretBlockedCommunities = "secretBlockedCommunities"
	SettingBlockedAuthors           = "blockedAuthors"
	SettingBlockedKeywords          = "blockedKeywords"
	SettingAllowedPostTypes         = "allowedPostTypes"
	SettingGlobalDailyLimit         = "maxHighlightsPerDay"
	SettingPerCommunityLimits       = "maxHighlightsPerDayPerSub"
)

const (
	DefaultSeenTTL          = 24 * time.Hour
	DefaultGlobalDailyLimit = 10
)

// FilterConfig is an immutable snapshot of the eligibility settings, loaded
// fresh for every event. Settings can change between invocations, so nothing
// here is cached across events.
type FilterConfig struct {
	BlockedCommunities       map[string]bool
	SecretBlockedCommunities map[string]bool
	BlockedAuthors           map[string]bool
	AllowedPostTypes         map[string]bool
	BlockedKeywords          []string
	GlobalDailyLimit         int
	PerCommunityLimits       map[string]int
	SeenTTL                  time.Duration
}

func (e *Engine) loadFilterConfig(ctx context.Context) *FilterConfig {
	cfg := &FilterConfig{
		BlockedCommunities:       communitySet(settings.GetStringList(ctx, e.Settings, SettingBlockedCommunities)),
		SecretBlockedCommunities: communitySet(settings.GetStringList(ctx, e.Settings, SettingSecretBlockedCommunities)),
		BlockedAuthors:           authorSet(settings.GetStringList(ctx, e.Settings, SettingBlockedAuthors)),
		BlockedKeywords:          settings.GetStringList(ctx, e.Settings, SettingBlockedKeywords),
		GlobalDailyLimit:         settings.GetInt(ctx, e.Settings, SettingGlobalDailyLimit, DefaultGlobalDailyLimit),
		PerCommunityLimits:       settings.GetIntMap(ctx, e.Settings, SettingPerCommunityLimits),
		SeenTTL:                  DefaultSeenTTL,
	}

	types := settings.GetStringList(ctx, e.Settings, SettingAllowedPostTypes)
	if len(types) == 0 {
		types = []string{"link", "image", "self"}
	}
	cfg.AllowedPostTypes = make(map[string]bool, len(types))
	for _, t := range types {
		cfg.AllowedPostTypes[NormalizeKeyword(t)] = true
	}

	if ttl := settings.GetInt(ctx, e.Settings, SettingSeenTTL, 0); ttl > 0 {
		cfg.SeenTTL = time.Duration(ttl) * time.Second
	}
	return cfg
}

func communitySet(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[NormalizeCommunity(v)] = true
	}
	return out
}

func authorSet(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[NormalizeAuthor(v)] = true
	}
	return out
}
