package highlight

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ParadoxMajor/highlight-feeder/highlight/settings"
)

// Status is the operator-facing state of the whole app. It is advisory: the
// decision engine gates only on the per-installation enable flag, never on
// this value. An operator who expects Paused to halt processing should flip
// the enable flag instead.
type Status string

const (
	StatusActive          Status = "Active"
	StatusPaused          Status = "Paused"
	StatusBlocked         Status = "Blocked"
	StatusSecretBlocked   Status = "Secret Blocked"
	StatusUpdateAvailable Status = "Update Available"
	StatusUpdateRequired  Status = "Update Required"
	StatusDisabled        Status = "Disabled"
	StatusFailing         Status = "Failing"
)

// StatusReport is the assembled state shown on the status surface. The
// editable fields are only populated for moderators holding "all"
// permissions on the feed community itself.
type StatusReport struct {
	Enabled            bool           `json:"enabled"`
	Status             Status         `json:"status"`
	RecommendedVersion string         `json:"recommendedVersion,omitempty"`
	RequiredVersion    string         `json:"requiredVersion,omitempty"`
	Editable           bool           `json:"editable"`
	BlockedCommunities []string       `json:"blockedCommunities,omitempty"`
	SecretBlocked      []string       `json:"secretBlockedCommunities,omitempty"`
	BlockedAuthors     []string       `json:"blockedAuthors,omitempty"`
	BlockedKeywords    []string       `json:"blockedKeywords,omitempty"`
	GlobalDailyLimit   int            `json:"globalDailyLimit,omitempty"`
	PerCommunityLimits map[string]int `json:"perCommunityLimits,omitempty"`
}

// BuildStatusReport assembles the status view for a moderator browsing from
// the given community. Block and update checks override the stored status.
func (e *Engine) BuildStatusReport(ctx context.Context, community, username, appVersion string) (*StatusReport, error) {
	report := &StatusReport{
		Enabled: settings.GetBool(ctx, e.Settings, SettingEnabled, true),
		Status:  Status(settings.GetString(ctx, e.Settings, SettingAppStatus, string(StatusActive))),
	}

	blocked := settings.GetStringList(ctx, e.Settings, SettingBlockedCommunities)
	recommended := settings.GetString(ctx, e.Settings, SettingRecommendedVersion, "")
	required := settings.GetString(ctx, e.Settings, SettingRequiredVersion, "")

	isBlocked := false
	for _, b := range blocked {
		if NormalizeCommunity(b) == NormalizeCommunity(community) {
			isBlocked = true
			break
		}
	}
	switch {
	case isBlocked:
		report.Status = StatusBlocked
	case required != "" && NewerVersion(appVersion, required):
		report.Status = StatusUpdateRequired
		report.RequiredVersion = required
	case recommended != "" && NewerVersion(appVersion, recommended):
		report.Status = StatusUpdateAvailable
		report.RecommendedVersion = recommended
	}

	if NormalizeCommunity(community) == NormalizeCommunity(e.FeedCommunity) {
		editable, err := e.hasAllPerms(ctx, community, username)
		if err != nil {
			return nil, fmt.Errorf("checking moderator permissions: %w", err)
		}
		report.Editable = editable
	}
	if report.Editable {
		report.BlockedCommunities = blocked
		report.SecretBlocked = settings.GetStringList(ctx, e.Settings, SettingSecretBlockedCommunities)
		report.BlockedAuthors = settings.GetStringList(ctx, e.Settings, SettingBlockedAuthors)
		report.BlockedKeywords = settings.GetStringList(ctx, e.Settings, SettingBlockedKeywords)
		report.GlobalDailyLimit = settings.GetInt(ctx, e.Settings, SettingGlobalDailyLimit, DefaultGlobalDailyLimit)
		report.PerCommunityLimits = settings.GetIntMap(ctx, e.Settings, SettingPerCommunityLimits)
	}
	return report, nil
}

// hasAllPerms reports whether the user moderates the community with "all"
// permissions. Results are cached; a mod team change shows up after the
// cache entry expires.
func (e *Engine) hasAllPerms(ctx context.Context, community, username string) (bool, error) {
	cacheKey := NormalizeCommunity(community) + "/" + NormalizeAuthor(username)
	if cached, err := e.Cache.Get(ctx, "modperms", cacheKey); err == nil && cached != "" {
		return cached == "all", nil
	}

	mods, err := e.Client.Moderators(ctx, community)
	if err != nil {
		return false, err
	}
	result := "none"
	for _, m := range mods {
		if NormalizeAuthor(m.Username) != NormalizeAuthor(username) {
			continue
		}
		for _, p := range m.Permissions {
			if p == "all" {
				result = "all"
			}
		}
		break
	}
	if err := e.Cache.Set(ctx, "modperms", cacheKey, result); err != nil {
		e.Logger.Error("caching moderator permissions", "err", err, "key", cacheKey)
	}
	return result == "all", nil
}

// SettingsEdit carries the desired settings values from the status surface.
type SettingsEdit struct {
	Status             Status
	RecommendedVersion string
	RequiredVersion    string
	BlockedCommunities []string
	SecretBlocked      []string
	BlockedAuthors     []string
	BlockedKeywords    []string
	GlobalDailyLimit   int
	PerCommunityLimits map[string]int
}

const settingsCLIPrefix = "app-config set global"

// SettingsCommands diffs the edit against the current settings and renders
// one external configuration-CLI command per changed value. Edits are not
// written directly; the operator runs the commands out of band.
func (e *Engine) SettingsCommands(ctx context.Context, edit SettingsEdit) []string {
	var cmds []string

	current := settings.GetString(ctx, e.Settings, SettingAppStatus, string(StatusActive))
	if !strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(string(edit.Status))) {
		cmds = append(cmds, fmt.Sprintf("%s %s %q", settingsCLIPrefix, SettingAppStatus, string(edit.Status)))
	}

	for _, f := range []struct {
		key    string
		edited string
	}{
		{SettingRecommendedVersion, edit.RecommendedVersion},
		{SettingRequiredVersion, edit.RequiredVersion},
	} {
		cur := settings.GetString(ctx, e.Settings, f.key, "")
		if !strings.EqualFold(strings.TrimSpace(cur), strings.TrimSpace(f.edited)) {
			cmds = append(cmds, fmt.Sprintf("%s %s %q", settingsCLIPrefix, f.key, strings.TrimSpace(f.edited)))
		}
	}

	for _, f := range []struct {
		key       string
		edited    []string
		normalize func(string) string
	}{
		{SettingBlockedCommunities, edit.BlockedCommunities, NormalizeCommunity},
		{SettingSecretBlockedCommunities, edit.SecretBlocked, NormalizeCommunity},
		{SettingBlockedAuthors, edit.BlockedAuthors, NormalizeAuthor},
		{SettingBlockedKeywords, edit.BlockedKeywords, NormalizeKeyword},
	} {
		cur := normalizeList(settings.GetStringList(ctx, e.Settings, f.key), f.normalize)
		edited := normalizeList(f.edited, f.normalize)
		if !listsEqual(cur, edited) {
			encoded, _ := json.Marshal(edited)
			cmds = append(cmds, fmt.Sprintf("%s %s '%s'", settingsCLIPrefix, f.key, string(encoded)))
		}
	}

	if settings.GetInt(ctx, e.Settings, SettingGlobalDailyLimit, DefaultGlobalDailyLimit) != edit.GlobalDailyLimit {
		cmds = append(cmds, fmt.Sprintf("%s %s %d", settingsCLIPrefix, SettingGlobalDailyLimit, edit.GlobalDailyLimit))
	}

	curLimits := settings.GetIntMap(ctx, e.Settings, SettingPerCommunityLimits)
	editLimits := normalizeLimitMap(edit.PerCommunityLimits)
	if !mapsEqual(normalizeLimitMap(curLimits), editLimits) {
		encoded, _ := json.Marshal(editLimits)
		cmds = append(cmds, fmt.Sprintf("%s %s '%s'", settingsCLIPrefix, SettingPerCommunityLimits, string(encoded)))
	}

	return cmds
}

// NewerVersion reports whether candidate is a strictly newer dotted version
// than current. Non-numeric segments compare as zero.
func NewerVersion(current, candidate string) bool {
	cur := parseVersion(current)
	cand := parseVersion(candidate)
	for i := 0; i < 3; i++ {
		if cand[i] > cur[i] {
			return true
		}
		if cand[i] < cur[i] {
			return false
		}
	}
	return false
}

func parseVersion(v string) [3]int {
	var out [3]int
	for i, part := range strings.SplitN(strings.TrimSpace(v), ".", 3) {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil {
			out[i] = n
		}
	}
	return out
}

var (
	slashRun        = regexp.MustCompile(`/+`)
	communityPrefix = regexp.MustCompile(`(?i)^/?r/`)
	authorPrefix    = regexp.MustCompile(`(?i)^/?u/`)
)

// NormalizeCommunity strips an optional leading r/ marker, collapses
// slashes, trims, and lower-cases.
func NormalizeCommunity(raw string) string {
	s := strings.TrimSpace(raw)
	s = communityPrefix.ReplaceAllString(s, "")
	s = slashRun.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// NormalizeAuthor strips an optional leading u/ marker, collapses slashes,
// trims, and lower-cases.
func NormalizeAuthor(raw string) string {
	s := strings.TrimSpace(raw)
	s = authorPrefix.ReplaceAllString(s, "")
	s = slashRun.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// NormalizeKeyword trims and lower-cases a keyword or post-type entry.
func NormalizeKeyword(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeList(vals []string, f func(string) string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if n := f(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalizeLimitMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[NormalizeCommunity(k)] = v
	}
	return out
}

func listsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string{}, a...)
	bs := append([]string{}, b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func mapsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
