package highlight

import (
	"context"
	"fmt"

	"github.com/ParadoxMajor/highlight-feeder/highlight/countstore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/keyword"
)

// DenyReason identifies the first eligibility check a post failed.
type DenyReason string

const (
	DenyNone                   DenyReason = ""
	DenyBlockedCommunity       DenyReason = "blocked-community"
	DenySecretBlockedCommunity DenyReason = "secret-blocked-community"
	DenyBlockedAuthor          DenyReason = "blocked-author"
	DenyBlockedKeyword         DenyReason = "blocked-keyword"
	DenyDisallowedType         DenyReason = "disallowed-type"
	DenyQuotaExceeded          DenyReason = "quota-exceeded"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
	// Normalized keywords that matched, populated for DenyBlockedKeyword.
	MatchedKeywords []string
}

// counter namespace for highlight quota scopes
const counterHighlights = "highlights"

// ScopeGlobal is the quota scope covering all source communities combined.
const ScopeGlobal = "global"

func deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// evaluatePost runs the ordered eligibility checks. The first failing check
// decides the reason and no later check runs, so a blocked community never
// consumes quota. Quota is consumed here, as the last check, and is not
// refunded if the republish that follows fails.
func (e *Engine) evaluatePost(ctx context.Context, evt *ModerationEvent, cfg *FilterConfig) (Decision, error) {
	post := evt.TargetPost
	community := NormalizeCommunity(evt.SourceCommunity)

	if cfg.BlockedCommunities[community] {
		return deny(DenyBlockedCommunity), nil
	}
	if cfg.SecretBlockedCommunities[community] {
		return deny(DenySecretBlockedCommunity), nil
	}
	if cfg.BlockedAuthors[NormalizeAuthor(post.Author)] {
		return deny(DenyBlockedAuthor), nil
	}
	if matched := keyword.MatchBlocked(cfg.BlockedKeywords, keyword.PostText(post.Title, post.Body)); len(matched) > 0 {
		d := deny(DenyBlockedKeyword)
		d.MatchedKeywords = matched
		return d, nil
	}
	if post.PostType != "" && !cfg.AllowedPostTypes[NormalizeKeyword(post.PostType)] {
		return deny(DenyDisallowedType), nil
	}

	// global tier first; its increment is not rolled back if the
	// per-community tier denies afterwards
	ok, err := e.tryConsume(ctx, ScopeGlobal, cfg.GlobalDailyLimit)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return deny(DenyQuotaExceeded), nil
	}
	if limit, set := cfg.PerCommunityLimits[community]; set {
		ok, err := e.tryConsume(ctx, community, limit)
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			return deny(DenyQuotaExceeded), nil
		}
	}

	return Decision{Allowed: true}, nil
}

// tryConsume admits one highlight under the scope's daily limit. The read
// and increment are two store operations; the store's per-key atomicity
// keeps the counter itself accurate, and the limit check errs toward
// under-posting.
func (e *Engine) tryConsume(ctx context.Context, scope string, limit int) (bool, error) {
	current, err := e.Counters.GetCount(ctx, counterHighlights, scope, countstore.PeriodDay)
	if err != nil {
		return false, fmt.Errorf("reading quota counter for %s: %w", scope, err)
	}
	if current >= limit {
		return false, nil
	}
	if err := e.Counters.Increment(ctx, counterHighlights, scope); err != nil {
		return false, fmt.Errorf("incrementing quota counter for %s: %w", scope, err)
	}
	return true, nil
}
