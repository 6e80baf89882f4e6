package highlight

import (
	"context"
	"log/slog"

	"github.com/ParadoxMajor/highlight-feeder/highlight/cachestore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/countstore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/feedclient"
	"github.com/ParadoxMajor/highlight-feeder/highlight/seenstore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/settings"
)

// Engine decides, for each inbound moderation event, whether the target post
// gets republished into the aggregation feed, and drives the republish
// sequence when it does.
//
// Events are processed independently; the only shared mutable state is in
// the stores. Fields must all be non-nil.
type Engine struct {
	Logger   *slog.Logger
	Settings settings.Store
	Seen     seenstore.SeenStore
	Counters countstore.CountStore
	Cache    cachestore.CacheStore
	Client   feedclient.Client
	// Destination community receiving highlight crossposts.
	FeedCommunity string
}

// ProcessModAction handles one canonical moderation event. Returns an error
// only for failures worth surfacing to the intake loop (store errors, failed
// republish); eligibility denials are decisions, logged and returned as nil.
func (e *Engine) ProcessModAction(ctx context.Context, evt *ModerationEvent) error {
	// similar to an HTTP server, we want to recover any panics from event handling
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("highlight event execution exception", "err", r, "action", evt.Action, "community", evt.SourceCommunity)
		}
	}()
	eventsProcessed.Inc()

	if evt.TargetPost == nil || evt.TargetPost.ID == "" {
		return nil
	}
	cls := Classify(evt.Action)
	if cls == ActionIrrelevant {
		return nil
	}

	logger := e.Logger.With("action", evt.Action, "community", evt.SourceCommunity, "post", evt.TargetPost.ID)

	if !settings.GetBool(ctx, e.Settings, SettingEnabled, true) {
		// crossposting switched off for this installation
		return nil
	}
	if NormalizeCommunity(evt.SourceCommunity) == NormalizeCommunity(e.FeedCommunity) {
		// never react to actions inside the aggregation feed itself
		return nil
	}

	cfg := e.loadFilterConfig(ctx)

	if cls == ActionUnstick {
		return e.handleUnstick(ctx, logger, evt.TargetPost.ID, cfg)
	}

	e.maybeClearCache(ctx, logger, evt.SourceCommunity, evt.TargetPost.ID)

	seen, err := e.Seen.Seen(ctx, evt.TargetPost.ID)
	if err != nil {
		return err
	}
	if seen {
		logger.Info("already handled this post recently")
		return nil
	}

	decision, err := e.evaluatePost(ctx, evt, cfg)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		decisionsDenied.WithLabelValues(string(decision.Reason)).Inc()
		if decision.Reason == DenySecretBlockedCommunity {
			// suppressed silently; keep it out of the normal log stream
			logger.Debug("highlight denied", "reason", decision.Reason)
		} else {
			logger.Info("highlight denied", "reason", decision.Reason, "matchedKeywords", decision.MatchedKeywords)
		}
		return nil
	}

	return e.handleStick(ctx, logger, evt, cfg)
}
