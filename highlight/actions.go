package highlight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ParadoxMajor/highlight-feeder/highlight/feedclient"
	"github.com/ParadoxMajor/highlight-feeder/highlight/settings"
)

const clearedMarkerName = "ops"
const clearedMarkerKey = "cacheCleared"

// handleStick drives the republish sequence for an admitted post. The seen
// mark is the first durable side effect: a crash or duplicate delivery after
// it can never double-republish. Every step after the crosspost is
// best-effort and isolated, so a flair or comment failure does not undo the
// republish or abort the remaining steps.
func (e *Engine) handleStick(ctx context.Context, logger *slog.Logger, evt *ModerationEvent, cfg *FilterConfig) error {
	post := evt.TargetPost

	fresh, err := e.Seen.MarkSeenOnce(ctx, post.ID, cfg.SeenTTL)
	if err != nil {
		return fmt.Errorf("marking post seen: %w", err)
	}
	if !fresh {
		// lost a race with a concurrent delivery of the same event
		logger.Info("post already claimed by a concurrent event")
		return nil
	}

	nsfwTag := ""
	if evt.SourceIsNSFW {
		nsfwTag = "[NSFW] "
	}
	cross, err := e.Client.Crosspost(ctx, feedclient.CrosspostRequest{
		Title:        "Highlighted post from " + nsfwTag + "r/" + evt.SourceCommunity,
		Community:    e.FeedCommunity,
		SourcePostID: post.ID,
		NSFW:         post.NSFW,
		Spoiler:      post.Spoiler,
		SendReplies:  false,
	})
	if err != nil {
		// terminal for this event; no retry, and consumed quota stays consumed
		highlightsFailed.Inc()
		return fmt.Errorf("crossposting highlight: %w", err)
	}
	highlightsPublished.Inc()
	logger.Info("crossposted highlighted post", "crosspost", cross.ID)

	if flair := settings.GetString(ctx, e.Settings, SettingCategoryFlair, ""); flair != "" {
		if err := e.Client.SetPostFlair(ctx, e.FeedCommunity, cross.ID, flair); err != nil {
			logger.Error("setting category flair on crosspost", "err", err, "flair", flair, "crosspost", cross.ID)
		}
	}

	comment, err := e.Client.SubmitComment(ctx, cross.ID, sourceLinkText(post.URL))
	if err != nil {
		logger.Error("submitting explanatory comment on crosspost", "err", err, "crosspost", cross.ID)
	} else {
		if err := e.Client.DistinguishComment(ctx, comment.ID, true); err != nil {
			logger.Error("pinning explanatory comment", "err", err, "comment", comment.ID, "crosspost", cross.ID)
		}
	}

	// the crosspost is just a pointer to the original, so lock it regardless
	// of how the flair and comment steps went
	if err := e.Client.LockPost(ctx, cross.ID); err != nil {
		logger.Error("locking crosspost", "err", err, "crosspost", cross.ID)
	}

	if settings.GetBool(ctx, e.Settings, SettingSourceNotice, false) {
		e.leaveSourceNotice(ctx, logger, post.ID)
	}

	return nil
}

// handleUnstick only records the post as handled. A deliberately removed
// highlight is treated like one that already ran, so re-sticking it (or the
// platform reordering pins) does not re-trigger within the TTL window.
func (e *Engine) handleUnstick(ctx context.Context, logger *slog.Logger, postID string, cfg *FilterConfig) error {
	logger.Info("post unstickied, suppressing re-stick for the dedup window")
	if err := e.Seen.MarkSeen(ctx, postID, cfg.SeenTTL); err != nil {
		return fmt.Errorf("marking unstickied post seen: %w", err)
	}
	return nil
}

// leaveSourceNotice posts a pointer comment on the original post. Pinning is
// skipped when the source post already carries a pinned top-level comment.
// Each sub-step is isolated from the others' failures.
func (e *Engine) leaveSourceNotice(ctx context.Context, logger *slog.Logger, postID string) {
	pin := settings.GetBool(ctx, e.Settings, SettingPinSourceNotice, false)
	if pin {
		pinned, err := e.postHasPinnedComment(ctx, postID)
		if err != nil {
			logger.Error("scanning source post for pinned comments", "err", err, "post", postID)
		} else if pinned {
			pin = false
		}
	}

	comment, err := e.Client.SubmitComment(ctx, postID, sourceNoticeText(e.FeedCommunity))
	if err != nil {
		logger.Error("submitting notice on source post", "err", err, "post", postID)
		return
	}
	if err := e.Client.DistinguishComment(ctx, comment.ID, pin); err != nil {
		logger.Error("distinguishing source post notice", "err", err, "comment", comment.ID, "post", postID)
	}
	if err := e.Client.LockComment(ctx, comment.ID); err != nil {
		logger.Error("locking source post notice", "err", err, "comment", comment.ID, "post", postID)
	}
}

// postHasPinnedComment scans direct replies only (depth 1).
func (e *Engine) postHasPinnedComment(ctx context.Context, postID string) (bool, error) {
	comments, err := e.Client.TopLevelComments(ctx, postID)
	if err != nil {
		return false, err
	}
	for _, c := range comments {
		if c.Pinned {
			return true, nil
		}
	}
	return false, nil
}

// maybeClearCache handles the operator cache-clear directive. The directive
// names a single (community, postId) pair and is single-use: a marker guards
// against re-clearing on every subsequent event until the operator resets it
// by blanking the directive's target.
func (e *Engine) maybeClearCache(ctx context.Context, logger *slog.Logger, community, postID string) {
	directive := settings.GetString(ctx, e.Settings, SettingClearCache, "")
	if directive == "" {
		return
	}
	if !strings.Contains(directive, ":") {
		// a directive without a target resets the single-use marker
		if err := e.Cache.Purge(ctx, clearedMarkerName, clearedMarkerKey); err != nil {
			logger.Error("resetting cache-clear marker", "err", err)
		}
		return
	}

	parts := strings.SplitN(directive, ":", 2)
	clearCommunity := NormalizeCommunity(parts[0])
	clearPostID := strings.TrimSpace(parts[1])
	if strings.HasPrefix(postID, "t3_") && !strings.HasPrefix(clearPostID, "t3_") {
		clearPostID = "t3_" + clearPostID
	}
	if clearCommunity != NormalizeCommunity(community) || clearPostID != postID {
		return
	}

	done, err := e.Cache.Get(ctx, clearedMarkerName, clearedMarkerKey)
	if err != nil {
		logger.Error("reading cache-clear marker", "err", err)
		return
	}
	if done != "" {
		return
	}
	if err := e.Seen.Clear(ctx, postID); err != nil {
		logger.Error("clearing seen record", "err", err, "post", postID)
		return
	}
	if err := e.Cache.Set(ctx, clearedMarkerName, clearedMarkerKey, "true"); err != nil {
		logger.Error("writing cache-clear marker", "err", err)
	}
	logger.Info("cleared seen record by operator directive", "community", clearCommunity, "post", clearPostID)
}

func sourceLinkText(sourceURL string) string {
	return "[To see the source post, click the crosspost above or this link](" + sourceURL + ")"
}

func sourceNoticeText(feedCommunity string) string {
	return "This post was highlighted by mods and automatically crossposted to r/" + feedCommunity +
		". Check it out to see a feed of highlighted posts!"
}
