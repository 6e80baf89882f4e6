// Package seenstore records which source posts have already been handled,
// with a TTL, so duplicate and reordered mod-action notifications do not
// trigger a second republish.
package seenstore

import (
	"context"
	"time"
)

type SeenStore interface {
	// Seen reports whether an unexpired record exists for the post.
	Seen(ctx context.Context, postID string) (bool, error)
	// MarkSeen upserts a record unconditionally. Re-marking an already-seen
	// post is not an error.
	MarkSeen(ctx context.Context, postID string, ttl time.Duration) error
	// MarkSeenOnce writes a record only if none exists, atomically. Returns
	// true when this call created the record.
	MarkSeenOnce(ctx context.Context, postID string, ttl time.Duration) (bool, error)
	// Clear removes a record. Used only by the operator cache-clear path.
	Clear(ctx context.Context, postID string) error
}
