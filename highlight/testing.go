package highlight

import (
	"log/slog"
	"time"

	"github.com/ParadoxMajor/highlight-feeder/highlight/cachestore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/countstore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/feedclient"
	"github.com/ParadoxMajor/highlight-feeder/highlight/seenstore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/settings"
)

// EngineTestFixture returns an engine on in-memory stores and a recording
// mock client, for tests.
func EngineTestFixture() (*Engine, *feedclient.MockClient, *settings.MemStore) {
	client := feedclient.NewMockClient()
	cfg := settings.NewMemStore()
	engine := &Engine{
		Logger:        slog.Default(),
		Settings:      cfg,
		Seen:          seenstore.NewMemSeenStore(),
		Counters:      countstore.NewMemCountStore(),
		Cache:         cachestore.NewMemCacheStore(100, time.Hour),
		Client:        client,
		FeedCommunity: "highlights",
	}
	return engine, client, cfg
}

// StickEvent builds a plain stick event for the given post, for tests.
func StickEvent(community, postID, title string) *ModerationEvent {
	return &ModerationEvent{
		Action:          "sticky",
		SourceCommunity: community,
		TargetPost: &PostSnapshot{
			ID:       postID,
			Title:    title,
			URL:      "https://example.com/r/" + community + "/" + postID,
			Author:   "someone",
			PostType: "link",
		},
	}
}
