package highlight

import (
	"context"
	"errors"
	"testing"

	"github.com/ParadoxMajor/highlight-feeder/highlight/feedclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineStickEndToEnd(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()

	evt := StickEvent("pics", "t3_abc", "a very good photo")
	require.NoError(engine.ProcessModAction(ctx, evt))

	require.Len(client.Crossposts, 1)
	cross := client.Crossposts[0]
	assert.Equal("Highlighted post from r/pics", cross.Title)
	assert.Equal("highlights", cross.Community)
	assert.Equal("t3_abc", cross.SourcePostID)
	assert.False(cross.SendReplies)

	// explanatory comment posted on the crosspost, pinned, and the crosspost
	// locked
	require.Len(client.Comments, 1)
	assert.Contains(client.Comments[0].Body, evt.TargetPost.URL)
	assert.True(client.Distinguished[client.Comments[0].ID])
	assert.Len(client.LockedPosts, 1)

	seen, err := engine.Seen.Seen(ctx, "t3_abc")
	require.NoError(err)
	assert.True(seen)
}

func TestEngineNSFWSourceTag(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()

	evt := StickEvent("gonewrong", "t3_abc", "x")
	evt.SourceIsNSFW = true
	evt.TargetPost.NSFW = true
	require.NoError(engine.ProcessModAction(ctx, evt))

	require.Len(client.Crossposts, 1)
	assert.Equal("Highlighted post from [NSFW] r/gonewrong", client.Crossposts[0].Title)
	assert.True(client.Crossposts[0].NSFW)
}

func TestEngineStickIdempotent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()

	evt := StickEvent("pics", "t3_abc", "x")
	require.NoError(engine.ProcessModAction(ctx, evt))
	require.NoError(engine.ProcessModAction(ctx, evt))
	require.NoError(engine.ProcessModAction(ctx, evt))

	assert.Len(client.Crossposts, 1)
}

func TestEngineUnstickSuppressesRestick(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()

	unstick := StickEvent("pics", "t3_abc", "x")
	unstick.Action = "unsticky"
	require.NoError(engine.ProcessModAction(ctx, unstick))

	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	assert.Empty(client.Crossposts)
}

func TestEngineDisabled(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingEnabled, "false")

	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	assert.Empty(client.Crossposts)

	// a disabled run leaves no seen record behind
	seen, err := engine.Seen.Seen(ctx, "t3_abc")
	require.NoError(err)
	assert.False(seen)
}

func TestEngineIgnoresOwnFeed(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()

	require.NoError(engine.ProcessModAction(ctx, StickEvent("highlights", "t3_abc", "x")))
	require.NoError(engine.ProcessModAction(ctx, StickEvent("r/Highlights", "t3_def", "x")))
	assert.Empty(client.Crossposts)
}

func TestEngineIgnoresIrrelevantAndEmpty(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()

	evt := StickEvent("pics", "t3_abc", "x")
	evt.Action = "banuser"
	require.NoError(engine.ProcessModAction(ctx, evt))

	evt = StickEvent("pics", "", "x")
	require.NoError(engine.ProcessModAction(ctx, evt))

	require.NoError(engine.ProcessModAction(ctx, &ModerationEvent{Action: "sticky", SourceCommunity: "pics"}))
	assert.Empty(client.Crossposts)
}

func TestEngineCrosspostFailure(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, _ := EngineTestFixture()
	client.CrosspostErr = errors.New("feed service unavailable")

	err := engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x"))
	assert.Error(err)

	// the post stays claimed, so a later retry of the same event is a no-op
	seen, err := engine.Seen.Seen(ctx, "t3_abc")
	require.NoError(err)
	assert.True(seen)

	client.CrosspostErr = nil
	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	assert.Empty(client.Crossposts)
}

func TestEngineBestEffortStepsIsolated(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingCategoryFlair, "flair-template-1")
	client.FlairErr = errors.New("no such flair")
	client.CommentErr = errors.New("comment queue full")

	// flair and comment failures do not fail the event or skip the lock
	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	assert.Len(client.Crossposts, 1)
	assert.Empty(client.Comments)
	assert.Len(client.LockedPosts, 1)
}

func TestEngineCategoryFlair(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingCategoryFlair, "flair-template-1")

	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	require.Len(client.FlairCalls, 1)
	assert.Contains(client.FlairCalls[0], "flair-template-1")
}

func TestEngineSourceNotice(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingSourceNotice, "true")
	cfgStore.Set(SettingPinSourceNotice, "true")

	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))

	// one comment on the crosspost, one notice on the source post
	require.Len(client.Comments, 2)
	notice := client.Comments[1]
	assert.Equal("t3_abc", notice.PostID)
	assert.Contains(notice.Body, "r/highlights")
	assert.True(client.Distinguished[notice.ID])
	assert.Contains(client.LockedComments, notice.ID)
}

func TestEngineSourceNoticePinSkippedWhenPinnedCommentExists(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()
	cfgStore.Set(SettingSourceNotice, "true")
	cfgStore.Set(SettingPinSourceNotice, "true")
	client.TopLevel["t3_abc"] = []feedclient.Comment{{ID: "t1_existing", PostID: "t3_abc", Pinned: true}}

	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))

	require.Len(client.Comments, 2)
	notice := client.Comments[1]
	// still distinguished, but not pinned over the existing sticky comment
	pinned, ok := client.Distinguished[notice.ID]
	assert.True(ok)
	assert.False(pinned)
}

func TestEngineCacheClearDirective(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()

	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	require.Len(client.Crossposts, 1)

	// without the directive the replay is suppressed by the seen record
	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	require.Len(client.Crossposts, 1)

	// the directive clears the record once, so the next event republishes
	cfgStore.Set(SettingClearCache, "pics:abc")
	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	require.Len(client.Crossposts, 2)

	// single-use: the marker stops a second clear of the same target
	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	assert.Len(client.Crossposts, 2)
}

func TestEngineCacheClearDirectiveWrongTarget(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	engine, client, cfgStore := EngineTestFixture()

	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	require.Len(client.Crossposts, 1)

	cfgStore.Set(SettingClearCache, "funny:abc")
	require.NoError(engine.ProcessModAction(ctx, StickEvent("pics", "t3_abc", "x")))
	assert.Len(client.Crossposts, 1)
}
