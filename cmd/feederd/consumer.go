package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/ParadoxMajor/highlight-feeder/highlight"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gorilla/websocket"
)

// modActionPayload is the raw mod-action message shape, shared by the
// websocket stream and the webhook intake. Normalization into the canonical
// event happens here, at the boundary.
type modActionPayload struct {
	Seq           int64        `json:"seq,omitempty"`
	Action        string       `json:"action"`
	Community     string       `json:"subreddit"`
	CommunityNSFW bool         `json:"subredditNsfw,omitempty"`
	Moderator     string       `json:"moderator,omitempty"`
	Post          *postPayload `json:"targetPost,omitempty"`
}

type postPayload struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
	URL      string `json:"url,omitempty"`
	Author   string `json:"author,omitempty"`
	PostType string `json:"postType,omitempty"`
	NSFW     bool   `json:"nsfw,omitempty"`
	Spoiler  bool   `json:"spoiler,omitempty"`
}

func (p *modActionPayload) event() *highlight.ModerationEvent {
	evt := &highlight.ModerationEvent{
		Action:          p.Action,
		SourceCommunity: highlight.NormalizeCommunity(p.Community),
		SourceIsNSFW:    p.CommunityNSFW,
	}
	if p.Post != nil {
		evt.TargetPost = &highlight.PostSnapshot{
			ID:       p.Post.ID,
			Title:    p.Post.Title,
			Body:     p.Post.Body,
			URL:      p.Post.URL,
			Author:   p.Post.Author,
			PostType: p.Post.PostType,
			NSFW:     p.Post.NSFW,
			Spoiler:  p.Post.Spoiler,
		}
	}
	return evt
}

func (s *Server) RunConsumer(ctx context.Context) error {

	cur, err := s.ReadLastCursor(ctx)
	if err != nil {
		return err
	}

	dialer := websocket.DefaultDialer
	u, err := url.Parse(s.streamHost)
	if err != nil {
		return fmt.Errorf("invalid stream host URI: %w", err)
	}
	u.Path = "api/v1/modlog/stream"
	if cur != 0 {
		u.RawQuery = fmt.Sprintf("cursor=%d", cur)
	}
	s.logger.Info("subscribing to mod-action event stream", "upstream", s.streamHost, "cursor", cur)
	con, _, err := dialer.Dial(u.String(), http.Header{
		"User-Agent": []string{fmt.Sprintf("feederd/%s", versioninfo.Short())},
	})
	if err != nil {
		return fmt.Errorf("subscribing to mod-action stream failed (dialing): %w", err)
	}
	defer func() { _ = con.Close() }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var payload modActionPayload
		if err := con.ReadJSON(&payload); err != nil {
			return fmt.Errorf("reading from mod-action stream: %w", err)
		}
		eventsReceived.Inc()
		if payload.Seq > 0 {
			atomic.StoreInt64(&s.lastSeq, payload.Seq)
			currentSeq.Set(float64(payload.Seq))
		}
		if err := s.engine.ProcessModAction(ctx, payload.event()); err != nil {
			// engine errors are per-event; log and keep consuming
			eventsFailed.Inc()
			s.logger.Error("processing mod action failed", "err", err, "action", payload.Action, "community", payload.Community, "seq", payload.Seq)
		}
	}
}
