// Package feedclient abstracts the social-platform operations the engine
// performs: republishing a post into the aggregation feed and the auxiliary
// flair/comment/lock actions around it.
package feedclient

import (
	"context"
)

type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Community string `json:"community"`
	NSFW      bool   `json:"nsfw"`
	Spoiler   bool   `json:"spoiler"`
}

type Comment struct {
	ID     string `json:"id"`
	PostID string `json:"postId"`
	Body   string `json:"body"`
	Pinned bool   `json:"pinned"`
	Author string `json:"author"`
}

type Moderator struct {
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
}

type CrosspostRequest struct {
	Title        string `json:"title"`
	Community    string `json:"community"`
	SourcePostID string `json:"sourcePostId"`
	NSFW         bool   `json:"nsfw"`
	Spoiler      bool   `json:"spoiler"`
	SendReplies  bool   `json:"sendReplies"`
}

type Client interface {
	// Crosspost republishes the source post into the named community.
	Crosspost(ctx context.Context, req CrosspostRequest) (*Post, error)
	// SetPostFlair applies a flair template to a post.
	SetPostFlair(ctx context.Context, community, postID, flairTemplateID string) error
	// SubmitComment posts a reply under the given post or comment id.
	SubmitComment(ctx context.Context, parentID, text string) (*Comment, error)
	// DistinguishComment marks a comment as an official mod comment,
	// optionally pinning it to the top.
	DistinguishComment(ctx context.Context, commentID string, pin bool) error
	LockPost(ctx context.Context, postID string) error
	LockComment(ctx context.Context, commentID string) error
	// TopLevelComments lists direct replies on a post (depth 1, no reply
	// trees). Used to detect an existing pinned comment.
	TopLevelComments(ctx context.Context, postID string) ([]Comment, error)
	// Moderators lists the mod team of a community with their permissions.
	Moderators(ctx context.Context, community string) ([]Moderator, error)
}
