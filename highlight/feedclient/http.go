package feedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// HTTPClient talks to the platform's moderation REST API. Requests are
// retried on transient failures and rate-limited client-side so a burst of
// highlight events cannot trip the platform's own limits.
type HTTPClient struct {
	Host      string
	AuthToken string
	Client    *http.Client
	Limiter   *rate.Limiter
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(host, authToken string, reqPerSec int) *HTTPClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil
	client := retryClient.StandardClient()
	client.Timeout = 20 * time.Second

	if reqPerSec <= 0 {
		reqPerSec = 10
	}
	return &HTTPClient{
		Host:      host,
		AuthToken: authToken,
		Client:    client,
		Limiter:   rate.NewLimiter(rate.Limit(reqPerSec), 1),
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Host+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("feed API request failed: %s %s: HTTP %d: %s", method, path, resp.StatusCode, string(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) Crosspost(ctx context.Context, req CrosspostRequest) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, "/api/v1/crosspost", &req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *HTTPClient) SetPostFlair(ctx context.Context, community, postID, flairTemplateID string) error {
	body := map[string]string{
		"community":       community,
		"postId":          postID,
		"flairTemplateId": flairTemplateID,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/flair", body, nil)
}

func (c *HTTPClient) SubmitComment(ctx context.Context, parentID, text string) (*Comment, error) {
	body := map[string]string{
		"parentId": parentID,
		"text":     text,
	}
	var comment Comment
	if err := c.do(ctx, http.MethodPost, "/api/v1/comments", body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *HTTPClient) DistinguishComment(ctx context.Context, commentID string, pin bool) error {
	body := map[string]any{
		"commentId": commentID,
		"pin":       pin,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/comments/distinguish", body, nil)
}

func (c *HTTPClient) LockPost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/posts/"+postID+"/lock", nil, nil)
}

func (c *HTTPClient) LockComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/comments/"+commentID+"/lock", nil, nil)
}

func (c *HTTPClient) TopLevelComments(ctx context.Context, postID string) ([]Comment, error) {
	var out struct {
		Comments []Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/posts/"+postID+"/comments?depth=1", nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

func (c *HTTPClient) Moderators(ctx context.Context, community string) ([]Moderator, error) {
	var out struct {
		Moderators []Moderator `json:"moderators"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/communities/"+community+"/moderators", nil, &out); err != nil {
		return nil, err
	}
	return out.Moderators, nil
}
