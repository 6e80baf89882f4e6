package feedclient

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client which records calls, for tests. Error
// fields, when set, are returned by the corresponding method.
type MockClient struct {
	mu sync.Mutex

	Crossposts     []CrosspostRequest
	FlairCalls     []string
	Comments       []Comment
	Distinguished  map[string]bool
	LockedPosts    []string
	LockedComments []string

	// canned responses
	TopLevel map[string][]Comment
	ModTeams map[string][]Moderator

	CrosspostErr   error
	FlairErr       error
	CommentErr     error
	DistinguishErr error
	LockErr        error

	nextID int
}

var _ Client = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{
		Distinguished: make(map[string]bool),
		TopLevel:      make(map[string][]Comment),
		ModTeams:      make(map[string][]Moderator),
	}
}

func (m *MockClient) Crosspost(ctx context.Context, req CrosspostRequest) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CrosspostErr != nil {
		return nil, m.CrosspostErr
	}
	m.Crossposts = append(m.Crossposts, req)
	m.nextID++
	return &Post{
		ID:        fmt.Sprintf("t3_cross%d", m.nextID),
		Title:     req.Title,
		Community: req.Community,
		NSFW:      req.NSFW,
		Spoiler:   req.Spoiler,
	}, nil
}

func (m *MockClient) SetPostFlair(ctx context.Context, community, postID, flairTemplateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FlairErr != nil {
		return m.FlairErr
	}
	m.FlairCalls = append(m.FlairCalls, community+"/"+postID+"/"+flairTemplateID)
	return nil
}

func (m *MockClient) SubmitComment(ctx context.Context, parentID, text string) (*Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommentErr != nil {
		return nil, m.CommentErr
	}
	m.nextID++
	c := Comment{
		ID:     fmt.Sprintf("t1_mock%d", m.nextID),
		PostID: parentID,
		Body:   text,
	}
	m.Comments = append(m.Comments, c)
	return &c, nil
}

func (m *MockClient) DistinguishComment(ctx context.Context, commentID string, pin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DistinguishErr != nil {
		return m.DistinguishErr
	}
	m.Distinguished[commentID] = pin
	return nil
}

func (m *MockClient) LockPost(ctx context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LockErr != nil {
		return m.LockErr
	}
	m.LockedPosts = append(m.LockedPosts, postID)
	return nil
}

func (m *MockClient) LockComment(ctx context.Context, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LockErr != nil {
		return m.LockErr
	}
	m.LockedComments = append(m.LockedComments, commentID)
	return nil
}

func (m *MockClient) TopLevelComments(ctx context.Context, postID string) ([]Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TopLevel[postID], nil
}

func (m *MockClient) Moderators(ctx context.Context, community string) ([]Moderator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ModTeams[community], nil
}
