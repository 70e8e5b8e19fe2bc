package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Status is a post's position in the lifecycle.
type Status string

// Lifecycle statuses. A session starts Uninitialized; Generate moves it
// to Generated; SaveDraft, Schedule, and Publish move it forward from
// there. Published and Scheduled are terminal until the next Generate,
// which discards the session post entirely.
const (
	Uninitialized Status = "uninitialized"
	Generated     Status = "generated"
	Draft         Status = "draft"
	Scheduled     Status = "scheduled"
	Published     Status = "published"
)

// Post is the single in-progress content item of a session.
type Post struct {
	ID             int64
	Content        string
	Hashtags       []string
	Topic          string
	PostType       string
	CharacterCount int
	Engagement     Engagement
	Status         Status
	ScheduledTime  time.Time
	PublishedURL   string
}

// Controller owns the session post and its state machine. All mutating
// operations serialize on an internal mutex; two calls never interleave
// their effects on the post.
type Controller struct {
	client    *Client
	conn      *ConnectionManager
	validator *SchedulingValidator

	mu         sync.Mutex
	post       *Post
	editing    bool
	editBuffer string
}

// NewController wires a controller over the API client and connection
// manager. A nil validator gets a default one using the local time zone.
func NewController(client *Client, conn *ConnectionManager, validator *SchedulingValidator) *Controller {
	if validator == nil {
		validator = &SchedulingValidator{}
	}
	return &Controller{client: client, conn: conn, validator: validator}
}

// Post returns a snapshot of the session post, or a zero Post with
// status Uninitialized when nothing has been generated yet.
func (ctl *Controller) Post() Post {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.post == nil {
		return Post{Status: Uninitialized}
	}
	snapshot := *ctl.post
	snapshot.Hashtags = append([]string(nil), ctl.post.Hashtags...)
	return snapshot
}

// Generate creates a fresh post for the topic, replacing any prior
// session post. An empty or whitespace topic is rejected locally without
// a network call. On failure the prior post is left untouched.
func (ctl *Controller) Generate(ctx context.Context, req GenerateRequest) (Post, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return Post{}, &ValidationError{Field: "topic", Reason: "empty"}
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	resp, err := ctl.client.Generate(ctx, req)
	if err != nil {
		return Post{}, err
	}
	ctl.post = &Post{
		ID:             resp.PostID,
		Content:        resp.Content,
		Hashtags:       resp.Hashtags,
		Topic:          resp.Topic,
		PostType:       resp.PostType,
		CharacterCount: resp.CharacterCount,
		Engagement:     resp.Engagement,
		Status:         Generated,
	}
	ctl.editing = false
	ctl.editBuffer = ""
	return *ctl.post, nil
}

// BeginEdit snapshots the post content into an editable buffer. The post
// itself is untouched until SaveDraft, Publish, or Schedule commits the
// buffer.
func (ctl *Controller) BeginEdit() (string, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.post == nil {
		return "", &StateError{Op: "edit", Status: Uninitialized}
	}
	ctl.editing = true
	ctl.editBuffer = ctl.post.Content
	return ctl.editBuffer, nil
}

// SetEditBuffer replaces the editable buffer while editing.
func (ctl *Controller) SetEditBuffer(content string) error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if !ctl.editing {
		return errors.New("workflow: not editing")
	}
	ctl.editBuffer = content
	return nil
}

// CancelEdit drops the editable buffer without applying it.
func (ctl *Controller) CancelEdit() {
	ctl.mu.Lock()
	ctl.editing = false
	ctl.editBuffer = ""
	ctl.mu.Unlock()
}

// displayed returns the content the user currently sees: the edit buffer
// while editing, the canonical content otherwise. Caller holds the lock.
func (ctl *Controller) displayed() string {
	if ctl.editing {
		return ctl.editBuffer
	}
	return ctl.post.Content
}

// Improve rewrites the displayed content through the improvement engine.
// Blank content is rejected locally. The response overwrites the
// displayed content and refreshes hashtags and engagement
// unconditionally; the previous text is not kept. An empty custom
// request is passed through to the engine as-is.
func (ctl *Controller) Improve(ctx context.Context, suggestionType, targetTone, customRequest string) (string, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.post == nil {
		return "", &StateError{Op: "improve", Status: Uninitialized}
	}
	current := ctl.displayed()
	if strings.TrimSpace(current) == "" {
		return "", &ValidationError{Field: "content", Reason: "empty"}
	}

	resp, err := ctl.client.Improve(ctx, ImproveRequest{
		CurrentContent:  current,
		SuggestionType:  suggestionType,
		TargetTone:      targetTone,
		SpecificRequest: customRequest,
	})
	if err != nil {
		return "", err
	}

	if ctl.editing {
		ctl.editBuffer = resp.Content
	} else {
		ctl.post.Content = resp.Content
	}
	ctl.post.Hashtags = resp.Hashtags
	ctl.post.Engagement = resp.Engagement
	ctl.post.CharacterCount = resp.CharacterCount
	return resp.Content, nil
}

// SaveDraft persists the displayed content as a draft. A pending edit
// buffer is committed to the post on success.
func (ctl *Controller) SaveDraft(ctx context.Context) error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.post == nil {
		return &StateError{Op: "save", Status: Uninitialized}
	}
	content := ctl.displayed()

	postID, err := ctl.client.SaveDraft(ctx, content, ctl.post.Hashtags, ctl.post.Topic)
	if err != nil {
		return err
	}
	ctl.post.ID = postID
	ctl.post.Content = content
	ctl.post.Status = Draft
	ctl.editing = false
	ctl.editBuffer = ""
	return nil
}

// Publish sends the displayed content to LinkedIn. It requires an active
// connection and a post in Generated or Draft; a 200 response carrying
// success=false is a ServiceError and leaves the status unchanged.
func (ctl *Controller) Publish(ctx context.Context) (string, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.post == nil {
		return "", &StateError{Op: "publish", Status: Uninitialized}
	}
	if ctl.post.Status != Generated && ctl.post.Status != Draft {
		return "", &StateError{Op: "publish", Status: ctl.post.Status}
	}
	if !ctl.conn.Connected() {
		return "", &NotConnectedError{}
	}

	content := ctl.displayed()
	outcome, err := ctl.client.Publish(ctx, ctl.post.ID, content)
	if err != nil {
		return "", err
	}
	if !outcome.Success {
		return "", &ServiceError{Op: "publish", Message: outcome.Err}
	}

	ctl.post.Content = content
	ctl.post.Status = Published
	ctl.post.PublishedURL = outcome.PostURL
	ctl.editing = false
	ctl.editBuffer = ""
	return outcome.PostURL, nil
}

// Schedule validates a proposed local publish time and persists it. The
// post moves to Scheduled on success.
func (ctl *Controller) Schedule(ctx context.Context, candidate string) (time.Time, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.post == nil {
		return time.Time{}, &StateError{Op: "schedule", Status: Uninitialized}
	}
	if ctl.post.Status != Generated && ctl.post.Status != Draft {
		return time.Time{}, &StateError{Op: "schedule", Status: ctl.post.Status}
	}

	at, err := ctl.validator.Validate(candidate)
	if err != nil {
		return time.Time{}, err
	}
	if err := ctl.client.SchedulePost(ctx, ctl.post.ID, at); err != nil {
		return time.Time{}, err
	}
	ctl.post.Status = Scheduled
	ctl.post.ScheduledTime = at
	return at, nil
}
