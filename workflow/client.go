// Package workflow is the client-side controller for the postpilot API:
// the post lifecycle state machine, the OAuth connection manager with its
// exactly-once callback handling, scheduling validation, and the topic
// suggestion cache. The postpilot CLI drives a session through it; any
// other Go client can embed it the same way.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the postpilot REST API with bearer-token auth. Transport
// failures come back as *TransportError, HTTP-level rejections as
// *ServiceError.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a Client for the API at baseURL. Token may be set
// later, after login.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode >= 400 {
		return &ServiceError{Op: method + " " + path, Status: resp.StatusCode, Message: errorDetail(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &ServiceError{Op: method + " " + path, Status: resp.StatusCode,
				Message: fmt.Sprintf("undecodable response: %v", err)}
		}
	}
	return nil
}

func errorDetail(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return string(data)
}

// Login authenticates and stores the bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/users/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.Token = resp.AccessToken
	return nil
}

// Engagement mirrors the server's engagement prediction.
type Engagement struct {
	PredictedLikes    int `json:"predicted_likes"`
	PredictedComments int `json:"predicted_comments"`
	PredictedShares   int `json:"predicted_shares"`
	EngagementScore   int `json:"engagement_score"`
}

// GeneratedContent is the server response for generate and improve calls.
type GeneratedContent struct {
	PostID         int64      `json:"post_id"`
	Content        string     `json:"content"`
	Hashtags       []string   `json:"hashtags"`
	Mentions       []string   `json:"mentions"`
	Topic          string     `json:"topic"`
	PostType       string     `json:"post_type"`
	AIModel        string     `json:"ai_model"`
	CharacterCount int        `json:"character_count"`
	Engagement     Engagement `json:"estimated_engagement"`
	Warnings       []string   `json:"warnings"`
}

// GenerateRequest describes a post to generate.
type GenerateRequest struct {
	Topic    string `json:"topic"`
	PostType string `json:"post_type"`
	Length   string `json:"length"`
	Tone     string `json:"tone"`
	Audience string `json:"audience"`
}

// Generate asks the server for a fresh post.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GeneratedContent, error) {
	var resp GeneratedContent
	err := c.do(ctx, http.MethodPost, "/api/content/generate", req, &resp)
	return resp, err
}

// Suggestion types accepted by the improve endpoint.
const (
	ImproveEngagement = "improve"
	ImproveShorten    = "shorten"
	ImproveExpand     = "expand"
	ImproveToneChange = "tone_change"
	ImproveCustom     = "custom"
)

// ImproveRequest describes a rewrite of existing content.
type ImproveRequest struct {
	CurrentContent  string `json:"current_content"`
	SuggestionType  string `json:"suggestion_type"`
	TargetTone      string `json:"target_tone,omitempty"`
	SpecificRequest string `json:"specific_request,omitempty"`
}

// Improve asks the server to rewrite content per the suggestion type.
func (c *Client) Improve(ctx context.Context, req ImproveRequest) (GeneratedContent, error) {
	var resp GeneratedContent
	err := c.do(ctx, http.MethodPost, "/api/content/improve", req, &resp)
	return resp, err
}

// SaveDraft persists content as a draft and returns the stored post id.
func (c *Client) SaveDraft(ctx context.Context, content string, hashtags []string, topic string) (int64, error) {
	var resp struct {
		PostID int64 `json:"post_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/content/save-draft", map[string]interface{}{
		"content":  content,
		"hashtags": hashtags,
		"topic":    topic,
	}, &resp)
	return resp.PostID, err
}

// SchedulePost stores a UTC publish time for a post.
func (c *Client) SchedulePost(ctx context.Context, postID int64, scheduledTime time.Time) error {
	return c.do(ctx, http.MethodPost, "/api/content/schedule-post", map[string]interface{}{
		"post_id":        postID,
		"scheduled_time": scheduledTime.UTC().Format(time.RFC3339),
	}, nil)
}

// Suggestions fetches topic suggestions for an industry.
func (c *Client) Suggestions(ctx context.Context, industry string) ([]string, error) {
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	err := c.do(ctx, http.MethodGet, "/api/content/suggestions/"+industry, nil, &resp)
	return resp.Suggestions, err
}

// ConnectInfo is the response to a connect request: where to send the
// user, plus the state nonce the exchange should echo back.
type ConnectInfo struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// Connect requests a LinkedIn authorization URL.
func (c *Client) Connect(ctx context.Context) (ConnectInfo, error) {
	var resp ConnectInfo
	err := c.do(ctx, http.MethodGet, "/api/linkedin/connect", nil, &resp)
	return resp, err
}

// ExchangeToken trades an authorization code for a stored connection.
// The returned bool is the server's structural success flag.
func (c *Client) ExchangeToken(ctx context.Context, code, state string) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	err := c.do(ctx, http.MethodPost, "/api/linkedin/exchange-token", map[string]string{
		"code":  code,
		"state": state,
	}, &resp)
	return resp.Success, err
}

// ConnectionStatus reports whether the account is linked to LinkedIn.
func (c *Client) ConnectionStatus(ctx context.Context) (bool, error) {
	var resp struct {
		Connected bool `json:"connected"`
	}
	err := c.do(ctx, http.MethodGet, "/api/linkedin/status", nil, &resp)
	return resp.Connected, err
}

// Disconnect unlinks the LinkedIn account.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/linkedin/disconnect", nil, nil)
}

// PublishOutcome is the structural result of a publish call. Success is
// authoritative even on HTTP 200; a false value means the upstream
// publish failed.
type PublishOutcome struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id"`
	PostURL string `json:"post_url"`
	Err     string `json:"error"`
}

// Publish sends content to LinkedIn through the server.
func (c *Client) Publish(ctx context.Context, postID int64, content string) (PublishOutcome, error) {
	var resp PublishOutcome
	err := c.do(ctx, http.MethodPost, "/api/linkedin/publish", map[string]interface{}{
		"post_id": postID,
		"content": content,
	}, &resp)
	return resp, err
}
