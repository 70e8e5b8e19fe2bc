package postpilot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/postpilot/engine"
	"github.com/eringen/postpilot/linkedin"
)

type stubEngine struct {
	generateErr error
	rewrite     string
	rewriteErr  error
	suggestErr  error
}

func (e *stubEngine) GeneratePost(_ context.Context, profile engine.Profile, params engine.GenerateParams) (engine.Result, error) {
	if e.generateErr != nil {
		return engine.Result{}, e.generateErr
	}
	content := "Generated thoughts on " + params.Topic + ". What do you think? #golang #dev #ai"
	return engine.Result{
		Content:    content,
		Hashtags:   engine.ExtractHashtags(content),
		Mentions:   engine.ExtractMentions(content),
		Engagement: engine.PredictEngagement(content, profile.Industry, params.Tone, params.Audience),
		Model:      "stub-model",
	}, nil
}

func (e *stubEngine) Rewrite(context.Context, string) (string, error) {
	if e.rewriteErr != nil {
		return "", e.rewriteErr
	}
	if e.rewrite != "" {
		return e.rewrite, nil
	}
	return "Improved content with punch. #golang", nil
}

func (e *stubEngine) SuggestTopics(_ context.Context, industry string) ([]string, error) {
	if e.suggestErr != nil {
		return nil, e.suggestErr
	}
	return []string{"Topic one for " + industry, "Topic two"}, nil
}

type stubPublisher struct {
	publishResult linkedin.PublishResult
	publishErr    error
	exchangeErr   error
	published     []string
}

func (p *stubPublisher) AuthorizationURL(state string) string {
	return "https://www.linkedin.com/oauth/v2/authorization?state=" + state
}

func (p *stubPublisher) ExchangeCode(context.Context, string) (linkedin.Token, error) {
	if p.exchangeErr != nil {
		return linkedin.Token{}, p.exchangeErr
	}
	return linkedin.Token{AccessToken: "upstream-token", ExpiresIn: 3600}, nil
}

func (p *stubPublisher) GetProfile(context.Context, string) (linkedin.Profile, error) {
	return linkedin.Profile{Sub: "li-abc", Name: "Dana Q", Email: "dana@example.com", Headline: "Engineer"}, nil
}

func (p *stubPublisher) Publish(_ context.Context, _, _, content string) (linkedin.PublishResult, error) {
	if p.publishErr != nil {
		return linkedin.PublishResult{}, p.publishErr
	}
	p.published = append(p.published, content)
	if p.publishResult.Success || p.publishResult.Err != "" {
		return p.publishResult, nil
	}
	return linkedin.PublishResult{Success: true, PostID: "urn:li:share:1", PostURL: "https://www.linkedin.com/feed/update/urn:li:share:1"}, nil
}

func newTestApp(t *testing.T) (*App, *stubEngine, *stubPublisher) {
	t.Helper()
	dir := t.TempDir()
	eng := &stubEngine{}
	pub := &stubPublisher{}
	app := New(Config{
		DatabasePath:          filepath.Join(dir, "test.db"),
		JWTSecret:             "test-jwt-secret",
		SessionSecret:         "test-session-secret",
		AnalyticsEnabled:      true,
		AnalyticsDatabasePath: filepath.Join(dir, "analytics.db"),
	}, WithEngine(eng), WithPublisher(pub))
	if err := app.init(); err != nil {
		t.Fatalf("app init failed: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app, eng, pub
}

func doJSON(t *testing.T, app *App, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func registerTestUser(t *testing.T, app *App) (string, User) {
	t.Helper()
	rec := doJSON(t, app, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Dana", "email": "dana@example.com", "password": "hunter2!",
		"industry": "Technology",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, rec, &resp)
	user, err := app.Store.GetUserByEmail("dana@example.com")
	if err != nil {
		t.Fatalf("registered user not stored: %v", err)
	}
	return resp.AccessToken, user
}

func TestRegisterLoginMe(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed: %d %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Email string `json:"email"`
	}
	decodeBody(t, rec, &me)
	if me.Email != "dana@example.com" {
		t.Fatalf("unexpected profile: %s", rec.Body.String())
	}

	rec = doJSON(t, app, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "dana@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
	rec = doJSON(t, app, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "Dana@Example.com ", "password": "hunter2!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _, _ := newTestApp(t)
	registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Other", "email": "dana@example.com", "password": "pw",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	app, _, _ := newTestApp(t)
	for _, path := range []string{"/api/users/me", "/api/content/drafts", "/api/linkedin/status"} {
		rec := doJSON(t, app, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, rec.Code)
		}
	}
}

func TestGenerateRequiresTopic(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/content/generate", token, map[string]string{"topic": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank topic, got %d", rec.Code)
	}
}

func TestGeneratePersistsPost(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, user := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/content/generate", token, map[string]string{"topic": "code review"})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		PostID     int64 `json:"post_id"`
		Engagement struct {
			EngagementScore int `json:"engagement_score"`
		} `json:"estimated_engagement"`
		CharacterCount int `json:"character_count"`
	}
	decodeBody(t, rec, &resp)
	if resp.PostID == 0 || resp.CharacterCount == 0 || resp.Engagement.EngagementScore == 0 {
		t.Fatalf("incomplete response: %s", rec.Body.String())
	}

	post, err := app.Store.GetPost(resp.PostID, user.ID)
	if err != nil {
		t.Fatalf("post not persisted: %v", err)
	}
	if post.Status != StatusGenerated || !strings.Contains(post.Content, "code review") {
		t.Fatalf("unexpected stored post: %+v", post)
	}
}

func TestGenerateEngineFailure(t *testing.T) {
	app, eng, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)
	eng.generateErr = errors.New("model unavailable")

	rec := doJSON(t, app, http.MethodPost, "/api/content/generate", token, map[string]string{"topic": "x"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on engine failure, got %d", rec.Code)
	}
}

func TestImproveUnknownSuggestionType(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/content/improve", token, map[string]string{
		"current_content": "text", "suggestion_type": "sparkle",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestImprovePersistsImprovedPost(t *testing.T) {
	app, eng, _ := newTestApp(t)
	token, user := registerTestUser(t, app)
	eng.rewrite = "A tighter version. #golang"

	rec := doJSON(t, app, http.MethodPost, "/api/content/improve", token, map[string]string{
		"current_content": "A long rambling version.", "suggestion_type": "shorten",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("improve failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		PostID  int64  `json:"post_id"`
		Content string `json:"content"`
	}
	decodeBody(t, rec, &resp)
	if resp.Content != "A tighter version. #golang" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	post, err := app.Store.GetPost(resp.PostID, user.ID)
	if err != nil {
		t.Fatalf("improved post not persisted: %v", err)
	}
	if post.Status != StatusImproved {
		t.Fatalf("expected status %q, got %q", StatusImproved, post.Status)
	}
}

func TestSaveDraftAndList(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/content/save-draft", token, map[string]interface{}{
		"content": "draft body", "hashtags": []string{"go"}, "topic": "drafting",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save-draft failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, app, http.MethodGet, "/api/content/drafts", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("drafts failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total  int `json:"total"`
		Drafts []struct {
			Content string `json:"content"`
		} `json:"drafts"`
	}
	decodeBody(t, rec, &resp)
	if resp.Total != 1 || len(resp.Drafts) != 1 || resp.Drafts[0].Content != "draft body" {
		t.Fatalf("unexpected drafts: %s", rec.Body.String())
	}
}

func TestSchedulePostNotOwned(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/content/schedule-post", token, map[string]interface{}{
		"post_id": 999, "scheduled_time": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestScheduleEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, user := registerTestUser(t, app)
	post, _ := app.Store.SavePost(Post{UserID: user.ID, Content: "x", Status: StatusDraft})

	at := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	rec := doJSON(t, app, http.MethodPost, "/api/content/schedule-post", token, map[string]interface{}{
		"post_id": post.ID, "scheduled_time": at.Format(time.RFC3339),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule failed: %d %s", rec.Code, rec.Body.String())
	}
	got, _ := app.Store.GetPost(post.ID, user.ID)
	if got.Status != StatusScheduled || got.ScheduledTime == nil || !got.ScheduledTime.Equal(at) {
		t.Fatalf("schedule not persisted: %+v", got)
	}
}

func TestSuggestionsFallbackOnEngineError(t *testing.T) {
	app, eng, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)
	eng.suggestErr = errors.New("model unavailable")

	rec := doJSON(t, app, http.MethodGet, "/api/content/suggestions/Marketing", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("suggestions failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Suggestions) != 5 {
		t.Fatalf("expected curated fallback list, got %v", resp.Suggestions)
	}
}

func TestExchangeTokenStoresConnection(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, user := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/linkedin/exchange-token", token, map[string]string{"code": "auth-code"})
	if rec.Code != http.StatusOK {
		t.Fatalf("exchange failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Success {
		t.Fatalf("expected success, got %s", rec.Body.String())
	}

	got, _ := app.Store.GetUser(user.ID)
	if !got.Connected || got.LinkedInID != "li-abc" || got.AccessToken != "upstream-token" {
		t.Fatalf("connection not stored: %+v", got)
	}
	if got.Name != "Dana Q" {
		t.Fatalf("profile not synced: %+v", got)
	}
}

func TestExchangeTokenRequiresCode(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/linkedin/exchange-token", token, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing code, got %d", rec.Code)
	}
}

func TestExchangeTokenUpstreamFailure(t *testing.T) {
	app, _, pub := newTestApp(t)
	token, _ := registerTestUser(t, app)
	pub.exchangeErr = errors.New("invalid code")

	rec := doJSON(t, app, http.MethodPost, "/api/linkedin/exchange-token", token, map[string]string{"code": "bad"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPublishNotConnected(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodPost, "/api/linkedin/publish", token, map[string]interface{}{"content": "hello"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when not connected, got %d", rec.Code)
	}
}

func connectTestUser(t *testing.T, app *App, userID int64) {
	t.Helper()
	expiry := time.Now().Add(time.Hour)
	if err := app.Store.SetConnection(userID, "li-abc", "tok", &expiry, true); err != nil {
		t.Fatalf("SetConnection failed: %v", err)
	}
}

func TestPublishMarksPostPublished(t *testing.T) {
	app, _, pub := newTestApp(t)
	token, user := registerTestUser(t, app)
	connectTestUser(t, app, user.ID)
	post, _ := app.Store.SavePost(Post{UserID: user.ID, Content: "ship it", Hashtags: []string{"go"}, Status: StatusGenerated})

	rec := doJSON(t, app, http.MethodPost, "/api/linkedin/publish", token, map[string]interface{}{"post_id": post.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("publish failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		PostURL string `json:"post_url"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.PostURL == "" {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	if len(pub.published) != 1 || !strings.Contains(pub.published[0], "ship it") {
		t.Fatalf("publisher did not receive content: %v", pub.published)
	}
	got, _ := app.Store.GetPost(post.ID, user.ID)
	if got.Status != StatusPublished {
		t.Fatalf("expected status %q, got %q", StatusPublished, got.Status)
	}
}

func TestPublishRelaysStructuralFailure(t *testing.T) {
	app, _, pub := newTestApp(t)
	token, user := registerTestUser(t, app)
	connectTestUser(t, app, user.ID)
	pub.publishResult = linkedin.PublishResult{Success: false, Err: "rate limited"}
	post, _ := app.Store.SavePost(Post{UserID: user.ID, Content: "x", Status: StatusGenerated})

	rec := doJSON(t, app, http.MethodPost, "/api/linkedin/publish", token, map[string]interface{}{"post_id": post.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("upstream failure must still be HTTP 200, got %d", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Err     string `json:"error"`
	}
	decodeBody(t, rec, &resp)
	if resp.Success || !strings.Contains(resp.Err, "rate limited") {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	got, _ := app.Store.GetPost(post.ID, user.ID)
	if got.Status != StatusGenerated {
		t.Fatalf("failed publish must not change status, got %q", got.Status)
	}
}

func TestConnectReturnsAuthorizationURL(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := registerTestUser(t, app)

	rec := doJSON(t, app, http.MethodGet, "/api/linkedin/connect", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("connect failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AuthorizationURL string `json:"authorization_url"`
		State            string `json:"state"`
	}
	decodeBody(t, rec, &resp)
	if resp.AuthorizationURL == "" || resp.State == "" {
		t.Fatalf("incomplete response: %s", rec.Body.String())
	}
	if !strings.Contains(resp.AuthorizationURL, resp.State) {
		t.Fatalf("authorization url must carry the state: %s", rec.Body.String())
	}
}

func TestDisconnectClearsConnection(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, user := registerTestUser(t, app)
	connectTestUser(t, app, user.ID)

	rec := doJSON(t, app, http.MethodPost, "/api/linkedin/disconnect", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disconnect failed: %d %s", rec.Code, rec.Body.String())
	}
	got, _ := app.Store.GetUser(user.ID)
	if got.Connected || got.AccessToken != "" {
		t.Fatalf("connection not cleared: %+v", got)
	}

	rec = doJSON(t, app, http.MethodGet, "/api/linkedin/status", token, nil)
	var status struct {
		Connected bool `json:"connected"`
	}
	decodeBody(t, rec, &status)
	if status.Connected {
		t.Fatalf("status must report disconnected: %s", rec.Body.String())
	}
}

func TestAnalyticsDashboard(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, user := registerTestUser(t, app)
	app.Store.SavePost(Post{UserID: user.ID, Content: "a", Status: StatusDraft})
	app.Store.SavePost(Post{UserID: user.ID, Content: "b", Status: StatusPublished})

	rec := doJSON(t, app, http.MethodGet, "/api/analytics/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		UserStats struct {
			Total  int `json:"total_posts"`
			Drafts int `json:"drafts"`
		} `json:"user_stats"`
	}
	decodeBody(t, rec, &resp)
	if resp.UserStats.Total != 2 || resp.UserStats.Drafts != 1 {
		t.Fatalf("unexpected stats: %s", rec.Body.String())
	}
}
