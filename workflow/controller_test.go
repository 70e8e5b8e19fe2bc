package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubAPI struct {
	mu            sync.Mutex
	generateCalls int
	improveCalls  int
	draftCalls    int
	scheduleCalls int
	publishCalls  int
	exchangeCalls int

	improvedContent string
	publishOutcome  PublishOutcome
	exchangeSuccess bool
	statusConnected bool

	savedContent  string
	scheduledTime string
}

func (s *stubAPI) bump(n *int) {
	s.mu.Lock()
	*n++
	s.mu.Unlock()
}

func newStubAPI(t *testing.T) (*stubAPI, *Client) {
	t.Helper()
	s := &stubAPI{
		improvedContent: "A shorter take on the topic. #golang",
		publishOutcome:  PublishOutcome{Success: true, PostID: "urn:1", PostURL: "https://www.linkedin.com/feed/update/urn:1"},
		exchangeSuccess: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/content/generate", func(w http.ResponseWriter, r *http.Request) {
		s.bump(&s.generateCalls)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"post_id":   int64(7),
			"content":   "The original generated take on the topic.",
			"hashtags":  []string{"golang", "testing"},
			"topic":     "topic",
			"post_type": "professional",
			"character_count": 41,
			"estimated_engagement": map[string]int{
				"predicted_likes": 120, "predicted_comments": 11, "predicted_shares": 5, "engagement_score": 60,
			},
		})
	})
	mux.HandleFunc("/api/content/improve", func(w http.ResponseWriter, r *http.Request) {
		s.bump(&s.improveCalls)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"post_id":         int64(8),
			"content":         s.improvedContent,
			"hashtags":        []string{"golang"},
			"character_count": len(s.improvedContent),
			"estimated_engagement": map[string]int{"engagement_score": 75},
		})
	})
	mux.HandleFunc("/api/content/save-draft", func(w http.ResponseWriter, r *http.Request) {
		s.bump(&s.draftCalls)
		var body struct {
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.savedContent = body.Content
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{"post_id": int64(9), "status": "draft"})
	})
	mux.HandleFunc("/api/content/schedule-post", func(w http.ResponseWriter, r *http.Request) {
		s.bump(&s.scheduleCalls)
		var body struct {
			ScheduledTime string `json:"scheduled_time"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.scheduledTime = body.ScheduledTime
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	mux.HandleFunc("/api/linkedin/publish", func(w http.ResponseWriter, r *http.Request) {
		s.bump(&s.publishCalls)
		json.NewEncoder(w).Encode(s.publishOutcome)
	})
	mux.HandleFunc("/api/linkedin/exchange-token", func(w http.ResponseWriter, r *http.Request) {
		s.bump(&s.exchangeCalls)
		json.NewEncoder(w).Encode(map[string]bool{"success": s.exchangeSuccess})
	})
	mux.HandleFunc("/api/linkedin/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"connected": s.statusConnected})
	})
	mux.HandleFunc("/api/linkedin/disconnect", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("/api/linkedin/connect", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"authorization_url": "https://www.linkedin.com/oauth/v2/authorization?state=abc",
			"state":             "abc",
		})
	})
	mux.HandleFunc("/api/content/suggestions/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"suggestions": []string{"Fintech trends", "Open banking"},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	client.Token = "test-token"
	return s, client
}

func newTestController(t *testing.T) (*stubAPI, *Controller, *ConnectionManager) {
	t.Helper()
	s, client := newStubAPI(t)
	conn := NewConnectionManager(client)
	ctl := NewController(client, conn, &SchedulingValidator{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	return s, ctl, conn
}

func TestGenerateEmptyTopicNoNetwork(t *testing.T) {
	s, ctl, _ := newTestController(t)

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := ctl.Generate(context.Background(), GenerateRequest{Topic: topic})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for topic %q, got %v", topic, err)
		}
	}
	if s.generateCalls != 0 {
		t.Fatalf("expected no generate calls, got %d", s.generateCalls)
	}
}

func TestGenerateReplacesSessionPost(t *testing.T) {
	_, ctl, _ := newTestController(t)

	post, err := ctl.Generate(context.Background(), GenerateRequest{Topic: "topic"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if post.Status != Generated {
		t.Fatalf("expected status %q, got %q", Generated, post.Status)
	}
	if post.ID != 7 || post.Content == "" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if got := ctl.Post(); got.Status != Generated {
		t.Fatalf("expected session post status %q, got %q", Generated, got.Status)
	}
}

func TestImproveBlankContentNoNetwork(t *testing.T) {
	s, ctl, _ := newTestController(t)

	if _, err := ctl.Generate(context.Background(), GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := ctl.BeginEdit(); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if err := ctl.SetEditBuffer("   "); err != nil {
		t.Fatalf("SetEditBuffer failed: %v", err)
	}

	_, err := ctl.Improve(context.Background(), ImproveShorten, "", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if s.improveCalls != 0 {
		t.Fatalf("expected no improve calls, got %d", s.improveCalls)
	}
}

func TestImproveWithoutPostIsStateError(t *testing.T) {
	_, ctl, _ := newTestController(t)

	_, err := ctl.Improve(context.Background(), ImproveShorten, "", "")
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestPublishNotConnectedNoNetwork(t *testing.T) {
	s, ctl, _ := newTestController(t)

	if _, err := ctl.Generate(context.Background(), GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	_, err := ctl.Publish(context.Background())
	var nce *NotConnectedError
	if !errors.As(err, &nce) {
		t.Fatalf("expected NotConnectedError, got %v", err)
	}
	if s.publishCalls != 0 {
		t.Fatalf("expected no publish calls, got %d", s.publishCalls)
	}
}

func TestPublishBeforeGenerateIsStateError(t *testing.T) {
	_, ctl, _ := newTestController(t)

	_, err := ctl.Publish(context.Background())
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestPublishUpstreamFailureIsServiceError(t *testing.T) {
	s, ctl, conn := newTestController(t)
	s.statusConnected = true
	s.publishOutcome = PublishOutcome{Success: false, Err: "rate limited"}

	if _, err := conn.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := ctl.Generate(context.Background(), GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err := ctl.Publish(context.Background())
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if !strings.Contains(se.Message, "rate limited") {
		t.Fatalf("expected error to carry upstream message, got %q", se.Message)
	}
	if got := ctl.Post().Status; got != Generated {
		t.Fatalf("status must remain %q after failed publish, got %q", Generated, got)
	}
	if s.publishCalls != 1 {
		t.Fatalf("expected one publish call, got %d", s.publishCalls)
	}
}

func TestPublishSuccess(t *testing.T) {
	s, ctl, conn := newTestController(t)
	s.statusConnected = true

	if _, err := conn.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := ctl.Generate(context.Background(), GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	postURL, err := ctl.Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if postURL == "" {
		t.Fatal("expected a feed URL")
	}
	if got := ctl.Post().Status; got != Published {
		t.Fatalf("expected status %q, got %q", Published, got)
	}
}

func TestScheduleEmptyCandidate(t *testing.T) {
	s, ctl, _ := newTestController(t)

	if _, err := ctl.Generate(context.Background(), GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	_, err := ctl.Schedule(context.Background(), "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != "empty" {
		t.Fatalf("expected reason %q, got %q", "empty", ve.Reason)
	}
	if s.scheduleCalls != 0 {
		t.Fatalf("expected no schedule calls, got %d", s.scheduleCalls)
	}
}

func TestSchedulePersistsUTC(t *testing.T) {
	s, client := newStubAPI(t)
	conn := NewConnectionManager(client)
	loc := time.FixedZone("UTC+2", 2*60*60)
	ctl := NewController(client, conn, &SchedulingValidator{
		Location: loc,
		Now:      func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	})

	if _, err := ctl.Generate(context.Background(), GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	at, err := ctl.Schedule(context.Background(), "2026-05-01T10:30")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if want := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC); !at.Equal(want) {
		t.Fatalf("expected %v, got %v", want, at)
	}
	if s.scheduledTime != "2026-05-01T08:30:00Z" {
		t.Fatalf("expected persisted UTC time, got %q", s.scheduledTime)
	}
	if got := ctl.Post().Status; got != Scheduled {
		t.Fatalf("expected status %q, got %q", Scheduled, got)
	}
}

func TestSaveDraftPersistsImprovedContent(t *testing.T) {
	s, ctl, _ := newTestController(t)
	ctx := context.Background()

	if _, err := ctl.Generate(ctx, GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	improved, err := ctl.Improve(ctx, ImproveShorten, "", "")
	if err != nil {
		t.Fatalf("Improve failed: %v", err)
	}
	if err := ctl.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if s.savedContent != improved {
		t.Fatalf("expected improved content persisted, got %q want %q", s.savedContent, improved)
	}
	if got := ctl.Post(); got.Status != Draft || got.Content != improved {
		t.Fatalf("expected draft with improved content, got %+v", got)
	}
}

func TestSaveDraftCommitsEditBuffer(t *testing.T) {
	s, ctl, _ := newTestController(t)
	ctx := context.Background()

	if _, err := ctl.Generate(ctx, GenerateRequest{Topic: "topic"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := ctl.BeginEdit(); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if err := ctl.SetEditBuffer("hand-edited text"); err != nil {
		t.Fatalf("SetEditBuffer failed: %v", err)
	}
	if err := ctl.SaveDraft(ctx); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if s.savedContent != "hand-edited text" {
		t.Fatalf("expected edit buffer persisted, got %q", s.savedContent)
	}
}
