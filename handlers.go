package postpilot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postpilot/engine"
)

type generateRequest struct {
	Topic         string `json:"topic"`
	PostType      string `json:"post_type"`
	Length        string `json:"length"`
	Tone          string `json:"tone"`
	Audience      string `json:"audience"`
	MaxCharacters int    `json:"max_characters"`
}

type improveRequest struct {
	CurrentContent  string `json:"current_content"`
	SuggestionType  string `json:"suggestion_type"`
	TargetTone      string `json:"target_tone"`
	SpecificRequest string `json:"specific_request"`
	MaxCharacters   int    `json:"max_characters"`
}

type saveDraftRequest struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
	Topic    string   `json:"topic"`
}

type scheduleRequest struct {
	PostID        int64  `json:"post_id"`
	ScheduledTime string `json:"scheduled_time"`
}

type contentResponse struct {
	PostID         int64      `json:"post_id"`
	Content        string     `json:"content"`
	Hashtags       []string   `json:"hashtags"`
	Mentions       []string   `json:"mentions"`
	PostType       string     `json:"post_type"`
	AIModel        string     `json:"ai_model"`
	Topic          string     `json:"topic"`
	Engagement     Engagement `json:"estimated_engagement"`
	CharacterCount int        `json:"character_count"`
	Status         string     `json:"status"`
	Warnings       []string   `json:"warnings,omitempty"`
}

func (a *App) handleGenerate(c echo.Context) error {
	user := currentUser(c)
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}
	if req.PostType == "" {
		req.PostType = "professional"
	}
	if req.Length == "" {
		req.Length = "medium"
	}
	if req.Tone == "" {
		req.Tone = "professional"
	}
	maxChars := req.MaxCharacters
	if maxChars <= 0 {
		maxChars = MaxPostCharacters
	}

	ctx := c.Request().Context()
	result, err := a.Engine.GeneratePost(ctx, profileOf(user), engine.GenerateParams{
		Topic:    req.Topic,
		PostType: req.PostType,
		Length:   req.Length,
		Tone:     req.Tone,
		Audience: req.Audience,
	})
	if err != nil {
		c.Logger().Errorf("content generation failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "AI content generation failed")
	}

	content, hashtags := result.Content, result.Hashtags
	var warnings []string
	status, _, total := engine.LimitStatus(content, hashtags, maxChars)
	if status == engine.ExceedsLimit {
		content, hashtags, total, warnings = a.refit(ctx, content, hashtags, maxChars,
			engine.RefitPrompt(content, maxChars), warnings)
	}

	post, err := a.Store.SavePost(Post{
		UserID:     user.ID,
		Content:    content,
		Hashtags:   hashtags,
		Topic:      req.Topic,
		PostType:   req.PostType,
		Status:     StatusGenerated,
		PromptUsed: "Topic: " + req.Topic + ", Type: " + req.PostType + ", Tone: " + req.Tone,
		Model:      result.Model,
		Engagement: toEngagement(result.Engagement),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contentResponse{
		PostID:         post.ID,
		Content:        content,
		Hashtags:       emptyIfNil(hashtags),
		Mentions:       emptyIfNil(result.Mentions),
		PostType:       req.PostType,
		AIModel:        result.Model,
		Topic:          req.Topic,
		Engagement:     toEngagement(result.Engagement),
		CharacterCount: total,
		Status:         "success",
		Warnings:       warnings,
	})
}

func (a *App) handleImprove(c echo.Context) error {
	user := currentUser(c)
	var req improveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.SuggestionType == "" {
		req.SuggestionType = engine.ImproveEngagement
	}
	maxChars := req.MaxCharacters
	if maxChars <= 0 {
		maxChars = MaxPostCharacters
	}

	prompt, err := engine.ImprovementPrompt(req.SuggestionType, req.CurrentContent, req.TargetTone, req.SpecificRequest, maxChars)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownSuggestionType) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid suggestion type")
		}
		return err
	}

	ctx := c.Request().Context()
	content, err := a.Engine.Rewrite(ctx, prompt)
	if err != nil {
		c.Logger().Errorf("content improvement failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "content improvement failed")
	}
	content = strings.TrimSpace(content)
	hashtags := engine.ExtractHashtags(content)
	prediction := toEngagement(engine.PredictEngagement(content, user.Industry, req.TargetTone, ""))

	var warnings []string
	status, _, total := engine.LimitStatus(content, hashtags, maxChars)
	if status == engine.ExceedsLimit {
		content, hashtags, total, warnings = a.refit(ctx, content, hashtags, maxChars,
			engine.CondensePrompt(content, maxChars), warnings)
	}

	post, err := a.Store.SavePost(Post{
		UserID:     user.ID,
		Content:    content,
		Hashtags:   hashtags,
		PostType:   "improved",
		Status:     StatusImproved,
		PromptUsed: "Suggestion type: " + req.SuggestionType,
		Model:      a.Config.GeminiModel,
		Engagement: prediction,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contentResponse{
		PostID:         post.ID,
		Content:        content,
		Hashtags:       emptyIfNil(hashtags),
		Mentions:       emptyIfNil(engine.ExtractMentions(content)),
		PostType:       "improved",
		AIModel:        a.Config.GeminiModel,
		Engagement:     prediction,
		CharacterCount: total,
		Status:         "success",
		Warnings:       warnings,
	})
}

// refit retries an over-limit body with the given rewrite prompt, falling
// back to local trimming when the rewrite still exceeds the limit.
func (a *App) refit(ctx context.Context, content string, hashtags []string, maxChars int, prompt string, warnings []string) (string, []string, int, []string) {
	if rewritten, err := a.Engine.Rewrite(ctx, prompt); err == nil {
		rewritten = strings.TrimSpace(rewritten)
		tags := engine.ExtractHashtags(rewritten)
		if status, _, total := engine.LimitStatus(rewritten, tags, maxChars); status != engine.ExceedsLimit {
			return rewritten, tags, total, warnings
		}
		content, hashtags = rewritten, tags
	}
	trimmed, tags := engine.TrimToLimit(content, hashtags, maxChars)
	_, _, total := engine.LimitStatus(trimmed, tags, maxChars)
	warnings = append(warnings, fmt.Sprintf("content exceeded %d characters and was trimmed to fit", maxChars))
	return trimmed, tags, total, warnings
}

func (a *App) handleSaveDraft(c echo.Context) error {
	user := currentUser(c)
	var req saveDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	post, err := a.Store.SavePost(Post{
		UserID:     user.ID,
		Content:    req.Content,
		Hashtags:   req.Hashtags,
		Topic:      req.Topic,
		PostType:   "professional",
		Status:     StatusDraft,
		PromptUsed: req.Topic,
		Model:      a.Config.GeminiModel,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Draft saved successfully",
		"post_id": post.ID,
		"status":  StatusDraft,
	})
}

type postResponse struct {
	ID            int64      `json:"id"`
	Content       string     `json:"content"`
	Hashtags      []string   `json:"hashtags"`
	Topic         string     `json:"topic"`
	PostType      string     `json:"post_type"`
	Status        string     `json:"status"`
	Engagement    Engagement `json:"predicted_engagement"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	PublishedTime *time.Time `json:"published_time,omitempty"`
	LinkedInURL   string     `json:"linkedin_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toPostResponse(p Post) postResponse {
	return postResponse{
		ID:            p.ID,
		Content:       p.Content,
		Hashtags:      emptyIfNil(p.Hashtags),
		Topic:         p.Topic,
		PostType:      p.PostType,
		Status:        p.Status,
		Engagement:    p.Engagement,
		ScheduledTime: p.ScheduledTime,
		PublishedTime: p.PublishedTime,
		LinkedInURL:   p.LinkedInURL,
		CreatedAt:     p.CreatedAt,
	}
}

func (a *App) handleDrafts(c echo.Context) error {
	user := currentUser(c)
	posts, err := a.Store.ListPosts(user.ID, StatusDraft)
	if err != nil {
		return err
	}
	drafts := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		drafts = append(drafts, toPostResponse(p))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"drafts": drafts,
		"total":  len(drafts),
	})
}

func (a *App) handleSchedulePost(c echo.Context) error {
	user := currentUser(c)
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduled_time must be an RFC 3339 timestamp")
	}
	if err := a.Store.SchedulePost(req.PostID, user.ID, at); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"message":        "Post scheduled",
		"post_id":        req.PostID,
		"scheduled_time": at.UTC().Format(time.RFC3339),
	})
}

func (a *App) handleSuggestions(c echo.Context) error {
	industry := c.Param("industry")
	suggestions, err := a.Engine.SuggestTopics(c.Request().Context(), industry)
	if err != nil {
		c.Logger().Errorf("suggestion generation failed: %v", err)
		suggestions = engine.FallbackSuggestions(industry)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"industry":    industry,
		"suggestions": suggestions,
	})
}

func toEngagement(e engine.Engagement) Engagement {
	return Engagement{
		PredictedLikes:    e.PredictedLikes,
		PredictedComments: e.PredictedComments,
		PredictedShares:   e.PredictedShares,
		EngagementScore:   e.EngagementScore,
	}
}

func profileOf(u User) engine.Profile {
	return engine.Profile{
		Name:       u.Name,
		Headline:   u.Headline,
		Industry:   u.Industry,
		Role:       u.Role,
		Company:    u.Company,
		BrandVoice: u.BrandVoice,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
