package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Gemini generates content through the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string

	retries int
	delay   time.Duration
	sleep   func(time.Duration)
}

// NewGemini creates a Gemini engine. Model defaults to gemini-1.5-flash.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("engine: Gemini API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("engine: create Gemini client: %w", err)
	}
	return &Gemini{
		client:  client,
		model:   model,
		retries: 3,
		delay:   2 * time.Second,
		sleep:   time.Sleep,
	}, nil
}

// GeneratePost creates a personalized post and derives hashtags, mentions
// and an engagement prediction from the model output.
func (g *Gemini) GeneratePost(ctx context.Context, profile Profile, params GenerateParams) (Result, error) {
	text, err := g.generate(ctx, generatePrompt(profile, params))
	if err != nil {
		return Result{}, fmt.Errorf("engine: post generation failed: %w", err)
	}
	return Result{
		Content:    text,
		Hashtags:   ExtractHashtags(text),
		Mentions:   ExtractMentions(text),
		Engagement: PredictEngagement(text, profile.Industry, params.Tone, params.Audience),
		Model:      g.model,
	}, nil
}

// Rewrite runs a raw prompt and returns the rewritten text.
func (g *Gemini) Rewrite(ctx context.Context, prompt string) (string, error) {
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("engine: rewrite failed: %w", err)
	}
	return text, nil
}

// SuggestTopics asks the model for trending topics, falling back to the
// curated per-industry list when the model is unavailable.
func (g *Gemini) SuggestTopics(ctx context.Context, industry string) ([]string, error) {
	text, err := g.generate(ctx, SuggestionPrompt(industry))
	if err != nil {
		return FallbackSuggestions(industry), nil
	}
	suggestions := ParseSuggestions(text)
	if len(suggestions) == 0 {
		return FallbackSuggestions(industry), nil
	}
	return suggestions, nil
}

// generate calls the model with retry: exponential backoff plus jitter.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.retries; attempt++ {
		if attempt > 0 {
			backoff := g.delay*time.Duration(1<<(attempt-1)) + time.Duration(rand.Int63n(int64(time.Second)))
			g.sleep(backoff)
		}
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			lastErr = err
			continue
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			lastErr = fmt.Errorf("empty model response")
			continue
		}
		return text, nil
	}
	return "", lastErr
}
