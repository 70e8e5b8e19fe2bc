// Package engine generates and rewrites LinkedIn post content.
//
// The primary implementation talks to Google Gemini; a deterministic
// fallback serves installations without an API key. Both produce the same
// Result shape: post body, extracted hashtags and mentions, and a local
// engagement prediction.
package engine

import "context"

// Profile carries the user context that personalizes prompts.
type Profile struct {
	Name       string
	Headline   string
	Industry   string
	Role       string
	Company    string
	BrandVoice string
}

// GenerateParams describe the post to generate.
type GenerateParams struct {
	Topic    string
	PostType string // professional, casual, thought_leadership
	Length   string // short, medium, long
	Tone     string // professional, casual, inspirational
	Audience string // entry, manager, executive, all
}

// Engagement is a heuristic prediction of post performance.
type Engagement struct {
	PredictedLikes    int `json:"predicted_likes"`
	PredictedComments int `json:"predicted_comments"`
	PredictedShares   int `json:"predicted_shares"`
	EngagementScore   int `json:"engagement_score"`
}

// Result is the outcome of a generation or rewrite.
type Result struct {
	Content    string
	Hashtags   []string
	Mentions   []string
	Engagement Engagement
	Model      string
}

// Engine produces and rewrites post content.
type Engine interface {
	// GeneratePost creates a new post for the given topic and style.
	GeneratePost(ctx context.Context, profile Profile, params GenerateParams) (Result, error)
	// Rewrite runs a raw prompt and returns the rewritten text.
	Rewrite(ctx context.Context, prompt string) (string, error)
	// SuggestTopics returns up to five trending topics for an industry.
	SuggestTopics(ctx context.Context, industry string) ([]string, error)
}
