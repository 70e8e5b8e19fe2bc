package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
)

// Fallback is a deterministic engine used when no Gemini API key is
// configured. Generated posts come from templates; rewrites are refused.
type Fallback struct {
	// Rand picks the template; tests may pin it.
	Rand *rand.Rand
}

// GeneratePost fills a template with the topic and profile.
func (f *Fallback) GeneratePost(_ context.Context, profile Profile, params GenerateParams) (Result, error) {
	industry := orElse(profile.Industry, "professional")
	role := orElse(profile.Role, "professional")
	templates := []string{
		fmt.Sprintf("Sharing insights on %s in the %s space. What's your perspective?", params.Topic, industry),
		fmt.Sprintf("As a %s, I've been reflecting on %s. Curious how others see it?", role, params.Topic),
		fmt.Sprintf("Excited to explore how %s is shaping %s. Drop your thoughts below!", params.Topic, industry),
	}
	content := templates[f.intn(len(templates))] +
		fmt.Sprintf(" #%s #innovation #thoughtleadership", strings.ReplaceAll(strings.ToLower(industry), " ", ""))
	return Result{
		Content:    content,
		Hashtags:   ExtractHashtags(content),
		Mentions:   ExtractMentions(content),
		Engagement: PredictEngagement(content, profile.Industry, params.Tone, params.Audience),
		Model:      "fallback",
	}, nil
}

// Rewrite always fails: there is no local rewriting capability.
func (f *Fallback) Rewrite(context.Context, string) (string, error) {
	return "", fmt.Errorf("engine: content improvement requires a configured Gemini API key")
}

// SuggestTopics returns the curated per-industry list.
func (f *Fallback) SuggestTopics(_ context.Context, industry string) ([]string, error) {
	return FallbackSuggestions(industry), nil
}

func (f *Fallback) intn(n int) int {
	if f.Rand != nil {
		return f.Rand.Intn(n)
	}
	return rand.Intn(n)
}

var fallbackSuggestions = map[string][]string{
	"Technology": {
		"AI and Machine Learning trends",
		"Remote work productivity",
		"Digital transformation",
		"Cybersecurity best practices",
		"Future of software development",
	},
	"Marketing": {
		"Social media marketing trends",
		"Content marketing strategies",
		"Customer experience optimization",
		"Brand storytelling",
		"Digital marketing analytics",
	},
	"Finance": {
		"Fintech innovations",
		"Investment strategies",
		"Cryptocurrency trends",
		"Financial planning tips",
		"Economic market analysis",
	},
	"Healthcare": {
		"Digital health innovations",
		"Patient care optimization",
		"Healthcare technology trends",
		"Medical research insights",
		"Healthcare policy updates",
	},
	"Education": {
		"EdTech innovations",
		"Online learning trends",
		"Student engagement strategies",
		"Educational technology",
		"Future of education",
	},
}

// FallbackSuggestions returns the curated topic list for an industry,
// defaulting to Technology for unknown industries.
func FallbackSuggestions(industry string) []string {
	if s, ok := fallbackSuggestions[industry]; ok {
		return append([]string(nil), s...)
	}
	return append([]string(nil), fallbackSuggestions["Technology"]...)
}
