package engine

import (
	"regexp"
	"strings"
)

var (
	hashtagRe = regexp.MustCompile(`#\w[\w-]*`)
	mentionRe = regexp.MustCompile(`@[A-Za-z0-9_.-]+`)
)

// ExtractHashtags returns all #tags found in content, lowercased, without
// the leading '#'.
func ExtractHashtags(content string) []string {
	var tags []string
	for _, m := range hashtagRe.FindAllString(content, -1) {
		tags = append(tags, strings.ToLower(strings.TrimPrefix(m, "#")))
	}
	return tags
}

// ExtractMentions returns all @mentions found in content.
func ExtractMentions(content string) []string {
	return mentionRe.FindAllString(content, -1)
}

var ctaPhrases = []string{
	"what do you think", "share your", "let me know", "comment below",
	"thoughts?", "agree?", "disagree?", "experience?", "what's your",
}

var storyPhrases = []string{
	"recently", "yesterday", "last week", "remember when", "story", "experience",
}

var dataSignals = []string{
	"%", "$", "study", "research", "data", "report",
}

// PredictEngagement scores a post on engagement signals: questions, calls
// to action, storytelling, data references, hashtag density and length,
// then scales by tone, audience and industry. Score is capped at 95.
func PredictEngagement(content, industry, tone, audience string) Engagement {
	lower := strings.ToLower(content)
	wordCount := len(strings.Fields(content))
	sentenceCount := 0
	for _, s := range strings.Split(content, ".") {
		if strings.TrimSpace(s) != "" {
			sentenceCount++
		}
	}
	hashtagCount := len(ExtractHashtags(content))

	score := 45.0
	if strings.Contains(content, "?") {
		score += 20
	}
	if containsAny(lower, ctaPhrases) {
		score += 15
	}
	if containsAny(lower, storyPhrases) {
		score += 18
	}
	if containsAny(lower, dataSignals) {
		score += 12
	}
	if hashtagCount >= 3 && hashtagCount <= 5 {
		score += 8
	}
	if wordCount >= 100 && wordCount <= 200 {
		score += 10
	}
	if sentenceCount >= 3 {
		score += 5
	}

	switch tone {
	case "casual":
		score *= 1.25
	case "inspirational":
		score *= 1.35
	}
	switch audience {
	case "entry":
		score *= 1.1
	case "manager":
		score *= 1.2
	case "executive":
		score *= 1.15
	}
	if industry == "Technology" || industry == "Marketing" {
		score *= 1.1
	}

	final := int(score)
	if final > 95 {
		final = 95
	}
	return Engagement{
		PredictedLikes:    min(final*3, 300),
		PredictedComments: min(final/3, 35),
		PredictedShares:   min(final/8, 15),
		EngagementScore:   final,
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
