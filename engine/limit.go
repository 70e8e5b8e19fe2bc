package engine

import "strings"

// Character-limit classifications for a post body plus hashtags.
const (
	WithinLimit  = "within_limit"
	NearLimit    = "near_limit"
	ExceedsLimit = "exceeds_limit"
)

// LimitStatus classifies content plus hashtags against the platform limit.
// The soft limit is 90% of max; between soft and hard counts as near.
func LimitStatus(content string, hashtags []string, maxChars int) (status string, softLimit, totalChars int) {
	tagText := hashtagText(hashtags)
	totalChars = len(content) + len(tagText)
	if tagText != "" {
		totalChars++ // separating space
	}
	softLimit = maxChars * 9 / 10
	switch {
	case totalChars <= softLimit:
		return WithinLimit, softLimit, totalChars
	case totalChars <= maxChars:
		return NearLimit, softLimit, totalChars
	default:
		return ExceedsLimit, softLimit, totalChars
	}
}

// TrimToLimit shortens content so content plus hashtags fit within maxChars.
// It prefers cutting at a sentence boundary, then a word boundary, then a
// hard cut, and drops trailing hashtags as a last resort.
func TrimToLimit(content string, hashtags []string, maxChars int) (string, []string) {
	tagText := hashtagText(hashtags)
	combined := strings.TrimSpace(content + " " + tagText)
	if len(combined) <= maxChars {
		return content, hashtags
	}

	allowed := maxChars - len(tagText) - 1
	if allowed > 0 && len(content) > allowed {
		truncated := content[:allowed]
		if cut := lastSentenceEnd(truncated); cut != -1 && cut > allowed*6/10 {
			content = truncated[:cut+1]
		} else if cut := strings.LastIndex(truncated, " "); cut != -1 && cut > allowed*6/10 {
			content = truncated[:cut]
		} else {
			content = strings.TrimRight(truncated, " ")
		}
	}

	combined = strings.TrimSpace(content + " " + hashtagText(hashtags))
	for len(hashtags) > 0 && len(combined) > maxChars {
		hashtags = hashtags[:len(hashtags)-1]
		combined = strings.TrimSpace(content + " " + hashtagText(hashtags))
	}
	return strings.TrimSpace(content), hashtags
}

func lastSentenceEnd(s string) int {
	cut := -1
	for _, b := range []string{".", "!", "?"} {
		if i := strings.LastIndex(s, b); i > cut {
			cut = i
		}
	}
	return cut
}

func hashtagText(hashtags []string) string {
	if len(hashtags) == 0 {
		return ""
	}
	parts := make([]string, len(hashtags))
	for i, t := range hashtags {
		parts[i] = "#" + strings.TrimPrefix(t, "#")
	}
	return strings.Join(parts, " ")
}
