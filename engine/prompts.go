package engine

import (
	"fmt"
	"strings"
)

// Improvement types accepted by ImprovementPrompt.
const (
	ImproveEngagement = "improve"
	Shorten           = "shorten"
	Expand            = "expand"
	ToneChange        = "tone_change"
	Custom            = "custom"
)

// ErrUnknownSuggestionType is returned for an unrecognized improvement type.
var ErrUnknownSuggestionType = fmt.Errorf("engine: unknown suggestion type")

func generatePrompt(profile Profile, params GenerateParams) string {
	audience := params.Audience
	if audience == "" {
		audience = "Industry professionals"
	}
	structure := contentStructure(params.PostType, params.Length)
	return fmt.Sprintf(`You are creating content for %s, a real LinkedIn professional.

USER PROFILE:
- Name: %s
- Professional Headline: %s
- Industry: %s
- Current Role: %s
- Company: %s
- Brand Voice: %s

CREATE A HIGH-ENGAGEMENT LINKEDIN POST:
Topic: %s
Style: %s
Tone: %s
Target Audience: %s
Length: %s

Make this post authentic to the author's professional background in %s and
match their %s brand voice. Include 3-5 relevant hashtags.

%s

CONTENT STRUCTURE:
%s

Return ONLY the LinkedIn post content, plain text, with line breaks. No markdown.`,
		profile.Name,
		profile.Name,
		orElse(profile.Headline, "Professional"),
		orElse(profile.Industry, "Technology"),
		orElse(profile.Role, "Professional"),
		orElse(profile.Company, "Current Company"),
		orElse(profile.BrandVoice, "professional"),
		params.Topic, params.PostType, params.Tone, audience,
		structure.lengthInstruction,
		orElse(profile.Industry, "Technology"),
		orElse(profile.BrandVoice, "professional"),
		industryContext(profile.Industry),
		structure.structure)
}

// ImprovementPrompt builds the rewrite prompt for a suggestion type.
// An empty customRequest on the custom type is passed through as-is; the
// engine decides what to do with it.
func ImprovementPrompt(suggestionType, currentContent, targetTone, customRequest string, maxChars int) (string, error) {
	switch suggestionType {
	case ImproveEngagement:
		return fmt.Sprintf(`Rewrite the following LinkedIn post by applying improvements directly.

Current post:
%s

Apply improvements for:
- Stronger engagement (hooks, CTAs, questions)
- Clearer and more professional tone
- Better structure and readability

Return ONE improved post only, not suggestions or lists.`, currentContent), nil
	case Shorten:
		return fmt.Sprintf(`Rewrite the following LinkedIn post into ONE concise version about 50%% shorter,
while keeping the core message intact.

Original post:
%s`, currentContent), nil
	case Expand:
		return fmt.Sprintf(`Expand the following LinkedIn post into ONE version under %d characters.

Current post:
%s

Add:
- More examples and details
- Industry insights or trends
- A touch of personal experience

Return ONE rewritten post only.`, maxChars, currentContent), nil
	case ToneChange:
		if targetTone == "" {
			targetTone = "professional"
		}
		return fmt.Sprintf(`Rewrite the following LinkedIn post in a %s tone.

Original post:
%s

Return ONE rewritten post only.`, targetTone, currentContent), nil
	case Custom:
		return fmt.Sprintf(`Modify the following LinkedIn post based on this request: %q

Current post:
%s

Return ONE rewritten post only.`, customRequest, currentContent), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSuggestionType, suggestionType)
	}
}

// RefitPrompt asks for a long-form rewrite targeting 85-100% of maxChars,
// used when a fresh generation exceeded the limit.
func RefitPrompt(content string, maxChars int) string {
	return fmt.Sprintf("Rewrite this LinkedIn post as a detailed long-form LinkedIn article. "+
		"Target between %d and %d characters (including spaces). Do not go below %d characters. "+
		"Keep all key ideas, expand explanations, and ensure readability:\n\n%s",
		maxChars*9/10, maxChars, maxChars*85/100, content)
}

// CondensePrompt asks for a rewrite that fits within maxChars, used after a
// first attempt exceeded the limit.
func CondensePrompt(content string, maxChars int) string {
	return fmt.Sprintf("Rewrite this LinkedIn post to stay within %d characters. "+
		"Do not drop the main ideas, just make it concise:\n\n%s", maxChars, content)
}

// SuggestionPrompt asks for trending topic titles for an industry.
func SuggestionPrompt(industry string) string {
	return fmt.Sprintf(`Generate 5 trending and engaging LinkedIn post topics for the %s industry.
Focus on current trends, professional insights, and content that would drive engagement.
Return only the topic titles, one per line.`, industry)
}

// ParseSuggestions splits an engine response into at most five topic lines.
func ParseSuggestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		out = append(out, line)
		if len(out) == 5 {
			break
		}
	}
	return out
}

func industryContext(industry string) string {
	contexts := map[string]string{
		"Technology": `Focus: AI/ML, digital transformation, cybersecurity, startups.
Key themes: Disruption, scalability, UX, data-driven decisions, emerging tech.`,
		"Marketing": `Focus: Digital strategies, branding, automation, ROI.
Key themes: Customer journey, personalization, omnichannel, storytelling.`,
		"Finance": `Focus: Investment, fintech, regulation, trends.
Key themes: Market volatility, diversification, digital banking, crypto.`,
		"Healthcare": `Focus: Digital health, telemedicine, patient care, policy.
Key themes: Outcomes, accessibility, innovation, compliance, prevention.`,
		"Education": `Focus: EdTech, learning methods, online education.
Key themes: Personalized learning, accessibility, skills development.`,
	}
	if c, ok := contexts[industry]; ok {
		return c
	}
	return contexts["Technology"]
}

type structureGuide struct {
	lengthInstruction string
	structure         string
}

func contentStructure(postType, length string) structureGuide {
	structures := map[string]map[string]structureGuide{
		"professional": {
			"short": {"50-100 words, concise and impactful",
				"1. Strong opening\n2. Key insight or data\n3. Brief perspective\n4. Call-to-action"},
			"medium": {"100-200 words, balanced depth and engagement",
				"1. Attention hook\n2. Context (2-3 sentences)\n3. Main insight with support\n4. Personal example\n5. Engaging CTA"},
			"long": {"200-300 words, comprehensive storytelling",
				"1. Story opener\n2. Background context\n3. Detailed analysis\n4. Case study\n5. Takeaways\n6. CTA"},
		},
		"casual": {
			"short": {"50-100 words, conversational",
				"1. Personal anecdote\n2. Relatable insight\n3. Light humor\n4. Question"},
			"medium": {"100-200 words, conversational and relatable",
				"1. Casual opener\n2. Relevant story\n3. Lesson or insight\n4. Friendly CTA"},
			"long": {"200-300 words, informal storytelling",
				"1. Story-driven intro\n2. Detailed narrative\n3. Relatable lesson\n4. Sign-off + question"},
		},
		"thought_leadership": {
			"short": {"50-100 words, authoritative",
				"1. Bold view\n2. Supporting rationale\n3. Implication\n4. Starter question"},
			"medium": {"100-200 words, insightful",
				"1. Trend/challenge\n2. Unique perspective\n3. Evidence\n4. Question for leaders"},
			"long": {"200-300 words, broad analysis",
				"1. Strategic observation\n2. Evaluation\n3. Bold stance\n4. Future vision + CTA"},
		},
	}
	byType, ok := structures[postType]
	if !ok {
		byType = structures["professional"]
	}
	guide, ok := byType[length]
	if !ok {
		guide = structures["professional"]["medium"]
	}
	return guide
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
