package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestImprovementPromptKnownTypes(t *testing.T) {
	for _, typ := range []string{ImproveEngagement, Shorten, Expand, ToneChange, Custom} {
		prompt, err := ImprovementPrompt(typ, "original post", "casual", "make it punchy", 3000)
		if err != nil {
			t.Fatalf("type %q: %v", typ, err)
		}
		if !strings.Contains(prompt, "original post") {
			t.Fatalf("type %q: prompt does not carry the content", typ)
		}
	}
}

func TestImprovementPromptUnknownType(t *testing.T) {
	_, err := ImprovementPrompt("sparkle", "content", "", "", 3000)
	if !errors.Is(err, ErrUnknownSuggestionType) {
		t.Fatalf("expected ErrUnknownSuggestionType, got %v", err)
	}
}

func TestImprovementPromptToneDefault(t *testing.T) {
	prompt, err := ImprovementPrompt(ToneChange, "content", "", "", 3000)
	if err != nil {
		t.Fatalf("ImprovementPrompt failed: %v", err)
	}
	if !strings.Contains(prompt, "professional tone") {
		t.Fatalf("expected default tone in prompt, got %q", prompt)
	}
}

func TestImprovementPromptEmptyCustomRequestPassesThrough(t *testing.T) {
	prompt, err := ImprovementPrompt(Custom, "content", "", "", 3000)
	if err != nil {
		t.Fatalf("empty custom request must not be rejected: %v", err)
	}
	if !strings.Contains(prompt, `""`) {
		t.Fatalf("expected the empty request quoted in the prompt, got %q", prompt)
	}
}

func TestParseSuggestions(t *testing.T) {
	text := "First topic\n\n- a stray bullet\nSecond topic\nThird\nFourth\nFifth\nSixth"
	got := ParseSuggestions(text)
	if len(got) != 5 {
		t.Fatalf("expected 5 suggestions, got %d: %v", len(got), got)
	}
	if got[0] != "First topic" || got[1] != "Second topic" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestFallbackSuggestionsCopies(t *testing.T) {
	first := FallbackSuggestions("Marketing")
	first[0] = "mutated"
	second := FallbackSuggestions("Marketing")
	if second[0] == "mutated" {
		t.Fatal("caller mutation leaked into the curated list")
	}
}

func TestFallbackSuggestionsUnknownIndustry(t *testing.T) {
	got := FallbackSuggestions("Basket Weaving")
	if len(got) != 5 {
		t.Fatalf("expected the default list, got %v", got)
	}
}

func TestGeneratePromptPersonalization(t *testing.T) {
	prompt := generatePrompt(Profile{
		Name:     "Dana",
		Industry: "Finance",
		Role:     "Analyst",
	}, GenerateParams{Topic: "open banking", PostType: "professional", Length: "medium", Tone: "professional"})
	for _, want := range []string{"Dana", "Finance", "Analyst", "open banking"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
