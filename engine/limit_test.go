package engine

import (
	"strings"
	"testing"
)

func TestLimitStatusClassification(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		hashtags []string
		max      int
		want     string
	}{
		{"within", strings.Repeat("a", 100), nil, 1000, WithinLimit},
		{"near", strings.Repeat("a", 950), nil, 1000, NearLimit},
		{"exceeds", strings.Repeat("a", 1001), nil, 1000, ExceedsLimit},
		{"hashtags count", strings.Repeat("a", 995), []string{"golang"}, 1000, ExceedsLimit},
	}
	for _, tc := range cases {
		status, soft, total := LimitStatus(tc.content, tc.hashtags, tc.max)
		if status != tc.want {
			t.Errorf("%s: expected %q, got %q (total %d, soft %d)", tc.name, tc.want, status, total, soft)
		}
	}
}

func TestLimitStatusCountsHashtagBlock(t *testing.T) {
	_, _, total := LimitStatus("hello", []string{"go", "dev"}, 3000)
	// "hello" + " " + "#go #dev"
	if total != len("hello")+1+len("#go #dev") {
		t.Fatalf("unexpected total %d", total)
	}
}

func TestTrimToLimitPrefersSentenceBoundary(t *testing.T) {
	content := strings.Repeat("A full sentence here. ", 20)
	trimmed, tags := TrimToLimit(content, []string{"golang"}, 200)
	if len(trimmed)+len(" #golang") > 200 {
		t.Fatalf("trimmed content still exceeds limit: %d chars", len(trimmed))
	}
	if !strings.HasSuffix(trimmed, ".") {
		t.Fatalf("expected trim at a sentence boundary, got %q", trimmed[len(trimmed)-10:])
	}
	if len(tags) != 1 {
		t.Fatalf("hashtags should survive when they fit, got %v", tags)
	}
}

func TestTrimToLimitFallsBackToWordBoundary(t *testing.T) {
	content := strings.Repeat("word ", 100)
	trimmed, _ := TrimToLimit(content, nil, 120)
	if len(trimmed) > 120 {
		t.Fatalf("trimmed content exceeds limit: %d", len(trimmed))
	}
	if strings.HasSuffix(trimmed, "wor") {
		t.Fatalf("expected trim at a word boundary, got %q", trimmed)
	}
}

func TestTrimToLimitDropsHashtagsLast(t *testing.T) {
	trimmed, tags := TrimToLimit("short post", []string{"golang", "opensource", "programming"}, 20)
	combined := trimmed
	if len(tags) > 0 {
		combined += " " + hashtagText(tags)
	}
	if len(combined) > 20 {
		t.Fatalf("combined length %d exceeds limit", len(combined))
	}
	if len(tags) == 3 {
		t.Fatal("expected trailing hashtags to be dropped")
	}
}

func TestTrimToLimitNoopWhenFits(t *testing.T) {
	trimmed, tags := TrimToLimit("short", []string{"go"}, 3000)
	if trimmed != "short" || len(tags) != 1 {
		t.Fatalf("expected no change, got %q %v", trimmed, tags)
	}
}
