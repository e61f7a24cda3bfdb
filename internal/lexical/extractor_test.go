package lexical

import (
	"strings"
	"testing"
)

func TestExtractKeywords_Empty(t *testing.T) {
	if got := ExtractKeywords("", 15); len(got) != 0 {
		t.Errorf("expected no keywords for empty text, got %v", got)
	}
	if got := ExtractKeywords("   ", 15); len(got) != 0 {
		t.Errorf("expected no keywords for whitespace text, got %v", got)
	}
}

func TestExtractKeywords_DropsShortNumericAndStopwords(t *testing.T) {
	got := ExtractKeywords("the ab 123 2024 and microservices architecture", 15)
	for _, kw := range got {
		switch kw {
		case "the", "and", "ab", "123", "2024":
			t.Errorf("keyword %q should have been discarded", kw)
		}
	}
	if !contains(got, "microservices") || !contains(got, "architecture") {
		t.Errorf("expected content words, got %v", got)
	}
}

func TestExtractKeywords_FrequencyBeatsLength(t *testing.T) {
	// "cache" appears three times; "infrastructure" once but is longer.
	// freq*log2(len): cache = 3*log2(5) ~ 6.97, infrastructure = log2(14) ~ 3.81.
	got := ExtractKeywords("cache cache cache infrastructure", 15)
	if len(got) < 2 {
		t.Fatalf("expected at least 2 keywords, got %v", got)
	}
	if got[0] != "cache" {
		t.Errorf("expected cache ranked first, got %v", got)
	}
}

func TestExtractKeywords_MaxLimit(t *testing.T) {
	var b strings.Builder
	words := []string{
		"database", "network", "storage", "compute", "latency", "throughput",
		"kernel", "scheduler", "memory", "pipeline", "cluster", "replica",
		"shard", "index", "query", "transaction", "snapshot", "journal",
	}
	for _, w := range words {
		b.WriteString(w)
		b.WriteByte(' ')
	}
	got := ExtractKeywords(b.String(), 15)
	if len(got) > 15 {
		t.Errorf("expected at most 15 keywords, got %d", len(got))
	}
}

func TestExtractKeywords_TieBrokenByEncounterOrder(t *testing.T) {
	// Same length, same frequency: encounter order decides.
	got := ExtractKeywords("orange banana", 15)
	if len(got) != 2 || got[0] != "orange" || got[1] != "banana" {
		t.Errorf("expected encounter order [orange banana], got %v", got)
	}
}

func TestExtractKeywords_TurkishCharacters(t *testing.T) {
	got := ExtractKeywords("güvenlik, şifreleme; güvenlik!", 15)
	if !contains(got, "güvenlik") || !contains(got, "şifreleme") {
		t.Errorf("expected Turkish tokens preserved, got %v", got)
	}
	if got[0] != "güvenlik" {
		t.Errorf("expected repeated güvenlik ranked first, got %v", got)
	}
}

func TestExtractKeywords_PunctuationStripped(t *testing.T) {
	got := ExtractKeywords("kubernetes: (orchestration)", 15)
	if !contains(got, "kubernetes") || !contains(got, "orchestration") {
		t.Errorf("expected punctuation stripped, got %v", got)
	}
}

func TestGenerateTransitionPhrases_EmptyNext(t *testing.T) {
	if got := GenerateTransitionPhrases("intro text", ""); len(got) != 0 {
		t.Errorf("expected no phrases when next slide has no keywords, got %v", got)
	}
	if got := GenerateTransitionPhrases("intro text", "the and of"); len(got) != 0 {
		t.Errorf("expected no phrases when next slide is all stopwords, got %v", got)
	}
}

func TestGenerateTransitionPhrases_SingleKeyword(t *testing.T) {
	got := GenerateTransitionPhrases("", "kubernetes")
	if len(got) != 11 {
		t.Fatalf("expected 11 single-keyword templates, got %d: %v", len(got), got)
	}
	if !contains(got, "moving on to kubernetes") {
		t.Errorf("missing expected template, got %v", got)
	}
	if !contains(got, "şimdi kubernetes") {
		t.Errorf("missing Turkish template, got %v", got)
	}
}

func TestGenerateTransitionPhrases_TwoKeywords(t *testing.T) {
	got := GenerateTransitionPhrases("", "kubernetes kubernetes orchestration")
	if len(got) != 13 {
		t.Fatalf("expected 13 templates with a secondary keyword, got %d", len(got))
	}
	if !contains(got, "kubernetes ve orchestration") || !contains(got, "kubernetes and orchestration") {
		t.Errorf("missing two-keyword templates, got %v", got)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
