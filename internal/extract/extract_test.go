package extract

import (
	"errors"
	"strings"
	"testing"

	"curator/internal/core"
)

func TestParseDigest_FencedJSON(t *testing.T) {
	raw := "Here you go:\n```json\n{\"title\": \"T\", \"summary\": \"S\", \"relevance_score\": 7.5, \"reasoning\": \"R\", \"category\": \"research\"}\n```\nthanks"

	out, err := ParseDigest(raw)
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if out.Title != "T" || out.Summary != "S" {
		t.Errorf("unexpected fields: %+v", out)
	}
	if out.RelevanceScore == nil || *out.RelevanceScore != 7.5 {
		t.Errorf("expected score 7.5, got %v", out.RelevanceScore)
	}
	if out.Category != core.CategoryResearch {
		t.Errorf("expected research category, got %q", out.Category)
	}
}

func TestParseDigest_PlainFence(t *testing.T) {
	raw := "```\n{\"title\": \"T\", \"summary\": \"S\", \"relevance_score\": 3, \"reasoning\": \"R\"}\n```"

	out, err := ParseDigest(raw)
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if *out.RelevanceScore != 3 {
		t.Errorf("expected score 3, got %v", *out.RelevanceScore)
	}
}

func TestParseDigest_RawJSON(t *testing.T) {
	raw := `{"title": "T", "summary": "S", "relevance_score": 10, "reasoning": "R", "category": "news"}`

	out, err := ParseDigest(raw)
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if out.Category != core.CategoryNews {
		t.Errorf("expected news, got %q", out.Category)
	}
}

func TestParseDigest_BraceSpanFallback(t *testing.T) {
	raw := `The result is {"title": "T", "summary": "S", "relevance_score": 5, "reasoning": "R"} as requested.`

	out, err := ParseDigest(raw)
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if out.Title != "T" {
		t.Errorf("expected title T, got %q", out.Title)
	}
}

func TestParseDigest_NoJSON(t *testing.T) {
	_, err := ParseDigest("sorry, I cannot help with that")
	if err == nil {
		t.Fatal("expected error for response without JSON")
	}
	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !strings.Contains(err.Error(), "no valid JSON payload") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseDigest_InvalidCategoryFallsBack(t *testing.T) {
	raw := `{"title": "T", "summary": "S", "relevance_score": 5, "reasoning": "R", "category": "blockchain"}`

	out, err := ParseDigest(raw)
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if out.Category != core.CategoryOthers {
		t.Errorf("expected fallback to others, got %q", out.Category)
	}
}

func TestParseDigest_EmptyCategoryFallsBack(t *testing.T) {
	raw := `{"title": "T", "summary": "S", "relevance_score": 5, "reasoning": "R"}`

	out, err := ParseDigest(raw)
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if out.Category != core.CategoryOthers {
		t.Errorf("expected others, got %q", out.Category)
	}
}

func TestParseDigest_ScoreOutOfRange(t *testing.T) {
	for _, raw := range []string{
		`{"title": "T", "summary": "S", "relevance_score": 11, "reasoning": "R"}`,
		`{"title": "T", "summary": "S", "relevance_score": -0.5, "reasoning": "R"}`,
	} {
		if _, err := ParseDigest(raw); err == nil {
			t.Errorf("expected range error for %s", raw)
		}
	}
}

func TestParseDigest_MissingRequiredFields(t *testing.T) {
	for name, raw := range map[string]string{
		"no title":   `{"summary": "S", "relevance_score": 5, "reasoning": "R"}`,
		"no summary": `{"title": "T", "relevance_score": 5, "reasoning": "R"}`,
		"no score":   `{"title": "T", "summary": "S", "reasoning": "R"}`,
	} {
		if _, err := ParseDigest(raw); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseIntroduction(t *testing.T) {
	raw := "```json\n{\"greeting\": \"Hey Michael, here is your digest.\", \"introduction\": \"Today covers agents.\"}\n```"

	intro, err := ParseIntroduction(raw)
	if err != nil {
		t.Fatalf("ParseIntroduction failed: %v", err)
	}
	if !strings.HasPrefix(intro.Greeting, "Hey Michael") {
		t.Errorf("unexpected greeting: %q", intro.Greeting)
	}
}

func TestParseIntroduction_MissingGreeting(t *testing.T) {
	if _, err := ParseIntroduction(`{"introduction": "I"}`); err == nil {
		t.Fatal("expected error for missing greeting")
	}
}

func TestInto_NestedBracesInFallback(t *testing.T) {
	raw := `noise {"title": "T", "meta": {"inner": 1}} trailing`

	var v map[string]any
	if err := Into(raw, &v); err != nil {
		t.Fatalf("Into failed: %v", err)
	}
	if v["title"] != "T" {
		t.Errorf("expected title T, got %v", v["title"])
	}
}
