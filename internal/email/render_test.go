package email

import (
	"strings"
	"testing"

	"curator/internal/core"
	"curator/internal/extract"
)

func sampleIntro() extract.Introduction {
	return extract.Introduction{
		Greeting:     "Hey Michael, here is your daily digest of AI news for August 30, 2026.",
		Introduction: "Today covers agents and retrieval.",
	}
}

func sampleArticles() []core.Digest {
	score := 8.5
	return []core.Digest{
		{
			ID:             "feed:openai:a",
			Title:          "Agents Land in Production",
			Summary:        "Teams are shipping agents.",
			URL:            "https://example.com/a",
			RelevanceScore: &score,
		},
		{
			ID:             "feed:openai:b",
			Title:          "RAG Revisited",
			Summary:        "Retrieval still matters.",
			URL:            "https://example.com/b",
			RelevanceScore: &score,
		},
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		greeting string
		want     string
	}{
		{
			"Hey Michael, here is your daily digest of AI news for August 30, 2026.",
			"Daily AI News Digest - August 30, 2026",
		},
		{
			"Hello there!",
			"Daily AI News Digest - Today",
		},
		{
			"",
			"Daily AI News Digest - Today",
		},
	}

	for _, tt := range tests {
		if got := Subject(tt.greeting); got != tt.want {
			t.Errorf("Subject(%q) = %q, want %q", tt.greeting, got, tt.want)
		}
	}
}

func TestRender_Markdown(t *testing.T) {
	msg, err := Render(sampleIntro(), sampleArticles())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{
		"Hey Michael",
		"## Agents Land in Production",
		"[Read more →](https://example.com/a)",
		"## RAG Revisited",
		"---",
	} {
		if !strings.Contains(msg.Markdown, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRender_HTML(t *testing.T) {
	msg, err := Render(sampleIntro(), sampleArticles())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Hey Michael",
		"<h2>Agents Land in Production</h2>",
		`href="https://example.com/a"`,
	} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRender_HTMLEscapesContent(t *testing.T) {
	articles := sampleArticles()
	articles[0].Title = `<script>alert("x")</script>`

	msg, err := Render(sampleIntro(), articles)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if strings.Contains(msg.HTML, "<script>alert") {
		t.Error("article title not escaped in HTML body")
	}
}

func TestRender_EmptyArticles(t *testing.T) {
	msg, err := Render(sampleIntro(), nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(msg.Markdown, "Hey Michael") {
		t.Error("greeting missing from markdown")
	}
	if strings.Contains(msg.HTML, "<h2>") {
		t.Error("no article headings expected")
	}
}
