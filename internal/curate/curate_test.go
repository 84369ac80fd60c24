package curate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"curator/internal/core"
	"curator/internal/store"
)

// fakeGenerator returns canned responses keyed by a substring of the prompt,
// or an error for prompts matching failOn.
type fakeGenerator struct {
	failOn  string
	badOn   string
	score   float64
	calls   int
	prompts []string
}

func (f *fakeGenerator) Complete(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)

	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return "", errors.New("model unavailable")
	}
	if f.badOn != "" && strings.Contains(prompt, f.badOn) {
		return "I'm sorry, I can't produce JSON for this one.", nil
	}

	return fmt.Sprintf(
		`{"title": "Digest Title", "summary": "A summary.", "relevance_score": %.1f, "reasoning": "Relevant.", "category": "news"}`,
		f.score,
	), nil
}

func testProfile() core.Profile {
	return core.Profile{
		ID:             "michael",
		Name:           "Michael",
		Email:          "michael@example.com",
		Background:     "MSCS student",
		Interests:      []string{"LLMs"},
		Preferences:    map[string]string{"prefer_practical": "true"},
		ExpertiseLevel: "Medium",
		Active:         true,
	}
}

func testItem(localID string) core.ContentItem {
	return core.ContentItem{
		SourceKind:    "feed:openai",
		SourceLocalID: localID,
		Title:         "Title " + localID,
		Body:          "Body " + localID,
		URL:           "https://example.com/" + localID,
		PublishedAt:   time.Now().UTC(),
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestScoreBatch(t *testing.T) {
	st := newTestStore(t)
	gen := &fakeGenerator{score: 8.5}
	curator := NewCurator(gen, st, 0.7, 8000)

	items := []core.ContentItem{testItem("a"), testItem("b")}
	summary, err := curator.ScoreBatch(context.Background(), testProfile(), items)
	if err != nil {
		t.Fatalf("ScoreBatch failed: %v", err)
	}

	if summary.Total != 2 || summary.Processed != 2 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	digests, err := st.RecentDigests("michael", time.Now().UTC().Add(-time.Hour), false)
	if err != nil {
		t.Fatalf("RecentDigests failed: %v", err)
	}
	if len(digests) != 2 {
		t.Fatalf("expected 2 digests, got %d", len(digests))
	}
	if *digests[0].RelevanceScore != 8.5 {
		t.Errorf("unexpected score: %v", *digests[0].RelevanceScore)
	}
	if digests[0].ID != "feed:openai:a" && digests[1].ID != "feed:openai:a" {
		t.Errorf("composite ids not used: %q, %q", digests[0].ID, digests[1].ID)
	}
}

func TestScoreBatch_FailuresAreIsolated(t *testing.T) {
	st := newTestStore(t)
	gen := &fakeGenerator{score: 7.0, failOn: "Title b"}
	curator := NewCurator(gen, st, 0.7, 8000)

	items := []core.ContentItem{testItem("a"), testItem("b"), testItem("c")}
	summary, err := curator.ScoreBatch(context.Background(), testProfile(), items)
	if err != nil {
		t.Fatalf("ScoreBatch failed: %v", err)
	}

	if summary.Total != 3 || summary.Processed != 2 || summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	digests, err := st.RecentDigests("michael", time.Now().UTC().Add(-time.Hour), false)
	if err != nil {
		t.Fatalf("RecentDigests failed: %v", err)
	}
	if len(digests) != 2 {
		t.Errorf("expected 2 digests despite one failure, got %d", len(digests))
	}
}

func TestScoreBatch_UnparseableResponseCountsAsFailed(t *testing.T) {
	st := newTestStore(t)
	gen := &fakeGenerator{score: 7.0, badOn: "Title b"}
	curator := NewCurator(gen, st, 0.7, 8000)

	items := []core.ContentItem{testItem("a"), testItem("b")}
	summary, err := curator.ScoreBatch(context.Background(), testProfile(), items)
	if err != nil {
		t.Fatalf("ScoreBatch failed: %v", err)
	}

	if summary.Processed != 1 || summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestScoreBatch_SecondRunCountsExisting(t *testing.T) {
	st := newTestStore(t)
	gen := &fakeGenerator{score: 6.0}
	curator := NewCurator(gen, st, 0.7, 8000)

	items := []core.ContentItem{testItem("a")}
	if _, err := curator.ScoreBatch(context.Background(), testProfile(), items); err != nil {
		t.Fatalf("ScoreBatch failed: %v", err)
	}

	summary, err := curator.ScoreBatch(context.Background(), testProfile(), items)
	if err != nil {
		t.Fatalf("ScoreBatch failed: %v", err)
	}
	if summary.Processed != 0 || summary.Existing != 1 {
		t.Errorf("expected existing digest, got %+v", summary)
	}
}

func TestScoreBatch_BodyTruncatedInPrompt(t *testing.T) {
	st := newTestStore(t)
	gen := &fakeGenerator{score: 5.0}
	curator := NewCurator(gen, st, 0.7, 100)

	item := testItem("a")
	item.Body = strings.Repeat("x", 500)

	if _, err := curator.ScoreBatch(context.Background(), testProfile(), []core.ContentItem{item}); err != nil {
		t.Fatalf("ScoreBatch failed: %v", err)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(gen.prompts))
	}
	if strings.Contains(gen.prompts[0], strings.Repeat("x", 101)) {
		t.Error("body was not truncated in prompt")
	}
}

func TestScoreBatch_ContextCancelled(t *testing.T) {
	st := newTestStore(t)
	gen := &fakeGenerator{score: 5.0}
	curator := NewCurator(gen, st, 0.7, 8000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := curator.ScoreBatch(ctx, testProfile(), []core.ContentItem{testItem("a")})
	if err == nil {
		t.Fatal("expected context error")
	}
	if summary.Total != 1 {
		t.Errorf("summary should still report totals: %+v", summary)
	}
	if gen.calls != 0 {
		t.Errorf("no model calls expected after cancellation, got %d", gen.calls)
	}
}

func TestSystemPrompt_IncludesProfile(t *testing.T) {
	prompt := SystemPrompt(testProfile())

	for _, want := range []string{"Michael", "MSCS student", "LLMs", "prefer_practical: true", "Medium"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestItemPrompt_ListsCategories(t *testing.T) {
	prompt := ItemPrompt(testItem("a"), 8000)
	if !strings.Contains(prompt, strings.Join(core.Categories, ", ")) {
		t.Error("prompt should list the valid categories")
	}
}
