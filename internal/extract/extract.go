// Package extract recovers structured data from raw model output. Models
// asked for JSON frequently wrap it in prose or markdown fences; the
// recovery order here mirrors what those responses look like in practice.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"curator/internal/core"
)

// Error indicates that no valid structured payload could be recovered from
// the model output. The last underlying parse or validation error is
// attached.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DigestOutput is the shape the scoring prompt asks the model to return.
type DigestOutput struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	RelevanceScore *float64 `json:"relevance_score"`
	Reasoning      string   `json:"reasoning"`
	Category       string   `json:"category"`
}

// Introduction is the shape the email introduction prompt asks for.
type Introduction struct {
	Greeting     string `json:"greeting"`
	Introduction string `json:"introduction"`
}

// Into recovers a JSON payload from raw model text and unmarshals it into v.
// Attempts, first success wins: a ```json fenced block, then any fenced
// block, then the raw text itself, and finally the first {...} span found by
// a greedy brace scan. Returns *Error when every attempt fails.
func Into(raw string, v any) error {
	candidate := raw
	if block, ok := fencedBlock(raw, "json"); ok {
		candidate = block
	} else if block, ok := fencedBlock(raw, ""); ok {
		candidate = block
	}

	lastErr := json.Unmarshal([]byte(strings.TrimSpace(candidate)), v)
	if lastErr == nil {
		return nil
	}

	if candidate != raw {
		err := json.Unmarshal([]byte(strings.TrimSpace(raw)), v)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if span, ok := braceSpan(raw); ok {
		err := json.Unmarshal([]byte(span), v)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return &Error{Reason: "no valid JSON payload in model output", Err: lastErr}
}

// ParseDigest recovers and validates a DigestOutput. A score outside [0, 10]
// or a missing title/summary/score is an extraction error; an unknown
// category is not critical and falls back to the default instead.
func ParseDigest(raw string) (*DigestOutput, error) {
	var out DigestOutput
	if err := Into(raw, &out); err != nil {
		return nil, err
	}

	if strings.TrimSpace(out.Title) == "" {
		return nil, &Error{Reason: "digest output has no title"}
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, &Error{Reason: "digest output has no summary"}
	}
	if out.RelevanceScore == nil {
		return nil, &Error{Reason: "digest output has no relevance score"}
	}
	if *out.RelevanceScore < 0.0 || *out.RelevanceScore > 10.0 {
		return nil, &Error{Reason: fmt.Sprintf("relevance score %.2f outside [0.0, 10.0]", *out.RelevanceScore)}
	}
	if !core.ValidCategory(out.Category) {
		out.Category = core.CategoryOthers
	}

	return &out, nil
}

// ParseIntroduction recovers and validates an email Introduction.
func ParseIntroduction(raw string) (*Introduction, error) {
	var out Introduction
	if err := Into(raw, &out); err != nil {
		return nil, err
	}

	if strings.TrimSpace(out.Greeting) == "" {
		return nil, &Error{Reason: "introduction has no greeting"}
	}
	if strings.TrimSpace(out.Introduction) == "" {
		return nil, &Error{Reason: "introduction has no body"}
	}

	return &out, nil
}

// fencedBlock extracts the contents of the first markdown fence. With a tag,
// only a fence opened as ```<tag> matches; with an empty tag, any fence does.
func fencedBlock(raw, tag string) (string, bool) {
	open := "```" + tag
	start := strings.Index(raw, open)
	if start < 0 {
		return "", false
	}
	start += len(open)

	end := strings.Index(raw[start:], "```")
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(raw[start : start+end]), true
}

// braceSpan returns the greedy {...} span: from the first opening brace to
// the last closing brace in the text.
func braceSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
