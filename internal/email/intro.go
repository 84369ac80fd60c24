// Package email generates, renders and delivers the digest email.
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"curator/internal/core"
	"curator/internal/extract"
	"curator/internal/llm"
	"curator/internal/logger"
)

const introPrompt = `You are an expert email writer specializing in creating engaging, personalized AI news digests.

Your role is to write a warm, professional introduction for a daily AI news digest email that:
- Greets the user by name
- Includes the current date
- Provides a brief, engaging overview of what's coming in the top ranked articles
- Highlights the most interesting or important themes
- Sets expectations for the content ahead

Keep it concise (2-3 sentences for the introduction), friendly, and professional.`

// Introducer writes the personalized greeting and introduction for one
// digest email.
type Introducer struct {
	generator   llm.Generator
	temperature float32
}

// NewIntroducer creates an introducer backed by the given generator.
func NewIntroducer(generator llm.Generator, temperature float32) *Introducer {
	if temperature == 0 {
		temperature = 0.7
	}
	return &Introducer{generator: generator, temperature: temperature}
}

// Introduction generates the greeting and introduction for the given
// articles. Model failures never block delivery: any error falls back to a
// deterministic greeting, and a greeting that does not address the user by
// name is replaced with the fallback as well.
func (in *Introducer) Introduction(ctx context.Context, profile core.Profile, articles []core.Digest, date time.Time) extract.Introduction {
	fallbackGreeting := fmt.Sprintf(
		"Hey %s, here is your daily digest of AI news for %s.",
		profile.Name, date.Format("January 2, 2006"),
	)

	if len(articles) == 0 {
		return extract.Introduction{
			Greeting:     fallbackGreeting,
			Introduction: "No articles were ranked today.",
		}
	}

	var summaries strings.Builder
	for i, article := range articles {
		score := 0.0
		if article.RelevanceScore != nil {
			score = *article.RelevanceScore
		}
		fmt.Fprintf(&summaries, "%d. %s (Score: %.1f/10)\n", i+1, article.Title, score)
	}

	prompt := fmt.Sprintf(`%s

Create an email introduction for %s for %s.

Top ranked articles:
%s
Generate a greeting and introduction that previews these articles.`,
		introPrompt, profile.Name, date.Format("January 2, 2006"), summaries.String())

	fallback := extract.Introduction{
		Greeting: fallbackGreeting,
		Introduction: fmt.Sprintf(
			"Here are the top %d AI news articles ranked by relevance to your interests.",
			len(articles),
		),
	}

	raw, err := in.generator.Complete(ctx, prompt, llm.IntroductionSchema(), in.temperature)
	if err != nil {
		logger.Warn("Introduction generation failed, using fallback", "profile", profile.ID, "error", err)
		return fallback
	}

	intro, err := extract.ParseIntroduction(raw)
	if err != nil {
		logger.Warn("Unusable introduction response, using fallback", "profile", profile.ID, "error", err)
		return fallback
	}

	if !strings.HasPrefix(intro.Greeting, "Hey "+profile.Name) {
		intro.Greeting = fallbackGreeting
	}

	return *intro
}
