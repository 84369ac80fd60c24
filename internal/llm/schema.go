package llm

import (
	"strings"

	"google.golang.org/genai"

	"curator/internal/core"
)

// DigestSchema returns the response schema enforcing structured digest
// output from the model: title, summary, relevance score, reasoning and
// category.
func DigestSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "Compelling title (5-10 words) that captures the essence of the content",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "2-3 sentence summary highlighting main points and why they matter",
			},
			"relevance_score": {
				Type:        genai.TypeNumber,
				Description: "Relevance score from 0.0 to 10.0 based on the user profile",
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "Brief explanation of why this content is relevant to the user profile",
			},
			"category": {
				Type:        genai.TypeString,
				Description: "Content category. Must be one of: " + strings.Join(core.Categories, ", "),
				Enum:        core.Categories,
			},
		},
		Required: []string{"title", "summary", "relevance_score", "reasoning"},
	}
}

// IntroductionSchema returns the response schema for the email introduction.
func IntroductionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"greeting": {
				Type:        genai.TypeString,
				Description: "Personalized greeting with the user's name and the date",
			},
			"introduction": {
				Type:        genai.TypeString,
				Description: "2-3 sentence overview previewing the top ranked articles",
			},
		},
		Required: []string{"greeting", "introduction"},
	}
}
