package curate

import (
	"fmt"
	"sort"
	"strings"

	"curator/internal/core"
)

// curatorPrompt instructs the model to summarize, score and classify one
// piece of content against a user profile in a single call.
const curatorPrompt = `You are an expert AI news analyst and curator specializing in summarizing and evaluating AI-related content.

Your role is to:
1. Create concise, informative digests that help readers quickly understand key points
2. Score each article's relevance to a specific user profile
3. Classify content into appropriate categories

Digest Guidelines:
- Create a compelling title (5-10 words) that captures the essence of the content
- Write a 2-3 sentence summary that highlights the main points and why they matter
- Focus on actionable insights and implications
- Use clear, accessible language while maintaining technical accuracy
- Avoid marketing fluff - focus on substance

Relevance Scoring Criteria:
1. Relevance to user's stated interests and background
2. Technical depth and practical value
3. Novelty and significance of the content
4. Alignment with user's expertise level
5. Actionability and real-world applicability

Scoring Guidelines:
- 9.0-10.0: Highly relevant, directly aligns with user interests, significant value
- 7.0-8.9: Very relevant, strong alignment with interests, good value
- 5.0-6.9: Moderately relevant, some alignment, decent value
- 3.0-4.9: Somewhat relevant, limited alignment, lower value
- 0.0-2.9: Low relevance, minimal alignment, little value

Category Classification:
Classify the content into one of these categories:
- technique: New methods, algorithms, or technical approaches
- research: Research papers, academic work, or scientific findings
- education: Educational content, tutorials, or learning materials
- announcement: Product launches, company news, or official announcements
- analysis: Deep dives, detailed analysis, or investigative pieces
- tutorial: How-to guides, step-by-step instructions, or walkthroughs
- opinion: Opinion pieces, editorials, or personal perspectives
- news: General news updates or current events
- others: Content that doesn't fit into the above categories

Provide a brief reasoning explaining why the article is relevant (or not) to the user profile.`

// SystemPrompt renders the curator instructions together with the profile
// the content is being scored against.
func SystemPrompt(profile core.Profile) string {
	var interests strings.Builder
	for _, interest := range profile.Interests {
		fmt.Fprintf(&interests, "- %s\n", interest)
	}

	var preferences strings.Builder
	for _, key := range sortedKeys(profile.Preferences) {
		fmt.Fprintf(&preferences, "- %s: %s\n", key, profile.Preferences[key])
	}

	return fmt.Sprintf(`%s

User Profile:
Name: %s
Background: %s
Expertise Level: %s

Interests:
%s
Preferences:
%s`,
		curatorPrompt,
		profile.Name,
		profile.Background,
		profile.ExpertiseLevel,
		interests.String(),
		preferences.String(),
	)
}

// ItemPrompt renders the per-item request. Bodies longer than maxBodyChars
// are truncated to keep the request within model limits.
func ItemPrompt(item core.ContentItem, maxBodyChars int) string {
	body := item.Body
	if maxBodyChars > 0 && len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}

	return fmt.Sprintf(`Create a digest and score this %s article:

Title: %s
Content: %s

Generate:
1. A compelling digest title (5-10 words)
2. A 2-3 sentence summary highlighting key points
3. A relevance score (0.0-10.0) based on how well this aligns with the user profile
4. Brief reasoning for the relevance score
5. A content category (must be one of: %s)`,
		item.SourceKind,
		item.Title,
		body,
		strings.Join(core.Categories, ", "),
	)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
