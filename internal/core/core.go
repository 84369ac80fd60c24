package core

import "time"

// Content categories a digest can be classified under. The model is asked
// to pick one of these; anything else falls back to CategoryOthers.
const (
	CategoryTechnique    = "technique"    // New methods, algorithms, approaches
	CategoryResearch     = "research"     // Research papers, academic work
	CategoryEducation    = "education"    // Tutorials, learning content
	CategoryAnnouncement = "announcement" // Product launches, company news
	CategoryAnalysis     = "analysis"     // Deep dives, analysis pieces
	CategoryTutorial     = "tutorial"     // How-to guides, step-by-step
	CategoryOpinion      = "opinion"      // Opinion pieces, editorials
	CategoryNews         = "news"         // General news updates
	CategoryOthers       = "others"       // Everything else
)

// Categories lists every valid content category, in prompt order.
var Categories = []string{
	CategoryTechnique,
	CategoryResearch,
	CategoryEducation,
	CategoryAnnouncement,
	CategoryAnalysis,
	CategoryTutorial,
	CategoryOpinion,
	CategoryNews,
	CategoryOthers,
}

// ValidCategory reports whether c is a member of the closed category set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ContentItem is the normalized unit of source material. All pipeline stages
// downstream of the normalizer consume only this shape; source-specific
// records never leak past the sources package.
type ContentItem struct {
	SourceKind    string    `json:"source_kind"`     // e.g. "youtube", "feed:openai"
	SourceLocalID string    `json:"source_local_id"` // video id or feed guid
	Title         string    `json:"title"`
	Body          string    `json:"body"`     // description/transcript text, already sanitized
	URL           string    `json:"url"`
	Category      string    `json:"category"` // feed-provided category, may be empty
	PublishedAt   time.Time `json:"published_at"` // always UTC
}

// CompositeID returns the globally unique dedup key for the item.
func (i ContentItem) CompositeID() string {
	return i.SourceKind + ":" + i.SourceLocalID
}

// Digest is the scored, summarized record produced for one content item
// under one profile. Keyed by (ID, ProfileID) so that one profile's scoring
// pass never observes or overwrites another's.
type Digest struct {
	ID             string     `json:"id"`         // composite id of the source item
	ProfileID      string     `json:"profile_id"`
	SourceKind     string     `json:"source_kind"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Summary        string     `json:"summary"`
	RelevanceScore *float64   `json:"relevance_score"` // nil means unscored
	Reasoning      string     `json:"reasoning"`
	Category       string     `json:"category"`
	CreatedAt      time.Time  `json:"created_at"`
	SentAt         *time.Time `json:"sent_at"` // nil until delivered, set at most once
}

// Scored reports whether the digest carries a relevance score.
func (d Digest) Scored() bool {
	return d.RelevanceScore != nil
}

// Profile is a named set of interests, free-text preferences and an
// expertise level. The pipeline treats it as a read-only value for the
// duration of one run.
type Profile struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Title          string            `json:"title"`
	Background     string            `json:"background"`
	Interests      []string          `json:"interests"`
	Preferences    map[string]string `json:"preferences"`
	ExpertiseLevel string            `json:"expertise_level"`
	Active         bool              `json:"active"`
}

// ScoreSummary is the aggregate result of one scoring pass.
// Processed + Failed + Existing == Total; Existing counts items whose digest
// already existed and were therefore neither scored nor failed.
type ScoreSummary struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Existing  int `json:"existing"`
}

// DeliverySummary is the result of one delivery attempt for one profile.
type DeliverySummary struct {
	Sent         bool   `json:"sent"`
	Skipped      bool   `json:"skipped"`
	Subject      string `json:"subject,omitempty"`
	ArticleCount int    `json:"article_count"`
	MarkedSent   int    `json:"marked_sent"`
	Message      string `json:"message,omitempty"`
}

// SourceResult records the outcome of one collector during ingestion.
type SourceResult struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// ProfileResult bundles one profile's scoring and delivery outcomes.
type ProfileResult struct {
	ProfileID string          `json:"profile_id"`
	Scoring   ScoreSummary    `json:"scoring"`
	Delivery  DeliverySummary `json:"delivery"`
	Error     string          `json:"error,omitempty"`
}

// RunSummary is the structured result of a full pipeline run. It is always
// returned, even when some units failed, so callers can tell a fully failed
// run from a partially degraded one.
type RunSummary struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Sources    []SourceResult  `json:"sources"`
	Profiles   []ProfileResult `json:"profiles"`
	Success    bool            `json:"success"`
}
