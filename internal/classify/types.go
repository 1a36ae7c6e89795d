package classify

import (
	"encoding/json"

	"github.com/productlens/backend/internal/storage/models"
)

// Breadcrumbs accepts either a JSON array of crumbs or a single delimited
// string ("Home > Men > Jeans"). Malformed input degrades to an empty list.
type Breadcrumbs []string

func (b *Breadcrumbs) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*b = list
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*b = splitBreadcrumbs(raw)
		return nil
	}

	*b = nil
	return nil
}

type ProductData struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Specs       string      `json:"specs"`
	Breadcrumbs Breadcrumbs `json:"breadcrumbs"`
	Brand       string      `json:"brand"`
	URL         string      `json:"url"`
	Images      []string    `json:"images"`
}

type TagMatch struct {
	Name string         `json:"name"`
	Slug string         `json:"slug"`
	Type models.TagType `json:"type"`
}

// SourceCounts holds per-source whole-word occurrence counts for one
// category name (singular plus regular plural forms).
type SourceCounts struct {
	Breadcrumbs int `json:"breadcrumbs"`
	Title       int `json:"title"`
	URL         int `json:"url"`
	Description int `json:"description"`
	Specs       int `json:"specs"`
}

type CategoryMatch struct {
	Category       models.Category `json:"-"`
	MatchedPath    []string        `json:"matched_path"`
	PerSource      SourceCounts    `json:"per_source_counts"`
	FrequencyScore int             `json:"frequency_score"`
	DepthBonus     int             `json:"depth_bonus"`
	FinalScore     int             `json:"final_score"`
}

type ClassificationResult struct {
	PrimaryCategory string                          `json:"primary_category,omitempty"`
	CategoryPath    []string                        `json:"category_path,omitempty"`
	Gender          string                          `json:"gender,omitempty"`
	Tags            []TagMatch                      `json:"tags"`
	TagsByType      map[models.TagType][]TagMatch   `json:"tags_by_type"`
	CategoryMatches []CategoryMatch                 `json:"category_matches,omitempty"`
	ConfidenceScore float64                         `json:"confidence_score"`
	NeedsEnrichment bool                            `json:"needs_enrichment"`
}
