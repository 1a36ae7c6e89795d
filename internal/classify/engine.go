package classify

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/productlens/backend/internal/storage/models"
	"github.com/productlens/backend/internal/taxonomy"
	"github.com/productlens/backend/pkg/logger"
)

const (
	maxConfidence  = 0.95
	categoryWeight = 0.15
	pathSeparator  = " > "
)

// Source weights: URL and title are the cleanest signals.
const (
	weightURL         = 6
	weightTitle       = 4
	weightBreadcrumbs = 3
	weightSpecs       = 2
	weightDescription = 2
)

// depthBonusPerLevel makes a deeper category always outrank a shallower
// ancestor on frequency ties.
const depthBonusPerLevel = 50

var confidenceWeights = []struct {
	Type   models.TagType
	Weight float64
}{
	{models.TagColors, 0.10},
	{models.TagMaterials, 0.15},
	{models.TagActivities, 0.10},
	{models.TagStyles, 0.15},
	{models.TagFeatures, 0.15},
	{models.TagFit, 0.10},
	{models.TagOccasions, 0.10},
}

// Engine classifies free-text product data against the cached taxonomy
// snapshot. A taxonomy load failure degrades every Classify call to a
// zero-confidence result instead of erroring; this is an enrichment signal,
// not a critical path.
type Engine struct {
	taxonomy            *taxonomy.Cache
	rules               []PhraseOverrideRule
	enrichmentThreshold float64
}

func NewEngine(cache *taxonomy.Cache, enrichmentThreshold float64) *Engine {
	if enrichmentThreshold <= 0 {
		enrichmentThreshold = 0.70
	}
	return &Engine{
		taxonomy:            cache,
		rules:               DefaultPhraseOverrides,
		enrichmentThreshold: enrichmentThreshold,
	}
}

// SetPhraseOverrides replaces the ordered phrase-override rule set.
func (e *Engine) SetPhraseOverrides(rules []PhraseOverrideRule) {
	e.rules = rules
}

// RefreshTaxonomy reloads the taxonomy snapshot. With force=false it only
// loads when no snapshot exists yet.
func (e *Engine) RefreshTaxonomy(ctx context.Context, force bool) error {
	return e.taxonomy.Refresh(ctx, force)
}

func (e *Engine) Classify(ctx context.Context, product ProductData) ClassificationResult {
	snap, err := e.taxonomy.Snapshot(ctx)
	if err != nil {
		logger.Warn("Taxonomy unavailable, returning degraded result", zap.Error(err))
		return degradedResult()
	}

	st := assembleSearchText(product)

	overridePath := matchOverride(e.rules, st.haystack)

	tags := matchTags(snap, st.haystack)

	var matches []CategoryMatch
	if overridePath == "" {
		matches = matchCategories(snap, st)
	}

	gender := detectGender(st)
	matches = filterByGender(matches, gender)

	var primary string
	var pathSegments []string
	switch {
	case overridePath != "":
		primary = overridePath
		pathSegments = splitPath(overridePath)
	case len(matches) > 0:
		pathSegments = matches[0].MatchedPath
		primary = strings.Join(pathSegments, pathSeparator)
	}

	if len(pathSegments) > 0 {
		tags = pruneTagsForDepartment(tags, pathSegments[0])
	}
	grouped := groupTagsByType(tags)

	confidence := confidenceScore(grouped, primary != "")

	result := ClassificationResult{
		PrimaryCategory: primary,
		CategoryPath:    pathSegments,
		Gender:          gender,
		Tags:            tags,
		TagsByType:      grouped,
		CategoryMatches: matches,
		ConfidenceScore: confidence,
		NeedsEnrichment: confidence < e.enrichmentThreshold,
	}

	logger.Debug("Product classified",
		zap.String("primary_category", primary),
		zap.String("gender", gender),
		zap.Int("tags", len(tags)),
		zap.Float64("confidence", confidence),
		zap.Bool("override", overridePath != ""),
	)

	return result
}

func matchTags(snap *taxonomy.Snapshot, haystack string) []TagMatch {
	var tags []TagMatch
	for _, tag := range snap.Tags {
		if countMatches(wordPattern(tag.Name), haystack) > 0 {
			tags = append(tags, TagMatch{Name: tag.Name, Slug: tag.Slug, Type: tag.Type})
		}
	}
	return tags
}

func matchCategories(snap *taxonomy.Snapshot, st searchText) []CategoryMatch {
	var matches []CategoryMatch

	for _, cat := range snap.Categories {
		pattern := pluralPattern(cat.Name)
		if countMatches(pattern, st.haystack) == 0 {
			continue
		}

		counts := SourceCounts{
			Breadcrumbs: countMatches(pattern, st.breadcrumbs),
			Title:       countMatches(pattern, st.title),
			URL:         countMatches(pattern, st.urlKeywords),
			Description: countMatches(pattern, st.description),
			Specs:       countMatches(pattern, st.specs),
		}

		frequency := counts.URL*weightURL +
			counts.Title*weightTitle +
			counts.Breadcrumbs*weightBreadcrumbs +
			counts.Specs*weightSpecs +
			counts.Description*weightDescription
		depthBonus := snap.AncestorCount(cat) * depthBonusPerLevel

		matches = append(matches, CategoryMatch{
			Category:       cat,
			MatchedPath:    snap.Path(cat),
			PerSource:      counts,
			FrequencyScore: frequency,
			DepthBonus:     depthBonus,
			FinalScore:     frequency + depthBonus,
		})
	}

	// Stable: ties keep discovery order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].FinalScore > matches[j].FinalScore
	})

	return matches
}

func confidenceScore(grouped map[models.TagType][]TagMatch, categoryMatched bool) float64 {
	score := 0.0
	for _, w := range confidenceWeights {
		if len(grouped[w.Type]) > 0 {
			score += w.Weight
		}
	}
	if categoryMatched {
		score += categoryWeight
	}
	if score > maxConfidence {
		score = maxConfidence
	}
	return math.Round(score*100) / 100
}

func splitPath(path string) []string {
	parts := strings.Split(path, ">")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func degradedResult() ClassificationResult {
	return ClassificationResult{
		Tags:            []TagMatch{},
		TagsByType:      map[models.TagType][]TagMatch{},
		ConfidenceScore: 0,
		NeedsEnrichment: true,
	}
}
