package classify

// PhraseOverrideRule forces a category for a known ambiguous phrase,
// bypassing frequency-based matching. Rules are evaluated in declaration
// order; the first match whose ExcludeIf keywords are all absent wins.
type PhraseOverrideRule struct {
	Phrase       string
	ExcludeIf    []string
	CategoryPath string
}

// DefaultPhraseOverrides covers phrases where frequency matching reliably
// picks the wrong branch.
var DefaultPhraseOverrides = []PhraseOverrideRule{
	{
		Phrase:       "tanning bed",
		ExcludeIf:    []string{"pool", "float", "inflatable", "lounger"},
		CategoryPath: "Beauty & Personal Care > Tanning > Tanning Beds",
	},
	{
		Phrase:       "tanning lotion",
		CategoryPath: "Beauty & Personal Care > Tanning > Tanning Lotions",
	},
	{
		Phrase:       "yoga mat",
		CategoryPath: "Sports & Outdoors > Fitness > Yoga Mats",
	},
}

// matchOverride returns the category path of the first surviving rule, or
// "" when no rule applies.
func matchOverride(rules []PhraseOverrideRule, haystack string) string {
	for _, rule := range rules {
		if countMatches(wordPattern(rule.Phrase), haystack) == 0 {
			continue
		}

		excluded := false
		for _, keyword := range rule.ExcludeIf {
			if countMatches(wordPattern(keyword), haystack) > 0 {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		return rule.CategoryPath
	}

	return ""
}
