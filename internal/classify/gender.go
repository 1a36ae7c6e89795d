package classify

import "strings"

// genderTokens are explicit gender markers, checked as whole words.
var genderTokens = []string{"men", "women", "unisex", "boys", "girls", "kids"}

// Keyword vocabularies for inference when no explicit token is present.
// The women-indicative vocabulary is checked first.
var (
	womenKeywords = []string{"dress", "skirt", "blouse", "heels", "bra", "legging", "maternity", "her"}
	menKeywords   = []string{"beard", "aftershave", "necktie", "boxer", "tuxedo", "his"}
)

// detectGender resolves gender in priority order: an explicit token in the
// breadcrumb text wins outright, then the same token anywhere in the
// haystack, then keyword inference. Returns "" when nothing matches.
func detectGender(st searchText) string {
	for _, token := range genderTokens {
		if countMatches(wordPattern(token), st.breadcrumbs) > 0 {
			return token
		}
	}

	for _, token := range genderTokens {
		if countMatches(wordPattern(token), st.haystack) > 0 {
			return token
		}
	}

	for _, keyword := range womenKeywords {
		if countMatches(wordPattern(keyword), st.haystack) > 0 {
			return "women"
		}
	}
	for _, keyword := range menKeywords {
		if countMatches(wordPattern(keyword), st.haystack) > 0 {
			return "men"
		}
	}

	return ""
}

// filterByGender keeps matches whose path contains the gender segment
// (boys/girls map to kids). The filter is discarded when it would eliminate
// every match; departments without gender segmentation pass through
// untouched that way.
func filterByGender(matches []CategoryMatch, gender string) []CategoryMatch {
	if gender == "" || len(matches) <= 1 {
		return matches
	}

	segment := gender
	if gender == "boys" || gender == "girls" {
		segment = "kids"
	}

	var filtered []CategoryMatch
	for _, match := range matches {
		for _, name := range match.MatchedPath {
			if strings.EqualFold(name, segment) {
				filtered = append(filtered, match)
				break
			}
		}
	}

	if len(filtered) == 0 {
		return matches
	}
	return filtered
}
