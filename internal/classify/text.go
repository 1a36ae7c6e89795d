package classify

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	breadcrumbDelimiters = regexp.MustCompile(`[/>|]|›|»`)
	skuPattern           = regexp.MustCompile(`^[A-Z0-9]{8,}$`)
	segmentSeparators    = strings.NewReplacer("-", " ", "_", " ")
)

// searchText is the assembled haystack plus the per-source lowered texts the
// category scorer counts against.
type searchText struct {
	haystack    string
	title       string
	urlKeywords string
	breadcrumbs string
	description string
	specs       string
}

func splitBreadcrumbs(raw string) []string {
	parts := breadcrumbDelimiters.Split(raw, -1)
	crumbs := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			crumbs = append(crumbs, part)
		}
	}
	return crumbs
}

// filterBreadcrumbs drops a trailing crumb that duplicates the title; sites
// frequently append the product title as the last breadcrumb.
func filterBreadcrumbs(crumbs []string, title string) []string {
	if len(crumbs) == 0 {
		return nil
	}

	last := truncate(strings.ToLower(strings.TrimSpace(crumbs[len(crumbs)-1])), 30)
	titlePrefix := truncate(strings.ToLower(strings.TrimSpace(title)), 30)
	if titlePrefix != "" && last == titlePrefix {
		return crumbs[:len(crumbs)-1]
	}

	return crumbs
}

// urlKeywords extracts searchable words from the URL path: file extensions
// are stripped, long all-caps alphanumeric tokens are assumed to be SKUs and
// discarded, and -/_ become spaces.
func urlKeywords(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	var words []string
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment == "" {
			continue
		}
		if ext := path.Ext(segment); ext != "" {
			segment = strings.TrimSuffix(segment, ext)
		}
		if skuPattern.MatchString(segment) {
			continue
		}
		segment = segmentSeparators.Replace(segment)
		if segment = strings.TrimSpace(segment); segment != "" {
			words = append(words, segment)
		}
	}

	return strings.Join(words, " ")
}

// assembleSearchText builds the three-tier haystack: title + URL keywords +
// breadcrumbs carry the cleanest signal, then specs + brand, then the
// description.
func assembleSearchText(product ProductData) searchText {
	crumbs := filterBreadcrumbs(product.Breadcrumbs, product.Title)

	st := searchText{
		title:       strings.ToLower(product.Title),
		urlKeywords: strings.ToLower(urlKeywords(product.URL)),
		breadcrumbs: strings.ToLower(strings.Join(crumbs, " ")),
		description: strings.ToLower(product.Description),
		specs:       strings.ToLower(product.Specs),
	}

	tiers := []string{
		st.title, st.urlKeywords, st.breadcrumbs,
		st.specs, strings.ToLower(product.Brand),
		st.description,
	}

	var nonEmpty []string
	for _, tier := range tiers {
		if tier != "" {
			nonEmpty = append(nonEmpty, tier)
		}
	}
	st.haystack = strings.Join(nonEmpty, " ")

	return st
}

// escapeTerm prepares a term for whole-word matching. Hyphens and
// underscores in the term match either a hyphen or whitespace, so the tag
// "slim-fit" hits both "slim fit" and "slim-fit".
func escapeTerm(term string) string {
	escaped := regexp.QuoteMeta(strings.ToLower(term))
	escaped = strings.ReplaceAll(escaped, "-", `[\s-]+`)
	escaped = strings.ReplaceAll(escaped, "_", `[\s-]+`)
	return escaped
}

// wordPattern compiles a whole-word matcher for a term. Both the term and
// the search texts are lowercased, so matching is effectively
// case-insensitive.
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + escapeTerm(term) + `\b`)
}

// pluralPattern matches a category name as a whole word, including regular
// plural forms (+s, +es). Longer alternatives come first so "jeans" is
// consumed whole rather than as "jean"+"s".
func pluralPattern(name string) *regexp.Regexp {
	escaped := escapeTerm(name)
	return regexp.MustCompile(`\b(?:` + escaped + `es|` + escaped + `s|` + escaped + `)\b`)
}

func countMatches(pattern *regexp.Regexp, text string) int {
	if text == "" {
		return 0
	}
	return len(pattern.FindAllStringIndex(text, -1))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
