// Package generic implements the last-resort extraction tier: structured
// data (ld+json), then meta tags, then plain markup heuristics. It knows
// nothing about individual sites.
package generic

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/internal/extraction/resolver"
)

type Strategy struct{}

func NewStrategy() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Extract(ctx context.Context, field resolver.Field, doc page.Accessor) (resolver.StrategyResult, error) {
	switch field {
	case resolver.FieldTitle:
		return s.title(doc), nil
	case resolver.FieldBrand:
		return s.brand(doc), nil
	case resolver.FieldPrice:
		return s.price(doc), nil
	case resolver.FieldDescription:
		return s.description(doc), nil
	case resolver.FieldImages:
		return s.images(doc), nil
	}
	return resolver.StrategyResult{}, fmt.Errorf("unknown field %q", field)
}

func (s *Strategy) title(doc page.Accessor) resolver.StrategyResult {
	if product, ok := parseJSONLD(doc); ok && product.Name != "" {
		return resolver.StrategyResult{Value: product.Name, Selector: "ld+json:name"}
	}
	for _, sel := range []string{`meta[property="og:title"]`, `meta[name="twitter:title"]`} {
		if value := metaContent(doc, sel); value != "" {
			return resolver.StrategyResult{Value: value, Selector: sel}
		}
	}
	if els := doc.Query("h1"); len(els) > 0 {
		return resolver.StrategyResult{Value: strings.TrimSpace(els[0].Text()), Selector: "h1"}
	}
	return resolver.StrategyResult{}
}

func (s *Strategy) brand(doc page.Accessor) resolver.StrategyResult {
	if product, ok := parseJSONLD(doc); ok && product.Brand != "" {
		return resolver.StrategyResult{Value: product.Brand, Selector: "ld+json:brand"}
	}
	if value := metaContent(doc, `meta[property="product:brand"]`); value != "" {
		return resolver.StrategyResult{Value: value, Selector: `meta[property="product:brand"]`}
	}
	if els := doc.Query(`[itemprop="brand"]`); len(els) > 0 {
		el := els[0]
		if content, ok := el.Attr("content"); ok && content != "" {
			return resolver.StrategyResult{Value: content, Selector: `[itemprop="brand"]`}
		}
		return resolver.StrategyResult{Value: strings.TrimSpace(el.Text()), Selector: `[itemprop="brand"]`}
	}
	return resolver.StrategyResult{}
}

// price prefers structured sources because they carry the currency
// explicitly. The markup fallback skips struck-through elements, which
// mark the pre-sale price.
func (s *Strategy) price(doc page.Accessor) resolver.StrategyResult {
	if product, ok := parseJSONLD(doc); ok && product.Price != "" {
		value := strings.TrimSpace(product.Currency + " " + product.Price)
		return resolver.StrategyResult{Value: value, Selector: "ld+json:offers.price"}
	}

	if amount := metaContent(doc, `meta[property="product:price:amount"]`); amount != "" {
		currency := metaContent(doc, `meta[property="product:price:currency"]`)
		return resolver.StrategyResult{
			Value:    strings.TrimSpace(currency + " " + amount),
			Selector: `meta[property="product:price:amount"]`,
		}
	}

	for _, sel := range []string{`[itemprop="price"]`, ".price", `[class*="price"]`} {
		for _, el := range doc.Query(sel) {
			if decoration, ok := el.Style("text-decoration"); ok && strings.Contains(decoration, "line-through") {
				continue
			}
			if content, ok := el.Attr("content"); ok && content != "" {
				return resolver.StrategyResult{Value: content, Selector: sel}
			}
			if text := strings.TrimSpace(el.Text()); text != "" {
				return resolver.StrategyResult{Value: text, Selector: sel}
			}
		}
	}

	return resolver.StrategyResult{}
}

func (s *Strategy) description(doc page.Accessor) resolver.StrategyResult {
	if product, ok := parseJSONLD(doc); ok && product.Description != "" {
		return resolver.StrategyResult{Value: product.Description, Selector: "ld+json:description"}
	}
	for _, sel := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if value := metaContent(doc, sel); value != "" {
			return resolver.StrategyResult{Value: value, Selector: sel}
		}
	}
	if els := doc.Query(`[itemprop="description"]`); len(els) > 0 {
		return resolver.StrategyResult{Value: strings.TrimSpace(els[0].Text()), Selector: `[itemprop="description"]`}
	}
	return resolver.StrategyResult{}
}

func (s *Strategy) images(doc page.Accessor) resolver.StrategyResult {
	if product, ok := parseJSONLD(doc); ok && len(product.Images) > 0 {
		return resolver.StrategyResult{
			Images:   absoluteAll(doc.URL(), product.Images),
			Selector: "ld+json:image",
		}
	}

	var urls []string
	for _, el := range doc.Query(`meta[property="og:image"]`) {
		if content, ok := el.Attr("content"); ok && content != "" {
			urls = append(urls, content)
		}
	}
	if len(urls) > 0 {
		return resolver.StrategyResult{
			Images:   absoluteAll(doc.URL(), urls),
			Selector: `meta[property="og:image"]`,
		}
	}

	for _, el := range doc.Query("img") {
		src, ok := el.Attr("src")
		if !ok || src == "" {
			src, _ = el.Attr("data-src")
		}
		if src != "" {
			urls = append(urls, src)
		}
	}
	if len(urls) > 0 {
		return resolver.StrategyResult{Images: absoluteAll(doc.URL(), urls), Selector: "img"}
	}

	return resolver.StrategyResult{}
}

func metaContent(doc page.Accessor, selector string) string {
	for _, el := range doc.Query(selector) {
		if content, ok := el.Attr("content"); ok {
			if value := strings.TrimSpace(content); value != "" {
				return value
			}
		}
	}
	return ""
}

// absoluteAll resolves relative image references against the page URL.
// Unparseable entries pass through untouched; the resolver's validator
// drops them.
func absoluteAll(pageURL string, refs []string) []string {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return refs
	}

	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := url.Parse(strings.TrimSpace(ref))
		if err != nil {
			out = append(out, ref)
			continue
		}
		out = append(out, base.ResolveReference(u).String())
	}
	return out
}
