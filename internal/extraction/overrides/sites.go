package overrides

import (
	"context"
	"strings"

	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/internal/extraction/resolver"
)

// DefaultRegistry returns the registry with the built-in site bundles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(HostContains("amazon."), amazonBundle())
	r.Register(HostContains("ebay."), ebayBundle())
	r.Register(HostContains("etsy."), etsyBundle())
	return r
}

func amazonBundle() *resolver.Bundle {
	return &resolver.Bundle{
		Title: textOf("#productTitle"),
		Brand: func(ctx context.Context, doc page.Accessor) (string, error) {
			els := doc.Query("#bylineInfo")
			if len(els) == 0 {
				return "", nil
			}
			// Byline text reads "Visit the X Store" or "Brand: X".
			text := strings.TrimSpace(els[0].Text())
			text = strings.TrimPrefix(text, "Visit the ")
			text = strings.TrimSuffix(text, " Store")
			text = strings.TrimPrefix(text, "Brand: ")
			return text, nil
		},
		Price:       textOf(".a-price .a-offscreen", "#priceblock_ourprice"),
		Description: textOf("#productDescription", "#feature-bullets"),
		Images: func(ctx context.Context, doc page.Accessor) ([]string, error) {
			var urls []string
			for _, el := range doc.Query("#landingImage, #altImages img") {
				if src, ok := el.Attr("data-old-hires"); ok && src != "" {
					urls = append(urls, src)
					continue
				}
				if src, ok := el.Attr("src"); ok && src != "" {
					urls = append(urls, src)
				}
			}
			return urls, nil
		},
	}
}

func ebayBundle() *resolver.Bundle {
	return &resolver.Bundle{
		Title: textOf(".x-item-title__mainTitle", "h1.it-ttl"),
		Price: textOf(".x-price-primary", "#prcIsum"),
		Images: func(ctx context.Context, doc page.Accessor) ([]string, error) {
			var urls []string
			for _, el := range doc.Query(".ux-image-carousel img") {
				if src, ok := el.Attr("src"); ok && src != "" {
					urls = append(urls, src)
				}
			}
			return urls, nil
		},
	}
}

func etsyBundle() *resolver.Bundle {
	return &resolver.Bundle{
		Title:       textOf(`h1[data-buy-box-listing-title]`),
		Brand:       textOf(".shop-name a", "#listing-page-cart .wt-text-body-01"),
		Price:       textOf(`[data-buy-box-region="price"] .wt-text-title-larger`),
		Description: textOf(`[data-product-details-description-text-content]`),
	}
}

// textOf builds an override that returns the text of the first selector
// with a match.
func textOf(selectors ...string) resolver.OverrideFunc {
	return func(ctx context.Context, doc page.Accessor) (string, error) {
		for _, sel := range selectors {
			if els := doc.Query(sel); len(els) > 0 {
				if text := strings.TrimSpace(els[0].Text()); text != "" {
					return text, nil
				}
			}
		}
		return "", nil
	}
}
