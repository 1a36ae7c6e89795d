package generic

import (
	"context"
	"reflect"
	"testing"

	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/internal/extraction/resolver"
)

func mustDoc(t *testing.T, html string) *page.Document {
	t.Helper()
	doc, err := page.NewDocument(html, "https://shop.example.com/p/widget")
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

func extract(t *testing.T, field resolver.Field, html string) resolver.StrategyResult {
	t.Helper()
	res, err := NewStrategy().Extract(context.Background(), field, mustDoc(t, html))
	if err != nil {
		t.Fatalf("Extract(%s): %v", field, err)
	}
	return res
}

func TestTitleFromJSONLD(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Product","name":"Ceramic Mug"}</script>
		<meta property="og:title" content="Mug | Shop">
	</head><body><h1>Something Else</h1></body></html>`

	res := extract(t, resolver.FieldTitle, html)
	if res.Value != "Ceramic Mug" || res.Selector != "ld+json:name" {
		t.Fatalf("got %+v", res)
	}
}

func TestTitleFallsBackThroughMetaToH1(t *testing.T) {
	res := extract(t, resolver.FieldTitle, `<html><body><h1>Plain Heading</h1></body></html>`)
	if res.Value != "Plain Heading" || res.Selector != "h1" {
		t.Fatalf("got %+v", res)
	}

	res = extract(t, resolver.FieldTitle, `<html><head>
		<meta property="og:title" content="Meta Title"></head><body><h1>Heading</h1></body></html>`)
	if res.Value != "Meta Title" {
		t.Fatalf("got %+v, want og:title to win over h1", res)
	}
}

func TestBrandObjectAndStringForms(t *testing.T) {
	withObject := `<html><head><script type="application/ld+json">
		{"@type":"Product","name":"X","brand":{"@type":"Brand","name":"Acme"}}
	</script></head></html>`
	if res := extract(t, resolver.FieldBrand, withObject); res.Value != "Acme" {
		t.Errorf("object form: got %+v", res)
	}

	withString := `<html><head><script type="application/ld+json">
		{"@type":"Product","name":"X","brand":"Acme"}
	</script></head></html>`
	if res := extract(t, resolver.FieldBrand, withString); res.Value != "Acme" {
		t.Errorf("string form: got %+v", res)
	}
}

func TestPriceCombinesCurrencyAndAmount(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@type":"Product","name":"X","offers":{"@type":"Offer","price":49.99,"priceCurrency":"USD"}}
	</script></head></html>`

	res := extract(t, resolver.FieldPrice, html)
	if res.Value != "USD 49.99" {
		t.Fatalf("value = %q, want currency-prefixed amount", res.Value)
	}
}

func TestPriceSkipsStruckThroughMarkup(t *testing.T) {
	html := `<html><body>
		<span itemprop="price" style="text-decoration: line-through">$79.99</span>
		<span itemprop="price">$49.99</span>
	</body></html>`

	res := extract(t, resolver.FieldPrice, html)
	if res.Value != "$49.99" {
		t.Fatalf("value = %q, want the live price", res.Value)
	}
}

func TestPriceFromGraphContainer(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@graph":[{"@type":"WebPage"},{"@type":"Product","name":"X","offers":[{"price":"12.50","priceCurrency":"EUR"}]}]}
	</script></head></html>`

	res := extract(t, resolver.FieldPrice, html)
	if res.Value != "EUR 12.50" {
		t.Fatalf("value = %q", res.Value)
	}
}

func TestDescriptionPrefersStructuredData(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Product","name":"X","description":"Hand thrown stoneware."}</script>
		<meta name="description" content="Shop mugs online">
	</head></html>`

	res := extract(t, resolver.FieldDescription, html)
	if res.Value != "Hand thrown stoneware." {
		t.Fatalf("got %+v", res)
	}
}

func TestImagesResolveRelativeReferences(t *testing.T) {
	html := `<html><body>
		<img src="/media/front.jpg">
		<img data-src="https://cdn.example.com/back.jpg">
	</body></html>`

	res := extract(t, resolver.FieldImages, html)
	want := []string{
		"https://shop.example.com/media/front.jpg",
		"https://cdn.example.com/back.jpg",
	}
	if !reflect.DeepEqual(res.Images, want) {
		t.Fatalf("images = %v, want %v", res.Images, want)
	}
}

func TestImagesJSONLDArrayWins(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@type":"Product","name":"X","image":["https://cdn.example.com/1.jpg","https://cdn.example.com/2.jpg"]}
	</script></head><body><img src="/ignored.jpg"></body></html>`

	res := extract(t, resolver.FieldImages, html)
	if len(res.Images) != 2 || res.Selector != "ld+json:image" {
		t.Fatalf("got %+v", res)
	}
}

func TestMalformedJSONLDIsSkipped(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{not json</script>
		<script type="application/ld+json">{"@type":"Product","name":"Second Block"}</script>
	</head></html>`

	res := extract(t, resolver.FieldTitle, html)
	if res.Value != "Second Block" {
		t.Fatalf("got %+v, want the valid block", res)
	}
}
