package resolver

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/pkg/logger"
)

func init() {
	logger.InitNop()
}

type fakeMemory struct {
	entries map[Field]MemoryEntry
	err     error
}

func (f *fakeMemory) GetMemory(ctx context.Context, host string) (map[Field]MemoryEntry, error) {
	return f.entries, f.err
}

type fakeBundles struct {
	bundle *Bundle
}

func (f *fakeBundles) ResolveHost(host string) *Bundle {
	return f.bundle
}

type fakeGeneric struct {
	results map[Field]StrategyResult
	err     error
}

func (f *fakeGeneric) Extract(ctx context.Context, field Field, doc page.Accessor) (StrategyResult, error) {
	if f.err != nil {
		return StrategyResult{}, f.err
	}
	return f.results[field], nil
}

func mustDoc(t *testing.T, html string) *page.Document {
	t.Helper()
	doc, err := page.NewDocument(html, "https://shop.example.com/p/item-1")
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

func TestMemoryWinsWhenSelectorStillMatches(t *testing.T) {
	doc := mustDoc(t, `<html><body><h1 class="pdp-title">Canvas Tote</h1></body></html>`)
	memory := &fakeMemory{entries: map[Field]MemoryEntry{
		FieldTitle: {Selectors: []string{".pdp-title"}},
	}}
	generic := &fakeGeneric{results: map[Field]StrategyResult{
		FieldTitle: {Value: "Wrong Title", Selector: "h1"},
	}}

	r := New(memory, nil, generic, 20)
	res := r.Resolve(context.Background(), FieldTitle, "shop.example.com", doc)

	if !res.Found || res.Value != "Canvas Tote" {
		t.Fatalf("got %+v, want Canvas Tote found", res)
	}
	if res.Source != SourceMemory {
		t.Errorf("source = %q, want %q", res.Source, SourceMemory)
	}
	if res.Selector != ".pdp-title" {
		t.Errorf("selector = %q", res.Selector)
	}
}

func TestStaleMemoryFallsThroughToGeneric(t *testing.T) {
	// The remembered selector no longer matches and no override exists,
	// so the structured-data value wins. The price validator attaches the
	// currency from the JSON-LD offer.
	doc := mustDoc(t, `<html><head><script type="application/ld+json">
		{"@type":"Product","name":"Trail Shoe","offers":{"price":"49.99","priceCurrency":"USD"}}
	</script></head><body></body></html>`)
	memory := &fakeMemory{entries: map[Field]MemoryEntry{
		FieldPrice: {Selectors: []string{".price-now"}},
	}}
	generic := &fakeGeneric{results: map[Field]StrategyResult{
		FieldPrice: {Value: "USD 49.99", Selector: "ld+json:offers.price"},
	}}

	r := New(memory, &fakeBundles{bundle: nil}, generic, 20)
	res := r.Resolve(context.Background(), FieldPrice, "shop.example.com", doc)

	if !res.Found {
		t.Fatalf("price not found: %+v", res)
	}
	if res.Value != "USD49.99" {
		t.Errorf("value = %q, want USD49.99", res.Value)
	}
	if res.Source != SourceGeneric {
		t.Errorf("source = %q, want %q", res.Source, SourceGeneric)
	}
}

func TestOverrideBeatsGeneric(t *testing.T) {
	doc := mustDoc(t, `<html><body><h1>Generic Heading</h1></body></html>`)
	bundle := &Bundle{
		Title: func(ctx context.Context, doc page.Accessor) (string, error) {
			return "Override Title", nil
		},
	}
	generic := &fakeGeneric{results: map[Field]StrategyResult{
		FieldTitle: {Value: "Generic Heading", Selector: "h1"},
	}}

	r := New(nil, &fakeBundles{bundle: bundle}, generic, 20)
	res := r.Resolve(context.Background(), FieldTitle, "shop.example.com", doc)

	if res.Value != "Override Title" || res.Source != SourceOverride {
		t.Fatalf("got %+v, want override title", res)
	}
}

func TestOverridePanicAndErrorFallThrough(t *testing.T) {
	doc := mustDoc(t, `<html><body></body></html>`)
	generic := &fakeGeneric{results: map[Field]StrategyResult{
		FieldBrand: {Value: "Fallback Brand"},
	}}

	cases := []struct {
		name string
		fn   OverrideFunc
	}{
		{"panics", func(ctx context.Context, doc page.Accessor) (string, error) {
			panic("selector drift")
		}},
		{"errors", func(ctx context.Context, doc page.Accessor) (string, error) {
			return "", errors.New("no byline")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(nil, &fakeBundles{bundle: &Bundle{Brand: tc.fn}}, generic, 20)
			res := r.Resolve(context.Background(), FieldBrand, "shop.example.com", doc)
			if res.Value != "Fallback Brand" || res.Source != SourceGeneric {
				t.Fatalf("got %+v, want generic fallback", res)
			}
		})
	}
}

func TestSentinelsWhenNothingResolves(t *testing.T) {
	doc := mustDoc(t, `<html><body></body></html>`)
	r := New(nil, nil, &fakeGeneric{}, 20)

	cases := []struct {
		field Field
		value string
	}{
		{FieldTitle, TitleNotFound},
		{FieldPrice, PriceNotFound},
		{FieldBrand, ""},
		{FieldDescription, ""},
	}
	for _, tc := range cases {
		res := r.Resolve(context.Background(), tc.field, "shop.example.com", doc)
		if res.Found {
			t.Errorf("%s: found = true", tc.field)
		}
		if res.Value != tc.value {
			t.Errorf("%s: value = %q, want %q", tc.field, res.Value, tc.value)
		}
	}

	images := r.Resolve(context.Background(), FieldImages, "shop.example.com", doc)
	if images.Found || images.Images == nil || len(images.Images) != 0 {
		t.Errorf("images: got %+v, want empty non-nil slice", images)
	}
}

func TestPriceRejectedWhenNotMoney(t *testing.T) {
	doc := mustDoc(t, `<html><body></body></html>`)
	generic := &fakeGeneric{results: map[Field]StrategyResult{
		FieldPrice: {Value: "Call for pricing"},
	}}

	r := New(nil, nil, generic, 20)
	res := r.Resolve(context.Background(), FieldPrice, "shop.example.com", doc)

	if res.Found {
		t.Fatalf("non-monetary text accepted: %+v", res)
	}
	if res.Value != PriceNotFound {
		t.Errorf("value = %q, want sentinel", res.Value)
	}
}

func TestImageValidationDedupAndCap(t *testing.T) {
	doc := mustDoc(t, `<html><body></body></html>`)
	urls := []string{
		"https://cdn.example.com/a.jpg?size=small",
		"https://cdn.example.com/a.jpg?size=large", // same canonical key
		"https://cdn.example.com/b.svg",            // not raster
		"https://cdn.example.com/c.png",
		"https://cdn.example.com/d.webp",
	}
	generic := &fakeGeneric{results: map[Field]StrategyResult{
		FieldImages: {Images: urls, Selector: "img"},
	}}

	r := New(nil, nil, generic, 2)
	res := r.Resolve(context.Background(), FieldImages, "shop.example.com", doc)

	want := []string{
		"https://cdn.example.com/a.jpg?size=small",
		"https://cdn.example.com/c.png",
	}
	if !reflect.DeepEqual(res.Images, want) {
		t.Fatalf("images = %v, want %v", res.Images, want)
	}
}

func TestMemoryAttrExtraction(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<meta class="price-meta" content="$19.99">
		<img class="gallery" src="https://cdn.example.com/x.jpg">
		<img class="gallery" src="https://cdn.example.com/y.jpg">
	</body></html>`)
	memory := &fakeMemory{entries: map[Field]MemoryEntry{
		FieldPrice:  {Selectors: []string{".price-meta"}, Attr: "content"},
		FieldImages: {Selectors: []string{".gallery"}, Attr: "src"},
	}}

	r := New(memory, nil, &fakeGeneric{}, 20)

	price := r.Resolve(context.Background(), FieldPrice, "shop.example.com", doc)
	if price.Value != "$19.99" || price.Source != SourceMemory {
		t.Errorf("price = %+v", price)
	}

	images := r.Resolve(context.Background(), FieldImages, "shop.example.com", doc)
	if len(images.Images) != 2 {
		t.Errorf("images = %v, want 2 gallery entries", images.Images)
	}
}

func TestResolveAllCoversEveryField(t *testing.T) {
	doc := mustDoc(t, `<html><body><h1>Desk Lamp</h1></body></html>`)
	generic := &fakeGeneric{results: map[Field]StrategyResult{
		FieldTitle: {Value: "Desk Lamp", Selector: "h1"},
	}}

	r := New(nil, nil, generic, 20)
	results := r.ResolveAll(context.Background(), "shop.example.com", doc)

	if len(results) != len(Fields) {
		t.Fatalf("got %d results, want %d", len(results), len(Fields))
	}
	if !results[FieldTitle].Found {
		t.Errorf("title not found: %+v", results[FieldTitle])
	}
	if results[FieldBrand].Found {
		t.Errorf("brand unexpectedly found: %+v", results[FieldBrand])
	}
}
