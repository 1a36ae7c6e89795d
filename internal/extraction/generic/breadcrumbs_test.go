package generic

import (
	"context"
	"reflect"
	"testing"

	"github.com/productlens/backend/internal/extraction/resolver"
)

func TestBreadcrumbTrailFromJSONLD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@type":"BreadcrumbList","itemListElement":[
		 {"position":2,"name":"Men"},
		 {"position":1,"name":"Fashion"},
		 {"position":3,"item":{"name":"Jeans"}}]}
	</script></head><body>
		<nav aria-label="breadcrumb"><a>Ignored</a></nav>
	</body></html>`

	trail := BreadcrumbTrail(mustDoc(t, html))
	want := []string{"Fashion", "Men", "Jeans"}
	if !reflect.DeepEqual(trail, want) {
		t.Fatalf("trail = %v, want %v", trail, want)
	}
}

func TestBreadcrumbTrailFromMarkup(t *testing.T) {
	html := `<html><body>
		<nav aria-label="breadcrumb">
			<a href="/">Home</a>
			<a href="/fashion">Fashion</a>
			<a href="/fashion/women">Women</a>
		</nav>
	</body></html>`

	trail := BreadcrumbTrail(mustDoc(t, html))
	want := []string{"Home", "Fashion", "Women"}
	if !reflect.DeepEqual(trail, want) {
		t.Fatalf("trail = %v, want %v", trail, want)
	}
}

func TestBreadcrumbTrailAbsent(t *testing.T) {
	if trail := BreadcrumbTrail(mustDoc(t, `<html><body><p>no nav</p></body></html>`)); trail != nil {
		t.Fatalf("trail = %v, want nil", trail)
	}
}

// The jsonld parser must not confuse a BreadcrumbList block with the
// Product block when both are present.
func TestProductAndBreadcrumbBlocksCoexist(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"BreadcrumbList","itemListElement":[{"position":1,"name":"Fashion"}]}</script>
		<script type="application/ld+json">{"@type":"Product","name":"Jeans"}</script>
	</head></html>`
	doc := mustDoc(t, html)

	res, err := NewStrategy().Extract(context.Background(), resolver.FieldTitle, doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Value != "Jeans" {
		t.Errorf("title = %q", res.Value)
	}
	if trail := BreadcrumbTrail(doc); len(trail) != 1 || trail[0] != "Fashion" {
		t.Errorf("trail = %v", trail)
	}
}
