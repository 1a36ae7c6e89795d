package overrides

import (
	"context"
	"testing"

	"github.com/productlens/backend/internal/extraction/page"
	"github.com/productlens/backend/internal/extraction/resolver"
)

func TestFirstMatchWins(t *testing.T) {
	first := &resolver.Bundle{}
	second := &resolver.Bundle{}

	r := NewRegistry()
	r.Register(HostContains("shop."), first)
	r.Register(HostEquals("shop.example.com"), second)

	if got := r.ResolveHost("shop.example.com"); got != first {
		t.Fatal("expected the earlier registration to win")
	}
}

func TestResolveHostNormalizesHost(t *testing.T) {
	bundle := &resolver.Bundle{}
	r := NewRegistry()
	r.Register(HostEquals("shop.example.com"), bundle)

	if got := r.ResolveHost("WWW.Shop.Example.COM"); got != bundle {
		t.Fatal("www prefix and case should not matter")
	}
	if got := r.ResolveHost("other.example.com"); got != nil {
		t.Fatal("unrelated host should resolve to nil")
	}
}

func TestAmazonBylineCleanup(t *testing.T) {
	html := `<html><body>
		<h1 id="productTitle"> Trail Running Shoe </h1>
		<a id="bylineInfo">Visit the Summit Gear Store</a>
	</body></html>`
	doc, err := page.NewDocument(html, "https://www.amazon.com/dp/B000TEST")
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	bundle := DefaultRegistry().ResolveHost("www.amazon.com")
	if bundle == nil {
		t.Fatal("no bundle for amazon.com")
	}

	title, err := bundle.Title(context.Background(), doc)
	if err != nil || title != "Trail Running Shoe" {
		t.Errorf("title = %q, err = %v", title, err)
	}

	brand, err := bundle.Brand(context.Background(), doc)
	if err != nil || brand != "Summit Gear" {
		t.Errorf("brand = %q, err = %v", brand, err)
	}
}
