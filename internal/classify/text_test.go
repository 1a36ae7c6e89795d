package classify

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestSplitBreadcrumbs(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"Home / Men / Jeans", []string{"Home", "Men", "Jeans"}},
		{"Home > Men > Jeans", []string{"Home", "Men", "Jeans"}},
		{"Home | Men | Jeans", []string{"Home", "Men", "Jeans"}},
		{"Home › Men › Jeans", []string{"Home", "Men", "Jeans"}},
		{"Home » Men", []string{"Home", "Men"}},
		{"", nil},
		{" / / ", nil},
	}

	for _, tc := range cases {
		got := splitBreadcrumbs(tc.raw)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitBreadcrumbs(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestBreadcrumbsUnmarshal(t *testing.T) {
	var fromArray Breadcrumbs
	if err := json.Unmarshal([]byte(`["Home","Men"]`), &fromArray); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if !reflect.DeepEqual([]string(fromArray), []string{"Home", "Men"}) {
		t.Errorf("fromArray = %v", fromArray)
	}

	var fromString Breadcrumbs
	if err := json.Unmarshal([]byte(`"Home > Men"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if !reflect.DeepEqual([]string(fromString), []string{"Home", "Men"}) {
		t.Errorf("fromString = %v", fromString)
	}

	// Wrong types degrade to empty, not error.
	var fromNumber Breadcrumbs
	if err := json.Unmarshal([]byte(`42`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if len(fromNumber) != 0 {
		t.Errorf("fromNumber = %v, want empty", fromNumber)
	}
}

func TestFilterBreadcrumbsDropsTitleDuplicate(t *testing.T) {
	crumbs := []string{"Home", "Men", "Men's Slim Fit Indigo Jeans"}
	got := filterBreadcrumbs(crumbs, "Men's Slim Fit Indigo Jeans")
	if len(got) != 2 || got[1] != "Men" {
		t.Errorf("filterBreadcrumbs = %v, want trailing title crumb dropped", got)
	}

	// Comparison uses only the first 30 characters.
	longTitle := "Ultra Comfortable Premium Denim Jeans With Stretch Fabric"
	crumbs = []string{"Home", longTitle[:30] + " trailing difference ignored"}
	got = filterBreadcrumbs(crumbs, longTitle)
	if len(got) != 1 {
		t.Errorf("filterBreadcrumbs = %v, want 30-char prefix match to drop crumb", got)
	}

	// Unrelated last crumb stays.
	crumbs = []string{"Home", "Men", "Jeans"}
	got = filterBreadcrumbs(crumbs, "Slim Fit Indigo Jeans")
	if len(got) != 3 {
		t.Errorf("filterBreadcrumbs = %v, want unchanged", got)
	}
}

func TestURLKeywords(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"/men/jeans/slim-indigo-123", "men jeans slim indigo 123"},
		{"https://shop.example.com/women/dresses/summer_maxi.html", "women dresses summer maxi"},
		{"/products/ABC123XYZ9/blue-shirt", "products blue shirt"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := urlKeywords(tc.url); got != tc.want {
			t.Errorf("urlKeywords(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestWordPatternWholeWord(t *testing.T) {
	if countMatches(wordPattern("men"), "women shoes") != 0 {
		t.Error("'men' matched inside 'women'")
	}
	if countMatches(wordPattern("men"), "men's shoes") != 1 {
		t.Error("'men' not matched in \"men's\"")
	}
	if countMatches(wordPattern("slim-fit"), "a slim fit jean") != 1 {
		t.Error("'slim-fit' not matched against 'slim fit'")
	}
	if countMatches(wordPattern("slim-fit"), "a slim-fit jean") != 1 {
		t.Error("'slim-fit' not matched against 'slim-fit'")
	}
}

func TestPluralPattern(t *testing.T) {
	if countMatches(pluralPattern("Jean"), "blue jeans") != 1 {
		t.Error("plural +s not matched")
	}
	if countMatches(pluralPattern("Dress"), "summer dresses") != 1 {
		t.Error("plural +es not matched")
	}
	if countMatches(pluralPattern("Jeans"), "blue jeans") != 1 {
		t.Error("exact name not matched")
	}
}

func TestAssembleSearchTextTiers(t *testing.T) {
	st := assembleSearchText(ProductData{
		Title:       "Blue Shirt",
		URL:         "/men/shirts/blue-oxford",
		Breadcrumbs: Breadcrumbs{"Home", "Men"},
		Brand:       "Acme",
		Specs:       "Cotton",
		Description: "An oxford shirt.",
	})

	for _, want := range []string{"blue shirt", "men shirts blue oxford", "home men", "acme", "cotton", "an oxford shirt."} {
		if !strings.Contains(st.haystack, want) {
			t.Errorf("haystack missing %q: %q", want, st.haystack)
		}
	}
}
