// Package page provides the element query surface the extraction pipeline
// runs against. The resolver and the generic strategies only see the
// Accessor interface; selector matching itself is delegated to the
// implementation.
package page

// Element is one matched node: text content, named-attribute lookup, and
// inline-style lookup.
type Element interface {
	Text() string
	Attr(name string) (string, bool)
	Style(name string) (string, bool)
}

// Accessor answers selector queries against one loaded page.
type Accessor interface {
	Query(selector string) []Element
	URL() string
}
