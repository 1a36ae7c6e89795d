package page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is the goquery-backed Accessor over one parsed HTML page.
type Document struct {
	doc *goquery.Document
	url string
}

var _ Accessor = (*Document)(nil)

func NewDocument(html, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Document{doc: doc, url: pageURL}, nil
}

func (d *Document) URL() string {
	return d.url
}

func (d *Document) Query(selector string) []Element {
	var elements []Element
	d.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		elements = append(elements, &element{sel: s})
	})
	return elements
}

type element struct {
	sel *goquery.Selection
}

func (e *element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e *element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// Style looks a property up in the inline style attribute. Parsed HTML has
// no computed styles; inline declarations are the best available signal.
func (e *element) Style(name string) (string, bool) {
	style, ok := e.sel.Attr("style")
	if !ok {
		return "", false
	}

	for _, decl := range strings.Split(style, ";") {
		prop, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(prop), name) {
			return strings.TrimSpace(value), true
		}
	}

	return "", false
}
