package generic

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/productlens/backend/internal/extraction/page"
)

// BreadcrumbTrail extracts the page's breadcrumb trail: a schema.org
// BreadcrumbList when one exists, otherwise the links inside a breadcrumb
// nav element. Returns nil when the page has neither.
func BreadcrumbTrail(doc page.Accessor) []string {
	if trail := breadcrumbsFromJSONLD(doc); len(trail) > 0 {
		return trail
	}
	return breadcrumbsFromMarkup(doc)
}

type breadcrumbItem struct {
	Position int
	Name     string
}

func breadcrumbsFromJSONLD(doc page.Accessor) []string {
	for _, script := range doc.Query(jsonLDSelector) {
		var raw interface{}
		if err := json.Unmarshal([]byte(script.Text()), &raw); err != nil {
			continue
		}
		if items := findBreadcrumbList(raw); len(items) > 0 {
			sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
			trail := make([]string, 0, len(items))
			for _, item := range items {
				if item.Name != "" {
					trail = append(trail, item.Name)
				}
			}
			return trail
		}
	}
	return nil
}

func findBreadcrumbList(raw interface{}) []breadcrumbItem {
	switch node := raw.(type) {
	case map[string]interface{}:
		if t, _ := node["@type"].(string); strings.EqualFold(t, "BreadcrumbList") {
			return decodeBreadcrumbItems(node["itemListElement"])
		}
		if graph, ok := node["@graph"].([]interface{}); ok {
			return findBreadcrumbList(graph)
		}
	case []interface{}:
		for _, item := range node {
			if found := findBreadcrumbList(item); len(found) > 0 {
				return found
			}
		}
	}
	return nil
}

func decodeBreadcrumbItems(raw interface{}) []breadcrumbItem {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	items := make([]breadcrumbItem, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		name := stringField(m["name"])
		if name == "" {
			// ListItem may nest the name under item.
			if item, ok := m["item"].(map[string]interface{}); ok {
				name = stringField(item["name"])
			}
		}

		position := i + 1
		if p, ok := m["position"].(float64); ok {
			position = int(p)
		}

		items = append(items, breadcrumbItem{Position: position, Name: name})
	}
	return items
}

func breadcrumbsFromMarkup(doc page.Accessor) []string {
	selectors := []string{
		`nav[aria-label="breadcrumb"] a`,
		`nav[aria-label="Breadcrumb"] a`,
		".breadcrumb a",
		".breadcrumbs a",
	}

	for _, sel := range selectors {
		els := doc.Query(sel)
		if len(els) == 0 {
			continue
		}
		trail := make([]string, 0, len(els))
		for _, el := range els {
			if text := strings.TrimSpace(el.Text()); text != "" {
				trail = append(trail, text)
			}
		}
		if len(trail) > 0 {
			return trail
		}
	}
	return nil
}
