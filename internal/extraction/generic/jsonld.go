package generic

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/productlens/backend/internal/extraction/page"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// productData is the subset of a schema.org Product node the extractor
// cares about. Fields stay as raw JSON where schema.org allows multiple
// shapes (brand as string or object, image as string or array).
type productData struct {
	Name        string
	Brand       string
	Price       string
	Currency    string
	Description string
	Images      []string
}

// parseJSONLD scans every ld+json script on the page and returns the first
// schema.org Product it can decode. Malformed blocks are skipped, not
// fatal: pages routinely ship several blocks and some are broken.
func parseJSONLD(doc page.Accessor) (*productData, bool) {
	for _, script := range doc.Query(jsonLDSelector) {
		var raw interface{}
		if err := json.Unmarshal([]byte(script.Text()), &raw); err != nil {
			continue
		}
		if product := findProduct(raw); product != nil {
			return decodeProduct(product), true
		}
	}
	return nil, false
}

// findProduct walks a decoded ld+json document looking for a node whose
// @type is (or includes) Product. Handles top-level arrays and @graph
// containers one level deep, which covers the shapes seen in the wild.
func findProduct(raw interface{}) map[string]interface{} {
	switch node := raw.(type) {
	case map[string]interface{}:
		if isProductType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"].([]interface{}); ok {
			return findProduct(graph)
		}
	case []interface{}:
		for _, item := range node {
			if m, ok := item.(map[string]interface{}); ok && isProductType(m["@type"]) {
				return m
			}
		}
	}
	return nil
}

func isProductType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Product")
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	return false
}

func decodeProduct(node map[string]interface{}) *productData {
	p := &productData{
		Name:        stringField(node["name"]),
		Description: stringField(node["description"]),
	}

	switch brand := node["brand"].(type) {
	case string:
		p.Brand = brand
	case map[string]interface{}:
		p.Brand = stringField(brand["name"])
	}

	if offer := firstOffer(node["offers"]); offer != nil {
		p.Price = stringField(offer["price"])
		p.Currency = stringField(offer["priceCurrency"])
	}

	switch image := node["image"].(type) {
	case string:
		p.Images = []string{image}
	case []interface{}:
		for _, item := range image {
			switch v := item.(type) {
			case string:
				p.Images = append(p.Images, v)
			case map[string]interface{}:
				if u := stringField(v["url"]); u != "" {
					p.Images = append(p.Images, u)
				}
			}
		}
	case map[string]interface{}:
		if u := stringField(image["url"]); u != "" {
			p.Images = []string{u}
		}
	}

	return p
}

func firstOffer(offers interface{}) map[string]interface{} {
	switch v := offers.(type) {
	case map[string]interface{}:
		// AggregateOffer carries lowPrice instead of price.
		if _, ok := v["price"]; !ok {
			if low, ok := v["lowPrice"]; ok {
				v["price"] = low
			}
		}
		return v
	case []interface{}:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]interface{}); ok {
				return m
			}
		}
	}
	return nil
}

// stringField renders a JSON value as a string. Prices in particular show
// up as both "49.99" and 49.99 in live markup.
func stringField(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}
