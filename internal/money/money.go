package money

import (
	"regexp"
	"strings"
)

// contaminationMarkers flag text that refers to a previous or struck-through
// price ("was $50.00", "List Price: ...") rather than the live one. Such
// candidates are rejected outright; choosing between candidates is the
// resolver's job, not the normalizer's.
var contaminationMarkers = []string{
	"was", "list", "regular", "original", "compare", "mrp",
	"save", "you save", "discount", "off", "rebate", "coupon",
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	symbolPattern     = regexp.MustCompile(`([$€£¥₹])\s*([0-9][0-9.,]*[0-9]|[0-9])`)
	isoPattern        = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|JPY|INR|CAD|AUD|CHF|CNY|SEK|NZD|MXN|SGD|HKD|NOK|KRW|BRL|ZAR|PLN|DKK|AED)\b\s*([0-9][0-9.,]*[0-9]|[0-9])`)
)

// Normalize turns raw price-ish text into a canonical currency+amount string
// such as "$1234.56" or "USD1234". ok is false when the text is contaminated,
// carries no currency token, or has no numeric run.
func Normalize(raw string) (string, bool) {
	text := strings.TrimSpace(whitespacePattern.ReplaceAllString(raw, " "))
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	for _, marker := range contaminationMarkers {
		if strings.Contains(lower, marker) {
			return "", false
		}
	}

	var currency, number string
	if m := symbolPattern.FindStringSubmatch(text); m != nil {
		currency, number = m[1], m[2]
	} else if m := isoPattern.FindStringSubmatch(text); m != nil {
		currency, number = strings.ToUpper(m[1]), m[2]
	} else {
		return "", false
	}

	return currency + cleanNumber(number), true
}

// cleanNumber resolves decimal vs thousands separators by the positions of
// the last comma and last dot in the run.
func cleanNumber(number string) string {
	lastComma := strings.LastIndex(number, ",")
	lastDot := strings.LastIndex(number, ".")

	switch {
	case lastDot >= 0 && lastComma > lastDot:
		// European: dots group thousands, comma is the decimal point.
		number = strings.ReplaceAll(number, ".", "")
		number = strings.ReplaceAll(number, ",", ".")
	case lastComma >= 0 && lastDot < 0:
		// Commas only: thousands grouping.
		number = strings.ReplaceAll(number, ",", "")
	default:
		// US style: strip grouping commas, keep the dot.
		number = strings.ReplaceAll(number, ",", "")
	}

	return number
}
