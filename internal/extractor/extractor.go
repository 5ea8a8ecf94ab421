// Package extractor turns scraped page text and metadata into a structured product.
package extractor

import (
	"regexp"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/shopspring/decimal"
)

// UnknownTitle replaces titles that are empty after cleanup.
const UnknownTitle = "Unknown Product"

// DefaultCurrency is reported when no price pattern matches.
const DefaultCurrency = "₹"

// titleNoise is applied in order; each pattern cuts the title from its first match to the end.
var titleNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[|\-–—]\s*(?:Amazon\.in|Amazon\.com|eBay|Walmart|Best Buy).*$`),
	regexp.MustCompile(`(?i)\s*:\s*Buy\s+.*$`),
	regexp.MustCompile(`(?i)\s*Online at Low Prices.*$`),
}

// priceMatchers are tried in priority order; the first one that matches wins.
// Submatch 1 is the currency prefix, submatch 2 the numeral.
var priceMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(₹)\s*([\d,]+(?:\.\d{2})?)`),
	regexp.MustCompile(`(\$)\s*([\d,]+(?:\.\d{2})?)`),
	regexp.MustCompile(`(€)\s*([\d,]+(?:[.,]\d{2})?)`),
	regexp.MustCompile(`(?i)(Rs\.?)\s*([\d,]+(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)(INR)\s*([\d,]+(?:\.\d{2})?)`),
}

// currencySymbols maps upper-cased prefix tokens (dots removed) to canonical symbols.
var currencySymbols = map[string]string{
	"₹":   "₹",
	"$":   "$",
	"€":   "€",
	"RS":  "₹",
	"INR": "₹",
}

// Extract builds a ParsedProduct from scraped text and metadata.
// A CurrentPrice of 0 means no price was found.
func Extract(rawText string, metadata map[string]any) models.ParsedProduct {
	price, currency := ExtractPrice(rawText)

	return models.ParsedProduct{
		Title:        ResolveTitle(metadata),
		CurrentPrice: price,
		Currency:     currency,
	}
}

// ResolveTitle picks the page title from metadata and cleans it.
func ResolveTitle(metadata map[string]any) string {
	title := firstString(metadata, "title", "ogTitle", "og:title")

	return CleanTitle(title)
}

// CleanTitle strips retailer suffixes from title. It is idempotent.
func CleanTitle(title string) string {
	for _, re := range titleNoise {
		title = re.ReplaceAllString(title, "")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return UnknownTitle
	}

	return title
}

// ExtractPrice finds the first price in text according to the matcher priority.
// It returns 0 and DefaultCurrency when nothing matches.
func ExtractPrice(text string) (float64, string) {
	for _, re := range priceMatchers {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}

		return parseAmount(sub[2]), NormalizeCurrency(sub[1])
	}

	return 0, DefaultCurrency
}

// NormalizeCurrency maps a matched prefix token to its canonical symbol.
// Unknown tokens are returned unchanged.
func NormalizeCurrency(token string) string {
	key := strings.ToUpper(strings.ReplaceAll(token, ".", ""))
	if symbol, ok := currencySymbols[key]; ok {
		return symbol
	}

	return token
}

// parseAmount strips thousands separators and parses the numeral; unparseable input yields 0.
func parseAmount(numeral string) float64 {
	d, err := decimal.NewFromString(strings.ReplaceAll(numeral, ",", ""))
	if err != nil || d.IsNegative() {
		return 0
	}

	return d.InexactFloat64()
}

func firstString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := metadata[key].(string); ok && s != "" {
			return s
		}
	}

	return ""
}
