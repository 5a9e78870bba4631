package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricefinder/internal/fetch"
	"pricefinder/internal/metrics"
)

const (
	structuredDataSelector = `script[type="application/ld+json"]`
	structuredDataMarker   = "schema.org"
)

// PriceScraper reads the lowest offer price out of a price-comparison
// page's embedded structured data.
type PriceScraper struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewPriceScraper(fetcher fetch.Fetcher, logger *slog.Logger) *PriceScraper {
	return &PriceScraper{fetcher: fetcher, logger: logger}
}

// Scrape fetches the page and returns the first valid numeric
// offers.lowPrice found in a schema.org structured-data block, or nil
// when the page has no usable price. Transport and parse failures are
// logged and absorbed; nil always means "no structured price data",
// never "price is zero".
func (s *PriceScraper) Scrape(ctx context.Context, pageURL string) (price *float64) {
	defer func() { metrics.RecordPriceScrape(price != nil) }()

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		s.logger.Warn("price page fetch failed", "url", pageURL, "error", err)
		return nil
	}
	if body == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		s.logger.Warn("price page did not parse as HTML", "url", pageURL, "error", err)
		return nil
	}

	price, err = extractLowPrice(doc)
	if err != nil {
		s.logger.Warn("structured data did not parse", "url", pageURL, "error", err)
		return nil
	}

	return price
}

// extractLowPrice walks every ld+json block mentioning schema.org and
// keeps the first valid offers.lowPrice. Later blocks are still
// visited but cannot overwrite an already-found value. A malformed
// block aborts the whole scan: one broken island of structured data
// is taken as a sign the page's markup cannot be trusted.
func extractLowPrice(doc *goquery.Document) (*float64, error) {
	var lowPrice *float64
	var parseErr error

	doc.Find(structuredDataSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(text, structuredDataMarker) {
			return true
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			parseErr = err
			return false
		}

		if price, ok := readOfferLowPrice(payload); ok && lowPrice == nil {
			lowPrice = &price
		}
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return lowPrice, nil
}

// readOfferLowPrice pulls offers.lowPrice out of a decoded
// structured-data payload. The field appears in the wild both as a
// JSON number and as a quoted string, so it is stringified before the
// numeric parse.
func readOfferLowPrice(payload map[string]any) (float64, bool) {
	offers, ok := payload["offers"].(map[string]any)
	if !ok {
		return 0, false
	}

	raw, ok := offers["lowPrice"]
	if !ok {
		return 0, false
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(raw)), 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts the literals "NaN" and "Inf", which are not
	// prices.
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}
