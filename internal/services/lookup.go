package services

import (
	"context"
	"log/slog"

	"pricefinder/internal/extract"
	"pricefinder/internal/metrics"
	"pricefinder/internal/model"
	"pricefinder/internal/resolve"
	"pricefinder/internal/scrape"
)

// LookupService runs the end-to-end product lookup: brand/model
// extraction, link resolution, then price scraping. Every step is
// best-effort; the result always comes back, with whatever fields
// could be filled in.
type LookupService interface {
	Lookup(ctx context.Context, productName string) *model.LookupResult
}

type lookupService struct {
	extractor *extract.Extractor
	resolver  *resolve.Resolver
	scraper   *scrape.PriceScraper
	logger    *slog.Logger
}

func NewLookupService(extractor *extract.Extractor, resolver *resolve.Resolver, scraper *scrape.PriceScraper, logger *slog.Logger) LookupService {
	return &lookupService{
		extractor: extractor,
		resolver:  resolver,
		scraper:   scraper,
		logger:    logger,
	}
}

// Lookup sequences the pipeline. A missing brand/model short-circuits
// everything else: no searches or scrapes run and the result is
// all-null. The price is scraped only when a market-price page was
// actually resolved.
func (s *lookupService) Lookup(ctx context.Context, productName string) *model.LookupResult {
	bm := s.extractor.Extract(ctx, productName)
	if bm == nil {
		metrics.RecordLookup("empty")
		return &model.LookupResult{}
	}

	links := s.resolver.Resolve(ctx, bm.Brand, bm.Model)

	var marketPrice *float64
	if links.MarketPriceURL != nil {
		marketPrice = s.scraper.Scrape(ctx, *links.MarketPriceURL)
	}

	result := &model.LookupResult{
		Brand:          &bm.Brand,
		Model:          &bm.Model,
		AttributeURL:   links.AttributeURL,
		MarketPriceURL: links.MarketPriceURL,
		MarketPrice:    marketPrice,
	}

	metrics.RecordLookup(lookupOutcome(result))

	s.logger.Info("lookup finished",
		"brand", bm.Brand,
		"model", bm.Model,
		"attribute_url", links.AttributeURL != nil,
		"market_price_url", links.MarketPriceURL != nil,
		"market_price", marketPrice != nil,
	)

	return result
}

// lookupOutcome classifies a result for metrics: "full" when every
// field landed, "partial" otherwise.
func lookupOutcome(r *model.LookupResult) string {
	if r.AttributeURL != nil && r.MarketPriceURL != nil && r.MarketPrice != nil {
		return "full"
	}
	return "partial"
}
