package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pricefinder/internal/metrics"
	"pricefinder/internal/model"
	"pricefinder/internal/search"
)

const (
	attributeSite    = "epey.com"
	marketPriceSite  = "akakce.com"
	marketPriceToken = "fiyati"

	attributeQuerySuffix   = "epey"
	marketPriceQuerySuffix = "akakce"
)

// Policy is the pacing/retry policy applied per link. Pacing is the
// fixed delay before every search after the first; MaxRetries caps
// the attempts made after the initial pass.
type Policy struct {
	Pacing     time.Duration
	MaxRetries int
}

// DefaultPolicy matches the pacing the target search engine tolerates
// without tripping its anti-automation defenses.
func DefaultPolicy() Policy {
	return Policy{Pacing: 2 * time.Second, MaxRetries: 3}
}

// Resolver locates the attribute page and the price-comparison page
// for a brand/model pair via two independent search-and-retry
// pipelines. Failure to find one link never blocks the other.
type Resolver struct {
	searcher search.Searcher
	policy   Policy
	logger   *slog.Logger

	// sleep is swappable so retry behavior is testable without real
	// delays.
	sleep func(time.Duration)
}

func NewResolver(searcher search.Searcher, policy Policy, logger *slog.Logger) *Resolver {
	if policy.Pacing <= 0 {
		policy.Pacing = DefaultPolicy().Pacing
	}
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = DefaultPolicy().MaxRetries
	}
	return &Resolver{
		searcher: searcher,
		policy:   policy,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Resolve runs the initial paired search, then retries each missing
// link independently up to the policy's cap. A link that is still
// missing after the retries stays nil; that is a valid terminal state,
// not an error.
func (r *Resolver) Resolve(ctx context.Context, brand, modelName string) model.ResolvedLinks {
	attributeQuery := fmt.Sprintf("%s %s %s", brand, modelName, attributeQuerySuffix)
	marketQuery := fmt.Sprintf("%s %s %s", brand, modelName, marketPriceQuerySuffix)

	epeyLinks := r.search(ctx, attributeQuery)
	r.sleep(r.policy.Pacing)
	akakceLinks := r.search(ctx, marketQuery)

	// One pool, attribute-site results first; first match wins in
	// page order.
	pool := make([]string, 0, len(epeyLinks)+len(akakceLinks))
	pool = append(pool, epeyLinks...)
	pool = append(pool, akakceLinks...)

	attributeURL := firstMatch(pool, isAttributeLink)
	marketPriceURL := firstMatch(pool, isMarketPriceLink)

	if attributeURL == nil {
		attributeURL = r.retry(ctx, attributeQuery, isAttributeLink)
	}
	if marketPriceURL == nil {
		marketPriceURL = r.retry(ctx, marketQuery, isMarketPriceLink)
	}

	return model.ResolvedLinks{
		AttributeURL:   attributeURL,
		MarketPriceURL: marketPriceURL,
	}
}

// retry re-issues a single query up to MaxRetries times, pausing for
// the pacing delay before each attempt and stopping on the first hit.
func (r *Resolver) retry(ctx context.Context, query string, match func(string) bool) *string {
	for attempt := 0; attempt < r.policy.MaxRetries; attempt++ {
		r.sleep(r.policy.Pacing)
		if found := firstMatch(r.search(ctx, query), match); found != nil {
			return found
		}
	}
	return nil
}

// search wraps the Searcher with the swallow-and-log policy: any
// transport failure becomes an empty candidate list.
func (r *Resolver) search(ctx context.Context, query string) []string {
	links, err := r.searcher.Search(ctx, query)
	metrics.RecordSearch(err == nil)
	if err != nil {
		r.logger.Warn("web search failed", "query", query, "error", err)
		return nil
	}
	return links
}

func isAttributeLink(link string) bool {
	return strings.Contains(link, attributeSite)
}

func isMarketPriceLink(link string) bool {
	return strings.Contains(link, marketPriceSite) && strings.Contains(link, marketPriceToken)
}

func firstMatch(links []string, match func(string) bool) *string {
	for _, link := range links {
		if match(link) {
			l := link
			return &l
		}
	}
	return nil
}
