package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and the lookup
// pipeline. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	lookupsTotal      = make(map[string]int64)
	searchesTotal     = make(map[string]int64)
	priceScrapesTotal = make(map[string]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

// RecordRequest increments the request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	requestsTotal[reqKey{Method: method, Path: path, Status: status}]++
	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordLookup counts a finished lookup by outcome: "full", "partial",
// or "empty".
func RecordLookup(outcome string) {
	mu.Lock()
	defer mu.Unlock()
	lookupsTotal[outcome]++
}

// RecordSearch counts one web search request by result.
func RecordSearch(success bool) {
	mu.Lock()
	defer mu.Unlock()
	searchesTotal[boolLabel(success)]++
}

// RecordPriceScrape counts one price-page scrape by result.
func RecordPriceScrape(success bool) {
	mu.Lock()
	defer mu.Unlock()
	priceScrapesTotal[boolLabel(success)]++
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP pricefinder_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE pricefinder_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "pricefinder_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP pricefinder_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE pricefinder_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP pricefinder_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE pricefinder_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "pricefinder_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "pricefinder_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	b.WriteString("# HELP pricefinder_lookups_total Total product lookups by outcome\n")
	b.WriteString("# TYPE pricefinder_lookups_total counter\n")
	for _, k := range sortedKeys(lookupsTotal) {
		fmt.Fprintf(&b, "pricefinder_lookups_total{outcome=\"%s\"} %d\n", k, lookupsTotal[k])
	}

	b.WriteString("# HELP pricefinder_searches_total Total web search requests\n")
	b.WriteString("# TYPE pricefinder_searches_total counter\n")
	for _, k := range sortedKeys(searchesTotal) {
		fmt.Fprintf(&b, "pricefinder_searches_total{success=\"%s\"} %d\n", k, searchesTotal[k])
	}

	b.WriteString("# HELP pricefinder_price_scrapes_total Total price-page scrapes\n")
	b.WriteString("# TYPE pricefinder_price_scrapes_total counter\n")
	for _, k := range sortedKeys(priceScrapesTotal) {
		fmt.Fprintf(&b, "pricefinder_price_scrapes_total{success=\"%s\"} %d\n", k, priceScrapesTotal[k])
	}

	return b.String()
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
