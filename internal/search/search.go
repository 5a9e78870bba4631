package search

import (
	"context"
	"math/rand"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricefinder/internal/fetch"
)

// Searcher issues one web search and returns candidate URLs in the
// order the results page listed them. Implementations return an error
// on transport failure; callers log it and treat the result as empty.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

const (
	defaultBaseURL = "https://www.google.com/search"

	// Opaque token lengths observed in real browser-originated
	// search requests.
	eiTokenLength  = 12
	vedTokenLength = 40

	// Marker wrapping every outbound result link on the results page.
	redirectWrapperMarker = "/url?q="
	redirectWrapperKey    = "/url?q"

	contentPageSuffix = ".html"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GoogleSearcher scrapes a Google results page for outbound links.
type GoogleSearcher struct {
	baseURL string
	fetcher fetch.Fetcher
}

func NewGoogleSearcher(baseURL string, fetcher fetch.Fetcher) *GoogleSearcher {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return &GoogleSearcher{baseURL: base, fetcher: fetcher}
}

// Search fetches one results page and returns every redirect-wrapped
// link pointing at a content page, in page order.
func (s *GoogleSearcher) Search(ctx context.Context, query string) ([]string, error) {
	pageURL := s.baseURL + "?" + buildQueryParams(query)

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	return ExtractResultLinks(doc), nil
}

// buildQueryParams builds the results-page query string: the search
// terms (spaces folded to '+', then escaped) plus a fixed set of
// browser-plausible parameters. The constant values are reproduced
// verbatim; ei and ved are freshly randomized opaque tokens.
func buildQueryParams(query string) string {
	encoded := url.QueryEscape(strings.ReplaceAll(query, " ", "+"))

	params := []struct {
		key   string
		value string
	}{
		{"q", encoded},
		{"oq", encoded},
		{"sca_esv", "596828094"},
		{"rlz", "1C5CHFA_enTR1083TR1083"},
		{"sxsrf", "ACQVn0_iTuo23PbxyNLbyKnQOtXWfLjYlg%3A1704791251151"},
		{"ei", randomToken(eiTokenLength)},
		{"ved", randomToken(vedTokenLength)},
		{"uact", "0"},
		{"sclient", "gws-wiz-serp"},
	}

	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(p.value)
	}
	return sb.String()
}

// ExtractResultLinks walks every anchor in the document, unwraps hrefs
// carrying the redirect-wrapper pattern, and keeps only targets that
// look like content pages. Order follows the document.
func ExtractResultLinks(doc *goquery.Document) []string {
	links := make([]string, 0)

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, redirectWrapperMarker) {
			return
		}

		// The wrapper href is itself query-string shaped; parsing it
		// as one yields the decoded target under the "/url?q" key.
		// ParseQuery keeps the pairs it could decode, which is the
		// lenient behavior wanted here.
		values, _ := url.ParseQuery(href)
		target := values.Get(redirectWrapperKey)
		if target == "" {
			return
		}

		if strings.Contains(target, contentPageSuffix) {
			links = append(links, target)
		}
	})

	return links
}

// randomToken builds an opaque alphanumeric token of length n.
func randomToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[rand.Intn(len(tokenAlphabet))]
	}
	return string(b)
}
