package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// fakeFetcher serves a canned body and records the URLs requested.
type fakeFetcher struct {
	body string
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (string, error) {
	f.urls = append(f.urls, pageURL)
	return f.body, f.err
}

const serpFixture = `<html><body>
<a href="/url?q=https%3A%2F%2Fwww.epey.com%2Fakilli-telefonlar%2Fapple-iphone-13.html&sa=U&ved=abc">spec page</a>
<a href="/maps">maps</a>
<a href="/url?q=https%3A%2F%2Fwww.akakce.com%2Fcep-telefonu%2Fen-ucuz-apple-iphone-13-fiyati%2C12345.html&sa=U">price page</a>
<a href="https://accounts.google.com/signin">sign in</a>
<a href="/url?q=https%3A%2F%2Fexample.com%2Fabout">no html suffix</a>
</body></html>`

func TestSearch_ExtractsAndFiltersLinks(t *testing.T) {
	fetcher := &fakeFetcher{body: serpFixture}
	s := NewGoogleSearcher("", fetcher)

	links, err := s.Search(context.Background(), "Apple iPhone 13 epey")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	want := []string{
		"https://www.epey.com/akilli-telefonlar/apple-iphone-13.html",
		"https://www.akakce.com/cep-telefonu/en-ucuz-apple-iphone-13-fiyati,12345.html",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d (%v)", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("link %d = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestSearch_QueryParameters(t *testing.T) {
	fetcher := &fakeFetcher{body: "<html></html>"}
	s := NewGoogleSearcher("https://www.google.com/search", fetcher)

	if _, err := s.Search(context.Background(), "Apple iPhone 13 epey"); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(fetcher.urls) != 1 {
		t.Fatalf("expected 1 fetch, got %d", len(fetcher.urls))
	}

	u := fetcher.urls[0]
	if !strings.HasPrefix(u, "https://www.google.com/search?") {
		t.Fatalf("unexpected search URL: %q", u)
	}
	// Spaces folded to '+' before escaping.
	if !strings.Contains(u, "q=Apple%2BiPhone%2B13%2Bepey") {
		t.Fatalf("expected encoded query terms in URL, got %q", u)
	}
	for _, constant := range []string{
		"oq=Apple%2BiPhone%2B13%2Bepey",
		"sca_esv=596828094",
		"rlz=1C5CHFA_enTR1083TR1083",
		"sxsrf=ACQVn0_iTuo23PbxyNLbyKnQOtXWfLjYlg%3A1704791251151",
		"uact=0",
		"sclient=gws-wiz-serp",
	} {
		if !strings.Contains(u, constant) {
			t.Fatalf("expected %q in search URL, got %q", constant, u)
		}
	}
}

func TestSearch_TransportErrorReturnsError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection reset")}
	s := NewGoogleSearcher("", fetcher)

	links, err := s.Search(context.Background(), "anything epey")
	if err == nil {
		t.Fatalf("expected transport error to surface")
	}
	if len(links) != 0 {
		t.Fatalf("expected no links on error, got %v", links)
	}
}

func TestExtractResultLinks_UnwrapsRedirectWrapper(t *testing.T) {
	html := `<a href="/url?q=https%3A%2F%2Fexample.com%2Fpage.html&sa=D">x</a>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("fixture did not parse: %v", err)
	}

	links := ExtractResultLinks(doc)
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d (%v)", len(links), links)
	}
	if links[0] != "https://example.com/page.html" {
		t.Fatalf("expected decoded target URL, got %q", links[0])
	}
}

func TestExtractResultLinks_SkipsNonWrapperHrefs(t *testing.T) {
	html := `<a href="https://example.com/direct.html">x</a><a href="/preferences">y</a>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("fixture did not parse: %v", err)
	}

	if links := ExtractResultLinks(doc); len(links) != 0 {
		t.Fatalf("expected no links for non-wrapper hrefs, got %v", links)
	}
}

func TestBuildQueryParams_RandomTokenLengths(t *testing.T) {
	params := buildQueryParams("x y")

	var ei, ved string
	for _, pair := range strings.Split(params, "&") {
		kv := strings.SplitN(pair, "=", 2)
		switch kv[0] {
		case "ei":
			ei = kv[1]
		case "ved":
			ved = kv[1]
		}
	}

	if len(ei) != eiTokenLength {
		t.Fatalf("expected ei token of length %d, got %d (%q)", eiTokenLength, len(ei), ei)
	}
	if len(ved) != vedTokenLength {
		t.Fatalf("expected ved token of length %d, got %d (%q)", vedTokenLength, len(ved), ved)
	}
}

func TestRandomToken_AlphanumericOnly(t *testing.T) {
	token := randomToken(64)
	if len(token) != 64 {
		t.Fatalf("expected 64 characters, got %d", len(token))
	}
	for _, r := range token {
		if !strings.ContainsRune(tokenAlphabet, r) {
			t.Fatalf("unexpected character %q in token %q", r, token)
		}
	}
}
