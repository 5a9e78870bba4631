package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"pricefinder/internal/config"
)

// Fetcher retrieves the HTML body of a page. Implementations apply
// the shared browser-like header profile so search-result pages and
// third-party product pages see the same client.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// NewFetcherFromConfig selects the fetch engine. "browser" renders
// pages through rod for sites that block plain HTTP clients; anything
// else falls back to the plain client.
func NewFetcherFromConfig(cfg *config.Config) Fetcher {
	timeout := time.Duration(cfg.Fetch.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if cfg.Scraper.Engine == "browser" {
		return NewRodFetcher(cfg.Scraper.Rod.BrowserURL, timeout)
	}

	maxRedirects := cfg.Fetch.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	return NewHTTPFetcher(timeout, maxRedirects)
}

// HTTPFetcher is the plain net/http implementation.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration, maxRedirects int) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	applyHeaderProfile(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// applyHeaderProfile sets the browser-like header set used for every
// outbound page fetch, with a fresh random user agent each time.
func applyHeaderProfile(req *http.Request) {
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Content-Type", "text/html; charset=UTF-8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")
}

// decodeBody decompresses the response body according to its
// Content-Encoding. Setting Accept-Encoding by hand disables
// net/http's transparent gzip handling, so all three advertised
// encodings are handled here.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	return io.ReadAll(reader)
}

// RodFetcher renders pages through a real browser before returning
// the resulting HTML. Used for sites whose markup only materializes
// after script execution or that refuse plain clients.
type RodFetcher struct {
	BrowserURL string
	Timeout    time.Duration
}

func NewRodFetcher(browserURL string, timeout time.Duration) *RodFetcher {
	return &RodFetcher{BrowserURL: browserURL, Timeout: timeout}
}

func (f *RodFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}

	browser := rod.New().Context(ctx).Timeout(f.Timeout)
	if f.BrowserURL != "" {
		browser = browser.ControlURL(f.BrowserURL)
	}

	if err := browser.Connect(); err != nil {
		return "", err
	}
	defer browser.MustClose()

	page, err := browser.Page(proto.TargetCreateTarget{URL: u.String()})
	if err != nil {
		return "", err
	}
	defer page.MustClose()

	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	htmlStr, err := page.HTML()
	if err != nil {
		return "", err
	}
	if htmlStr == "" {
		return "", errors.New("browser returned an empty document")
	}

	return htmlStr, nil
}
