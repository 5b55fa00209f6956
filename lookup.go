package placescraper

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultClassifyTimeout = 1 * time.Second
	DefaultExtractTimeout  = 2 * time.Second
)

// CrawlerOptions configures a Crawler. Zero values fall back to defaults.
type CrawlerOptions struct {
	BaseURL         string
	Selectors       *Selectors
	ClassifyTimeout time.Duration
	ExtractTimeout  time.Duration
	PollInterval    time.Duration
}

// Crawler looks businesses up on the map service through one PageDriver.
type Crawler struct {
	driver          PageDriver
	baseURL         string
	selectors       Selectors
	classifyTimeout time.Duration
	extractTimeout  time.Duration
	interval        time.Duration
	Log             Logger
}

func NewCrawler(driver PageDriver, log Logger, options CrawlerOptions) (*Crawler, error) {
	selectors := DefaultSelectors()
	if options.Selectors != nil {
		selectors = *options.Selectors
	}
	if err := selectors.Validate(); err != nil {
		return nil, err
	}
	if selectors.HighlyMatched == selectors.LowMatched && log != nil {
		log.Printf("highly matched and low matched selectors are identical: %v", selectors.HighlyMatched)
	}

	crawler := &Crawler{
		driver:          driver,
		baseURL:         options.BaseURL,
		selectors:       selectors,
		classifyTimeout: options.ClassifyTimeout,
		extractTimeout:  options.ExtractTimeout,
		interval:        options.PollInterval,
		Log:             log,
	}
	if crawler.baseURL == "" {
		crawler.baseURL = DefaultBaseURL
	}
	if crawler.classifyTimeout <= 0 {
		crawler.classifyTimeout = DefaultClassifyTimeout
	}
	if crawler.extractTimeout <= 0 {
		crawler.extractTimeout = DefaultExtractTimeout
	}
	if crawler.interval <= 0 {
		crawler.interval = DefaultPollInterval
	}
	return crawler, nil
}

// SearchURL returns the search page URL for the keywords.
func (crawler *Crawler) SearchURL(keywords []string) string {
	return crawler.baseURL + url.PathEscape(strings.Join(keywords, " "))
}

// Lookup searches the keywords and extracts the business the search leads to.
// The returned record has its map link set to the decoded URL of the page
// the fields were read from. ErrNotFound means no field showed up in time.
func (crawler *Crawler) Lookup(ctx context.Context, keywords []string) (*RawRecord, error) {
	searchURL := crawler.SearchURL(keywords)
	if err := crawler.navigate(ctx, searchURL); err != nil {
		return nil, err
	}

	outcome, err := Classify(ctx, crawler.driver, crawler.selectors, crawler.classifyTimeout, crawler.interval)
	if err != nil {
		return nil, err
	}
	crawler.printf("%q: %v", strings.Join(keywords, " "), outcome)
	if outcome.Kind == BranchTo {
		if err := crawler.navigate(ctx, outcome.URL); err != nil {
			return nil, err
		}
	}

	extractor := Extractor{Selectors: crawler.selectors, Interval: crawler.interval, Log: crawler.Log}
	record, status, err := extractor.Extract(ctx, crawler.driver, crawler.extractTimeout)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			crawler.printf("%q: no business fields found", strings.Join(keywords, " "))
		}
		return nil, err
	}
	crawler.printf("%q: extraction %v", strings.Join(keywords, " "), status)

	current, err := crawler.driver.CurrentURL(ctx)
	if err != nil {
		return nil, err
	}
	mapURL := decodeURL(current)
	record.Map = &mapURL
	return &record, nil
}

func (crawler *Crawler) navigate(ctx context.Context, u string) error {
	if err := crawler.driver.Navigate(ctx, u); err != nil {
		var navErr NavigationError
		if errors.As(err, &navErr) {
			return err
		}
		return NavigationError{URL: u, Err: err}
	}
	return nil
}

// decodeURL percent-decodes u to keep stored map links short and readable.
// Every valid %XX sequence is decoded; malformed ones are kept as they are.
func decodeURL(u string) string {
	if !strings.Contains(u, "%") {
		return u
	}
	var b strings.Builder
	b.Grow(len(u))
	for i := 0; i < len(u); i++ {
		if u[i] == '%' && i+2 < len(u) && isHex(u[i+1]) && isHex(u[i+2]) {
			b.WriteByte(unhex(u[i+1])<<4 | unhex(u[i+2]))
			i += 2
			continue
		}
		b.WriteByte(u[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func (crawler *Crawler) printf(format string, a ...interface{}) {
	if crawler.Log != nil {
		crawler.Log.Printf(format, a...)
	}
}
