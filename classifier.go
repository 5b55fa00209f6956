package placescraper

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// OutcomeKind is the layout a search page turned out to be.
type OutcomeKind int

const (
	// NoMatch: neither a result link nor place fields showed up in time.
	NoMatch OutcomeKind = iota
	// DirectMatch: the search resolved to a place page.
	DirectMatch
	// BranchTo: a results feed was found; Outcome.URL is its first entry.
	BranchTo
)

func (k OutcomeKind) String() string {
	switch k {
	case DirectMatch:
		return "direct match"
	case BranchTo:
		return "branch"
	default:
		return "no match"
	}
}

// Outcome is the navigation decision for a search page.
type Outcome struct {
	Kind OutcomeKind
	URL  string
	// LowMatched is set when the branch came from the partial match feed.
	LowMatched bool
}

func (o Outcome) String() string {
	if o.Kind == BranchTo {
		return fmt.Sprintf("%v to %v", o.Kind, o.URL)
	}
	return o.Kind.String()
}

// Classify decides what the current page is. It re-checks the page every
// interval until the timeout elapses: a highly matched result wins over a
// low matched one, and a visible place name means a direct match.
func Classify(ctx context.Context, driver PageDriver, selectors Selectors, timeout, interval time.Duration) (Outcome, error) {
	var outcome Outcome
	done, err := pollUntil(ctx, timeout, interval, func(ctx context.Context) bool {
		var ok bool
		outcome, ok = classifyOnce(ctx, driver, selectors)
		return ok
	})
	if err != nil {
		return Outcome{}, err
	}
	if !done {
		return Outcome{Kind: NoMatch}, nil
	}
	return outcome, nil
}

func classifyOnce(ctx context.Context, driver PageDriver, selectors Selectors) (Outcome, bool) {
	candidates := []struct {
		selector   string
		lowMatched bool
	}{
		{selectors.HighlyMatched, false},
		{selectors.LowMatched, true},
	}
	for _, c := range candidates {
		href, ok := findHref(ctx, driver, c.selector)
		if ok {
			return Outcome{Kind: BranchTo, URL: href, LowMatched: c.lowMatched}, true
		}
	}

	if _, ok, err := driver.FindOne(ctx, selectors.Fields[FieldName]); err == nil && ok {
		return Outcome{Kind: DirectMatch}, true
	}
	return Outcome{}, false
}

// findHref returns the absolute href of the first element matching selector.
func findHref(ctx context.Context, driver PageDriver, selector string) (string, bool) {
	elem, ok, err := driver.FindOne(ctx, selector)
	if err != nil || !ok {
		return "", false
	}
	href, ok, err := elem.Attribute(ctx, "href")
	if err != nil || !ok || href == "" {
		return "", false
	}
	current, err := driver.CurrentURL(ctx)
	if err != nil {
		return href, true
	}
	return resolveLink(current, href), true
}

func resolveLink(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	u, err := baseURL.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
