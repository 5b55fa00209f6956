package placescraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// PageLoader returns the page served for url.
type PageLoader func(ctx context.Context, url string) (*Page, error)

// StaticDriver is a PageDriver over parsed HTML snapshots. It is used to
// replay recorded sessions and to run the crawler against fixed pages.
type StaticDriver struct {
	load PageLoader
	page *Page
	// OnClick, if set, is called by MoveAndClick. It may replace the page
	// with SetPage to simulate the effect of the click.
	OnClick func(driver *StaticDriver, element Element) error
}

func NewStaticDriver(load PageLoader) *StaticDriver {
	return &StaticDriver{load: load}
}

// PagesFromHTML serves fixed HTML documents keyed by URL.
func PagesFromHTML(pages map[string]string, logger Logger) PageLoader {
	return func(ctx context.Context, url string) (*Page, error) {
		html, ok := pages[url]
		if !ok {
			return nil, fmt.Errorf("no page for %v", url)
		}
		return NewPage([]byte(html), url, logger)
	}
}

func (driver *StaticDriver) Navigate(ctx context.Context, url string) error {
	page, err := driver.load(ctx, url)
	if err != nil {
		return NavigationError{URL: url, Err: err}
	}
	driver.page = page
	return nil
}

// SetPage replaces the current page.
func (driver *StaticDriver) SetPage(page *Page) {
	driver.page = page
}

func (driver *StaticDriver) Page() *Page {
	return driver.page
}

func (driver *StaticDriver) FindOne(ctx context.Context, selector string) (Element, bool, error) {
	if driver.page == nil {
		return nil, false, nil
	}
	return findOneIn(driver.page.Selection, selector)
}

func (driver *StaticDriver) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if driver.page == nil {
		return nil, nil
	}
	return findAllIn(driver.page.Selection, selector)
}

func (driver *StaticDriver) MoveAndClick(ctx context.Context, element Element) error {
	if driver.OnClick == nil {
		return nil
	}
	return driver.OnClick(driver, element)
}

func (driver *StaticDriver) CurrentURL(ctx context.Context) (string, error) {
	if driver.page == nil || driver.page.Url == nil {
		return "", nil
	}
	return driver.page.Url.String(), nil
}

func (driver *StaticDriver) Close() error {
	driver.page = nil
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (element staticElement) Text(ctx context.Context) (string, error) {
	return strings.TrimSpace(element.sel.Text()), nil
}

func (element staticElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	value, ok := element.sel.Attr(name)
	return value, ok, nil
}

func (element staticElement) FindOne(ctx context.Context, selector string) (Element, bool, error) {
	return findOneIn(element.sel, selector)
}

func (element staticElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	return findAllIn(element.sel, selector)
}

func findOneIn(sel *goquery.Selection, selector string) (Element, bool, error) {
	if err := validateSelector(selector); err != nil {
		return nil, false, err
	}
	found := sel.Find(selector)
	if found.Length() == 0 {
		return nil, false, nil
	}
	return staticElement{found.First()}, true, nil
}

func findAllIn(sel *goquery.Selection, selector string) ([]Element, error) {
	if err := validateSelector(selector); err != nil {
		return nil, err
	}
	found := sel.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, staticElement{s})
	})
	return elements, nil
}

// validateSelector rejects selectors goquery would silently match nothing with.
func validateSelector(selector string) error {
	if _, err := cascadia.Compile(selector); err != nil {
		return fmt.Errorf("selector %q: %w", selector, err)
	}
	return nil
}
