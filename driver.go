package placescraper

import "context"

// Element is a handle to a node of the page currently loaded by a PageDriver.
// Handles are only valid until the next navigation.
type Element interface {
	// Text returns the visible text of the element.
	Text(ctx context.Context) (string, error)
	// Attribute returns the named attribute. ok is false if the attribute is missing.
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	// FindOne looks up the first descendant matching selector.
	FindOne(ctx context.Context, selector string) (Element, bool, error)
	// FindAll looks up every descendant matching selector.
	FindAll(ctx context.Context, selector string) ([]Element, error)
}

// PageDriver is the browser capability the crawler needs.
//
// FindOne and FindAll never wait: they evaluate the selector against the page
// as it is right now. A selector matching nothing is reported through the
// bool result (or an empty slice), never through err; err is reserved for
// failures of the driver itself.
//
// A PageDriver drives a single page and must not be shared between
// concurrent lookups.
type PageDriver interface {
	Navigate(ctx context.Context, url string) error
	FindOne(ctx context.Context, selector string) (Element, bool, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// MoveAndClick scrolls the element into view and clicks it.
	// It returns ElementNotInteractableError if the element can't be clicked.
	MoveAndClick(ctx context.Context, element Element) error
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}
