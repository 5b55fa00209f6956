package placescraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// DefaultQueryTimeout bounds a single DOM query, which should never block.
const DefaultQueryTimeout = 5 * time.Second

type NewChromeOptions struct {
	Headless        bool
	NavigateTimeout time.Duration // 0 means DefaultTimeout
	ExecPath        string        // chrome binary, empty to search the usual locations
}

// DefaultTimeout is the default timeout of a navigation.
const DefaultTimeout = 30 * time.Second

// ChromeDriver drives one Chrome tab through chromedp.
type ChromeDriver struct {
	ctx             context.Context
	cancel          context.CancelFunc
	session         *Session
	navigateTimeout time.Duration
	visited         bool
}

// NewChromeOpt starts a browser. The caller must Close the driver to stop
// the browser process.
func (session *Session) NewChromeOpt(options NewChromeOptions) (*ChromeDriver, error) {
	allocOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", options.Headless),
		chromedp.Flag("disable-gpu", options.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.UserAgent(session.userAgent()),
	)
	if options.ExecPath != "" {
		allocOptions = append(allocOptions, chromedp.ExecPath(options.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOptions...)
	ctxt, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(session.Printf))

	driver := &ChromeDriver{
		ctx: ctxt,
		cancel: func() {
			cancel()
			allocCancel()
		},
		session:         session,
		navigateTimeout: options.NavigateTimeout,
	}
	if driver.navigateTimeout <= 0 {
		driver.navigateTimeout = DefaultTimeout
	}

	// start the browser
	if err := chromedp.Run(ctxt); err != nil {
		driver.cancel()
		return nil, fmt.Errorf("couldn't start chrome: %w", err)
	}

	if err := driver.restoreCookies(); err != nil {
		session.Printf("restore cookies: %v", err)
	}
	return driver, nil
}

func (session *Session) NewChrome() (*ChromeDriver, error) {
	return session.NewChromeOpt(NewChromeOptions{Headless: false})
}

func (session *Session) userAgent() string {
	if session.UserAgent == "" {
		return UserAgent_default
	}
	return session.UserAgent
}

// run returns a context of the browser tab that is also cancelled with ctx.
func (driver *ChromeDriver) run(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(driver.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (driver *ChromeDriver) Navigate(ctx context.Context, url string) error {
	if err := driver.saveSnapshot(ctx); err != nil {
		driver.session.Printf("save snapshot: %v", err)
	}

	runCtx, cancel := driver.run(ctx, driver.navigateTimeout)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return NavigationError{URL: url, Err: err}
	}
	driver.visited = true
	return nil
}

func (driver *ChromeDriver) FindOne(ctx context.Context, selector string) (Element, bool, error) {
	nodes, err := driver.query(ctx, selector, nil)
	if err != nil || len(nodes) == 0 {
		return nil, false, err
	}
	return &chromeElement{driver: driver, node: nodes[0]}, true, nil
}

func (driver *ChromeDriver) FindAll(ctx context.Context, selector string) ([]Element, error) {
	nodes, err := driver.query(ctx, selector, nil)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, len(nodes))
	for i, node := range nodes {
		elements[i] = &chromeElement{driver: driver, node: node}
	}
	return elements, nil
}

// query returns the nodes matching selector right now, below from if given.
func (driver *ChromeDriver) query(ctx context.Context, selector string, from *cdp.Node) ([]*cdp.Node, error) {
	runCtx, cancel := driver.run(ctx, DefaultQueryTimeout)
	defer cancel()

	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if from != nil {
		opts = append(opts, chromedp.FromNode(from))
	}
	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return nodes, nil
}

func (driver *ChromeDriver) MoveAndClick(ctx context.Context, element Element) error {
	e, ok := element.(*chromeElement)
	if !ok {
		return fmt.Errorf("element %T doesn't belong to chrome", element)
	}
	runCtx, cancel := driver.run(ctx, DefaultQueryTimeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.ScrollIntoView(e.nodeIDs(), chromedp.ByNodeID),
		chromedp.MouseClickNode(e.node),
	)
	if err != nil {
		return ElementNotInteractableError{Err: err}
	}
	return nil
}

func (driver *ChromeDriver) CurrentURL(ctx context.Context) (string, error) {
	runCtx, cancel := driver.run(ctx, DefaultQueryTimeout)
	defer cancel()

	var location string
	if err := chromedp.Run(runCtx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Close saves the last snapshot and the cookies, then stops the browser.
func (driver *ChromeDriver) Close() error {
	if driver.cancel == nil {
		return nil
	}
	ctx := context.Background()
	if err := driver.saveSnapshot(ctx); err != nil {
		driver.session.Printf("save snapshot: %v", err)
	}
	err := driver.storeCookies()
	driver.cancel()
	driver.cancel = nil
	return err
}

// saveSnapshot stores the page the browser is about to leave, when recording.
func (driver *ChromeDriver) saveSnapshot(ctx context.Context) error {
	if !driver.session.SaveToFile || !driver.visited {
		return nil
	}
	runCtx, cancel := driver.run(ctx, DefaultQueryTimeout)
	defer cancel()

	var html, title, location string
	err := chromedp.Run(runCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Title(&title),
		chromedp.Location(&location),
	)
	if err != nil {
		return err
	}
	_, err = driver.session.savePage(html, PageMetadata{URL: location, Title: title})
	return err
}

type chromeElement struct {
	driver *ChromeDriver
	node   *cdp.Node
}

func (e *chromeElement) nodeIDs() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	runCtx, cancel := e.driver.run(ctx, DefaultQueryTimeout)
	defer cancel()

	var text string
	if err := chromedp.Run(runCtx, chromedp.JavascriptAttribute(e.nodeIDs(), "innerText", &text, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return text, nil
}

func (e *chromeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	runCtx, cancel := e.driver.run(ctx, DefaultQueryTimeout)
	defer cancel()

	var value string
	var ok bool
	if err := chromedp.Run(runCtx, chromedp.AttributeValue(e.nodeIDs(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (e *chromeElement) FindOne(ctx context.Context, selector string) (Element, bool, error) {
	nodes, err := e.driver.query(ctx, selector, e.node)
	if err != nil || len(nodes) == 0 {
		return nil, false, err
	}
	return &chromeElement{driver: e.driver, node: nodes[0]}, true, nil
}

func (e *chromeElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	nodes, err := e.driver.query(ctx, selector, e.node)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, len(nodes))
	for i, node := range nodes {
		elements[i] = &chromeElement{driver: e.driver, node: node}
	}
	return elements, nil
}
