package placescraper

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// restoreCookies copies the session's cookie jar into the browser, so a
// consent accepted in an earlier run stays accepted.
func (driver *ChromeDriver) restoreCookies() error {
	jar := driver.session.cookieJar()
	if jar == nil {
		return nil
	}
	cookies := jar.AllCookies()
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, toCookieParam(c))
	}

	runCtx, cancel := driver.run(context.Background(), DefaultQueryTimeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return storage.SetCookies(params).Do(ctx)
	}))
}

// storeCookies copies the browser cookies back into the jar and saves it.
// It does nothing unless the jar was loaded with Session.LoadCookie.
func (driver *ChromeDriver) storeCookies() error {
	if !driver.session.cookieFileLoaded() {
		return nil
	}
	var cookies []*network.Cookie
	runCtx, cancel := driver.run(context.Background(), DefaultQueryTimeout)
	defer cancel()
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return err
	}

	jar := driver.session.cookieJar()
	for _, c := range cookies {
		u, cookie := fromNetworkCookie(c)
		jar.SetCookies(u, []*http.Cookie{cookie})
	}
	return driver.session.SaveCookie()
}

func toCookieParam(c *http.Cookie) *network.CookieParam {
	param := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HttpOnly,
	}
	if !c.Expires.IsZero() {
		expires := cdp.TimeSinceEpoch(c.Expires)
		param.Expires = &expires
	}
	return param
}

func fromNetworkCookie(c *network.Cookie) (*url.URL, *http.Cookie) {
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	if !c.Session && c.Expires > 0 {
		cookie.Expires = time.Unix(int64(c.Expires), 0)
	}
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	u := &url.URL{
		Scheme: scheme,
		Host:   strings.TrimPrefix(c.Domain, "."),
		Path:   c.Path,
	}
	return u, cookie
}
