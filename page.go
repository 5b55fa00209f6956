package placescraper

import (
	"bytes"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed HTML snapshot of a place or search page.
type Page struct {
	*goquery.Document
	BaseUrl *url.URL
	Logger  Logger
}

// NewPage parses body as the page at pageURL.
func NewPage(body []byte, pageURL string, logger Logger) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	doc.Url, err = url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	baseUrl := doc.Url

	base := doc.Find("head base")
	if base.Length() == 1 {
		if href, exists := base.Attr("href"); exists {
			baseUrl, err = doc.Url.Parse(href)
			if err != nil {
				return nil, err
			}
		}
	}

	if logger != nil {
		logger.Printf("* %v", doc.Find("title").Text())
	}

	return &Page{doc, baseUrl, logger}, nil
}

func (page *Page) ResolveLink(relativeURL string) (string, error) {
	reqUrl, err := page.BaseUrl.Parse(relativeURL)
	if err != nil {
		return "", err
	}
	return reqUrl.String(), nil
}
