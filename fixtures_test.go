package placescraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"
)

const testBaseURL = "https://maps.test/maps/search/"

const testPlaceURL = "https://maps.test/maps/place/%E6%95%85%E5%AE%AE/@25.1,121.5,17z"

// testOptions keeps polling loops short.
var testOptions = CrawlerOptions{
	BaseURL:         testBaseURL,
	ClassifyTimeout: 60 * time.Millisecond,
	ExtractTimeout:  60 * time.Millisecond,
	PollInterval:    5 * time.Millisecond,
}

func testSearchURL(keywords ...string) string {
	return testBaseURL + url.PathEscape(strings.Join(keywords, " "))
}

type hoursRow struct {
	day       string
	durations []string
}

var testHours = []hoursRow{
	{"星期一", []string{"休息"}},
	{"星期二", []string{"09:00–17:00"}},
	{"星期三", []string{"09:00–17:00"}},
	{"星期四", []string{"09:00–17:00"}},
	{"星期五", []string{"09:00–12:00", "13:00–21:00"}},
	{"星期六", []string{"24 小時營業"}},
	{"星期日", []string{"09:00–17:00"}},
}

// placePage is a place page in the zh-TW layout of DefaultSelectors.
type placePage struct {
	name, rating, reviews, placeType string
	address, website, phone          string
	collapsed                        bool // show the opening hours control
	hours                            []hoursRow
}

var fullPlace = placePage{
	name:      "故宮博物院",
	rating:    "4.6",
	reviews:   "(54,321)",
	placeType: "博物館",
	address:   "地址: 111台北市士林區至善路二段221號",
	website:   "網站: npm.gov.tw ",
	phone:     "電話號碼: 02 2881 2021",
	hours:     testHours,
}

func (p placePage) html() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%v - Google 地圖</title></head><body>", p.name)
	b.WriteString(`<div role="main">`)
	if p.name != "" {
		fmt.Fprintf(&b, `<h1 class="DUwDvf fontHeadlineLarge">%v</h1>`, p.name)
	}
	if p.rating != "" || p.reviews != "" {
		b.WriteString(`<div class="F7nice ">`)
		if p.rating != "" {
			fmt.Fprintf(&b, `<span><span aria-hidden="true">%v</span></span>`, p.rating)
		} else {
			b.WriteString(`<i></i>`)
		}
		if p.reviews != "" {
			fmt.Fprintf(&b, `<span><span><span aria-label="%v 則評論">%v</span></span></span>`, p.reviews, p.reviews)
		}
		b.WriteString(`</div>`)
	}
	if p.placeType != "" {
		fmt.Fprintf(&b, `<button class="DkEaL ">%v</button>`, p.placeType)
	}
	b.WriteString(`</div>`)

	fmt.Fprintf(&b, `<div class="m6QErb " role="region" aria-label="%v 的相關資訊">`, p.name)
	if p.address != "" {
		fmt.Fprintf(&b, `<button class="CsEnBe" aria-label="%v" data-item-id="address"></button>`, p.address)
	}
	if p.website != "" {
		fmt.Fprintf(&b, `<a class="CsEnBe" aria-label="%v" data-item-id="authority" href="https://www.npm.gov.tw/"></a>`, p.website)
	}
	if p.phone != "" {
		fmt.Fprintf(&b, `<button class="CsEnBe" aria-label="%v" data-item-id="phone:tel:0228812021"></button>`, p.phone)
	}
	b.WriteString(`</div>`)

	if p.collapsed {
		b.WriteString(`<div class="OMl5r hH0dDd jBYmhd" data-hide-tooltip-on-mouse-move="true" aria-expanded="false" role="button">營業時間</div>`)
	}
	if p.hours != nil {
		b.WriteString(`<table class="eK4R0e fontBodyMedium"><tbody>`)
		for _, row := range p.hours {
			fmt.Fprintf(&b, `<tr class="y0skZc"><td class="ylH6lf fontTitleSmall"><div>%v</div></td><td class="mxowUb"><ul>`, row.day)
			for _, d := range row.durations {
				fmt.Fprintf(&b, `<li class="G8aQO">%v</li>`, d)
			}
			b.WriteString(`</ul></td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// feedPage is a search results page linking to href. lowMatched selects the
// partial match feed.
func feedPage(href string, lowMatched bool) string {
	label := "「故宮」的搜尋結果"
	if lowMatched {
		label = "部分相符的結果"
	}
	return fmt.Sprintf(`<html><head><title>Google 地圖</title></head><body>`+
		`<div role="feed" aria-label="%v"><div><a href="%v">故宮</a><a href="/maps/place/other">other</a></div></div>`+
		`</body></html>`, label, href)
}

const emptyPage = `<html><head><title>Google 地圖</title></head><body><div role="main"></div></body></html>`

func mustPage(t *testing.T, html, pageURL string) *Page {
	t.Helper()
	page, err := NewPage([]byte(html), pageURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	return page
}

// staticDriverAt returns a driver already showing html at pageURL.
func staticDriverAt(t *testing.T, html, pageURL string) *StaticDriver {
	t.Helper()
	driver := NewStaticDriver(PagesFromHTML(map[string]string{pageURL: html}, nil))
	if err := driver.Navigate(context.Background(), pageURL); err != nil {
		t.Fatal(err)
	}
	return driver
}

// renderingDriver shows the next of its pages after every FindAll, i.e.
// once per extraction poll, to mimic a page that renders progressively.
type renderingDriver struct {
	*StaticDriver
	pages []*Page
	shown int
}

func newRenderingDriver(pages ...*Page) *renderingDriver {
	driver := &renderingDriver{StaticDriver: NewStaticDriver(nil), pages: pages}
	driver.SetPage(pages[0])
	return driver
}

func (driver *renderingDriver) FindAll(ctx context.Context, selector string) ([]Element, error) {
	elements, err := driver.StaticDriver.FindAll(ctx, selector)
	if driver.shown+1 < len(driver.pages) {
		driver.shown++
		driver.SetPage(driver.pages[driver.shown])
	}
	return elements, err
}

func str(s string) *string {
	return &s
}
