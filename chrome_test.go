package placescraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// newMapsServer serves a search page linking to a place page with a
// clickable opening hours control.
func newMapsServer() *httptest.Server {
	place := fullPlace
	place.collapsed = true
	expandScript := `<script>
document.querySelector('div[role="button"]').addEventListener('click', function() {
  this.setAttribute('aria-expanded', 'true');
});
</script>`
	placeHTML := strings.Replace(place.html(), "</body>", expandScript+"</body>", 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/maps/search/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedPage("/maps/place/%E6%95%85%E5%AE%AE/@25.1,121.5,17z", false))
	})
	mux.HandleFunc("/maps/place/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, placeHTML)
	})
	return httptest.NewServer(mux)
}

func TestChromeDriver_RecordAndReplay(t *testing.T) {
	execPath := chromeExecPath(t)
	ts := newMapsServer()
	defer ts.Close()

	options := CrawlerOptions{
		BaseURL:         ts.URL + "/maps/search/",
		ClassifyTimeout: ciMinTimeout(5 * time.Second),
		ExtractTimeout:  ciMinTimeout(5 * time.Second),
		PollInterval:    50 * time.Millisecond,
	}
	keywords := []string{"故宮博物院"}
	want := wantFullRaw.Clone()
	want.Map = str(ts.URL + "/maps/place/故宮/@25.1,121.5,17z")

	logger := &BufferedLogger{}
	recorder := NewSession("chrome_test", logger)
	recorder.FilePrefix = t.TempDir() + "/"
	recorder.SaveToFile = true
	driver, err := recorder.NewDriver(NewChromeOptions{
		Headless:        true,
		NavigateTimeout: ciMinTimeout(30 * time.Second),
		ExecPath:        execPath,
	})
	if err != nil {
		t.Fatalf("NewDriver() error: %v", err)
	}
	crawler, err := NewCrawler(driver, logger, options)
	if err != nil {
		t.Fatal(err)
	}
	got, err := crawler.Lookup(context.Background(), keywords)
	if closeErr := driver.Close(); closeErr != nil {
		t.Errorf("Close() error: %v", closeErr)
	}
	if err != nil {
		t.Fatalf("Lookup() error: %v\n%v", err, logger.String())
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logger.String(), "opening hours expanded") {
		t.Errorf("opening hours control not clicked:\n%v", logger.String())
	}

	// the recorded snapshots give the same record without the browser
	replay := NewSession(recorder.Name, logger)
	replay.FilePrefix = recorder.FilePrefix
	crawler, err = NewCrawler(replay.NewReplayDriver(), logger, options)
	if err != nil {
		t.Fatal(err)
	}
	replayed, err := crawler.Lookup(context.Background(), keywords)
	if err != nil {
		t.Fatalf("replay Lookup() error: %v", err)
	}
	if diff := cmp.Diff(&want, replayed); diff != "" {
		t.Errorf("replay Lookup() mismatch (-want +got):\n%s", diff)
	}
}
