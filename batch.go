package placescraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Attraction is a source record whose business data is looked up.
type Attraction struct {
	Id      string
	Name    string
	Zipcode string
	Add     string
}

// Keywords returns the search keywords: name, zipcode and address.
func (a Attraction) Keywords() []string {
	return []string{a.Name, a.Zipcode, a.Add}
}

type AttractionSource interface {
	FetchAttractions(ctx context.Context) ([]Attraction, error)
}

type RecordSink interface {
	Persist(ctx context.Context, rows []BusinessRow) error
}

// DriverFactory creates a driver owned by one worker.
type DriverFactory func() (PageDriver, error)

// Runner looks up a batch of attractions and hands the results to sinks.
type Runner struct {
	NewDriver DriverFactory
	Options   CrawlerOptions
	Locale    Locale // LocaleZhTW if zero
	Workers   int    // number of browsers run in parallel, at least 1
	Limit     int    // if >0, only the first Limit attractions are processed
	Log       Logger
}

// Summary counts the outcome of a batch.
type Summary struct {
	Attractions   int
	Found         int
	NotFound      int
	Failed        int
	UnparsedHours int
	Unprocessed   int // not looked up because the batch was cancelled
}

func (s Summary) String() string {
	return fmt.Sprintf("attractions=%d found=%d not_found=%d failed=%d unparsed_hours=%d unprocessed=%d",
		s.Attractions, s.Found, s.NotFound, s.Failed, s.UnparsedHours, s.Unprocessed)
}

type lookupResult struct {
	row   *BusinessRow
	state resultState
}

type resultState int

const (
	resultUnprocessed resultState = iota
	resultFound
	resultNotFound
	resultFailed
)

// Run fetches the attractions, looks every one up and persists the found
// records to every sink. A lookup that finds nothing or fails is logged and
// skipped; only source, driver and sink failures abort the batch.
//
// When ctx is cancelled, the records found so far are still persisted and
// Run returns the summary with the context's error.
func (runner *Runner) Run(ctx context.Context, source AttractionSource, sinks ...RecordSink) (Summary, error) {
	attractions, err := source.FetchAttractions(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch attractions: %w", err)
	}
	if runner.Limit > 0 && len(attractions) > runner.Limit {
		attractions = attractions[:runner.Limit]
	}

	results, err := runner.lookupAll(ctx, attractions)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Attractions: len(attractions)}
	rows := make([]BusinessRow, 0, len(results))
	for _, result := range results {
		switch result.state {
		case resultFound:
			summary.Found++
			if result.row.HasUnparsedHours() {
				summary.UnparsedHours++
			}
			rows = append(rows, *result.row)
		case resultNotFound:
			summary.NotFound++
		case resultFailed:
			summary.Failed++
		default:
			summary.Unprocessed++
		}
	}

	interrupted := ctx.Err()
	persistCtx := ctx
	if interrupted != nil {
		runner.warnf("batch interrupted, persisting %d records found so far", len(rows))
		persistCtx = context.WithoutCancel(ctx)
	}
	for _, sink := range sinks {
		if err := sink.Persist(persistCtx, rows); err != nil {
			return summary, fmt.Errorf("persist: %w", err)
		}
	}
	if interrupted != nil {
		return summary, interrupted
	}
	runner.infof("batch done: %v", summary)
	return summary, nil
}

// lookupAll fills one result per attraction. Attractions left when ctx is
// cancelled stay unprocessed; the error is only a worker failure.
func (runner *Runner) lookupAll(ctx context.Context, attractions []Attraction) ([]lookupResult, error) {
	workers := runner.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(attractions) {
		workers = len(attractions)
	}

	results := make([]lookupResult, len(attractions))
	jobs := make(chan int)
	errs := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if err := runner.work(ctx, workerID, attractions, jobs, results); err != nil {
				errs <- err
			}
		}(w + 1)
	}

	go func() {
		defer close(jobs)
		for i := range attractions {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}
	return results, nil
}

// work owns one driver for its whole life and closes it on every exit path.
func (runner *Runner) work(ctx context.Context, workerID int, attractions []Attraction, jobs <-chan int, results []lookupResult) error {
	driver, err := runner.NewDriver()
	if err != nil {
		// keep the feeder from blocking on a dead worker
		for range jobs {
		}
		return fmt.Errorf("worker %d: new driver: %w", workerID, err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			runner.printf("worker %d: close driver: %v", workerID, err)
		}
	}()

	crawler, err := NewCrawler(driver, runner.Log, runner.Options)
	if err != nil {
		for range jobs {
		}
		return err
	}

	for i := range jobs {
		if ctx.Err() != nil {
			continue
		}
		results[i] = runner.lookupOne(ctx, crawler, attractions[i], i, len(attractions))
	}
	return nil
}

func (runner *Runner) lookupOne(ctx context.Context, crawler *Crawler, attraction Attraction, index, total int) lookupResult {
	runner.infof("[%d/%d] %v %q", index+1, total, attraction.Id, attraction.Name)

	raw, err := crawler.Lookup(ctx, attraction.Keywords())
	if err != nil && ctx.Err() != nil {
		// cut short, not a verdict on the attraction
		return lookupResult{state: resultUnprocessed}
	}
	if errors.Is(err, ErrNotFound) {
		runner.infof("   %v: not found, skipped", attraction.Id)
		return lookupResult{state: resultNotFound}
	}
	if err != nil {
		runner.warnf("   %v: lookup failed: %v", attraction.Id, err)
		return lookupResult{state: resultFailed}
	}

	normalized, err := Normalize(*raw, runner.locale())
	if err != nil {
		runner.warnf("   %v: normalize failed: %v", attraction.Id, err)
		return lookupResult{state: resultFailed}
	}
	if normalized.HasUnparsedHours() {
		runner.warnf("   %v: opening hours kept unparsed for review: %v", attraction.Id, raw.OpeningHours)
	}
	return lookupResult{row: &BusinessRow{Id: attraction.Id, NormalizedRecord: normalized}, state: resultFound}
}

func (runner *Runner) locale() Locale {
	if runner.Locale.Days == nil {
		return LocaleZhTW
	}
	return runner.Locale
}

func (runner *Runner) printf(format string, a ...interface{}) {
	if runner.Log != nil {
		runner.Log.Printf(format, a...)
	}
}

func (runner *Runner) infof(format string, a ...interface{}) {
	if log, ok := runner.Log.(OutcomeLogger); ok {
		log.Infof(format, a...)
		return
	}
	runner.printf(format, a...)
}

func (runner *Runner) warnf(format string, a ...interface{}) {
	if log, ok := runner.Log.(OutcomeLogger); ok {
		log.Warnf(format, a...)
		return
	}
	runner.printf(format, a...)
}
