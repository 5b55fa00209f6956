package placescraper

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ExtractStatus is the result state of an extraction.
type ExtractStatus int

const (
	// ExtractTimedOut: nothing was found before the timeout.
	ExtractTimedOut ExtractStatus = iota
	// ExtractPartial: the timeout elapsed with some fields found.
	ExtractPartial
	// ExtractComplete: every field was found.
	ExtractComplete
)

func (s ExtractStatus) String() string {
	switch s {
	case ExtractComplete:
		return "complete"
	case ExtractPartial:
		return "partial"
	default:
		return "timed out"
	}
}

// HoursDelimiter joins the duration fragments of one weekday row.
const HoursDelimiter = "/"

// Extractor polls a place page for the fields of a business.
type Extractor struct {
	Selectors Selectors
	Interval  time.Duration
	Log       Logger
}

// Extract polls the current page until every field is present or the
// timeout elapses. A partial record is returned with ExtractPartial; if
// nothing was found at all the error is ErrNotFound.
func (x Extractor) Extract(ctx context.Context, driver PageDriver, timeout time.Duration) (RawRecord, ExtractStatus, error) {
	acc := newRawRecord()
	done, err := pollUntil(ctx, timeout, x.Interval, func(ctx context.Context) bool {
		acc = x.poll(ctx, driver, acc)
		return complete(acc)
	})
	if err != nil {
		return acc, ExtractTimedOut, err
	}
	if done {
		return acc, ExtractComplete, nil
	}
	if acc.Viable() {
		return acc, ExtractPartial, nil
	}
	return acc, ExtractTimedOut, ErrNotFound
}

// complete reports whether every extracted field is present. The map link
// isn't read from the page.
func complete(r RawRecord) bool {
	for _, f := range Fields() {
		if f == FieldMap {
			continue
		}
		if !r.Has(f) {
			return false
		}
	}
	return true
}

// poll evaluates the page once and returns the accumulator with whatever
// is newly visible. prev is left untouched.
func (x Extractor) poll(ctx context.Context, driver PageDriver, prev RawRecord) RawRecord {
	next := prev.Clone()

	for _, f := range textFields {
		if next.Has(f) {
			continue
		}
		if elem, ok := x.find(ctx, driver, f); ok {
			if text, err := elem.Text(ctx); err == nil {
				next.Set(f, text)
			}
		}
	}

	for _, f := range attrFields {
		if next.Has(f) {
			continue
		}
		if elem, ok := x.find(ctx, driver, f); ok {
			if value, ok, err := elem.Attribute(ctx, x.Selectors.LabelAttribute); err == nil && ok {
				next.Set(f, value)
			}
		}
	}

	x.expandHours(ctx, driver)
	if next.OpeningHours == nil {
		next.OpeningHours = OpeningHoursRaw{}
	}
	x.collectHours(ctx, driver, next.OpeningHours)

	return next
}

func (x Extractor) find(ctx context.Context, driver PageDriver, f Field) (Element, bool) {
	elem, ok, err := driver.FindOne(ctx, x.Selectors.Fields[f])
	if err != nil {
		x.printf("find %v: %v", f, err)
		return nil, false
	}
	return elem, ok
}

// expandHours clicks the collapsed opening hours control if there is one.
// A missing or unclickable control leaves the panel as it is.
func (x Extractor) expandHours(ctx context.Context, driver PageDriver) {
	control, ok, err := driver.FindOne(ctx, x.Selectors.Fields[FieldOpeningHours])
	if err != nil || !ok {
		return
	}
	if err := driver.MoveAndClick(ctx, control); err != nil {
		var notInteractable ElementNotInteractableError
		if !errors.As(err, &notInteractable) {
			x.printf("expand opening hours: %v", err)
		}
		return
	}
	x.printf("opening hours expanded")
}

// collectHours adds every weekday row not seen yet to hours.
func (x Extractor) collectHours(ctx context.Context, driver PageDriver, hours OpeningHoursRaw) {
	rows, err := driver.FindAll(ctx, x.Selectors.HoursRows)
	if err != nil {
		return
	}
	for _, row := range rows {
		dayElem, ok, err := row.FindOne(ctx, x.Selectors.HoursDay)
		if err != nil || !ok {
			continue
		}
		day, err := dayElem.Text(ctx)
		if err != nil {
			continue
		}
		day = strings.TrimSpace(day)
		if day == "" {
			continue
		}
		if _, seen := hours[day]; seen {
			continue
		}

		durationElems, err := row.FindAll(ctx, x.Selectors.HoursDurations)
		if err != nil {
			continue
		}
		durations := make([]string, 0, len(durationElems))
		for _, d := range durationElems {
			text, err := d.Text(ctx)
			if err != nil {
				continue
			}
			durations = append(durations, text)
		}
		hours[day] = strings.Join(durations, HoursDelimiter)
	}
}

func (x Extractor) printf(format string, a ...interface{}) {
	if x.Log != nil {
		x.Log.Printf(format, a...)
	}
}
