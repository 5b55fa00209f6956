package placescraper

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup yields no field at all.
var ErrNotFound = errors.New("business not found")

type RetryAndRecordError struct {
	Filename string
}

func (error RetryAndRecordError) Error() string {
	return fmt.Sprintf("Record file '%v' is missing while replaying! Retry with 'record' mode!", error.Filename)
}

type ElementNotInteractableError struct {
	Selector string
	Err      error
}

func (error ElementNotInteractableError) Error() string {
	if error.Selector == "" {
		return fmt.Sprintf("element not interactable: %v", error.Err)
	}
	return fmt.Sprintf("element '%v' not interactable: %v", error.Selector, error.Err)
}

func (error ElementNotInteractableError) Unwrap() error {
	return error.Err
}

// UnknownWeekdayLabelError means the page shows a weekday label that isn't in
// the locale's day table. It usually signals an upstream layout change.
type UnknownWeekdayLabelError struct {
	Label string
}

func (error UnknownWeekdayLabelError) Error() string {
	return fmt.Sprintf("unknown weekday label %q", error.Label)
}

type NavigationError struct {
	URL string
	Err error
}

func (error NavigationError) Error() string {
	return fmt.Sprintf("%v navigation error: %v", error.URL, error.Err)
}

func (error NavigationError) Unwrap() error {
	return error.Err
}

type SelectorConfigError struct {
	Name string
}

func (error SelectorConfigError) Error() string {
	return fmt.Sprintf("selector for %v is not configured", error.Name)
}
