package placescraper

import "fmt"

type ConsoleLogger struct{}

func (logger ConsoleLogger) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
	fmt.Println()
}

// DiscardLogger drops everything.
type DiscardLogger struct{}

func (logger DiscardLogger) Printf(format string, a ...interface{}) {}
