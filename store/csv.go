package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dimchansky/utfbom"
	"github.com/koizuka/placescraper"
)

// CSVSource reads attractions from a CSV file with a header row naming the
// columns Id, Name, Zipcode and Add (any order, case-insensitive). A UTF-8
// BOM, as written by spreadsheet exports, is skipped.
type CSVSource struct {
	Path string
}

func (s CSVSource) FetchAttractions(ctx context.Context) ([]placescraper.Attraction, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAttractions(f)
}

// ReadAttractions parses attractions from CSV.
func ReadAttractions(r io.Reader) ([]placescraper.Attraction, error) {
	reader := csv.NewReader(utfbom.SkipOnly(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "name"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", required)
		}
	}

	var attractions []placescraper.Attraction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if get("id") == "" {
			return nil, fmt.Errorf("csv: line %d: empty id", line)
		}
		attractions = append(attractions, placescraper.Attraction{
			Id:      get("id"),
			Name:    get("name"),
			Zipcode: get("zipcode"),
			Add:     get("add"),
		})
	}
	return attractions, nil
}
