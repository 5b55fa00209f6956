package store

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/koizuka/placescraper"
)

// JSONFileLayout is the time layout of output file names.
const JSONFileLayout = "20060102_150405"

// JSONWriter writes every batch to a new timestamped JSON file in Dir.
type JSONWriter struct {
	Dir      string
	Now      func() time.Time
	LastPath string // file written by the last Persist
}

func (w *JSONWriter) Persist(ctx context.Context, rows []placescraper.BusinessRow) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	filename := filepath.Join(w.Dir, now().Format(JSONFileLayout)+".json")

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	w.LastPath = filename
	return nil
}

// WriteJSON writes rows as an indented JSON array keeping non-ASCII text readable.
func WriteJSON(w io.Writer, rows []placescraper.BusinessRow) error {
	if rows == nil {
		rows = []placescraper.BusinessRow{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}
