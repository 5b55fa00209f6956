package placescraper

import (
	"encoding/json"
	"strconv"
)

// OpeningHoursRaw maps a localized weekday label to its raw duration text,
// e.g. "星期一" -> "09:30–12:30/14:00–17:30".
type OpeningHoursRaw map[string]string

// RawRecord is a business as read from the page. Text fields are nil until
// found. OpeningHours is nil when absent and non-nil (possibly empty) once
// the extractor has started collecting it.
type RawRecord struct {
	Name         *string
	Rating       *string
	TotalReviews *string
	PlaceType    *string
	Address      *string
	Website      *string
	PhoneNumber  *string
	OpeningHours OpeningHoursRaw
	Map          *string
}

// newRawRecord returns the accumulator an extraction starts from.
func newRawRecord() RawRecord {
	return RawRecord{OpeningHours: OpeningHoursRaw{}}
}

func (r *RawRecord) textField(f Field) **string {
	switch f {
	case FieldName:
		return &r.Name
	case FieldRating:
		return &r.Rating
	case FieldTotalReviews:
		return &r.TotalReviews
	case FieldPlaceType:
		return &r.PlaceType
	case FieldAddress:
		return &r.Address
	case FieldWebsite:
		return &r.Website
	case FieldPhoneNumber:
		return &r.PhoneNumber
	case FieldMap:
		return &r.Map
	}
	return nil
}

// Get returns the value of a text field, nil if absent or if f is FieldOpeningHours.
func (r RawRecord) Get(f Field) *string {
	if p := r.textField(f); p != nil {
		return *p
	}
	return nil
}

// Set stores the value of a text field. Setting FieldOpeningHours is a no-op.
func (r *RawRecord) Set(f Field, value string) {
	if p := r.textField(f); p != nil {
		*p = &value
	}
}

// Has reports whether the field is present.
func (r RawRecord) Has(f Field) bool {
	if f == FieldOpeningHours {
		return r.OpeningHours != nil
	}
	return r.Get(f) != nil
}

// Viable reports whether any field carries data. An empty opening hours map
// alone doesn't count.
func (r RawRecord) Viable() bool {
	for _, f := range Fields() {
		if f == FieldOpeningHours {
			if len(r.OpeningHours) > 0 {
				return true
			}
			continue
		}
		if r.Has(f) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (r RawRecord) Clone() RawRecord {
	c := r
	if r.OpeningHours != nil {
		c.OpeningHours = make(OpeningHoursRaw, len(r.OpeningHours))
		for k, v := range r.OpeningHours {
			c.OpeningHours[k] = v
		}
	}
	return c
}

func (r RawRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, numFields)
	for _, f := range Fields() {
		if f == FieldOpeningHours {
			if r.OpeningHours == nil {
				m[f.String()] = nil
			} else {
				m[f.String()] = r.OpeningHours
			}
			continue
		}
		m[f.String()] = r.Get(f)
	}
	return json.Marshal(m)
}

// NormalizedRecord is a RawRecord after Normalize.
type NormalizedRecord struct {
	Name         *string  `json:"name"`
	Rating       *string  `json:"rating"`
	TotalReviews *string  `json:"total_reviews"`
	PlaceType    *string  `json:"place_type"`
	Address      *string  `json:"address"`
	Website      *string  `json:"website"`
	PhoneNumber  *string  `json:"phone_number"`
	OpeningHours Schedule `json:"opening_hours"`
	Map          *string  `json:"map"`
}

// Reviews returns total_reviews as an integer.
func (r NormalizedRecord) Reviews() (int, bool) {
	if r.TotalReviews == nil {
		return 0, false
	}
	n, err := strconv.Atoi(*r.TotalReviews)
	if err != nil {
		return 0, false
	}
	return n, true
}

// HasUnparsedHours reports whether any opening hours segment was kept verbatim.
func (r NormalizedRecord) HasUnparsedHours() bool {
	return r.OpeningHours.HasUnparsed()
}

// BusinessRow is a normalized record tagged with the attraction it was looked up for.
type BusinessRow struct {
	Id string `json:"Id"`
	NormalizedRecord
}
