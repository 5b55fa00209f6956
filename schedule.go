package placescraper

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Weekday is the canonical weekday id, 1 (Monday) to 7 (Sunday).
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Period is one opening range. A period without Open and Close holds the
// segment that couldn't be parsed in Raw.
type Period struct {
	Open  string
	Close string
	Raw   string
}

// RoundTheClock is the period of a place open 24 hours.
var RoundTheClock = Period{Open: "00:00", Close: "24:00"}

func (p Period) Unparsed() bool {
	return p.Open == "" && p.Close == ""
}

func (p Period) String() string {
	if p.Unparsed() {
		return p.Raw
	}
	return p.Open + "-" + p.Close
}

func (p Period) MarshalJSON() ([]byte, error) {
	if p.Unparsed() {
		return json.Marshal(p.Raw)
	}
	return json.Marshal(struct {
		Open  string `json:"open"`
		Close string `json:"close"`
	}{p.Open, p.Close})
}

func (p *Period) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err == nil {
		*p = Period{Raw: raw}
		return nil
	}
	var v struct {
		Open  string `json:"open"`
		Close string `json:"close"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	*p = Period{Open: v.Open, Close: v.Close}
	return nil
}

// Schedule is the structured weekly schedule keyed by canonical weekday.
type Schedule map[Weekday][]Period

// Days returns the scheduled weekdays in ascending order.
func (s Schedule) Days() []Weekday {
	days := make([]Weekday, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func (s Schedule) HasUnparsed() bool {
	for _, periods := range s {
		for _, p := range periods {
			if p.Unparsed() {
				return true
			}
		}
	}
	return false
}
