package placescraper

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Locale holds the language dependent tokens of the place page.
type Locale struct {
	// Days maps the weekday labels of the opening hours table to canonical ids.
	Days map[string]Weekday
	// RoundTheClock is the token that, together with "24", marks a place open all day.
	RoundTheClock string
	// LabelDelimiter separates the label from the value in attribute fields.
	LabelDelimiter string
}

// LocaleZhTW is the locale of the default base URL.
var LocaleZhTW = Locale{
	Days: map[string]Weekday{
		"星期一": Monday,
		"星期二": Tuesday,
		"星期三": Wednesday,
		"星期四": Thursday,
		"星期五": Friday,
		"星期六": Saturday,
		"星期日": Sunday,
	},
	RoundTheClock:  "小時營業",
	LabelDelimiter: ":",
}

var LocaleEnglish = Locale{
	Days: map[string]Weekday{
		"Monday":    Monday,
		"Tuesday":   Tuesday,
		"Wednesday": Wednesday,
		"Thursday":  Thursday,
		"Friday":    Friday,
		"Saturday":  Saturday,
		"Sunday":    Sunday,
	},
	RoundTheClock:  "hours",
	LabelDelimiter: ":",
}

var timeOfDayRegex = regexp.MustCompile(`\d{2}:\d{2}`)

// reviewPunctuation is removed from review counts such as "(1,234)".
const reviewPunctuation = "(),.，．\u00a0 "

// Normalize converts a raw record into typed values. It doesn't touch raw.
// An opening hours label missing from the locale's day table is an error.
func Normalize(raw RawRecord, locale Locale) (NormalizedRecord, error) {
	normalized := NormalizedRecord{
		Name:         raw.Name,
		Rating:       raw.Rating,
		TotalReviews: mapOptional(raw.TotalReviews, NormalizeReviews),
		PlaceType:    raw.PlaceType,
		Address:      raw.Address,
		Website:      mapOptional(raw.Website, locale.NormalizeWebsite),
		PhoneNumber:  raw.PhoneNumber,
		Map:          raw.Map,
	}
	if raw.OpeningHours != nil {
		schedule, err := locale.ParseOpeningHours(raw.OpeningHours)
		if err != nil {
			return NormalizedRecord{}, err
		}
		normalized.OpeningHours = schedule
	}
	return normalized, nil
}

func mapOptional(s *string, f func(string) string) *string {
	if s == nil {
		return nil
	}
	v := f(*s)
	return &v
}

// NormalizeReviews strips brackets and thousands separators: "(1,234)" -> "1234".
func NormalizeReviews(s string) string {
	return stripchars(width.Narrow.String(s), reviewPunctuation)
}

// NormalizeWebsite drops the label of a "網站: example.com " value. The
// delimiter may be followed by spaces or nothing; a leading part containing
// "/" or "." or a value starting with "//" is part of the address, not a label.
func (locale Locale) NormalizeWebsite(s string) string {
	s = strings.TrimSpace(width.Narrow.String(s))
	delimiter := locale.LabelDelimiter
	if delimiter == "" {
		delimiter = ":"
	}
	if i := strings.Index(s, delimiter); i >= 0 {
		label, value := s[:i], s[i+len(delimiter):]
		if !strings.ContainsAny(label, "/.") && !strings.HasPrefix(value, "//") {
			s = value
		}
	}
	return strings.TrimSpace(s)
}

// ParseOpeningHours converts raw opening hours into a Schedule.
func (locale Locale) ParseOpeningHours(hours OpeningHoursRaw) (Schedule, error) {
	schedule := make(Schedule, len(hours))
	for label, durations := range hours {
		day, ok := locale.Days[strings.TrimSpace(label)]
		if !ok {
			return nil, UnknownWeekdayLabelError{label}
		}
		schedule[day] = locale.ParseDurations(durations)
	}
	return schedule, nil
}

// ParseDurations splits "09:30–12:30/14:00–17:30" into periods. Segments
// that aren't a time range nor a round the clock marker are kept verbatim.
func (locale Locale) ParseDurations(durations string) []Period {
	segments := strings.Split(durations, HoursDelimiter)
	periods := make([]Period, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		folded := width.Narrow.String(segment)
		times := timeOfDayRegex.FindAllString(folded, -1)
		switch {
		case len(times) == 2:
			periods = append(periods, Period{Open: times[0], Close: times[1]})
		case strings.Contains(folded, "24") && locale.RoundTheClock != "" && strings.Contains(folded, locale.RoundTheClock):
			periods = append(periods, RoundTheClock)
		default:
			periods = append(periods, Period{Raw: segment})
		}
	}
	return periods
}

func stripchars(str, chr string) string {
	return strings.Map(func(r rune) rune {
		if !strings.ContainsRune(chr, r) {
			return r
		}
		return -1
	}, str)
}
