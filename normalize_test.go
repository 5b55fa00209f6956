package placescraper

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeReviews(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(1,234)", "1234"},
		{"(87)", "87"},
		{"（１，２３４）", "1234"},
		{"1.234", "1234"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeReviews(tt.in); got != tt.want {
				t.Errorf("NormalizeReviews(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocale_NormalizeWebsite(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"網站: example.com/path ", "example.com/path"},
		{"網站： example.com", "example.com"},
		{"Website: https://example.com", "https://example.com"},
		{"example.com", "example.com"},
		{"網站：example.com", "example.com"},
		{"網站:example.com/path ", "example.com/path"},
		{"https://example.com/a:b", "https://example.com/a:b"},
		{"example.com:8080", "example.com:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := LocaleZhTW.NormalizeWebsite(tt.in); got != tt.want {
				t.Errorf("NormalizeWebsite(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocale_ParseDurations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Period
	}{
		{"single", "09:30–17:30", []Period{{Open: "09:30", Close: "17:30"}}},
		{"split", "09:30–12:30/14:00–17:30", []Period{{Open: "09:30", Close: "12:30"}, {Open: "14:00", Close: "17:30"}}},
		{"fullwidth digits", "０９:００–１７:００", []Period{{Open: "09:00", Close: "17:00"}}},
		{"round the clock", "24 小時營業", []Period{RoundTheClock}},
		{"closed", "休息", []Period{{Raw: "休息"}}},
		{"empty", "", []Period{{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocaleZhTW.ParseDurations(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDurations(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	raw := RawRecord{
		Name:         str("故宮博物院"),
		Rating:       str("4.6"),
		TotalReviews: str("(54,321)"),
		Website:      str("網站: npm.gov.tw "),
		OpeningHours: OpeningHoursRaw{
			"星期一": "休息",
			"星期五": "09:00–12:00/13:00–21:00",
			"星期六": "24 小時營業",
		},
		Map: str(testPlaceURL),
	}
	before := raw.Clone()

	got, err := Normalize(raw, LocaleZhTW)
	if err != nil {
		t.Fatal(err)
	}
	want := NormalizedRecord{
		Name:         str("故宮博物院"),
		Rating:       str("4.6"),
		TotalReviews: str("54321"),
		Website:      str("npm.gov.tw"),
		OpeningHours: Schedule{
			Monday:   {{Raw: "休息"}},
			Friday:   {{Open: "09:00", Close: "12:00"}, {Open: "13:00", Close: "21:00"}},
			Saturday: {RoundTheClock},
		},
		Map: str(testPlaceURL),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, raw); diff != "" {
		t.Errorf("Normalize() modified its input (-before +after):\n%s", diff)
	}
	if n, ok := got.Reviews(); !ok || n != 54321 {
		t.Errorf("Reviews() = %v, %v", n, ok)
	}
	if !got.HasUnparsedHours() {
		t.Error("HasUnparsedHours() = false, want true for a closed day")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := RawRecord{
		TotalReviews: str("(1,234)"),
		Website:      str("網站: example.com/path "),
	}
	once, err := Normalize(raw, LocaleZhTW)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Normalize(RawRecord{TotalReviews: once.TotalReviews, Website: once.Website}, LocaleZhTW)
	if err != nil {
		t.Fatal(err)
	}
	if *once.TotalReviews != *twice.TotalReviews || *once.Website != *twice.Website {
		t.Errorf("normalizing twice changed the values: %q %q -> %q %q",
			*once.TotalReviews, *once.Website, *twice.TotalReviews, *twice.Website)
	}
}

func TestNormalize_Absent(t *testing.T) {
	got, err := Normalize(RawRecord{Name: str("x")}, LocaleZhTW)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalReviews != nil || got.Website != nil || got.OpeningHours != nil {
		t.Errorf("absent fields became present: %+v", got)
	}

	got, err = Normalize(RawRecord{OpeningHours: OpeningHoursRaw{}}, LocaleZhTW)
	if err != nil {
		t.Fatal(err)
	}
	if got.OpeningHours == nil || len(got.OpeningHours) != 0 {
		t.Errorf("OpeningHours = %#v, want empty schedule", got.OpeningHours)
	}
}

func TestNormalize_UnknownWeekday(t *testing.T) {
	_, err := Normalize(RawRecord{OpeningHours: OpeningHoursRaw{"Mon": "09:00–17:00"}}, LocaleZhTW)
	var unknown UnknownWeekdayLabelError
	if !errors.As(err, &unknown) {
		t.Fatalf("Normalize() error = %v, want UnknownWeekdayLabelError", err)
	}
	if unknown.Label != "Mon" {
		t.Errorf("Label = %q, want Mon", unknown.Label)
	}
}

func TestNormalize_CustomLocale(t *testing.T) {
	locale := Locale{
		Days:           map[string]Weekday{"Mon": Monday, "Tue": Tuesday},
		RoundTheClock:  "hours",
		LabelDelimiter: ":",
	}
	got, err := Normalize(RawRecord{OpeningHours: OpeningHoursRaw{
		"Mon": "09:30–12:30/14:00–17:30",
		"Tue": "Open 24 hours",
	}}, locale)
	if err != nil {
		t.Fatal(err)
	}
	want := Schedule{
		Monday:  {{Open: "09:30", Close: "12:30"}, {Open: "14:00", Close: "17:30"}},
		Tuesday: {RoundTheClock},
	}
	if diff := cmp.Diff(want, got.OpeningHours); diff != "" {
		t.Errorf("OpeningHours mismatch (-want +got):\n%s", diff)
	}
}

func TestLocaleEnglish(t *testing.T) {
	got, err := LocaleEnglish.ParseOpeningHours(OpeningHoursRaw{
		"Monday":  "9:00 AM–5:00 PM",
		"Tuesday": "Open 24 hours",
		"Sunday":  "10:00–18:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := Schedule{
		Monday:  {{Raw: "9:00 AM–5:00 PM"}},
		Tuesday: {RoundTheClock},
		Sunday:  {{Open: "10:00", Close: "18:00"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseOpeningHours() mismatch (-want +got):\n%s", diff)
	}
}
