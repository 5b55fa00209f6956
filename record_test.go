package placescraper

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRawRecord_Viable(t *testing.T) {
	tests := []struct {
		name   string
		record RawRecord
		want   bool
	}{
		{"zero", RawRecord{}, false},
		{"empty hours only", newRawRecord(), false},
		{"hours", RawRecord{OpeningHours: OpeningHoursRaw{"星期一": "休息"}}, true},
		{"name", RawRecord{Name: str("x")}, true},
		{"empty string is present", RawRecord{Website: str("")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Viable(); got != tt.want {
				t.Errorf("Viable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRawRecord_Clone(t *testing.T) {
	r := RawRecord{Name: str("x"), OpeningHours: OpeningHoursRaw{"星期一": "休息"}}
	c := r.Clone()
	c.OpeningHours["星期二"] = "09:00–17:00"
	c.Set(FieldName, "y")

	if len(r.OpeningHours) != 1 || *r.Name != "x" {
		t.Errorf("Clone shares state with the original: %+v", r)
	}
}

func TestRawRecord_MarshalJSON(t *testing.T) {
	r := newRawRecord()
	r.Set(FieldName, "故宮博物院")

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"name":          "故宮博物院",
		"rating":        nil,
		"total_reviews": nil,
		"place_type":    nil,
		"address":       nil,
		"website":       nil,
		"phone_number":  nil,
		"opening_hours": map[string]interface{}{},
		"map":           nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MarshalJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestSchedule_JSON(t *testing.T) {
	schedule := Schedule{
		Monday:  {{Raw: "休息"}},
		Tuesday: {{Open: "09:00", Close: "12:00"}, {Open: "13:00", Close: "17:00"}},
		Sunday:  {RoundTheClock},
	}
	b, err := json.Marshal(schedule)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"1":["休息"],"2":[{"open":"09:00","close":"12:00"},{"open":"13:00","close":"17:00"}],"7":[{"open":"00:00","close":"24:00"}]}`
	if string(b) != want {
		t.Errorf("got  %s\nwant %s", b, want)
	}

	var decoded Schedule
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(schedule, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Weekday{Monday, Tuesday, Sunday}, decoded.Days()); diff != "" {
		t.Errorf("Days() mismatch (-want +got):\n%s", diff)
	}
}

func TestFields(t *testing.T) {
	var names []string
	for _, f := range Fields() {
		names = append(names, f.String())
	}
	want := []string{"name", "rating", "total_reviews", "place_type", "address", "website", "phone_number", "opening_hours", "map"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
}
