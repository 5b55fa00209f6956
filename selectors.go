package placescraper

import "fmt"

// Field identifies one entry of a business record.
type Field int

const (
	FieldName Field = iota
	FieldRating
	FieldTotalReviews
	FieldPlaceType
	FieldAddress
	FieldWebsite
	FieldPhoneNumber
	FieldOpeningHours
	FieldMap

	numFields
)

var fieldNames = [numFields]string{
	"name",
	"rating",
	"total_reviews",
	"place_type",
	"address",
	"website",
	"phone_number",
	"opening_hours",
	"map",
}

// Fields lists every field in record order.
func Fields() []Field {
	fields := make([]Field, numFields)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// textFields are read from the visible text of their element.
var textFields = []Field{FieldName, FieldRating, FieldTotalReviews, FieldPlaceType}

// attrFields carry "label: value" in one attribute of their element.
var attrFields = []Field{FieldAddress, FieldWebsite, FieldPhoneNumber}

const (
	DefaultBaseURL = "https://www.google.com.tw/maps/search/"

	relatedInfoBlock = `div[class="m6QErb "][role="region"][aria-label$="相關資訊"]`
)

// Selectors is the table of CSS selectors for one page layout family.
type Selectors struct {
	// HighlyMatched selects the first entry of a results feed.
	HighlyMatched string
	// LowMatched selects the first entry of a partial match feed.
	LowMatched string

	// Fields maps every extracted field to its selector. For
	// FieldOpeningHours it selects the collapsed disclosure control.
	Fields map[Field]string
	// Attribute holding "label: value" text of the attribute fields.
	LabelAttribute string

	HoursRows      string
	HoursDay       string // relative to a row
	HoursDurations string // relative to a row
}

// DefaultSelectors returns the selectors for the zh-TW place page.
func DefaultSelectors() Selectors {
	return Selectors{
		HighlyMatched: `div[aria-label$="搜尋結果"][role="feed"] a:nth-child(1)`,
		LowMatched:    `div[aria-label*="部分相符"][role="feed"] a:nth-child(1)`,
		Fields: map[Field]string{
			FieldName:         `div[role="main"] h1[class="DUwDvf fontHeadlineLarge"]`,
			FieldRating:       `div[role="main"] div[class="F7nice "] span:nth-child(1) span:nth-child(1)`,
			FieldTotalReviews: `div[role="main"] div[class="F7nice "] span:nth-child(1) span[aria-label]:nth-child(1)`,
			FieldPlaceType:    `button[class="DkEaL "]`,
			FieldAddress:      relatedInfoBlock + ` button[class="CsEnBe"][aria-label^="地址"][data-item-id="address"]`,
			FieldWebsite:      relatedInfoBlock + ` a[class="CsEnBe"][aria-label^="網站"][data-item-id="authority"]`,
			FieldPhoneNumber:  relatedInfoBlock + ` button[class="CsEnBe"][aria-label^="電話號碼"]`,
			FieldOpeningHours: `div[class="OMl5r hH0dDd jBYmhd"][data-hide-tooltip-on-mouse-move="true"][aria-expanded="false"][role="button"]`,
		},
		LabelAttribute: "aria-label",
		HoursRows:      `table[class^="eK4R0e"] tbody tr[class="y0skZc"]`,
		HoursDay:       `td[class^="ylH6lf "] div`,
		HoursDurations: `td[class="mxowUb"] li[class="G8aQO"]`,
	}
}

// Validate checks that every selector the crawler uses is configured.
func (s Selectors) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"highly matched results", s.HighlyMatched},
		{"low matched results", s.LowMatched},
		{"label attribute", s.LabelAttribute},
		{"opening hours rows", s.HoursRows},
		{"opening hours day", s.HoursDay},
		{"opening hours durations", s.HoursDurations},
	}
	for _, r := range required {
		if r.value == "" {
			return SelectorConfigError{r.name}
		}
	}
	for _, f := range Fields() {
		if f == FieldMap {
			continue
		}
		if s.Fields[f] == "" {
			return SelectorConfigError{f.String()}
		}
	}
	return nil
}
