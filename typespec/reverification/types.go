package reverification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyOneTime   Frequency = "ONE_TIME"
	FrequencyRecurring Frequency = "RECURRING"
)

func (f Frequency) Valid() bool {
	return f == FrequencyOneTime || f == FrequencyRecurring
}

type RepeatUnit string

const (
	RepeatUnitDay   RepeatUnit = "DAY"
	RepeatUnitMonth RepeatUnit = "MONTH"
	RepeatUnitYear  RepeatUnit = "YEAR"
)

func (u RepeatUnit) Valid() bool {
	switch u {
	case RepeatUnitDay, RepeatUnitMonth, RepeatUnitYear:
		return true
	}
	return false
}

// EndsType selects how a recurring series terminates. It only exists on the
// form; the submitted payload encodes the choice by which end field is set.
type EndsType string

const (
	EndsNeverType      EndsType = "NEVER"
	EndsDateType       EndsType = "DATE"
	EndsOccurrenceType EndsType = "OCCURRENCE"
)

func (e EndsType) Valid() bool {
	switch e {
	case EndsNeverType, EndsDateType, EndsOccurrenceType:
		return true
	}
	return false
}

// Duration is the lookback window requested for a background check.
type Duration string

const (
	DurationSevenYears Duration = "SEVEN_YEARS"
	DurationTenYears   Duration = "TEN_YEARS"
	DurationUnlimited  Duration = "UNLIMITED"
)

func (d Duration) Valid() bool {
	switch d {
	case DurationSevenYears, DurationTenYears, DurationUnlimited:
		return true
	}
	return false
}

// Field paths used in validation errors and form edits
const (
	FieldReverificationID  = "reverificationId"
	FieldFrequency         = "frequency"
	FieldStartDate         = "startDate"
	FieldDaysBeforeDueDate = "daysBeforeDueDate"
	FieldRepeatOn          = "repeatOn"
	FieldRepeatOnUnit      = "repeatOnUnit"
	FieldEndsType          = "endsType"
	FieldEndOccurrence     = "endOccurrence"
	FieldEndDate           = "endDate"
	FieldMetadataDuration  = "metadata.duration"
	FieldMetadataReason    = "metadata.reasonForRequest"
)

// Numeral is a number as typed into a form field. It accepts either a JSON
// string or a bare JSON number and keeps the original text so that "abc" and
// "3.5" reach validation unchanged.
type Numeral string

func (n *Numeral) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeral(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeral: %w", err)
	}
	*n = Numeral(num.String())
	return nil
}

// Metadata holds the extra inputs required by the flagged verification type.
type Metadata struct {
	Duration         Duration `json:"duration"`
	ReasonForRequest string   `json:"reasonForRequest,omitempty"`
}

// Draft is the form state of a reverification request as the user is
// editing it. Values are kept as entered; Validate turns a Draft into a
// Payload.
type Draft struct {
	ReverificationID  string     `json:"reverificationId"`
	Frequency         Frequency  `json:"frequency,omitempty"`
	StartDate         string     `json:"startDate,omitempty"`
	DaysBeforeDueDate Numeral    `json:"daysBeforeDueDate,omitempty"`
	RepeatOn          Numeral    `json:"repeatOn,omitempty"`
	RepeatOnUnit      RepeatUnit `json:"repeatOnUnit,omitempty"`
	EndsType          EndsType   `json:"endsType,omitempty"`
	EndOccurrence     Numeral    `json:"endOccurrence,omitempty"`
	EndDate           string     `json:"endDate,omitempty"`
	Metadata          *Metadata  `json:"metadata,omitempty"`
}

func (d Draft) clone() Draft {
	if d.Metadata != nil {
		m := *d.Metadata
		d.Metadata = &m
	}
	return d
}

// Date is a calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. A timestamp
// contributes only its calendar date in its own offset.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(o Date) bool {
	return d.compare(o) < 0
}

func (d Date) After(o Date) bool {
	return d.compare(o) > 0
}

func (d Date) compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return d.Year - o.Year
	case d.Month != o.Month:
		return int(d.Month) - int(o.Month)
	default:
		return d.Day - o.Day
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// CatalogEntry describes a verification type offered by the backend.
type CatalogEntry struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Type               string `json:"type"`
	IsRecurringEnabled bool   `json:"isRecurringEnabled"`
	ActionID           string `json:"actionId"`
}

// Catalog is the list of verification types in backend order.
type Catalog []CatalogEntry

// Lookup finds the entry with the given id. Surrounding whitespace is
// ignored.
func (c Catalog) Lookup(id string) (CatalogEntry, bool) {
	id = strings.TrimSpace(id)
	for _, e := range c {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// CriminalBackgroundCheckActionID is the action identifier that marks a
// verification type as needing a lookback duration and reason.
const CriminalBackgroundCheckActionID = "CRIMINAL_BACKGROUND_CHECK"

// Policy carries the runtime knobs of the validator.
type Policy struct {
	MetadataActionID string `yaml:"metadata_action_id"`
}

func DefaultPolicy() Policy {
	return Policy{MetadataActionID: CriminalBackgroundCheckActionID}
}

func (p Policy) metadataActionID() string {
	if p.MetadataActionID == "" {
		return CriminalBackgroundCheckActionID
	}
	return p.MetadataActionID
}

// IsMetadataRequired reports whether the selected verification type needs the
// extra metadata fields. Selecting such a type also pins the frequency to
// one-time.
func IsMetadataRequired(id string, catalog Catalog, policy Policy) bool {
	entry, ok := catalog.Lookup(id)
	if !ok {
		return false
	}
	return entry.ActionID == policy.metadataActionID()
}

// AvailableFrequencies lists the frequencies the user may pick for the
// selected verification type.
func AvailableFrequencies(id string, catalog Catalog, policy Policy) []Frequency {
	entry, ok := catalog.Lookup(id)
	if !ok {
		return []Frequency{FrequencyOneTime, FrequencyRecurring}
	}
	if !entry.IsRecurringEnabled || entry.ActionID == policy.metadataActionID() {
		return []Frequency{FrequencyOneTime}
	}
	return []Frequency{FrequencyOneTime, FrequencyRecurring}
}

func recurringAllowed(id string, catalog Catalog, policy Policy) bool {
	for _, f := range AvailableFrequencies(id, catalog, policy) {
		if f == FrequencyRecurring {
			return true
		}
	}
	return false
}
