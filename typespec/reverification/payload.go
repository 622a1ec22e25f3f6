package reverification

import (
	"encoding/json"
	"strconv"
)

// Schedule is either OneTime or Recurring.
type Schedule interface {
	Frequency() Frequency
	isSchedule()
}

// OneTime runs the verification once on the start date.
type OneTime struct {
	// Metadata is set only for verification types that require it.
	Metadata *Metadata
}

func (OneTime) Frequency() Frequency { return FrequencyOneTime }
func (OneTime) isSchedule()          {}

// Recurring repeats the verification every RepeatOn RepeatOnUnit until Ends.
type Recurring struct {
	DaysBeforeDueDate *int
	RepeatOn          int
	RepeatOnUnit      RepeatUnit
	Ends              Ends
}

func (Recurring) Frequency() Frequency { return FrequencyRecurring }
func (Recurring) isSchedule()          {}

// Ends is one of EndsNever, EndsOnDate or EndsAfterOccurrences.
type Ends interface {
	EndsType() EndsType
	isEnds()
}

type EndsNever struct{}

func (EndsNever) EndsType() EndsType { return EndsNeverType }
func (EndsNever) isEnds()            {}

type EndsOnDate struct {
	Date Date
}

func (EndsOnDate) EndsType() EndsType { return EndsDateType }
func (EndsOnDate) isEnds()            {}

type EndsAfterOccurrences struct {
	Count int
}

func (EndsAfterOccurrences) EndsType() EndsType { return EndsOccurrenceType }
func (EndsAfterOccurrences) isEnds()            {}

// Payload is a validated reverification request ready for submission.
type Payload struct {
	ReverificationID string
	StartDate        Date
	Schedule         Schedule
}

type wirePayload struct {
	ReverificationID  string     `json:"reverificationId"`
	Frequency         Frequency  `json:"frequency"`
	StartDate         string     `json:"startDate"`
	DaysBeforeDueDate string     `json:"daysBeforeDueDate,omitempty"`
	RepeatOn          string     `json:"repeatOn,omitempty"`
	RepeatOnUnit      RepeatUnit `json:"repeatOnUnit,omitempty"`
	EndOccurrence     string     `json:"endOccurrence,omitempty"`
	EndDate           string     `json:"endDate,omitempty"`
	Metadata          *Metadata  `json:"metadata,omitempty"`
}

// MarshalJSON renders the flat shape the backend expects. endsType is never
// sent.
func (p Payload) MarshalJSON() ([]byte, error) {
	w := wirePayload{
		ReverificationID: p.ReverificationID,
		StartDate:        p.StartDate.String(),
	}

	switch s := p.Schedule.(type) {
	case OneTime:
		w.Frequency = FrequencyOneTime
		w.Metadata = s.Metadata
	case Recurring:
		w.Frequency = FrequencyRecurring
		if s.DaysBeforeDueDate != nil {
			w.DaysBeforeDueDate = strconv.Itoa(*s.DaysBeforeDueDate)
		}
		w.RepeatOn = strconv.Itoa(s.RepeatOn)
		w.RepeatOnUnit = s.RepeatOnUnit
		switch e := s.Ends.(type) {
		case EndsOnDate:
			w.EndDate = e.Date.String()
		case EndsAfterOccurrences:
			w.EndOccurrence = strconv.Itoa(e.Count)
		}
	}

	return json.Marshal(w)
}

// Frequency of the payload's schedule, or "" for a zero Payload.
func (p Payload) Frequency() Frequency {
	if p.Schedule == nil {
		return ""
	}
	return p.Schedule.Frequency()
}
