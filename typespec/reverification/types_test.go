package reverification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeral_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Numeral
	}{
		{`"3"`, "3"},
		{`3`, "3"},
		{`3.5`, "3.5"},
		{`"abc"`, "abc"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var d struct {
			N Numeral `json:"n"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"n":`+tt.in+`}`), &d), tt.in)
		assert.Equal(t, tt.want, d.N, tt.in)
	}

	var n Numeral
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
}

func TestDraft_DecodesNumbersAndStrings(t *testing.T) {
	var d Draft
	err := json.Unmarshal([]byte(`{
		"reverificationId": "v1",
		"frequency": "RECURRING",
		"startDate": "2025-01-10",
		"repeatOn": 2,
		"repeatOnUnit": "MONTH",
		"endsType": "OCCURRENCE",
		"endOccurrence": "4"
	}`), &d)
	require.NoError(t, err)
	assert.Equal(t, Numeral("2"), d.RepeatOn)
	assert.Equal(t, Numeral("4"), d.EndOccurrence)
	assert.Equal(t, EndsOccurrenceType, d.EndsType)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.January, Day: 10}, d)

	// Calendar date in the timestamp's own offset
	d, err = ParseDate("2025-01-10T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", d.String())

	for _, bad := range []string{"", "10/01/2025", "2025-02-30", "tomorrow"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDate_Ordering(t *testing.T) {
	a := Date{Year: 2025, Month: time.January, Day: 31}
	b := Date{Year: 2025, Month: time.February, Day: 1}

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.False(t, a.Before(a))
	assert.True(t, Date{}.IsZero())

	text, err := b.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", string(text))
}

func TestAvailableFrequencies(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, []Frequency{FrequencyOneTime, FrequencyRecurring}, AvailableFrequencies("v1", testCatalog, policy))
	assert.Equal(t, []Frequency{FrequencyOneTime}, AvailableFrequencies("once", testCatalog, policy))
	assert.Equal(t, []Frequency{FrequencyOneTime}, AvailableFrequencies("crim", testCatalog, policy))
	assert.Equal(t, []Frequency{FrequencyOneTime, FrequencyRecurring}, AvailableFrequencies("", testCatalog, policy))

	assert.True(t, IsMetadataRequired("crim", testCatalog, policy))
	assert.False(t, IsMetadataRequired("v1", testCatalog, policy))
	assert.False(t, IsMetadataRequired("missing", testCatalog, policy))

	// An empty policy still flags the criminal background check
	assert.True(t, IsMetadataRequired("crim", testCatalog, Policy{}))
}

func TestPayload_Frequency(t *testing.T) {
	assert.Equal(t, Frequency(""), Payload{}.Frequency())
	assert.Equal(t, FrequencyOneTime, Payload{Schedule: OneTime{}}.Frequency())
	assert.Equal(t, FrequencyRecurring, Payload{Schedule: Recurring{Ends: EndsNever{}}}.Frequency())
}
