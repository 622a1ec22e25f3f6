package reverification

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"kyc-dashboard.gomodule/typespec/common"
)

const reasonMaxLength = common.FreeTextMaxLength

var numeralPattern = regexp.MustCompile(`^\d+$`)

var (
	ErrFrequencyRequired         = common.NewRule("frequency_required", "Frequency is required")
	ErrFrequencyInvalid          = common.NewRule("frequency_invalid", "Invalid frequency")
	ErrRecurringNotAvailable     = common.NewRule("recurring_not_available", "Recurring frequency is not available for this verification type")
	ErrReverificationIDRequired  = common.NewRule("reverification_id_required", "Verification type is required")
	ErrReverificationTypeUnknown = common.NewRule("reverification_type_unknown", "Unknown verification type")
	ErrStartDateRequired         = common.NewRule("start_date_required", "Start date is required")
	ErrStartDateInPast           = common.NewRule("start_date_in_past", "Start date cannot be in the past")
	ErrInvalidDate               = common.NewRule("invalid_date", "Must be a valid date")
	ErrInvalidNumber             = common.NewRule("invalid_number", "Must be a valid number")
	ErrMustBePositive            = common.NewRule("must_be_positive", "Must be greater than zero")
	ErrRepeatOnRequired          = common.NewRule("repeat_on_required", "Repeat interval is required")
	ErrRepeatOnUnitRequired      = common.NewRule("repeat_on_unit_required", "Repeat unit is required")
	ErrRepeatOnUnitInvalid       = common.NewRule("repeat_on_unit_invalid", "Invalid repeat unit")
	ErrEndsTypeRequired          = common.NewRule("ends_type_required", "Ends option is required")
	ErrEndsTypeInvalid           = common.NewRule("ends_type_invalid", "Invalid ends option")
	ErrEndOccurrenceRequired     = common.NewRule("end_occurrence_required", "Number of occurrences is required")
	ErrEndDateRequired           = common.NewRule("end_date_required", "End date is required")
	ErrEndDateNotAfterStart      = common.NewRule("end_date_not_after_start", "End date must be after start date")
	ErrDurationRequired          = common.NewRule("duration_required", "Duration is required")
	ErrDurationInvalid           = common.NewRule("duration_invalid", "Invalid duration")
	ErrReasonTooLong             = common.NewRule("reason_too_long", "Reason must be at most 500 characters")
)

// Validator checks drafts against a verification-type catalog. It holds no
// state between calls.
type Validator struct {
	Catalog Catalog
	Policy  Policy
	// Now defaults to time.Now. Only the calendar date is used.
	Now func() time.Time
}

func NewValidator(catalog Catalog, policy Policy) *Validator {
	return &Validator{Catalog: catalog, Policy: policy, Now: time.Now}
}

func (v *Validator) today() Date {
	if v.Now == nil {
		return DateOf(time.Now())
	}
	return DateOf(v.Now())
}

// fieldErrors keeps at most one error per field; the first one added wins.
type fieldErrors []common.ValidationError

func (fe *fieldErrors) add(field string, err error) {
	if _, ok := common.ErrorFor(*fe, field); ok {
		return
	}
	*fe = append(*fe, common.NewValidationError(field, err))
}

// Validate returns the normalised payload for d, or the field errors that
// block submission. Fields that do not belong to the selected frequency are
// dropped rather than reported.
func (v *Validator) Validate(d Draft) (Payload, []common.ValidationError) {
	if d.Frequency == "" {
		return Payload{}, []common.ValidationError{common.NewValidationError(FieldFrequency, ErrFrequencyRequired)}
	}
	if !d.Frequency.Valid() {
		return Payload{}, []common.ValidationError{common.NewValidationError(FieldFrequency, ErrFrequencyInvalid)}
	}

	var errs fieldErrors

	id := strings.TrimSpace(d.ReverificationID)
	if id == "" {
		errs.add(FieldReverificationID, ErrReverificationIDRequired)
	} else if _, ok := v.Catalog.Lookup(id); !ok {
		errs.add(FieldReverificationID, ErrReverificationTypeUnknown)
	}

	start, startOK := v.validateStartDate(d.StartDate, &errs)

	var schedule Schedule
	switch d.Frequency {
	case FrequencyOneTime:
		schedule = v.validateOneTime(id, d.Metadata, &errs)
	case FrequencyRecurring:
		if id != "" && !recurringAllowed(id, v.Catalog, v.Policy) {
			errs.add(FieldFrequency, ErrRecurringNotAvailable)
		}
		schedule = validateRecurring(d, start, startOK, &errs)
	}

	if len(errs) > 0 {
		return Payload{}, errs
	}

	return Payload{
		ReverificationID: id,
		StartDate:        start,
		Schedule:         schedule,
	}, nil
}

func (v *Validator) validateStartDate(raw string, errs *fieldErrors) (Date, bool) {
	if strings.TrimSpace(raw) == "" {
		errs.add(FieldStartDate, ErrStartDateRequired)
		return Date{}, false
	}
	start, err := ParseDate(strings.TrimSpace(raw))
	if err != nil {
		errs.add(FieldStartDate, ErrInvalidDate)
		return Date{}, false
	}
	if start.Before(v.today()) {
		errs.add(FieldStartDate, ErrStartDateInPast)
		// The date itself is well formed, so it still anchors endDate.
		return start, true
	}
	return start, true
}

func (v *Validator) validateOneTime(id string, m *Metadata, errs *fieldErrors) Schedule {
	if !IsMetadataRequired(id, v.Catalog, v.Policy) {
		return OneTime{}
	}

	if m == nil || m.Duration == "" {
		errs.add(FieldMetadataDuration, ErrDurationRequired)
	} else if !m.Duration.Valid() {
		errs.add(FieldMetadataDuration, ErrDurationInvalid)
	}

	var reason string
	if m != nil {
		reason = strings.TrimSpace(m.ReasonForRequest)
		if utf8.RuneCountInString(reason) > reasonMaxLength {
			errs.add(FieldMetadataReason, ErrReasonTooLong)
		}
	}

	if m == nil {
		return OneTime{}
	}
	return OneTime{Metadata: &Metadata{Duration: m.Duration, ReasonForRequest: reason}}
}

func validateRecurring(d Draft, start Date, startOK bool, errs *fieldErrors) Schedule {
	r := Recurring{}

	if d.DaysBeforeDueDate != "" {
		if n, err := parseNumeral(d.DaysBeforeDueDate); err != nil {
			errs.add(FieldDaysBeforeDueDate, err)
		} else {
			r.DaysBeforeDueDate = &n
		}
	}

	if d.RepeatOn == "" {
		errs.add(FieldRepeatOn, ErrRepeatOnRequired)
	} else if n, err := parsePositiveNumeral(d.RepeatOn); err != nil {
		errs.add(FieldRepeatOn, err)
	} else {
		r.RepeatOn = n
	}

	switch {
	case d.RepeatOnUnit == "":
		errs.add(FieldRepeatOnUnit, ErrRepeatOnUnitRequired)
	case !d.RepeatOnUnit.Valid():
		errs.add(FieldRepeatOnUnit, ErrRepeatOnUnitInvalid)
	default:
		r.RepeatOnUnit = d.RepeatOnUnit
	}

	switch d.EndsType {
	case "":
		errs.add(FieldEndsType, ErrEndsTypeRequired)
	case EndsNeverType:
		r.Ends = EndsNever{}
	case EndsOccurrenceType:
		if d.EndOccurrence == "" {
			errs.add(FieldEndOccurrence, ErrEndOccurrenceRequired)
		} else if n, err := parsePositiveNumeral(d.EndOccurrence); err != nil {
			errs.add(FieldEndOccurrence, err)
		} else {
			r.Ends = EndsAfterOccurrences{Count: n}
		}
	case EndsDateType:
		raw := strings.TrimSpace(d.EndDate)
		if raw == "" {
			errs.add(FieldEndDate, ErrEndDateRequired)
			break
		}
		end, err := ParseDate(raw)
		if err != nil {
			errs.add(FieldEndDate, ErrInvalidDate)
			break
		}
		if startOK && !end.After(start) {
			errs.add(FieldEndDate, ErrEndDateNotAfterStart)
			break
		}
		r.Ends = EndsOnDate{Date: end}
	default:
		errs.add(FieldEndsType, ErrEndsTypeInvalid)
	}

	return r
}

func parseNumeral(n Numeral) (int, error) {
	s := strings.TrimSpace(string(n))
	if !numeralPattern.MatchString(s) {
		return 0, ErrInvalidNumber
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

func parsePositiveNumeral(n Numeral) (int, error) {
	v, err := parseNumeral(n)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, ErrMustBePositive
	}
	return v, nil
}
