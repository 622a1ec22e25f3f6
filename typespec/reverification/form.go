package reverification

import (
	"fmt"
	"strings"

	"kyc-dashboard.gomodule/typespec/common"
)

// Edit rejections
var (
	ErrUnknownField          = common.NewRule("edit_unknown_field", "Unknown field")
	ErrFieldNotApplicable    = common.NewRule("edit_field_not_applicable", "Field does not apply to the current schedule")
	ErrFrequencyLocked       = common.NewRule("edit_frequency_locked", "Frequency is fixed to one-time for the selected verification type")
	ErrFrequencyNotAvailable = common.NewRule("edit_frequency_not_available", "Recurring frequency is not available for the selected verification type")
	ErrInvalidEditValue      = common.NewRule("edit_value_invalid", "Invalid value")
)

// Edit is a single field change made on the form.
type Edit struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// State is the position of a draft in the scheduling state machine.
type State string

const (
	StateUnset               State = "UNSET"
	StateOneTime             State = "ONE_TIME"
	StateRecurring           State = "RECURRING"
	StateRecurringNever      State = "RECURRING_NEVER"
	StateRecurringDate       State = "RECURRING_DATE"
	StateRecurringOccurrence State = "RECURRING_OCCURRENCE"
)

// StateOf reports the state a draft is in. StateRecurring means recurring
// with no ends option chosen yet.
func StateOf(d Draft) State {
	switch d.Frequency {
	case FrequencyOneTime:
		return StateOneTime
	case FrequencyRecurring:
		switch d.EndsType {
		case EndsNeverType:
			return StateRecurringNever
		case EndsDateType:
			return StateRecurringDate
		case EndsOccurrenceType:
			return StateRecurringOccurrence
		}
		return StateRecurring
	}
	return StateUnset
}

// Apply is the transition function of the form. It returns the draft after
// e, with every field that no longer applies cleared. The input draft is not
// modified.
//
//	reverificationId  set; metadata types force ONE_TIME, types without
//	                  recurrence fall back to ONE_TIME
//	frequency         ONE_TIME clears the recurring fields, RECURRING clears
//	                  metadata; rejected while the type pins ONE_TIME
//	endsType          NEVER clears endDate and endOccurrence, DATE clears
//	                  endOccurrence, OCCURRENCE clears endDate
//	recurring fields  only while RECURRING
//	endDate           only while RECURRING/DATE
//	endOccurrence     only while RECURRING/OCCURRENCE
//	metadata.*        only while the selected type requires metadata
func Apply(d Draft, e Edit, catalog Catalog, policy Policy) (Draft, error) {
	next := d.clone()

	switch e.Field {
	case FieldReverificationID:
		next.ReverificationID = strings.TrimSpace(e.Value)

	case FieldFrequency:
		f := Frequency(e.Value)
		if f != "" && !f.Valid() {
			return d, fmt.Errorf("%w for %s: %q", ErrInvalidEditValue, e.Field, e.Value)
		}
		if f == FrequencyRecurring && !recurringAllowed(next.ReverificationID, catalog, policy) {
			if IsMetadataRequired(next.ReverificationID, catalog, policy) {
				return d, ErrFrequencyLocked
			}
			return d, ErrFrequencyNotAvailable
		}
		next.Frequency = f

	case FieldStartDate:
		next.StartDate = e.Value

	case FieldDaysBeforeDueDate, FieldRepeatOn, FieldRepeatOnUnit, FieldEndsType:
		if next.Frequency != FrequencyRecurring {
			return d, fmt.Errorf("%w: %s", ErrFieldNotApplicable, e.Field)
		}
		switch e.Field {
		case FieldDaysBeforeDueDate:
			next.DaysBeforeDueDate = Numeral(e.Value)
		case FieldRepeatOn:
			next.RepeatOn = Numeral(e.Value)
		case FieldRepeatOnUnit:
			next.RepeatOnUnit = RepeatUnit(e.Value)
		case FieldEndsType:
			et := EndsType(e.Value)
			if et != "" && !et.Valid() {
				return d, fmt.Errorf("%w for %s: %q", ErrInvalidEditValue, e.Field, e.Value)
			}
			next.EndsType = et
		}

	case FieldEndDate:
		if StateOf(next) != StateRecurringDate {
			return d, fmt.Errorf("%w: %s", ErrFieldNotApplicable, e.Field)
		}
		next.EndDate = e.Value

	case FieldEndOccurrence:
		if StateOf(next) != StateRecurringOccurrence {
			return d, fmt.Errorf("%w: %s", ErrFieldNotApplicable, e.Field)
		}
		next.EndOccurrence = Numeral(e.Value)

	case FieldMetadataDuration, FieldMetadataReason:
		if !IsMetadataRequired(next.ReverificationID, catalog, policy) {
			return d, fmt.Errorf("%w: %s", ErrFieldNotApplicable, e.Field)
		}
		if next.Metadata == nil {
			next.Metadata = &Metadata{}
		}
		if e.Field == FieldMetadataDuration {
			next.Metadata.Duration = Duration(e.Value)
		} else {
			next.Metadata.ReasonForRequest = e.Value
		}

	default:
		return d, fmt.Errorf("%w: %s", ErrUnknownField, e.Field)
	}

	return conform(next, catalog, policy), nil
}

// conform clears every field that the draft's current type, frequency and
// ends option do not allow.
func conform(d Draft, catalog Catalog, policy Policy) Draft {
	metadataRequired := IsMetadataRequired(d.ReverificationID, catalog, policy)

	if d.Frequency == FrequencyRecurring && !recurringAllowed(d.ReverificationID, catalog, policy) {
		d.Frequency = FrequencyOneTime
	}
	if metadataRequired {
		d.Frequency = FrequencyOneTime
	} else {
		d.Metadata = nil
	}

	if d.Frequency != FrequencyRecurring {
		d.DaysBeforeDueDate = ""
		d.RepeatOn = ""
		d.RepeatOnUnit = ""
		d.EndsType = ""
	}
	if d.Frequency != FrequencyOneTime {
		d.Metadata = nil
	}

	switch d.EndsType {
	case EndsDateType:
		d.EndOccurrence = ""
	case EndsOccurrenceType:
		d.EndDate = ""
	default:
		d.EndDate = ""
		d.EndOccurrence = ""
	}

	return d
}

// FieldView tells the form whether to show an input and whether it must be
// filled.
type FieldView struct {
	Field    string `json:"field"`
	Visible  bool   `json:"visible"`
	Required bool   `json:"required"`
}

// FormView is what the form needs to render the current draft.
type FormView struct {
	State                State       `json:"state"`
	Fields               []FieldView `json:"fields"`
	AvailableFrequencies []Frequency `json:"availableFrequencies"`
	FrequencyLocked      bool        `json:"frequencyLocked"`
	MetadataRequired     bool        `json:"metadataRequired"`
}

// View computes field visibility and requiredness for d.
func View(d Draft, catalog Catalog, policy Policy) FormView {
	state := StateOf(d)
	recurring := d.Frequency == FrequencyRecurring
	metadataRequired := IsMetadataRequired(d.ReverificationID, catalog, policy)
	frequencies := AvailableFrequencies(d.ReverificationID, catalog, policy)

	return FormView{
		State: state,
		Fields: []FieldView{
			{Field: FieldReverificationID, Visible: true, Required: true},
			{Field: FieldFrequency, Visible: true, Required: true},
			{Field: FieldStartDate, Visible: true, Required: true},
			{Field: FieldDaysBeforeDueDate, Visible: recurring},
			{Field: FieldRepeatOn, Visible: recurring, Required: recurring},
			{Field: FieldRepeatOnUnit, Visible: recurring, Required: recurring},
			{Field: FieldEndsType, Visible: recurring, Required: recurring},
			{Field: FieldEndDate, Visible: state == StateRecurringDate, Required: state == StateRecurringDate},
			{Field: FieldEndOccurrence, Visible: state == StateRecurringOccurrence, Required: state == StateRecurringOccurrence},
			{Field: FieldMetadataDuration, Visible: metadataRequired, Required: metadataRequired},
			{Field: FieldMetadataReason, Visible: metadataRequired},
		},
		AvailableFrequencies: frequencies,
		FrequencyLocked:      len(frequencies) == 1,
		MetadataRequired:     metadataRequired,
	}
}

// IsRequired reports whether field must be filled in the viewed state.
func (v FormView) IsRequired(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return f.Required
		}
	}
	return false
}

// IsVisible reports whether field is shown in the viewed state.
func (v FormView) IsVisible(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return f.Visible
		}
	}
	return false
}

// EditResult is the outcome of one edit: the new draft, what to render, the
// full error list (used to block submission) and the error for the edited
// field alone (used for inline feedback).
type EditResult struct {
	Draft      Draft                    `json:"draft"`
	View       FormView                 `json:"view"`
	Errors     []common.ValidationError `json:"errors,omitempty"`
	FieldError *common.ValidationError  `json:"fieldError,omitempty"`
}

// Edit applies e to d and re-validates the whole draft.
func (v *Validator) Edit(d Draft, e Edit) (EditResult, error) {
	next, err := Apply(d, e, v.Catalog, v.Policy)
	if err != nil {
		return EditResult{}, err
	}

	_, errs := v.Validate(next)
	result := EditResult{
		Draft:  next,
		View:   View(next, v.Catalog, v.Policy),
		Errors: errs,
	}
	if fe, ok := common.ErrorFor(errs, e.Field); ok {
		result.FieldError = &fe
	}
	return result, nil
}
