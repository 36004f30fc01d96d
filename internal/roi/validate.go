package roi

import (
	"errors"
	"math"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidInput is returned when inputs are missing or not finite.
var ErrInvalidInput = errors.New("invalid ROI input")

// InputError lists the offending fields by their JSON name.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Request is the wire form of Inputs. Every field is required; nil means the
// caller omitted it.
type Request struct {
	MonthlyInquiries   *float64 `json:"monthlyInquiries" yaml:"monthly_inquiries"`
	ContactRate        *float64 `json:"contactRate" yaml:"contact_rate"`
	ConversionRate     *float64 `json:"conversionRate" yaml:"conversion_rate"`
	AvgTuition         *float64 `json:"avgTuition" yaml:"avg_tuition"`
	StaffCost          *float64 `json:"staffCost" yaml:"staff_cost"`
	TouchesPerLead     *float64 `json:"touchesPerLead" yaml:"touches_per_lead"`
	CoryContactRate    *float64 `json:"coryContactRate" yaml:"cory_contact_rate"`
	ResponseUplift     *float64 `json:"responseUplift" yaml:"response_uplift"`
	AutomationCoverage *float64 `json:"automationCoverage" yaml:"automation_coverage"`
}

// NewRequest wraps fully populated inputs in a Request.
func NewRequest(in Inputs) Request {
	return Request{
		MonthlyInquiries:   &in.MonthlyInquiries,
		ContactRate:        &in.ContactRate,
		ConversionRate:     &in.ConversionRate,
		AvgTuition:         &in.AvgTuition,
		StaffCost:          &in.StaffCost,
		TouchesPerLead:     &in.TouchesPerLead,
		CoryContactRate:    &in.CoryContactRate,
		ResponseUplift:     &in.ResponseUplift,
		AutomationCoverage: &in.AutomationCoverage,
	}
}

// Inputs checks that every field is present and finite and returns the
// dereferenced values.
func (r Request) Inputs() (Inputs, error) {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.MonthlyInquiries, validation.NotNil, finite),
		validation.Field(&r.ContactRate, validation.NotNil, finite),
		validation.Field(&r.ConversionRate, validation.NotNil, finite),
		validation.Field(&r.AvgTuition, validation.NotNil, finite),
		validation.Field(&r.StaffCost, validation.NotNil, finite),
		validation.Field(&r.TouchesPerLead, validation.NotNil, finite),
		validation.Field(&r.CoryContactRate, validation.NotNil, finite),
		validation.Field(&r.ResponseUplift, validation.NotNil, finite),
		validation.Field(&r.AutomationCoverage, validation.NotNil, finite),
	)
	if err != nil {
		return Inputs{}, toInputError(err)
	}

	return Inputs{
		MonthlyInquiries:   *r.MonthlyInquiries,
		ContactRate:        *r.ContactRate,
		ConversionRate:     *r.ConversionRate,
		AvgTuition:         *r.AvgTuition,
		StaffCost:          *r.StaffCost,
		TouchesPerLead:     *r.TouchesPerLead,
		CoryContactRate:    *r.CoryContactRate,
		ResponseUplift:     *r.ResponseUplift,
		AutomationCoverage: *r.AutomationCoverage,
	}, nil
}

// Validate rejects NaN and infinite values. Negative or >100 percentages are
// accepted and flow through Calculate unchanged.
func Validate(in Inputs) error {
	_, err := NewRequest(in).Inputs()
	return err
}

var finite = validation.By(func(value any) error {
	var f float64
	switch v := value.(type) {
	case *float64:
		if v == nil {
			return nil
		}
		f = *v
	case float64:
		f = v
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return validation.NewError("roi_not_finite", "must be a finite number")
	}
	return nil
})

func toInputError(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for name, fieldErr := range errs {
		fields[name] = fieldErr.Error()
	}
	return &InputError{Fields: fields}
}
