// Package roi computes the annualized financial impact of moving an admissions
// team from manual lead follow-up to automated outreach.
//
// Everything in this package is a pure function of its arguments. Out-of-range
// values (negative rates, rates above 100) are propagated through the
// arithmetic unchanged; callers that accept untrusted input should run
// Validate or Request.Inputs first.
package roi

import "math"

const (
	// EnrollmentRate is the share of applications that become enrollments.
	EnrollmentRate = 0.30

	// HoursPerTouch is the staff time of one manual contact attempt (6 minutes).
	HoursPerTouch = 0.1

	// PlatformCost is the annual cost of the automation platform in dollars.
	PlatformCost = 36000.0

	monthsPerYear = 12
)

// Inputs is a snapshot of funnel assumptions. Percentages are expressed
// on a 0-100 scale.
type Inputs struct {
	MonthlyInquiries   float64 `json:"monthlyInquiries" yaml:"monthly_inquiries"`
	ContactRate        float64 `json:"contactRate" yaml:"contact_rate"`
	ConversionRate     float64 `json:"conversionRate" yaml:"conversion_rate"`
	AvgTuition         float64 `json:"avgTuition" yaml:"avg_tuition"`
	StaffCost          float64 `json:"staffCost" yaml:"staff_cost"`
	TouchesPerLead     float64 `json:"touchesPerLead" yaml:"touches_per_lead"`
	CoryContactRate    float64 `json:"coryContactRate" yaml:"cory_contact_rate"`
	ResponseUplift     float64 `json:"responseUplift" yaml:"response_uplift"`
	AutomationCoverage float64 `json:"automationCoverage" yaml:"automation_coverage"`
}

// Results holds the projection derived from Inputs. The annualized counts
// (AdditionalApps, AdditionalEnrollments, StaffHoursSaved) and AnnualROI are
// rounded to the nearest integer; everything else is unrounded.
type Results struct {
	// Monthly application volumes before and after automation.
	CurrentApplications float64 `json:"currentApplications"`
	CoryApplications    float64 `json:"coryApplications"`

	AdditionalApps        float64 `json:"additionalApps"`
	AdditionalEnrollments float64 `json:"additionalEnrollments"`
	TuitionLift           float64 `json:"tuitionLift"`
	StaffHoursSaved       float64 `json:"staffHoursSaved"`
	StaffSavings          float64 `json:"staffSavings"`
	TotalBenefit          float64 `json:"totalBenefit"`
	PlatformCost          float64 `json:"platformCost"`
	NetBenefit            float64 `json:"netBenefit"`
	AnnualROI             float64 `json:"annualROI"`
}

// Default returns the calculator's starting values.
func Default() Inputs {
	return Inputs{
		MonthlyInquiries:   500,
		ContactRate:        45,
		ConversionRate:     25,
		AvgTuition:         25000,
		StaffCost:          35,
		TouchesPerLead:     8,
		CoryContactRate:    92,
		ResponseUplift:     25,
		AutomationCoverage: 85,
	}
}

// Calculate projects the annual impact of automation for the given inputs.
// Rounding is half away from zero (math.Round).
func Calculate(in Inputs) Results {
	currentContacts := in.MonthlyInquiries * in.ContactRate / 100
	currentApplications := currentContacts * in.ConversionRate / 100
	currentEnrollments := currentApplications * EnrollmentRate

	coryContacts := in.MonthlyInquiries * in.CoryContactRate / 100
	// Uplift is relative to the current conversion rate, not additive points.
	improvedConversionRate := in.ConversionRate * (1 + in.ResponseUplift/100)
	coryApplications := coryContacts * improvedConversionRate / 100
	coryEnrollments := coryApplications * EnrollmentRate

	additionalApps := math.Round((coryApplications - currentApplications) * monthsPerYear)
	additionalEnrollments := math.Round((coryEnrollments - currentEnrollments) * monthsPerYear)
	tuitionLift := additionalEnrollments * in.AvgTuition

	currentStaffHours := in.MonthlyInquiries * in.TouchesPerLead * HoursPerTouch
	savedHours := currentStaffHours * in.AutomationCoverage / 100
	staffHoursSaved := math.Round(savedHours * monthsPerYear)
	staffSavings := staffHoursSaved * in.StaffCost

	totalBenefit := tuitionLift + staffSavings
	netBenefit := totalBenefit - PlatformCost

	return Results{
		CurrentApplications:   currentApplications,
		CoryApplications:      coryApplications,
		AdditionalApps:        additionalApps,
		AdditionalEnrollments: additionalEnrollments,
		TuitionLift:           tuitionLift,
		StaffHoursSaved:       staffHoursSaved,
		StaffSavings:          staffSavings,
		TotalBenefit:          totalBenefit,
		PlatformCost:          PlatformCost,
		NetBenefit:            netBenefit,
		AnnualROI:             math.Round(netBenefit / PlatformCost * 100),
	}
}

// Formatted is the display form of Results used by the calculator page.
type Formatted struct {
	AdditionalApps        string `json:"additionalApps"`
	AdditionalEnrollments string `json:"additionalEnrollments"`
	TuitionLift           string `json:"tuitionLift"`
	StaffHoursSaved       string `json:"staffHoursSaved"`
	TotalBenefit          string `json:"totalBenefit"`
	PlatformCost          string `json:"platformCost"`
	NetBenefit            string `json:"netBenefit"`
	AnnualROI             string `json:"annualROI"`
}

// Format renders each result field with the matching formatter.
func (r Results) Format() Formatted {
	return Formatted{
		AdditionalApps:        FormatNumber(r.AdditionalApps),
		AdditionalEnrollments: FormatNumber(r.AdditionalEnrollments),
		TuitionLift:           FormatCurrency(r.TuitionLift),
		StaffHoursSaved:       FormatNumber(r.StaffHoursSaved),
		TotalBenefit:          FormatCurrency(r.TotalBenefit),
		PlatformCost:          FormatCurrency(r.PlatformCost),
		NetBenefit:            FormatCurrency(r.NetBenefit),
		AnnualROI:             FormatPercent(r.AnnualROI),
	}
}
