package roi

// Snapshot flattens inputs into the JSON-keyed map stored with ROI report leads.
func (in Inputs) Snapshot() map[string]float64 {
	return map[string]float64{
		"monthlyInquiries":   in.MonthlyInquiries,
		"contactRate":        in.ContactRate,
		"conversionRate":     in.ConversionRate,
		"avgTuition":         in.AvgTuition,
		"staffCost":          in.StaffCost,
		"touchesPerLead":     in.TouchesPerLead,
		"coryContactRate":    in.CoryContactRate,
		"responseUplift":     in.ResponseUplift,
		"automationCoverage": in.AutomationCoverage,
	}
}

// RequestFromSnapshot is the inverse of Snapshot. Missing keys stay nil so
// Request.Inputs reports them.
func RequestFromSnapshot(m map[string]float64) Request {
	pick := func(key string) *float64 {
		v, ok := m[key]
		if !ok {
			return nil
		}
		return &v
	}
	return Request{
		MonthlyInquiries:   pick("monthlyInquiries"),
		ContactRate:        pick("contactRate"),
		ConversionRate:     pick("conversionRate"),
		AvgTuition:         pick("avgTuition"),
		StaffCost:          pick("staffCost"),
		TouchesPerLead:     pick("touchesPerLead"),
		CoryContactRate:    pick("coryContactRate"),
		ResponseUplift:     pick("responseUplift"),
		AutomationCoverage: pick("automationCoverage"),
	}
}
