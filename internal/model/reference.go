package model

// ReferenceEntry is a read-only record from the bundled drug dataset. It
// supplies default dosing values and the minimum safe gap between doses.
type ReferenceEntry struct {
	Name             string   `json:"name"`
	DoseAmount       string   `json:"dose_amount"`
	Symptoms         []string `json:"symptoms"`
	IntervalHours    int      `json:"interval_hours"`
	MinIntervalHours int      `json:"min_interval_hours"`
	DurationDays     int      `json:"duration_days,omitempty"`
}
