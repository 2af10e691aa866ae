package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"meditrack/internal/model"
)

// TreatmentInput describes one course of a drug as entered by the user.
// It is transient: expansion turns it into persisted dose instances.
type TreatmentInput struct {
	Name       string
	DoseAmount string
	StartTime  time.Time
	// IntervalHours between doses, 0..24. 0 means once daily.
	IntervalHours int
	// DurationDays of the course, 0..30. 0 means continuous use.
	DurationDays int
	Notes        string
	Indication   string
	// MinIntervalHours comes from a reference-dataset selection; 0 when the
	// drug has no known minimum.
	MinIntervalHours int
}

// IsUnsafe reports whether the chosen interval is below the reference
// minimum. Interval 0 means once daily (24h) and is always safe.
func IsUnsafe(chosenHours, minHours int) bool {
	return minHours > 0 && chosenHours > 0 && chosenHours < minHours
}

// Expand turns a treatment input into its dose instances under a fresh group
// id. Pure: the caller persists and arms reminders per instance.
func Expand(input TreatmentInput, overrideUnsafe bool) ([]model.DoseInstance, error) {
	return ExpandGroup(input, uuid.New(), overrideUnsafe)
}

// ExpandGroup expands under a given group id, used when an edit regenerates
// an existing family.
func ExpandGroup(input TreatmentInput, groupID uuid.UUID, overrideUnsafe bool) ([]model.DoseInstance, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	if !overrideUnsafe && IsUnsafe(input.IntervalHours, input.MinIntervalHours) {
		return nil, &UnsafeIntervalError{ChosenHours: input.IntervalHours, MinHours: input.MinIntervalHours}
	}

	interval := input.IntervalHours
	if interval == 0 {
		interval = 24
	}

	// Integer division on purpose: interval 7 gives 3 doses a day, the
	// remainder shifts the next day's first dose rather than snapping to
	// day boundaries.
	dosesPerDay := 24 / interval
	if dosesPerDay < 1 {
		dosesPerDay = 1
	}

	count := dosesPerDay
	if input.DurationDays > 0 {
		count = dosesPerDay * input.DurationDays
	}

	doses := make([]model.DoseInstance, 0, count)
	for i := 0; i < count; i++ {
		doses = append(doses, model.DoseInstance{
			ID:           uuid.New(),
			GroupID:      groupID,
			Name:         input.Name,
			DoseAmount:   input.DoseAmount,
			Notes:        input.Notes,
			Indication:   input.Indication,
			ScheduledAt:  input.StartTime.Add(time.Duration(i*interval) * time.Hour),
			DurationDays: input.DurationDays,
		})
	}
	return doses, nil
}

func validate(input TreatmentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(input.DoseAmount) == "" {
		return &ValidationError{Field: "dose amount"}
	}
	if input.IntervalHours < 0 || input.IntervalHours > 24 {
		return &ValidationError{Field: "interval", Reason: "must be between 0 and 24 hours"}
	}
	if input.DurationDays < 0 || input.DurationDays > 30 {
		return &ValidationError{Field: "duration", Reason: "must be between 0 and 30 days"}
	}
	return nil
}
