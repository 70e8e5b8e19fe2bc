package workflow

import (
	"strings"
	"time"
)

// scheduleLayout matches the value of an HTML datetime-local input.
const scheduleLayout = "2006-01-02T15:04"

// SchedulingValidator validates a proposed publish time and converts it
// to a UTC instant.
type SchedulingValidator struct {
	// Location interprets the candidate time; time.Local when nil.
	Location *time.Location
	// Now is a clock seam for tests; time.Now when nil.
	Now func() time.Time
}

// Validate parses a datetime-local candidate in the validator's location
// and returns the equivalent UTC instant. Empty input, unparseable input,
// and instants not in the future are rejected with a ValidationError.
func (v *SchedulingValidator) Validate(candidate string) (time.Time, error) {
	if strings.TrimSpace(candidate) == "" {
		return time.Time{}, &ValidationError{Field: "scheduled_time", Reason: "empty"}
	}
	loc := v.Location
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(scheduleLayout, candidate, loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "scheduled_time", Reason: "not a valid date and time"}
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	utc := t.UTC()
	if !utc.After(now()) {
		return time.Time{}, &ValidationError{Field: "scheduled_time", Reason: "must be in the future"}
	}
	return utc, nil
}
