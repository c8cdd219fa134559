package availability

import "time"

// FallbackResult proposes a fixed afternoon schedule when the assistant is
// disabled or unreachable, so the booking flow degrades instead of failing.
func FallbackResult(day time.Time, durationMinutes int, loc *time.Location) *Result {
	if loc == nil {
		loc = time.UTC
	}

	duration := time.Duration(durationMinutes) * time.Minute

	first := time.Date(day.Year(), day.Month(), day.Day(), 14, 0, 0, 0, loc)
	second := time.Date(day.Year(), day.Month(), day.Day(), 15, 30, 0, 0, loc)

	return &Result{
		Slots: []Slot{
			{StartsAt: first, EndsAt: first.Add(duration)},
			{StartsAt: second, EndsAt: second.Add(duration)},
		},
		Summary: "Scheduling assistant is currently unavailable. Showing availability based on a standard afternoon schedule.",
	}
}
