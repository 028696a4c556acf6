// Package schedule implements the appointment-slot allocation core:
// the fixed daily slot catalog, availability computation over the
// technician roster and stored bookings, and the write-time allocator
// that assigns a technician to a new booking.
package schedule

import "time"

// timeSlots is the fixed catalog of daily service windows.  Changing
// this list is a deployment decision, not a runtime operation; slot
// labels are stored verbatim on bookings.
var timeSlots = []string{
	"8:00 - 10:00",
	"10:00 - 12:00",
	"12:00 - 14:00",
	"14:00 - 16:00",
	"16:00 - 18:00",
}

// TimeSlots returns the ordered slot labels.  Callers receive a copy
// and may not mutate the catalog.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// ValidTimeSlot reports whether label is a catalog entry.
func ValidTimeSlot(label string) bool {
	for _, s := range timeSlots {
		if s == label {
			return true
		}
	}
	return false
}

// DayOf normalizes t to midnight UTC of its calendar day.  Every
// availability and allocation query buckets bookings by this value so
// that a date never drifts across day boundaries between read and
// write.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts the date formats clients send: a bare calendar day
// ("2006-01-02") or a full RFC 3339 timestamp.  The result is already
// normalized via DayOf.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DayOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}
