package schedule

import (
	"time"
)

const dateLayout = time.DateOnly

// Day truncates t to its calendar day. The result is midnight UTC of the same year, month and day
// so it compares and persists as a plain date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into a Day.
func ParseDate(text string) (time.Time, error) {
	date, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}, InvalidDateFormat(text)
	}

	return Day(date), nil
}

// FormatDate renders a Day as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}

// NotBefore fails with PastDate when date is strictly before the calendar day of now.
// now must already be in the application timezone.
func NotBefore(date, now time.Time) error {
	if Day(date).Before(Day(now)) {
		return PastDate(date)
	}

	return nil
}
