// Package schedule holds the storage-free booking rules: time-of-day parsing, operating hours,
// overlap and conflict detection, and the booking status lifecycle.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"roombook/shared/constant"
)

const minutesPerHour = 60

var clockPattern = regexp.MustCompile(constant.ClockPattern)

// ValidClock reports whether text is a 24-hour HH:MM time of day. A single digit hour is accepted.
func ValidClock(text string) bool {
	return clockPattern.MatchString(text)
}

// ParseClock converts HH:MM into minutes since midnight.
func ParseClock(text string) (int, error) {
	if !ValidClock(text) {
		return 0, InvalidTimeFormat(text)
	}

	hour, minute, _ := strings.Cut(text, ":")

	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)

	return h*minutesPerHour + m, nil
}

// FormatClock renders minutes since midnight as zero padded HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}

// NormalizeClock re-renders a valid HH:MM value with a zero padded hour, so "9:00" becomes "09:00".
func NormalizeClock(text string) (string, error) {
	minutes, err := ParseClock(text)
	if err != nil {
		return "", err
	}

	return FormatClock(minutes), nil
}

// Window is a half-open interval [Start, End) of a day in minutes.
type Window struct {
	Start int
	End   int
}

// ParseWindow parses both bounds and requires Start < End.
func ParseWindow(start, end string) (Window, error) {
	startMinutes, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}

	endMinutes, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}

	if startMinutes >= endMinutes {
		return Window{}, InvalidOrder(start, end)
	}

	return Window{Start: startMinutes, End: endMinutes}, nil
}

// Overlaps is true iff the half-open windows share at least one minute. Touching windows do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

func (w Window) Overlaps(other Window) bool {
	return Overlaps(w.Start, w.End, other.Start, other.End)
}

func (w Window) StartClock() string {
	return FormatClock(w.Start)
}

func (w Window) EndClock() string {
	return FormatClock(w.End)
}

func (w Window) String() string {
	return w.StartClock() + "-" + w.EndClock()
}
