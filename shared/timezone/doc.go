// Package timezone holds the application timezone loaded from APP_TIMEZONE.
//
// Booking dates are calendar days in this zone: "today" for the past-date rule is the day of Now().
// Names must come from the IANA database, e.g. "UTC" or "Asia/Jakarta".
package timezone
