package schedule

import (
	"context"
	"fmt"
	"time"
)

// Slot is the part of an approved booking the detector needs.
type Slot struct {
	BookingID string
	Date      time.Time
	Window    Window
}

// ApprovedFinder returns the approved bookings of a room on a day, leaving out excludeID when it is set.
type ApprovedFinder interface {
	FindApproved(ctx context.Context, roomID string, date time.Time, excludeID string) ([]Slot, error)
}

type ConflictResult struct {
	Conflict bool
	With     *Slot
}

// Err converts a positive result into a ScheduleConflict failure.
func (r ConflictResult) Err() error {
	if !r.Conflict || r.With == nil {
		return nil
	}

	return ScheduleConflict(*r.With)
}

// FirstConflict scans slots in order and returns the first one overlapping window.
// Slots with excludeID are skipped even if the finder already filtered them.
func FirstConflict(slots []Slot, window Window, excludeID string) ConflictResult {
	for i := range slots {
		slot := slots[i]
		if excludeID != "" && slot.BookingID == excludeID {
			continue
		}

		if slot.Window.Overlaps(window) {
			return ConflictResult{Conflict: true, With: &slot}
		}
	}

	return ConflictResult{}
}

type Detector struct {
	finder ApprovedFinder
}

func NewDetector(finder ApprovedFinder) *Detector {
	return &Detector{finder: finder}
}

// FindConflict checks window against the approved bookings of roomID on the day of date.
func (d *Detector) FindConflict(ctx context.Context, roomID string, date time.Time, window Window, excludeID string) (ConflictResult, error) {
	slots, err := d.finder.FindApproved(ctx, roomID, Day(date), excludeID)
	if err != nil {
		return ConflictResult{}, fmt.Errorf("failed to find approved bookings: %w", err)
	}

	return FirstConflict(slots, window, excludeID), nil
}
