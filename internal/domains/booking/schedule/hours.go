package schedule

// Hours is the daily operating range of a room.
type Hours struct {
	Open  int
	Close int
}

// ParseHours parses the open and close times and requires open < close.
func ParseHours(open, closing string) (Hours, error) {
	window, err := ParseWindow(open, closing)
	if err != nil {
		return Hours{}, err
	}

	return Hours{Open: window.Start, Close: window.End}, nil
}

// Contains returns nil when the window fits inside the operating hours, bounds included.
func (h Hours) Contains(w Window) error {
	if w.Start >= h.Open && w.End <= h.Close {
		return nil
	}

	return OutOfHours(h)
}

func (h Hours) OpenClock() string {
	return FormatClock(h.Open)
}

func (h Hours) CloseClock() string {
	return FormatClock(h.Close)
}
