package monitor

import "time"

// MarketHours describes a trading session in its local timezone
type MarketHours struct {
	location  *time.Location
	openHour  int
	openMin   int
	closeHour int
	closeMin  int
}

// NewUSEquityHours returns the regular US equity session,
// 09:30-16:00 Eastern, Monday through Friday.
func NewUSEquityHours() (*MarketHours, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, err
	}

	return &MarketHours{
		location:  loc,
		openHour:  9,
		openMin:   30,
		closeHour: 16,
		closeMin:  0,
	}, nil
}

// IsOpen reports whether the session is open at the given instant.
// Exchange holidays are not modeled; a holiday check pass just finds
// an unchanged price.
func (h *MarketHours) IsOpen(t time.Time) bool {
	local := t.In(h.location)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	open := h.openHour*60 + h.openMin
	closing := h.closeHour*60 + h.closeMin

	return minutes >= open && minutes < closing
}
