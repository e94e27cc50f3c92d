package domain

import "time"

// InventoryDay is one room type's counters on one calendar date.
// held_count + booked_count never exceeds total_count; the schema
// enforces the same invariant with a CHECK constraint.
type InventoryDay struct {
	RoomTypeID  string
	Day         time.Time
	TotalCount  int
	HeldCount   int
	BookedCount int
}

// Free returns the remaining sellable count, never negative.
func (d InventoryDay) Free() int {
	free := d.TotalCount - d.HeldCount - d.BookedCount
	if free < 0 {
		return 0
	}
	return free
}

// DayAvailability is the browse-facing view of a single date.
type DayAvailability struct {
	Day  time.Time
	Free int
}

// StayRange is a half-open [CheckIn, CheckOut) range of nights.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStayRange normalizes both endpoints to midnight UTC and validates
// that the range covers at least one night.
func NewStayRange(checkIn, checkOut time.Time) (StayRange, error) {
	r := StayRange{CheckIn: DateOnly(checkIn), CheckOut: DateOnly(checkOut)}
	if !r.CheckOut.After(r.CheckIn) {
		return StayRange{}, ErrInvalidDateRange
	}
	return r, nil
}

// Nights returns the number of nights in the range.
func (r StayRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Dates lists every occupied night, check-out day excluded.
func (r StayRange) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
