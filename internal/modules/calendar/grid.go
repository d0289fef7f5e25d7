package calendar

import (
	"fmt"
	"time"

	"beautycrm/internal/domain"
)

// Hours describes the bookable day as minutes since midnight.
type Hours struct {
	Open  int
	Close int
	Step  int
}

func DefaultHours() Hours {
	return Hours{Open: 9 * 60, Close: 21 * 60, Step: 30}
}

// ParseHours builds Hours from "HH:MM" bounds and a slot step.
func ParseHours(open, closing string, step time.Duration) (Hours, error) {
	o, err := time.Parse("15:04", open)
	if err != nil {
		return Hours{}, fmt.Errorf("open: %w", err)
	}
	c, err := time.Parse("15:04", closing)
	if err != nil {
		return Hours{}, fmt.Errorf("close: %w", err)
	}
	h := Hours{
		Open:  o.Hour()*60 + o.Minute(),
		Close: c.Hour()*60 + c.Minute(),
		Step:  int(step / time.Minute),
	}
	if h.Step <= 0 || h.Close <= h.Open {
		return Hours{}, fmt.Errorf("invalid salon hours %s-%s step %s", open, closing, step)
	}
	return h, nil
}

type Slot struct {
	Hour   int
	Minute int
}

func (s Slot) Label() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// At is the slot start on the calendar date of day.
func (s Slot) At(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, s.Hour, s.Minute, 0, 0, loc)
}

// GenerateSlots returns every start from opening to closing inclusive.
func GenerateSlots(h Hours) []Slot {
	if h.Step <= 0 || h.Close < h.Open {
		return nil
	}
	out := make([]Slot, 0, (h.Close-h.Open)/h.Step+1)
	for m := h.Open; m <= h.Close; m += h.Step {
		out = append(out, Slot{Hour: m / 60, Minute: m % 60})
	}
	return out
}

type SlotBookings struct {
	Time     string           `json:"time"`
	Bookings []domain.Booking `json:"bookings"`
}

// Grid is one calendar day. OffGrid holds bookings of that day whose start
// does not coincide with a slot; they never appear in Slots.
type Grid struct {
	Slots   []SlotBookings   `json:"slots"`
	OffGrid []domain.Booking `json:"off_grid"`
}

// BucketBookings places each booking of day into the slot with the same
// local hour and minute. A booking lands in at most one slot.
func BucketBookings(slots []Slot, bookings []domain.Booking, day time.Time, loc *time.Location) Grid {
	if loc == nil {
		loc = time.UTC
	}

	g := Grid{
		Slots:   make([]SlotBookings, len(slots)),
		OffGrid: []domain.Booking{},
	}
	index := make(map[string]int, len(slots))
	for i, s := range slots {
		label := s.Label()
		g.Slots[i] = SlotBookings{Time: label, Bookings: []domain.Booking{}}
		index[label] = i
	}

	for _, b := range bookings {
		if !domain.SameDay(b.Datetime, day, loc) {
			continue
		}
		local := b.Datetime.In(loc)
		i, ok := index[Slot{Hour: local.Hour(), Minute: local.Minute()}.Label()]
		if !ok {
			g.OffGrid = append(g.OffGrid, b)
			continue
		}
		g.Slots[i].Bookings = append(g.Slots[i].Bookings, b)
	}
	return g
}

// Availability is the input for FreeStarts.
type Availability struct {
	Hours     Hours
	Day       time.Time
	Location  *time.Location
	Duration  time.Duration
	Now       time.Time
	Capacity  int
	Bookings  []domain.Booking
	ExcludeID int64
}

// FreeStarts lists slot starts where a visit of the given duration fits
// before closing, lies in the future and overlaps fewer active bookings than
// the capacity.
func FreeStarts(a Availability) []string {
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	capacity := a.Capacity
	if capacity < 1 {
		capacity = 1
	}
	dur := a.Duration
	if dur <= 0 {
		dur = domain.DefaultBookingDuration * time.Minute
	}

	closing := Slot{Hour: a.Hours.Close / 60, Minute: a.Hours.Close % 60}.At(a.Day, loc)

	out := make([]string, 0)
	for _, s := range GenerateSlots(a.Hours) {
		start := s.At(a.Day, loc)
		end := start.Add(dur)
		if end.After(closing) || !start.After(a.Now) {
			continue
		}

		taken := 0
		for i := range a.Bookings {
			b := &a.Bookings[i]
			if b.ID == a.ExcludeID || !b.Status.Active() {
				continue
			}
			if b.Overlaps(start, end) {
				taken++
			}
		}
		if taken < capacity {
			out = append(out, s.Label())
		}
	}
	return out
}
