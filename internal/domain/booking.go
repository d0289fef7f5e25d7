package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingNew       BookingStatus = "new"
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// DefaultBookingDuration applies when the booked service has no duration.
const DefaultBookingDuration = 30

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingNew, BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal statuses can no longer be changed.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Active bookings occupy their time slot.
func (s BookingStatus) Active() bool {
	return s != BookingCancelled
}

// CanTransition reports whether a booking in status s may be moved to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

type Booking struct {
	ID              int64         `json:"id" gorm:"primaryKey"`
	ClientID        *int64        `json:"client_id,omitempty" gorm:"index"`
	Service         string        `json:"service" gorm:"size:100"`
	Datetime        time.Time     `json:"datetime" gorm:"not null;index"`
	DurationMinutes int           `json:"duration_minutes" gorm:"not null;default:30"`
	Phone           string        `json:"phone" gorm:"size:32"`
	Name            string        `json:"name" gorm:"size:255"`
	Status          BookingStatus `json:"status" gorm:"size:20;not null;default:'new';index"`
	Revenue         float64       `json:"revenue"`
	Master          string        `json:"master,omitempty" gorm:"size:255;index"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`
	Version         int           `json:"version" gorm:"not null;default:1"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) End() time.Time {
	d := b.DurationMinutes
	if d <= 0 {
		d = DefaultBookingDuration
	}
	return b.Datetime.Add(time.Duration(d) * time.Minute)
}

// Overlaps reports whether the booking intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.Datetime.Before(end) && start.Before(b.End())
}

var bookingTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseBookingTime parses the datetime formats accepted from forms and the
// bot. Values without an offset are interpreted in loc.
func ParseBookingTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for i, layout := range bookingTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if i < 2 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported datetime %q", s)
}

// ParseDay parses YYYY-MM-DD as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
}

// SameDay compares calendar dates of a and b in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
