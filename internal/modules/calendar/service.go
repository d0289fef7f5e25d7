package calendar

import (
	"context"
	"time"

	"beautycrm/internal/domain"
	"beautycrm/internal/repository"
)

const daysInWeek = 7

type Service struct {
	bookings BookingRepository
	hours    Hours
	loc      *time.Location
	now      func() time.Time
}

func NewService(bookings BookingRepository, hours Hours, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{bookings: bookings, hours: hours, loc: loc, now: time.Now}
}

func (s *Service) Hours() Hours { return s.hours }

func (s *Service) Location() *time.Location { return s.loc }

// Day builds the slot grid for date (today when empty), optionally limited
// to one master.
func (s *Service) Day(ctx context.Context, date, master string) (*DayView, error) {
	day, err := s.parseOrToday(date)
	if err != nil {
		return nil, err
	}

	next := day.AddDate(0, 0, 1)
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{
		Master: master,
		From:   &day,
		To:     &next,
	})
	if err != nil {
		return nil, err
	}

	return &DayView{
		Date: day.Format("2006-01-02"),
		Grid: BucketBookings(GenerateSlots(s.hours), bookings, day, s.loc),
	}, nil
}

// Week is the 7-day strip starting at start (today when empty) with the
// number of non-cancelled bookings per day.
func (s *Service) Week(ctx context.Context, start string) (*WeekView, error) {
	first, err := s.parseOrToday(start)
	if err != nil {
		return nil, err
	}

	end := first.AddDate(0, 0, daysInWeek)
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{From: &first, To: &end})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, daysInWeek)
	for _, b := range bookings {
		if !b.Status.Active() {
			continue
		}
		counts[b.Datetime.In(s.loc).Format("2006-01-02")]++
	}

	today := s.now().In(s.loc).Format("2006-01-02")
	view := &WeekView{Start: first.Format("2006-01-02"), Days: make([]DaySummary, 0, daysInWeek)}
	for i := 0; i < daysInWeek; i++ {
		d := first.AddDate(0, 0, i)
		key := d.Format("2006-01-02")
		view.Days = append(view.Days, DaySummary{
			Date:     key,
			Weekday:  d.Weekday().String(),
			Bookings: counts[key],
			IsToday:  key == today,
		})
	}
	return view, nil
}

func (s *Service) parseOrToday(date string) (time.Time, error) {
	if date == "" {
		y, m, d := s.now().In(s.loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, s.loc), nil
	}
	day, err := domain.ParseDay(date, s.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}
