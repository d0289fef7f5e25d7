package cabinet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"beautycrm/internal/domain"
	"beautycrm/internal/modules/calendar"
	"beautycrm/internal/notify"
	"beautycrm/internal/pkg/jwt"
	"beautycrm/internal/pkg/password"
	"beautycrm/internal/repository"
)

type Service struct {
	clients   ClientRepository
	bookings  BookingRepository
	services  ServiceCatalog
	staff     StaffCounter
	tokens    tokenIssuer
	reminders ReminderScheduler
	notifier  notify.Notifier
	hours     calendar.Hours
	loc       *time.Location
	now       func() time.Time
}

type Deps struct {
	Clients   ClientRepository
	Bookings  BookingRepository
	Services  ServiceCatalog
	Staff     StaffCounter
	Tokens    tokenIssuer
	Reminders ReminderScheduler
	Notifier  notify.Notifier
}

func NewService(d Deps, hours calendar.Hours, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		clients:   d.Clients,
		bookings:  d.Bookings,
		services:  d.Services,
		staff:     d.Staff,
		tokens:    d.Tokens,
		reminders: d.Reminders,
		notifier:  notifier,
		hours:     hours,
		loc:       loc,
		now:       time.Now,
	}
}

// Register opens a cabinet. A client known only by phone (booked by staff or
// through the site) claims their existing record.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	phone := domain.NormalizePhone(req.Phone)
	name := strings.TrimSpace(req.Name)
	if phone == "" || name == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrValidation)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	client, err := s.clients.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if client.HasCabinet() {
			return nil, ErrAlreadyRegistered
		}
		client.PasswordHash = hash
		if client.DisplayName == "" {
			client.DisplayName = name
		}
		if err := s.clients.Update(ctx, client); err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrNotFound):
		client = &domain.Client{DisplayName: name, Phone: &phone, PasswordHash: hash}
		if err := s.clients.Create(ctx, client); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, ErrAlreadyRegistered
			}
			return nil, err
		}
	default:
		return nil, err
	}

	return s.session(client)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	client, err := s.clients.GetByPhone(ctx, domain.NormalizePhone(req.Phone))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Matches(client.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(client)
}

func (s *Service) session(c *domain.Client) (*SessionResponse, error) {
	token, err := s.tokens.GenerateToken(c.ID, "", jwt.KindClient)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{Token: token, Client: c}, nil
}

func (s *Service) Me(ctx context.Context, clientID int64) (*domain.Client, error) {
	return s.clients.GetByID(ctx, clientID)
}

func (s *Service) Bookings(ctx context.Context, clientID int64) ([]domain.Booking, error) {
	return s.bookings.List(ctx, repository.BookingFilter{ClientID: &clientID})
}

// AvailableSlots lists free HH:MM starts on date for a service, optionally
// with a specific master.
func (s *Service) AvailableSlots(ctx context.Context, q SlotsQuery) (*SlotsResponse, error) {
	day, err := domain.ParseDay(q.Date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}

	duration := domain.DefaultBookingDuration
	if key := strings.TrimSpace(q.Service); key != "" {
		svc, err := s.services.GetByKey(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown service", ErrValidation)
			}
			return nil, err
		}
		duration = svc.DurationMinutes()
	}

	slots, err := s.freeStarts(ctx, day, time.Duration(duration)*time.Minute, strings.TrimSpace(q.Master), 0)
	if err != nil {
		return nil, err
	}
	return &SlotsResponse{Date: day.Format("2006-01-02"), Slots: slots}, nil
}

// Reschedule moves the client's own booking to a free slot with one
// conditional update.
func (s *Service) Reschedule(ctx context.Context, clientID, bookingID int64, req RescheduleRequest) (*domain.Booking, error) {
	b, err := s.owned(ctx, clientID, bookingID)
	if err != nil {
		return nil, err
	}

	day, err := domain.ParseDay(req.Date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	start, err := domain.ParseBookingTime(req.Date+"T"+strings.TrimSpace(req.Time), s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}

	free, err := s.freeStarts(ctx, day, b.End().Sub(b.Datetime), b.Master, b.ID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(free, start.In(s.loc).Format("15:04")) {
		return nil, ErrSlotUnavailable
	}

	capacity, err := s.capacity(ctx, b.Master)
	if err != nil {
		return nil, err
	}

	// the slot is re-checked inside the write so a concurrent booking
	// cannot take it between the check above and the update
	expected := b.Version
	b.Datetime = start
	if err := s.bookings.UpdateInSlot(ctx, b, expected, capacity); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, ErrConcurrentChange
		case errors.Is(err, domain.ErrSlotTaken):
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	if s.reminders != nil {
		if err := s.reminders.Schedule(ctx, b); err != nil {
			zap.L().Warn("schedule reminder failed", zap.Int64("booking_id", b.ID), zap.Error(err))
		}
	}
	s.notify(ctx, notify.BookingRescheduled(b, s.loc))
	return b, nil
}

func (s *Service) Cancel(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error) {
	b, err := s.owned(ctx, clientID, bookingID)
	if err != nil {
		return nil, err
	}

	expected := b.Version
	now := s.now()
	b.Status = domain.BookingCancelled
	b.CancelledAt = &now
	if err := s.bookings.Update(ctx, b, expected); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrConcurrentChange
		}
		return nil, err
	}

	s.notify(ctx, notify.BookingCancelled(b, s.loc))
	return b, nil
}

func (s *Service) owned(ctx context.Context, clientID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID == nil || *b.ClientID != clientID {
		return nil, ErrNotOwner
	}
	if b.Status.Terminal() {
		return nil, ErrNotReschedulable
	}
	return b, nil
}

// capacity is how many bookings may overlap: one per named master,
// otherwise one per active employee.
func (s *Service) capacity(ctx context.Context, master string) (int, error) {
	if master != "" {
		return 1, nil
	}
	n, err := s.staff.CountActiveByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return 0, err
	}
	if n > 1 {
		return int(n), nil
	}
	return 1, nil
}

func (s *Service) freeStarts(ctx context.Context, day time.Time, duration time.Duration, master string, excludeID int64) ([]string, error) {
	capacity, err := s.capacity(ctx, master)
	if err != nil {
		return nil, err
	}

	busy, err := s.bookings.ListActiveBetween(ctx, day, day.AddDate(0, 0, 1), master)
	if err != nil {
		return nil, err
	}

	return calendar.FreeStarts(calendar.Availability{
		Hours:     s.hours,
		Day:       day,
		Location:  s.loc,
		Duration:  duration,
		Now:       s.now(),
		Capacity:  capacity,
		Bookings:  busy,
		ExcludeID: excludeID,
	}), nil
}

func (s *Service) notify(ctx context.Context, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		zap.L().Warn("staff notification failed", zap.Error(err))
	}
}
