package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"beautycrm/internal/domain"
	"beautycrm/internal/notify"
	"beautycrm/internal/repository"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type Service struct {
	bookings  BookingRepository
	clients   ClientRepository
	services  ServiceCatalog
	reminders ReminderScheduler
	notifier  notify.Notifier
	loc       *time.Location
	now       func() time.Time
}

func NewService(
	bookings BookingRepository,
	clients ClientRepository,
	services ServiceCatalog,
	reminders ReminderScheduler,
	notifier notify.Notifier,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		bookings:  bookings,
		clients:   clients,
		services:  services,
		reminders: reminders,
		notifier:  notifier,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Booking, error) {
	f := repository.BookingFilter{
		Master:   strings.TrimSpace(q.Master),
		ClientID: q.ClientID,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Status != "" {
		st := domain.BookingStatus(q.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
		}
		f.Status = st
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	var err error
	if f.From, err = s.parseBound(q.From, "from"); err != nil {
		return nil, err
	}
	if f.To, err = s.parseBound(q.To, "to"); err != nil {
		return nil, err
	}
	return s.bookings.List(ctx, f)
}

// Create registers a booking made by staff. The client is taken from
// ClientID or found/created by phone.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	status := domain.BookingPending
	if req.Status != "" {
		status = domain.BookingStatus(req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
		}
	}

	b, err := s.draft(ctx, req.Name, req.Phone, req.Service, req.Datetime)
	if err != nil {
		return nil, err
	}
	b.Master = strings.TrimSpace(req.Master)
	b.Revenue = req.Revenue
	b.Notes = req.Notes
	b.Status = status

	client, err := s.resolveClient(ctx, req.ClientID, b.Name, b.Phone)
	if err != nil {
		return nil, err
	}
	b.ClientID = &client.ID

	return s.insert(ctx, b)
}

// CreatePublic registers a request from the public booking form. Such
// bookings start as "new" until staff confirm them.
func (s *Service) CreatePublic(ctx context.Context, req PublicBookingRequest) (*domain.Booking, error) {
	b, err := s.draft(ctx, req.Name, req.Phone, req.Service, req.Datetime)
	if err != nil {
		return nil, err
	}
	if !b.Datetime.After(s.now()) {
		return nil, fmt.Errorf("%w: datetime must be in the future", ErrValidation)
	}
	b.Notes = req.Notes
	b.Status = domain.BookingNew

	client, err := s.resolveClient(ctx, nil, b.Name, b.Phone)
	if err != nil {
		return nil, err
	}
	b.ClientID = &client.ID

	return s.insert(ctx, b)
}

func (s *Service) draft(ctx context.Context, name, phone, serviceKey, datetime string) (*domain.Booking, error) {
	name = strings.TrimSpace(name)
	phone = domain.NormalizePhone(phone)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrValidation)
	}

	at, err := domain.ParseBookingTime(datetime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	svc, err := s.lookupService(ctx, serviceKey)
	if err != nil {
		return nil, err
	}

	return &domain.Booking{
		Name:            name,
		Phone:           phone,
		Service:         svc.Key,
		Datetime:        at,
		DurationMinutes: svc.DurationMinutes(),
	}, nil
}

func (s *Service) insert(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	var err error
	if holdsMaster(b) {
		err = s.bookings.CreateInSlot(ctx, b, 1)
	} else {
		err = s.bookings.Create(ctx, b)
	}
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	s.afterSchedule(ctx, b, notify.BookingCreated(b, s.loc))
	return b, nil
}

// Update applies a partial edit as one conditional write. Either every
// change is stored or none is.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBookingRequest) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != current.Version {
		return nil, ErrVersionConflict
	}

	next := *current
	if err := s.apply(ctx, &next, req); err != nil {
		return nil, err
	}

	if unchanged(current, &next) {
		return current, nil
	}

	moved := !next.Datetime.Equal(current.Datetime) ||
		next.DurationMinutes != current.DurationMinutes ||
		next.Master != current.Master
	guarded := moved || (!current.Status.Active() && next.Status.Active())
	if guarded && holdsMaster(&next) {
		err = s.bookings.UpdateInSlot(ctx, &next, current.Version, 1)
	} else {
		err = s.bookings.Update(ctx, &next, current.Version)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, ErrVersionConflict
		case errors.Is(err, domain.ErrSlotTaken):
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	switch {
	case next.Status == domain.BookingCancelled && current.Status != domain.BookingCancelled:
		s.notify(ctx, notify.BookingCancelled(&next, s.loc))
	case !next.Datetime.Equal(current.Datetime):
		s.afterSchedule(ctx, &next, notify.BookingRescheduled(&next, s.loc))
	}
	return &next, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Booking, error) {
	return s.Update(ctx, id, UpdateBookingRequest{Status: &status})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.bookings.Delete(ctx, id)
}

func (s *Service) apply(ctx context.Context, b *domain.Booking, req UpdateBookingRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		b.Name = name
	}
	if req.Phone != nil {
		phone := domain.NormalizePhone(*req.Phone)
		if phone == "" {
			return fmt.Errorf("%w: phone must not be empty", ErrValidation)
		}
		b.Phone = phone
	}
	if req.Service != nil && *req.Service != b.Service {
		svc, err := s.lookupService(ctx, *req.Service)
		if err != nil {
			return err
		}
		b.Service = svc.Key
		b.DurationMinutes = svc.DurationMinutes()
	}
	if req.Datetime != nil {
		at, err := domain.ParseBookingTime(*req.Datetime, s.loc)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		b.Datetime = at
	}
	if req.Master != nil {
		b.Master = strings.TrimSpace(*req.Master)
	}
	if req.Revenue != nil {
		if *req.Revenue < 0 {
			return fmt.Errorf("%w: revenue must not be negative", ErrValidation)
		}
		b.Revenue = *req.Revenue
	}
	if req.Notes != nil {
		b.Notes = *req.Notes
	}
	if req.Status != nil {
		next := domain.BookingStatus(*req.Status)
		if !next.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
		if !b.Status.CanTransition(next) {
			return ErrInvalidStatusTransition
		}
		if next == domain.BookingCancelled && b.Status != domain.BookingCancelled {
			now := s.now()
			b.CancelledAt = &now
		}
		b.Status = next
	}
	return nil
}

func unchanged(a, b *domain.Booking) bool {
	return a.Name == b.Name &&
		a.Phone == b.Phone &&
		a.Service == b.Service &&
		a.Datetime.Equal(b.Datetime) &&
		a.DurationMinutes == b.DurationMinutes &&
		a.Master == b.Master &&
		a.Revenue == b.Revenue &&
		a.Notes == b.Notes &&
		a.Status == b.Status
}

func (s *Service) lookupService(ctx context.Context, key string) (*domain.Service, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: service is required", ErrValidation)
	}
	svc, err := s.services.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnknownService
		}
		return nil, err
	}
	return svc, nil
}

// holdsMaster reports whether b claims a master's time. Bookings without a
// master are not checked for overlaps.
func holdsMaster(b *domain.Booking) bool {
	return b.Master != "" && b.Status.Active()
}

func (s *Service) resolveClient(ctx context.Context, clientID *int64, name, phone string) (*domain.Client, error) {
	if clientID != nil {
		c, err := s.clients.GetByID(ctx, *clientID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return c, err
	}

	c, err := s.clients.GetByPhone(ctx, phone)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	c = &domain.Client{DisplayName: name, Phone: &phone}
	if err := s.clients.Create(ctx, c); err != nil {
		// created concurrently by another request
		if errors.Is(err, domain.ErrDuplicate) {
			return s.clients.GetByPhone(ctx, phone)
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) parseBound(v, field string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := domain.ParseDay(v, s.loc)
	if err != nil {
		t, err = domain.ParseBookingTime(v, s.loc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", ErrValidation, field)
	}
	return &t, nil
}

func (s *Service) afterSchedule(ctx context.Context, b *domain.Booking, text string) {
	if s.reminders != nil {
		if err := s.reminders.Schedule(ctx, b); err != nil {
			zap.L().Warn("schedule reminder failed", zap.Int64("booking_id", b.ID), zap.Error(err))
		}
	}
	s.notify(ctx, text)
}

func (s *Service) notify(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, text); err != nil {
		zap.L().Warn("staff notification failed", zap.Error(err))
	}
}
