package booking

import (
	"context"

	"beautycrm/internal/domain"
	"beautycrm/internal/repository"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking, expectedVersion int) error
	// CreateInSlot and UpdateInSlot fail with domain.ErrSlotTaken when
	// capacity overlapping active bookings of b.Master already exist.
	CreateInSlot(ctx context.Context, b *domain.Booking, capacity int) error
	UpdateInSlot(ctx context.Context, b *domain.Booking, expectedVersion, capacity int) error
	Delete(ctx context.Context, id int64) error
}

type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
}

type ServiceCatalog interface {
	GetByKey(ctx context.Context, key string) (*domain.Service, error)
}

type ReminderScheduler interface {
	Schedule(ctx context.Context, b *domain.Booking) error
}
