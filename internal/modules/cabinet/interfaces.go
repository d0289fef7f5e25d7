package cabinet

import (
	"context"
	"time"

	"beautycrm/internal/domain"
	"beautycrm/internal/repository"
)

type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
}

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	ListActiveBetween(ctx context.Context, start, end time.Time, master string) ([]domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking, expectedVersion int) error
	UpdateInSlot(ctx context.Context, b *domain.Booking, expectedVersion, capacity int) error
}

type ServiceCatalog interface {
	GetByKey(ctx context.Context, key string) (*domain.Service, error)
}

type StaffCounter interface {
	CountActiveByRole(ctx context.Context, role domain.UserRole) (int64, error)
}

type ReminderScheduler interface {
	Schedule(ctx context.Context, b *domain.Booking) error
}

type tokenIssuer interface {
	GenerateToken(userID int64, role, kind string) (string, error)
}
