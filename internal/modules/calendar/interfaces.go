package calendar

import (
	"context"

	"beautycrm/internal/domain"
	"beautycrm/internal/repository"
)

type BookingRepository interface {
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
}
