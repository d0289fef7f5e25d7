package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"beautycrm/internal/domain"
)

type BookingFilter struct {
	Status   domain.BookingStatus
	Master   string
	ClientID *int64
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return createBooking(r.db.WithContext(ctx), b)
}

// CreateInSlot inserts b unless capacity active bookings of b.Master (all
// masters when empty) already overlap it. The check and the insert run in
// one transaction serialized per master.
func (r *BookingRepository) CreateInSlot(ctx context.Context, b *domain.Booking, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRoom(tx, b, capacity); err != nil {
			return err
		}
		return createBooking(tx, b)
	})
}

// UpdateInSlot is Update with the same overlap guard as CreateInSlot.
func (r *BookingRepository) UpdateInSlot(ctx context.Context, b *domain.Booking, expectedVersion, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRoom(tx, b, capacity); err != nil {
			return err
		}
		return updateBooking(tx, b, expectedVersion)
	})
}

func createBooking(db *gorm.DB, b *domain.Booking) error {
	b.Datetime = b.Datetime.UTC()
	if b.Version == 0 {
		b.Version = 1
	}
	return translate(db.Create(b).Error)
}

// lockSlot serializes slot checks for one master until the transaction ends.
// SQLite runs on a single connection, so its transactions are exclusive already.
func lockSlot(tx *gorm.DB, master string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "booking-slot:"+master).Error
}

func ensureRoom(tx *gorm.DB, b *domain.Booking, capacity int) error {
	if capacity < 1 {
		capacity = 1
	}
	if err := lockSlot(tx, b.Master); err != nil {
		return err
	}
	busy, err := listActiveBetween(tx, b.Datetime, b.End(), b.Master)
	if err != nil {
		return err
	}
	taken := 0
	for _, other := range busy {
		if other.ID != b.ID {
			taken++
		}
	}
	if taken >= capacity {
		return domain.ErrSlotTaken
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Master != "" {
		q = q.Where("master = ?", f.Master)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.From != nil {
		q = q.Where("datetime >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("datetime < ?", f.To.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []domain.Booking
	if err := q.Order("datetime ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveBetween returns non-cancelled bookings that start before end and
// could still be running at start. Callers refine the overlap with
// Booking.Overlaps since durations vary.
func (r *BookingRepository) ListActiveBetween(ctx context.Context, start, end time.Time, master string) ([]domain.Booking, error) {
	return listActiveBetween(r.db.WithContext(ctx), start, end, master)
}

func listActiveBetween(db *gorm.DB, start, end time.Time, master string) ([]domain.Booking, error) {
	// longest service in a salon day is bounded by the day itself
	lookback := start.Add(-24 * time.Hour)

	q := db.
		Where("status <> ?", domain.BookingCancelled).
		Where("datetime >= ? AND datetime < ?", lookback.UTC(), end.UTC())
	if master != "" {
		q = q.Where("master = ?", master)
	}

	var out []domain.Booking
	if err := q.Order("datetime ASC").Find(&out).Error; err != nil {
		return nil, err
	}

	filtered := out[:0]
	for _, b := range out {
		if b.Overlaps(start, end) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Update writes every mutable column of b, but only if the stored version is
// still expectedVersion. On success b.Version is advanced.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking, expectedVersion int) error {
	return updateBooking(r.db.WithContext(ctx), b, expectedVersion)
}

func updateBooking(db *gorm.DB, b *domain.Booking, expectedVersion int) error {
	now := time.Now()
	tx := db.
		Model(&domain.Booking{}).
		Where("id = ? AND version = ?", b.ID, expectedVersion).
		Updates(map[string]any{
			"client_id":        b.ClientID,
			"service":          b.Service,
			"datetime":         b.Datetime.UTC(),
			"duration_minutes": b.DurationMinutes,
			"phone":            b.Phone,
			"name":             b.Name,
			"status":           b.Status,
			"revenue":          b.Revenue,
			"master":           b.Master,
			"notes":            b.Notes,
			"cancelled_at":     b.CancelledAt,
			"version":          expectedVersion + 1,
			"updated_at":       now,
		})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return missingOrConflict(db, b.ID)
	}

	b.Version = expectedVersion + 1
	b.UpdatedAt = now
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Booking{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func missingOrConflict(db *gorm.DB, id int64) error {
	var cnt int64
	if err := db.Model(&domain.Booking{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}
