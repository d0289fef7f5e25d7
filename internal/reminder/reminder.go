package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"beautycrm/internal/domain"
	"beautycrm/internal/notify"
)

const TypeBookingReminder = "booking:reminder"

// Payload names the booking and the visit time the reminder was planned for.
type Payload struct {
	BookingID int64 `json:"booking_id"`
	VisitAt   int64 `json:"visit_at"`
}

// NewTask builds the reminder task. The task id embeds the visit time so a
// reschedule enqueues a fresh reminder and the old one becomes a no-op, while
// edits that keep the time leave the queued reminder in force.
func NewTask(p Payload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("booking-reminder-%d-%d", p.BookingID, p.VisitAt)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Scheduler struct {
	client enqueuer
	lead   time.Duration
	now    func() time.Time
}

func NewScheduler(client enqueuer, lead time.Duration) *Scheduler {
	return &Scheduler{client: client, lead: lead, now: time.Now}
}

// Schedule enqueues a reminder lead before the visit. Inactive bookings and
// visits closer than lead are skipped.
func (s *Scheduler) Schedule(ctx context.Context, b *domain.Booking) error {
	if !b.Status.Active() || b.Status.Terminal() {
		return nil
	}
	fireAt := b.Datetime.Add(-s.lead)
	if !fireAt.After(s.now()) {
		return nil
	}

	task, opts, err := NewTask(Payload{BookingID: b.ID, VisitAt: b.Datetime.Unix()}, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}

type NoopScheduler struct{}

func (NoopScheduler) Schedule(context.Context, *domain.Booking) error { return nil }

type BookingGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// Handler processes reminder tasks in cmd/worker.
type Handler struct {
	bookings BookingGetter
	notifier notify.Notifier
	loc      *time.Location
}

func NewHandler(bookings BookingGetter, notifier notify.Notifier, loc *time.Location) *Handler {
	return &Handler{bookings: bookings, notifier: notifier, loc: loc}
}

func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	b, err := h.bookings.GetByID(ctx, p.BookingID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if b.Datetime.Unix() != p.VisitAt || b.Status.Terminal() {
		zap.L().Debug("stale reminder skipped",
			zap.Int64("booking_id", b.ID),
			zap.Int64("task_visit_at", p.VisitAt),
			zap.Time("booking_datetime", b.Datetime),
			zap.String("status", string(b.Status)),
		)
		return nil
	}

	return h.notifier.Notify(ctx, notify.BookingReminder(b, h.loc))
}
