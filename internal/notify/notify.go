package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"beautycrm/internal/domain"
)

// Notifier delivers short staff notifications.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type SettingsSource interface {
	Get(ctx context.Context) (*domain.BotSettings, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts into a staff chat. Messages are cut to the bot's
// max_message_chars setting.
type Telegram struct {
	bot      sender
	chatID   int64
	settings SettingsSource
}

func NewTelegram(token string, chatID int64, settings SettingsSource) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, settings: settings}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	limits := &domain.BotSettings{}
	if t.settings != nil {
		s, err := t.settings.Get(ctx)
		if err != nil {
			zap.L().Warn("bot settings unavailable, using default limit", zap.Error(err))
		} else {
			limits = s
		}
	}

	msg := tgbotapi.NewMessage(t.chatID, limits.Truncate(text))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

type Noop struct{}

func (Noop) Notify(context.Context, string) error { return nil }

// Log writes notifications to the logger instead of a chat. A nil Logger
// means zap.L().
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(_ context.Context, text string) error {
	lg := l.Logger
	if lg == nil {
		lg = zap.L()
	}
	lg.Info("staff notification", zap.String("text", text))
	return nil
}

// BookingCreated formats the staff message for a new booking.
func BookingCreated(b *domain.Booking, loc *time.Location) string {
	return bookingLine("New booking", b, loc)
}

func BookingRescheduled(b *domain.Booking, loc *time.Location) string {
	return bookingLine("Booking rescheduled", b, loc)
}

func BookingCancelled(b *domain.Booking, loc *time.Location) string {
	return bookingLine("Booking cancelled", b, loc)
}

func BookingReminder(b *domain.Booking, loc *time.Location) string {
	return bookingLine("Upcoming visit", b, loc)
}

func bookingLine(title string, b *domain.Booking, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s #%d\n", title, b.ID)
	fmt.Fprintf(&sb, "%s, %s\n", b.Datetime.In(loc).Format("02.01.2006 15:04"), b.Service)
	fmt.Fprintf(&sb, "%s %s", b.Name, b.Phone)
	if b.Master != "" {
		fmt.Fprintf(&sb, "\nMaster: %s", b.Master)
	}
	return sb.String()
}
