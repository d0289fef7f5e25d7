package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"beautycrm/internal/domain"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

type staticSettings struct {
	s   *domain.BotSettings
	err error
}

func (s staticSettings) Get(context.Context) (*domain.BotSettings, error) { return s.s, s.err }

func TestTelegram_TruncatesToBotLimit(t *testing.T) {
	rec := &recordingSender{}
	tg := &Telegram{bot: rec, chatID: 10, settings: staticSettings{s: &domain.BotSettings{MaxMessageLength: 1}}}

	require.NoError(t, tg.Notify(context.Background(), strings.Repeat("я", 250)))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, int64(10), rec.sent[0].ChatID)
	assert.Equal(t, 100, len([]rune(rec.sent[0].Text)))
	assert.True(t, strings.HasSuffix(rec.sent[0].Text, "..."))
}

func TestTelegram_SettingsErrorFallsBackToDefault(t *testing.T) {
	rec := &recordingSender{}
	tg := &Telegram{bot: rec, chatID: 1, settings: staticSettings{err: errors.New("db down")}}

	require.NoError(t, tg.Notify(context.Background(), strings.Repeat("a", 600)))
	assert.Equal(t, domain.DefaultMaxMessageChars, len(rec.sent[0].Text))
}

func TestBookingCreated(t *testing.T) {
	loc := time.FixedZone("ALMT", 5*3600)
	b := &domain.Booking{
		ID:       3,
		Name:     "Aigerim",
		Phone:    "+77001112233",
		Service:  "manicure",
		Master:   "Dana",
		Datetime: time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC),
	}

	got := BookingCreated(b, loc)
	assert.Contains(t, got, "New booking #3")
	assert.Contains(t, got, "01.05.2024 10:00")
	assert.Contains(t, got, "Master: Dana")
}

func TestLog_WritesNotification(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := Log{Logger: zap.New(core)}

	require.NoError(t, n.Notify(context.Background(), "Upcoming visit: Aigerim"))

	entries := logs.FilterMessage("staff notification").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Upcoming visit: Aigerim", entries[0].ContextMap()["text"])
}
