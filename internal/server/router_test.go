package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"beautycrm/internal/config"
	"beautycrm/internal/database"
	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/password"
	"beautycrm/internal/reminder"
	"beautycrm/internal/repository"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type suite struct {
	t   *testing.T
	srv *Server
	db  *gorm.DB
}

func setup(t *testing.T) *suite {
	t.Helper()
	return setupWith(t, nil)
}

func setupWith(t *testing.T, adjust func(*Infra)) *suite {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlxDB, err := database.SQLX(db, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlxDB.Close() })

	cfg := &config.Config{
		AppEnv:           "test",
		JWTSecret:        "test_secret_key_32_characters_min",
		JWTTTL:           time.Hour,
		SalonOpen:        "09:00",
		SalonClose:       "21:00",
		SlotStep:         30 * time.Minute,
		PublicRatePerMin: 600,
	}
	infra := Infra{DB: db, SQLX: sqlxDB}
	if adjust != nil {
		adjust(&infra)
	}
	srv, err := New(cfg, infra)
	require.NoError(t, err)
	return &suite{t: t, srv: srv, db: db}
}

func (s *suite) staff(username string, role domain.UserRole) (int64, string) {
	s.t.Helper()
	hash, err := password.Hash("secret123")
	require.NoError(s.t, err)
	u := &domain.User{Username: username, FullName: username, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(s.t, s.db.Create(u).Error)

	var out struct {
		Token     string `json:"token"`
		Dashboard string `json:"dashboard"`
	}
	s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "secret123"}, http.StatusOK, &out)
	assert.Equal(s.t, domain.DashboardPath(role), out.Dashboard)
	return u.ID, out.Token
}

func (s *suite) do(method, path, token string, body any, wantStatus int, out any) *envelope {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.srv.Engine.ServeHTTP(w, req)

	require.Equal(s.t, wantStatus, w.Code, "%s %s: %s", method, path, w.Body.String())
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
	return &env
}

type bookingOut struct {
	Booking domain.Booking `json:"booking"`
}

func (s *suite) createService(token string) {
	s.do(http.MethodPost, "/api/services", token, map[string]any{
		"key": "manicure", "name": "Manicure", "price": 8000, "duration": 60,
	}, http.StatusCreated, nil)
}

func futureDay(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestRouter_Health(t *testing.T) {
	s := setup(t)
	w := httptest.NewRecorder()
	s.srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_BookingEditIsAtomic(t *testing.T) {
	s := setup(t)
	_, admin := s.staff("admin", domain.RoleAdmin)
	s.createService(admin)

	var created bookingOut
	s.do(http.MethodPost, "/api/bookings", admin, map[string]any{
		"name": "Aigerim", "phone": "+77001112233", "service": "manicure",
		"datetime": futureDay(2) + "T10:00", "master": "Dana",
	}, http.StatusCreated, &created)
	require.Equal(t, 1, created.Booking.Version)
	id := created.Booking.ID

	var patched bookingOut
	s.do(http.MethodPatch, fmt.Sprintf("/api/bookings/%d", id), admin, map[string]any{
		"datetime": futureDay(2) + "T12:30", "version": 1,
	}, http.StatusOK, &patched)
	assert.Equal(t, 2, patched.Booking.Version)
	assert.Equal(t, 12, patched.Booking.Datetime.UTC().Hour())
	assert.NotEqual(t, domain.BookingCancelled, patched.Booking.Status)

	env := s.do(http.MethodPatch, fmt.Sprintf("/api/bookings/%d", id), admin, map[string]any{
		"notes": "stale edit", "version": 1,
	}, http.StatusConflict, nil)
	assert.Equal(t, "VERSION_CONFLICT", env.Error.Code)

	var list struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	s.do(http.MethodGet, "/api/bookings", admin, nil, http.StatusOK, &list)
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, id, list.Bookings[0].ID)

	var day struct {
		Slots []struct {
			Time     string           `json:"time"`
			Bookings []domain.Booking `json:"bookings"`
		} `json:"slots"`
	}
	s.do(http.MethodGet, "/api/calendar/day?date="+futureDay(2), admin, nil, http.StatusOK, &day)
	for _, slot := range day.Slots {
		if slot.Time == "12:30" {
			assert.Len(t, slot.Bookings, 1)
		} else {
			assert.Empty(t, slot.Bookings, slot.Time)
		}
	}
}

func TestRouter_PermissionDispatch(t *testing.T) {
	s := setup(t)
	_, admin := s.staff("admin", domain.RoleAdmin)
	employeeID, employee := s.staff("emp", domain.RoleEmployee)
	_, sales := s.staff("sales", domain.RoleSales)
	s.createService(admin)

	body := map[string]any{
		"name": "Client", "phone": "+77005556677", "service": "manicure",
		"datetime": futureDay(3) + "T11:00",
	}
	env := s.do(http.MethodPost, "/api/bookings", employee, body, http.StatusForbidden, nil)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	s.do(http.MethodPut, fmt.Sprintf("/api/users/%d/permissions/bookings/create", employeeID), admin,
		map[string]any{"granted": true}, http.StatusOK, nil)

	var created bookingOut
	s.do(http.MethodPost, "/api/bookings", employee, body, http.StatusCreated, &created)

	s.do(http.MethodDelete, fmt.Sprintf("/api/bookings/%d", created.Booking.ID), sales, nil, http.StatusForbidden, nil)
	s.do(http.MethodDelete, fmt.Sprintf("/api/bookings/%d", created.Booking.ID), admin, nil, http.StatusOK, nil)

	s.do(http.MethodGet, "/api/analytics/funnel", sales, nil, http.StatusForbidden, nil)
	s.do(http.MethodGet, "/api/analytics/funnel", admin, nil, http.StatusOK, nil)
}

func TestRouter_DeactivatedUserIsRejected(t *testing.T) {
	s := setup(t)
	_, admin := s.staff("admin", domain.RoleAdmin)
	managerID, manager := s.staff("manager", domain.RoleManager)

	s.do(http.MethodGet, "/api/auth/me", manager, nil, http.StatusOK, nil)
	s.do(http.MethodPut, fmt.Sprintf("/api/users/%d", managerID), admin, map[string]any{"is_active": false}, http.StatusOK, nil)

	env := s.do(http.MethodGet, "/api/auth/me", manager, nil, http.StatusForbidden, nil)
	assert.Equal(t, "USER_INACTIVE", env.Error.Code)
}

func TestRouter_SpecialPackageDiscountIsDerived(t *testing.T) {
	s := setup(t)
	_, marketer := s.staff("marketer", domain.RoleMarketer)

	var out struct {
		Package domain.SpecialPackage `json:"package"`
	}
	s.do(http.MethodPost, "/api/special-packages", marketer, map[string]any{
		"name": "Spring", "original_price": 20000, "special_price": 15000, "discount_percent": 90,
	}, http.StatusCreated, &out)
	assert.Equal(t, 25, out.Package.DiscountPercent)

	s.do(http.MethodPost, "/api/special-packages", marketer, map[string]any{
		"name": "Broken", "original_price": 10000, "special_price": 12000,
	}, http.StatusBadRequest, nil)

	var public struct {
		Packages []domain.SpecialPackage `json:"packages"`
	}
	s.do(http.MethodGet, "/public/special-packages", "", nil, http.StatusOK, &public)
	require.Len(t, public.Packages, 1)
}

func TestRouter_CabinetReschedule(t *testing.T) {
	s := setup(t)
	_, admin := s.staff("admin", domain.RoleAdmin)
	s.createService(admin)

	var session struct {
		Token string `json:"token"`
	}
	s.do(http.MethodPost, "/public/client/register", "", map[string]string{
		"name": "Madina", "phone": "+7 700 111 22 33", "password": "secret1",
	}, http.StatusCreated, &session)
	require.NotEmpty(t, session.Token)

	var created bookingOut
	s.do(http.MethodPost, "/api/bookings", admin, map[string]any{
		"name": "Madina", "phone": "+77001112233", "service": "manicure",
		"datetime": futureDay(4) + "T10:00",
	}, http.StatusCreated, &created)
	require.NotNil(t, created.Booking.ClientID)

	s.do(http.MethodGet, "/api/auth/me", session.Token, nil, http.StatusUnauthorized, nil)

	var slots struct {
		Slots []string `json:"slots"`
	}
	s.do(http.MethodGet, "/public/client/available-slots?service=manicure&date="+futureDay(4), session.Token, nil, http.StatusOK, &slots)
	assert.NotContains(t, slots.Slots, "10:00")
	assert.Contains(t, slots.Slots, "15:00")

	var moved bookingOut
	s.do(http.MethodPost, fmt.Sprintf("/public/client/bookings/%d/reschedule", created.Booking.ID), session.Token,
		map[string]string{"date": futureDay(4), "time": "15:00"}, http.StatusOK, &moved)
	assert.Equal(t, 15, moved.Booking.Datetime.UTC().Hour())
	assert.Equal(t, 2, moved.Booking.Version)

	var mine struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	s.do(http.MethodGet, "/public/client/bookings", session.Token, nil, http.StatusOK, &mine)
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, moved.Booking.Datetime.UTC(), mine.Bookings[0].Datetime.UTC())
}

func TestRouter_InternalChatPolling(t *testing.T) {
	s := setup(t)
	adminID, admin := s.staff("admin", domain.RoleAdmin)
	salesID, sales := s.staff("sales", domain.RoleSales)

	var first struct {
		Message domain.InternalMessage `json:"message"`
	}
	s.do(http.MethodPost, "/api/internal-chat/send", admin, map[string]any{"recipient_id": salesID, "message": "hi"}, http.StatusCreated, &first)
	s.do(http.MethodPost, "/api/internal-chat/send", sales, map[string]any{"recipient_id": adminID, "message": "hello"}, http.StatusCreated, nil)
	s.do(http.MethodPost, "/api/internal-chat/send", sales, map[string]any{"is_group": true, "message": "team"}, http.StatusCreated, nil)

	var thread struct {
		Messages []domain.InternalMessage `json:"messages"`
	}
	s.do(http.MethodGet, fmt.Sprintf("/api/internal-chat/messages?with=%d&since_id=%d", salesID, first.Message.ID), admin, nil, http.StatusOK, &thread)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, "hello", thread.Messages[0].Message)

	var users struct {
		Users []struct {
			ID     int64 `json:"id"`
			Unread int64 `json:"unread"`
		} `json:"users"`
	}
	s.do(http.MethodGet, "/api/internal-chat/users", admin, nil, http.StatusOK, &users)
	require.Len(t, users.Users, 1)
	assert.Equal(t, int64(1), users.Users[0].Unread)

	s.do(http.MethodPost, fmt.Sprintf("/api/internal-chat/read/%d", salesID), admin, nil, http.StatusOK, nil)
	s.do(http.MethodGet, "/api/internal-chat/users", admin, nil, http.StatusOK, &users)
	assert.Zero(t, users.Users[0].Unread)
}

func TestRouter_BotSettingsLegacyLimit(t *testing.T) {
	s := setup(t)
	_, marketer := s.staff("marketer", domain.RoleMarketer)

	var out struct {
		Settings domain.BotSettings `json:"settings"`
	}
	s.do(http.MethodGet, "/api/bot-settings", marketer, nil, http.StatusOK, &out)
	assert.Equal(t, domain.DefaultMaxMessageChars, out.Settings.MaxMessageChars)

	s.do(http.MethodPut, "/api/bot-settings", marketer, map[string]any{"max_message_length": 3}, http.StatusOK, &out)
	assert.Equal(t, 300, out.Settings.MaxMessageChars)
}

type queuedTasks struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (q *queuedTasks) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type sentMessages struct {
	mu   sync.Mutex
	sent []string
}

func (n *sentMessages) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, text)
	return nil
}

func TestRouter_ReminderSurvivesEditsKeepingTime(t *testing.T) {
	queue := &queuedTasks{}
	s := setupWith(t, func(in *Infra) {
		in.Reminders = reminder.NewScheduler(queue, 2*time.Hour)
	})
	_, admin := s.staff("admin", domain.RoleAdmin)
	s.createService(admin)

	var created bookingOut
	s.do(http.MethodPost, "/api/bookings", admin, map[string]any{
		"name": "Aigerim", "phone": "+77001112233", "service": "manicure",
		"datetime": futureDay(2) + "T10:00",
	}, http.StatusCreated, &created)
	id := created.Booking.ID

	s.do(http.MethodPut, fmt.Sprintf("/api/bookings/%d/status", id), admin,
		map[string]string{"status": "confirmed"}, http.StatusOK, nil)
	s.do(http.MethodPatch, fmt.Sprintf("/api/bookings/%d", id), admin,
		map[string]any{"notes": "prefers nude polish", "revenue": 8000}, http.StatusOK, nil)

	delivered := &sentMessages{}
	worker := reminder.NewHandler(repository.NewBookingRepository(s.db), delivered, time.UTC)
	require.NotEmpty(t, queue.tasks)
	for _, task := range queue.tasks {
		require.NoError(t, worker.ProcessTask(context.Background(), task))
	}
	assert.Len(t, delivered.sent, 1)
}

func TestRouter_MovedBookingRemindsOnlyForNewTime(t *testing.T) {
	queue := &queuedTasks{}
	s := setupWith(t, func(in *Infra) {
		in.Reminders = reminder.NewScheduler(queue, 2*time.Hour)
	})
	_, admin := s.staff("admin", domain.RoleAdmin)
	s.createService(admin)

	var created bookingOut
	s.do(http.MethodPost, "/api/bookings", admin, map[string]any{
		"name": "Aigerim", "phone": "+77001112233", "service": "manicure",
		"datetime": futureDay(2) + "T10:00",
	}, http.StatusCreated, &created)
	s.do(http.MethodPatch, fmt.Sprintf("/api/bookings/%d", created.Booking.ID), admin,
		map[string]any{"datetime": futureDay(3) + "T11:00"}, http.StatusOK, nil)

	delivered := &sentMessages{}
	worker := reminder.NewHandler(repository.NewBookingRepository(s.db), delivered, time.UTC)
	require.Len(t, queue.tasks, 2)
	for _, task := range queue.tasks {
		require.NoError(t, worker.ProcessTask(context.Background(), task))
	}
	assert.Len(t, delivered.sent, 1)
}
