// Package salonclient is a Go client for the salon CRM REST API. Besides
// typed calls it carries the interactive flows of the dashboards and the
// client cabinet: RescheduleFlow and ChatPoller.
package salonclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// APIError is a non-success envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("salon api: http %d", e.Status)
	}
	return fmt.Sprintf("salon api: %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsConflict reports a 409, e.g. a taken slot or a stale booking version.
func (e *APIError) IsConflict() bool { return e.Status == http.StatusConflict }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

/* ---------- STAFF ---------- */

type Session struct {
	Token       string                     `json:"token"`
	ExpiresIn   int64                      `json:"expires_in"`
	User        User                       `json:"user"`
	Dashboard   string                     `json:"dashboard"`
	Permissions map[string]map[string]bool `json:"permissions"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Position string `json:"position,omitempty"`
}

// Can reports whether the session holds resource.action.
func (s *Session) Can(resource, action string) bool {
	return s.Permissions[resource][action]
}

// Login authenticates a staff member and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"username": username, "password": password}, &s)
	if err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// Refresh re-issues the staff token. The server reloads the user, so a
// changed role or deactivation shows up here.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, nil, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

type Booking struct {
	ID              int64     `json:"id"`
	ClientID        *int64    `json:"client_id,omitempty"`
	Service         string    `json:"service"`
	Datetime        time.Time `json:"datetime"`
	DurationMinutes int       `json:"duration_minutes"`
	Phone           string    `json:"phone"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	Revenue         float64   `json:"revenue"`
	Master          string    `json:"master,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Version         int       `json:"version"`
}

// BookingPatch is a partial booking update. Version, when set, makes the
// update fail with a 409 if someone else changed the booking first.
type BookingPatch struct {
	Name     *string  `json:"name,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Service  *string  `json:"service,omitempty"`
	Datetime *string  `json:"datetime,omitempty"`
	Master   *string  `json:"master,omitempty"`
	Revenue  *float64 `json:"revenue,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Version  *int     `json:"version,omitempty"`
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, patch BookingPatch) (*Booking, error) {
	var out struct {
		Booking Booking `json:"booking"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/bookings/"+strconv.FormatInt(id, 10), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}

/* ---------- INTERNAL CHAT ---------- */

type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID *int64    `json:"recipient_id,omitempty"`
	IsGroup     bool      `json:"is_group"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type ChatUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Position string `json:"position,omitempty"`
	Unread   int64  `json:"unread"`
	Online   bool   `json:"online"`
}

// Thread selects a conversation: the group chat or a direct one with With.
type Thread struct {
	With  int64
	Group bool
}

func (c *Client) ChatMessages(ctx context.Context, th Thread, sinceID int64) ([]Message, error) {
	q := url.Values{}
	if th.Group {
		q.Set("group", "true")
	} else {
		q.Set("with", strconv.FormatInt(th.With, 10))
	}
	if sinceID > 0 {
		q.Set("since_id", strconv.FormatInt(sinceID, 10))
	}
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/internal-chat/messages", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) ChatUsers(ctx context.Context) ([]ChatUser, error) {
	var out struct {
		Users []ChatUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/internal-chat/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) SendMessage(ctx context.Context, th Thread, text string) (*Message, error) {
	body := map[string]any{"message": text, "is_group": th.Group}
	if !th.Group {
		body["recipient_id"] = th.With
	}
	var out struct {
		Message Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/internal-chat/send", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

func (c *Client) MarkRead(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPost, "/api/internal-chat/read/"+strconv.FormatInt(userID, 10), nil, nil, nil)
}

/* ---------- CLIENT CABINET ---------- */

// ClientLogin signs a salon client into the cabinet and keeps the token.
func (c *Client) ClientLogin(ctx context.Context, phone, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/public/client/login", nil,
		map[string]string{"phone": phone, "password": password}, &out)
	if err != nil {
		return err
	}
	c.SetToken(out.Token)
	return nil
}

func (c *Client) MyBookings(ctx context.Context) ([]Booking, error) {
	var out struct {
		Bookings []Booking `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodGet, "/public/client/bookings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

// AvailableSlots lists free HH:MM start times on date (YYYY-MM-DD).
func (c *Client) AvailableSlots(ctx context.Context, date, service, master string) ([]string, error) {
	q := url.Values{"date": {date}}
	if service != "" {
		q.Set("service", service)
	}
	if master != "" {
		q.Set("master", master)
	}
	var out struct {
		Slots []string `json:"slots"`
	}
	if err := c.do(ctx, http.MethodGet, "/public/client/available-slots", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

func (c *Client) Reschedule(ctx context.Context, bookingID int64, date, hhmm string) (*Booking, error) {
	var out struct {
		Booking Booking `json:"booking"`
	}
	path := "/public/client/bookings/" + strconv.FormatInt(bookingID, 10) + "/reschedule"
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"date": date, "time": hhmm}, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID int64) (*Booking, error) {
	var out struct {
		Booking Booking `json:"booking"`
	}
	path := "/public/client/bookings/" + strconv.FormatInt(bookingID, 10) + "/cancel"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}
