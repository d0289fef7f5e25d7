package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/jwt"
)

type fakeUsers map[int64]*domain.User

func (f fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type fakePerms map[int64][]domain.UserPermission

func (f fakePerms) ListPermissions(_ context.Context, userID int64) ([]domain.UserPermission, error) {
	return f[userID], nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(tokens *jwt.Service, users UserLoader, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(tokens, users))
	handlers := append(extra, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": Role(c)})
	})
	router.GET("/protected", handlers...)
	return router
}

func doGet(router http.Handler, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	users := fakeUsers{42: {ID: 42, Role: domain.RoleManager, IsActive: true}}

	token, err := tokens.GenerateToken(42, string(domain.RoleManager), jwt.KindStaff)
	require.NoError(t, err)

	w := doGet(protectedRouter(tokens, users), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "manager")
}

func TestJWTAuth_UsesStoredRole(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	// token was issued while the user was admin; they were demoted since
	users := fakeUsers{7: {ID: 7, Role: domain.RoleEmployee, IsActive: true}}

	token, err := tokens.GenerateToken(7, string(domain.RoleAdmin), jwt.KindStaff)
	require.NoError(t, err)

	w := doGet(protectedRouter(tokens, users), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "employee")
	assert.NotContains(t, w.Body.String(), "admin")
}

func TestJWTAuth_InactiveUser(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	users := fakeUsers{5: {ID: 5, Role: domain.RoleSales, IsActive: false}}
	token, _ := tokens.GenerateToken(5, string(domain.RoleSales), jwt.KindStaff)

	w := doGet(protectedRouter(tokens, users), token)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "USER_INACTIVE")
}

func TestJWTAuth_DeletedUser(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	token, _ := tokens.GenerateToken(99, string(domain.RoleSales), jwt.KindStaff)

	w := doGet(protectedRouter(tokens, fakeUsers{}), token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)

	w := doGet(protectedRouter(tokens, fakeUsers{}), "invalid-jwt-here")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuth_ClientTokenRejected(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	users := fakeUsers{1: {ID: 1, Role: domain.RoleAdmin, IsActive: true}}
	token, _ := tokens.GenerateToken(1, "", jwt.KindClient)

	w := doGet(protectedRouter(tokens, users), token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_NoToken(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)

	w := doGet(protectedRouter(tokens, fakeUsers{}), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestJWTAuth_QueryToken(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	users := fakeUsers{3: {ID: 3, Role: domain.RoleEmployee, IsActive: true}}
	token, _ := tokens.GenerateToken(3, string(domain.RoleEmployee), jwt.KindStaff)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	protectedRouter(tokens, users).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	users := fakeUsers{
		1: {ID: 1, Role: domain.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: domain.RoleEmployee, IsActive: true},
		3: {ID: 3, Role: domain.RoleEmployee, IsActive: true},
	}
	perms := fakePerms{
		3: {{UserID: 3, Resource: string(domain.ResourceBookings), Action: string(domain.ActionEdit), Granted: true}},
	}
	router := protectedRouter(tokens, users, RequirePermission(perms, domain.ResourceBookings, domain.ActionEdit))

	tests := []struct {
		name   string
		userID int64
		want   int
	}{
		{"admin always allowed", 1, http.StatusOK},
		{"employee default denied", 2, http.StatusForbidden},
		{"employee with override", 3, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tokens.GenerateToken(tt.userID, "", jwt.KindStaff)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doGet(router, token).Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := jwt.New("secret", time.Hour)
	users := fakeUsers{
		1: {ID: 1, Role: domain.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: domain.RoleManager, IsActive: true},
	}
	router := protectedRouter(tokens, users, RequireRole(domain.RoleAdmin))

	admin, _ := tokens.GenerateToken(1, "", jwt.KindStaff)
	manager, _ := tokens.GenerateToken(2, "", jwt.KindStaff)

	assert.Equal(t, http.StatusOK, doGet(router, admin).Code)
	assert.Equal(t, http.StatusForbidden, doGet(router, manager).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(6) // burst of 1
	router := gin.New()
	router.GET("/public", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusTooManyRequests, hit())
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}
