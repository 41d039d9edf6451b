package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordpath/wordpath-api/internal/api/middleware"
	"github.com/wordpath/wordpath-api/internal/auth"
	"github.com/wordpath/wordpath-api/internal/config"
	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/store"
)

type fakeUserStore struct {
	byEmail map[string]*domain.User
	byID    map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: map[string]*domain.User{},
		byID:    map[uuid.UUID]*domain.User{},
	}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return store.ErrEmailExists
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func newTestAuthHandler(t *testing.T) (*AuthHandler, *middleware.AuthMiddleware) {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	svc := auth.NewService(newFakeUserStore(), jwtService, auth.NewBcryptHasher(4), slog.Default())
	return NewAuthHandler(svc), middleware.NewAuthMiddleware(jwtService)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAuthHandler(t)

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "strong password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&registered))
	assert.NotEmpty(t, registered.Token)

	rec = postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Email:    "learner@example.com",
		Password: "strong password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var logged AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logged))
	assert.Equal(t, registered.UserID, logged.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAuthHandler(t)

	req := RegisterRequest{Email: "learner@example.com", Password: "strong password"}
	rec := postJSON(t, handler.Register, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Register, "/api/auth/register", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAuthHandler(t)

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "not-an-email",
		Password: "strong password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAuthHandler(t)

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "strong password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Email:    "learner@example.com",
		Password: "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsIssuedToken(t *testing.T) {
	t.Parallel()

	handler, authMW := newTestAuthHandler(t)

	rec := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "learner@example.com",
		Password: "strong password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&registered))

	var gotUserID uuid.UUID
	protected := authMW.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetUserID(r)
		require.True(t, ok)
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	out := httptest.NewRecorder()
	protected.ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, registered.UserID, gotUserID)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Parallel()

	_, authMW := newTestAuthHandler(t)

	protected := authMW.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	out := httptest.NewRecorder()
	protected.ServeHTTP(out, req)

	assert.Equal(t, http.StatusUnauthorized, out.Code)
}
