package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/hotel-booking/internal/internaltypes"
	"github.com/stretchr/testify/require"
)

func TestMemUsers(t *testing.T) {
	ctx := context.Background()
	u := NewMemUsers()

	id, err := u.CreateUser(ctx, "admin", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	_, err = u.CreateUser(ctx, "admin", "other-pass")
	require.ErrorIs(t, err, internaltypes.ErrConflict)

	_, err = u.CreateUser(ctx, "short", "123")
	require.ErrorIs(t, err, internaltypes.ErrValidation)

	got, err := u.Authenticate(ctx, "admin", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = u.Authenticate(ctx, "admin", "wrong")
	require.True(t, IsInvalidCredentials(err))
	_, err = u.Authenticate(ctx, "nobody", "s3cret!")
	require.ErrorIs(t, err, internaltypes.ErrUnauthorized)
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions([]byte("0123456789abcdef0123456789abcdef"), []byte("abcdef0123456789abcdef0123456789"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, s.SetSession(rec, req, 42))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	var seen int64
	h := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	}))

	authed := httptest.NewRequest(http.MethodGet, "/", nil)
	authed.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), authed)
	require.Equal(t, int64(42), seen)

	anon := httptest.NewRecorder()
	h.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusFound, anon.Code)
	require.Equal(t, "/login", anon.Header().Get("Location"))
}

func TestTokens(t *testing.T) {
	tk := NewTokens([]byte("test-secret-test-secret-test-secret"), time.Hour)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tk.now = func() time.Time { return now }

	tok, exp, err := tk.Issue(7, "admin")
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), exp)

	uid, err := tk.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, int64(7), uid)

	now = now.Add(2 * time.Hour)
	_, err = tk.Verify(tok)
	require.ErrorIs(t, err, internaltypes.ErrUnauthorized)

	other := NewTokens([]byte("another-secret-another-secret-xx"), time.Hour)
	_, err = other.Verify(tok)
	require.ErrorIs(t, err, internaltypes.ErrUnauthorized)
}

func TestRequireBearer(t *testing.T) {
	tk := NewTokens([]byte("test-secret-test-secret-test-secret"), time.Hour)
	tok, _, err := tk.Issue(3, "admin")
	require.NoError(t, err)

	var failed error
	h := tk.RequireBearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		require.Equal(t, int64(3), uid)
		w.WriteHeader(http.StatusNoContent)
	}), func(w http.ResponseWriter, err error) {
		failed = err
		w.WriteHeader(http.StatusUnauthorized)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reservations", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reservations", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.ErrorIs(t, failed, internaltypes.ErrUnauthorized)
}
