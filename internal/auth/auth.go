package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/hotel-booking/internal/db"
	"github.com/example/hotel-booking/internal/internaltypes"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", internaltypes.ErrUnauthorized)

// Users authenticates admin users.
type Users interface {
	CreateUser(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

func checkNewUser(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return internaltypes.Invalid("username", "is required")
	}
	if len(password) < 6 {
		return internaltypes.Invalid("password", "must be at least 6")
	}
	return nil
}

// UserStore keeps users in Postgres.
type UserStore struct {
	db *db.DB
}

func NewUserStore(d *db.DB) *UserStore { return &UserStore{db: d} }

func (s *UserStore) CreateUser(ctx context.Context, username, password string) (int64, error) {
	if err := checkNewUser(username, password); err != nil {
		return 0, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRow(ctx, `INSERT INTO users(username, password_bcrypt) VALUES ($1,$2) RETURNING id`, username, hash).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: user %q", internaltypes.ErrConflict, username)
	}
	return id, db.WrapNotFound(err)
}

func (s *UserStore) Authenticate(ctx context.Context, username, password string) (int64, error) {
	var id int64
	var hash string
	err := s.db.QueryRow(ctx, `SELECT id, password_bcrypt FROM users WHERE username=$1`, username).Scan(&id, &hash)
	if err != nil {
		if db.IsNotFound(err) {
			return 0, ErrInvalidCredentials
		}
		return 0, db.WrapNotFound(err)
	}
	if !CheckPassword(hash, password) {
		return 0, ErrInvalidCredentials
	}
	return id, nil
}

// MemUsers keeps users in memory for `server --store=memory`.
type MemUsers struct {
	mu     sync.Mutex
	byName map[string]memUser
	lastID int64
}

type memUser struct {
	id   int64
	hash string
}

func NewMemUsers() *MemUsers { return &MemUsers{byName: map[string]memUser{}} }

func (m *MemUsers) CreateUser(ctx context.Context, username, password string) (int64, error) {
	if err := checkNewUser(username, password); err != nil {
		return 0, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[username]; ok {
		return 0, fmt.Errorf("%w: user %q", internaltypes.ErrConflict, username)
	}
	m.lastID++
	m.byName[username] = memUser{id: m.lastID, hash: hash}
	return m.lastID, nil
}

func (m *MemUsers) Authenticate(ctx context.Context, username, password string) (int64, error) {
	m.mu.Lock()
	u, ok := m.byName[username]
	m.mu.Unlock()
	if !ok || !CheckPassword(u.hash, password) {
		return 0, ErrInvalidCredentials
	}
	return u.id, nil
}

type ctxKey string

const userIDKey ctxKey = "userID"

func WithUserID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}

// Sessions stores the signed-in user in an encrypted cookie.
type Sessions struct {
	sc *securecookie.SecureCookie
}

const (
	cookieName = "hoteld_session"
	sessionTTL = 14 * 24 * time.Hour
)

func NewSessions(hashKey, blockKey []byte) *Sessions {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &Sessions{sc: sc}
}

type Session struct {
	UserID int64
}

func (s *Sessions) SetSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	val := map[string]int64{"uid": userID, "v": 1}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

func (s *Sessions) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Sessions) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]int64{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	uid := val["uid"]
	if uid <= 0 {
		return Session{}, false
	}
	return Session{UserID: uid}, true
}

// RequireAuth redirects to /login when there is no valid session cookie.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sess.UserID)))
	})
}

// IsInvalidCredentials reports a failed login.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
