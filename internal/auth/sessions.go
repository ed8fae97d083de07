// internal/auth/sessions.go
//
// Admin login sessions.
//
// Context
// -------
// Editors log in with email and password; the bcrypt hash lives in `users`.
// A successful login inserts a row in `sessions` keyed by a random 32-byte
// hex token, which the cookie carries.  Lookup rejects expired rows, and
// Logout deletes the row so a stolen cookie dies with the session.
//
// Notes
// -----
// • Wrong email and wrong password produce the same error.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12
	tokenBytes = 32

	// DefaultTTL applies when NewSessions receives zero.
	DefaultTTL = 8 * time.Hour
)

var (
	compareHash = bcrypt.CompareHashAndPassword

	// dummyHash stands in for the stored hash when the email is unknown.
	dummyHash = sync.OnceValue(func() []byte {
		h, _ := bcrypt.GenerateFromPassword([]byte("productpraat"), bcryptCost)
		return h
	})

	// ErrInvalidCredentials is returned by Login for any mismatch.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")

	// ErrNoSession is returned when a token is unknown or expired.
	ErrNoSession = errors.New("auth: session not found or expired")

	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("auth: password cannot be empty")
)

// User is an admin account.
type User struct {
	ID    string `db:"id"    json:"id"`
	Email string `db:"email" json:"email"`
}

// Session is one active login.
type Session struct {
	Token     string    `json:"-"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sessions persists logins in MySQL.
type Sessions struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessions returns a session manager over db.
func NewSessions(db *sqlx.DB, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{db: db, ttl: ttl, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

// HashPassword hashes password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(h), nil
}

// CreateUser adds an admin account.
func (s *Sessions) CreateUser(ctx context.Context, email, password string) (User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := User{ID: uuid.NewString(), Email: normEmail(email)}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, hash, s.now())
	if err != nil {
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and opens a session.
func (s *Sessions) Login(ctx context.Context, email, password string) (Session, error) {
	if password == "" {
		return Session{}, ErrInvalidCredentials
	}
	var row struct {
		User
		Hash string `db:"password_hash"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, normEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown emails pay for one comparison too.
		_ = compareHash(dummyHash(), []byte(password))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("auth: load user: %w", err)
	}
	if err := compareHash([]byte(row.Hash), []byte(password)); err != nil {
		zap.L().Info("login rejected", zap.String("email", row.Email))
		return Session{}, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	now := s.now()
	sess := Session{Token: token, User: row.User, ExpiresAt: now.Add(s.ttl)}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token, row.ID, sess.ExpiresAt, now)
	if err != nil {
		return Session{}, fmt.Errorf("auth: insert session: %w", err)
	}
	return sess, nil
}

// Lookup resolves a token to its session.
func (s *Sessions) Lookup(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	var row struct {
		User
		ExpiresAt time.Time `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT u.id, u.email, s.expires_at
		   FROM sessions s
		   JOIN users u ON u.id = s.user_id
		  WHERE s.token = ? AND s.expires_at > ?`, token, s.now())
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("auth: lookup session: %w", err)
	}
	return Session{Token: token, User: row.User, ExpiresAt: row.ExpiresAt}, nil
}

// Logout deletes the session.  Unknown tokens are not an error.
func (s *Sessions) Logout(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	return nil
}

// Purge removes expired sessions and reports how many went.
func (s *Sessions) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now())
	if err != nil {
		return 0, fmt.Errorf("auth: purge: %w", err)
	}
	return res.RowsAffected()
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
