// Package auth manages the admin account and its sessions.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrUserExists         = errors.New("username already taken")
)

const (
	DefaultSessionTTL = 24 * time.Hour
	minPasswordLength = 10
)

type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has run out at now.
func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Service stores admin users and sessions in the database.
type Service struct {
	db         *sql.DB
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:         db,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
}

// HasUsers reports whether an admin account exists yet.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_users").Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser stores a new admin with a bcrypt hash of password. Usernames
// are case-insensitive and stored lowercase.
func (s *Service) CreateUser(ctx context.Context, username, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || len(username) > 64 || strings.ContainsAny(username, " \t\n") {
		return ErrInvalidUsername
	}
	if err := checkPassword(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM admin_users WHERE username = ?", username,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return ErrUserExists
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO admin_users (username, password_hash) VALUES (?, ?)",
		username, string(hash),
	)
	return err
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("%w: needs letters and digits", ErrWeakPassword)
	}
	return nil
}

// Authenticate verifies credentials and opens a new session.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	var (
		id   int64
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, password_hash FROM admin_users WHERE username = ?",
		strings.ToLower(strings.TrimSpace(username)),
	).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE admin_users SET last_login = ?, updated_at = ? WHERE id = ?",
		now, now, id,
	); err != nil {
		return nil, err
	}

	return s.createSession(ctx, id)
}

func (s *Service) createSession(ctx context.Context, userID int64) (*Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ValidateSession returns the session if it exists and has not expired.
func (s *Service) ValidateSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	var session Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at
         FROM sessions
         WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.IsExpired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *Service) InvalidateSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	return err
}

// CleanExpiredSessions deletes expired sessions and returns how many went.
func (s *Service) CleanExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", s.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
