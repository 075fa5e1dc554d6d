// internal/server/csrf.go
package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"
)

var (
	ErrTokenMissing = errors.New("CSRF token missing")
	ErrTokenInvalid = errors.New("CSRF token invalid")
)

// CSRFConfig holds configuration for CSRF protection
type CSRFConfig struct {
	Cookie string
	Header string
	Secure bool
	Expiry time.Duration
}

// DefaultCSRFConfig returns the default CSRF configuration
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		Cookie: "csrf_token",
		Header: "X-CSRF-Token",
		Secure: true,
		Expiry: 24 * time.Hour,
	}
}

// CSRF issues double-submit tokens: the cookie and the request header must
// carry the same token, and the token must have been issued by this process.
type CSRF struct {
	config CSRFConfig
	tokens sync.Map // token -> expiry time.Time
	now    func() time.Time
}

func NewCSRF(config CSRFConfig) *CSRF {
	return &CSRF{
		config: config,
		now:    time.Now,
	}
}

func (c *CSRF) generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Token returns the caller's current token, issuing a new one and setting
// its cookie when there is none.
func (c *CSRF) Token(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(c.config.Cookie); err == nil && cookie.Value != "" {
		if expiry, ok := c.tokens.Load(cookie.Value); ok && c.now().Before(expiry.(time.Time)) {
			return cookie.Value, nil
		}
	}

	token, err := c.generateToken()
	if err != nil {
		return "", err
	}
	c.tokens.Store(token, c.now().Add(c.config.Expiry))

	http.SetCookie(w, &http.Cookie{
		Name:     c.config.Cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(c.config.Expiry.Seconds()),
	})
	return token, nil
}

func (c *CSRF) validateRequest(r *http.Request) error {
	token := r.Header.Get(c.config.Header)
	if token == "" {
		return ErrTokenMissing
	}
	cookie, err := r.Cookie(c.config.Cookie)
	if err != nil || cookie.Value == "" {
		return ErrTokenMissing
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) != 1 {
		return ErrTokenInvalid
	}

	expiry, ok := c.tokens.Load(token)
	if !ok {
		return ErrTokenInvalid
	}
	if !c.now().Before(expiry.(time.Time)) {
		c.tokens.Delete(token)
		return ErrTokenInvalid
	}
	return nil
}

// Validate checks the request and answers 403 when it fails.
func (c *CSRF) Validate(w http.ResponseWriter, r *http.Request) bool {
	if err := c.validateRequest(r); err != nil {
		RespondWithError(w, http.StatusForbidden, "CSRF validation failed")
		return false
	}
	return true
}

// cleanup removes expired tokens and returns how many were dropped.
func (c *CSRF) cleanup() int {
	now := c.now()
	removed := 0
	c.tokens.Range(func(key, value any) bool {
		if !now.Before(value.(time.Time)) {
			c.tokens.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RunCleanup drops expired tokens every interval until ctx is done.
func (c *CSRF) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
