// internal/server/server.go
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"crdashboard/internal/auth"
	"crdashboard/internal/dashboard"
	"crdashboard/internal/database"
	"crdashboard/internal/settings"
)

const sessionCookie = "session"

type Config struct {
	UseHTTPS       bool
	ProductionMode bool
	// SiteURL is the public base URL used in feed links. When empty it is
	// derived from each request.
	SiteURL string
}

type Server struct {
	db        *database.DB
	logger    *log.Logger
	auth      *auth.Service
	dashboard *dashboard.Service
	settings  *settings.Store
	csrf      *CSRF
	hub       *Hub
	mcp       http.Handler
	config    Config
}

// NewServer wires the HTTP surface. mcpHandler may be nil, in which case
// /mcp is not served.
func NewServer(db *database.DB, logger *log.Logger, dash *dashboard.Service, store *settings.Store, mcpHandler http.Handler, config Config) *Server {
	csrfConfig := DefaultCSRFConfig()
	csrfConfig.Secure = config.UseHTTPS

	s := &Server{
		db:        db,
		logger:    logger,
		auth:      auth.NewService(db.DB),
		dashboard: dash,
		settings:  store,
		csrf:      NewCSRF(csrfConfig),
		hub:       NewHub(logger),
		mcp:       mcpHandler,
		config:    config,
	}
	if !config.ProductionMode {
		s.logger.Printf("Server initialized successfully")
	}
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/data", s.handleData)
	mux.HandleFunc("/articles.rss", s.handleArticlesRSS)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/setup", s.handleSetup)
	mux.HandleFunc("/admin/login", s.handleLogin)
	mux.HandleFunc("/admin/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("/admin/settings", s.requireAuth(s.handleSettings))
	mux.HandleFunc("/admin/cache/clear", s.requireAuth(s.handleClearCache))
	mux.HandleFunc("/admin/connection", s.requireAuth(s.handleConnection))
	mux.HandleFunc("/admin/backup", s.requireAuth(s.handleBackup))
	mux.Handle("/ws", s.hub)
	if s.mcp != nil {
		mux.Handle("/mcp", s.mcp)
		mux.Handle("/mcp/", s.mcp)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Printf("404 error for path: %s", r.URL.Path)
		RespondWithError(w, http.StatusNotFound, "Not found")
	})

	return s.requestLogger(securityHeaders(gzipMiddleware(mux)))
}

// requireAuth admits requests carrying a valid session cookie. Unsafe
// methods must also pass CSRF validation.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		session, err := s.auth.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, auth.ErrSessionNotFound) {
				s.logger.Printf("Error validating session: %v", err)
			}
			RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !isSafeMethod(r.Method) && !s.csrf.Validate(w, r) {
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyUserID, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// Invalidate clears the remote cache and tells connected dashboards to
// reload.
func (s *Server) Invalidate(ctx context.Context, reason string) error {
	if err := s.dashboard.ClearCache(ctx); err != nil {
		return err
	}
	s.hub.Broadcast(Event{Event: EventInvalidated, Reason: reason})
	return nil
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.csrf.RunCleanup(ctx, 6*time.Hour)
	go s.cleanSessions(ctx, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) cleanSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.auth.CleanExpiredSessions(ctx)
			if err != nil {
				s.logger.Printf("Error cleaning sessions: %v", err)
			} else if n > 0 && !s.config.ProductionMode {
				s.logger.Printf("Removed %d expired sessions", n)
			}
		}
	}
}
