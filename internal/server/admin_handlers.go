package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"crdashboard/internal/auth"
	"crdashboard/internal/settings"
)

const maxAdminBody = 64 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody)).Decode(v)
}

// handleLogin issues a CSRF token on GET and a session on POST.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		token, err := s.csrf.Token(w, r)
		if err != nil {
			s.logger.Printf("Error issuing CSRF token: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		hasUsers, err := s.auth.HasUsers(r.Context())
		if err != nil {
			s.logger.Printf("Error checking admin users: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]any{
			"csrf_token":     token,
			"setup_required": !hasUsers,
		})

	case http.MethodPost:
		if !s.csrf.Validate(w, r) {
			return
		}
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		session, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				s.logger.Printf("[%s] Failed login for %q", RequestID(r.Context()), req.Username)
				RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			s.logger.Printf("[%s] Authentication error: %v", RequestID(r.Context()), err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.config.UseHTTPS,
			SameSite: http.SameSiteStrictMode,
			Expires:  session.ExpiresAt,
		})
		RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.auth.InvalidateSession(r.Context(), cookie.Value); err != nil {
			s.logger.Printf("Error invalidating session: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleSetup creates the first admin account. Once one exists the
// endpoint is closed.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	hasUsers, err := s.auth.HasUsers(r.Context())
	if err != nil {
		s.logger.Printf("Error checking first run: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if hasUsers {
		RespondWithError(w, http.StatusConflict, "Setup already completed")
		return
	}
	if !s.csrf.Validate(w, r) {
		return
	}

	var req setupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Password != req.ConfirmPassword {
		RespondWithError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	if err := s.auth.CreateUser(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidUsername):
			RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUserExists):
			RespondWithError(w, http.StatusConflict, err.Error())
		default:
			s.logger.Printf("Failed to create user: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}
	s.logger.Printf("Admin account %q created", strings.ToLower(strings.TrimSpace(req.Username)))
	RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		st, err := s.settings.Load(r.Context())
		if err != nil {
			s.logger.Printf("Error loading settings: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		token, err := s.csrf.Token(w, r)
		if err != nil {
			s.logger.Printf("Error issuing CSRF token: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		RespondWithJSON(w, http.StatusOK, settingsResponse{
			Success:   true,
			Settings:  newSettingsView(st),
			CSRFToken: token,
		})

	case http.MethodPost:
		var req settingsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request")
			return
		}

		current, err := s.settings.Load(r.Context())
		if err != nil {
			s.logger.Printf("Error loading settings: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next := settings.Settings{
			Owner:        req.Owner,
			Repository:   req.Repository,
			Branch:       req.Branch,
			Token:        current.Token,
			CacheMinutes: req.CacheMinutes,
		}
		if req.Token != nil {
			next.Token = *req.Token
		}

		saved, err := s.settings.Save(r.Context(), next)
		if err != nil {
			if settings.IsValidationError(err) {
				RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.logger.Printf("Error saving settings: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if err := s.Invalidate(r.Context(), "settings"); err != nil {
			s.logger.Printf("Error clearing cache after settings change: %v", err)
		}
		RespondWithJSON(w, http.StatusOK, settingsResponse{
			Success:    true,
			Settings:   newSettingsView(saved),
			Connection: s.dashboard.CheckConnection(r.Context()),
		})

	default:
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := s.Invalidate(r.Context(), "manual"); err != nil {
		s.logger.Printf("Error clearing cache: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}
	if userID, ok := getUserID(r.Context()); ok {
		s.logger.Printf("Cache cleared by user %d", userID)
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"status": s.dashboard.CheckConnection(r.Context()),
	})
}
