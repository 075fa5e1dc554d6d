package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"crdashboard/internal/settings"
)

const maxBackupSize = 64 << 10

// handleBackup downloads the settings as a YAML file on GET and restores
// them from an uploaded one on POST. The file format is the same one the
// -settings flag reads.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleExport(w, r)
	case http.MethodPost:
		s.handleImport(w, r)
	default:
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Load(r.Context())
	if err != nil {
		s.logger.Printf("Error loading settings: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	includeToken, _ := strconv.ParseBool(r.URL.Query().Get("include_token"))
	now := time.Now()
	out, err := settings.Export(st, includeToken, now)
	if err != nil {
		s.logger.Printf("Error encoding backup: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to create backup")
		return
	}

	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=crdashboard_settings_%s.yaml", now.Format("2006-01-02")))
	if _, err := w.Write(out); err != nil {
		s.logger.Printf("Error writing backup: %v", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupSize))
	if err != nil {
		RespondWithError(w, http.StatusRequestEntityTooLarge, "Backup file too large")
		return
	}

	current, err := s.settings.Load(r.Context())
	if err != nil {
		s.logger.Printf("Error loading settings: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	merged, err := settings.Merge(data, current)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid backup file: "+err.Error())
		return
	}

	saved, err := s.settings.Save(r.Context(), merged)
	if err != nil {
		if settings.IsValidationError(err) {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Printf("Error restoring settings: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := s.Invalidate(r.Context(), "import"); err != nil {
		s.logger.Printf("Error clearing cache after import: %v", err)
	}
	s.logger.Printf("Settings restored from backup for %s", saved.Target())
	RespondWithJSON(w, http.StatusOK, settingsResponse{
		Success:    true,
		Settings:   newSettingsView(saved),
		Connection: s.dashboard.CheckConnection(r.Context()),
	})
}
