// internal/server/types.go
package server

import (
	"time"

	"crdashboard/internal/remote"
	"crdashboard/internal/settings"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type setupRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// settingsRequest is the body of POST /admin/settings. A nil Token keeps
// the stored token; an empty string removes it.
type settingsRequest struct {
	Owner        string  `json:"owner"`
	Repository   string  `json:"repository"`
	Branch       string  `json:"branch"`
	Token        *string `json:"token"`
	CacheMinutes int     `json:"cache_minutes"`
}

type settingsView struct {
	Owner        string `json:"owner"`
	Repository   string `json:"repository"`
	Branch       string `json:"branch"`
	Token        string `json:"token"`
	HasToken     bool   `json:"has_token"`
	CacheMinutes int    `json:"cache_minutes"`
	Configured   bool   `json:"configured"`
}

func newSettingsView(st settings.Settings) settingsView {
	return settingsView{
		Owner:        st.Owner,
		Repository:   st.Repository,
		Branch:       st.Branch,
		Token:        st.MaskedToken(),
		HasToken:     st.Token != "",
		CacheMinutes: st.CacheMinutes,
		Configured:   st.Configured(),
	}
}

type settingsResponse struct {
	Success    bool                    `json:"success"`
	Settings   settingsView            `json:"settings"`
	Connection remote.ConnectionStatus `json:"connection,omitempty"`
	CSRFToken  string                  `json:"csrf_token,omitempty"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Demo    bool `json:"demo"`
	Data    any  `json:"data"`
}

type dataErrorResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
}

// Event is pushed to websocket clients.
type Event struct {
	Event  string    `json:"event"`
	Reason string    `json:"reason,omitempty"`
	Time   time.Time `json:"time"`
}

const EventInvalidated = "invalidated"
