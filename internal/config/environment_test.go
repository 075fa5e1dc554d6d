package config

import "testing"

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults",
			want: Config{Port: 8080, DBPath: "data/crdashboard.db", CacheBackend: CacheSQLite},
		},
		{
			name: "overrides",
			env: map[string]string{
				"CRDASH_PORT":          "9090",
				"CRDASH_DB_PATH":       "/var/lib/crdashboard/db.sqlite",
				"CRDASH_SETTINGS_FILE": "/etc/crdashboard.yaml",
				"CRDASH_RAW_BASE_URL":  "https://raw.example",
				"CRDASH_API_BASE_URL":  "https://api.example",
				"CRDASH_SITE_URL":      "https://dash.example",
				"CRDASH_PRODUCTION":    "true",
				"CRDASH_CACHE":         "Memory",
			},
			want: Config{
				Port:           9090,
				DBPath:         "/var/lib/crdashboard/db.sqlite",
				SettingsFile:   "/etc/crdashboard.yaml",
				RawBaseURL:     "https://raw.example",
				APIBaseURL:     "https://api.example",
				SiteURL:        "https://dash.example",
				CacheBackend:   CacheMemory,
				ProductionMode: true,
			},
		},
		{
			name: "invalid values ignored",
			env:  map[string]string{"CRDASH_PORT": "http", "CRDASH_PRODUCTION": "maybe", "CRDASH_CACHE": "redis"},
			want: Config{Port: 8080, DBPath: "data/crdashboard.db", CacheBackend: CacheSQLite},
		},
		{
			name: "port out of range",
			env:  map[string]string{"CRDASH_PORT": "70000"},
			want: Config{Port: 8080, DBPath: "data/crdashboard.db", CacheBackend: CacheSQLite},
		},
	}

	keys := []string{"CRDASH_PORT", "CRDASH_DB_PATH", "CRDASH_SETTINGS_FILE", "CRDASH_RAW_BASE_URL", "CRDASH_API_BASE_URL", "CRDASH_SITE_URL", "CRDASH_PRODUCTION", "CRDASH_CACHE"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, tt.env[k])
			}
			if got := GetConfig(); got != tt.want {
				t.Errorf("GetConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetAddress(t *testing.T) {
	if got := (Config{Port: 8080}).GetAddress(); got != ":8080" {
		t.Errorf("GetAddress() = %q", got)
	}
}
