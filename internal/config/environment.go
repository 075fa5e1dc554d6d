// Save as: internal/config/environment.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           int
	DBPath         string
	SettingsFile   string
	RawBaseURL     string
	APIBaseURL     string
	SiteURL        string
	CacheBackend   string
	ProductionMode bool
}

const (
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
)

func GetConfig() Config {
	config := Config{
		Port:         8080, // default port
		DBPath:       "data/crdashboard.db",
		CacheBackend: CacheSQLite,
	}

	// Override with environment variables if present
	if port := os.Getenv("CRDASH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p < 65536 {
			config.Port = p
		}
	}

	if dbPath := os.Getenv("CRDASH_DB_PATH"); dbPath != "" {
		config.DBPath = dbPath
	}

	config.SettingsFile = os.Getenv("CRDASH_SETTINGS_FILE")
	config.RawBaseURL = os.Getenv("CRDASH_RAW_BASE_URL")
	config.APIBaseURL = os.Getenv("CRDASH_API_BASE_URL")
	config.SiteURL = os.Getenv("CRDASH_SITE_URL")

	switch backend := strings.ToLower(strings.TrimSpace(os.Getenv("CRDASH_CACHE"))); backend {
	case CacheSQLite, CacheMemory:
		config.CacheBackend = backend
	}

	if prod, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("CRDASH_PRODUCTION"))); err == nil {
		config.ProductionMode = prod
	}

	return config
}

func (c Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
