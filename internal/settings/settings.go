// Package settings holds the remote target configuration.
package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"crdashboard/internal/remote"
)

const (
	DefaultBranch       = "main"
	DefaultCacheMinutes = 60
	MinCacheMinutes     = 5
	MaxCacheMinutes     = 1440
)

var ErrInvalidSettings = errors.New("invalid settings")

var (
	ownerPattern  = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)
	repoPattern   = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
	branchPattern = regexp.MustCompile(`^[^\s~^:?*\[\\]{1,255}$`)
)

// Settings describe which repository snapshots are read from and how long
// they are cached.
type Settings struct {
	Owner        string `yaml:"owner" json:"owner"`
	Repository   string `yaml:"repository" json:"repository"`
	Branch       string `yaml:"branch" json:"branch"`
	Token        string `yaml:"token,omitempty" json:"-"`
	CacheMinutes int    `yaml:"cache_minutes" json:"cache_minutes"`
}

func Default() Settings {
	return Settings{
		Branch:       DefaultBranch,
		CacheMinutes: DefaultCacheMinutes,
	}
}

// Normalize trims every field, fills in the default branch and clamps the
// cache lifetime.
func (s Settings) Normalize() Settings {
	s.Owner = strings.TrimSpace(s.Owner)
	s.Repository = strings.TrimSpace(s.Repository)
	s.Branch = strings.TrimSpace(s.Branch)
	s.Token = strings.TrimSpace(s.Token)
	if s.Branch == "" {
		s.Branch = DefaultBranch
	}
	switch {
	case s.CacheMinutes == 0:
		s.CacheMinutes = DefaultCacheMinutes
	case s.CacheMinutes < MinCacheMinutes:
		s.CacheMinutes = MinCacheMinutes
	case s.CacheMinutes > MaxCacheMinutes:
		s.CacheMinutes = MaxCacheMinutes
	}
	return s
}

// Validate checks normalized settings. Owner and repository are either both
// empty, which disables remote reads, or both valid names.
func (s Settings) Validate() error {
	if s.Owner == "" && s.Repository == "" {
		return nil
	}
	if s.Owner == "" || s.Repository == "" {
		return fmt.Errorf("%w: owner and repository must be set together", ErrInvalidSettings)
	}
	if !ownerPattern.MatchString(s.Owner) {
		return fmt.Errorf("%w: owner %q", ErrInvalidSettings, s.Owner)
	}
	if !repoPattern.MatchString(s.Repository) || s.Repository == "." || s.Repository == ".." {
		return fmt.Errorf("%w: repository %q", ErrInvalidSettings, s.Repository)
	}
	if !branchPattern.MatchString(s.Branch) || strings.Contains(s.Branch, "..") || strings.HasPrefix(s.Branch, "-") {
		return fmt.Errorf("%w: branch %q", ErrInvalidSettings, s.Branch)
	}
	if s.CacheMinutes < MinCacheMinutes || s.CacheMinutes > MaxCacheMinutes {
		return fmt.Errorf("%w: cache minutes %d", ErrInvalidSettings, s.CacheMinutes)
	}
	return nil
}

func (s Settings) Configured() bool {
	return s.Target().Configured()
}

func (s Settings) Target() remote.Target {
	return remote.Target{
		Owner:      s.Owner,
		Repository: s.Repository,
		Branch:     s.Branch,
		Token:      s.Token,
	}
}

// TTL is the cache lifetime, clamped like Normalize.
func (s Settings) TTL() time.Duration {
	return time.Duration(s.Normalize().CacheMinutes) * time.Minute
}

// MaskedToken shows at most the last four characters of the token.
func (s Settings) MaskedToken() string {
	switch {
	case s.Token == "":
		return ""
	case len(s.Token) <= 8:
		return "****"
	default:
		return "****" + s.Token[len(s.Token)-4:]
	}
}
