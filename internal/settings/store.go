package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"crdashboard/internal/database"
)

// Keys in the settings table.
const (
	keyOwner        = "github_user"
	keyRepository   = "github_repo"
	keyBranch       = "github_branch"
	keyToken        = "github_token"
	keyCacheMinutes = "cache_minutes"
)

// Store persists Settings in the database settings table.
type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Load reads the current settings. Missing rows fall back to defaults, as
// does a cache_minutes row that is not a valid int.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	st := Default()
	fields := []struct {
		key string
		dst *string
	}{
		{keyOwner, &st.Owner},
		{keyRepository, &st.Repository},
		{keyBranch, &st.Branch},
		{keyToken, &st.Token},
	}
	for _, f := range fields {
		v, err := s.db.GetSetting(ctx, f.key)
		switch {
		case errors.Is(err, database.ErrNotFound):
		case err != nil:
			return Settings{}, fmt.Errorf("error loading setting %s: %w", f.key, err)
		default:
			*f.dst = v
		}
	}

	n, err := s.db.GetSettingInt(ctx, keyCacheMinutes)
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, database.ErrInvalidInput):
	case err != nil:
		return Settings{}, fmt.Errorf("error loading setting %s: %w", keyCacheMinutes, err)
	default:
		st.CacheMinutes = n
	}
	return st.Normalize(), nil
}

// Save normalizes, validates and stores st.
func (s *Store) Save(ctx context.Context, st Settings) (Settings, error) {
	st = st.Normalize()
	if err := st.Validate(); err != nil {
		return Settings{}, err
	}

	err := s.db.UpdateSettings(ctx, map[string]database.SettingValue{
		keyOwner:        {Value: st.Owner, Type: "string"},
		keyRepository:   {Value: st.Repository, Type: "string"},
		keyBranch:       {Value: st.Branch, Type: "string"},
		keyToken:        {Value: st.Token, Type: "string"},
		keyCacheMinutes: {Value: strconv.Itoa(st.CacheMinutes), Type: "int"},
	})
	if err != nil {
		return Settings{}, fmt.Errorf("error saving settings: %w", err)
	}
	return st, nil
}

// ImportFile merges the YAML file at path over the stored settings and saves
// the result.
func (s *Store) ImportFile(ctx context.Context, path string) (Settings, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return Settings{}, err
	}
	merged, err := MergeFile(path, current)
	if err != nil {
		return Settings{}, err
	}
	return s.Save(ctx, merged)
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidSettings)
}
