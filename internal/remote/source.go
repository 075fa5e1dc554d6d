package remote

import (
	"context"
	"encoding/json"
	"log"
	"path"
	"time"

	"crdashboard/internal/cache"
)

// Source serves listings and files through the cache. Every failure is
// logged and reported as "no data"; callers never see an error.
type Source struct {
	client *Client
	store  cache.Store
	logger *log.Logger
}

func NewSource(client *Client, store cache.Store, logger *log.Logger) *Source {
	return &Source{
		client: client,
		store:  store,
		logger: logger,
	}
}

// List returns the listing of dir, from cache when fresh.
func (s *Source) List(ctx context.Context, t Target, dir string, ttl time.Duration) ([]Entry, bool) {
	if !t.Configured() {
		return nil, false
	}

	key := cache.Key(cache.KindDir, dir)
	if raw, ok := s.store.Get(ctx, key); ok {
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, true
		}
		s.logger.Printf("Discarding undecodable cached listing for %s", dir)
	}

	entries, err := s.client.ListDirectory(ctx, t, dir)
	if err != nil {
		s.logger.Printf("Error listing %s on %s: %v", dir, t, err)
		return nil, false
	}

	raw, err := json.Marshal(entries)
	if err == nil {
		if err := s.store.Put(ctx, key, raw, ttl); err != nil {
			s.logger.Printf("Error caching listing for %s: %v", dir, err)
		}
	}
	return entries, true
}

// Fetch returns the bytes of p, from cache when fresh.
func (s *Source) Fetch(ctx context.Context, t Target, p string, ttl time.Duration) ([]byte, bool) {
	if !t.Configured() {
		return nil, false
	}

	key := cache.Key(cache.KindFile, p)
	if body, ok := s.store.Get(ctx, key); ok {
		return body, true
	}

	body, err := s.client.FetchFile(ctx, t, p)
	if err != nil {
		s.logger.Printf("Error fetching %s from %s: %v", p, t, err)
		return nil, false
	}

	if err := s.store.Put(ctx, key, body, ttl); err != nil {
		s.logger.Printf("Error caching %s: %v", p, err)
	}
	return body, true
}

// Latest returns the path of the newest snapshot in dir matching prefix and ext.
func (s *Source) Latest(ctx context.Context, t Target, dir, prefix, ext string, ttl time.Duration) (string, bool) {
	entries, ok := s.List(ctx, t, dir, ttl)
	if !ok {
		return "", false
	}
	name, ok := SelectLatest(entries, prefix, ext)
	if !ok {
		return "", false
	}
	return path.Join(dir, name), true
}

// Check reports whether the target repository is reachable. It bypasses the cache.
func (s *Source) Check(ctx context.Context, t Target) ConnectionStatus {
	return s.client.CheckRepository(ctx, t)
}

// Clear empties the cache.
func (s *Source) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
