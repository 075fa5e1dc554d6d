package cache

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"crdashboard/internal/database"
)

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newSQLiteStore(t *testing.T, clock *fakeClock) *SQLiteStore {
	t.Helper()
	db, err := database.NewDB(":memory:", database.DefaultConfig())
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := NewSQLiteStore(db.DB, log.New(io.Discard, "", 0))
	s.now = clock.Now
	return s
}

func newMemoryStore(clock *fakeClock) *MemoryStore {
	m := NewMemoryStore()
	m.now = clock.Now
	return m
}

// forEachStore runs fn against both Store implementations sharing one clock.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store, clock *fakeClock)) {
	t.Run("sqlite", func(t *testing.T) {
		clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
		fn(t, newSQLiteStore(t, clock), clock)
	})
	t.Run("memory", func(t *testing.T) {
		clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
		fn(t, newMemoryStore(clock), clock)
	})
}

func TestKeyIsStableAndNamespaced(t *testing.T) {
	a := Key(KindFile, "output/summary_2024-06-01.json")
	b := Key(KindFile, "output/summary_2024-06-01.json")
	if a != b {
		t.Errorf("Key not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, Namespace+"file_") {
		t.Errorf("expected file key in namespace, got %q", a)
	}
	if Key(KindDir, "output") == Key(KindFile, "output") {
		t.Error("expected different keys for different kinds on the same path")
	}
	if Key(KindFile, "a.json") == Key(KindFile, "b.json") {
		t.Error("expected different keys for different paths")
	}
}

func TestRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		ctx := context.Background()
		key := Key(KindFile, "content_log.json")

		if err := s.Put(ctx, key, []byte("payload"), time.Hour); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, ok := s.Get(ctx, key)
		if !ok {
			t.Fatal("expected hit right after Put")
		}
		if string(got) != "payload" {
			t.Errorf("got %q, want payload", got)
		}
	})
}

func TestExpiry(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		ctx := context.Background()
		key := Key(KindDir, "output")

		if err := s.Put(ctx, key, []byte("[]"), 5*time.Minute); err != nil {
			t.Fatalf("Put: %v", err)
		}

		clock.Advance(4 * time.Minute)
		if _, ok := s.Get(ctx, key); !ok {
			t.Error("expected hit before ttl elapsed")
		}

		clock.Advance(time.Minute)
		if _, ok := s.Get(ctx, key); ok {
			t.Error("expected miss once ttl elapsed")
		}
	})
}

func TestPutOverwrites(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		ctx := context.Background()
		key := Key(KindFile, "x.csv")

		s.Put(ctx, key, []byte("old"), time.Minute)
		clock.Advance(2 * time.Minute)
		s.Put(ctx, key, []byte("new"), time.Minute)

		got, ok := s.Get(ctx, key)
		if !ok || string(got) != "new" {
			t.Errorf("Get = %q, %v; want new, true", got, ok)
		}
	})
}

func TestMissingKey(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		if _, ok := s.Get(context.Background(), Key(KindFile, "nope")); ok {
			t.Error("expected miss for unknown key")
		}
	})
}

func TestClear(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, clock *fakeClock) {
		ctx := context.Background()
		keys := []string{
			Key(KindFile, "output/osm_2024-06-01.csv"),
			Key(KindDir, "output"),
			Key(KindFile, "content_log.json"),
		}
		for _, k := range keys {
			if err := s.Put(ctx, k, []byte("v"), time.Hour); err != nil {
				t.Fatalf("Put: %v", err)
			}
		}

		if err := s.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		for _, k := range keys {
			if _, ok := s.Get(ctx, k); ok {
				t.Errorf("expected miss for %s after Clear", k)
			}
		}
	})
}

func TestClearKeepsForeignKeys(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newMemoryStore(clock)
	ctx := context.Background()

	m.Put(ctx, "other_key", []byte("x"), time.Hour)
	m.Put(ctx, Key(KindFile, "a"), []byte("y"), time.Hour)
	m.Clear(ctx)

	if _, ok := m.Get(ctx, "other_key"); !ok {
		t.Error("Clear removed a key outside the namespace")
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 remaining entry, got %d", m.Len())
	}
}

func TestSQLitePrune(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newSQLiteStore(t, clock)
	ctx := context.Background()

	s.Put(ctx, Key(KindFile, "short"), []byte("a"), time.Minute)
	s.Put(ctx, Key(KindFile, "long"), []byte("b"), time.Hour)
	clock.Advance(10 * time.Minute)

	n, err := s.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned entry, got %d", n)
	}
	if _, ok := s.Get(ctx, Key(KindFile, "long")); !ok {
		t.Error("expected unexpired entry to survive Prune")
	}
}
