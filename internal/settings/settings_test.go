package settings

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"crdashboard/internal/database"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{
			name: "trims and defaults",
			in:   Settings{Owner: " acme ", Repository: "data\n", Token: " t "},
			want: Settings{Owner: "acme", Repository: "data", Branch: "main", Token: "t", CacheMinutes: 60},
		},
		{
			name: "clamps low",
			in:   Settings{Branch: "dev", CacheMinutes: 1},
			want: Settings{Branch: "dev", CacheMinutes: 5},
		},
		{
			name: "clamps negative",
			in:   Settings{CacheMinutes: -30},
			want: Settings{Branch: "main", CacheMinutes: 5},
		},
		{
			name: "clamps high",
			in:   Settings{CacheMinutes: 5000},
			want: Settings{Branch: "main", CacheMinutes: 1440},
		},
		{
			name: "keeps in range",
			in:   Settings{CacheMinutes: 30},
			want: Settings{Branch: "main", CacheMinutes: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Settings
		wantErr bool
	}{
		{"unconfigured", Settings{}, false},
		{"configured", Settings{Owner: "acme", Repository: "city.data_v2"}, false},
		{"owner only", Settings{Owner: "acme"}, true},
		{"repository only", Settings{Repository: "data"}, true},
		{"owner with slash", Settings{Owner: "acme/x", Repository: "data"}, true},
		{"repository dot", Settings{Owner: "acme", Repository: ".."}, true},
		{"branch with space", Settings{Owner: "acme", Repository: "data", Branch: "my branch"}, true},
		{"branch with dots", Settings{Owner: "acme", Repository: "data", Branch: "a..b"}, true},
		{"nested branch", Settings{Owner: "acme", Repository: "data", Branch: "release/2024"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Normalize().Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("error %v does not wrap ErrInvalidSettings", err)
			}
		})
	}
}

func TestTargetAndTTL(t *testing.T) {
	s := Settings{Owner: "acme", Repository: "data", Branch: "dev", Token: "secret", CacheMinutes: 15}
	target := s.Target()
	if !target.Configured() || target.Owner != "acme" || target.Token != "secret" {
		t.Errorf("Target() = %+v", target)
	}
	if s.TTL() != 15*time.Minute {
		t.Errorf("TTL() = %v", s.TTL())
	}
	if (Settings{}).TTL() != 60*time.Minute {
		t.Errorf("default TTL = %v", (Settings{}).TTL())
	}
	if (Settings{Owner: "acme"}).Configured() {
		t.Error("owner alone reported as configured")
	}
}

func TestMaskedToken(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"short":            "****",
		"ghp_abcdefghWXYZ": "****WXYZ",
	}
	for token, want := range tests {
		if got := (Settings{Token: token}).MaskedToken(); got != want {
			t.Errorf("MaskedToken(%q) = %q, want %q", token, got, want)
		}
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "settings.db"), database.DefaultConfig())
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStoreDefaults(t *testing.T) {
	store := newTestStore(t)
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", got, Default())
	}
	if got.Configured() {
		t.Error("fresh database reported as configured")
	}
}

func TestStoreSaveLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, Settings{Owner: " acme", Repository: "data", Token: "secret", CacheMinutes: 2})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.CacheMinutes != MinCacheMinutes || saved.Branch != DefaultBranch {
		t.Errorf("Save() returned %+v", saved)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != saved {
		t.Errorf("Load() = %+v, want %+v", loaded, saved)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, Settings{Owner: "acme"}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("Save() error = %v, want ErrInvalidSettings", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Owner != "" {
		t.Errorf("invalid settings were stored: %+v", loaded)
	}
}

func TestStoreLoadFallsBackOnBadCacheMinutes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, q := range []string{
		"UPDATE settings SET value = 'hourly' WHERE key = 'cache_minutes'",
		"UPDATE settings SET value = '30', type = 'string' WHERE key = 'cache_minutes'",
	} {
		if _, err := store.db.Exec(q); err != nil {
			t.Fatal(err)
		}
		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.CacheMinutes != DefaultCacheMinutes {
			t.Errorf("after %q CacheMinutes = %d, want %d", q, got.CacheMinutes, DefaultCacheMinutes)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestMergeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "owner: acme\nrepository: data\ncache_minutes: 30\n")

	base := Settings{Owner: "old", Repository: "old", Branch: "dev", Token: "keep", CacheMinutes: 60}
	got, err := MergeFile(path, base)
	if err != nil {
		t.Fatalf("MergeFile: %v", err)
	}
	want := Settings{Owner: "acme", Repository: "data", Branch: "dev", Token: "keep", CacheMinutes: 30}
	if got != want {
		t.Errorf("MergeFile() = %+v, want %+v", got, want)
	}
}

func TestMergeFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := MergeFile(filepath.Join(dir, "missing.yaml"), Default()); err == nil {
		t.Error("missing file did not fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "owner: [unterminated\n")
	if _, err := MergeFile(bad, Default()); err == nil {
		t.Error("malformed yaml did not fail")
	}
}

func TestExport(t *testing.T) {
	st := Settings{Owner: "acme", Repository: "data", Branch: "dev", Token: "ghp_secret", CacheMinutes: 30}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	out, err := Export(st, false, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(string(out), "ghp_secret") {
		t.Errorf("token leaked into export:\n%s", out)
	}
	if !strings.HasPrefix(string(out), "# crdashboard settings exported 2024-06-01T12:00:00Z") {
		t.Errorf("missing header comment:\n%s", out)
	}

	// Importing an export without a token keeps the stored one.
	base := Settings{Owner: "old", Repository: "old", Token: "stored", CacheMinutes: 60}
	got, err := Merge(out, base)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := Settings{Owner: "acme", Repository: "data", Branch: "dev", Token: "stored", CacheMinutes: 30}
	if got != want {
		t.Errorf("Merge(Export()) = %+v, want %+v", got, want)
	}

	out, err = Export(st, true, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got, _ := Merge(out, Default()); got.Token != "ghp_secret" {
		t.Errorf("token not exported: %+v", got)
	}
}

func TestImportFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "owner: acme\nrepository: data\ntoken: secret\n")

	got, err := store.ImportFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if !got.Configured() || got.Token != "secret" {
		t.Errorf("ImportFile() = %+v", got)
	}
	loaded, _ := store.Load(ctx)
	if loaded != got {
		t.Errorf("stored %+v, want %+v", loaded, got)
	}
}

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "owner: a\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	changed := make(chan struct{}, 10)
	err := Watch(ctx, path, 100*time.Millisecond, log.New(io.Discard, "", 0), func() {
		calls.Add(1)
		changed <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, filepath.Join(dir, "other.yaml"), "ignored: true\n")
	for i := 0; i < 3; i++ {
		writeFile(t, path, "owner: b\n")
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("onChange called %d times, want 1", n)
	}
}
