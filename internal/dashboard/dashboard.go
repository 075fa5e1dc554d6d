// Package dashboard is the data facade behind every dashboard endpoint.
package dashboard

import (
	"context"
	"errors"
	"log"
	"time"

	"crdashboard/internal/dataset"
	"crdashboard/internal/remote"
	"crdashboard/internal/settings"
)

// Locations of the published snapshots in the remote repository.
const (
	SnapshotDir    = "output"
	SummaryPrefix  = "summary_"
	TrendPrefix    = "affiliate_chancen_"
	POIPrefix      = "osm_"
	ArticleLogPath = "content_log.json"
)

// Kind selects one of the dashboard data sets.
type Kind string

const (
	KindSummary  Kind = "summary"
	KindTrends   Kind = "trends"
	KindArticles Kind = "articles"
	KindOSM      Kind = "osm"
)

var ErrUnknownKind = errors.New("unknown type")

// ParseKind validates a kind selector.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSummary, KindTrends, KindArticles, KindOSM:
		return k, nil
	}
	return "", ErrUnknownKind
}

// Result wraps facade data with its origin. Demo is true when the data is
// the built-in fallback rather than a remote snapshot.
type Result[T any] struct {
	Data T    `json:"data"`
	Demo bool `json:"demo"`
}

// SettingsLoader supplies the current remote target.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// Service orchestrates selection, fetching, parsing and fallback.
type Service struct {
	source   *remote.Source
	settings SettingsLoader
	logger   *log.Logger
	now      func() time.Time
}

func NewService(source *remote.Source, loader SettingsLoader, logger *log.Logger) *Service {
	return &Service{
		source:   source,
		settings: loader,
		logger:   logger,
		now:      time.Now,
	}
}

// current returns the active settings, or unconfigured defaults when they
// cannot be read.
func (s *Service) current(ctx context.Context) settings.Settings {
	st, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Printf("Error loading settings, using demo data: %v", err)
		return settings.Default()
	}
	return st
}

// latest fetches the newest snapshot in SnapshotDir matching prefix and ext.
func (s *Service) latest(ctx context.Context, st settings.Settings, prefix, ext string) ([]byte, bool) {
	if !st.Configured() {
		return nil, false
	}
	p, ok := s.source.Latest(ctx, st.Target(), SnapshotDir, prefix, ext, st.TTL())
	if !ok {
		return nil, false
	}
	return s.source.Fetch(ctx, st.Target(), p, st.TTL())
}

func (s *Service) GetSummary(ctx context.Context) Result[dataset.Summary] {
	st := s.current(ctx)
	if body, ok := s.latest(ctx, st, SummaryPrefix, ".json"); ok {
		if summary, ok := dataset.ParseSummary(body); ok {
			return Result[dataset.Summary]{Data: summary}
		}
		s.logger.Printf("Latest summary on %s is empty or malformed", st.Target())
	}
	return Result[dataset.Summary]{Data: dataset.DemoSummary(s.now()), Demo: true}
}

func (s *Service) GetTrends(ctx context.Context) Result[[]dataset.Trend] {
	st := s.current(ctx)
	if body, ok := s.latest(ctx, st, TrendPrefix, ".csv"); ok {
		if trends, ok := dataset.ParseTrends(body); ok {
			return Result[[]dataset.Trend]{Data: trends}
		}
		s.logger.Printf("Latest trend table on %s has no usable rows", st.Target())
	}
	return Result[[]dataset.Trend]{Data: dataset.DemoTrends(), Demo: true}
}

func (s *Service) GetArticles(ctx context.Context) Result[[]dataset.Article] {
	st := s.current(ctx)
	if st.Configured() {
		if body, ok := s.source.Fetch(ctx, st.Target(), ArticleLogPath, st.TTL()); ok {
			if articles, ok := dataset.ParseArticles(body); ok {
				return Result[[]dataset.Article]{Data: articles}
			}
			s.logger.Printf("Article log on %s is empty or malformed", st.Target())
		}
	}
	return Result[[]dataset.Article]{Data: dataset.DemoArticles(s.now()), Demo: true}
}

func (s *Service) GetCategoryCounts(ctx context.Context) Result[dataset.CategoryCounts] {
	st := s.current(ctx)
	if body, ok := s.latest(ctx, st, POIPrefix, ".csv"); ok {
		if counts, ok := dataset.ParseCategoryCounts(body); ok {
			return Result[dataset.CategoryCounts]{Data: counts}
		}
		s.logger.Printf("Latest point-of-interest export on %s has no usable rows", st.Target())
	}
	return Result[dataset.CategoryCounts]{Data: dataset.DemoCategoryCounts(), Demo: true}
}

// Data dispatches on kind. The returned data is one of the typed results
// above with its Data field widened to any.
func (s *Service) Data(ctx context.Context, kind Kind) (Result[any], error) {
	switch kind {
	case KindSummary:
		r := s.GetSummary(ctx)
		return Result[any]{Data: r.Data, Demo: r.Demo}, nil
	case KindTrends:
		r := s.GetTrends(ctx)
		return Result[any]{Data: r.Data, Demo: r.Demo}, nil
	case KindArticles:
		r := s.GetArticles(ctx)
		return Result[any]{Data: r.Data, Demo: r.Demo}, nil
	case KindOSM:
		r := s.GetCategoryCounts(ctx)
		return Result[any]{Data: r.Data, Demo: r.Demo}, nil
	}
	return Result[any]{}, ErrUnknownKind
}

// ClearCache drops every cached listing and file.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.source.Clear(ctx)
}

// CheckConnection probes the configured repository without using the cache.
func (s *Service) CheckConnection(ctx context.Context) remote.ConnectionStatus {
	return s.source.Check(ctx, s.current(ctx).Target())
}
