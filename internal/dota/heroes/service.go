package heroes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/opendota"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/metrics"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/repository"
)

const (
	// DefaultTTL is how long a fetched catalog is served before refetching.
	DefaultTTL = 24 * time.Hour

	// FallbackRetryTTL is how long a catalog read from the database is served
	// before OpenDota is tried again.
	FallbackRetryTTL = 5 * time.Minute
)

// ErrNoCatalog is returned when neither OpenDota nor the database has heroes.
var ErrNoCatalog = errors.New("no hero catalog available")

// Source fetches hero stats. *opendota.Client satisfies it.
type Source interface {
	GetHeroStats(ctx context.Context) ([]opendota.HeroStats, error)
}

// Service serves the hero catalog with an in-memory TTL, refreshing from
// OpenDota and falling back to the last persisted catalog.
type Service struct {
	source Source
	repo   repository.HeroRepository
	store  *recommend.CatalogStore
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	expiresAt time.Time
}

// NewService creates a hero catalog service. repo may be nil to disable
// persistence. The catalog is published to store on every successful load.
func NewService(source Source, repo repository.HeroRepository, store *recommend.CatalogStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if store == nil {
		store = recommend.NewCatalogStore(nil)
	}
	return &Service{
		source: source,
		repo:   repo,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Store returns the catalog store this service publishes to.
func (s *Service) Store() *recommend.CatalogStore {
	return s.store
}

// Catalog returns the cached catalog, loading it when the cache is empty or
// older than the TTL. A failed refresh keeps serving the previous catalog.
func (s *Service) Catalog(ctx context.Context) (*recommend.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.store.Load()
	if current.Len() > 0 && s.now().Before(s.expiresAt) {
		metrics.RecordCache("heroes", true)
		return current, nil
	}
	metrics.RecordCache("heroes", false)

	catalog, fresh, err := s.load(ctx)
	if err != nil {
		if current.Len() > 0 {
			logging.Warn().Err(err).Int("heroes", current.Len()).Msg("Hero refresh failed, serving stale catalog")
			return current, nil
		}
		return current, err
	}

	s.publish(catalog, fresh)
	return catalog, nil
}

// Refresh bypasses the TTL and reloads the catalog.
func (s *Service) Refresh(ctx context.Context) (*recommend.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, fresh, err := s.load(ctx)
	if err != nil {
		return s.store.Load(), err
	}
	s.publish(catalog, fresh)
	return catalog, nil
}

// publish swaps in catalog. Catalogs not fetched from OpenDota expire after
// FallbackRetryTTL so a recovered API is picked up soon.
func (s *Service) publish(catalog *recommend.Catalog, fresh bool) {
	ttl := s.ttl
	if !fresh {
		ttl = min(ttl, FallbackRetryTTL)
	}
	s.store.Replace(catalog)
	s.expiresAt = s.now().Add(ttl)
	metrics.HeroesLoaded.Set(float64(catalog.Len()))
}

// load fetches from OpenDota and persists, or falls back to the database.
// fresh is false for the database fallback.
func (s *Service) load(ctx context.Context) (catalog *recommend.Catalog, fresh bool, err error) {
	var fetchErr error
	if s.source != nil {
		stats, err := s.source.GetHeroStats(ctx)
		if err == nil && len(stats) > 0 {
			catalog := CatalogFromStats(stats)
			s.persist(ctx, catalog)
			logging.Info().Int("heroes", catalog.Len()).Msg("Hero catalog fetched from OpenDota")
			return catalog, true, nil
		}
		fetchErr = err
		if fetchErr == nil {
			fetchErr = fmt.Errorf("empty hero stats response")
		}
		logging.Warn().Err(fetchErr).Msg("Failed to fetch hero stats")
	}

	if s.repo != nil {
		stored, err := s.repo.List(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load stored heroes: %w", err)
		}
		if len(stored) > 0 {
			logging.Info().Int("heroes", len(stored)).Msg("Hero catalog loaded from database")
			return fromModels(stored), false, nil
		}
	}

	if fetchErr != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrNoCatalog, fetchErr)
	}
	return nil, false, ErrNoCatalog
}

func (s *Service) persist(ctx context.Context, catalog *recommend.Catalog) {
	if s.repo == nil {
		return
	}
	if err := s.repo.UpsertAll(ctx, toModels(catalog)); err != nil {
		logging.Warn().Err(err).Msg("Failed to persist hero catalog")
	}
}
