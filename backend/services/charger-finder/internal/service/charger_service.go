package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"markev/backend/services/charger-finder/internal/catalog"
	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/metrics"
	"markev/backend/services/charger-finder/internal/models"
	"markev/backend/services/charger-finder/internal/repository"
)

// Source tells where a result came from.
type Source string

const (
	SourceStore    Source = "store"
	SourceFallback Source = "fallback"
)

// FallbackPolicy decides when an empty store answer is replaced by the catalog.
type FallbackPolicy string

const (
	// FallbackOnEmpty replaces any empty answer, including a box that matched nothing
	// in a populated store.
	FallbackOnEmpty FallbackPolicy = "empty"
	// FallbackOnUnavailable replaces an answer only when the store holds no records
	// at all or cannot be reached.
	FallbackOnUnavailable FallbackPolicy = "unavailable"
)

const (
	defaultRepositoryTimeout = 3 * time.Second

	kindAll    = "all"
	kindNearby = "nearby"

	reasonEmpty       = "empty"
	reasonUnavailable = "unavailable"
)

// ChargerServiceOptions tune the read path.
type ChargerServiceOptions struct {
	// Timeout bounds every repository read; zero means the default.
	Timeout time.Duration
	Policy  FallbackPolicy
}

// Result is a normalized list of chargers plus its origin.
type Result struct {
	Chargers []models.Charger
	Source   Source
}

// ChargerService answers charger queries with a store-first, catalog-second strategy.
type ChargerService struct {
	repo     repository.ChargerRepository
	fallback catalog.Fallback
	timeout  time.Duration
	policy   FallbackPolicy
	logger   *zap.Logger

	mu       sync.RWMutex
	onReseed []func([]models.Charger)
}

// NewChargerService builds ChargerService.
func NewChargerService(repo repository.ChargerRepository, fallback catalog.Fallback, opts ChargerServiceOptions, logger *zap.Logger) *ChargerService {
	if fallback == nil {
		fallback = catalog.Empty{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRepositoryTimeout
	}
	if opts.Policy == "" {
		opts.Policy = FallbackOnEmpty
	}
	return &ChargerService{
		repo:     repo,
		fallback: fallback,
		timeout:  opts.Timeout,
		policy:   opts.Policy,
		logger:   logger,
	}
}

// OnReseed registers a callback invoked with the stored records after each successful reseed.
func (s *ChargerService) OnReseed(fn func([]models.Charger)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReseed = append(s.onReseed, fn)
}

// All returns every stored charger, or the whole catalog when the store is empty or failing.
func (s *ChargerService) All(ctx context.Context) Result {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	chargers, err := s.repo.FindAll(readCtx)
	cancel()
	if err != nil {
		s.repositoryFailed("find_all", err)
		return s.fromFallback(kindAll, reasonUnavailable, s.fallback.Chargers())
	}
	if len(chargers) == 0 {
		return s.fromFallback(kindAll, reasonEmpty, s.fallback.Chargers())
	}
	return s.fromStore(kindAll, chargers)
}

// Nearby returns chargers inside box. Store failures and empty answers fall back to the
// catalog filtered by the same inclusive predicate, subject to the configured policy.
func (s *ChargerService) Nearby(ctx context.Context, box geo.BoundingBox) Result {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	chargers, err := s.repo.FindInBounds(readCtx, box)
	cancel()
	if err != nil {
		s.repositoryFailed("find_in_bounds", err)
		return s.fromFallback(kindNearby, reasonUnavailable, s.fallback.InBounds(box))
	}

	chargers = catalog.Filter(chargers, box)
	if len(chargers) > 0 {
		return s.fromStore(kindNearby, chargers)
	}

	if s.policy == FallbackOnUnavailable {
		countCtx, cancel := context.WithTimeout(ctx, s.timeout)
		count, err := s.repo.Count(countCtx)
		cancel()
		switch {
		case err != nil:
			s.repositoryFailed("count", err)
			return s.fromFallback(kindNearby, reasonUnavailable, s.fallback.InBounds(box))
		case count > 0:
			return s.fromStore(kindNearby, chargers)
		}
	}

	return s.fromFallback(kindNearby, reasonEmpty, s.fallback.InBounds(box))
}

// Reseed validates records, including id uniqueness, then clears the store and inserts them. Invalid input
// leaves the store untouched.
//
// The clear and the insert are not atomic. A reader running between them sees an empty
// store and is answered from the fallback catalog, and concurrent reseeds may interleave.
func (s *ChargerService) Reseed(ctx context.Context, chargers []models.Charger) (int, error) {
	prepared := make([]models.Charger, 0, len(chargers))
	seen := make(map[string]int, len(chargers))
	for i, c := range chargers {
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if strings.TrimSpace(c.ID) != "" {
			if j, ok := seen[c.ID]; ok {
				return 0, fmt.Errorf("record %d: %w: id %q duplicates record %d", i, models.ErrInvalidCharger, c.ID, j)
			}
			seen[c.ID] = i
		}
		prepared = append(prepared, c)
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		s.repositoryFailed("delete_all", err)
		return 0, fmt.Errorf("reseed: delete: %w", err)
	}
	stored, err := s.repo.InsertMany(ctx, prepared)
	if err != nil {
		s.repositoryFailed("insert_many", err)
		return 0, fmt.Errorf("reseed: insert: %w", err)
	}

	s.logger.Info("chargers reseeded", zap.Int("count", len(stored)))

	s.mu.RLock()
	callbacks := append([]func([]models.Charger){}, s.onReseed...)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn(stored)
	}
	return len(stored), nil
}

func (s *ChargerService) fromStore(kind string, chargers []models.Charger) Result {
	if chargers == nil {
		chargers = []models.Charger{}
	}
	metrics.ObserveQuery(kind, string(SourceStore))
	return Result{Chargers: chargers, Source: SourceStore}
}

func (s *ChargerService) fromFallback(kind, reason string, chargers []models.Charger) Result {
	if chargers == nil {
		chargers = []models.Charger{}
	}
	metrics.ObserveQuery(kind, string(SourceFallback))
	metrics.ObserveFallback(kind, reason)
	s.logger.Debug("serving fallback catalog", zap.String("kind", kind), zap.String("reason", reason), zap.Int("count", len(chargers)))
	return Result{Chargers: chargers, Source: SourceFallback}
}

func (s *ChargerService) repositoryFailed(operation string, err error) {
	metrics.ObserveRepositoryError(operation)
	s.logger.Warn("repository call failed", zap.String("operation", operation), zap.Error(err))
}
