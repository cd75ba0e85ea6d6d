package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/rs/zerolog"
)

// Service owns the current draw store. Readers take a snapshot with Current
// and never lock; Reload and Import build a new Store and swap it in.
type Service struct {
	repo    *Repository
	sources []Source
	current atomic.Pointer[Store]
	// serialises writers; readers are lock free
	mu       sync.Mutex
	loadedAt atomic.Int64
	log      zerolog.Logger
}

// NewService creates the history service. Sources are merged into the
// repository on every Reload, in order.
func NewService(repo *Repository, sources []Source, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		sources: sources,
		log:     log.With().Str("component", "history_service").Logger(),
	}
}

// Current returns the loaded store snapshot, or ErrStoreUnavailable.
func (s *Service) Current() (*Store, error) {
	store := s.current.Load()
	if store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return store, nil
}

// Snapshot is Current behind the read-only DrawSource interface.
func (s *Service) Snapshot() (domain.DrawSource, error) {
	store, err := s.Current()
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadedAt returns when the current snapshot was built (zero if never).
func (s *Service) LoadedAt() time.Time {
	ts := s.loadedAt.Load()
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(0, ts)
}

// Load is Reload at startup: it fails with ErrStoreUnavailable when no
// snapshot could be built.
func (s *Service) Load(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		if _, currentErr := s.Current(); currentErr != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		return err
	}
	return nil
}

// Reload merges every source into the repository and swaps in a fresh store.
// A failing source is logged and skipped; the previous snapshot is kept when
// the repository cannot be read, or when a source failed and nothing at all
// is left to check against.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sourceErrs []error
	for _, src := range s.sources {
		draws, err := src.Fetch(ctx)
		if err != nil {
			s.log.Warn().Err(err).Str("source", src.Name()).Msg("Failed to fetch draws from source")
			sourceErrs = append(sourceErrs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		saved, err := s.repo.SaveDraws(ctx, draws)
		if err != nil {
			s.log.Warn().Err(err).Str("source", src.Name()).Msg("Failed to save draws from source")
			sourceErrs = append(sourceErrs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		s.log.Info().
			Str("source", src.Name()).
			Int("fetched", len(draws)).
			Int("saved", saved).
			Msg("Merged draws from source")
	}

	if err := s.rebuild(ctx, len(sourceErrs) == 0); err != nil {
		return errors.Join(append(sourceErrs, err)...)
	}
	return errors.Join(sourceErrs...)
}

// Import saves the given draws and swaps in a store that includes them.
func (s *Service) Import(ctx context.Context, draws []domain.Draw) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.repo.SaveDraws(ctx, draws)
	if err != nil {
		return 0, fmt.Errorf("failed to import draws: %w", err)
	}

	if err := s.rebuild(ctx, true); err != nil {
		return saved, err
	}
	return saved, nil
}

// rebuild swaps in a store built from the repository. An empty repository
// only counts as a valid history when allowEmpty is set.
func (s *Service) rebuild(ctx context.Context, allowEmpty bool) error {
	draws, err := s.repo.ListDraws(ctx)
	if err != nil {
		return fmt.Errorf("failed to list draws: %w", err)
	}
	if len(draws) == 0 && !allowEmpty {
		return fmt.Errorf("%w: no draws stored and the dataset could not be loaded", domain.ErrStoreUnavailable)
	}

	store, err := NewStore(draws)
	if err != nil {
		return fmt.Errorf("failed to build draw store: %w", err)
	}

	previous := s.current.Swap(store)
	s.loadedAt.Store(time.Now().UnixNano())

	event := s.log.Info().Int("draws", store.Len()).Uint64("version", store.Version())
	if latest, ok := store.Latest(); ok {
		event = event.Int("latest_contest", latest.Contest)
	}
	if previous != nil {
		event = event.Uint64("previous_version", previous.Version())
	}
	event.Msg("Draw store loaded")

	return nil
}
