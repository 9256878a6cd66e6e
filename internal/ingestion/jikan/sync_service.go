package jikan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animeschedule/internal/metrics"
	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/shared"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// CatalogSource supplies the full raw snapshot for one run.
type CatalogSource interface {
	FetchSnapshot(ctx context.Context) ([]Anime, error)
}

type SyncResult struct {
	Inserted    int `json:"inserted"`
	Updated     int `json:"updated"`
	Deleted     int `json:"deleted"`
	Unchanged   int `json:"unchanged"`
	Skipped     int `json:"skipped"`
	Regressions int `json:"regressions"`
}

// SyncService manages catalog synchronization
type SyncService struct {
	source     CatalogSource
	normalizer *Normalizer
	anime      repository.AnimeRepository
	state      repository.SyncStateRepository
	metrics    metrics.Provider
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSyncService wires a sync service. state may be nil, in which case run
// bookkeeping is skipped.
func NewSyncService(
	source CatalogSource,
	normalizer *Normalizer,
	anime repository.AnimeRepository,
	state repository.SyncStateRepository,
	m metrics.Provider,
	logger zerolog.Logger,
) *SyncService {
	if m == nil {
		m = metrics.Noop()
	}
	return &SyncService{
		source:     source,
		normalizer: normalizer,
		anime:      anime,
		state:      state,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// SynchronizeCatalog fetches a fresh snapshot and reconciles it with the
// store in one transaction. Nothing is written unless every staged change
// commits.
func (s *SyncService) SynchronizeCatalog(ctx context.Context) (SyncResult, error) {
	started := s.now()
	s.markRunning(ctx, started)

	records, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		return SyncResult{}, s.fail(ctx, started, fmt.Errorf("fetch catalog: %w", err))
	}

	drafts, skipped, err := s.normalizer.NormalizeSnapshot(records)
	if err != nil {
		return SyncResult{}, s.fail(ctx, started, fmt.Errorf("normalize catalog: %w", err))
	}

	if err := ctx.Err(); err != nil {
		return SyncResult{}, s.fail(ctx, started, err)
	}

	result := SyncResult{Skipped: skipped}
	err = s.anime.Transaction(ctx, func(tx repository.AnimeRepository) error {
		persisted, err := tx.ListIndexedAnime(ctx)
		if err != nil {
			return err
		}

		changes := Reconcile(drafts, persisted)
		if _, err := tx.UpsertIndexedAnime(ctx, changes.Inserts, changes.Updates); err != nil {
			return err
		}

		deleted, err := tx.DeleteFinishedAiring(ctx)
		if err != nil {
			return err
		}

		result.Inserted = len(changes.Inserts)
		result.Updated = len(changes.Updates)
		result.Unchanged = changes.Unchanged
		result.Regressions = changes.Regressions
		result.Deleted = int(deleted)
		return nil
	})
	if err != nil {
		if !errors.Is(err, shared.ErrPersistenceFailure) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", shared.ErrPersistenceFailure, err)
		}
		return SyncResult{}, s.fail(ctx, started, fmt.Errorf("apply catalog changes: %w", err))
	}

	s.succeed(ctx, started, result)
	return result, nil
}

func (s *SyncService) markRunning(ctx context.Context, at time.Time) {
	if s.state == nil {
		return
	}
	if err := s.state.MarkRunning(ctx, models.SyncTypeCatalog, at); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record sync start")
	}
}

func (s *SyncService) fail(ctx context.Context, started time.Time, err error) error {
	outcome := "failed"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome = "cancelled"
	}
	s.metrics.ObserveSyncRun(outcome, s.now().Sub(started))
	s.logger.Error().Err(err).Str("outcome", outcome).Msg("catalog synchronization abandoned")

	if s.state != nil {
		if stateErr := s.state.MarkFailed(context.WithoutCancel(ctx), models.SyncTypeCatalog, err); stateErr != nil {
			s.logger.Warn().Err(stateErr).Msg("failed to record sync failure")
		}
	}
	return err
}

func (s *SyncService) succeed(ctx context.Context, started time.Time, result SyncResult) {
	elapsed := s.now().Sub(started)
	s.metrics.ObserveSyncRun("completed", elapsed)
	s.metrics.SetSyncChanges("inserted", result.Inserted)
	s.metrics.SetSyncChanges("updated", result.Updated)
	s.metrics.SetSyncChanges("deleted", result.Deleted)
	s.metrics.SetSyncChanges("unchanged", result.Unchanged)
	s.metrics.SetSyncChanges("skipped", result.Skipped)

	event := s.logger.Info()
	if result.Regressions > 0 {
		event = s.logger.Warn()
	}
	event.
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Int("unchanged", result.Unchanged).
		Int("skipped", result.Skipped).
		Int("regressions", result.Regressions).
		Dur("elapsed", elapsed).
		Msg("catalog synchronization completed")

	if s.state == nil {
		return
	}
	metadata, err := json.Marshal(result)
	if err != nil {
		metadata = []byte("{}")
	}
	if err := s.state.MarkCompleted(context.WithoutCancel(ctx), models.SyncTypeCatalog, s.now(), string(metadata)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record sync success")
	}
}
