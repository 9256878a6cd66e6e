package service

import (
	"context"
	"time"

	"animeschedule/internal/ingestion/jikan"
	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/shared"
)

// SyncRunner is the part of the catalog scheduler the API drives.
type SyncRunner interface {
	RunNow(ctx context.Context) (jikan.SyncResult, error)
	NextRun() time.Time
}

type CatalogService interface {
	ListAnime(ctx context.Context, status *shared.AiringStatus) ([]models.IndexedAnime, error)
	GetAnime(ctx context.Context, id int64) (*models.IndexedAnime, error)
	TriggerSync(ctx context.Context) (jikan.SyncResult, error)
	NextSync() time.Time
}

type catalogService struct {
	anime  repository.AnimeRepository
	runner SyncRunner
}

// NewCatalogService wires the read side of the catalog. runner may be nil,
// in which case TriggerSync reports shared.ErrUpstreamUnavailable.
func NewCatalogService(anime repository.AnimeRepository, runner SyncRunner) CatalogService {
	return &catalogService{anime: anime, runner: runner}
}

func (s *catalogService) ListAnime(ctx context.Context, status *shared.AiringStatus) ([]models.IndexedAnime, error) {
	return s.anime.ListByStatus(ctx, status)
}

func (s *catalogService) GetAnime(ctx context.Context, id int64) (*models.IndexedAnime, error) {
	return s.anime.FindByID(ctx, id)
}

func (s *catalogService) TriggerSync(ctx context.Context) (jikan.SyncResult, error) {
	if s.runner == nil {
		return jikan.SyncResult{}, shared.ErrUpstreamUnavailable
	}
	return s.runner.RunNow(ctx)
}

func (s *catalogService) NextSync() time.Time {
	if s.runner == nil {
		return time.Time{}
	}
	return s.runner.NextRun()
}
