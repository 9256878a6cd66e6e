package jikan

import (
	"context"
	"time"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/shared"

	"github.com/stretchr/testify/mock"
)

type mockAnimeRepository struct {
	mock.Mock
}

func (m *mockAnimeRepository) ListIndexedAnime(ctx context.Context) ([]models.IndexedAnime, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.IndexedAnime), args.Error(1)
}

func (m *mockAnimeRepository) ListByStatus(ctx context.Context, status *shared.AiringStatus) ([]models.IndexedAnime, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.IndexedAnime), args.Error(1)
}

func (m *mockAnimeRepository) FindByID(ctx context.Context, id int64) (*models.IndexedAnime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IndexedAnime), args.Error(1)
}

func (m *mockAnimeRepository) FindByMalID(ctx context.Context, malID int) (*models.IndexedAnime, error) {
	args := m.Called(ctx, malID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IndexedAnime), args.Error(1)
}

func (m *mockAnimeRepository) UpsertIndexedAnime(ctx context.Context, inserts, updates []models.IndexedAnime) (int64, error) {
	args := m.Called(ctx, inserts, updates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnimeRepository) DeleteFinishedAiring(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Transaction runs fn against the mock itself.
func (m *mockAnimeRepository) Transaction(ctx context.Context, fn func(tx repository.AnimeRepository) error) error {
	m.Called(ctx)
	return fn(m)
}

type mockSyncStateRepository struct {
	mock.Mock
}

func (m *mockSyncStateRepository) Get(ctx context.Context, syncType string) (*models.SyncState, error) {
	args := m.Called(ctx, syncType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncState), args.Error(1)
}

func (m *mockSyncStateRepository) MarkRunning(ctx context.Context, syncType string, at time.Time) error {
	return m.Called(ctx, syncType, at).Error(0)
}

func (m *mockSyncStateRepository) MarkCompleted(ctx context.Context, syncType string, at time.Time, metadata string) error {
	return m.Called(ctx, syncType, at, metadata).Error(0)
}

func (m *mockSyncStateRepository) MarkFailed(ctx context.Context, syncType string, cause error) error {
	return m.Called(ctx, syncType, cause).Error(0)
}

type staticSource struct {
	records []Anime
	err     error
	calls   int
}

func (s *staticSource) FetchSnapshot(_ context.Context) ([]Anime, error) {
	s.calls++
	return s.records, s.err
}
