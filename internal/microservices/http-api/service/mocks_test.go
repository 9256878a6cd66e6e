package service

import (
	"context"
	"time"

	"animeschedule/internal/ingestion/jikan"
	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/shared"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateTimeZone(ctx context.Context, id, timeZone string) error {
	args := m.Called(ctx, id, timeZone)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockScheduleRepository mocks the ScheduleRepository interface
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Find(ctx context.Context, userID string, animeID int64) (*models.ScheduleEntry, error) {
	args := m.Called(ctx, userID, animeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockScheduleRepository) Upsert(ctx context.Context, entry *models.ScheduleEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockScheduleRepository) Delete(ctx context.Context, userID string, animeID int64) error {
	args := m.Called(ctx, userID, animeID)
	return args.Error(0)
}

func (m *MockScheduleRepository) ListForUser(ctx context.Context, userID string) ([]models.ScheduleEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduleEntry), args.Error(1)
}

// MockAnimeRepository mocks the read side of AnimeRepository; the sync
// methods are covered in the ingestion package.
type MockAnimeRepository struct {
	mock.Mock
}

func (m *MockAnimeRepository) ListIndexedAnime(ctx context.Context) ([]models.IndexedAnime, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IndexedAnime), args.Error(1)
}

func (m *MockAnimeRepository) ListByStatus(ctx context.Context, status *shared.AiringStatus) ([]models.IndexedAnime, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IndexedAnime), args.Error(1)
}

func (m *MockAnimeRepository) FindByID(ctx context.Context, id int64) (*models.IndexedAnime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IndexedAnime), args.Error(1)
}

func (m *MockAnimeRepository) FindByMalID(ctx context.Context, malID int) (*models.IndexedAnime, error) {
	args := m.Called(ctx, malID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IndexedAnime), args.Error(1)
}

func (m *MockAnimeRepository) UpsertIndexedAnime(ctx context.Context, inserts, updates []models.IndexedAnime) (int64, error) {
	args := m.Called(ctx, inserts, updates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnimeRepository) DeleteFinishedAiring(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnimeRepository) Transaction(ctx context.Context, fn func(tx repository.AnimeRepository) error) error {
	return fn(m)
}

// MockUserDirectory mocks the UserDirectory interface
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) TimeZoneOf(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockUserDirectory) Invalidate(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockSyncRunner struct {
	mock.Mock
}

func (m *MockSyncRunner) RunNow(ctx context.Context) (jikan.SyncResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(jikan.SyncResult), args.Error(1)
}

func (m *MockSyncRunner) NextRun() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}
