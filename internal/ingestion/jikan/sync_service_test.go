package jikan

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"
	"animeschedule/internal/zonetime"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSyncService(source CatalogSource, anime *mockAnimeRepository, state *mockSyncStateRepository) *SyncService {
	n := NewNormalizer(zonetime.NewRegistry(), zonetime.Lenient, nil, zerolog.Nop())
	if state == nil {
		return NewSyncService(source, n, anime, nil, nil, zerolog.Nop())
	}
	return NewSyncService(source, n, anime, state, nil, zerolog.Nop())
}

func TestSynchronizeCatalog_InsertsNewAnime(t *testing.T) {
	ctx := context.Background()
	anime := new(mockAnimeRepository)
	state := new(mockSyncStateRepository)

	anime.On("Transaction", ctx).Return()
	anime.On("ListIndexedAnime", ctx).Return([]models.IndexedAnime{}, nil)
	anime.On("UpsertIndexedAnime", ctx, mock.MatchedBy(func(in []models.IndexedAnime) bool {
		return len(in) == 2 && in[0].MalID == 1 && in[1].MalID == 2
	}), mock.Anything).Return(int64(2), nil)
	anime.On("DeleteFinishedAiring", ctx).Return(int64(0), nil)

	state.On("MarkRunning", ctx, models.SyncTypeCatalog, mock.Anything).Return(nil)
	state.On("MarkCompleted", mock.Anything, models.SyncTypeCatalog, mock.Anything, mock.MatchedBy(func(meta string) bool {
		return meta != "" && meta != "{}"
	})).Return(nil)

	svc := newTestSyncService(&staticSource{records: []Anime{rawAnime(2), rawAnime(1)}}, anime, state)

	result, err := svc.SynchronizeCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Inserted: 2}, result)
	anime.AssertExpectations(t)
	state.AssertExpectations(t)
}

func TestSynchronizeCatalog_UpdatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	n := NewNormalizer(zonetime.NewRegistry(), zonetime.Lenient, nil, zerolog.Nop())

	unchanged, err := n.Normalize(rawAnime(1))
	require.NoError(t, err)
	finishing := rawAnime(2)
	finishing.Status = "Finished Airing"
	previous, err := n.Normalize(rawAnime(2))
	require.NoError(t, err)

	stored := []models.IndexedAnime{
		merge(models.IndexedAnime{ID: 1}, unchanged),
		merge(models.IndexedAnime{ID: 2}, previous),
		merge(models.IndexedAnime{ID: 3}, draft(99, shared.StatusNotYetAired, 1)),
	}

	anime := new(mockAnimeRepository)
	anime.On("Transaction", ctx).Return()
	anime.On("ListIndexedAnime", ctx).Return(stored, nil)
	anime.On("UpsertIndexedAnime", ctx, []models.IndexedAnime(nil), mock.MatchedBy(func(up []models.IndexedAnime) bool {
		return len(up) == 1 && up[0].ID == 2 && up[0].Status == shared.StatusFinishedAiring
	})).Return(int64(1), nil)
	anime.On("DeleteFinishedAiring", ctx).Return(int64(1), nil)

	svc := newTestSyncService(&staticSource{records: []Anime{rawAnime(1), finishing}}, anime, nil)

	result, err := svc.SynchronizeCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Updated: 1, Deleted: 1, Unchanged: 1}, result)
	anime.AssertExpectations(t)
}

func TestSynchronizeCatalog_UpstreamFailure(t *testing.T) {
	ctx := context.Background()
	anime := new(mockAnimeRepository)
	state := new(mockSyncStateRepository)
	state.On("MarkRunning", ctx, models.SyncTypeCatalog, mock.Anything).Return(nil)
	state.On("MarkFailed", mock.Anything, models.SyncTypeCatalog, mock.Anything).Return(nil)

	source := &staticSource{err: fmt.Errorf("%w: timeout", shared.ErrUpstreamUnavailable)}
	svc := newTestSyncService(source, anime, state)

	_, err := svc.SynchronizeCatalog(ctx)
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
	anime.AssertNotCalled(t, "Transaction", mock.Anything)
	state.AssertExpectations(t)
}

func TestSynchronizeCatalog_DuplicateAbortsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	anime := new(mockAnimeRepository)

	svc := newTestSyncService(&staticSource{records: []Anime{rawAnime(1), rawAnime(1)}}, anime, nil)

	_, err := svc.SynchronizeCatalog(ctx)
	assert.ErrorIs(t, err, shared.ErrDuplicateCatalogID)
	anime.AssertNotCalled(t, "Transaction", mock.Anything)
}

func TestSynchronizeCatalog_CommitFailureIsPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	anime := new(mockAnimeRepository)
	anime.On("Transaction", ctx).Return()
	anime.On("ListIndexedAnime", ctx).Return([]models.IndexedAnime{}, nil)
	anime.On("UpsertIndexedAnime", ctx, mock.Anything, mock.Anything).Return(int64(0), errors.New("deadlock detected"))

	svc := newTestSyncService(&staticSource{records: []Anime{rawAnime(1)}}, anime, nil)

	result, err := svc.SynchronizeCatalog(ctx)
	assert.ErrorIs(t, err, shared.ErrPersistenceFailure)
	assert.Equal(t, SyncResult{}, result)
	anime.AssertNotCalled(t, "DeleteFinishedAiring", mock.Anything)
}

func TestSynchronizeCatalog_CancelledBeforeCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	anime := new(mockAnimeRepository)

	svc := newTestSyncService(&staticSource{records: []Anime{rawAnime(1)}}, anime, nil)

	_, err := svc.SynchronizeCatalog(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	anime.AssertNotCalled(t, "Transaction", mock.Anything)
}

func TestSynchronizeCatalog_SkippedRecordsCounted(t *testing.T) {
	ctx := context.Background()
	bad := rawAnime(2)
	bad.Aired.From = nil

	anime := new(mockAnimeRepository)
	anime.On("Transaction", ctx).Return()
	anime.On("ListIndexedAnime", ctx).Return([]models.IndexedAnime{}, nil)
	anime.On("UpsertIndexedAnime", ctx, mock.Anything, mock.Anything).Return(int64(1), nil)
	anime.On("DeleteFinishedAiring", ctx).Return(int64(0), nil)

	svc := newTestSyncService(&staticSource{records: []Anime{rawAnime(1), bad}}, anime, nil)

	result, err := svc.SynchronizeCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
}
