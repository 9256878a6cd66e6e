package jikan

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSync parks every run until released.
type blockingSync struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingSync() *blockingSync {
	return &blockingSync{started: make(chan struct{}, 10), release: make(chan struct{})}
}

func (b *blockingSync) SynchronizeCatalog(ctx context.Context) (SyncResult, error) {
	b.calls.Add(1)
	b.started <- struct{}{}
	select {
	case <-b.release:
		return SyncResult{Inserted: 1}, nil
	case <-ctx.Done():
		return SyncResult{}, ctx.Err()
	}
}

func TestScheduler_RunNowRejectsOverlap(t *testing.T) {
	syncer := newBlockingSync()
	s := NewScheduler(syncer, nil, nil, SchedulerConfig{Interval: time.Hour}, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background())
		done <- err
	}()
	<-syncer.started

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, shared.ErrSyncInProgress)

	close(syncer.release)
	require.NoError(t, <-done)

	result, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.EqualValues(t, 2, syncer.calls.Load())
}

type heldLock struct{}

func (heldLock) TryAcquire(context.Context) (func(), bool, error) { return nil, false, nil }

func TestScheduler_RunNowRespectsForeignLock(t *testing.T) {
	syncer := newBlockingSync()
	s := NewScheduler(syncer, heldLock{}, nil, SchedulerConfig{Interval: time.Hour}, zerolog.Nop())

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, shared.ErrSyncInProgress)
	assert.Zero(t, syncer.calls.Load())
}

func TestScheduler_StartRunsImmediatelyWithoutHistory(t *testing.T) {
	syncer := newBlockingSync()
	close(syncer.release)
	s := NewScheduler(syncer, nil, nil, SchedulerConfig{Interval: time.Hour, RunOnStartup: true}, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "second start is rejected")

	select {
	case <-syncer.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not start")
	}

	assert.Eventually(t, func() bool {
		next := s.NextRun()
		return next.After(time.Now().Add(50 * time.Minute))
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	assert.True(t, s.NextRun().IsZero())
	s.Stop()
}

func TestScheduler_StopCancelsRunInFlight(t *testing.T) {
	syncer := newBlockingSync()
	s := NewScheduler(syncer, nil, nil, SchedulerConfig{Interval: time.Hour, RunOnStartup: true}, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	<-syncer.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not cancel the running synchronization")
	}
}

func TestScheduler_FirstRunFromSyncState(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * time.Hour)
	stale := now.Add(-30 * time.Hour)

	tests := []struct {
		name    string
		state   *models.SyncState
		err     error
		startup bool
		want    time.Time
	}{
		{"RecentSuccess", &models.SyncState{LastSuccessAt: &recent}, nil, true, recent.Add(24 * time.Hour)},
		{"StaleSuccess", &models.SyncState{LastSuccessAt: &stale}, nil, true, now},
		{"NeverSucceeded", &models.SyncState{}, nil, true, now},
		{"NoRow", nil, shared.ErrNotFound, true, now},
		{"StartupDisabled", nil, nil, false, now.Add(24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := new(mockSyncStateRepository)
			if tt.startup {
				state.On("Get", context.Background(), models.SyncTypeCatalog).Return(tt.state, tt.err)
			}

			s := NewScheduler(newBlockingSync(), nil, state, SchedulerConfig{Interval: 24 * time.Hour, RunOnStartup: tt.startup}, zerolog.Nop())
			s.now = func() time.Time { return now }

			assert.Equal(t, tt.want, s.firstRun(context.Background()))
			state.AssertExpectations(t)
		})
	}
}
