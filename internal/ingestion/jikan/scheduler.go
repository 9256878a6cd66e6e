package jikan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/shared"

	"github.com/rs/zerolog"
)

type Synchronizer interface {
	SynchronizeCatalog(ctx context.Context) (SyncResult, error)
}

type SchedulerConfig struct {
	Interval time.Duration
	// RunOnStartup runs at once when the last success is older than
	// Interval; otherwise the first run waits a full interval.
	RunOnStartup bool
}

// Scheduler runs catalog synchronization on a fixed cadence and never lets
// two runs overlap.
type Scheduler struct {
	sync   Synchronizer
	lock   RunLock
	state  repository.SyncStateRepository
	cfg    SchedulerConfig
	logger zerolog.Logger
	now    func() time.Time

	running atomic.Bool

	mu      sync.Mutex
	nextRun time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler builds a stopped scheduler. lock and state may be nil.
func NewScheduler(s Synchronizer, lock RunLock, state repository.SyncStateRepository, cfg SchedulerConfig, logger zerolog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if lock == nil {
		lock = NewLocalRunLock()
	}
	return &Scheduler{
		sync:   s,
		lock:   lock,
		state:  state,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start launches the loop. It returns an error if already started.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("scheduler already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.nextRun = s.firstRun(loopCtx)

	go s.loop(loopCtx, s.done)
	s.logger.Info().Time("next_run", s.nextRun).Dur("interval", s.cfg.Interval).Msg("catalog scheduler started")
	return nil
}

// Stop cancels the loop, including a run in flight, and waits for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.mu.Lock()
	s.nextRun = time.Time{}
	s.mu.Unlock()
	s.logger.Info().Msg("catalog scheduler stopped")
}

// NextRun is zero while the scheduler is stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// RunNow synchronizes immediately unless a run is already in flight here
// or in another process, in which case it returns shared.ErrSyncInProgress.
func (s *Scheduler) RunNow(ctx context.Context) (SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SyncResult{}, shared.ErrSyncInProgress
	}
	defer s.running.Store(false)

	release, acquired, err := s.lock.TryAcquire(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("run lock: %w", err)
	}
	if !acquired {
		return SyncResult{}, shared.ErrSyncInProgress
	}
	defer release()

	return s.sync.SynchronizeCatalog(ctx)
}

func (s *Scheduler) firstRun(ctx context.Context) time.Time {
	now := s.now()
	if !s.cfg.RunOnStartup {
		return now.Add(s.cfg.Interval)
	}
	if s.state == nil {
		return now
	}

	state, err := s.state.Get(ctx, models.SyncTypeCatalog)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("could not read sync state, running now")
		}
		return now
	}
	if state.LastSuccessAt == nil {
		return now
	}
	if next := state.LastSuccessAt.Add(s.cfg.Interval); next.After(now) {
		return next
	}
	return now
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		wait := s.NextRun().Sub(s.now())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.RunNow(ctx); err != nil {
			if errors.Is(err, shared.ErrSyncInProgress) {
				s.logger.Info().Msg("catalog synchronization already running, skipping tick")
			} else if ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("scheduled catalog synchronization failed")
			}
		}
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		s.nextRun = s.now().Add(s.cfg.Interval)
		next := s.nextRun
		s.mu.Unlock()
		s.logger.Debug().Time("next_run", next).Msg("catalog synchronization rescheduled")
	}
}
