package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/shared"
	"animeschedule/internal/zonetime"

	"github.com/rs/zerolog"
)

type ScheduleService interface {
	GetScheduleByUser(ctx context.Context, userID string) (*WeeklySchedule, error)
	AddScheduleEntry(ctx context.Context, userID string, malID int, slot SlotInput) (*models.ScheduleEntry, error)
	UpdateScheduleEntry(ctx context.Context, userID string, animeID int64, slot SlotInput) (*models.ScheduleEntry, error)
	DeleteScheduleEntry(ctx context.Context, userID string, animeID int64) error
}

type scheduleService struct {
	schedules repository.ScheduleRepository
	anime     repository.AnimeRepository
	directory repository.UserDirectory
	zones     *zonetime.Registry
	logger    zerolog.Logger
	now       func() time.Time
}

func NewScheduleService(
	schedules repository.ScheduleRepository,
	anime repository.AnimeRepository,
	directory repository.UserDirectory,
	zones *zonetime.Registry,
	logger zerolog.Logger,
) ScheduleService {
	return &scheduleService{
		schedules: schedules,
		anime:     anime,
		directory: directory,
		zones:     zones,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *scheduleService) GetScheduleByUser(ctx context.Context, userID string) (*WeeklySchedule, error) {
	loc, err := s.userLocation(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.schedules.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	week := BuildWeeklySchedule(entries, loc, s.now())
	return &week, nil
}

func (s *scheduleService) AddScheduleEntry(ctx context.Context, userID string, malID int, slot SlotInput) (*models.ScheduleEntry, error) {
	anime, err := s.anime.FindByMalID(ctx, malID)
	if err != nil {
		return nil, err
	}
	if anime.IsFinished() {
		return nil, fmt.Errorf("%w: anime %d has finished airing", shared.ErrInvalidState, malID)
	}

	if _, err := s.schedules.Find(ctx, userID, anime.ID); err == nil {
		return nil, fmt.Errorf("%w: anime %d is already scheduled", shared.ErrConflict, malID)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	resolved, err := s.resolve(ctx, userID, anime, slot)
	if err != nil {
		return nil, err
	}

	entry := &models.ScheduleEntry{
		UserID:         userID,
		IndexedAnimeID: anime.ID,
		Weekday:        resolved.Weekday,
		LocalTime:      resolved.Time,
	}
	// a concurrent add lands here as a unique violation, i.e. ErrConflict
	if err := s.schedules.Create(ctx, entry); err != nil {
		return nil, err
	}

	entry.IndexedAnime = anime
	s.logger.Debug().
		Str("user_id", userID).
		Int("mal_id", malID).
		Str("weekday", resolved.Weekday.String()).
		Str("time", resolved.Time.String()).
		Bool("derived", !slot.IsExplicit()).
		Msg("schedule entry added")
	return entry, nil
}

func (s *scheduleService) UpdateScheduleEntry(ctx context.Context, userID string, animeID int64, slot SlotInput) (*models.ScheduleEntry, error) {
	entry, err := s.schedules.Find(ctx, userID, animeID)
	if err != nil {
		return nil, err
	}

	anime, err := s.anime.FindByID(ctx, animeID)
	if err != nil {
		return nil, err
	}
	if anime.IsFinished() {
		return nil, fmt.Errorf("%w: anime %d has finished airing", shared.ErrInvalidState, anime.MalID)
	}

	resolved, err := s.resolve(ctx, userID, anime, slot)
	if err != nil {
		return nil, err
	}

	entry.Weekday = resolved.Weekday
	entry.LocalTime = resolved.Time
	if err := s.schedules.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	entry.IndexedAnime = anime
	return entry, nil
}

func (s *scheduleService) DeleteScheduleEntry(ctx context.Context, userID string, animeID int64) error {
	return s.schedules.Delete(ctx, userID, animeID)
}

// resolve only consults the user's zone when the slot has to be derived.
func (s *scheduleService) resolve(ctx context.Context, userID string, anime *models.IndexedAnime, slot SlotInput) (Slot, error) {
	if slot.IsExplicit() {
		return ResolveSlot(slot, anime.ReleaseInstant, nil), nil
	}
	loc, err := s.userLocation(ctx, userID)
	if err != nil {
		return Slot{}, err
	}
	return ResolveSlot(slot, anime.ReleaseInstant, loc), nil
}

func (s *scheduleService) userLocation(ctx context.Context, userID string) (*time.Location, error) {
	zone, err := s.directory.TimeZoneOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.zones.Load(zone)
}
