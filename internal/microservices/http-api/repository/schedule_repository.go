package repository

import (
	"context"
	"fmt"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleRepository interface {
	Find(ctx context.Context, userID string, animeID int64) (*models.ScheduleEntry, error)
	// Create fails with shared.ErrConflict when the (user, anime) key exists.
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	Upsert(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, userID string, animeID int64) error
	// ListForUser returns the user's entries joined with their anime.
	ListForUser(ctx context.Context, userID string) ([]models.ScheduleEntry, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Find(ctx context.Context, userID string, animeID int64) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND indexed_anime_id = ?", userID, animeID).
		First(&entry).Error; err != nil {
		return nil, translateError("find schedule entry", err)
	}
	return &entry, nil
}

func (r *scheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return translateError("create schedule entry", err)
	}
	return nil
}

func (r *scheduleRepository) Upsert(ctx context.Context, entry *models.ScheduleEntry) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "indexed_anime_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"weekday", "local_time", "updated_at"}),
		}).
		Create(entry).Error; err != nil {
		return translateError("upsert schedule entry", err)
	}
	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, userID string, animeID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND indexed_anime_id = ?", userID, animeID).
		Delete(&models.ScheduleEntry{})
	if result.Error != nil {
		return translateError("delete schedule entry", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete schedule entry: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *scheduleRepository) ListForUser(ctx context.Context, userID string) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	if err := r.db.WithContext(ctx).
		Preload("IndexedAnime").
		Where("user_id = ?", userID).
		Find(&entries).Error; err != nil {
		return nil, translateError("list schedule entries", err)
	}
	return entries, nil
}
