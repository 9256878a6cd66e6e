package repository

import (
	"context"
	"time"

	"animeschedule/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncStateRepository interface {
	Get(ctx context.Context, syncType string) (*models.SyncState, error)
	MarkRunning(ctx context.Context, syncType string, at time.Time) error
	MarkCompleted(ctx context.Context, syncType string, at time.Time, metadata string) error
	MarkFailed(ctx context.Context, syncType string, cause error) error
}

type syncStateRepository struct {
	db *gorm.DB
}

func NewSyncStateRepository(db *gorm.DB) SyncStateRepository {
	return &syncStateRepository{db: db}
}

func (r *syncStateRepository) Get(ctx context.Context, syncType string) (*models.SyncState, error) {
	var state models.SyncState
	if err := r.db.WithContext(ctx).Where("sync_type = ?", syncType).First(&state).Error; err != nil {
		return nil, translateError("get sync state", err)
	}
	return &state, nil
}

// upsert creates the row for state.SyncType on first use and afterwards
// overwrites only the named columns.
func (r *syncStateRepository) upsert(ctx context.Context, state models.SyncState, columns ...string) error {
	if state.Metadata == "" {
		state.Metadata = "{}"
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sync_type"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(&state).Error
	return translateError("update sync state", err)
}

func (r *syncStateRepository) MarkRunning(ctx context.Context, syncType string, at time.Time) error {
	return r.upsert(ctx, models.SyncState{
		SyncType:  syncType,
		LastRunAt: &at,
		Status:    models.SyncStatusRunning,
	}, "last_run_at", "status")
}

func (r *syncStateRepository) MarkCompleted(ctx context.Context, syncType string, at time.Time, metadata string) error {
	return r.upsert(ctx, models.SyncState{
		SyncType:      syncType,
		LastRunAt:     &at,
		LastSuccessAt: &at,
		Status:        models.SyncStatusCompleted,
		Metadata:      metadata,
	}, "last_success_at", "status", "error_message", "metadata")
}

func (r *syncStateRepository) MarkFailed(ctx context.Context, syncType string, cause error) error {
	state := models.SyncState{SyncType: syncType, Status: models.SyncStatusFailed}
	if cause != nil {
		state.ErrorMessage = cause.Error()
	}
	return r.upsert(ctx, state, "status", "error_message")
}
