package models

import "time"

// SyncState represents a sync operation state in the database
type SyncState struct {
	ID            int    `gorm:"primaryKey"`
	SyncType      string `gorm:"unique;not null"`
	LastRunAt     *time.Time
	LastSuccessAt *time.Time
	Status        string
	ErrorMessage  string
	Metadata      string `gorm:"type:jsonb;default:'{}'"`
	UpdatedAt     time.Time
}

// TableName specifies the table name for SyncState
func (SyncState) TableName() string {
	return "sync_state"
}

const (
	SyncTypeCatalog = "catalog"

	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)
