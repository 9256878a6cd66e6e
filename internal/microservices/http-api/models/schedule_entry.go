package models

import (
	"time"

	"animeschedule/internal/shared"
)

// ScheduleEntry is one user's plan to watch one anime. Weekday and LocalTime
// are always resolved before the row is written.
type ScheduleEntry struct {
	UserID         string           `gorm:"primaryKey;type:uuid" json:"user_id"`
	IndexedAnimeID int64            `gorm:"primaryKey;column:indexed_anime_id" json:"anime_id"`
	Weekday        shared.Weekday   `gorm:"type:varchar(9);not null" json:"weekday"`
	LocalTime      shared.LocalTime `gorm:"column:local_time;type:char(5);not null" json:"time"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Associations
	User         *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	IndexedAnime *IndexedAnime `gorm:"foreignKey:IndexedAnimeID;constraint:OnDelete:CASCADE" json:"anime,omitempty"`
}

func (ScheduleEntry) TableName() string {
	return "schedule_entries"
}
