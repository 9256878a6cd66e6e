package models

import (
	"time"

	"animeschedule/internal/shared"
)

// IndexedAnime is a trackable anime mirrored from the catalog. Finished
// entries are purged on the next synchronization.
type IndexedAnime struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	MalID            int                 `gorm:"column:mal_id;uniqueIndex;not null" json:"mal_id"`
	Title            string              `gorm:"not null" json:"title"`
	ImageURL         string              `gorm:"column:image_url" json:"image_url"`
	Status           shared.AiringStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalEpisodes    *int                `gorm:"column:total_episodes" json:"total_episodes,omitempty"`
	ReleaseInstant   time.Time           `gorm:"column:release_instant;type:timestamptz;not null" json:"release_instant"`
	BroadcastWeekday *shared.Weekday     `gorm:"column:broadcast_weekday;type:varchar(9)" json:"broadcast_weekday,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func (IndexedAnime) TableName() string {
	return "indexed_anime"
}

// IsFinished reports the terminal airing status.
func (a *IndexedAnime) IsFinished() bool {
	return a.Status == shared.StatusFinishedAiring
}
