package dto

import (
	"time"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"
)

// AnimeResponse: one indexed anime as exposed by the catalog endpoints
type AnimeResponse struct {
	ID               int64               `json:"id"`
	MalID            int                 `json:"mal_id"`
	Title            string              `json:"title"`
	ImageURL         string              `json:"image_url"`
	Status           shared.AiringStatus `json:"status"`
	TotalEpisodes    *int                `json:"total_episodes,omitempty"`
	ReleaseInstant   time.Time           `json:"release_instant"`
	BroadcastWeekday *shared.Weekday     `json:"broadcast_weekday,omitempty"`
}

type AnimeListResponse struct {
	Items []AnimeResponse `json:"items"`
	Total int             `json:"total"`
}

func FromAnimeModel(a models.IndexedAnime) AnimeResponse {
	return AnimeResponse{
		ID:               a.ID,
		MalID:            a.MalID,
		Title:            a.Title,
		ImageURL:         a.ImageURL,
		Status:           a.Status,
		TotalEpisodes:    a.TotalEpisodes,
		ReleaseInstant:   a.ReleaseInstant,
		BroadcastWeekday: a.BroadcastWeekday,
	}
}

func FromAnimeModels(list []models.IndexedAnime) AnimeListResponse {
	items := make([]AnimeResponse, 0, len(list))
	for _, a := range list {
		items = append(items, FromAnimeModel(a))
	}
	return AnimeListResponse{Items: items, Total: len(items)}
}

// SyncResponse: outcome of a manually triggered catalog synchronization
type SyncResponse struct {
	Inserted    int        `json:"inserted"`
	Updated     int        `json:"updated"`
	Deleted     int        `json:"deleted"`
	Unchanged   int        `json:"unchanged"`
	Skipped     int        `json:"skipped"`
	Regressions int        `json:"regressions"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}
