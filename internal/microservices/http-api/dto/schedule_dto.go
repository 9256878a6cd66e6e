package dto

import (
	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"
)

// AddScheduleEntryRequest: weekday and time are derived from the anime's
// release unless both are given.
type AddScheduleEntryRequest struct {
	MalID   int               `json:"mal_id" binding:"required,gt=0"`
	Weekday *shared.Weekday   `json:"weekday,omitempty"`
	Time    *shared.LocalTime `json:"time,omitempty"`
}

// UpdateScheduleEntryRequest: an empty body re-derives the slot.
type UpdateScheduleEntryRequest struct {
	Weekday *shared.Weekday   `json:"weekday,omitempty"`
	Time    *shared.LocalTime `json:"time,omitempty"`
}

type ScheduleEntryResponse struct {
	AnimeID int64            `json:"anime_id"`
	MalID   int              `json:"mal_id,omitempty"`
	Title   string           `json:"title,omitempty"`
	Weekday shared.Weekday   `json:"weekday"`
	Time    shared.LocalTime `json:"time"`
}

func FromScheduleEntryModel(e models.ScheduleEntry) ScheduleEntryResponse {
	resp := ScheduleEntryResponse{
		AnimeID: e.IndexedAnimeID,
		Weekday: e.Weekday,
		Time:    e.LocalTime,
	}
	if e.IndexedAnime != nil {
		resp.MalID = e.IndexedAnime.MalID
		resp.Title = e.IndexedAnime.Title
	}
	return resp
}
