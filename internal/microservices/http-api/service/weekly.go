package service

import (
	"sort"
	"time"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"
	"animeschedule/internal/zonetime"
)

type ScheduleItem struct {
	AnimeID  int64            `json:"anime_id"`
	MalID    int              `json:"mal_id"`
	Title    string           `json:"title"`
	ImageURL string           `json:"image_url"`
	Time     shared.LocalTime `json:"time"`
	// StartsAt is omitted when the slot is skipped or repeated by a DST
	// transition this week.
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

type DaySchedule struct {
	Weekday shared.Weekday `json:"weekday"`
	Items   []ScheduleItem `json:"items"`
}

type WeeklySchedule struct {
	TimeZone  string        `json:"timezone"`
	WeekStart string        `json:"week_start"`
	Days      []DaySchedule `json:"days"`
}

type dayItem struct {
	weekday shared.Weekday
	item    ScheduleItem
}

// BuildWeeklySchedule lays the entries out on the local week containing now.
// Finished anime never appear; a not-yet-aired anime appears only once its
// release has passed. Days without items are omitted.
func BuildWeeklySchedule(entries []models.ScheduleEntry, loc *time.Location, now time.Time) WeeklySchedule {
	today := zonetime.FromInstant(now, loc)
	monday := today.Date.AddDays(-int(today.Weekday()))

	pairs := make([]dayItem, 0, len(entries))
	for _, e := range entries {
		anime := e.IndexedAnime
		if anime == nil || anime.IsFinished() {
			continue
		}
		if anime.Status != shared.StatusCurrentlyAiring && anime.ReleaseInstant.After(now) {
			continue
		}

		item := ScheduleItem{
			AnimeID:  anime.ID,
			MalID:    anime.MalID,
			Title:    anime.Title,
			ImageURL: anime.ImageURL,
			Time:     e.LocalTime,
		}
		display := zonetime.At(monday.AddDays(int(e.Weekday)), e.LocalTime)
		if startsAt, err := zonetime.ResolveStrict(display, loc); err == nil {
			item.StartsAt = &startsAt
		}
		pairs = append(pairs, dayItem{weekday: e.Weekday, item: item})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.weekday != b.weekday {
			return a.weekday < b.weekday
		}
		if a.item.Time != b.item.Time {
			return a.item.Time.Before(b.item.Time)
		}
		if a.item.Title != b.item.Title {
			return a.item.Title < b.item.Title
		}
		return a.item.AnimeID < b.item.AnimeID
	})

	days := []DaySchedule{}
	for _, p := range pairs {
		if n := len(days); n > 0 && days[n-1].Weekday == p.weekday {
			days[n-1].Items = append(days[n-1].Items, p.item)
			continue
		}
		days = append(days, DaySchedule{Weekday: p.weekday, Items: []ScheduleItem{p.item}})
	}

	return WeeklySchedule{
		TimeZone:  loc.String(),
		WeekStart: monday.String(),
		Days:      days,
	}
}
