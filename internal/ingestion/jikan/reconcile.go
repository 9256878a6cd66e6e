package jikan

import (
	"sort"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"
)

// ChangeSet is the staged result of comparing a snapshot with the store.
type ChangeSet struct {
	Inserts   []models.IndexedAnime
	Updates   []models.IndexedAnime
	Unchanged int
	// Regressions counts updates that move a status backwards, which only
	// happens on catalog corrections.
	Regressions int
	// FinishedFlagged counts updates that move an entry to finished airing.
	FinishedFlagged int
}

// Reconcile is pure: persisted entries missing from the snapshot are left
// alone, and finished drafts that were never persisted are dropped.
func Reconcile(drafts map[int]Draft, persisted []models.IndexedAnime) ChangeSet {
	var cs ChangeSet
	matched := make(map[int]struct{}, len(persisted))

	for _, existing := range persisted {
		draft, ok := drafts[existing.MalID]
		if !ok {
			continue
		}
		matched[existing.MalID] = struct{}{}

		if sameFields(existing, draft) {
			cs.Unchanged++
			continue
		}

		if existing.Status.Rank() > draft.Status.Rank() {
			cs.Regressions++
		}
		if draft.Status == shared.StatusFinishedAiring && existing.Status != shared.StatusFinishedAiring {
			cs.FinishedFlagged++
		}
		cs.Updates = append(cs.Updates, merge(existing, draft))
	}

	for malID, draft := range drafts {
		if _, ok := matched[malID]; ok {
			continue
		}
		if draft.Status == shared.StatusFinishedAiring {
			continue
		}
		cs.Inserts = append(cs.Inserts, merge(models.IndexedAnime{}, draft))
	}
	sort.Slice(cs.Inserts, func(i, j int) bool { return cs.Inserts[i].MalID < cs.Inserts[j].MalID })

	return cs
}

// merge copies the draft's values onto the persisted identity.
func merge(identity models.IndexedAnime, d Draft) models.IndexedAnime {
	identity.MalID = d.MalID
	identity.Title = d.Title
	identity.ImageURL = d.ImageURL
	identity.Status = d.Status
	identity.TotalEpisodes = copyInt(d.TotalEpisodes)
	identity.ReleaseInstant = d.ReleaseInstant.UTC()
	identity.BroadcastWeekday = copyWeekday(d.BroadcastWeekday)
	return identity
}

func sameFields(a models.IndexedAnime, d Draft) bool {
	return a.Title == d.Title &&
		a.ImageURL == d.ImageURL &&
		a.Status == d.Status &&
		equalInt(a.TotalEpisodes, d.TotalEpisodes) &&
		a.ReleaseInstant.Equal(d.ReleaseInstant) &&
		equalWeekday(a.BroadcastWeekday, d.BroadcastWeekday)
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalWeekday(a, b *shared.Weekday) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyWeekday(p *shared.Weekday) *shared.Weekday {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
