package jikan

import (
	"fmt"
	"strings"
	"time"

	"animeschedule/internal/metrics"
	"animeschedule/internal/shared"
	"animeschedule/internal/zonetime"

	"github.com/rs/zerolog"
)

const (
	defaultBroadcastTime = "00:00"
	defaultBroadcastZone = "Asia/Tokyo"
	unknownTitle         = "Unknown Title"
)

// Draft is a normalized catalog record, not yet reconciled with the store.
type Draft struct {
	MalID            int
	Title            string
	ImageURL         string
	Status           shared.AiringStatus
	TotalEpisodes    *int
	ReleaseInstant   time.Time
	BroadcastWeekday *shared.Weekday
}

// SkipError marks a record that cannot be normalized. It never fails the
// batch.
type SkipError struct {
	MalID  int
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip mal_id %d (%s): %v", e.MalID, e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// Skip reasons, also used as metric labels.
const (
	ReasonMissingAirDate   = "missing_air_date"
	ReasonBadAirDate       = "unparseable_air_date"
	ReasonBadBroadcastTime = "invalid_broadcast_time"
	ReasonUnknownZone      = "unknown_time_zone"
	ReasonInvalidLocalTime = "invalid_local_time"
	ReasonUnknownStatus    = "unknown_status"
)

type Normalizer struct {
	zones   *zonetime.Registry
	policy  zonetime.Policy
	metrics metrics.Provider
	logger  zerolog.Logger
}

func NewNormalizer(zones *zonetime.Registry, policy zonetime.Policy, m metrics.Provider, logger zerolog.Logger) *Normalizer {
	if m == nil {
		m = metrics.Noop()
	}
	return &Normalizer{zones: zones, policy: policy, metrics: m, logger: logger}
}

// NormalizeSnapshot keys the snapshot by catalog id. Unusable records are
// logged and counted in skipped; a repeated catalog id fails the batch.
func (n *Normalizer) NormalizeSnapshot(records []Anime) (map[int]Draft, int, error) {
	drafts := make(map[int]Draft, len(records))
	seen := make(map[int]struct{}, len(records))
	skipped := 0

	for _, raw := range records {
		if _, dup := seen[raw.MalID]; dup {
			return nil, skipped, fmt.Errorf("%w: mal_id %d", shared.ErrDuplicateCatalogID, raw.MalID)
		}
		seen[raw.MalID] = struct{}{}

		draft, err := n.Normalize(raw)
		if err != nil {
			skipped++
			reason := "invalid"
			if se, ok := err.(*SkipError); ok {
				reason = se.Reason
			}
			n.metrics.IncSkippedRecords(reason)
			n.logger.Warn().Err(err).Int("mal_id", raw.MalID).Str("reason", reason).Msg("skipping catalog record")
			continue
		}
		drafts[draft.MalID] = draft
	}

	return drafts, skipped, nil
}

// Normalize converts one raw record. Errors are always *SkipError.
func (n *Normalizer) Normalize(raw Anime) (Draft, error) {
	skip := func(reason string, err error) (Draft, error) {
		return Draft{}, &SkipError{MalID: raw.MalID, Reason: reason, Err: err}
	}

	status, err := shared.ParseAiringStatus(raw.Status)
	if err != nil {
		return skip(ReasonUnknownStatus, err)
	}

	if raw.Aired.From == nil || strings.TrimSpace(*raw.Aired.From) == "" {
		return skip(ReasonMissingAirDate, fmt.Errorf("aired.from is empty"))
	}
	airDate, err := parseAirDate(*raw.Aired.From)
	if err != nil {
		return skip(ReasonBadAirDate, err)
	}

	broadcastTime := deref(raw.Broadcast.Time, defaultBroadcastTime)
	lt, err := shared.ParseLocalTime(broadcastTime)
	if err != nil {
		return skip(ReasonBadBroadcastTime, err)
	}

	loc, err := n.zones.Load(deref(raw.Broadcast.Timezone, defaultBroadcastZone))
	if err != nil {
		return skip(ReasonUnknownZone, err)
	}

	release, err := n.policy.Resolve(zonetime.At(airDate, lt), loc)
	if err != nil {
		return skip(ReasonInvalidLocalTime, err)
	}

	return Draft{
		MalID:            raw.MalID,
		Title:            selectTitle(raw.Titles),
		ImageURL:         selectImage(raw.Images),
		Status:           status,
		TotalEpisodes:    raw.Episodes,
		ReleaseInstant:   release,
		BroadcastWeekday: parseBroadcastDay(raw.Broadcast.Day),
	}, nil
}

var airDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseAirDate keeps the calendar date exactly as written, whatever offset
// the string carries.
func parseAirDate(s string) (zonetime.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range airDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return zonetime.DateOf(t), nil
		}
	}
	return zonetime.Date{}, fmt.Errorf("unrecognized air date %q", s)
}

func selectTitle(titles []Title) string {
	for _, want := range []string{"English", "Default"} {
		for _, t := range titles {
			if t.Type == want && t.Title != "" {
				return t.Title
			}
		}
	}
	return unknownTitle
}

func selectImage(images Images) string {
	if images.WebP.ImageURL != "" {
		return images.WebP.ImageURL
	}
	return images.JPG.ImageURL
}

// parseBroadcastDay accepts "Monday" and "Mondays" in any case.
func parseBroadcastDay(day *string) *shared.Weekday {
	if day == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*day))
	s = strings.TrimSuffix(s, "s")
	wd, err := shared.ParseWeekday(s)
	if err != nil {
		return nil
	}
	return &wd
}

func deref(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return strings.TrimSpace(*s)
}
