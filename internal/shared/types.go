package shared

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// shared types across the application
// 1st: weekday / wall-clock time used by schedule entries and the catalog
// 2nd: airing status of an indexed anime
// 3rd: auth claims structure for JWT authentication in HTTP API

// Weekday is a display weekday, Monday=0 .. Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// ParseWeekday accepts the enumeration name, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for i, name := range weekdayNames {
		if strings.EqualFold(name, s) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// WeekdayOf converts a Go weekday (Sunday=0) to the Monday-first enumeration.
func WeekdayOf(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return json.Marshal(d.String())
}

func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("weekday must be a string: %w", err)
	}
	parsed, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the weekday by name so rows stay human-inspectable.
func (d Weekday) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return d.String(), nil
}

func (d *Weekday) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseWeekday(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Weekday", src)
	}
	return nil
}

// LocalTime is a wall-clock time of day with minute precision and no zone attached.
type LocalTime struct {
	Hour   int
	Minute int
}

const localTimeLayout = "15:04"

// ParseLocalTime parses the fixed 5-character "HH:mm" form.
func ParseLocalTime(s string) (LocalTime, error) {
	if len(s) != len(localTimeLayout) {
		return LocalTime{}, fmt.Errorf("invalid local time %q: want HH:mm", s)
	}
	t, err := time.Parse(localTimeLayout, s)
	if err != nil {
		return LocalTime{}, fmt.Errorf("invalid local time %q: %w", s, err)
	}
	return LocalTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// NewLocalTime validates hour and minute.
func NewLocalTime(hour, minute int) (LocalTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return LocalTime{}, fmt.Errorf("invalid local time %02d:%02d", hour, minute)
	}
	return LocalTime{Hour: hour, Minute: minute}, nil
}

// Minutes returns the minute of the day.
func (t LocalTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t LocalTime) Before(o LocalTime) bool {
	return t.Minutes() < o.Minutes()
}

func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LocalTime) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *LocalTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseLocalTime(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		return t.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LocalTime", src)
	}
	return nil
}

// AiringStatus is stored using the catalog's own wording.
type AiringStatus string

const (
	StatusNotYetAired     AiringStatus = "Not yet aired"
	StatusCurrentlyAiring AiringStatus = "Currently Airing"
	StatusFinishedAiring  AiringStatus = "Finished Airing"
)

func ParseAiringStatus(s string) (AiringStatus, error) {
	switch AiringStatus(s) {
	case StatusNotYetAired, StatusCurrentlyAiring, StatusFinishedAiring:
		return AiringStatus(s), nil
	}
	return "", fmt.Errorf("unknown airing status %q", s)
}

// Rank orders statuses along their forward lifecycle.
func (s AiringStatus) Rank() int {
	switch s {
	case StatusNotYetAired:
		return 0
	case StatusCurrentlyAiring:
		return 1
	case StatusFinishedAiring:
		return 2
	}
	return -1
}

type AuthClaims struct {
	UserID   string `json:"user_id"`  // user identifier(UUID)
	Username string `json:"username"` // username
	Role     string `json:"role"`     // "user" or "admin"
}
