// Package zonetime converts between absolute instants and zoned wall-clock
// date-times using the IANA timezone database.
package zonetime

import (
	"fmt"
	"strings"
	"sync"
	"time"
	// embedded so lookups never depend on the host's zoneinfo
	_ "time/tzdata"

	"animeschedule/internal/shared"
)

// Registry caches loaded zones so every lookup in the process sees the same
// tzdata.
type Registry struct {
	mu    sync.RWMutex
	zones map[string]*time.Location
}

func NewRegistry() *Registry {
	return &Registry{zones: make(map[string]*time.Location)}
}

// Load resolves an IANA zone identifier. "" and "Local" are rejected: they
// are not zone names and would silently bind to the server's zone.
func (r *Registry) Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownTimeZone, name)
	}

	r.mu.RLock()
	loc, ok := r.zones[name]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownTimeZone, name)
	}

	r.mu.Lock()
	if cached, ok := r.zones[name]; ok {
		loc = cached
	} else {
		r.zones[name] = loc
	}
	r.mu.Unlock()
	return loc, nil
}

// Validate reports whether name is a loadable IANA zone.
func (r *Registry) Validate(name string) error {
	_, err := r.Load(name)
	return err
}

// Date is a calendar date with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d Date) Weekday() shared.Weekday {
	return shared.WeekdayOf(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// LocalDateTime is a calendar date plus wall-clock time, second precision.
type LocalDateTime struct {
	Date
	Hour   int
	Minute int
	Second int
}

// At combines a date with a minute-precision wall-clock time.
func At(d Date, t shared.LocalTime) LocalDateTime {
	return LocalDateTime{Date: d, Hour: t.Hour, Minute: t.Minute}
}

// TimeOfDay truncates to minute precision.
func (l LocalDateTime) TimeOfDay() shared.LocalTime {
	return shared.LocalTime{Hour: l.Hour, Minute: l.Minute}
}

func (l LocalDateTime) String() string {
	return fmt.Sprintf("%s %02d:%02d:%02d", l.Date, l.Hour, l.Minute, l.Second)
}

// naive reads the wall clock as if it were UTC.
func (l LocalDateTime) naive() time.Time {
	return time.Date(l.Year, l.Month, l.Day, l.Hour, l.Minute, l.Second, 0, time.UTC)
}

func localOf(t time.Time) LocalDateTime {
	return LocalDateTime{
		Date:   DateOf(t),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// FromInstant returns the wall clock in loc. Always unambiguous.
func FromInstant(instant time.Time, loc *time.Location) LocalDateTime {
	return localOf(instant.In(loc))
}

// candidates returns every instant whose wall clock in loc equals l, in
// ascending order: none for a DST gap, two for an overlap.
func candidates(l LocalDateTime, loc *time.Location) []time.Time {
	naive := l.naive()
	var out []time.Time
	seen := make(map[int]bool, 3)
	for _, probe := range []time.Time{naive.Add(-24 * time.Hour), naive, naive.Add(24 * time.Hour)} {
		_, offset := probe.In(loc).Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true

		c := naive.Add(-time.Duration(offset) * time.Second)
		if localOf(c.In(loc)) == l {
			out = append(out, c)
		}
	}
	if len(out) == 2 && out[1].Before(out[0]) {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

// ResolveStrict maps l to an instant, failing with ErrInvalidLocalTime when
// the wall clock is skipped or repeated by a transition in loc.
func ResolveStrict(l LocalDateTime, loc *time.Location) (time.Time, error) {
	c := candidates(l, loc)
	switch len(c) {
	case 1:
		return c[0].UTC(), nil
	case 0:
		return time.Time{}, fmt.Errorf("%w: %s is skipped in %s", shared.ErrInvalidLocalTime, l, loc)
	default:
		return time.Time{}, fmt.Errorf("%w: %s is ambiguous in %s", shared.ErrInvalidLocalTime, l, loc)
	}
}

// ResolveLenient never fails: an ambiguous wall clock takes the earlier
// instant, a skipped one is shifted forward by the length of the gap.
func ResolveLenient(l LocalDateTime, loc *time.Location) time.Time {
	c := candidates(l, loc)
	if len(c) > 0 {
		return c[0].UTC()
	}
	naive := l.naive()
	_, before := naive.Add(-24 * time.Hour).In(loc).Zone()
	return naive.Add(-time.Duration(before) * time.Second).UTC()
}

// Policy selects between strict and lenient resolution.
type Policy string

const (
	Strict  Policy = "strict"
	Lenient Policy = "lenient"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case Strict:
		return Strict, nil
	case Lenient:
		return Lenient, nil
	}
	return "", fmt.Errorf("unknown resolution policy %q", s)
}

// Resolve applies the policy.
func (p Policy) Resolve(l LocalDateTime, loc *time.Location) (time.Time, error) {
	if p == Strict {
		return ResolveStrict(l, loc)
	}
	return ResolveLenient(l, loc), nil
}
