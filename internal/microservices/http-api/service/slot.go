package service

import (
	"time"

	"animeschedule/internal/shared"
	"animeschedule/internal/zonetime"
)

// SlotInput is either an explicit (weekday, time) pair or a request to
// derive both from the anime's release instant. Partial input derives.
type SlotInput struct {
	explicit bool
	weekday  shared.Weekday
	time     shared.LocalTime
}

func ExplicitSlot(weekday shared.Weekday, t shared.LocalTime) SlotInput {
	return SlotInput{explicit: true, weekday: weekday, time: t}
}

func DerivedSlot() SlotInput {
	return SlotInput{}
}

// SlotFromOptional maps optional request fields onto a SlotInput: only a
// complete pair is taken verbatim.
func SlotFromOptional(weekday *shared.Weekday, t *shared.LocalTime) SlotInput {
	if weekday == nil || t == nil {
		return DerivedSlot()
	}
	return ExplicitSlot(*weekday, *t)
}

func (s SlotInput) IsExplicit() bool { return s.explicit }

// Slot is a resolved display weekday and wall-clock time.
type Slot struct {
	Weekday shared.Weekday
	Time    shared.LocalTime
}

// ResolveSlot is pure. A derived slot is the release instant seen from loc;
// loc is only read for derived input.
func ResolveSlot(in SlotInput, release time.Time, loc *time.Location) Slot {
	if in.explicit {
		return Slot{Weekday: in.weekday, Time: in.time}
	}
	local := zonetime.FromInstant(release, loc)
	return Slot{Weekday: local.Weekday(), Time: local.TimeOfDay()}
}
