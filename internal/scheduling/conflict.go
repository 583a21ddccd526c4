package scheduling

import (
	"cmp"
	"slices"
)

type SlotKind string

const (
	SlotAppointment SlotKind = "appointment"
	SlotTimeBlock   SlotKind = "time_block"
)

// Slot is an occupied range on a coach's calendar for one date.
type Slot struct {
	ID       int64
	Kind     SlotKind
	Interval Interval
}

// Exclusion names the record being edited so it never conflicts with itself.
type Exclusion struct {
	Kind SlotKind
	ID   int64
}

func (e Exclusion) Matches(slot Slot) bool {
	return e.ID != 0 && e.Kind == slot.Kind && e.ID == slot.ID
}

// FindConflict returns the first slot that overlaps the candidate.
func FindConflict(candidate Interval, existing []Slot, exclude Exclusion) (Slot, bool) {
	for _, slot := range existing {
		if exclude.Matches(slot) {
			continue
		}
		if candidate.Overlaps(slot.Interval) {
			return slot, true
		}
	}
	return Slot{}, false
}

// FreeIntervals returns the gaps inside window that no slot occupies,
// in ascending order.
func FreeIntervals(window Interval, occupied []Slot) []Interval {
	busy := make([]Interval, 0, len(occupied))
	for _, slot := range occupied {
		if slot.Interval.Overlaps(window) {
			busy = append(busy, slot.Interval)
		}
	}
	slices.SortFunc(busy, func(a, b Interval) int { return cmp.Compare(a.Start, b.Start) })

	free := make([]Interval, 0)
	cursor := window.Start
	for _, b := range busy {
		if b.Start > cursor {
			free = append(free, Interval{Start: cursor, End: min(b.Start, window.End)})
		}
		if b.End > cursor {
			cursor = b.End
		}
		if cursor >= window.End {
			break
		}
	}
	if cursor < window.End {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}
