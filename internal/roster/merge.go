package roster

import (
	"regexp"
	"sort"
)

var startTimePattern = regexp.MustCompile(`(\d{2}:\d{2}) -`)

// StartKey extracts the start "HH:MM" from a "HH:MM - HH:MM" range.
// ok is false when the range has no recognizable start.
func StartKey(timeRange string) (key string, ok bool) {
	m := startTimePattern.FindStringSubmatch(timeRange)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Merge joins participants to slots on category and groups the result by day.
//
// Days appear in the order they first occur in slots. Within a day, rows are
// produced participant by participant (then slot by slot) and stable-sorted by
// start time, so ties keep that order. Rows whose time range has no start sort
// last. Days with no matching participant are omitted.
func Merge(participants []Participant, slots []Slot) Schedule {
	if len(slots) == 0 {
		return Schedule{}
	}

	var order []string
	byDay := make(map[string][]Slot)
	for _, s := range slots {
		if _, seen := byDay[s.Day]; !seen {
			order = append(order, s.Day)
		}
		byDay[s.Day] = append(byDay[s.Day], s)
	}

	var out Schedule
	for _, day := range order {
		entries := joinDay(participants, byDay[day])
		if len(entries) == 0 {
			continue
		}
		sortByStart(entries)
		out.Days = append(out.Days, Day{Name: day, Entries: entries})
	}
	return out
}

func joinDay(participants []Participant, daySlots []Slot) []Entry {
	var entries []Entry
	for _, p := range participants {
		for _, s := range daySlots {
			if s.Category == p.Category {
				entries = append(entries, NewEntry(p, s))
			}
		}
	}
	return entries
}

func sortByStart(entries []Entry) {
	type keyed struct {
		key string
		ok  bool
	}
	keys := make([]keyed, len(entries))
	for i, e := range entries {
		k, ok := StartKey(e.TimeRange)
		keys[i] = keyed{k, ok}
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.ok != kb.ok {
			return ka.ok
		}
		return ka.key < kb.key
	})

	sorted := make([]Entry, len(entries))
	for i, j := range idx {
		sorted[i] = entries[j]
	}
	copy(entries, sorted)
}
