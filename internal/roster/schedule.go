package roster

import (
	"bytes"
	"encoding/json"
)

// Day is one competition day's entries, sorted by start time.
type Day struct {
	Name    string
	Entries []Entry
}

// Schedule is an ordered day → entries mapping. Days keep the order in which
// they first appear in the source schedule; no day is ever empty.
type Schedule struct {
	Days []Day
}

// Empty reports whether the schedule has no days.
func (s Schedule) Empty() bool {
	return len(s.Days) == 0
}

// Len returns the total number of entries across all days.
func (s Schedule) Len() int {
	n := 0
	for _, d := range s.Days {
		n += len(d.Entries)
	}
	return n
}

// Day returns the entries of the named day.
func (s Schedule) Day(name string) ([]Entry, bool) {
	for _, d := range s.Days {
		if d.Name == name {
			return d.Entries, true
		}
	}
	return nil, false
}

// DayNames returns the day names in schedule order.
func (s Schedule) DayNames() []string {
	names := make([]string, len(s.Days))
	for i, d := range s.Days {
		names[i] = d.Name
	}
	return names
}

// MarshalJSON encodes the schedule as a JSON object keyed by day name,
// preserving day order.
func (s Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range s.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		entries := d.Entries
		if entries == nil {
			entries = []Entry{}
		}
		val, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
