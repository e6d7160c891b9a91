package roster

import (
	"time"
)

// Participant is one competitor entered in one category.
type Participant struct {
	FullName string `json:"Imię i nazwisko"`
	Club     string `json:"Klub"`
	Category string `json:"Kategoria"`
}

// Slot is one category's scheduled block on a mat.
type Slot struct {
	Category  string    `json:"Kategoria"`
	Mat       string    `json:"Mata"`
	TimeRange string    `json:"Szacowany czas"` // "HH:MM - HH:MM" in the display timezone
	Day       string    `json:"Dzień"`
	Start     time.Time `json:"-"`
	End       time.Time `json:"-"`
}

// Tournament is one event link from a listing page.
type Tournament struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tournaments groups the active and archived listings.
type Tournaments struct {
	Active   []Tournament `json:"active"`
	Archived []Tournament `json:"archived"`
}

// Entry is a participant joined with the slot of their category.
type Entry struct {
	FullName       string    `json:"Imię i nazwisko"`
	Club           string    `json:"Klub"`
	Category       string    `json:"Kategoria"`
	Mat            string    `json:"Mata"`
	TimeRange      string    `json:"Szacowany czas"`
	Day            string    `json:"Dzień"`
	StartTimestamp int64     `json:"Start timestamp,omitempty"`
	EndTimestamp   int64     `json:"End timestamp,omitempty"`
	Start          time.Time `json:"-"`
	End            time.Time `json:"-"`
}

// NewEntry combines a participant with a slot of the same category.
func NewEntry(p Participant, s Slot) Entry {
	e := Entry{
		FullName:  p.FullName,
		Club:      p.Club,
		Category:  p.Category,
		Mat:       s.Mat,
		TimeRange: s.TimeRange,
		Day:       s.Day,
		Start:     s.Start,
		End:       s.End,
	}
	if !s.Start.IsZero() {
		e.StartTimestamp = s.Start.Unix()
	}
	if !s.End.IsZero() {
		e.EndTimestamp = s.End.Unix()
	}
	return e
}
