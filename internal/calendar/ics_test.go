package calendar

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/roster"
)

func testClub() club.Club {
	c, _ := club.Default().Lookup("academia_gorila_warszawa")
	return c
}

func testSchedule(t *testing.T) roster.Schedule {
	t.Helper()
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	start := time.Date(2025, 3, 8, 10, 0, 0, 0, warsaw)

	return roster.Schedule{Days: []roster.Day{
		{Name: "Sobota", Entries: []roster.Entry{
			{
				FullName:  "Jan Kowalski",
				Club:      "Academia Gorila / Warszawa",
				Category:  "Men -70kg",
				Mat:       "Mata 1",
				TimeRange: "10:00 - 10:30",
				Day:       "Sobota",
				Start:     start,
				End:       start.Add(30 * time.Minute),
			},
			{
				FullName:  "Adam Zieliński",
				Club:      "Academia Gorila / Warszawa",
				Category:  "Masters 2 -82kg",
				Mat:       "Mata 2",
				TimeRange: "12:15 - 12:45",
				Day:       "Sobota",
				Start:     start.Add(135 * time.Minute),
				End:       start.Add(165 * time.Minute),
			},
		}},
		{Name: "Niedziela", Entries: []roster.Entry{
			{
				FullName:  "Piotr Nowak",
				Category:  "Men -70kg",
				Mat:       "Mata 1",
				TimeRange: "??",
				Day:       "Niedziela",
			},
		}},
	}}
}

func TestGenerateICS(t *testing.T) {
	previous := now
	now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { now = previous }()

	ics := GenerateICS("1234-polish-open", testClub(), testSchedule(t))

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Academia Gorila//bjj-schedule//PL",
		"X-WR-CALNAME:Academia Gorila (Warszawa) - 1234-polish-open",
		"BEGIN:VEVENT",
		"DTSTAMP:20250301T120000Z",
		// 10:00 CET is 09:00 UTC.
		"DTSTART:20250308T090000Z",
		"DTEND:20250308T093000Z",
		"SUMMARY:Jan Kowalski – Men -70kg",
		"LOCATION:Mata 1",
		"DESCRIPTION:Sobota\\, 10:00 - 10:30\\nAcademia Gorila (Warszawa)",
		"URL:https://martialmatch.com/pl/events/1234-polish-open",
		"DTSTART:20250308T111500Z",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("BEGIN:VEVENT count = %d, want 2 (entry without times is skipped)", got)
	}
	if strings.Contains(ics, "Piotr Nowak") {
		t.Error("entry without start/end should not be exported")
	}

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if strings.Contains(line, "\n") {
			t.Fatalf("line %q contains a bare LF", line)
		}
	}
}

func TestGenerateICS_EmptySchedule(t *testing.T) {
	ics := GenerateICS("1234", testClub(), roster.Schedule{})

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Errorf("empty schedule should still be a valid calendar, got %q", ics)
	}
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("empty schedule should have no events")
	}
}

func TestGenerateICS_EscapesEventIDInURL(t *testing.T) {
	got := GenerateICS("1355-kids-cup?utm=feed#top", testClub(), testSchedule(t))

	if !strings.Contains(got, "URL:https://martialmatch.com/pl/events/1355-kids-cup%3Futm=feed%23top\r\n") {
		t.Errorf("URL not path-escaped:\n%s", got)
	}
}

func TestEntryUID(t *testing.T) {
	schedule := testSchedule(t)
	first := schedule.Days[0].Entries[0]
	second := schedule.Days[0].Entries[1]

	uid := EntryUID("1234", first)
	if !strings.HasSuffix(uid, "@martialmatch.com") {
		t.Errorf("EntryUID() = %q, want @martialmatch.com suffix", uid)
	}
	if len(strings.TrimSuffix(uid, "@martialmatch.com")) != 40 {
		t.Errorf("EntryUID() = %q, want 40 hex chars", uid)
	}
	if EntryUID("1234", first) != uid {
		t.Error("EntryUID() should be deterministic")
	}
	if EntryUID("1234", second) == uid {
		t.Error("different entries should have different UIDs")
	}
	if EntryUID("5678", first) == uid {
		t.Error("the same entry at another event should have a different UID")
	}
}

func TestFormatICSTime(t *testing.T) {
	warsaw, _ := time.LoadLocation("Europe/Warsaw")
	testTime := time.Date(2025, 7, 15, 14, 30, 0, 0, warsaw)

	// CEST is UTC+2.
	expected := "20250715T123000Z"
	if got := formatICSTime(testTime); got != expected {
		t.Errorf("formatICSTime() = %q, want %q", got, expected)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"Text with\r\nCRLF", "Text with\\nCRLF"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWriteLine_Folding(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"short", "SUMMARY:Jan Kowalski"},
		{"exactly 75", "X:" + strings.Repeat("a", 73)},
		{"long ascii", "DESCRIPTION:" + strings.Repeat("abcdefghij", 20)},
		{"long multibyte", "SUMMARY:" + strings.Repeat("Zieliński Wiśniewski ", 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			writeLine(&b, tt.line)
			out := b.String()

			if !strings.HasSuffix(out, "\r\n") {
				t.Fatalf("output %q does not end with CRLF", out)
			}
			physical := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
			for i, p := range physical {
				if len(p) > maxLineOctets {
					t.Errorf("physical line %d is %d octets", i, len(p))
				}
				if i > 0 && !strings.HasPrefix(p, " ") {
					t.Errorf("continuation line %d should start with a space", i)
				}
			}

			// Unfolding restores the content line.
			unfolded := strings.ReplaceAll(strings.TrimSuffix(out, "\r\n"), "\r\n ", "")
			if unfolded != tt.line {
				t.Errorf("unfolded = %q, want %q", unfolded, tt.line)
			}
		})
	}
}
