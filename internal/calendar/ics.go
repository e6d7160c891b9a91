package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/roster"
)

const (
	uidDomain = "martialmatch.com"
	// maxLineOctets is the RFC 5545 content line limit, excluding CRLF.
	maxLineOctets = 75
)

// now is replaced in tests.
var now = time.Now

// GenerateICS renders a merged schedule as an iCalendar file with one event
// per entry. Entries without a start or end instant are left out.
func GenerateICS(eventID string, c club.Club, s roster.Schedule) string {
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:-//Academia Gorila//bjj-schedule//PL")
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	writeLine(&ics, "X-WR-CALNAME:"+escapeICS(fmt.Sprintf("%s - %s", c.DisplayName, eventID)))

	stamp := formatICSTime(now())
	for _, day := range s.Days {
		for _, e := range day.Entries {
			if e.Start.IsZero() || e.End.IsZero() {
				continue
			}
			writeEvent(&ics, eventID, c, e, stamp)
		}
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String()
}

func writeEvent(ics *strings.Builder, eventID string, c club.Club, e roster.Entry, stamp string) {
	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, "UID:"+EntryUID(eventID, e))
	writeLine(ics, "DTSTAMP:"+stamp)
	writeLine(ics, "DTSTART:"+formatICSTime(e.Start))
	writeLine(ics, "DTEND:"+formatICSTime(e.End))
	writeLine(ics, "SUMMARY:"+escapeICS(fmt.Sprintf("%s – %s", e.FullName, e.Category)))
	writeLine(ics, "LOCATION:"+escapeICS(e.Mat))

	description := fmt.Sprintf("%s, %s\n%s", e.Day, e.TimeRange, c.DisplayName)
	writeLine(ics, "DESCRIPTION:"+escapeICS(description))
	writeLine(ics, fmt.Sprintf("URL:https://%s/pl/events/%s", uidDomain, url.PathEscape(eventID)))
	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "TRANSP:OPAQUE")
	writeLine(ics, "END:VEVENT")
}

// EntryUID is stable across exports so calendar clients update events in place.
func EntryUID(eventID string, e roster.Entry) string {
	key := strings.Join([]string{
		eventID,
		e.Day,
		e.FullName,
		e.Category,
		e.Mat,
		formatICSTime(e.Start),
	}, "|")
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:]) + "@" + uidDomain
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine writes one content line, folded so no physical line exceeds
// maxLineOctets. Folds never split a UTF-8 sequence.
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8Start(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines start with a space that counts toward the limit.
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func utf8Start(c byte) bool {
	return c&0xC0 != 0x80
}
