package notifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/roster"
)

// Channel message limits, in characters.
const (
	TwitterLimit  = 280
	TelegramLimit = 4096
)

const ellipsis = "…"

// Notifier posts a batch of messages to one channel.
type Notifier interface {
	Notify(ctx context.Context, messages []string) error
}

// FormatDay builds the announcement for one competition day: a header line
// followed by one "HH:MM  name (category, mat)" line per entry. The result
// is cut to limit characters; a limit of zero or less disables the cut.
func FormatDay(c club.Club, day string, entries []roster.Entry, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🥋 %s | %s\n", c.DisplayName, day)
	for _, e := range entries {
		start, ok := roster.StartKey(e.TimeRange)
		if !ok {
			start = e.TimeRange
		}
		fmt.Fprintf(&b, "\n%s  %s (%s, %s)", start, e.FullName, e.Category, e.Mat)
	}
	return truncate(b.String(), limit)
}

// FormatSchedule formats every day of s, in schedule order.
func FormatSchedule(c club.Club, s roster.Schedule, limit int) []string {
	messages := make([]string, 0, len(s.Days))
	for _, d := range s.Days {
		messages = append(messages, FormatDay(c, d.Name, d.Entries, limit))
	}
	return messages
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit-1]), " \n") + ellipsis
}
