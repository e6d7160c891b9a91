package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/academiagorila/bjj-schedule/internal/calendar"
	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/roster"
	"github.com/academiagorila/bjj-schedule/internal/service"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// scheduleOutput is the JSON shape of the schedule command, matching the
// /api/participants response.
type scheduleOutput struct {
	EventID  string          `json:"event_id"`
	ClubID   string          `json:"club_id"`
	Schedule roster.Schedule `json:"schedule"`
	Message  string          `json:"message,omitempty"`
}

// WriteTournaments writes both tournament listings in the specified format
func WriteTournaments(w io.Writer, t roster.Tournaments, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, map[string]roster.Tournaments{"tournaments": t})
	case FormatText:
		writeTournamentSection(w, "Active", t.Active)
		writeTournamentSection(w, "Archived", t.Archived)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeTournamentSection(w io.Writer, title string, tournaments []roster.Tournament) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(tournaments))
	if len(tournaments) == 0 {
		fmt.Fprintln(w, "  No tournaments found.")
	}
	for _, t := range tournaments {
		fmt.Fprintf(w, "  %-40s %s\n", t.ID, t.Name)
	}
}

// WriteClubs writes the club allow-list in the specified format
func WriteClubs(w io.Writer, clubs []club.Club, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, map[string][]club.Club{"clubs": clubs})
	case FormatText:
		for _, c := range clubs {
			fmt.Fprintf(w, "%-32s %s\n", c.ID, c.DisplayName)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteSchedule writes a club's merged schedule in the specified format
func WriteSchedule(w io.Writer, eventID string, c club.Club, result *service.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, scheduleOutput{
			EventID:  eventID,
			ClubID:   c.ID,
			Schedule: result.Schedule,
			Message:  result.Message,
		})
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(eventID, c, result.Schedule))
		return err
	case FormatText:
		return writeScheduleText(w, c, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeScheduleText outputs the schedule as human-readable text
func writeScheduleText(w io.Writer, c club.Club, result *service.Result) error {
	if result.Schedule.Empty() {
		fmt.Fprintln(w, result.Message)
		return nil
	}

	fmt.Fprintln(w, c.DisplayName)
	for _, day := range result.Schedule.Days {
		fmt.Fprintf(w, "\n%s (%d):\n", day.Name, len(day.Entries))
		for _, e := range day.Entries {
			fmt.Fprintf(w, "  %-13s  %-8s  %s (%s)\n", e.TimeRange, e.Mat, e.FullName, e.Category)
		}
	}
	fmt.Fprintf(w, "\nTotal: %d fights across %d days\n", result.Schedule.Len(), len(result.Schedule.Days))
	return nil
}
