package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/roster"
)

const scheduleTimeLayout = "2006-01-02 15:04:05"

// scheduleCookies make the API answer in Polish with Warsaw wall-clock
// metadata. Category times are still sent as naive UTC.
var scheduleCookies = map[string]string{
	"PANEL_LANGUAGE_V3": "pl",
	"PANEL_TIMEZONE":    DisplayTimezone,
}

type apiSchedule struct {
	Schedules []json.RawMessage `json:"schedules"`
}

// Mats and categories stay raw so one malformed entry only drops itself.
type apiDay struct {
	Name    *string           `json:"name"`
	Sharing *float64          `json:"sharing"`
	Mats    []json.RawMessage `json:"mats"`
}

type apiMat struct {
	Name       *string           `json:"name"`
	Categories []json.RawMessage `json:"categories"`
}

type apiCategory struct {
	Name                  *string        `json:"name"`
	ScheduledCategoryTime *apiTimeWindow `json:"scheduledCategoryTime"`
}

type apiTimeWindow struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// Schedule fetches the schedule of eventID. For club.Real only days the
// organizer marked live are included. Rows keep the API order.
func (s *Scraper) Schedule(ctx context.Context, eventID string, t club.ScheduleType) ([]roster.Slot, error) {
	numericID, err := ExtractNumericID(eventID)
	if err != nil {
		return nil, err
	}

	resp, err := s.fetcher.Get(ctx, s.schedulesURL(numericID), scheduleCookies)
	if err != nil {
		return nil, translateFetchError(err)
	}

	slots, err := parseSchedule(resp.Body, t, s.location)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", numericID, err)
	}

	logger.Debug("Parsed schedule", logger.Fields{
		"event_id":      eventID,
		"schedule_type": string(t),
		"slots":         len(slots),
	})
	return slots, nil
}

func parseSchedule(body []byte, t club.ScheduleType, loc *time.Location) ([]roster.Slot, error) {
	var doc apiSchedule
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing schedule JSON: %w", err)
	}

	slots := make([]roster.Slot, 0)
	for i, raw := range doc.Schedules {
		var day apiDay
		if err := json.Unmarshal(raw, &day); err != nil {
			logger.Debug("Skipping undecodable schedule day", logger.Fields{"index": i, "error": err.Error()})
			continue
		}
		if !t.IncludesDay(day.Sharing) {
			continue
		}

		for j, rawMat := range day.Mats {
			var mat apiMat
			if err := json.Unmarshal(rawMat, &mat); err != nil {
				logger.Debug("Skipping undecodable mat", logger.Fields{"day": i, "index": j, "error": err.Error()})
				continue
			}
			for k, rawCategory := range mat.Categories {
				var category apiCategory
				if err := json.Unmarshal(rawCategory, &category); err != nil {
					logger.Debug("Skipping undecodable category", logger.Fields{"day": i, "mat": j, "index": k, "error": err.Error()})
					continue
				}
				if slot, ok := parseSlot(day, mat, category, loc); ok {
					slots = append(slots, slot)
				}
			}
		}
	}
	return slots, nil
}

// parseSlot converts one category entry; entries missing a name or with
// unusable times are reported as not ok.
func parseSlot(day apiDay, mat apiMat, category apiCategory, loc *time.Location) (roster.Slot, bool) {
	if day.Name == nil || mat.Name == nil || category.Name == nil {
		return roster.Slot{}, false
	}
	window := category.ScheduledCategoryTime
	if window == nil || window.Start == nil || window.End == nil {
		return roster.Slot{}, false
	}

	start, err := parseUTC(*window.Start, loc)
	if err != nil {
		return roster.Slot{}, false
	}
	end, err := parseUTC(*window.End, loc)
	if err != nil {
		return roster.Slot{}, false
	}

	return roster.Slot{
		Category:  *category.Name,
		Mat:       *mat.Name,
		TimeRange: start.Format("15:04") + " - " + end.Format("15:04"),
		Day:       *day.Name,
		Start:     start,
		End:       end,
	}, true
}

// parseUTC reads a naive "YYYY-MM-DD HH:MM:SS" UTC timestamp and returns it in loc.
func parseUTC(value string, loc *time.Location) (time.Time, error) {
	ts, err := time.ParseInLocation(scheduleTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return ts.In(loc), nil
}
