package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/academiagorila/bjj-schedule/internal/calendar"
	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/roster"
	"github.com/academiagorila/bjj-schedule/internal/service"
)

const (
	maxParamLength   = 100
	serverTimeLayout = "2006-01-02 15:04:05"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type tournamentsResponse struct {
	Tournaments roster.Tournaments `json:"tournaments"`
}

type clubsResponse struct {
	Clubs []club.Club `json:"clubs"`
}

type scheduleResponse struct {
	Schedule roster.Schedule `json:"schedule"`
	Message  string          `json:"message,omitempty"`
}

type serverTimeResponse struct {
	ServerTime string `json:"server_time"`
	Timezone   string `json:"timezone"`
}

// scheduleQuery is the validated query of /api/participants and /api/calendar.
type scheduleQuery struct {
	EventID      string
	Club         club.Club
	ScheduleType club.ScheduleType
}

func (s *Server) handleTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := s.svc.Tournaments(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tournamentsResponse{Tournaments: tournaments})
}

func (s *Server) handleClubs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, clubsResponse{Clubs: s.clubs.All()})
}

func (s *Server) handleServerTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, serverTimeResponse{
		ServerTime: s.now().In(s.location).Format(serverTimeLayout),
		Timezone:   s.location.String(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, logger.GetMetricsSnapshot())
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	q, ok := s.parseScheduleQuery(w, r)
	if !ok {
		return
	}

	result, err := s.svc.ClubSchedule(r.Context(), q.EventID, q.Club.ID, string(q.ScheduleType))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{Schedule: result.Schedule, Message: result.Message})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q, ok := s.parseScheduleQuery(w, r)
	if !ok {
		return
	}

	result, err := s.svc.ClubSchedule(r.Context(), q.EventID, q.Club.ID, string(q.ScheduleType))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body := calendar.GenerateICS(q.EventID, q.Club, result.Schedule)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", calendarFilename(q)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// parseScheduleQuery trims and validates the query parameters. On failure it
// writes a 400 response and returns false; nothing has been fetched yet.
func (s *Server) parseScheduleQuery(w http.ResponseWriter, r *http.Request) (scheduleQuery, bool) {
	query := r.URL.Query()
	eventID := strings.TrimSpace(query.Get("event_id"))
	clubID := strings.TrimSpace(query.Get("club_id"))
	scheduleType := strings.TrimSpace(query.Get("schedule_type"))

	reject := func(reason string) (scheduleQuery, bool) {
		logger.Debug("Rejected request parameters", logger.Fields{
			"path":   r.URL.Path,
			"reason": reason,
		})
		writeError(w, http.StatusBadRequest, validationErrorDetail)
		return scheduleQuery{}, false
	}

	params := []struct{ name, value string }{
		{"event_id", eventID},
		{"club_id", clubID},
		{"schedule_type", scheduleType},
	}
	for _, p := range params {
		if p.value == "" {
			return reject(p.name + " is empty")
		}
		if utf8.RuneCountInString(p.value) > maxParamLength {
			return reject(p.name + " is too long")
		}
	}

	if _, err := service.ValidateEventID(eventID); err != nil {
		return reject(err.Error())
	}
	c, ok := s.clubs.Lookup(clubID)
	if !ok {
		return reject("unknown club")
	}
	t, err := club.ParseScheduleType(scheduleType)
	if err != nil {
		return reject(err.Error())
	}

	return scheduleQuery{EventID: eventID, Club: c, ScheduleType: t}, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	fields := logger.Fields{
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields, err)
	} else {
		logger.Info("Request rejected", fields)
	}
	writeError(w, status, detail)
}

func calendarFilename(q scheduleQuery) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, q.EventID)
	if safe == "" {
		safe = "event"
	}
	return fmt.Sprintf("%s-%s-%s.ics", safe, q.Club.ID, q.ScheduleType)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", nil, err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
