package server

import (
	"errors"
	"net/http"

	"github.com/academiagorila/bjj-schedule/internal/scraper"
	"github.com/academiagorila/bjj-schedule/internal/service"
)

const (
	validationErrorDetail = "Validation error"
	internalErrorDetail   = "Internal server error"
)

// statusFor maps a service error to the HTTP status and the detail shown to
// the client. Upstream failure messages are never exposed.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidEventID),
		errors.Is(err, service.ErrUnknownClub),
		errors.Is(err, service.ErrUnknownScheduleType),
		errors.Is(err, scraper.ErrInvalidIdentifier):
		return http.StatusBadRequest, validationErrorDetail
	case errors.Is(err, scraper.ErrEventNotFound):
		return http.StatusNotFound, service.EventNotFoundMessage
	default:
		return http.StatusInternalServerError, internalErrorDetail
	}
}
