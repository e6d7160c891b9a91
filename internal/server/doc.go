// Package server exposes the schedule service over HTTP with chi.
//
// Routes:
//
//	GET /api/tournaments
//	GET /api/clubs
//	GET /api/participants?event_id=&club_id=&schedule_type=
//	GET /api/calendar?event_id=&club_id=&schedule_type=
//	GET /api/server-time
//	GET /api/metrics
//
// Errors are JSON objects of the form {"detail": "..."}. The routes that
// reach martialmatch.com are rate limited per client IP.
package server
