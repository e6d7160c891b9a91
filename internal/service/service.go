package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/academiagorila/bjj-schedule/internal/cache"
	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/roster"
	"github.com/academiagorila/bjj-schedule/internal/scraper"
)

// User-facing messages, in Polish like the upstream site.
const (
	NoParticipantsMessage = "Nie znaleziono zawodników tego klubu w tym turnieju"
	NoScheduleMessage     = "Brak harmonogramu wskazanego typu dla tego turnieju"
	EventNotFoundMessage  = "Nie znaleziono turnieju"
)

// MaxEventIDLength bounds the event identifier accepted from callers.
const MaxEventIDLength = 100

var (
	ErrInvalidEventID      = errors.New("invalid event id")
	ErrUnknownClub         = errors.New("unknown club")
	ErrUnknownScheduleType = errors.New("unknown schedule type")

	// ErrParticipantsNotFound and ErrScheduleNotFound mark empty upstream
	// data. ClubSchedule turns them into a Result message.
	ErrParticipantsNotFound = errors.New(NoParticipantsMessage)
	ErrScheduleNotFound     = errors.New(NoScheduleMessage)
)

// Scraper is the upstream surface the service needs.
type Scraper interface {
	Participants(ctx context.Context, eventID string, c club.Club) ([]roster.Participant, error)
	Schedule(ctx context.Context, eventID string, t club.ScheduleType) ([]roster.Slot, error)
	Tournaments(ctx context.Context, url string) ([]roster.Tournament, error)
	ActiveEventsURL() string
	ArchivedEventsURL() string
}

// Options sizes the caches.
type Options struct {
	ParticipantsTTL time.Duration
	ScheduleTTL     time.Duration
	TournamentsTTL  time.Duration
	CacheSize       int

	// Clock replaces time.Now in the caches; nil means time.Now.
	Clock func() time.Time
}

// DefaultOptions returns the production cache settings.
func DefaultOptions() Options {
	return Options{
		ParticipantsTTL: 30 * time.Minute,
		ScheduleTTL:     10 * time.Minute,
		TournamentsTTL:  60 * time.Minute,
		CacheSize:       50,
	}
}

type participantsKey struct {
	EventID string
	ClubID  string
}

type scheduleKey struct {
	EventID      string
	ScheduleType club.ScheduleType
}

// Result is a merged schedule, or an empty one with Message set.
type Result struct {
	Schedule roster.Schedule `json:"schedule"`
	Message  string          `json:"message,omitempty"`
}

// Service answers schedule and tournament queries.
type Service struct {
	upstream Scraper
	clubs    club.Registry

	participants *cache.TTL[participantsKey, []roster.Participant]
	schedules    *cache.TTL[scheduleKey, []roster.Slot]
	tournaments  *cache.TTL[string, []roster.Tournament]
}

// New creates a Service. Zero-valued options fall back to DefaultOptions.
func New(scr Scraper, clubs club.Registry, opts Options) *Service {
	def := DefaultOptions()
	if opts.ParticipantsTTL <= 0 {
		opts.ParticipantsTTL = def.ParticipantsTTL
	}
	if opts.ScheduleTTL <= 0 {
		opts.ScheduleTTL = def.ScheduleTTL
	}
	if opts.TournamentsTTL <= 0 {
		opts.TournamentsTTL = def.TournamentsTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = def.CacheSize
	}

	var cacheOpts []cache.Option
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}

	return &Service{
		upstream: scr,
		clubs:    clubs,
		participants: cache.New[participantsKey, []roster.Participant](
			"participants", opts.CacheSize, opts.ParticipantsTTL, cacheOpts...),
		schedules: cache.New[scheduleKey, []roster.Slot](
			"schedule", opts.CacheSize, opts.ScheduleTTL, cacheOpts...),
		tournaments: cache.New[string, []roster.Tournament](
			"tournaments", opts.CacheSize, opts.TournamentsTTL, cacheOpts...),
	}
}

// Clubs returns the club allow-list.
func (s *Service) Clubs() club.Registry {
	return s.clubs
}

// ValidateEventID trims eventID and rejects identifiers that are empty, longer
// than MaxEventIDLength runes or carry no numeric id.
func ValidateEventID(eventID string) (string, error) {
	eventID = strings.TrimSpace(eventID)
	switch {
	case eventID == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidEventID)
	case utf8.RuneCountInString(eventID) > MaxEventIDLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidEventID, MaxEventIDLength)
	}
	if _, err := scraper.ExtractNumericID(eventID); err != nil {
		return "", err
	}
	return eventID, nil
}

// ResolveClub looks up clubID in the allow-list.
func (s *Service) ResolveClub(clubID string) (club.Club, error) {
	c, ok := s.clubs.Lookup(clubID)
	if !ok {
		return club.Club{}, fmt.Errorf("%w: %q", ErrUnknownClub, clubID)
	}
	return c, nil
}

// ClubSchedule returns the merged schedule of clubID's competitors at
// eventID. The event id, club and schedule type are validated before any
// upstream call, and the schedule is only fetched when the club has
// participants.
func (s *Service) ClubSchedule(ctx context.Context, eventID, clubID, scheduleType string) (*Result, error) {
	eventID, err := ValidateEventID(eventID)
	if err != nil {
		return nil, err
	}

	c, err := s.ResolveClub(clubID)
	if err != nil {
		return nil, err
	}
	t, err := club.ParseScheduleType(scheduleType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheduleType, scheduleType)
	}

	schedule, err := s.clubSchedule(ctx, eventID, c, t)
	switch {
	case errors.Is(err, ErrParticipantsNotFound):
		return &Result{Schedule: roster.Schedule{}, Message: NoParticipantsMessage}, nil
	case errors.Is(err, ErrScheduleNotFound):
		return &Result{Schedule: roster.Schedule{}, Message: NoScheduleMessage}, nil
	case err != nil:
		return nil, err
	}
	return &Result{Schedule: schedule}, nil
}

func (s *Service) clubSchedule(ctx context.Context, eventID string, c club.Club, t club.ScheduleType) (roster.Schedule, error) {
	participants, err := s.participants.GetOrCompute(participantsKey{EventID: eventID, ClubID: c.ID}, func() ([]roster.Participant, error) {
		return s.upstream.Participants(ctx, eventID, c)
	})
	if err != nil {
		return roster.Schedule{}, fmt.Errorf("participants of %s: %w", eventID, err)
	}
	if len(participants) == 0 {
		return roster.Schedule{}, ErrParticipantsNotFound
	}

	slots, err := s.schedules.GetOrCompute(scheduleKey{EventID: eventID, ScheduleType: t}, func() ([]roster.Slot, error) {
		return s.upstream.Schedule(ctx, eventID, t)
	})
	if err != nil {
		return roster.Schedule{}, fmt.Errorf("schedule of %s: %w", eventID, err)
	}
	if len(slots) == 0 {
		return roster.Schedule{}, ErrScheduleNotFound
	}

	merged := roster.Merge(participants, slots)
	if merged.Empty() {
		return roster.Schedule{}, ErrScheduleNotFound
	}

	logger.Info("Merged club schedule", logger.Fields{
		"event_id":      eventID,
		"club_id":       c.ID,
		"schedule_type": string(t),
		"participants":  len(participants),
		"slots":         len(slots),
		"entries":       merged.Len(),
	})
	return merged, nil
}

// Tournaments lists active and archived events. Each listing page is cached
// on its own, and a single failing page is reported as an empty segment.
func (s *Service) Tournaments(ctx context.Context) (roster.Tournaments, error) {
	return scraper.ListBoth(ctx, s.upstream.ActiveEventsURL(), s.upstream.ArchivedEventsURL(), s.cachedListing)
}

func (s *Service) cachedListing(ctx context.Context, url string) ([]roster.Tournament, error) {
	return s.tournaments.GetOrCompute(url, func() ([]roster.Tournament, error) {
		return s.upstream.Tournaments(ctx, url)
	})
}

// Sweep drops expired entries from every cache and returns how many were
// removed.
func (s *Service) Sweep() int {
	removed := s.participants.CleanExpired() +
		s.schedules.CleanExpired() +
		s.tournaments.CleanExpired()
	if removed > 0 {
		logger.Debug("Swept expired cache entries", logger.Fields{"removed": removed})
	}
	return removed
}
