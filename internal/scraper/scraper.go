package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // display timezone must resolve on hosts without zoneinfo

	"github.com/academiagorila/bjj-schedule/internal/fetch"
)

const (
	BaseURL         = "https://martialmatch.com"
	DisplayTimezone = "Europe/Warsaw"

	eventsPath  = "/pl/events"
	archivePath = "/pl/events/archive"
)

var (
	// ErrEventNotFound is returned when the upstream has no such event.
	ErrEventNotFound = errors.New("event not found")

	// ErrInvalidIdentifier is returned when an event identifier has no numeric id.
	ErrInvalidIdentifier = errors.New("invalid event identifier")
)

// Scraper fetches and parses martialmatch.com pages.
type Scraper struct {
	fetcher  *fetch.Client
	baseURL  string
	location *time.Location
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL points the scraper at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// WithLocation sets the timezone schedule times are displayed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scraper) {
		s.location = loc
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *fetch.Client) Option {
	return func(s *Scraper) {
		s.fetcher = f
	}
}

// New creates a Scraper for martialmatch.com displaying times in Europe/Warsaw.
func New(opts ...Option) (*Scraper, error) {
	loc, err := time.LoadLocation(DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s: %w", DisplayTimezone, err)
	}

	s := &Scraper{
		fetcher:  fetch.New(),
		baseURL:  BaseURL,
		location: loc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Location returns the display timezone.
func (s *Scraper) Location() *time.Location {
	return s.location
}

// ActiveEventsURL is the listing of upcoming and running events.
func (s *Scraper) ActiveEventsURL() string {
	return s.baseURL + eventsPath
}

// ArchivedEventsURL is the listing of past events.
func (s *Scraper) ArchivedEventsURL() string {
	return s.baseURL + archivePath
}

func (s *Scraper) startingListsURL(eventID string) string {
	return fmt.Sprintf("%s%s/%s/starting-lists", s.baseURL, eventsPath, url.PathEscape(eventID))
}

func (s *Scraper) schedulesURL(numericID string) string {
	return fmt.Sprintf("%s/api/events/%s/schedules", s.baseURL, numericID)
}

// translateFetchError maps an upstream 404 to ErrEventNotFound.
func translateFetchError(err error) error {
	if errors.Is(err, fetch.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrEventNotFound, err)
	}
	return err
}
