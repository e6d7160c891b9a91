package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/academiagorila/bjj-schedule/internal/fetch"
	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/roster"
	"github.com/gocolly/colly"
)

var (
	eventHrefPattern = regexp.MustCompile(`^/pl/events/\d+`)
	eventIDPattern   = regexp.MustCompile(`/pl/events/(\d+.*?)(?:/|$)`)
)

// Tournaments lists the events linked from a listing page, in document order.
// A tournament id appears once; the first link wins.
func (s *Scraper) Tournaments(ctx context.Context, url string) ([]roster.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := s.newCollector()
	tournaments := make([]roster.Tournament, 0)
	seen := make(map[string]bool)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		t, ok := tournamentFromLink(e.Attr("href"), e.Text)
		if !ok || seen[t.ID] {
			return
		}
		seen[t.ID] = true
		tournaments = append(tournaments, t)
	})

	var status int
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(url); err != nil {
		return nil, listingError(url, status, err)
	}
	c.Wait()

	logger.Debug("Parsed event listing", logger.Fields{
		"url":         url,
		"tournaments": len(tournaments),
	})
	return tournaments, nil
}

// AllTournaments lists the active and archived events. A failing listing is
// reported as empty unless both fail.
func (s *Scraper) AllTournaments(ctx context.Context) (roster.Tournaments, error) {
	return ListBoth(ctx, s.ActiveEventsURL(), s.ArchivedEventsURL(), s.Tournaments)
}

// ListFunc lists the tournaments on one listing page.
type ListFunc func(ctx context.Context, url string) ([]roster.Tournament, error)

// ListBoth runs list for the active and archive pages. If exactly one fails
// its segment is empty and the failure is logged; if both fail the errors are
// joined and returned.
func ListBoth(ctx context.Context, activeURL, archiveURL string, list ListFunc) (roster.Tournaments, error) {
	active, activeErr := list(ctx, activeURL)
	archived, archiveErr := list(ctx, archiveURL)

	if activeErr != nil && archiveErr != nil {
		return roster.Tournaments{}, fmt.Errorf("listing tournaments: %w", errors.Join(activeErr, archiveErr))
	}
	if activeErr != nil {
		logger.Warn("Active tournaments unavailable", logger.Fields{"url": activeURL, "error": activeErr.Error()})
		active = []roster.Tournament{}
	}
	if archiveErr != nil {
		logger.Warn("Archived tournaments unavailable", logger.Fields{"url": archiveURL, "error": archiveErr.Error()})
		archived = []roster.Tournament{}
	}

	return roster.Tournaments{Active: active, Archived: archived}, nil
}

func tournamentFromLink(href, text string) (roster.Tournament, bool) {
	if !eventHrefPattern.MatchString(href) {
		return roster.Tournament{}, false
	}
	m := eventIDPattern.FindStringSubmatch(href)
	if m == nil {
		return roster.Tournament{}, false
	}
	name := strings.TrimSpace(text)
	if name == "" {
		return roster.Tournament{}, false
	}
	return roster.Tournament{ID: m[1], Name: name}, true
}

func (s *Scraper) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(fetch.UserAgent),
		colly.AllowURLRevisit(),
	)

	hc := s.fetcher.HTTPClient()
	if hc.Transport != nil {
		c.WithTransport(hc.Transport)
	}
	if hc.Timeout > 0 {
		c.SetRequestTimeout(hc.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "pl-PL,pl;q=0.9,en;q=0.8")
	})
	return c
}

func listingError(url string, status int, err error) error {
	if status == http.StatusNotFound {
		return fmt.Errorf("listing %s: %w", url, fetch.ErrNotFound)
	}
	return &fetch.FetchError{URL: url, StatusCode: status, Err: err}
}
