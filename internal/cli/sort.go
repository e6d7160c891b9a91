package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/academiagorila/bjj-schedule/internal/roster"
	"github.com/academiagorila/bjj-schedule/internal/scraper"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByListing SortOrder = "listing"
	SortByName    SortOrder = "name"
	SortByID      SortOrder = "id"
)

func parseSortOrder(raw string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(raw))); order {
	case SortByListing, SortByName, SortByID:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'listing', 'name' or 'id')", raw)
	}
}

// sortTournaments sorts tournaments in place. SortByListing keeps the order
// of the upstream page.
func sortTournaments(tournaments []roster.Tournament, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(tournaments, func(i, j int) bool {
			return strings.ToLower(tournaments[i].Name) < strings.ToLower(tournaments[j].Name)
		})
	case SortByID:
		sort.SliceStable(tournaments, func(i, j int) bool {
			return compareByNumericID(tournaments[i], tournaments[j])
		})
	}
}

// compareByNumericID orders by the numeric event id, newest last.
// Returns true if tournament i should come before tournament j
func compareByNumericID(i, j roster.Tournament) bool {
	idI, okI := numericID(i.ID)
	idJ, okJ := numericID(j.ID)

	// If both ids are numeric, compare them
	if okI && okJ && idI != idJ {
		return idI < idJ
	}

	// If only one is numeric, put it first
	if okI != okJ {
		return okI
	}

	return i.ID < j.ID
}

func numericID(id string) (int, bool) {
	digits, err := scraper.ExtractNumericID(id)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
