package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/roster"
)

const (
	categoryBlockClass = "column is-offset-2 is-8"
	categoryTitleClass = "title is-4 is-marginless"
)

// Participants fetches the starting lists of eventID and returns the entries
// of competitors registered for c. No matching competitors is not an error.
func (s *Scraper) Participants(ctx context.Context, eventID string, c club.Club) ([]roster.Participant, error) {
	url := s.startingListsURL(eventID)

	resp, err := s.fetcher.Get(ctx, url, nil)
	if err != nil {
		return nil, translateFetchError(err)
	}

	all, err := parseParticipants(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, err
	}

	filtered := FilterByClub(all, c)
	logger.Debug("Parsed starting lists", logger.Fields{
		"event_id": eventID,
		"club_id":  c.ID,
		"entries":  len(all),
		"matched":  len(filtered),
	})
	return filtered, nil
}

// FilterByClub keeps the participants whose club equals c's canonical name.
func FilterByClub(participants []roster.Participant, c club.Club) []roster.Participant {
	out := make([]roster.Participant, 0)
	for _, p := range participants {
		if p.Club == c.Name {
			out = append(out, p)
		}
	}
	return out
}

// parseParticipants walks the starting-list page. The page alternates a block
// holding the category heading with a block holding that category's table, so
// blocks are consumed in pairs.
func parseParticipants(r io.Reader) ([]roster.Participant, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	blocks := doc.Find("div").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return hasClassString(sel, categoryBlockClass)
	})

	participants := make([]roster.Participant, 0)
	for i := 0; i < blocks.Length(); i += 2 {
		category, ok := categoryName(blocks.Eq(i))
		if !ok {
			continue
		}
		if i+1 >= blocks.Length() {
			continue
		}

		// Categories without registrants have no table.
		tableBlock := blocks.Eq(i + 1)
		if tableBlock.Find("table").Length() == 0 {
			continue
		}

		tableBlock.Find("tbody").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
			if p, ok := parseParticipantRow(row, category); ok {
				participants = append(participants, p)
			}
		})
	}

	return participants, nil
}

func categoryName(block *goquery.Selection) (string, bool) {
	heading := block.Find("h4").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return hasClassString(sel, categoryTitleClass)
	}).First()
	if heading.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(heading.Text()), true
}

// parseParticipantRow reads one starting-list row. The club cell holds a
// linked club name followed by free-text location; both are kept.
func parseParticipantRow(row *goquery.Selection, category string) (roster.Participant, bool) {
	cols := row.Find("td")
	if cols.Length() < 3 {
		return roster.Participant{}, false
	}

	nameLink := cols.Eq(1).Find("a.competitor-name").First()
	if nameLink.Length() == 0 {
		return roster.Participant{}, false
	}

	clubCell := cols.Eq(2)
	clubLink := clubCell.Find("a").First()
	if clubLink.Length() == 0 {
		return roster.Participant{}, false
	}

	clubName := strings.TrimSpace(clubLink.Text())
	rest := strings.TrimSpace(strings.ReplaceAll(clubCell.Text(), clubName, ""))

	return roster.Participant{
		FullName: strings.TrimSpace(nameLink.Text()),
		Club:     strings.TrimSpace(clubName + " " + rest),
		Category: category,
	}, true
}

// hasClassString compares the whole class attribute, whitespace-normalized.
func hasClassString(sel *goquery.Selection, want string) bool {
	class, ok := sel.Attr("class")
	if !ok {
		return false
	}
	return strings.Join(strings.Fields(class), " ") == want
}
