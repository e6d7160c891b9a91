// Package scraper fetches and parses martialmatch.com event data.
//
// Three sources are read: the HTML starting lists of an event (participants),
// the JSON schedule API of an event (per-category mat times), and the HTML
// event listings (active and archived tournaments). A malformed row, category
// or day is skipped on its own and never fails the whole extraction.
package scraper
