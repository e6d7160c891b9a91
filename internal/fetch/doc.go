// Package fetch issues the outbound GET requests the scraper parses.
//
// It separates "the upstream says this resource does not exist" (ErrNotFound)
// from every other failure (*FetchError) so callers can report a missing
// event instead of a broken upstream.
package fetch
