// Package roster defines the scraped entities (participants, schedule slots,
// tournaments) and merges participants with schedule slots into per-day
// schedules.
//
// JSON field names follow the keys the web front end reads, which are the
// Polish column headings of the starting-list export.
package roster
