// Package cli implements the command-line interface for bjj-schedule.
//
// The cli package provides the Cobra-based CLI: serve runs the HTTP API,
// tournaments and clubs list what can be queried, schedule prints a club's
// merged schedule (text, JSON or iCalendar) and announce posts it to Twitter
// or Telegram. Settings come from internal/config and can be overridden with
// flags.
package cli
