// Package notifier announces a club's tournament schedule on social channels.
//
// A schedule is turned into one message per competition day with FormatDay,
// each trimmed to the target channel's length limit, and handed to a
// Notifier. Twitter and Telegram are supported, plus a dry-run notifier that
// prints the messages instead of posting them.
package notifier
