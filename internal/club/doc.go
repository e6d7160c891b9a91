// Package club holds the fixed allow-lists the scraper filters on: the clubs
// whose competitors are tracked and the two schedule types.
//
// Registries are immutable values built once and injected into the scraper,
// service and server layers, so tests can substitute their own club set.
package club
