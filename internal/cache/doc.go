// Package cache provides the bounded, time-limited memoization used in front
// of every upstream fetch.
//
// Each TTL instance holds values for a fixed time after insertion and at most
// a fixed number of entries. Only successful computations are stored.
package cache
