// Package store defines interfaces for person persistence and the dashboard
// aggregates. Implementations live under internal/platform; services depend
// only on these interfaces.
package store
