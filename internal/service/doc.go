// Package service contains the registry use cases. It orchestrates domain
// objects and repositories (defined in internal/store) and owns the
// reference date used for every age derivation.
//
// PersonService covers the person lifecycle: it derives the age snapshot on
// writes, recomputes ages on reads, runs updates inside a transaction and
// emits person events. DashboardService computes the dashboard statistics,
// always deriving ages from birth dates, optionally through a StatsCache.
//
// Services depend on repository interfaces, never on a concrete store.
package service
