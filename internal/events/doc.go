// Package events carries person lifecycle notifications from the services
// to interested components without the services knowing who listens.
//
// The primary components are:
// - PersonEvent: a person was created, updated, deleted or got a new photo
// - InMemoryEventEmitter: synchronous fan-out to registered handlers
// - CacheInvalidator: drops cached dashboard stats on relevant events
package events
