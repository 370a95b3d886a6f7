// Package corpus owns the fingerprint corpus: the persisted set of
// previously embedded fingerprints and the TTL-scoped in-memory cache
// detection reads from.
//
// The store is the durable collaborator (SQLite); the cache serves
// snapshot reads without blocking writers and is explicitly invalidated
// when a record is written. A record that was just embedded but not yet
// durably persisted can be injected straight into the live cache so a
// detect-right-after-embed call still sees it.
package corpus
