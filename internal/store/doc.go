// Package store holds the normalized entity graph of one equipment set.
//
// The Memory store is copy-on-write: every accepted command builds a new
// immutable Snapshot and publishes it atomically, so a reader holding a
// Snapshot never observes a half-applied mutation. Each write bumps a
// store-wide revision; variants and collections are stamped with the
// revision that last replaced their links or entries, which is what the
// totals cache keys on.
package store
