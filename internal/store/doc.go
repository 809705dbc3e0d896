// Package store persists jobs and explicitly registered types so they survive
// a restart.
//
// Ownership boundary:
//   - store owns the on-disk record layout (one row per job, one per type).
//   - store never decides which records are live; the coordinator does.
//   - a missing or unreadable database means "no prior state", not a failure.
package store
