// Package registry owns the in-memory directories of the coordinator.
//
// Ownership boundary:
// - capability types and their lifecycle
// - producers and the type -> producer reverse index
// - jobs and their last reported status
// - type subscriptions
//
// Each directory guards its own maps. Rules spanning more than one directory
// (type purge, job status) are applied by package coordinator, which serializes
// callers around them.
package registry
