// Package coordinator applies the cross-directory consistency rules for
// producers, capability types, jobs and type subscriptions.
//
// Ownership boundary:
//   - coordinator owns every multi-directory mutation and serializes them with
//     one lock.
//   - coordinator owns job status evaluation and decides when a status
//     notification is due.
//   - remote job pushes run outside the lock; their outcomes are applied under
//     it afterwards.
//   - directories own their maps; coordinator never reaches into them directly.
//
// Status baseline:
//   - a job's status at creation is its baseline and is not notified.
//   - every later change of the computed status produces exactly one
//     notification to the job's status callback.
package coordinator
