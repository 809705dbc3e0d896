// Package supervision periodically checks every registered producer and
// drives its operational state.
//
// Ownership boundary:
//   - supervision owns the check schedule and the failure threshold.
//   - state transitions and job restarts are applied through the coordinator.
//   - one pass finishes before the next starts; a failing producer never
//     blocks the others.
package supervision
