// Package node assembles the coordinator process.
//
// Ownership boundary:
//   - node owns construction order and shutdown order of every component.
//   - node owns the live RIC configuration and reconciles reloads into the
//     policy controller.
//   - node owns no domain rules; those live in coordinator, policy and
//     recovery.
package node
