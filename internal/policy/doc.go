// Package policy holds the RIC side of the coordinator: configured RICs and
// their state, the policy type cache, local policies and registered services.
//
// Ownership boundary:
//   - policy owns the in-memory policy repositories; none of them is persisted.
//   - a Ric guards its own state; at most one recovery holds it at a time.
//   - policy talks to RICs only through the A1 interface.
package policy
