// Package api exposes the coordinator, the policy controller and RIC recovery
// over HTTP.
//
// Ownership boundary:
//   - api owns request decoding, response shapes and error to status mapping.
//   - api holds no state of its own; every handler delegates to the owning
//     component.
package api
