// Package remote carries every outbound call the coordinator makes: producer
// job and supervision callbacks, consumer notifications and RIC A1 requests.
//
// Ownership boundary:
//   - remote owns transport concerns: timeouts, outbound rate limiting and retry.
//   - remote never interprets callback payloads beyond the A1 helpers.
//   - a non-2xx answer is a Response, not an error; transport failures are
//     *TransportError.
package remote
