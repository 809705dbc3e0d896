// Package observability holds the process-wide Prometheus collectors and the
// gin middleware that feeds them.
package observability
