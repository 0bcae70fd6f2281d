// Package observability builds the zap logger and the Prometheus collectors
// shared by the HTTP layer and the background jobs.
package observability
