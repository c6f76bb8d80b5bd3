// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Streaming session state, reconnects and backoff delay
//   - Frame throughput, decode errors and applied book events
//   - Frame queue depth
//   - Archive rows written and failed flushes
package metrics
