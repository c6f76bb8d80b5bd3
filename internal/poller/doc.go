// Package poller implements the optional REST resync poller.
//
// The poller:
//   - Fetches the CLOB /book snapshot for every subscribed token on an interval
//   - Pushes each body into the same frame queue as the stream, tagged source="rest"
//   - Bounds concurrent requests with an errgroup limit
//   - Is disabled when the interval is zero
package poller
