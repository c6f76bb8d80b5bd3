// Package connection implements the market-channel streaming session.
//
// The Session:
//   - Dials the market WebSocket and sends the subscription for every
//     tracked instrument
//   - Keeps the socket alive with pings and fails it on a missed pong
//   - Reconnects with exponential backoff (1s doubling, capped) and
//     resends the identical subscription
//   - Pushes every received frame onto the router queue
//   - Publishes its state to the shared status board
package connection
