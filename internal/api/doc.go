// Package api provides REST clients for the Polymarket catalog and CLOB.
//
// REST endpoints:
//   - Gamma catalog: https://gamma-api.polymarket.com (events, markets, tags, sports)
//   - CLOB: https://clob.polymarket.com (/book snapshots)
//
// Gamma list endpoints use offset pagination; iteration stops on the first
// page shorter than the page size.
package api
