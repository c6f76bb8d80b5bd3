// Package market resolves the instruments to stream.
//
// An event URL is reduced to its slug, the event is fetched from the
// catalog, one market is selected (by slug, by date text in the question,
// or because it is the only one) and its CLOB token ids become the
// instruments of the Registry.
package market
