package model

import "strings"

// -----------------------------------------------------------------------------
// Catalog Types
// -----------------------------------------------------------------------------

// Event is a catalog event grouping one or more markets
// (e.g., "US strikes Iran by...?").
type Event struct {
	ID      string
	Slug    string // URL slug, e.g. "us-strikes-iran-by"
	Title   string
	Markets []Market
}

// Market is a single question within an event. Outcomes and TokenIDs are
// parallel lists: TokenIDs[i] trades Outcomes[i].
type Market struct {
	ID       string
	Slug     string
	Question string
	Outcomes []string
	TokenIDs []string
	Active   bool
	Closed   bool
}

// -----------------------------------------------------------------------------
// Streaming Types
// -----------------------------------------------------------------------------

// Instrument is one tradable outcome tracked on the market channel.
type Instrument struct {
	TokenID string // Asset ID on the wire
	Outcome string // Display label ("Yes", "No", ...)
}

// ShortID returns an abbreviated token id for display.
func (i Instrument) ShortID() string {
	if len(i.TokenID) <= 10 {
		return i.TokenID
	}
	return i.TokenID[:10] + "..."
}

// SortKey orders instruments by label, case-insensitively.
func (i Instrument) SortKey() string {
	return strings.ToLower(i.Outcome)
}
