package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Event is a Gamma event with its markets.
type Event struct {
	ID          FlexString `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	Closed      bool       `json:"closed"`
	Archived    bool       `json:"archived"`
	StartDate   string     `json:"startDate"`
	EndDate     string     `json:"endDate"`
	Markets     []Market   `json:"markets"`
}

// Market is a Gamma market. Outcomes[i] labels ClobTokenIDs[i].
type Market struct {
	ID           FlexString `json:"id"`
	Slug         string     `json:"slug"`
	Question     string     `json:"question"`
	ConditionID  string     `json:"conditionId"`
	Outcomes     StringList `json:"outcomes"`
	ClobTokenIDs StringList `json:"clobTokenIds"`
	Active       bool       `json:"active"`
	Closed       bool       `json:"closed"`
	EndDate      string     `json:"endDate"`
}

// Tag is a Gamma tag.
type Tag struct {
	ID    FlexString `json:"id"`
	Label string     `json:"label"`
	Slug  string     `json:"slug"`
}

// Sport is a Gamma sports metadata row.
type Sport struct {
	ID         FlexString `json:"id"`
	Sport      string     `json:"sport"`
	Image      string     `json:"image"`
	Resolution string     `json:"resolution"`
	Ordering   string     `json:"ordering"`
	Tags       FlexString `json:"tags"`
	Series     FlexString `json:"series"`
}

// ListEventsParams filters GET /events. Zero values and nil pointers are
// left out of the query.
type ListEventsParams struct {
	Limit     int
	Offset    int
	Order     string
	Ascending *bool
	Active    *bool
	Closed    *bool
	Archived  *bool
	Slug      string
	TagID     string
}

// ListMarketsParams filters GET /markets.
type ListMarketsParams struct {
	Limit        int
	Offset       int
	Order        string
	Ascending    *bool
	Active       *bool
	Closed       *bool
	Archived     *bool
	Slug         string
	TagID        string
	ClobTokenIDs []string
	ConditionIDs []string
	EndDateMin   string
	EndDateMax   string
}

// ListTagsParams filters GET /tags.
type ListTagsParams struct {
	Limit  int
	Offset int
}

// Bool returns a pointer to v for optional filters.
func Bool(v bool) *bool {
	return &v
}

// StringList decodes a JSON list of strings or numbers, or a string holding
// such a list ("[\"Yes\", \"No\"]"). Anything else decodes as empty.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		data = []byte(inner)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}

	out := make(StringList, 0, len(raw))
	for _, item := range raw {
		var fs FlexString
		if err := fs.UnmarshalJSON(item); err != nil {
			continue
		}
		out = append(out, string(fs))
	}
	*l = out
	return nil
}

// FlexString decodes a JSON string or number as text. null decodes as "".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = FlexString(n.String())
		return nil
	}
}

func setInt(q map[string][]string, key string, v int) {
	if v > 0 {
		q[key] = []string{strconv.Itoa(v)}
	}
}

func setBool(q map[string][]string, key string, v *bool) {
	if v != nil {
		q[key] = []string{strconv.FormatBool(*v)}
	}
}

func setString(q map[string][]string, key, v string) {
	if v != "" {
		q[key] = []string{v}
	}
}
