package router

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fastjson"

	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/price"
)

// ErrMalformedFrame is returned for frames that are not valid JSON.
var ErrMalformedFrame = errors.New("malformed frame")

const (
	eventBook        = "book"
	eventPriceChange = "price_change"
)

var parserPool fastjson.ParserPool

// Decode classifies a raw market-channel frame. A frame is a single object
// or an array of objects; non-object elements and scalar frames yield no
// events. Decoded events never reference the frame buffer.
func Decode(data []byte) ([]Event, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch v.Type() {
	case fastjson.TypeObject:
		return []Event{classify(v)}, nil
	case fastjson.TypeArray:
		items, _ := v.Array()
		events := make([]Event, 0, len(items))
		for _, item := range items {
			if item.Type() != fastjson.TypeObject {
				continue
			}
			events = append(events, classify(item))
		}
		return events, nil
	default:
		return nil, nil
	}
}

func classify(v *fastjson.Value) Event {
	eventType := stringField(v, "event_type")
	ts := timestampField(v)

	if eventType == eventBook || (v.Exists("asset_id") && hasSideList(v)) {
		bids, hasBids := sideLevels(v, "bids", "buys")
		asks, hasAsks := sideLevels(v, "asks", "sells")
		return Snapshot{
			AssetID:   stringField(v, "asset_id"),
			Bids:      bids,
			Asks:      asks,
			HasBids:   hasBids,
			HasAsks:   hasAsks,
			Timestamp: ts,
		}
	}

	if eventType == eventPriceChange {
		if list := v.Get("price_changes"); list != nil && list.Type() == fastjson.TypeArray {
			return Delta{Changes: changes(list), Timestamp: ts}
		}
	}

	return Ignored{EventType: eventType}
}

func hasSideList(v *fastjson.Value) bool {
	for _, key := range []string{"bids", "buys", "asks", "sells"} {
		if f := v.Get(key); f != nil && f.Type() == fastjson.TypeArray {
			return true
		}
	}
	return false
}

// sideLevels reads the primary key, falling back to alt when the primary
// is missing or an empty list. The side counts as present when either key
// holds a list.
func sideLevels(v *fastjson.Value, primary, alt string) ([]book.Level, bool) {
	var entries []*fastjson.Value
	present := false
	for _, key := range []string{primary, alt} {
		f := v.Get(key)
		if f == nil || f.Type() != fastjson.TypeArray {
			continue
		}
		present = true
		entries, _ = f.Array()
		if len(entries) > 0 {
			break
		}
	}
	if !present {
		return nil, false
	}

	levels := make([]book.Level, 0, len(entries))
	for _, e := range entries {
		if e.Type() != fastjson.TypeObject {
			continue
		}
		p, ok := decimalField(e, "price")
		if !ok {
			continue
		}
		size, ok := decimalField(e, "size")
		if !ok || !size.IsPositive() {
			continue
		}
		levels = append(levels, book.Level{Price: p, Size: size})
	}
	return levels, true
}

func changes(list *fastjson.Value) []Change {
	items, _ := list.Array()
	out := make([]Change, 0, len(items))
	for _, item := range items {
		if item.Type() != fastjson.TypeObject {
			continue
		}
		id := stringField(item, "asset_id")
		if id == "" {
			continue
		}
		c := Change{AssetID: id}
		if d, ok := decimalField(item, "best_bid"); ok {
			c.BestBid = decimal.NullDecimal{Decimal: d, Valid: true}
		}
		if d, ok := decimalField(item, "best_ask"); ok {
			c.BestAsk = decimal.NullDecimal{Decimal: d, Valid: true}
		}
		out = append(out, c)
	}
	return out
}

// stringField returns a string or numeric field as text, "" otherwise.
func stringField(v *fastjson.Value, key string) string {
	f := v.Get(key)
	if f == nil {
		return ""
	}
	switch f.Type() {
	case fastjson.TypeString:
		return string(f.GetStringBytes())
	case fastjson.TypeNumber:
		return string(f.MarshalTo(nil))
	default:
		return ""
	}
}

// decimalField parses a price or size carried as a string or a number.
func decimalField(v *fastjson.Value, key string) (decimal.Decimal, bool) {
	text := stringField(v, key)
	if text == "" {
		return decimal.Decimal{}, false
	}
	d, err := price.Parse(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// timestampField reads "timestamp" as milliseconds since the epoch.
func timestampField(v *fastjson.Value) time.Time {
	f := v.Get("timestamp")
	if f == nil {
		return time.Time{}
	}
	switch f.Type() {
	case fastjson.TypeString:
		ms, err := strconv.ParseInt(string(f.GetStringBytes()), 10, 64)
		if err != nil {
			return time.Time{}
		}
		return time.UnixMilli(ms).UTC()
	case fastjson.TypeNumber:
		ms, err := f.Float64()
		if err != nil {
			return time.Time{}
		}
		return time.UnixMilli(int64(ms)).UTC()
	default:
		return time.Time{}
	}
}
