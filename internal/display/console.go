package display

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/price"
)

const (
	barWidth   = 18
	ruleWidth  = 60
	clearCodes = "\x1b[H\x1b[2J"
)

// Console renders frames as plain text to a writer.
type Console struct {
	w       io.Writer
	printer *message.Printer
	clear   bool
}

// ConsoleOption customizes a Console.
type ConsoleOption func(*Console)

// WithClearScreen clears the terminal before each frame.
func WithClearScreen(enabled bool) ConsoleOption {
	return func(c *Console) {
		c.clear = enabled
	}
}

// WithLanguage sets the locale used for size grouping (default: English).
func WithLanguage(tag language.Tag) ConsoleOption {
	return func(c *Console) {
		c.printer = message.NewPrinter(tag)
	}
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		w:       w,
		printer: message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render writes one frame in a single Write call.
func (c *Console) Render(_ context.Context, f Frame) error {
	var b strings.Builder
	if c.clear {
		b.WriteString(clearCodes)
	}

	b.WriteString("Polymarket CLOB\n")
	if f.Title != "" {
		b.WriteString(f.Title + "\n")
	}
	if f.Question != "" {
		b.WriteString(f.Question + "\n")
	}
	fmt.Fprintf(&b, "Updated %s\n", f.Status)

	for _, bk := range f.Books {
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		c.writeBook(&b, bk)
	}

	_, err := io.WriteString(c.w, b.String())
	return err
}

func (c *Console) writeBook(b *strings.Builder, bk Book) {
	mid, spread := "-", "-"
	if bk.Mid.Valid {
		mid = price.CentsDelta(bk.Mid.Decimal)
	}
	if bk.Spread.Valid {
		spread = price.CentsDelta(bk.Spread.Decimal)
	}
	fmt.Fprintf(b, "[%s] token %s  mid %s  spread %s\n",
		bk.Instrument.Outcome, bk.Instrument.ShortID(), mid, spread)

	maxSize := decimal.Zero
	for _, lvl := range bk.Asks {
		maxSize = decimal.Max(maxSize, lvl.Size)
	}
	for _, lvl := range bk.Bids {
		maxSize = decimal.Max(maxSize, lvl.Size)
	}

	// Asks far to near so the best ask sits above the bid divider.
	for i := len(bk.Asks) - 1; i >= 0; i-- {
		c.writeLevel(b, bk.Asks[i], maxSize, isBest(bk.Asks[i], bk.BestAsk))
	}
	fmt.Fprintf(b, "-- %s Bids --\n", strings.ToUpper(bk.Instrument.Outcome))
	for _, lvl := range bk.Bids {
		c.writeLevel(b, lvl, maxSize, isBest(lvl, bk.BestBid))
	}
}

func (c *Console) writeLevel(b *strings.Builder, lvl book.Level, maxSize decimal.Decimal, best bool) {
	marker := " "
	if best {
		marker = "*"
	}
	fmt.Fprintf(b, "%s%s %18s  %s\n",
		marker, price.Cents(lvl.Price), c.FormatSize(lvl.Size), SizeBar(lvl.Size, maxSize, barWidth))
}

// FormatSize renders a size as whole contracts with grouping separators.
func (c *Console) FormatSize(size decimal.Decimal) string {
	return c.printer.Sprintf("%d contracts", price.Contracts(size))
}

// SizeBar draws a proportional bar of width cells. Non-empty sizes get at
// least one filled cell.
func SizeBar(size, maxSize decimal.Decimal, width int) string {
	if !size.IsPositive() || !maxSize.IsPositive() {
		return strings.Repeat(".", width)
	}
	filled := int(size.Mul(decimal.NewFromInt(int64(width))).Div(maxSize).Round(0).IntPart())
	filled = max(1, min(width, filled))
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func isBest(lvl book.Level, best decimal.NullDecimal) bool {
	return best.Valid && lvl.Price.Equal(best.Decimal)
}
