package display

import (
	"os"

	"golang.org/x/term"
)

const fallbackRows = 40

// FitDepth clamps requested levels per side so both sides of a book fit
// the terminal attached to stdout. Without a terminal 40 rows are assumed.
func FitDepth(requested int) int {
	rows := fallbackRows
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if _, h, err := term.GetSize(fd); err == nil && h > 0 {
			rows = h
		}
	}
	return fitDepth(requested, rows)
}

func fitDepth(requested, rows int) int {
	perSide := max(4, (rows-14)/2)
	return max(1, min(requested, perSide))
}
