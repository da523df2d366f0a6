package sheets

import (
	"regexp"
	"strings"
)

type CellKind int

const (
	KindPlain CellKind = iota
	KindFormula
	KindRich
)

// TextRun is a fragment of rich text inside a cell. Only the link target
// matters here.
type TextRun struct {
	LinkURI string
}

// Cell is the tagged representation of one spreadsheet cell. Exactly one
// interpretation applies per Kind: a plain value, a formula, or rich text
// with link runs. Hyperlink is the explicit cell-level annotation and may
// accompany any kind.
type Cell struct {
	Kind      CellKind
	Value     string // entered value, falling back to the formatted one
	Formula   string // set when Kind == KindFormula
	Hyperlink string
	Runs      []TextRun // set when Kind == KindRich
}

// Text returns the cell's textual content, trimmed.
func (c Cell) Text() string {
	return strings.TrimSpace(c.Value)
}

var hyperlinkFormulaRe = regexp.MustCompile(`(?i)=HYPERLINK\("([^"]+)"`)

// LinkTarget resolves the cell's link, in priority order: the explicit
// hyperlink annotation, then the first rich-text run carrying a link,
// then the first quoted argument of a HYPERLINK formula. Empty string
// means no link.
func (c Cell) LinkTarget() string {
	if c.Hyperlink != "" {
		return c.Hyperlink
	}
	for _, run := range c.Runs {
		if run.LinkURI != "" {
			return run.LinkURI
		}
	}
	if c.Formula != "" {
		if m := hyperlinkFormulaRe.FindStringSubmatch(c.Formula); m != nil {
			return m[1]
		}
	}
	return ""
}

// ColumnLetter converts a 0-based column index to its letter form using
// bijective base-26: 0 -> "A", 25 -> "Z", 26 -> "AA", 701 -> "ZZ".
func ColumnLetter(index int) string {
	n := index + 1 // bijective numeration is 1-based
	var out []byte
	for n > 0 {
		n--
		out = append(out, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// ColumnIndex is the inverse of ColumnLetter. It returns -1 for input
// that is not a column letter.
func ColumnIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return -1
	}
	n := 0
	for _, r := range letter {
		if r < 'A' || r > 'Z' {
			return -1
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1
}
