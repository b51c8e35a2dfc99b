// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markup splits text carrying lightweight emphasis markup into styled
// runs. Emphasis is written with asterisks: *italic*, **bold** and
// ***bold italic***.
package markup

import "strings"

// Emphasis is the styling state of a run.
type Emphasis int

const (
	None Emphasis = iota
	Bold
	Italic
	BoldItalic
)

// String returns the emphasis name.
func (e Emphasis) String() string {
	switch e {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return "none"
	}
}

// IsBold reports whether the run is rendered bold.
func (e Emphasis) IsBold() bool { return e == Bold || e == BoldItalic }

// IsItalic reports whether the run is rendered italic.
func (e Emphasis) IsItalic() bool { return e == Italic || e == BoldItalic }

// Run is a contiguous span of text with one styling state.
type Run struct {
	Text     string
	Emphasis Emphasis
}

const delim = '*'

// scanner states. The inside states are entered only once a closing
// delimiter of the same width is known to exist on the current line.
type state int

const (
	statePlain state = iota
	stateInsideBold
	stateInsideItalic
	stateInsideBoldItalic
)

func stateFor(width int) state {
	switch width {
	case 3:
		return stateInsideBoldItalic
	case 2:
		return stateInsideBold
	default:
		return stateInsideItalic
	}
}

func (s state) emphasis() Emphasis {
	switch s {
	case stateInsideBoldItalic:
		return BoldItalic
	case stateInsideBold:
		return Bold
	case stateInsideItalic:
		return Italic
	default:
		return None
	}
}

// Parse splits text into styled runs. The widest delimiter with a matching
// closer wins; closers are matched non-greedily and never across a line
// break. Unmatched asterisks stay in the text as literal characters.
// A leading bullet marker ("* ", "** ") is removed first. Parse never fails.
func Parse(text string) []Run {
	text = stripBulletMarker(text)
	if text == "" {
		return nil
	}

	var (
		runs  []Run
		plain strings.Builder
		// misses[w] is a stretch of the current line with no closer of
		// width w, so each width scans a line to its end at most once.
		misses [4]span
	)

	flushPlain := func() {
		if plain.Len() > 0 {
			runs = append(runs, Run{Text: plain.String(), Emphasis: None})
			plain.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] != delim {
			plain.WriteByte(text[i])
			i++
			continue
		}

		width := min(countDelims(text, i), 3)
		opened := false
		for w := width; w >= 1; w-- {
			from := i + w
			if m := misses[w]; from >= m.from && from < m.end {
				continue
			}
			end, ok := findCloser(text, from, w)
			if !ok {
				misses[w] = span{from: from, end: lineEnd(text, from)}
				continue
			}
			flushPlain()
			runs = append(runs, Run{Text: text[i+w : end], Emphasis: stateFor(w).emphasis()})
			i = end + w
			opened = true
			break
		}
		if !opened {
			plain.WriteByte(delim)
			i++
		}
	}
	flushPlain()
	return runs
}

// Strip returns text with emphasis delimiters removed.
func Strip(text string) string {
	var b strings.Builder
	for _, r := range Parse(text) {
		b.WriteString(r.Text)
	}
	return b.String()
}

// countDelims returns the length of the asterisk run starting at i.
func countDelims(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == delim {
		n++
	}
	return n
}

// span is the byte range [from, end) of text.
type span struct{ from, end int }

// lineEnd returns the index of the first line break at or after i, or
// len(text).
func lineEnd(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	if n := strings.IndexByte(text[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(text)
}

// findCloser returns the index of the first run of width asterisks after at
// least one content byte, stopping at a line break.
func findCloser(text string, from, width int) (int, bool) {
	if from >= len(text) || text[from] == '\n' {
		return 0, false
	}
	marker := strings.Repeat(string(delim), width)
	for j := from + 1; j+width <= len(text); j++ {
		if text[j] == '\n' {
			return 0, false
		}
		if text[j:j+width] == marker {
			return j, true
		}
	}
	return 0, false
}

// stripBulletMarker removes a leading run of asterisks that is followed by
// whitespace, along with that whitespace.
func stripBulletMarker(text string) string {
	trimmed := strings.TrimLeft(text, " \t")
	n := countDelims(trimmed, 0)
	if n == 0 || n == len(trimmed) {
		return text
	}
	if c := trimmed[n]; c != ' ' && c != '\t' {
		return text
	}
	return strings.TrimLeft(trimmed[n:], " \t")
}
