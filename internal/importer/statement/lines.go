package statement

import (
	"regexp"
	"sort"
	"strings"
)

type logicalLine struct {
	text   string
	number int
}

// minPhysicalLines is the number of non-empty lines below which a document
// is assumed to have lost its line breaks during text extraction.
const minPhysicalLines = 3

var inlineMarkerRe = regexp.MustCompile(`(?i)(?:ikke bokførte transaksjoner|reserverte transaksjoner|bokførte transaksjoner|pending transactions|booked transactions)`)

// digitGroupSpaceRe finds a no-break space between digits, which banks print
// as a thousands separator.
var digitGroupSpaceRe = regexp.MustCompile(`(\d)[\x{a0}\x{202f}](\d)`)

const (
	nbsp      = "\u00a0"
	groupMark = "\ue000"
)

// normalizeSpace collapses whitespace runs to one space. A no-break space
// inside a number survives as NBSP so it still reads as digit grouping.
func normalizeSpace(s string) string {
	s = digitGroupSpaceRe.ReplaceAllString(s, "${1}"+groupMark+"${2}")
	s = strings.Join(strings.Fields(s), " ")

	return strings.ReplaceAll(s, groupMark, nbsp)
}

// splitLines breaks text into numbered lines. When extraction collapsed the
// document onto one or two lines, it re-splits on date and section boundaries.
func splitLines(text string) []logicalLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	physical := strings.Split(text, "\n")

	nonEmpty := 0

	for _, l := range physical {
		if strings.TrimSpace(l) != "" {
			nonEmpty++
		}
	}

	if nonEmpty < minPhysicalLines {
		joined := normalizeSpace(text)
		if len(dateSpans(joined)) >= 2 {
			return resplit(joined)
		}
	}

	lines := make([]logicalLine, 0, len(physical))
	for i, l := range physical {
		lines = append(lines, logicalLine{text: l, number: i + 1})
	}

	// A trailing newline is not a line.
	if n := len(lines); n > 0 && lines[n-1].text == "" {
		lines = lines[:n-1]
	}

	return lines
}

// resplit cuts a collapsed document before every date that does not directly
// follow another date, and around inline section markers.
func resplit(joined string) []logicalLine {
	cuts := map[int]bool{}

	prevEnd := -1

	for _, d := range dateSpans(joined) {
		adjacent := prevEnd >= 0 && strings.TrimSpace(joined[prevEnd:d.start]) == ""
		if !adjacent {
			cuts[d.start] = true
		}

		prevEnd = d.end
	}

	for _, m := range inlineMarkerRe.FindAllStringIndex(joined, -1) {
		cuts[m[0]] = true
		cuts[m[1]] = true
	}

	positions := make([]int, 0, len(cuts)+2)
	positions = append(positions, 0)

	for p := range cuts {
		positions = append(positions, p)
	}

	positions = append(positions, len(joined))
	sort.Ints(positions)

	var lines []logicalLine

	for i := 1; i < len(positions); i++ {
		part := strings.TrimSpace(joined[positions[i-1]:positions[i]])
		if part == "" {
			continue
		}

		lines = append(lines, logicalLine{text: part, number: len(lines) + 1})
	}

	return lines
}

// mergeWrapped joins soft-wrapped transactions: a line that starts with a
// date but has no amount absorbs the following lines until one supplies the
// amount. A new date line or any structural line flushes the buffer as is.
func mergeWrapped(lines []logicalLine) []logicalLine {
	var (
		out []logicalLine
		buf *logicalLine
	)

	flush := func() {
		if buf != nil {
			out = append(out, *buf)
			buf = nil
		}
	}

	for _, l := range lines {
		text := normalizeSpace(l.text)
		structural := text == "" || isStructural(text)

		if buf != nil {
			if structural || startsWithDate(text) {
				flush()
			} else {
				buf.text = buf.text + " " + text
				if hasAmount(buf.text) {
					flush()
				}

				continue
			}
		}

		if !structural && startsWithDate(text) && !hasAmount(text) {
			buf = &logicalLine{text: text, number: l.number}
			continue
		}

		out = append(out, l)
	}

	flush()

	return out
}

func isStructural(line string) bool {
	if _, ok := sectionStatus(line); ok {
		return true
	}

	return isBalance(line) || isPageNumber(line) || isHeader(line)
}

func startsWithDate(line string) bool {
	spans := dateSpans(line)
	return len(spans) > 0 && spans[0].start == 0
}

// hasAmount reports whether line holds a decimal, currency or signed amount.
// Bare integers do not count since descriptions often carry them.
func hasAmount(line string) bool {
	for _, t := range amountTokens(line, dateSpans(line)) {
		if t.kind != amountBare {
			return true
		}
	}

	return false
}
