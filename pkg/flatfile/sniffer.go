package flatfile

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_ ]*$`)
	datePattern       = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})$`)
)

// candidateDelimiters are tried in order; ties go to the earlier one.
var candidateDelimiters = []rune{',', '\t', ';', '|'}

// Sniffer guesses a configuration from a sample of the input.
// For best results, provide at least 2-3 lines.
type Sniffer struct {
	lines     []string
	comment   rune
	delimiter Char
	hasHeader bool
	analyzed  bool
}

// NewSniffer creates a Sniffer over sample. Lines starting with '#' are ignored.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{lines: splitLines(sample), comment: '#'}
}

func splitLines(sample string) []string {
	sample = strings.ReplaceAll(sample, "\r\n", "\n")
	sample = strings.ReplaceAll(sample, "\r", "\n")
	return strings.Split(sample, "\n")
}

func (s *Sniffer) analyze() {
	if s.analyzed {
		return
	}
	var lines []string
	for _, l := range s.lines {
		if l == "" || strings.HasPrefix(l, string(s.comment)) {
			continue
		}
		lines = append(lines, l)
	}
	s.lines = lines
	s.delimiter = s.detectDelimiter()
	s.hasHeader = s.detectHeader()
	s.analyzed = true
}

// Delimiter returns the detected delimiter. It is unset when no candidate
// appears on the first line, which suggests fixed-width input.
func (s *Sniffer) Delimiter() Char {
	s.analyze()
	return s.delimiter
}

// HasHeader reports whether the first line looks like column names.
func (s *Sniffer) HasHeader() bool {
	s.analyze()
	return s.hasHeader
}

// Config returns DefaultConfig adjusted to the sample: the detected delimiter and
// header flag, or fixed widths guessed from space-aligned columns.
func (s *Sniffer) Config() Config {
	s.analyze()
	cfg := DefaultConfig()
	if s.delimiter.IsSet() {
		cfg.SetColumnDelimiter(s.delimiter)
	} else if widths := s.guessWidths(); widths != nil {
		_ = cfg.SetColumnWidths(widths)
		cfg.SetTrimResults(true)
	}
	cfg.SetFirstRowHasHeader(s.hasHeader)
	return cfg
}

// detectDelimiter scores each candidate found on the first line by how often,
// and how consistently, it splits the lines.
func (s *Sniffer) detectDelimiter() Char {
	if len(s.lines) == 0 {
		return NoChar
	}
	best := NoChar
	bestScore := 0
	for _, delim := range candidateDelimiters {
		first := countDelimiter(s.lines[0], delim)
		if first == 0 {
			continue
		}
		score := first
		consistent := true
		for _, line := range s.lines[1:] {
			if countDelimiter(line, delim) != first {
				consistent = false
				break
			}
		}
		if consistent {
			score *= 10
		}
		if score > bestScore {
			best = CharOf(delim)
			bestScore = score
		}
	}
	return best
}

// countDelimiter counts occurrences of delim outside double-quoted sections.
func countDelimiter(line string, delim rune) int {
	count := 0
	inQuotes := false
	for _, ch := range line {
		if ch == '"' {
			inQuotes = !inQuotes
		} else if ch == delim && !inQuotes {
			count++
		}
	}
	return count
}

// detectHeader compares the first line with the second: a header is mostly
// identifier-like text while data holds numbers, dates or e-mail addresses.
func (s *Sniffer) detectHeader() bool {
	if len(s.lines) < 2 {
		return false
	}
	first := s.splitFields(s.lines[0])
	second := s.splitFields(s.lines[1])
	if len(first) == 0 || len(second) == 0 {
		return false
	}
	headerScore, dataScore := 0, 0
	for _, f := range first {
		f = strings.Trim(strings.TrimSpace(f), `"`)
		if looksLikeName(f) {
			headerScore++
		}
		if looksLikeValue(f) {
			dataScore++
		}
	}
	secondValues := 0
	for _, f := range second {
		if looksLikeValue(strings.Trim(strings.TrimSpace(f), `"`)) {
			secondValues++
		}
	}
	return headerScore > dataScore && (secondValues > 0 || headerScore == len(first))
}

func (s *Sniffer) splitFields(line string) []string {
	if !s.delimiter.IsSet() {
		return strings.Fields(line)
	}
	var fields []string
	var current strings.Builder
	inQuotes := false
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			current.WriteRune(ch)
		case s.delimiter.Is(ch) && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, current.String())
}

// guessWidths finds column boundaries where every line has a space followed by a
// non-space character at the same position.
func (s *Sniffer) guessWidths() []int {
	if len(s.lines) == 0 {
		return nil
	}
	longest := 0
	rows := make([][]rune, len(s.lines))
	for i, l := range s.lines {
		rows[i] = []rune(l)
		if len(rows[i]) > longest {
			longest = len(rows[i])
		}
	}
	var widths []int
	start := 0
	for pos := 1; pos < longest; pos++ {
		boundary := true
		for _, r := range rows {
			if pos >= len(r) || !unicode.IsSpace(r[pos-1]) || unicode.IsSpace(r[pos]) {
				boundary = false
				break
			}
		}
		if boundary {
			widths = append(widths, pos-start)
			start = pos
		}
	}
	if widths == nil {
		return nil
	}
	return append(widths, longest-start)
}

func looksLikeName(s string) bool {
	return s != "" && !isNumeric(s) && identifierPattern.MatchString(s)
}

func looksLikeValue(s string) bool {
	return s != "" && (isNumeric(s) || strings.Contains(s, "@") || datePattern.MatchString(s))
}

// isNumeric reports whether s is an optionally negative decimal number.
func isNumeric(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "-")
	if s == "" {
		return false
	}
	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if !unicode.IsDigit(ch) {
			return false
		}
	}
	return s != "."
}
