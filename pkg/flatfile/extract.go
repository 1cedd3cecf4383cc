package flatfile

import (
	"fmt"
	"unicode"
)

// extract appends the field buf[colStart:end+1] to the current row.
func (p *Parser) extract(end int) error {
	if p.expected > 0 && len(p.fields) >= p.expected {
		return p.parsingError(
			fmt.Sprintf("Current column %d exceeds ExpectedColumnCount of %d.", len(p.fields)+1, p.expected),
			ErrTooManyColumns)
	}

	start := p.cur.colStart
	value := ""
	if end >= start {
		buf := p.cur.buf
		trim := p.cfg.trimResults
		inText := false
		if p.quoted && p.cfg.qualifier.Is(buf[end]) {
			// Quoted text is kept exactly as written.
			trim = false
			inText = true
			start++
			end--
		}
		if p.cfg.stripControlChars || p.escapes {
			end = p.unescape(buf, start, end, inText)
		}
		if trim {
			for start <= end && unicode.IsSpace(buf[start]) {
				start++
			}
			for end >= start && unicode.IsSpace(buf[end]) {
				end--
			}
		}
		if end >= start {
			value = string(buf[start : end+1])
		}
	}
	p.fields = append(p.fields, value)

	if (!p.cfg.firstRowHasHeader || p.headerFound) && len(p.fields) > len(p.columns) {
		p.columns = append(p.columns, column{})
	}
	return nil
}

// unescape compacts buf[start:end+1] in place, dropping control characters when
// configured and keeping the character after an escape literally. Inside quoted
// text a qualifier escapes the character after it. It returns the new end index.
func (p *Parser) unescape(buf []rune, start, end int, inText bool) int {
	strip := p.cfg.stripControlChars
	escape := p.cfg.escape
	if p.cfg.mode != Delimited {
		escape = NoChar
	}

	removed := 0
	dst := start
	for src := start; src <= end; src++ {
		r := buf[src]
		switch {
		case strip && unicode.IsControl(r):
			removed++
			continue
		case escape.Is(r) || (inText && p.cfg.qualifier.Is(r)):
			removed++
			src++
			if src > end {
				return end - removed
			}
		case removed == 0:
			dst++
			continue
		}
		buf[dst] = buf[src]
		dst++
	}
	return end - removed
}
