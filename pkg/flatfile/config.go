// Package flatfile provides configuration for flat-file tokenizing.
package flatfile

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// DefaultMaxBufferSize is the default size, in characters, of the parser's buffer.
const DefaultMaxBufferSize = 4096

// FieldMode selects how a row is split into fields.
type FieldMode int

const (
	// Delimited splits fields on ColumnDelimiter.
	Delimited FieldMode = iota
	// FixedWidth splits fields by ColumnWidths.
	FixedWidth
)

// String returns the string representation of FieldMode.
func (m FieldMode) String() string {
	switch m {
	case Delimited:
		return "Delimited"
	case FixedWidth:
		return "FixedWidth"
	default:
		return fmt.Sprintf("FieldMode(%d)", m)
	}
}

// ParseFieldMode parses the names returned by FieldMode.String.
func ParseFieldMode(s string) (FieldMode, error) {
	switch s {
	case "Delimited":
		return Delimited, nil
	case "FixedWidth":
		return FixedWidth, nil
	}
	return Delimited, &ArgumentError{Field: "FieldMode", Message: fmt.Sprintf("unknown field mode %q", s)}
}

// Char is an optional configuration character. The zero value is unset,
// and an unset character disables the feature it configures.
type Char struct {
	r  rune
	ok bool
}

// NoChar is the unset Char.
var NoChar = Char{}

// CharOf returns a Char set to r.
func CharOf(r rune) Char {
	return Char{r: r, ok: true}
}

// Get returns the character and whether it is set.
func (c Char) Get() (rune, bool) {
	return c.r, c.ok
}

// IsSet reports whether the character is set.
func (c Char) IsSet() bool {
	return c.ok
}

// Is reports whether the character is set and equal to r.
func (c Char) Is(r rune) bool {
	return c.ok && c.r == r
}

func (c Char) String() string {
	if !c.ok {
		return "<unset>"
	}
	return strconv.QuoteRune(c.r)
}

// Config holds every option of a Parser. Use DefaultConfig and the setters;
// the setters keep the field mode, widths, delimiter and expected column count consistent.
//
// A Config is a value: a Parser keeps its own copy and refuses changes while parsing.
type Config struct {
	mode                 FieldMode
	widths               []int
	maxBufferSize        int
	maxRows              int
	skipStartingRows     int
	skipEndingRows       int
	expectedColumnCount  int
	firstRowHasHeader    bool
	firstRowSetsExpected bool
	trimResults          bool
	stripControlChars    bool
	skipEmptyRows        bool
	delimiter            Char
	qualifier            Char
	escape               Char
	comment              Char
}

// DefaultConfig returns the default configuration: comma delimited, double-quote
// qualifier, '#' comments, no escape character and empty rows skipped.
func DefaultConfig() Config {
	return Config{
		mode:          Delimited,
		maxBufferSize: DefaultMaxBufferSize,
		skipEmptyRows: true,
		delimiter:     CharOf(','),
		qualifier:     CharOf('"'),
		comment:       CharOf('#'),
	}
}

// FieldMode returns how rows are split into fields.
func (c Config) FieldMode() FieldMode { return c.mode }

// ColumnWidths returns a copy of the fixed widths, or nil when unset.
func (c Config) ColumnWidths() []int {
	if c.widths == nil {
		return nil
	}
	return append([]int(nil), c.widths...)
}

func (c Config) MaxBufferSize() int                   { return c.maxBufferSize }
func (c Config) MaxRows() int                         { return c.maxRows }
func (c Config) SkipStartingRows() int                { return c.skipStartingRows }
func (c Config) SkipEndingRows() int                  { return c.skipEndingRows }
func (c Config) ExpectedColumnCount() int             { return c.expectedColumnCount }
func (c Config) FirstRowHasHeader() bool              { return c.firstRowHasHeader }
func (c Config) FirstRowSetsExpectedColumnCount() bool { return c.firstRowSetsExpected }
func (c Config) TrimResults() bool                    { return c.trimResults }
func (c Config) StripControlChars() bool              { return c.stripControlChars }
func (c Config) SkipEmptyRows() bool                  { return c.skipEmptyRows }
func (c Config) ColumnDelimiter() Char                { return c.delimiter }
func (c Config) TextQualifier() Char                  { return c.qualifier }
func (c Config) EscapeChar() Char                     { return c.escape }
func (c Config) CommentChar() Char                    { return c.comment }

// SetFieldMode switches the field mode. FixedWidth unsets the delimiter and
// FirstRowSetsExpectedColumnCount; Delimited clears the column widths.
func (c *Config) SetFieldMode(m FieldMode) {
	c.mode = m
	if m == FixedWidth {
		c.delimiter = NoChar
		c.firstRowSetsExpected = false
	} else {
		c.widths = nil
	}
}

// SetColumnWidths configures fixed-width fields. A nil slice returns to Delimited
// mode with no expected column count. Every width must be at least 1.
func (c *Config) SetColumnWidths(widths []int) error {
	if widths == nil {
		c.widths = nil
		c.mode = Delimited
		c.expectedColumnCount = 0
		return nil
	}
	if len(widths) == 0 {
		return &ArgumentError{Field: "ColumnWidths", Message: "must contain at least one width"}
	}
	for i, w := range widths {
		if w < 1 {
			return &ArgumentError{
				Field:   "ColumnWidths",
				Message: fmt.Sprintf("width %d at index %d must be at least 1", w, i),
			}
		}
	}
	c.widths = append([]int(nil), widths...)
	c.mode = FixedWidth
	c.delimiter = NoChar
	c.firstRowSetsExpected = false
	c.expectedColumnCount = len(widths)
	return nil
}

// SetMaxBufferSize sets the buffer size in characters. It must be at least 1.
func (c *Config) SetMaxBufferSize(n int) error {
	if n < 1 {
		return &ArgumentError{Field: "MaxBufferSize", Message: fmt.Sprintf("%d is not a positive size", n)}
	}
	c.maxBufferSize = n
	return nil
}

// SetMaxRows limits the number of data rows returned; 0 means unbounded.
// Negative values are treated as 0.
func (c *Config) SetMaxRows(n int) { c.maxRows = clampZero(n) }

// SetSkipStartingRows sets how many data rows are consumed before any are returned.
func (c *Config) SetSkipStartingRows(n int) { c.skipStartingRows = clampZero(n) }

// SetSkipEndingRows sets how many rows a table adapter drops from the end of the result.
// The streaming parser does not use it.
func (c *Config) SetSkipEndingRows(n int) { c.skipEndingRows = clampZero(n) }

// SetExpectedColumnCount sets the enforced field count; 0 disables enforcement.
// A count that disagrees with configured column widths clears the widths and
// returns to Delimited mode.
func (c *Config) SetExpectedColumnCount(n int) {
	n = clampZero(n)
	if c.mode == FixedWidth && c.widths != nil && len(c.widths) != n {
		c.widths = nil
		c.mode = Delimited
	}
	c.expectedColumnCount = n
}

func (c *Config) SetFirstRowHasHeader(v bool) { c.firstRowHasHeader = v }

// SetFirstRowSetsExpectedColumnCount makes the first row's field count the expected
// count for the rest of the input. Enabling it forces Delimited mode.
func (c *Config) SetFirstRowSetsExpectedColumnCount(v bool) {
	c.firstRowSetsExpected = v
	if v {
		c.mode = Delimited
		c.widths = nil
	}
}

func (c *Config) SetTrimResults(v bool)       { c.trimResults = v }
func (c *Config) SetStripControlChars(v bool) { c.stripControlChars = v }
func (c *Config) SetSkipEmptyRows(v bool)     { c.skipEmptyRows = v }

// SetColumnDelimiter sets the delimiter. Setting a character forces Delimited mode
// and clears the widths; unsetting it switches to FixedWidth.
func (c *Config) SetColumnDelimiter(ch Char) {
	c.delimiter = ch
	if ch.ok {
		c.mode = Delimited
		c.widths = nil
	} else {
		c.mode = FixedWidth
		c.firstRowSetsExpected = false
	}
}

func (c *Config) SetTextQualifier(ch Char) { c.qualifier = ch }
func (c *Config) SetEscapeChar(ch Char)    { c.escape = ch }
func (c *Config) SetCommentChar(ch Char)   { c.comment = ch }

// Validate checks that the options are complete enough to start parsing.
func (c Config) Validate() error {
	if c.maxBufferSize < 1 {
		return &ArgumentError{Field: "MaxBufferSize", Message: "must be at least 1"}
	}
	switch c.mode {
	case FixedWidth:
		if len(c.widths) == 0 {
			return &ArgumentError{Field: "ColumnWidths", Message: "fixed width parsing requires column widths"}
		}
	case Delimited:
		if !c.delimiter.ok {
			return &ArgumentError{Field: "ColumnDelimiter", Message: "delimited parsing requires a column delimiter"}
		}
		if c.delimiter.r == '\n' || c.delimiter.r == utf8.RuneError {
			return &ArgumentError{Field: "ColumnDelimiter", Message: fmt.Sprintf("%s cannot delimit columns", c.delimiter)}
		}
	default:
		return &ArgumentError{Field: "FieldMode", Message: c.mode.String()}
	}
	return nil
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
