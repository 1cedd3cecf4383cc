package flatfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
)

// State is the lifecycle state of a Parser.
type State int

const (
	// StateNoSource means no source is bound; Read fails.
	StateNoSource State = iota
	// StateReady means a source is bound and the configuration may still change.
	StateReady
	// StateParsing means scanning has started; the configuration is frozen.
	StateParsing
	// StateFinished means the source was exhausted or the parser was closed.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNoSource:
		return "NoSource"
	case StateReady:
		return "Ready"
	case StateParsing:
		return "Parsing"
	case StateFinished:
		return "Finished"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// RowType classifies a physical row.
type RowType int

const (
	RowUnknown RowType = iota
	RowComment
	RowHeader
	RowSkipped
	RowData
)

func (t RowType) String() string {
	switch t {
	case RowUnknown:
		return "Unknown"
	case RowComment:
		return "Comment"
	case RowHeader:
		return "Header"
	case RowSkipped:
		return "Skipped"
	case RowData:
		return "Data"
	default:
		return fmt.Sprintf("RowType(%d)", t)
	}
}

// column is an entry of the column-name list. Unnamed columns have named == false.
type column struct {
	name  string
	named bool
}

// Parser tokenizes a delimited or fixed-width character stream one row at a time.
//
// A Parser is not safe for concurrent use. Fields returned by the accessors are
// copies and remain valid after the next call to Read.
//
// Example:
//
//	p := flatfile.New(flatfile.DefaultConfig())
//	if err := p.SetSource(strings.NewReader("a,b\n1,2\n")); err != nil {
//		return err
//	}
//	for {
//		ok, err := p.Read()
//		if err != nil {
//			return err
//		}
//		if !ok {
//			break
//		}
//		fmt.Println(p.Fields())
//	}
type Parser struct {
	cfg   Config
	state State

	cur    cursor
	closer io.Closer
	ch     rune

	rowType     RowType
	fields      []string
	columns     []column
	headerFound bool
	rowEmpty    bool
	// quoted is set when the current field began with the text qualifier.
	quoted bool
	// escapes is set when the current field holds escape characters or doubled qualifiers.
	escapes bool

	dataRow int
	fileRow int
	// expected is the enforced column count for the current parse.
	expected int

	disposeOnce sync.Once
	disposed    bool
	onDispose   []func() error
}

// New returns a Parser with the given configuration and no source.
func New(cfg Config) *Parser {
	cfg.widths = cfg.ColumnWidths()
	return &Parser{cfg: cfg, state: StateNoSource}
}

// Config returns a copy of the parser's configuration.
func (p *Parser) Config() Config {
	c := p.cfg
	c.widths = p.cfg.ColumnWidths()
	return c
}

// SetConfig replaces the configuration. It fails with a StateError while parsing.
func (p *Parser) SetConfig(cfg Config) error {
	return p.Update(func(c *Config) error {
		*c = cfg
		c.widths = cfg.ColumnWidths()
		return nil
	})
}

// Update applies fn to a copy of the configuration and keeps the result when fn succeeds.
// It fails with a StateError while parsing, and leaves the configuration unchanged when fn fails.
func (p *Parser) Update(fn func(*Config) error) error {
	if p.state == StateParsing {
		return p.stateError("changing the configuration")
	}
	c := p.Config()
	if err := fn(&c); err != nil {
		return err
	}
	p.cfg = c
	return nil
}

// State returns the lifecycle state.
func (p *Parser) State() State { return p.state }

// SetSource binds r as the input. An io.Closer is closed when parsing finishes,
// when another source is bound and when the parser is closed.
func (p *Parser) SetSource(r io.Reader) error {
	if r == nil {
		return &ArgumentError{Field: "source", Message: "reader is nil"}
	}
	if p.disposed {
		return &StateError{Op: "binding a source", State: p.state, msg: "parser is disposed"}
	}
	if p.state == StateParsing {
		return p.stateError("binding a source")
	}
	_ = p.releaseSource()
	p.bind(r)
	return nil
}

func (p *Parser) bind(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		p.closer = c
	}
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	p.cur.src = rr
	p.state = StateReady
}

// releaseSource closes the bound source exactly once.
func (p *Parser) releaseSource() error {
	p.cur.src = nil
	if p.closer == nil {
		return nil
	}
	c := p.closer
	p.closer = nil
	return c.Close()
}

// finish releases the source and marks the parser finished.
func (p *Parser) finish() {
	_ = p.releaseSource()
	p.state = StateFinished
}

// Read scans the next data row. It returns false when no rows remain; after that
// it keeps returning false until a new source is bound.
// Header, comment, skipped and (by default) empty rows are consumed without returning.
func (p *Parser) Read() (bool, error) {
	if err := p.beginRow(); err != nil {
		return false, err
	}
	if p.state == StateFinished {
		return false, nil
	}

	for {
		ok, err := p.advance()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}

		if p.rowType == RowUnknown {
			if err := p.classify(); err != nil {
				return false, err
			}
			if p.state == StateFinished {
				return false, nil
			}
		}

		if p.cfg.mode == Delimited {
			if p.cfg.escape.Is(p.ch) {
				p.escapes = true
				ok, err := p.advance()
				if err != nil {
					return false, err
				}
				if !ok {
					break
				}
				continue
			}
			if p.cur.read-1 == p.cur.colStart && p.cfg.qualifier.Is(p.ch) {
				if err := p.skipQuoted(); err != nil {
					return false, err
				}
				continue
			}
		}

		if p.isRowEnd(p.ch) {
			if err := p.endRow(p.cur.read - 2); err != nil {
				return false, err
			}
			if err := p.consumeTerminatorPair(p.ch); err != nil {
				return false, err
			}
			if p.rowType == RowData && (len(p.fields) > 0 || !p.cfg.skipEmptyRows) {
				return true, nil
			}
			p.rowType = RowUnknown
			continue
		}

		if p.isColumnEnd() {
			if p.rowType == RowData || p.rowType == RowHeader {
				end := p.cur.read - 2
				if p.cfg.mode == FixedWidth {
					end = p.cur.read - 1
				}
				if err := p.extract(end); err != nil {
					return false, err
				}
			}
			p.rowEmpty = false
			p.quoted = false
			p.escapes = false
			p.cur.colStart = p.cur.read
		}
	}

	// Input ended. Flush the row in progress, if any character of one was read.
	if p.rowType == RowUnknown {
		return false, nil
	}
	if err := p.endRow(p.cur.read - 1); err != nil {
		return false, err
	}
	return p.rowType == RowData && (len(p.fields) > 0 || !p.cfg.skipEmptyRows), nil
}

// advance reads the next character into p.ch.
func (p *Parser) advance() (bool, error) {
	r, ok, err := p.cur.next(p.rowType == RowComment)
	if err != nil {
		if errors.Is(err, errArenaFull) {
			return false, p.parsingError(ErrBufferTooSmall.Error()+".", ErrBufferTooSmall)
		}
		p.finish()
		return false, fmt.Errorf("flatfile: reading source: %w", err)
	}
	if !ok {
		p.finish()
		return false, nil
	}
	p.ch = r
	return true, nil
}

func (p *Parser) isRowEnd(r rune) bool {
	return r == '\n' || (r == '\r' && !p.cfg.delimiter.Is('\r'))
}

func (p *Parser) isColumnEnd() bool {
	if p.cfg.mode == Delimited {
		return p.cfg.delimiter.Is(p.ch)
	}
	n := len(p.fields)
	return n < len(p.cfg.widths) && p.cur.read-p.cur.colStart >= p.cfg.widths[n]
}

// consumeTerminatorPair reads past the second half of a "\r\n" or "\n\r" pair
// ending a row, or pushes the peeked character back.
func (p *Parser) consumeTerminatorPair(first rune) error {
	ok, err := p.advance()
	if err != nil || !ok {
		return err
	}
	if p.ch != first && p.isRowEnd(p.ch) {
		return nil
	}
	p.cur.back()
	return nil
}

// skipQuoted scans to the end of a field that starts with the text qualifier.
// A doubled qualifier is a literal qualifier; the character after the closing
// qualifier is pushed back for normal processing.
func (p *Parser) skipQuoted() error {
	p.quoted = true
	for {
		ok, err := p.advance()
		if err != nil || !ok {
			return err
		}
		if p.cfg.escape.Is(p.ch) {
			p.escapes = true
			if ok, err = p.advance(); err != nil || !ok {
				return err
			}
			continue
		}
		if !p.cfg.qualifier.Is(p.ch) {
			continue
		}
		if ok, err = p.advance(); err != nil || !ok {
			return err
		}
		if p.cfg.qualifier.Is(p.ch) {
			p.escapes = true
			continue
		}
		p.cur.back()
		return nil
	}
}

// Close releases the source and the buffer. The parser becomes Finished and may be
// reused by binding a new source; the configuration is kept.
func (p *Parser) Close() error {
	err := p.cleanup()
	p.state = StateFinished
	return err
}

func (p *Parser) cleanup() error {
	err := p.releaseSource()
	p.cur.release()
	p.fields = nil
	p.columns = nil
	p.headerFound = false
	p.rowType = RowUnknown
	return err
}

// OnDispose registers fn to run after Dispose has released everything.
// Errors returned by fn and panics raised by it are discarded.
func (p *Parser) OnDispose(fn func() error) {
	if fn != nil {
		p.onDispose = append(p.onDispose, fn)
	}
}

// Dispose releases every resource and clears the configuration's widths and delimiter.
// It is safe to call more than once; only the first call has an effect.
func (p *Parser) Dispose() {
	p.disposeOnce.Do(func() {
		_ = p.cleanup()
		p.cfg.widths = nil
		p.cfg.delimiter = NoChar
		p.state = StateFinished
		p.disposed = true
		for _, fn := range p.onDispose {
			runHook(fn)
		}
		p.onDispose = nil
	})
}

func runHook(fn func() error) {
	defer func() {
		_ = recover()
	}()
	_ = fn()
}
