package flatfile

import (
	"errors"
	"io"
)

// errArenaFull is returned by cursor.next when the field being scanned fills the whole arena.
var errArenaFull = errors.New("arena full")

// cursor is a fixed-capacity character arena over a rune source.
//
// buf[:fill] holds decoded characters, buf[read] is the next unconsumed one and
// colStart marks the first character of the field being scanned (-1 before the
// first row). Characters before colStart are consumed and may be overwritten on
// the next refill.
type cursor struct {
	buf      []rune
	fill     int
	read     int
	colStart int
	// newData is where the next refill starts writing when no field is pending.
	newData int
	src     io.RuneReader
	done    bool
}

// reset binds src and prepares an arena of size characters, reusing the current one when it fits.
func (c *cursor) reset(src io.RuneReader, size int) {
	if len(c.buf) != size {
		if c.buf != nil {
			putArena(c.buf)
		}
		c.buf = getArena(size)
	}
	c.src = src
	c.fill = 0
	c.read = 0
	c.newData = 0
	c.colStart = -1
	c.done = false
}

// release drops the source and returns the arena to the pool.
func (c *cursor) release() {
	if c.buf != nil {
		putArena(c.buf)
	}
	c.buf = nil
	c.src = nil
	c.fill = 0
	c.read = 0
	c.done = true
}

// next returns the next character. ok is false once the source is exhausted.
// When discard is set the pending field is dropped on refill instead of kept.
func (c *cursor) next(discard bool) (r rune, ok bool, err error) {
	if c.read >= c.fill {
		if c.done {
			return 0, false, nil
		}
		if c.colStart > -1 {
			if err := c.compact(discard); err != nil {
				return 0, false, err
			}
		}
		n, err := c.load(c.newData)
		c.read = c.newData
		if err != nil {
			c.done = true
			return 0, false, err
		}
		if n == 0 {
			c.done = true
			return 0, false, nil
		}
	}
	r = c.buf[c.read]
	c.read++
	return r, true, nil
}

// back un-reads the character last returned by next.
func (c *cursor) back() {
	if c.read > 0 {
		c.read--
	}
}

// compact moves the pending field buf[colStart:fill] to the front of the arena.
// A discarded field never overflows, so comment lines may be longer than the arena.
func (c *cursor) compact(discard bool) error {
	switch {
	case discard:
		c.newData = 0
	case c.colStart == 0 && c.fill == len(c.buf):
		return errArenaFull
	default:
		c.newData = copy(c.buf, c.buf[c.colStart:c.fill])
	}
	c.read = c.newData
	c.colStart = 0
	return nil
}

// load reads characters into buf[start:] until the arena is full or the source ends.
func (c *cursor) load(start int) (int, error) {
	n := start
	for n < len(c.buf) {
		r, _, err := c.src.ReadRune()
		if err != nil {
			c.fill = n
			if err == io.EOF {
				return n - start, nil
			}
			return n - start, err
		}
		c.buf[n] = r
		n++
	}
	c.fill = n
	return n - start, nil
}
