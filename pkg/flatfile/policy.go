package flatfile

import "fmt"

// beginRow prepares state for the next call to Read.
func (p *Parser) beginRow() error {
	switch p.state {
	case StateNoSource:
		return &StateError{Op: "Read", State: p.state, msg: "no data source was supplied to parse"}

	case StateReady:
		if err := p.cfg.Validate(); err != nil {
			return err
		}
		p.state = StateParsing
		p.dataRow = 0
		p.fileRow = 0
		p.expected = p.cfg.expectedColumnCount
		p.headerFound = false
		p.rowType = RowUnknown
		p.rowEmpty = true
		p.quoted = false
		p.escapes = false
		p.fields = p.fields[:0]
		p.columns = p.columns[:0]
		p.cur.reset(p.cur.src, p.cfg.maxBufferSize)

	case StateParsing:
		p.fields = p.fields[:0]
		if p.cfg.maxRows > 0 && p.dataRow-p.cfg.skipStartingRows >= p.cfg.maxRows {
			p.finish()
			return nil
		}
		p.rowType = RowUnknown

	case StateFinished:
		p.fields = p.fields[:0]
	}
	return nil
}

// endRow finalizes the row whose last field ends at buf[end].
func (p *Parser) endRow(end int) error {
	colEmpty := end < p.cur.colStart
	p.rowEmpty = p.rowEmpty && colEmpty
	p.fileRow++

	if !p.rowEmpty || !p.cfg.skipEmptyRows {
		if p.rowType == RowData || p.rowType == RowSkipped {
			p.dataRow++
		}
		if (!colEmpty || (!p.rowEmpty && p.cfg.mode == Delimited)) &&
			(p.rowType == RowData || p.rowType == RowHeader) {
			if err := p.extract(end); err != nil {
				return err
			}
		}
		p.quoted = false
		p.escapes = false
		p.cur.colStart = p.cur.read
	}

	if len(p.fields) == 0 {
		return nil
	}
	if p.expected > 0 && len(p.fields) != p.expected {
		return p.parsingError(
			fmt.Sprintf("Expected column count of %d not found.", p.expected),
			ErrUnexpectedColumnCount)
	}
	if p.cfg.mode == Delimited && p.cfg.firstRowSetsExpected {
		p.expected = len(p.fields)
	}
	if p.rowType == RowHeader {
		p.captureHeader()
	}
	return nil
}

// captureHeader moves the header row's fields into the column names.
func (p *Parser) captureHeader() {
	p.rowEmpty = true
	p.headerFound = true
	for _, name := range p.fields {
		p.columns = append(p.columns, column{name: name, named: true})
	}
	p.fields = p.fields[:0]
}
