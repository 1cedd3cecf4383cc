package flatfile

// classify decides the type of the row whose first character is p.ch.
// Comment rows are skipped entirely; p.ch is then the first character of the
// next row, or the parser is Finished.
func (p *Parser) classify() error {
	if p.cfg.comment.Is(p.ch) {
		p.rowType = RowComment
		if err := p.skipComments(); err != nil {
			return err
		}
		if p.state == StateFinished {
			return nil
		}
	}

	p.cur.colStart = p.cur.read - 1
	p.quoted = false
	p.escapes = false
	p.rowEmpty = true

	switch {
	case p.cfg.firstRowHasHeader && !p.headerFound:
		p.rowType = RowHeader
	case p.dataRow < p.cfg.skipStartingRows:
		p.rowType = RowSkipped
	default:
		p.rowType = RowData
	}
	return nil
}

// skipComments consumes consecutive comment lines, counting each as a file row.
func (p *Parser) skipComments() error {
	inLine := true
	for {
		ok, err := p.advance()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if !p.isRowEnd(p.ch) {
			continue
		}
		p.fileRow++
		inLine = false

		first := p.ch
		if ok, err = p.advance(); err != nil || !ok {
			return err
		}
		if p.ch != first && p.isRowEnd(p.ch) {
			if ok, err = p.advance(); err != nil || !ok {
				return err
			}
		}
		if !p.cfg.comment.Is(p.ch) {
			return nil
		}
		inLine = true
	}
	// Last line of the input was a comment without a terminator.
	if inLine {
		p.fileRow++
	}
	return nil
}
