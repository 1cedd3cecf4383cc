package flatfile

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Fields returns a copy of the current row's fields.
func (p *Parser) Fields() []string {
	return append([]string(nil), p.fields...)
}

// Field returns the field at index i of the current row.
// It returns false when i is out of range.
func (p *Parser) Field(i int) (string, bool) {
	if i < 0 || i >= len(p.fields) {
		return "", false
	}
	return p.fields[i], true
}

// FieldByName returns the field in the column named name. It requires a captured
// header row and returns false for unknown names.
func (p *Parser) FieldByName(name string) (string, bool) {
	return p.Field(p.ColumnIndex(name))
}

// ColumnCount returns the number of fields in the current row.
func (p *Parser) ColumnCount() int { return len(p.fields) }

// LargestColumnCount returns the largest number of columns seen so far, counting header names.
func (p *Parser) LargestColumnCount() int { return len(p.columns) }

// ColumnName returns the header name of column i. It returns false when no header
// has been captured, when i is out of range and for columns the header did not name.
func (p *Parser) ColumnName(i int) (string, bool) {
	if !p.headerFound || i < 0 || i >= len(p.columns) || !p.columns[i].named {
		return "", false
	}
	return p.columns[i].name, true
}

// ColumnNames returns the column names seen so far; unnamed columns are empty strings.
func (p *Parser) ColumnNames() []string {
	names := make([]string, len(p.columns))
	for i, c := range p.columns {
		names[i] = c.name
	}
	return names
}

// ColumnIndex returns the index of the column whose header name is exactly name,
// or -1 when there is none or no header has been captured.
func (p *Parser) ColumnIndex(name string) int {
	return p.ColumnIndexFunc(name, ExactMatch)
}

// ColumnIndexFunc is like ColumnIndex but compares names with match.
func (p *Parser) ColumnIndexFunc(name string, match NameMatcher) int {
	if !p.headerFound {
		return -1
	}
	for i, c := range p.columns {
		if c.named && match(c.name, name) {
			return i
		}
	}
	return -1
}

func (p *Parser) RowType() RowType   { return p.rowType }
func (p *Parser) IsRowEmpty() bool   { return p.rowEmpty }
func (p *Parser) HeaderFound() bool  { return p.headerFound }
func (p *Parser) DataRowNumber() int { return p.dataRow }
func (p *Parser) FileRowNumber() int { return p.fileRow }

// ExpectedColumnCount returns the column count enforced by the current parse. With
// FirstRowSetsExpectedColumnCount it is the count learned from the first row.
func (p *Parser) ExpectedColumnCount() int {
	if p.state == StateParsing || p.state == StateFinished {
		return p.expected
	}
	return p.cfg.expectedColumnCount
}

// NameMatcher reports whether a column name matches a requested name.
type NameMatcher func(column, name string) bool

// ExactMatch compares names byte for byte.
func ExactMatch(column, name string) bool {
	return column == name
}

// IgnoreCase compares names after Unicode case folding.
func IgnoreCase(column, name string) bool {
	fold := cases.Fold()
	return fold.String(column) == fold.String(name)
}

// CultureMatch returns a matcher that compares names with the collation rules of tag,
// ignoring case and width differences.
func CultureMatch(tag language.Tag) NameMatcher {
	return func(column, name string) bool {
		c := collate.New(tag, collate.IgnoreCase, collate.IgnoreWidth)
		return c.CompareString(column, name) == 0
	}
}
