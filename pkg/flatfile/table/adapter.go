// Package table materializes the rows of a flatfile.Parser into an in-memory Table.
//
// The adapter reads every data row, creates one column per column name reported by the
// parser and optionally prepends the physical line number of each row:
//
//	cfg := flatfile.DefaultConfig()
//	cfg.SetFirstRowHasHeader(true)
//	p := flatfile.New(cfg)
//	if err := p.SetSourceFile("people.csv"); err != nil {
//	    // handle error
//	}
//	defer p.Close()
//	t, err := table.NewAdapter(p, table.IncludeFileLineNumber(true)).Table()
package table

import (
	"fmt"
	"strconv"

	"github.com/shapestone/shape-flatfile/pkg/flatfile"
)

// FileLineNumberColumn names the column that holds each row's file row number.
const FileLineNumberColumn = "FileLineNumber"

// RowSource is the part of *flatfile.Parser the adapter reads from.
type RowSource interface {
	Read() (bool, error)
	Fields() []string
	ColumnName(i int) (string, bool)
	LargestColumnCount() int
	FileRowNumber() int
	IsRowEmpty() bool
	Config() flatfile.Config
}

// Option configures an Adapter.
type Option func(*Adapter)

// IncludeFileLineNumber adds a leading FileLineNumber column when v is true.
func IncludeFileLineNumber(v bool) Option {
	return func(a *Adapter) { a.includeFileLineNumber = v }
}

// Adapter builds a Table from a RowSource.
type Adapter struct {
	src                   RowSource
	includeFileLineNumber bool
}

// NewAdapter returns an Adapter reading from src.
func NewAdapter(src RowSource, opts ...Option) *Adapter {
	a := &Adapter{src: src}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IncludeFileLineNumber reports whether tables get a leading FileLineNumber column.
func (a *Adapter) IncludeFileLineNumber() bool { return a.includeFileLineNumber }

// SetIncludeFileLineNumber sets whether tables get a leading FileLineNumber column.
func (a *Adapter) SetIncludeFileLineNumber(v bool) { a.includeFileLineNumber = v }

// Table reads the remaining rows of the source. The last SkipEndingRows rows of the
// source's configuration are dropped. On error the rows read so far are discarded.
func (a *Adapter) Table() (*Table, error) {
	t := &Table{}
	created := 0
	cfg := a.src.Config()

	for {
		ok, err := a.src.Read()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		created = a.createColumns(t, created)

		if a.src.IsRowEmpty() && cfg.SkipEmptyRows() {
			continue
		}
		fields := a.src.Fields()
		if a.includeFileLineNumber {
			fields = append([]string{strconv.Itoa(a.src.FileRowNumber())}, fields...)
		}
		t.rows = append(t.rows, fields)
		t.fileRows = append(t.fileRows, a.src.FileRowNumber())
	}
	// A header without data rows still names the columns.
	a.createColumns(t, created)

	n := cfg.SkipEndingRows()
	if n > len(t.rows) {
		n = len(t.rows)
	}
	t.rows = t.rows[:len(t.rows)-n]
	t.fileRows = t.fileRows[:len(t.fileRows)-n]
	return t, nil
}

// createColumns adds the columns the source reports beyond the created ones and
// returns the new count of created source columns.
func (a *Adapter) createColumns(t *Table, created int) int {
	count := a.src.LargestColumnCount()
	if count <= created {
		return created
	}
	if a.includeFileLineNumber && created == 0 {
		t.columns = append(t.columns, FileLineNumberColumn)
	}
	for i := created; i < count; i++ {
		name, _ := a.src.ColumnName(i)
		t.addColumn(name)
	}
	return count
}

// addColumn appends name, or the first free numbered variant of it when the name is
// taken. An empty name becomes the first free ColumnN.
func (t *Table) addColumn(name string) {
	if name == "" {
		for n := 1; ; n++ {
			if candidate := fmt.Sprintf("Column%d", n); !t.hasColumn(candidate) {
				t.columns = append(t.columns, candidate)
				return
			}
		}
	}
	if !t.hasColumn(name) {
		t.columns = append(t.columns, name)
		return
	}
	for n := 1; ; n++ {
		if candidate := fmt.Sprintf("%s%d", name, n); !t.hasColumn(candidate) {
			t.columns = append(t.columns, candidate)
			return
		}
	}
}

// hasColumn compares names without regard to case.
func (t *Table) hasColumn(name string) bool {
	for _, c := range t.columns {
		if flatfile.IgnoreCase(c, name) {
			return true
		}
	}
	return false
}
