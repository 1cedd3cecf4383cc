package table

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shapestone/shape-core/pkg/ast"
)

// Table is a materialized result. Rows may hold fewer values than there are columns;
// the missing cells are null.
type Table struct {
	columns  []string
	rows     [][]string
	fileRows []int
}

// Columns returns the column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of row i. It returns nil when i is out of range.
func (t *Table) Row(i int) []string {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return append([]string(nil), t.rows[i]...)
}

// Rows returns every row.
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.rows))
	for i := range t.rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// FileRow returns the file row number row i ended on, or 0 when i is out of range.
func (t *Table) FileRow(i int) int {
	if i < 0 || i >= len(t.fileRows) {
		return 0
	}
	return t.fileRows[i]
}

// Value returns the cell of row i in the named column. It returns false for unknown
// columns, out of range rows and null cells.
func (t *Table) Value(i int, column string) (string, bool) {
	c := t.ColumnIndex(column)
	if c < 0 || i < 0 || i >= len(t.rows) || c >= len(t.rows[i]) {
		return "", false
	}
	return t.rows[i][c], true
}

// ToAST converts the table to an array of records, column names first when the table
// has columns. Each data literal is positioned at its file row and 1-based column.
//
// Example:
//
//	node := t.ToAST()
//	out, _ := table.Render(node, table.RenderOptions{Comma: '\t'})
func (t *Table) ToAST() *ast.ArrayDataNode {
	records := make([]ast.SchemaNode, 0, len(t.rows)+1)

	if len(t.columns) > 0 {
		names := make([]ast.SchemaNode, len(t.columns))
		for i, name := range t.columns {
			names[i] = ast.NewLiteralNode(name, ast.ZeroPosition())
		}
		records = append(records, ast.NewArrayDataNode(names, ast.ZeroPosition()))
	}

	for r, row := range t.rows {
		line := t.fileRows[r]
		fields := make([]ast.SchemaNode, len(row))
		for c, v := range row {
			fields[c] = ast.NewLiteralNode(v, ast.NewPosition(0, line, c+1))
		}
		records = append(records, ast.NewArrayDataNode(fields, ast.NewPosition(0, line, 1)))
	}
	return ast.NewArrayDataNode(records, ast.ZeroPosition())
}

// ToArrow converts the table to an Arrow table with one nullable utf8 column per
// column name. The caller must Release the result.
func (t *Table) ToArrow(mem memory.Allocator) arrow.Table {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	fields := make([]arrow.Field, len(t.columns))
	for i, name := range t.columns {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	columns := make([]arrow.Column, len(t.columns))
	for i, field := range fields {
		b := array.NewStringBuilder(mem)
		b.Reserve(len(t.rows))
		for _, row := range t.rows {
			if i < len(row) {
				b.Append(row[i])
			} else {
				b.AppendNull()
			}
		}
		arr := b.NewArray()
		b.Release()

		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		arr.Release()
		columns[i] = *arrow.NewColumn(field, chunked)
		chunked.Release()
	}

	tbl := array.NewTable(schema, columns, int64(len(t.rows)))
	for i := range columns {
		columns[i].Release()
	}
	return tbl
}
