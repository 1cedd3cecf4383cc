package table

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// RenderOptions controls Render.
type RenderOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// UseCRLF ends records with "\r\n" instead of "\n".
	UseCRLF bool
}

// Render converts an array of records, as produced by Table.ToAST, to delimited bytes.
//
// Fields containing the delimiter, quotes or line breaks are quoted and embedded
// quotes are doubled. Every record, including the last, ends with a line ending.
func Render(node ast.SchemaNode, opts RenderOptions) ([]byte, error) {
	if node == nil {
		return []byte{}, nil
	}
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	lineEnding := "\n"
	if opts.UseCRLF {
		lineEnding = "\r\n"
	}

	file, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("unsupported node type for rendering: %T", node)
	}
	var buf bytes.Buffer
	for _, elem := range file.Elements() {
		record, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("expected record to be *ast.ArrayDataNode, got %T", elem)
		}
		if err := renderRecord(record, &buf, opts.Comma); err != nil {
			return nil, err
		}
		buf.WriteString(lineEnding)
	}
	return buf.Bytes(), nil
}

func renderRecord(record *ast.ArrayDataNode, buf *bytes.Buffer, delim rune) error {
	for i, elem := range record.Elements() {
		if i > 0 {
			buf.WriteRune(delim)
		}
		lit, ok := elem.(*ast.LiteralNode)
		if !ok {
			return fmt.Errorf("expected field to be *ast.LiteralNode, got %T", elem)
		}
		writeField(buf, literalString(lit), delim)
	}
	return nil
}

func literalString(n *ast.LiteralNode) string {
	switch v := n.Value().(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeField quotes value when it contains the delimiter, a quote or a line break.
func writeField(buf *bytes.Buffer, value string, delim rune) {
	if !strings.ContainsRune(value, delim) && !strings.ContainsAny(value, "\"\n\r") {
		buf.WriteString(value)
		return
	}
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(value, `"`, `""`))
	buf.WriteByte('"')
}

// Records converts an array of records back to string rows.
//
// Example:
//
//	rows, err := table.Records(t.ToAST())
//	// rows[0] holds the column names
func Records(node ast.SchemaNode) ([][]string, error) {
	file, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("expected *ast.ArrayDataNode, got %T", node)
	}
	elements := file.Elements()
	rows := make([][]string, 0, len(elements))
	for _, elem := range elements {
		record, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("expected record to be *ast.ArrayDataNode, got %T", elem)
		}
		fields := make([]string, 0, len(record.Elements()))
		for _, f := range record.Elements() {
			lit, ok := f.(*ast.LiteralNode)
			if !ok {
				return nil, fmt.Errorf("expected field to be *ast.LiteralNode, got %T", f)
			}
			fields = append(fields, literalString(lit))
		}
		rows = append(rows, fields)
	}
	return rows, nil
}
