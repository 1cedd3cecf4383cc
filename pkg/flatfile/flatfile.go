// Package flatfile tokenizes delimited and fixed-width text one row at a time.
//
// A Parser reads from any io.Reader through a fixed-size character buffer, so memory
// use is bounded by Config.MaxBufferSize regardless of the input size. Rows are
// classified as comment, header, skipped or data rows; only data rows are returned
// by Read.
//
// # Field rules
//
//   - Delimited fields are split on ColumnDelimiter. A field starting with
//     TextQualifier may contain delimiters and line breaks; a doubled qualifier
//     inside it is a literal qualifier.
//   - EscapeChar, when set, makes the following character literal.
//   - FixedWidth fields are cut by ColumnWidths; the last field takes the rest of the line.
//   - Rows end at "\n", "\r" or "\r\n". When the delimiter itself is '\r', only "\n" ends a row.
//
// # Errors
//
// Read returns a *ParsingError when a field does not fit in the buffer or a row has
// the wrong number of fields. Changing the configuration or the source while parsing
// returns a *StateError; rejected values return an *ArgumentError.
//
// # Example
//
//	cfg := flatfile.DefaultConfig()
//	cfg.SetFirstRowHasHeader(true)
//	p := flatfile.New(cfg)
//	if err := p.SetSourceFile("people.csv"); err != nil {
//	    // handle error
//	}
//	defer p.Close()
//	for {
//	    ok, err := p.Read()
//	    if err != nil {
//	        // handle error
//	    }
//	    if !ok {
//	        break
//	    }
//	    name, _ := p.FieldByName("name")
//	    fmt.Println(name)
//	}
package flatfile

import (
	"io"
	"strings"
)

// ReadAll parses every data row of r with cfg.
func ReadAll(r io.Reader, cfg Config) ([][]string, error) {
	p := New(cfg)
	defer p.Close()
	if err := p.SetSource(r); err != nil {
		return nil, err
	}
	var rows [][]string
	for {
		ok, err := p.Read()
		if err != nil {
			return rows, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, p.Fields())
	}
}

// ReadString parses every data row of s with cfg.
func ReadString(s string, cfg Config) ([][]string, error) {
	return ReadAll(strings.NewReader(s), cfg)
}
