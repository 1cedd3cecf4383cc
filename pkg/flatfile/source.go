package flatfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/shapestone/shape-flatfile/internal/source"
)

// SetSourceFile binds the file at path, decoded as UTF-8 unless it starts with a
// byte order mark. Compressed files (.gz, .zst, .sz, .xz, .bz2) are decompressed.
func (p *Parser) SetSourceFile(path string) error {
	return p.SetSourceFileEncoding(path, unicode.UTF8)
}

// SetSourceFileEncoding binds the file at path decoded with enc.
// An empty path, a nil encoding and a missing file are each reported as an ArgumentError;
// a missing file also matches os.ErrNotExist.
func (p *Parser) SetSourceFileEncoding(path string, enc encoding.Encoding) error {
	if path == "" {
		return &ArgumentError{Field: "path", Message: "path is empty"}
	}
	if enc == nil {
		return &ArgumentError{Field: "encoding", Message: "encoding is nil"}
	}
	if p.disposed {
		return &StateError{Op: "binding a source", State: p.state, msg: "parser is disposed"}
	}
	if p.state == StateParsing {
		return p.stateError("binding a source")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ArgumentError{Field: "path", Message: fmt.Sprintf("file %s does not exist", path), Err: os.ErrNotExist}
		}
		return fmt.Errorf("flatfile: %w", err)
	}
	rc, err := source.Open(path, source.Options{Encoding: enc})
	if err != nil {
		return err
	}
	_ = p.releaseSource()
	p.bind(rc)
	return nil
}
