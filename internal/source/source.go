// Package source opens flat files as decoded character streams.
package source

import (
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Compression is the compression format of a source file.
type Compression int

const (
	// CompressAuto picks the format from the file extension.
	CompressAuto Compression = iota
	CompressNone
	CompressGzip
	CompressZstd
	CompressSnappy
	CompressXz
	CompressBzip2
)

var extensions = map[string]Compression{
	".gz":     CompressGzip,
	".gzip":   CompressGzip,
	".zst":    CompressZstd,
	".zstd":   CompressZstd,
	".sz":     CompressSnappy,
	".snappy": CompressSnappy,
	".xz":     CompressXz,
	".bz2":    CompressBzip2,
}

// DetectCompression returns the compression implied by the extension of path.
func DetectCompression(path string) Compression {
	if c, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return c
	}
	return CompressNone
}

// Options controls how a file is opened.
type Options struct {
	// Encoding decodes the file's bytes; nil means UTF-8. A byte order mark,
	// when present, overrides it.
	Encoding encoding.Encoding
	// Compression defaults to CompressAuto.
	Compression Compression
	// OnRead, when set, is called with the number of raw (still compressed) bytes of every read.
	OnRead func(n int)
}

// LookupEncoding resolves an encoding name such as "utf-8", "utf-16le" or "windows-1252".
// An empty name resolves to UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown encoding %q", name)
	}
	return enc, nil
}

// Open opens path and returns a reader of UTF-8 text.
// Closing the returned reader closes every layer and the file.
func Open(path string, opts Options) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	var raw io.Reader = f
	if opts.OnRead != nil {
		raw = &countingReader{r: f, onRead: opts.OnRead}
	}
	comp := opts.Compression
	if comp == CompressAuto {
		comp = DetectCompression(path)
	}
	rc, err := NewReader(raw, comp, opts.Encoding)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	rc.closers = append(rc.closers, f)
	return rc, nil
}

// Reader is a decompressed, decoded view of an underlying byte stream.
type Reader struct {
	io.Reader
	closers []io.Closer
}

// NewReader layers decompression and decoding over r. CompressAuto is treated as CompressNone.
func NewReader(r io.Reader, comp Compression, enc encoding.Encoding) (*Reader, error) {
	out := &Reader{}
	switch comp {
	case CompressAuto, CompressNone:
	case CompressGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create gzip reader")
		}
		out.closers = append(out.closers, gz)
		r = gz
	case CompressZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zstd reader")
		}
		out.closers = append(out.closers, closerFunc(func() error { dec.Close(); return nil }))
		r = dec
	case CompressSnappy:
		r = snappy.NewReader(r)
	case CompressXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create xz reader")
		}
		r = xr
	case CompressBzip2:
		r = bzip2.NewReader(r)
	default:
		return nil, errors.Errorf("unknown compression %d", comp)
	}

	if enc == nil {
		enc = unicode.UTF8
	}
	out.Reader = transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))
	return out, nil
}

// Close closes every layer, returning the first error.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type countingReader struct {
	r      io.Reader
	onRead func(int)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.onRead(n)
	}
	return n, err
}
