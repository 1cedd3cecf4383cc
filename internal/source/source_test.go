package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const sample = "id,name\n1,José\n"

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		path string
		want Compression
	}{
		{"data.csv", CompressNone},
		{"data.csv.gz", CompressGzip},
		{"DATA.CSV.GZ", CompressGzip},
		{"data.tsv.zst", CompressZstd},
		{"data.sz", CompressSnappy},
		{"data.snappy", CompressSnappy},
		{"data.xz", CompressXz},
		{"data.bz2", CompressBzip2},
		{"noext", CompressNone},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectCompression(tt.path); got != tt.want {
				t.Errorf("DetectCompression(%q) = %d, want %d", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupEncoding(t *testing.T) {
	enc, err := LookupEncoding("")
	if err != nil || enc != unicode.UTF8 {
		t.Errorf("LookupEncoding(\"\") = %v, %v", enc, err)
	}
	enc, err = LookupEncoding("windows-1252")
	if err != nil {
		t.Fatal(err)
	}
	got, err := enc.NewDecoder().String("\xe9")
	if err != nil || got != "é" {
		t.Errorf("decoded = %q, %v", got, err)
	}
	if _, err := LookupEncoding("no-such-charset"); err == nil {
		t.Error("expected an error for an unknown encoding")
	}
}

func compress(t *testing.T, comp Compression, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch comp {
	case CompressNone:
		return data
	case CompressGzip:
		w = gzip.NewWriter(&buf)
	case CompressZstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		w = zw
	case CompressSnappy:
		w = snappy.NewBufferedWriter(&buf)
	case CompressXz:
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		w = xw
	default:
		t.Fatalf("no writer for compression %d", comp)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		comp Compression
	}{
		{"plain.csv", CompressNone},
		{"rows.csv.gz", CompressGzip},
		{"rows.csv.zst", CompressZstd},
		{"rows.csv.sz", CompressSnappy},
		{"rows.csv.xz", CompressXz},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			if err := os.WriteFile(path, compress(t, tt.comp, []byte(sample)), 0o600); err != nil {
				t.Fatal(err)
			}

			var raw int
			rc, err := Open(path, Options{OnRead: func(n int) { raw += n }})
			if err != nil {
				t.Fatal(err)
			}
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatal(err)
			}
			if err := rc.Close(); err != nil {
				t.Fatal(err)
			}
			if string(got) != sample {
				t.Errorf("read %q, want %q", got, sample)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if raw == 0 || int64(raw) > info.Size() {
				t.Errorf("OnRead counted %d bytes, file has %d", raw, info.Size())
			}
		})
	}
}

func TestOpenExplicitCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.dat")
	if err := os.WriteFile(path, compress(t, CompressGzip, []byte(sample)), 0o600); err != nil {
		t.Fatal(err)
	}
	rc, err := Open(path, Options{Compression: CompressGzip})
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil || string(got) != sample {
		t.Errorf("read %q, %v", got, err)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.csv"), Options{}); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, Options{}); err == nil {
		t.Error("expected an error for a corrupt gzip header")
	}
}

func TestNewReaderDecoding(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(sample)
	if err != nil {
		t.Fatal(err)
	}
	utf16, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().String(sample)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		enc  encoding.Encoding
	}{
		{"utf-8 bom stripped", []byte("\ufeff" + sample), nil},
		{"latin-1", []byte(latin1), charmap.ISO8859_1},
		{"utf-16 bom overrides", []byte(utf16), charmap.ISO8859_1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data), CompressNone, tt.enc)
			if err != nil {
				t.Fatal(err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != sample {
				t.Errorf("decoded %q, want %q", got, sample)
			}
		})
	}
}

func TestNewReaderUnknownCompression(t *testing.T) {
	if _, err := NewReader(bytes.NewReader(nil), Compression(99), nil); err == nil {
		t.Error("expected an error for an unknown compression")
	}
}
