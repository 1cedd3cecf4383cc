// Package configdoc saves and loads parser configurations as XML or YAML documents.
//
// A document holds every Config option plus the table adapter's
// IncludeFileLineNumber flag. Characters are stored as integer code points so
// that tabs and control characters survive both formats.
//
//	<FlatFileParser version="1.0.0">
//	  <MaxBufferSize>4096</MaxBufferSize>
//	  <TextFieldType>Delimited</TextFieldType>
//	  <ColumnDelimiter>44</ColumnDelimiter>
//	  ...
//	</FlatFileParser>
package configdoc

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/blang/semver"
	"gopkg.in/yaml.v2"

	"github.com/shapestone/shape-flatfile/pkg/flatfile"
	"github.com/shapestone/shape-flatfile/pkg/flatfile/table"
)

// Version is written into every saved document.
const Version = "1.0.0"

// supportedVersions are the document versions Decode accepts.
var supportedVersions = semver.MustParseRange(">=1.0.0 <2.0.0")

// Format is a document encoding.
type Format int

const (
	XML Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case XML:
		return "xml"
	case YAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// FormatFromPath picks YAML for .yaml and .yml files and XML otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return XML
	}
}

// Document is the serialized form of a configuration. Nil fields are absent
// from the document and keep their default value on load; an absent character
// field means the character is unset.
type Document struct {
	XMLName xml.Name `xml:"FlatFileParser" yaml:"-"`
	Version string   `xml:"version,attr,omitempty" yaml:"version,omitempty"`

	ColumnWidths                    []int   `xml:"ColumnWidths>ColumnWidth,omitempty" yaml:"columnWidths,omitempty"`
	MaxBufferSize                   *int    `xml:"MaxBufferSize" yaml:"maxBufferSize,omitempty"`
	MaxRows                         *int    `xml:"MaxRows" yaml:"maxRows,omitempty"`
	SkipStartingDataRows            *int    `xml:"SkipStartingDataRows" yaml:"skipStartingDataRows,omitempty"`
	ExpectedColumnCount             *int    `xml:"ExpectedColumnCount" yaml:"expectedColumnCount,omitempty"`
	FirstRowHasHeader               *bool   `xml:"FirstRowHasHeader" yaml:"firstRowHasHeader,omitempty"`
	TrimResults                     *bool   `xml:"TrimResults" yaml:"trimResults,omitempty"`
	StripControlChars               *bool   `xml:"StripControlChars" yaml:"stripControlChars,omitempty"`
	SkipEmptyRows                   *bool   `xml:"SkipEmptyRows" yaml:"skipEmptyRows,omitempty"`
	TextFieldType                   *string `xml:"TextFieldType" yaml:"textFieldType,omitempty"`
	FirstRowSetsExpectedColumnCount *bool   `xml:"FirstRowSetsExpectedColumnCount" yaml:"firstRowSetsExpectedColumnCount,omitempty"`
	ColumnDelimiter                 *int    `xml:"ColumnDelimiter" yaml:"columnDelimiter,omitempty"`
	TextQualifier                   *int    `xml:"TextQualifier" yaml:"textQualifier,omitempty"`
	EscapeCharacter                 *int    `xml:"EscapeCharacter" yaml:"escapeCharacter,omitempty"`
	CommentCharacter                *int    `xml:"CommentCharacter" yaml:"commentCharacter,omitempty"`
	IncludeFileLineNumber           *bool   `xml:"IncludeFileLineNumber" yaml:"includeFileLineNumber,omitempty"`
	SkipEndingDataRows              *int    `xml:"SkipEndingDataRows" yaml:"skipEndingDataRows,omitempty"`
}

// New captures cfg and the adapter flag in a Document.
func New(cfg flatfile.Config, includeFileLineNumber bool) *Document {
	d := &Document{
		Version:                         Version,
		MaxBufferSize:                   intPtr(cfg.MaxBufferSize()),
		MaxRows:                         intPtr(cfg.MaxRows()),
		SkipStartingDataRows:            intPtr(cfg.SkipStartingRows()),
		ExpectedColumnCount:             intPtr(cfg.ExpectedColumnCount()),
		FirstRowHasHeader:               boolPtr(cfg.FirstRowHasHeader()),
		TrimResults:                     boolPtr(cfg.TrimResults()),
		StripControlChars:               boolPtr(cfg.StripControlChars()),
		SkipEmptyRows:                   boolPtr(cfg.SkipEmptyRows()),
		FirstRowSetsExpectedColumnCount: boolPtr(cfg.FirstRowSetsExpectedColumnCount()),
		IncludeFileLineNumber:           boolPtr(includeFileLineNumber),
		SkipEndingDataRows:              intPtr(cfg.SkipEndingRows()),
		ColumnDelimiter:                 charPtr(cfg.ColumnDelimiter()),
		TextQualifier:                   charPtr(cfg.TextQualifier()),
		EscapeCharacter:                 charPtr(cfg.EscapeChar()),
		CommentCharacter:                charPtr(cfg.CommentChar()),
	}
	mode := cfg.FieldMode().String()
	d.TextFieldType = &mode
	if cfg.FieldMode() == flatfile.FixedWidth {
		d.ColumnWidths = cfg.ColumnWidths()
	}
	return d
}

// Config builds a configuration from DefaultConfig and the fields present in d.
func (d *Document) Config() (flatfile.Config, error) {
	cfg := flatfile.DefaultConfig()

	if len(d.ColumnWidths) > 0 {
		if err := cfg.SetColumnWidths(d.ColumnWidths); err != nil {
			return cfg, err
		}
	}
	if d.MaxBufferSize != nil {
		if err := cfg.SetMaxBufferSize(*d.MaxBufferSize); err != nil {
			return cfg, err
		}
	}
	if d.MaxRows != nil {
		cfg.SetMaxRows(*d.MaxRows)
	}
	if d.SkipStartingDataRows != nil {
		cfg.SetSkipStartingRows(*d.SkipStartingDataRows)
	}
	if d.SkipEndingDataRows != nil {
		cfg.SetSkipEndingRows(*d.SkipEndingDataRows)
	}
	if d.ExpectedColumnCount != nil {
		cfg.SetExpectedColumnCount(*d.ExpectedColumnCount)
	}
	if d.FirstRowHasHeader != nil {
		cfg.SetFirstRowHasHeader(*d.FirstRowHasHeader)
	}
	if d.TrimResults != nil {
		cfg.SetTrimResults(*d.TrimResults)
	}
	if d.StripControlChars != nil {
		cfg.SetStripControlChars(*d.StripControlChars)
	}
	if d.SkipEmptyRows != nil {
		cfg.SetSkipEmptyRows(*d.SkipEmptyRows)
	}
	if d.TextFieldType != nil {
		mode, err := flatfile.ParseFieldMode(*d.TextFieldType)
		if err != nil {
			return cfg, err
		}
		if mode != cfg.FieldMode() {
			cfg.SetFieldMode(mode)
		}
	}
	if d.FirstRowSetsExpectedColumnCount != nil {
		cfg.SetFirstRowSetsExpectedColumnCount(*d.FirstRowSetsExpectedColumnCount)
	}

	chars := []struct {
		field string
		value *int
		set   func(flatfile.Char)
	}{
		{"ColumnDelimiter", d.ColumnDelimiter, cfg.SetColumnDelimiter},
		{"TextQualifier", d.TextQualifier, cfg.SetTextQualifier},
		{"EscapeCharacter", d.EscapeCharacter, cfg.SetEscapeChar},
		{"CommentCharacter", d.CommentCharacter, cfg.SetCommentChar},
	}
	for _, c := range chars {
		ch, err := toChar(c.field, c.value)
		if err != nil {
			return cfg, err
		}
		c.set(ch)
	}
	return cfg, nil
}

// IncludesFileLineNumber reports the stored adapter flag; absent means false.
func (d *Document) IncludesFileLineNumber() bool {
	return d.IncludeFileLineNumber != nil && *d.IncludeFileLineNumber
}

// Encode writes d in format f.
func (d *Document) Encode(w io.Writer, f Format) error {
	switch f {
	case XML:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("configdoc: encoding xml: %w", err)
		}
		_, err := io.WriteString(w, "\n")
		return err
	case YAML:
		out, err := yaml.Marshal(d)
		if err != nil {
			return fmt.Errorf("configdoc: encoding yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("configdoc: unknown format %v", f)
	}
}

// Decode reads a document in format f and checks its version.
// A document without a version is accepted as the current version.
func Decode(r io.Reader, f Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("configdoc: reading document: %w", err)
	}
	d := &Document{}
	switch f {
	case XML:
		err = xml.Unmarshal(data, d)
	case YAML:
		err = yaml.UnmarshalStrict(data, d)
	default:
		return nil, fmt.Errorf("configdoc: unknown format %v", f)
	}
	if err != nil {
		return nil, fmt.Errorf("configdoc: decoding %s: %w", f, err)
	}
	if err := checkVersion(d.Version); err != nil {
		return nil, err
	}
	return d, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	parsed, err := semver.Make(v)
	if err != nil {
		return fmt.Errorf("configdoc: invalid version %q: %w", v, err)
	}
	if !supportedVersions(parsed) {
		return fmt.Errorf("configdoc: unsupported document version %s", v)
	}
	return nil
}

// Save writes p's configuration in format f. The adapter, when not nil,
// contributes its IncludeFileLineNumber flag.
func Save(w io.Writer, f Format, p *flatfile.Parser, a *table.Adapter) error {
	return New(p.Config(), a != nil && a.IncludeFileLineNumber()).Encode(w, f)
}

// Load replaces p's configuration with the document read from r. It fails with a
// *flatfile.StateError while p is parsing and leaves the configuration unchanged
// on any error. The adapter, when not nil, receives the IncludeFileLineNumber flag.
func Load(r io.Reader, f Format, p *flatfile.Parser, a *table.Adapter) error {
	if p.State() == flatfile.StateParsing {
		return &flatfile.StateError{Op: "loading a configuration", State: p.State()}
	}
	d, err := Decode(r, f)
	if err != nil {
		return err
	}
	err = p.Update(func(c *flatfile.Config) error {
		cfg, err := d.Config()
		if err != nil {
			return err
		}
		*c = cfg
		return nil
	})
	if err != nil {
		return err
	}
	if a != nil {
		a.SetIncludeFileLineNumber(d.IncludesFileLineNumber())
	}
	return nil
}

// SaveFile writes the configuration to path, choosing the format from its extension.
func SaveFile(path string, p *flatfile.Parser, a *table.Adapter) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("configdoc: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("configdoc: %w", cerr)
		}
	}()
	return Save(f, FormatFromPath(path), p, a)
}

// LoadFile loads the configuration from path, choosing the format from its extension.
func LoadFile(path string, p *flatfile.Parser, a *table.Adapter) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("configdoc: %w", err)
	}
	defer f.Close()
	return Load(f, FormatFromPath(path), p, a)
}

func toChar(field string, v *int) (flatfile.Char, error) {
	if v == nil {
		return flatfile.NoChar, nil
	}
	if *v < 0 || *v > utf8.MaxRune || !utf8.ValidRune(rune(*v)) {
		return flatfile.NoChar, &flatfile.ArgumentError{
			Field:   field,
			Message: fmt.Sprintf("%d is not a valid character", *v),
		}
	}
	return flatfile.CharOf(rune(*v)), nil
}

func charPtr(c flatfile.Char) *int {
	r, ok := c.Get()
	if !ok {
		return nil
	}
	return intPtr(int(r))
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
