package main

import (
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/shapestone/shape-flatfile/pkg/flatfile"
)

const (
	CONFIG            = "config"
	SAVE_CONFIG       = "save-config"
	SNIFF             = "sniff"
	PROGRESS          = "progress"
	FORMAT            = "format"
	OUTPUT            = "output"
	ENCODING          = "encoding"
	DELIMITER         = "delimiter"
	QUALIFIER         = "qualifier"
	ESCAPE            = "escape"
	COMMENT           = "comment"
	WIDTHS            = "widths"
	MAX_BUFFER_SIZE   = "max-buffer-size"
	MAX_ROWS          = "max-rows"
	SKIP_START        = "skip-start"
	SKIP_END          = "skip-end"
	EXPECTED_COLUMNS  = "expected-columns"
	HEADER            = "header"
	FIRST_ROW_COLUMNS = "first-row-sets-columns"
	TRIM              = "trim"
	STRIP_CONTROL     = "strip-control"
	KEEP_EMPTY        = "keep-empty"
	LINE_NUMBERS      = "line-numbers"
	DB_DRIVER         = "db-driver"
	DB_DSN            = "db-dsn"
	DB_TABLE          = "db-table"
	DB_CREATE         = "db-create"
	VERBOSE           = "verbose"
	DEBUG             = "debug"
	QUIET             = "quiet"
)

func SetFlagDefaults(flagSet *pflag.FlagSet) {
	flagSet.String(CONFIG, "", "Load parser settings from an XML or YAML document; explicit flags override it")
	flagSet.String(SAVE_CONFIG, "", "Write the effective parser settings to an XML or YAML document")
	flagSet.Bool(SNIFF, false, "Guess the delimiter, header and column widths from the start of the input")
	flagSet.Bool(PROGRESS, false, "Show a progress bar on stderr while reading a file")
	flagSet.String(FORMAT, "csv", "Output format: csv, tsv or arrow")
	flagSet.StringP(OUTPUT, "o", "", "Write output to this file instead of stdout")
	flagSet.String(ENCODING, "utf-8", "Character encoding of the input file, e.g. utf-16le or windows-1252")
	flagSet.String(DELIMITER, ",", "Column delimiter; empty selects fixed-width parsing, \"\\t\" is a tab")
	flagSet.String(QUALIFIER, "\"", "Text qualifier; empty disables quoting")
	flagSet.String(ESCAPE, "", "Escape character; empty disables escaping")
	flagSet.String(COMMENT, "#", "Comment character; empty disables comments")
	flagSet.IntSlice(WIDTHS, []int{}, "Fixed column widths, separated by commas")
	flagSet.Int(MAX_BUFFER_SIZE, flatfile.DefaultMaxBufferSize, "Largest field size in characters")
	flagSet.Int(MAX_ROWS, 0, "Stop after this many data rows; 0 reads everything")
	flagSet.Int(SKIP_START, 0, "Skip this many data rows at the start")
	flagSet.Int(SKIP_END, 0, "Drop this many data rows at the end")
	flagSet.Int(EXPECTED_COLUMNS, 0, "Require exactly this many columns per row; 0 disables the check")
	flagSet.Bool(HEADER, false, "Treat the first row as column names")
	flagSet.Bool(FIRST_ROW_COLUMNS, false, "Require every row to have as many columns as the first")
	flagSet.Bool(TRIM, false, "Trim white space around unquoted fields")
	flagSet.Bool(STRIP_CONTROL, false, "Remove control characters from fields")
	flagSet.Bool(KEEP_EMPTY, false, "Keep empty rows instead of skipping them")
	flagSet.Bool(LINE_NUMBERS, false, "Prepend a FileLineNumber column")
	flagSet.String(DB_DRIVER, "postgres", "database/sql driver used with --db-dsn")
	flagSet.String(DB_DSN, "", "Load the rows into the database at this data source name")
	flagSet.String(DB_TABLE, "", "Destination table for --db-dsn, optionally schema qualified")
	flagSet.Bool(DB_CREATE, false, "Create the destination table with TEXT columns if it does not exist")
	flagSet.Bool(VERBOSE, false, "Print verbose log messages")
	flagSet.Bool(DEBUG, false, "Print debug log messages")
	flagSet.Bool(QUIET, false, "Suppress non-warning, non-error log messages")
}

// parseChar reads a single-character flag value. An empty value unsets the
// character; escape sequences such as "\t" are unquoted first.
func parseChar(name, value string) (flatfile.Char, error) {
	if value == "" {
		return flatfile.NoChar, nil
	}
	if len(value) > 1 && value[0] == '\\' {
		if unquoted, err := strconv.Unquote(`"` + value + `"`); err == nil {
			value = unquoted
		}
	}
	if utf8.RuneCountInString(value) != 1 {
		return flatfile.NoChar, errors.Errorf("--%s must be a single character, got %q", name, value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return flatfile.CharOf(r), nil
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(flags *pflag.FlagSet, cfg *flatfile.Config) error {
	var err error
	chars := []struct {
		name string
		set  func(flatfile.Char)
	}{
		{DELIMITER, cfg.SetColumnDelimiter},
		{QUALIFIER, cfg.SetTextQualifier},
		{ESCAPE, cfg.SetEscapeChar},
		{COMMENT, cfg.SetCommentChar},
	}
	for _, c := range chars {
		if !flags.Changed(c.name) {
			continue
		}
		value, _ := flags.GetString(c.name)
		ch, err := parseChar(c.name, value)
		if err != nil {
			return err
		}
		c.set(ch)
	}

	if flags.Changed(WIDTHS) {
		widths, _ := flags.GetIntSlice(WIDTHS)
		if len(widths) == 0 {
			widths = nil
		}
		if err = cfg.SetColumnWidths(widths); err != nil {
			return err
		}
	}
	if flags.Changed(MAX_BUFFER_SIZE) {
		n, _ := flags.GetInt(MAX_BUFFER_SIZE)
		if err = cfg.SetMaxBufferSize(n); err != nil {
			return err
		}
	}

	ints := []struct {
		name string
		set  func(int)
	}{
		{MAX_ROWS, cfg.SetMaxRows},
		{SKIP_START, cfg.SetSkipStartingRows},
		{SKIP_END, cfg.SetSkipEndingRows},
		{EXPECTED_COLUMNS, cfg.SetExpectedColumnCount},
	}
	for _, f := range ints {
		if flags.Changed(f.name) {
			n, _ := flags.GetInt(f.name)
			f.set(n)
		}
	}

	bools := []struct {
		name string
		set  func(bool)
	}{
		{HEADER, cfg.SetFirstRowHasHeader},
		{FIRST_ROW_COLUMNS, cfg.SetFirstRowSetsExpectedColumnCount},
		{TRIM, cfg.SetTrimResults},
		{STRIP_CONTROL, cfg.SetStripControlChars},
		{KEEP_EMPTY, func(v bool) { cfg.SetSkipEmptyRows(!v) }},
	}
	for _, f := range bools {
		if flags.Changed(f.name) {
			v, _ := flags.GetBool(f.name)
			f.set(v)
		}
	}
	return nil
}
