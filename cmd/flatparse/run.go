package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/greenplum-db/gp-common-go-libs/gplog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shapestone/shape-flatfile/internal/progress"
	"github.com/shapestone/shape-flatfile/internal/sink"
	"github.com/shapestone/shape-flatfile/internal/source"
	"github.com/shapestone/shape-flatfile/pkg/flatfile"
	"github.com/shapestone/shape-flatfile/pkg/flatfile/configdoc"
	"github.com/shapestone/shape-flatfile/pkg/flatfile/table"
)

// sniffSampleSize is how many bytes of the input --sniff inspects.
const sniffSampleSize = 64 * 1024

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flatparse [file]",
		Short:         "Tokenize delimited or fixed-width text files",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetLoggerVerbosity(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 && args[0] != "-" {
				path = args[0]
			}
			return run(cmd, path)
		},
	}
	SetFlagDefaults(cmd.Flags())
	return cmd
}

func SetLoggerVerbosity(flags *pflag.FlagSet) {
	if quiet, _ := flags.GetBool(QUIET); quiet {
		gplog.SetVerbosity(gplog.LOGERROR)
	} else if debug, _ := flags.GetBool(DEBUG); debug {
		gplog.SetVerbosity(gplog.LOGDEBUG)
	} else if verbose, _ := flags.GetBool(VERBOSE); verbose {
		gplog.SetVerbosity(gplog.LOGVERBOSE)
	}
}

func run(cmd *cobra.Command, path string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString(FORMAT)
	if format != "csv" && format != "tsv" && format != "arrow" {
		return errors.Errorf("unknown output format %q", format)
	}
	encName, _ := flags.GetString(ENCODING)
	enc, err := source.LookupEncoding(encName)
	if err != nil {
		return err
	}

	p := flatfile.New(flatfile.DefaultConfig())
	defer p.Dispose()
	adapter := table.NewAdapter(p)

	var in io.ReadCloser
	if path != "" {
		showProgress, _ := flags.GetBool(PROGRESS)
		opts := source.Options{Encoding: enc}
		if showProgress {
			info, err := os.Stat(path)
			if err != nil {
				return errors.Wrap(err, "failed to stat input")
			}
			if f, ok := cmd.ErrOrStderr().(*os.File); ok && !progress.IsTerminal(f) {
				gplog.Warn("Standard error is not a terminal; progress output may be garbled")
			}
			bar := progress.New(cmd.ErrOrStderr(), info.Size(), path)
			defer bar.Finish()
			opts.OnRead = bar.Add
		}
		rc, err := source.Open(path, opts)
		if err != nil {
			return err
		}
		in = rc
		gplog.Info("Parsing %s", path)
	} else {
		r, err := source.NewReader(cmd.InOrStdin(), source.CompressNone, enc)
		if err != nil {
			return err
		}
		in = r
		gplog.Info("Parsing standard input")
	}
	// The parser releases the source; the buffered reader keeps the sniffed sample.
	br := bufio.NewReaderSize(in, sniffSampleSize)
	if err := p.SetSource(readCloser{br, in}); err != nil {
		return err
	}

	if err := configure(flags, p, adapter, br); err != nil {
		return err
	}
	if savePath, _ := flags.GetString(SAVE_CONFIG); savePath != "" {
		if err := configdoc.SaveFile(savePath, p, adapter); err != nil {
			return err
		}
		gplog.Info("Saved parser settings to %s", savePath)
	}
	cfg := p.Config()
	gplog.Verbose("Field mode %s, delimiter %s, qualifier %s, header %t",
		cfg.FieldMode(), cfg.ColumnDelimiter(), cfg.TextQualifier(), cfg.FirstRowHasHeader())
	gplog.Debug("Column widths %v, expected columns %d, buffer %d", cfg.ColumnWidths(), cfg.ExpectedColumnCount(), cfg.MaxBufferSize())

	tbl, err := adapter.Table()
	if err != nil {
		return err
	}
	gplog.Info("Read %d rows into %d columns", tbl.Len(), len(tbl.Columns()))

	if err := write(cmd, tbl, format); err != nil {
		return err
	}
	return load(flags, tbl)
}

// configure builds the parser settings: a sniffed or loaded base, then explicit flags.
func configure(flags *pflag.FlagSet, p *flatfile.Parser, adapter *table.Adapter, br *bufio.Reader) error {
	if cfgPath, _ := flags.GetString(CONFIG); cfgPath != "" {
		if err := configdoc.LoadFile(cfgPath, p, adapter); err != nil {
			return err
		}
		gplog.Verbose("Loaded parser settings from %s", cfgPath)
	} else if sniff, _ := flags.GetBool(SNIFF); sniff {
		sample, err := br.Peek(sniffSampleSize)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return errors.Wrap(err, "failed to read a sample")
		}
		s := flatfile.NewSniffer(string(sample))
		if err := p.SetConfig(s.Config()); err != nil {
			return err
		}
		gplog.Verbose("Sniffed delimiter %s, header %t", s.Delimiter(), s.HasHeader())
	}

	if flags.Changed(LINE_NUMBERS) {
		v, _ := flags.GetBool(LINE_NUMBERS)
		adapter.SetIncludeFileLineNumber(v)
	}
	return p.Update(func(c *flatfile.Config) error {
		return applyFlags(flags, c)
	})
}

func write(cmd *cobra.Command, tbl *table.Table, format string) (err error) {
	out := cmd.OutOrStdout()
	if outPath, _ := cmd.Flags().GetString(OUTPUT); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = errors.Wrap(cerr, "failed to close output file")
			}
		}()
		out = f
	}

	if format == "arrow" {
		at := tbl.ToArrow(memory.NewGoAllocator())
		defer at.Release()
		_, err = fmt.Fprintf(out, "%s\nrows: %d\n", at.Schema(), at.NumRows())
		return err
	}

	opts := table.RenderOptions{Comma: ','}
	if format == "tsv" {
		opts.Comma = '\t'
	}
	data, err := table.Render(tbl.ToAST(), opts)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func load(flags *pflag.FlagSet, tbl *table.Table) error {
	dsn, _ := flags.GetString(DB_DSN)
	if dsn == "" {
		return nil
	}
	driver, _ := flags.GetString(DB_DRIVER)
	target, _ := flags.GetString(DB_TABLE)
	create, _ := flags.GetBool(DB_CREATE)

	db, err := sink.Connect(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := sink.New(db, target, sink.Options{Create: create}).Load(context.Background(), tbl)
	if err != nil {
		return err
	}
	gplog.Info("Loaded %d rows into %s", n, target)
	return nil
}

// readCloser reads through a buffer and closes the underlying source.
type readCloser struct {
	*bufio.Reader
	src io.ReadCloser
}

func (r readCloser) Close() error { return r.src.Close() }
