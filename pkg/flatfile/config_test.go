package flatfile_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shapestone/shape-flatfile/pkg/flatfile"
)

func TestDefaultConfig(t *testing.T) {
	cfg := flatfile.DefaultConfig()

	if cfg.FieldMode() != flatfile.Delimited {
		t.Errorf("FieldMode() = %v, want Delimited", cfg.FieldMode())
	}
	if cfg.MaxBufferSize() != flatfile.DefaultMaxBufferSize {
		t.Errorf("MaxBufferSize() = %d, want %d", cfg.MaxBufferSize(), flatfile.DefaultMaxBufferSize)
	}
	if !cfg.ColumnDelimiter().Is(',') || !cfg.TextQualifier().Is('"') || !cfg.CommentChar().Is('#') {
		t.Errorf("characters = %v %v %v", cfg.ColumnDelimiter(), cfg.TextQualifier(), cfg.CommentChar())
	}
	if cfg.EscapeChar().IsSet() {
		t.Errorf("EscapeChar() = %v, want unset", cfg.EscapeChar())
	}
	if !cfg.SkipEmptyRows() || cfg.FirstRowHasHeader() || cfg.TrimResults() || cfg.StripControlChars() {
		t.Error("unexpected default flags")
	}
	if cfg.ColumnWidths() != nil {
		t.Errorf("ColumnWidths() = %v, want nil", cfg.ColumnWidths())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestSetColumnWidths(t *testing.T) {
	tests := []struct {
		name    string
		widths  []int
		wantErr bool
	}{
		{"valid", []int{1, 2, 3}, false},
		{"empty", []int{}, true},
		{"zero width", []int{1, 0}, true},
		{"negative width", []int{-1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := flatfile.DefaultConfig()
			err := cfg.SetColumnWidths(tt.widths)
			if tt.wantErr {
				if !errors.Is(err, flatfile.ErrInvalidArgument) {
					t.Fatalf("error = %v, want ErrInvalidArgument", err)
				}
				if cfg.FieldMode() != flatfile.Delimited || cfg.ColumnWidths() != nil {
					t.Error("rejected widths changed the configuration")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cfg.FieldMode() != flatfile.FixedWidth {
				t.Errorf("FieldMode() = %v, want FixedWidth", cfg.FieldMode())
			}
			if cfg.ExpectedColumnCount() != len(tt.widths) {
				t.Errorf("ExpectedColumnCount() = %d, want %d", cfg.ExpectedColumnCount(), len(tt.widths))
			}
			if cfg.ColumnDelimiter().IsSet() {
				t.Error("ColumnDelimiter() still set in fixed-width mode")
			}
		})
	}
}

func TestColumnWidthsAreCopied(t *testing.T) {
	widths := []int{1, 2}
	cfg := flatfile.DefaultConfig()
	if err := cfg.SetColumnWidths(widths); err != nil {
		t.Fatal(err)
	}
	widths[0] = 9
	got := cfg.ColumnWidths()
	got[1] = 9
	if want := []int{1, 2}; !reflect.DeepEqual(cfg.ColumnWidths(), want) {
		t.Errorf("ColumnWidths() = %v, want %v", cfg.ColumnWidths(), want)
	}
}

func TestModeInvariants(t *testing.T) {
	t.Run("nil widths returns to delimited", func(t *testing.T) {
		cfg := flatfile.DefaultConfig()
		_ = cfg.SetColumnWidths([]int{2, 2})
		_ = cfg.SetColumnWidths(nil)
		if cfg.FieldMode() != flatfile.Delimited || cfg.ExpectedColumnCount() != 0 {
			t.Errorf("mode/expected = %v/%d", cfg.FieldMode(), cfg.ExpectedColumnCount())
		}
	})

	t.Run("delimiter forces delimited", func(t *testing.T) {
		cfg := flatfile.DefaultConfig()
		_ = cfg.SetColumnWidths([]int{2, 2})
		cfg.SetColumnDelimiter(flatfile.CharOf(';'))
		if cfg.FieldMode() != flatfile.Delimited || cfg.ColumnWidths() != nil {
			t.Errorf("mode/widths = %v/%v", cfg.FieldMode(), cfg.ColumnWidths())
		}
	})

	t.Run("unset delimiter means fixed width", func(t *testing.T) {
		cfg := flatfile.DefaultConfig()
		cfg.SetColumnDelimiter(flatfile.NoChar)
		if cfg.FieldMode() != flatfile.FixedWidth {
			t.Errorf("FieldMode() = %v, want FixedWidth", cfg.FieldMode())
		}
	})

	t.Run("first row sets expected forces delimited", func(t *testing.T) {
		cfg := flatfile.DefaultConfig()
		_ = cfg.SetColumnWidths([]int{2})
		cfg.SetFirstRowSetsExpectedColumnCount(true)
		if cfg.FieldMode() != flatfile.Delimited || cfg.ColumnWidths() != nil {
			t.Errorf("mode/widths = %v/%v", cfg.FieldMode(), cfg.ColumnWidths())
		}
	})

	t.Run("fixed width clears delimiter and first row flag", func(t *testing.T) {
		cfg := flatfile.DefaultConfig()
		cfg.SetFirstRowSetsExpectedColumnCount(true)
		cfg.SetFieldMode(flatfile.FixedWidth)
		if cfg.ColumnDelimiter().IsSet() || cfg.FirstRowSetsExpectedColumnCount() {
			t.Error("fixed width kept delimited options")
		}
	})

	t.Run("conflicting expected count clears widths", func(t *testing.T) {
		cfg := flatfile.DefaultConfig()
		_ = cfg.SetColumnWidths([]int{1, 1})
		cfg.SetExpectedColumnCount(2)
		if cfg.FieldMode() != flatfile.FixedWidth {
			t.Fatal("matching count changed the mode")
		}
		cfg.SetExpectedColumnCount(3)
		if cfg.FieldMode() != flatfile.Delimited || cfg.ColumnWidths() != nil || cfg.ExpectedColumnCount() != 3 {
			t.Errorf("mode/widths/expected = %v/%v/%d", cfg.FieldMode(), cfg.ColumnWidths(), cfg.ExpectedColumnCount())
		}
	})
}

func TestNumericSetters(t *testing.T) {
	cfg := flatfile.DefaultConfig()
	cfg.SetMaxRows(-5)
	cfg.SetSkipStartingRows(-1)
	cfg.SetSkipEndingRows(-1)
	cfg.SetExpectedColumnCount(-3)
	if cfg.MaxRows() != 0 || cfg.SkipStartingRows() != 0 || cfg.SkipEndingRows() != 0 || cfg.ExpectedColumnCount() != 0 {
		t.Error("negative values were not clamped to 0")
	}

	for _, n := range []int{0, -1} {
		err := cfg.SetMaxBufferSize(n)
		var aerr *flatfile.ArgumentError
		if !errors.As(err, &aerr) || aerr.Field != "MaxBufferSize" {
			t.Errorf("SetMaxBufferSize(%d) error = %v", n, err)
		}
	}
	if cfg.MaxBufferSize() != flatfile.DefaultMaxBufferSize {
		t.Errorf("MaxBufferSize() = %d after rejected values", cfg.MaxBufferSize())
	}
}

func TestCharAndModeStrings(t *testing.T) {
	if got := flatfile.CharOf(',').String(); got != "','" {
		t.Errorf("String() = %q", got)
	}
	if got := flatfile.NoChar.String(); got != "<unset>" {
		t.Errorf("String() = %q", got)
	}
	if r, ok := flatfile.CharOf('x').Get(); r != 'x' || !ok {
		t.Errorf("Get() = %q, %v", r, ok)
	}
	for _, m := range []flatfile.FieldMode{flatfile.Delimited, flatfile.FixedWidth} {
		got, err := flatfile.ParseFieldMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseFieldMode(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := flatfile.ParseFieldMode("Sideways"); !errors.Is(err, flatfile.ErrInvalidArgument) {
		t.Errorf("ParseFieldMode(Sideways) error = %v", err)
	}
}
