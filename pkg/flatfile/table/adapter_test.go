package table_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shapestone/shape-flatfile/pkg/flatfile"
	"github.com/shapestone/shape-flatfile/pkg/flatfile/table"
)

func parse(t *testing.T, input string, cfg flatfile.Config, opts ...table.Option) *table.Table {
	t.Helper()
	p := flatfile.New(cfg)
	defer p.Close()
	if err := p.SetSource(strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}
	tbl, err := table.NewAdapter(p, opts...).Table()
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	return tbl
}

func withHeader() flatfile.Config {
	cfg := flatfile.DefaultConfig()
	cfg.SetFirstRowHasHeader(true)
	return cfg
}

func TestAdapterTable(t *testing.T) {
	skipTwo := flatfile.DefaultConfig()
	skipTwo.SetSkipEndingRows(2)
	skipMany := flatfile.DefaultConfig()
	skipMany.SetSkipEndingRows(10)
	keepEmpty := flatfile.DefaultConfig()
	keepEmpty.SetSkipEmptyRows(false)

	tests := []struct {
		name    string
		input   string
		cfg     flatfile.Config
		opts    []table.Option
		columns []string
		rows    [][]string
	}{
		{
			name:    "header names",
			input:   "name,age\nAlice,30\nBob,25\n",
			cfg:     withHeader(),
			columns: []string{"name", "age"},
			rows:    [][]string{{"Alice", "30"}, {"Bob", "25"}},
		},
		{
			name:    "duplicate names get numeric suffixes",
			input:   "a,A,b,a\n1,2,3,4\n",
			cfg:     withHeader(),
			columns: []string{"a", "A1", "b", "a2"},
			rows:    [][]string{{"1", "2", "3", "4"}},
		},
		{
			name:    "empty header name",
			input:   "a,,a\n1,2,3\n",
			cfg:     withHeader(),
			columns: []string{"a", "Column1", "a1"},
			rows:    [][]string{{"1", "2", "3"}},
		},
		{
			name:    "unnamed columns grow with the widest row",
			input:   "1,2\n3,4,5\n",
			cfg:     flatfile.DefaultConfig(),
			columns: []string{"Column1", "Column2", "Column3"},
			rows:    [][]string{{"1", "2"}, {"3", "4", "5"}},
		},
		{
			name:    "header narrower than data",
			input:   "id\n1,x\n",
			cfg:     withHeader(),
			columns: []string{"id", "Column1"},
			rows:    [][]string{{"1", "x"}},
		},
		{
			name:    "file line numbers",
			input:   "# c\nx,y\n\n1,2\n3,4\n",
			cfg:     withHeader(),
			opts:    []table.Option{table.IncludeFileLineNumber(true)},
			columns: []string{table.FileLineNumberColumn, "x", "y"},
			rows:    [][]string{{"4", "1", "2"}, {"5", "3", "4"}},
		},
		{
			name:    "header only",
			input:   "a,b\n",
			cfg:     withHeader(),
			columns: []string{"a", "b"},
			rows:    [][]string{},
		},
		{
			name:    "header only with file line numbers",
			input:   "a,b",
			cfg:     withHeader(),
			opts:    []table.Option{table.IncludeFileLineNumber(true)},
			columns: []string{table.FileLineNumberColumn, "a", "b"},
			rows:    [][]string{},
		},
		{
			name:  "empty input",
			input: "",
			cfg:   flatfile.DefaultConfig(),
			rows:  [][]string{},
		},
		{
			name:    "skip ending rows",
			input:   "1\n2\n3\n4\n",
			cfg:     skipTwo,
			columns: []string{"Column1"},
			rows:    [][]string{{"1"}, {"2"}},
		},
		{
			name:    "skip more ending rows than exist",
			input:   "1\n2\n",
			cfg:     skipMany,
			columns: []string{"Column1"},
			rows:    [][]string{},
		},
		{
			name:    "empty rows kept",
			input:   "1\n\n2\n",
			cfg:     keepEmpty,
			columns: []string{"Column1"},
			rows:    [][]string{{"1"}, nil, {"2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := parse(t, tt.input, tt.cfg, tt.opts...)
			if got := tbl.Columns(); !reflect.DeepEqual(got, tt.columns) {
				t.Errorf("Columns() = %q, want %q", got, tt.columns)
			}
			if got := tbl.Rows(); !reflect.DeepEqual(got, tt.rows) {
				t.Errorf("Rows() = %q, want %q", got, tt.rows)
			}
			if tbl.Len() != len(tt.rows) {
				t.Errorf("Len() = %d, want %d", tbl.Len(), len(tt.rows))
			}
		})
	}
}

func TestTableAccessors(t *testing.T) {
	tbl := parse(t, "id,name\n\n1,Alice\n2\n", withHeader(), table.IncludeFileLineNumber(true))

	if v, ok := tbl.Value(0, "name"); !ok || v != "Alice" {
		t.Errorf("Value(0, name) = %q, %v", v, ok)
	}
	if _, ok := tbl.Value(1, "name"); ok {
		t.Error("Value(1, name) should be null")
	}
	if v, ok := tbl.Value(1, table.FileLineNumberColumn); !ok || v != "4" {
		t.Errorf("Value(1, FileLineNumber) = %q, %v", v, ok)
	}
	if _, ok := tbl.Value(0, "missing"); ok {
		t.Error("Value for an unknown column should fail")
	}
	if _, ok := tbl.Value(5, "id"); ok {
		t.Error("Value for an out of range row should fail")
	}
	if tbl.FileRow(0) != 3 || tbl.FileRow(1) != 4 || tbl.FileRow(9) != 0 {
		t.Errorf("FileRow() = %d, %d, %d", tbl.FileRow(0), tbl.FileRow(1), tbl.FileRow(9))
	}
	if tbl.ColumnIndex("id") != 1 || tbl.ColumnIndex("nope") != -1 {
		t.Errorf("ColumnIndex() = %d, %d", tbl.ColumnIndex("id"), tbl.ColumnIndex("nope"))
	}
	if tbl.Row(-1) != nil {
		t.Error("Row(-1) should be nil")
	}

	row := tbl.Row(0)
	row[1] = "changed"
	if v, _ := tbl.Value(0, "id"); v != "1" {
		t.Error("Row() returned shared storage")
	}
}

func TestAdapterOptions(t *testing.T) {
	p := flatfile.New(flatfile.DefaultConfig())
	a := table.NewAdapter(p)
	if a.IncludeFileLineNumber() {
		t.Error("IncludeFileLineNumber() defaults to true")
	}
	a.SetIncludeFileLineNumber(true)
	if !a.IncludeFileLineNumber() {
		t.Error("SetIncludeFileLineNumber(true) had no effect")
	}
}

func TestAdapterError(t *testing.T) {
	cfg := flatfile.DefaultConfig()
	cfg.SetExpectedColumnCount(2)
	p := flatfile.New(cfg)
	defer p.Close()
	if err := p.SetSource(strings.NewReader("a,b\nc\n")); err != nil {
		t.Fatal(err)
	}
	tbl, err := table.NewAdapter(p).Table()
	if !errors.Is(err, flatfile.ErrUnexpectedColumnCount) {
		t.Fatalf("error = %v, want ErrUnexpectedColumnCount", err)
	}
	if tbl != nil {
		t.Error("Table() returned rows with an error")
	}

	unbound := flatfile.New(flatfile.DefaultConfig())
	if _, err := table.NewAdapter(unbound).Table(); !errors.Is(err, flatfile.ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
}
