package flatfile

import "io"

// Scanner reads rows one at a time with a bufio.Scanner-like interface.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	cfg := flatfile.DefaultConfig()
//	cfg.SetFirstRowHasHeader(true)
//	scanner := flatfile.NewScanner(file, cfg)
//	for scanner.Scan() {
//	    row := scanner.Row()
//	    name, _ := row.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	p   *Parser
	err error
	row Row
}

// NewScanner returns a Scanner reading r with cfg.
func NewScanner(r io.Reader, cfg Config) *Scanner {
	s := &Scanner{p: New(cfg)}
	s.err = s.p.SetSource(r)
	return s
}

// NewFileScanner returns a Scanner over the file at path. Open errors are reported by Err.
func NewFileScanner(path string, cfg Config) *Scanner {
	s := &Scanner{p: New(cfg)}
	s.err = s.p.SetSourceFile(path)
	return s
}

// Scan advances to the next data row. It returns false at the end of the input or
// on the first error; Err reports the error. The source is released when Scan returns false.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	ok, err := s.p.Read()
	if err != nil {
		s.err = err
		_ = s.p.Close()
		return false
	}
	if !ok {
		s.row = Row{}
		return false
	}
	s.row = Row{
		fields:  s.p.Fields(),
		names:   s.headers(),
		fileRow: s.p.FileRowNumber(),
	}
	return true
}

func (s *Scanner) headers() []string {
	if !s.p.HeaderFound() {
		return nil
	}
	return s.p.ColumnNames()
}

// Row returns the row read by the last successful Scan.
func (s *Scanner) Row() Row { return s.row }

// Fields returns the fields of the row read by the last successful Scan.
func (s *Scanner) Fields() []string { return s.row.fields }

// Headers returns the captured header names, or nil without a header row.
func (s *Scanner) Headers() []string { return s.headers() }

// Err returns the first error encountered, or nil at a clean end of input.
func (s *Scanner) Err() error { return s.err }

// Parser exposes the underlying parser for its row counters.
func (s *Scanner) Parser() *Parser { return s.p }

// Row is one data row with optional header names.
type Row struct {
	fields  []string
	names   []string
	fileRow int
}

// Get returns the field at index.
func (r Row) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName returns the field under the header name.
func (r Row) GetByName(name string) (string, bool) {
	for i, n := range r.names {
		if n == name {
			return r.Get(i)
		}
	}
	return "", false
}

// Fields returns the row's fields.
func (r Row) Fields() []string { return r.fields }

// Len returns the number of fields.
func (r Row) Len() int { return len(r.fields) }

// FileRow returns the physical row number the row ended on.
func (r Row) FileRow() int { return r.fileRow }
