// Package sink loads materialized tables into a SQL database.
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shapestone/shape-flatfile/pkg/flatfile/table"
)

// Options controls a Loader.
type Options struct {
	// Create issues CREATE TABLE IF NOT EXISTS with one TEXT column per table column.
	Create bool
}

// Loader inserts table rows into one destination table inside a transaction.
type Loader struct {
	db     *sqlx.DB
	target string
	opts   Options
}

// Connect opens and pings a database with the named driver.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect with driver %s", driver)
	}
	return db, nil
}

// New returns a Loader writing to target, which may be schema qualified ("schema.table").
func New(db *sqlx.DB, target string, opts Options) *Loader {
	return &Loader{db: db, target: target, opts: opts}
}

// QuoteName quotes each dot-separated part of a possibly qualified name.
func QuoteName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func (l *Loader) createStatement(columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pq.QuoteIdentifier(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", QuoteName(l.target), strings.Join(defs, ", "))
}

func (l *Loader) insertStatement(columns []string) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		names[i] = pq.QuoteIdentifier(c)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteName(l.target), strings.Join(names, ", "), strings.Join(marks, ", "))
	return l.db.Rebind(query)
}

// Load inserts every row of t and returns the number of rows inserted. Missing cells
// are inserted as NULL. Nothing is committed unless every row is inserted.
func (l *Loader) Load(ctx context.Context, t *table.Table) (n int64, err error) {
	columns := t.Columns()
	if len(columns) == 0 {
		return 0, nil
	}
	if l.target == "" {
		return 0, errors.New("no destination table given")
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if l.opts.Create {
		if _, err = tx.ExecContext(ctx, l.createStatement(columns)); err != nil {
			return 0, errors.Wrapf(err, "failed to create table %s", l.target)
		}
	}

	stmt, err := tx.PreparexContext(ctx, l.insertStatement(columns))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to prepare insert into %s", l.target)
	}
	defer stmt.Close()

	args := make([]interface{}, len(columns))
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for c := range args {
			if c < len(row) {
				args[c] = row[c]
			} else {
				args[c] = nil
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return n, errors.Wrapf(err, "failed to insert row at file line %d", t.FileRow(i))
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return n, errors.Wrap(err, "failed to commit")
	}
	return n, nil
}
