package database

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver names a supported archive backend. The values double as the
// database/sql driver names.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Dialect is what the archive queries need to know about the backend.
// Queries are written with ? placeholders and rebound per dialect.
type Dialect interface {
	Driver() Driver
	Rebind(query string) string
	IsDuplicateKey(err error) bool
}

type sqliteDialect struct{}

func (sqliteDialect) Driver() Driver { return DriverSQLite }

func (sqliteDialect) Rebind(query string) string { return query }

// IsDuplicateKey recognizes primary key and unique violations, which the
// driver reports as extended SQLITE_CONSTRAINT codes.
func (sqliteDialect) IsDuplicateKey(err error) bool {
	var e *sqlite.Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(e.Error(), "UNIQUE constraint failed")
	}
	return false
}

// sqliteDSN opens path in WAL mode with a busy timeout. Pragmas in the DSN
// apply to every pooled connection, not just the first.
func sqliteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

type postgresDialect struct{}

func (postgresDialect) Driver() Driver { return DriverPostgres }

// Rebind numbers ? placeholders as $1, $2, ... leaving question marks in
// quoted literals and identifiers alone.
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// IsDuplicateKey matches unique_violation (SQLSTATE 23505).
func (postgresDialect) IsDuplicateKey(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
