// Package store persists a cache.Cache across process runs: dump/load in
// fixed-width text, TSV, line-oriented JSON and YAML (text.go), or, for a
// long-running sweep, a relational table reached over database/sql
// (sql_store.go), following a driver-registry pattern narrowed from
// "manage many named connections" to "hold the one connection this run's
// --sql flag asked for."
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	_ "github.com/go-sql-driver/mysql"   // MySQL driver
	_ "github.com/lib/pq"                // PostgreSQL driver
	_ "modernc.org/sqlite"               // pure-Go SQLite driver

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
)

// schema is created (if absent) the first time a SQLStore opens its DSN.
const schema = `
CREATE TABLE IF NOT EXISTS multconst_cache (
	k         BIGINT PRIMARY KEY,
	lower     DOUBLE PRECISION NOT NULL,
	upper     DOUBLE PRECISION NOT NULL,
	finished  BOOLEAN NOT NULL,
	sequence  TEXT NOT NULL
)`

// SQLStore holds one open database/sql connection dedicated to a single
// cache table, selected by a DSN prefix the way DBManager.Connect selected
// a driver by a type string.
type SQLStore struct {
	db      *sql.DB
	dialect string
	dsn     string
	opened  time.Time
}

// dsnDriver maps a DSN's scheme prefix to its database/sql driver name and
// strips the prefix, since the drivers registered above don't all expect
// it verbatim.
func dsnDriver(dsn string) (driver, rest string, err error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn, nil
	default:
		return "", "", fmt.Errorf("store: unrecognised DSN prefix (want sqlite://, postgres://, mysql://, sqlserver://): %s", dsn)
	}
}

// OpenSQL opens dsn, creating the cache table if it does not already
// exist.
func OpenSQL(dsn string) (*SQLStore, error) {
	driver, rest, err := dsnDriver(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, rest)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLStore{db: db, dialect: driver, dsn: dsn, opened: time.Now()}, nil
}

// Close releases the underlying connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save upserts every entry in c that carries a sequence into the table,
// one row per multiplier.
func (s *SQLStore) Save(c *cache.Cache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin save: %w", err)
	}

	var saveErr error
	c.Each(func(k int64, e cache.Entry) {
		if saveErr != nil || len(e.Instrs) == 0 {
			return
		}
		text := instr.PrintSequence(e.Instrs)
		if _, err := tx.Exec(s.upsertStmt(), k, e.Lower, e.Upper, e.Finished, text); err != nil {
			saveErr = fmt.Errorf("store: upsert k=%d: %w", k, err)
		}
	})
	if saveErr != nil {
		tx.Rollback()
		return saveErr
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save: %w", err)
	}
	return nil
}

// upsertStmt returns this dialect's upsert-by-primary-key statement. The
// four drivers disagree on the syntax, the one irreducible cost of
// supporting all of them through one code path.
func (s *SQLStore) upsertStmt() string {
	switch s.dialect {
	case "postgres":
		return `INSERT INTO multconst_cache (k, lower, upper, finished, sequence) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (k) DO UPDATE SET lower=$2, upper=$3, finished=$4, sequence=$5`
	case "sqlserver":
		return `MERGE multconst_cache AS t USING (SELECT ? AS k, ? AS lower, ? AS upper, ? AS finished, ? AS sequence) AS s
			ON t.k = s.k
			WHEN MATCHED THEN UPDATE SET lower=s.lower, upper=s.upper, finished=s.finished, sequence=s.sequence
			WHEN NOT MATCHED THEN INSERT (k, lower, upper, finished, sequence) VALUES (s.k, s.lower, s.upper, s.finished, s.sequence)`
	case "mysql":
		return `INSERT INTO multconst_cache (k, lower, upper, finished, sequence) VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE lower=VALUES(lower), upper=VALUES(upper), finished=VALUES(finished), sequence=VALUES(sequence)`
	default: // sqlite
		return `INSERT INTO multconst_cache (k, lower, upper, finished, sequence) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(k) DO UPDATE SET lower=excluded.lower, upper=excluded.upper, finished=excluded.finished, sequence=excluded.sequence`
	}
}

// Load reads every row back into a fresh cache built on p, parsing each
// stored sequence and re-costing it under p (a stored sequence built under
// a different profile will not round-trip its cost correctly — callers are
// expected to pass the same profile used to Save).
func Load(dsn string, p *profile.Profile) (*cache.Cache, error) {
	s, err := OpenSQL(dsn)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	rows, err := s.db.Query(`SELECT k, lower, upper, finished, sequence FROM multconst_cache`)
	if err != nil {
		return nil, fmt.Errorf("store: load query: %w", err)
	}
	defer rows.Close()

	out := cache.New(p)
	for rows.Next() {
		var k int64
		var lower, upper float64
		var finished bool
		var text string
		if err := rows.Scan(&k, &lower, &upper, &finished, &text); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		seq, err := instr.ParseSequence(text)
		if err != nil {
			return nil, mcerrors.NewParseError("stored sequence malformed", text, 0)
		}
		out.Insert(k, lower, upper, finished, p.Recost(seq))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: row iteration: %w", err)
	}
	return out, nil
}
