// Package cache provides an optional SQLite-backed result cache. Files
// whose checksum is unchanged between runs skip parsing, validation, and
// extraction; resolution is always recomputed because it depends on the
// full file set.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/doclint/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path         TEXT PRIMARY KEY,
	checksum     TEXT NOT NULL,
	document     TEXT NOT NULL DEFAULT 'null',
	field_errors TEXT NOT NULL DEFAULT '[]',
	load_error   TEXT NOT NULL DEFAULT '',
	mentions     TEXT NOT NULL DEFAULT '[]'
);
`

// Entry is one cached per-file result.
type Entry struct {
	Path     string
	Checksum string
	// Document is nil when the file failed validation or loading.
	Document    *models.ValidatedDocument
	FieldErrors []models.FieldError
	// LoadError is non-empty when the file failed to load.
	LoadError string
	// Mentions are stored unresolved (raw targets only).
	Mentions []models.ReferenceMention
}

// DB wraps a sql.DB with cache-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the cache database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get returns the cached entry for path if its checksum still matches.
func (db *DB) Get(path, checksum string) (*Entry, bool, error) {
	var (
		storedChecksum string
		docJSON        string
		errsJSON       string
		loadError      string
		mentionsJSON   string
	)
	err := db.conn.QueryRow(
		`SELECT checksum, document, field_errors, load_error, mentions FROM documents WHERE path = ?`, path,
	).Scan(&storedChecksum, &docJSON, &errsJSON, &loadError, &mentionsJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", path, err)
	}
	if storedChecksum != checksum {
		return nil, false, nil
	}

	e := &Entry{Path: path, Checksum: storedChecksum, LoadError: loadError}
	if docJSON != "null" {
		e.Document = &models.ValidatedDocument{}
		if err := json.Unmarshal([]byte(docJSON), e.Document); err != nil {
			return nil, false, nil // corrupt row: treat as a miss
		}
	}
	if err := json.Unmarshal([]byte(errsJSON), &e.FieldErrors); err != nil {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(mentionsJSON), &e.Mentions); err != nil {
		return nil, false, nil
	}
	return e, true, nil
}

// Put inserts or replaces the entry for its path.
func (db *DB) Put(e Entry) error {
	docJSON, err := json.Marshal(e.Document)
	if err != nil {
		return fmt.Errorf("cache: marshal document: %w", err)
	}
	errsJSON, err := json.Marshal(orEmptyErrors(e.FieldErrors))
	if err != nil {
		return fmt.Errorf("cache: marshal field errors: %w", err)
	}
	mentionsJSON, err := json.Marshal(orEmptyMentions(e.Mentions))
	if err != nil {
		return fmt.Errorf("cache: marshal mentions: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO documents (path, checksum, document, field_errors, load_error, mentions)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum     = excluded.checksum,
			document     = excluded.document,
			field_errors = excluded.field_errors,
			load_error   = excluded.load_error,
			mentions     = excluded.mentions
	`, e.Path, e.Checksum, string(docJSON), string(errsJSON), e.LoadError, string(mentionsJSON))
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", e.Path, err)
	}
	return nil
}

// Prune removes rows for paths no longer present in the corpus.
func (db *DB) Prune(live map[string]struct{}) error {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return fmt.Errorf("cache: prune scan: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return err
		}
		if _, ok := live[p]; !ok {
			stale = append(stale, p)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range stale {
		if _, err := db.conn.Exec(`DELETE FROM documents WHERE path = ?`, p); err != nil {
			return fmt.Errorf("cache: prune %s: %w", p, err)
		}
	}
	return nil
}

func orEmptyErrors(v []models.FieldError) []models.FieldError {
	if v == nil {
		return []models.FieldError{}
	}
	return v
}

func orEmptyMentions(v []models.ReferenceMention) []models.ReferenceMention {
	if v == nil {
		return []models.ReferenceMention{}
	}
	return v
}
