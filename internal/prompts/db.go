// Package prompts stores practice texts in SQLite with an FTS5 mirror for
// search.
package prompts

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS prompts (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    text       TEXT NOT NULL UNIQUE,
    source     TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT ''
);

CREATE VIRTUAL TABLE IF NOT EXISTS prompts_fts USING fts5(
    text,
    content=prompts,
    content_rowid=id,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS prompts_ai AFTER INSERT ON prompts BEGIN
    INSERT INTO prompts_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TRIGGER IF NOT EXISTS prompts_ad AFTER DELETE ON prompts BEGIN
    INSERT INTO prompts_fts(prompts_fts, rowid, text) VALUES('delete', old.id, old.text);
END;

CREATE TRIGGER IF NOT EXISTS prompts_au AFTER UPDATE ON prompts BEGIN
    INSERT INTO prompts_fts(prompts_fts, rowid, text) VALUES('delete', old.id, old.text);
    INSERT INTO prompts_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion is bumped when the table layout changes.
const schemaVersion = "1"

// SourceBuiltin marks the practice texts shipped with the binary.
const SourceBuiltin = "builtin"

var ErrNotFound = errors.New("prompt not found")

// Builtin is the catalog every fresh database starts with.
var Builtin = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Pack my box with five dozen liquor jugs.",
	"How vexingly quick daft zebras jump!",
	"Waltz, bad nymph, for quick jigs vex.",
	"Sphinx of black quartz, judge my vow.",
	"Programming is the art of telling another human being what one wants the computer to do.",
	"In the world of software development, debugging is twice as hard as writing the code in the first place.",
	"The best way to predict the future is to implement it.",
}

type Prompt struct {
	ID        int64
	Text      string
	Source    string
	CreatedAt string
}

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// migrate records the schema version and seeds the builtin prompts the
// first time a database is opened.
func (d *DB) migrate() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read schema version: %w", err)
	}
	if err == sql.ErrNoRows {
		for _, text := range Builtin {
			if _, _, err := d.Add(text, SourceBuiltin); err != nil {
				return fmt.Errorf("seed prompts: %w", err)
			}
		}
	}
	if _, err := d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// Add stores text and reports whether it was new. Text is trimmed; a text
// already in the catalog keeps its original id and source.
func (d *DB) Add(text, source string) (int64, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false, errors.New("add prompt: empty text")
	}
	res, err := d.db.Exec(
		"INSERT OR IGNORE INTO prompts (text, source, created_at) VALUES (?, ?, ?)",
		text, source, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, false, fmt.Errorf("add prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		id, err := res.LastInsertId()
		return id, true, err
	}
	var id int64
	if err := d.db.QueryRow("SELECT id FROM prompts WHERE text = ?", text).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("add prompt: %w", err)
	}
	return id, false, nil
}

func (d *DB) Get(id int64) (*Prompt, error) {
	var p Prompt
	err := d.db.QueryRow(
		"SELECT id, text, source, created_at FROM prompts WHERE id = ?", id,
	).Scan(&p.ID, &p.Text, &p.Source, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns prompts in insertion order. A limit <= 0 means all.
func (d *DB) List(limit int) ([]Prompt, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(
		"SELECT id, text, source, created_at FROM prompts ORDER BY id LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrompts(rows)
}

// Random picks one prompt uniformly.
func (d *DB) Random() (*Prompt, error) {
	var p Prompt
	err := d.db.QueryRow(
		"SELECT id, text, source, created_at FROM prompts ORDER BY RANDOM() LIMIT 1",
	).Scan(&p.ID, &p.Text, &p.Source, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DB) Remove(id int64) error {
	res, err := d.db.Exec("DELETE FROM prompts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("remove prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM prompts").Scan(&n)
	return n, err
}

func scanPrompts(rows *sql.Rows) ([]Prompt, error) {
	var out []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Text, &p.Source, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
