package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps SQLite database operations
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	storage := &DB{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return storage, nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

// initSchema creates tables if they don't exist
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		title TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		created_stamp TEXT NOT NULL DEFAULT '',
		redirect BOOLEAN NOT NULL DEFAULT 0,
		synced_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		list_page TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		PRIMARY KEY (list_page, position)
	);

	CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		support INTEGER NOT NULL,
		oppose INTEGER NOT NULL,
		neutral INTEGER NOT NULL,
		struck_support INTEGER NOT NULL,
		struck_oppose INTEGER NOT NULL,
		struck_neutral INTEGER NOT NULL,
		age_days INTEGER NOT NULL,
		images INTEGER NOT NULL,
		sections INTEGER NOT NULL,
		withdrawn BOOLEAN NOT NULL,
		contested BOOLEAN NOT NULL,
		featured BOOLEAN NOT NULL,
		closeable BOOLEAN NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		evaluated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(content_hash);
	CREATE INDEX IF NOT EXISTS idx_eval_title ON evaluations(title, evaluated_at);
	CREATE INDEX IF NOT EXISTS idx_eval_run ON evaluations(run_id);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before redirects were recorded
	_, err := d.db.Exec(`ALTER TABLE pages ADD COLUMN redirect BOOLEAN NOT NULL DEFAULT 0`)
	if err != nil && !strings.Contains(err.Error(), "duplicate column") {
		return err
	}
	return nil
}

// UpsertPage inserts or updates a page snapshot
func (d *DB) UpsertPage(p *Page) error {
	query := `
	INSERT INTO pages (title, content, content_hash, created_stamp, redirect, synced_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(title) DO UPDATE SET
		content = excluded.content,
		content_hash = excluded.content_hash,
		created_stamp = excluded.created_stamp,
		redirect = excluded.redirect,
		synced_at = excluded.synced_at
	`

	_, err := d.db.Exec(query, p.Title, p.Content, p.ContentHash, p.CreatedStamp, p.Redirect, p.SyncedAt)
	return err
}

// GetPage retrieves a page by title, or nil if it was never synced
func (d *DB) GetPage(title string) (*Page, error) {
	p := &Page{}
	err := d.db.QueryRow(`
	SELECT title, content, content_hash, created_stamp, redirect, synced_at
	FROM pages
	WHERE title = ?
	`, title).Scan(&p.Title, &p.Content, &p.ContentHash, &p.CreatedStamp, &p.Redirect, &p.SyncedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// ListPages retrieves every stored page ordered by title
func (d *DB) ListPages() ([]*Page, error) {
	rows, err := d.db.Query(`
	SELECT title, content, content_hash, created_stamp, redirect, synced_at
	FROM pages
	ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		p := &Page{}
		if err := rows.Scan(&p.Title, &p.Content, &p.ContentHash, &p.CreatedStamp, &p.Redirect, &p.SyncedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// CountPages returns the number of stored pages
func (d *DB) CountPages() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&count)
	return count, err
}

// GetContentHash retrieves just the content hash for a page
func (d *DB) GetContentHash(title string) (string, error) {
	var hash string
	err := d.db.QueryRow("SELECT content_hash FROM pages WHERE title = ?", title).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetListing replaces the stored candidate list of a list page
func (d *DB) SetListing(listPage string, titles []string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM listings WHERE list_page = ?", listPage); err != nil {
		return fmt.Errorf("clear listing: %w", err)
	}
	for i, title := range titles {
		if _, err := tx.Exec("INSERT INTO listings (list_page, position, title) VALUES (?, ?, ?)",
			listPage, i, title); err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}
	}

	return tx.Commit()
}

// Listing returns the stored candidate list of a list page in page order
func (d *DB) Listing(listPage string) ([]string, error) {
	rows, err := d.db.Query("SELECT title FROM listings WHERE list_page = ? ORDER BY position", listPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}

	return titles, rows.Err()
}

const evaluationColumns = `id, run_id, title, status, support, oppose, neutral,
	struck_support, struck_oppose, struck_neutral, age_days, images, sections,
	withdrawn, contested, featured, closeable, reason, evaluated_at`

// SaveEvaluations stores the evaluations of one run
func (d *DB) SaveEvaluations(evals []*Evaluation) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO evaluations (` + evaluationColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range evals {
		_, err := stmt.Exec(e.ID, e.RunID, e.Title, e.Status, e.Support, e.Oppose, e.Neutral,
			e.StruckSupport, e.StruckOppose, e.StruckNeutral, e.AgeDays, e.Images, e.Sections,
			e.Withdrawn, e.Contested, e.Featured, e.Closeable, e.Reason, e.EvaluatedAt)
		if err != nil {
			return fmt.Errorf("insert evaluation %s: %w", e.Title, err)
		}
	}

	return tx.Commit()
}

// LatestEvaluations returns the most recent evaluation of every nomination
func (d *DB) LatestEvaluations() ([]*Evaluation, error) {
	rows, err := d.db.Query(`
	SELECT ` + evaluationColumns + `
	FROM evaluations e
	WHERE evaluated_at = (SELECT MAX(evaluated_at) FROM evaluations WHERE title = e.title)
	ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []*Evaluation
	for rows.Next() {
		e := &Evaluation{}
		err := rows.Scan(&e.ID, &e.RunID, &e.Title, &e.Status, &e.Support, &e.Oppose, &e.Neutral,
			&e.StruckSupport, &e.StruckOppose, &e.StruckNeutral, &e.AgeDays, &e.Images, &e.Sections,
			&e.Withdrawn, &e.Contested, &e.Featured, &e.Closeable, &e.Reason, &e.EvaluatedAt)
		if err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}

	return evals, rows.Err()
}

// CountEvaluations returns the total number of stored evaluations
func (d *DB) CountEvaluations() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM evaluations").Scan(&count)
	return count, err
}
