package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcpar-land/quill/internal/apperr"
)

// PostRow represents a row in the posts table.
type PostRow struct {
	Path        string
	Name        string
	Title       string
	Description string
	Tags        []string
	Year        int
	Month       int
	Day         int
	Checksum    string
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// TagCount is a tag with the number of posts carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

const postColumns = `path, name, title, description, tags, year, month, day, checksum, updated_at`

// UpsertPost inserts or replaces a post, its FTS entry, and its tags within a transaction.
func (db *DB) UpsertPost(p PostRow, body, html string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(nonNil(p.Tags))

	_, err = tx.Exec(`
		INSERT INTO posts (path, name, title, description, tags, year, month, day, checksum, body, html, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name        = excluded.name,
			title       = excluded.title,
			description = excluded.description,
			tags        = excluded.tags,
			year        = excluded.year,
			month       = excluded.month,
			day         = excluded.day,
			checksum    = excluded.checksum,
			body        = excluded.body,
			html        = excluded.html,
			updated_at  = excluded.updated_at
	`, p.Path, p.Name, p.Title, p.Description, string(tagsJSON), p.Year, p.Month, p.Day, p.Checksum, body, html, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Title, body, p.Tags); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM post_tags WHERE path = ?`, p.Path)
	if len(p.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO post_tags (path, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range p.Tags {
			if _, err := stmt.Exec(p.Path, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePost removes a post, its FTS entry, and its tags.
func (db *DB) DeletePost(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM post_tags WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM posts WHERE path = ?`, path)

	return tx.Commit()
}

// CachedHTML returns the rendered HTML stored for path if its checksum still matches.
func (db *DB) CachedHTML(path, checksum string) (string, bool, error) {
	var html string
	err := db.conn.QueryRow(`SELECT html FROM posts WHERE path = ? AND checksum = ?`, path, checksum).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: cached html: %w", err)
	}
	return html, true, nil
}

// GetPost returns the post with the given name (file name without extension).
func (db *DB) GetPost(name string) (*PostRow, error) {
	row := db.conn.QueryRow(`SELECT `+postColumns+` FROM posts WHERE name = ?`, name)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	return p, nil
}

// ListPosts returns posts newest first, optionally filtered by tag, and the
// total number of matching posts.
func (db *DB) ListPosts(limit, offset int, tag string) ([]PostRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if tag != "" {
		where = `WHERE path IN (SELECT path FROM post_tags WHERE tag = ?)`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+postColumns+` FROM posts `+where+`
		ORDER BY year DESC, month DESC, day DESC, name DESC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	var out []PostRow
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// PostsByTag returns the names of all posts carrying tag.
func (db *DB) PostsByTag(tag string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT p.name FROM post_tags t JOIN posts p ON p.path = t.path
		WHERE t.tag = ?
		ORDER BY p.year DESC, p.month DESC, p.day DESC, p.name DESC
	`, tag)
	if err != nil {
		return nil, fmt.Errorf("index: posts by tag: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Tags returns every tag with its post count, ordered by tag.
func (db *DB) Tags() ([]TagCount, error) {
	rows, err := db.conn.Query(`SELECT tag, count(*) FROM post_tags GROUP BY tag ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("index: tags: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*PostRow, error) {
	var (
		p        PostRow
		tagsJSON string
	)
	if err := s.Scan(&p.Path, &p.Name, &p.Title, &p.Description, &tagsJSON,
		&p.Year, &p.Month, &p.Day, &p.Checksum, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		return nil, fmt.Errorf("index: decode tags for %s: %w", p.Path, err)
	}
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
