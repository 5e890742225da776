package build

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Cache is a SQLite-backed render cache keyed by source path and content
// hash. A page whose hash is unchanged since the last build keeps its output
// file and skips markdown and template execution.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenCache opens (or creates) the cache database. Use ":memory:" for an
// ephemeral cache.
func OpenCache(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open render cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		source_path TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		output_path TEXT NOT NULL,
		rendered_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize render cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Fresh reports whether source was last rendered from exactly this hash.
func (c *Cache) Fresh(ctx context.Context, source, hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stored string
	err := c.db.QueryRowContext(ctx,
		"SELECT content_hash FROM pages WHERE source_path = ?", source,
	).Scan(&stored)
	return err == nil && stored == hash
}

// Put records a successful render of source.
func (c *Cache) Put(ctx context.Context, source, hash, output string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pages (source_path, content_hash, output_path, rendered_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   output_path = excluded.output_path,
		   rendered_at = excluded.rendered_at`,
		source, hash, output, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record render of %s: %w", source, err)
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// pageHash computes the cache key input for a page: everything that can
// change its rendered output short of a template change.
func pageHash(p *site.Page) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00", p.URL, p.Title(), p.Date().UTC().Format(time.RFC3339), p.Doc.Meta.Description)
	for _, tag := range p.Doc.Meta.Tags {
		fmt.Fprintf(h, "%s\x00", tag)
	}
	h.Write(p.Doc.Body)
	return hex.EncodeToString(h.Sum(nil))
}
