// Package indexcache memoizes the result of the "list" CLI verb across
// runs, the same memoize-expensive-scanning role the teacher's
// internal/assets/manifest.go plays for pk3/shader scans, generalized from
// a single JSON blob to a queryable, appendable modernc.org/sqlite store
// keyed by a BLAKE2b content fingerprint and holding zstd-compressed
// listing payloads.
package indexcache

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	_ "modernc.org/sqlite"
)

// Cache wraps a sqlite database of cached container listings.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and ensures
// its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("indexcache: open %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS listings (
	fingerprint TEXT PRIMARY KEY,
	payload     BLOB NOT NULL,
	created_at  INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("indexcache: create schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// Fingerprint returns the BLAKE2b-256 hash of a container's bytes, used as
// the cache key.
func Fingerprint(data []byte) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("indexcache: new hash: %w", err)
	}
	if _, err := h.Write(data); err != nil {
		return "", fmt.Errorf("indexcache: hash: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Get returns the cached, decompressed listing payload for fingerprint, or
// ok=false if nothing is cached for it.
func (c *Cache) Get(fingerprint string) (payload []byte, ok bool, err error) {
	var compressed []byte
	row := c.db.QueryRow(`SELECT payload FROM listings WHERE fingerprint = ?`, fingerprint)
	if err := row.Scan(&compressed); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("indexcache: query: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false, fmt.Errorf("indexcache: new decoder: %w", err)
	}
	defer dec.Close()

	payload, err = dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("indexcache: decompress: %w", err)
	}
	return payload, true, nil
}

// Put stores payload under fingerprint, compressing it with zstd, and
// overwrites any previous entry for the same fingerprint.
func (c *Cache) Put(fingerprint string, payload []byte, now int64) error {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("indexcache: new encoder: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(payload, nil)

	_, err = c.db.Exec(
		`INSERT INTO listings (fingerprint, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		fingerprint, compressed, now,
	)
	if err != nil {
		return fmt.Errorf("indexcache: insert: %w", err)
	}
	return nil
}

// FingerprintReader is a convenience wrapper for fingerprinting a stream
// without buffering it twice at the call site.
func FingerprintReader(r io.Reader) (string, []byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("indexcache: read: %w", err)
	}
	fp, err := Fingerprint(data)
	if err != nil {
		return "", nil, err
	}
	return fp, data, nil
}
