// Package imagecache stores downloaded images on disk, keyed by a
// caller-supplied identifier.
//
// The cache is append-only: once a file exists for an identifier it is
// returned as-is forever, even if the upstream image later changes. There is
// no freshness check and no eviction.
package imagecache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abelbrown/retroday/internal/fetch"
	"github.com/abelbrown/retroday/internal/otel"
)

type getter interface {
	Get(ctx context.Context, rawURL string) (fetch.Response, error)
}

// Cache is safe for concurrent use, including by multiple processes sharing
// the directory: writes go through a temp file and an atomic rename, so a
// reader never observes a partial file and concurrent writers of the same
// identifier simply race to an identical result.
type Cache struct {
	dir    string
	http   getter
	logger *otel.Logger
}

// New creates a Cache rooted at dir. The directory is created lazily on the
// first write.
func New(dir string, f getter, l *otel.Logger) *Cache {
	if l == nil {
		l = otel.NewNullLogger()
	}
	return &Cache{dir: dir, http: f, logger: l}
}

// Dir exposes the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// PathFor returns the deterministic file path for an identifier. Distinct
// identifiers always map to distinct paths.
func (c *Cache) PathFor(identifier string) string {
	return filepath.Join(c.dir, fileName(identifier))
}

// FetchOrGet returns the local path for identifier, downloading remoteURL
// only when no file exists yet. Returns ("", false) on any failure; no
// partial file is left behind.
func (c *Cache) FetchOrGet(ctx context.Context, remoteURL, identifier string) (string, bool) {
	if identifier == "" || remoteURL == "" {
		return "", false
	}
	dest := c.PathFor(identifier)

	if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() {
		c.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindCacheHit, Comp: "cache", Source: identifier})
		return dest, true
	}

	resp, err := c.http.Get(ctx, remoteURL)
	if err != nil {
		c.fail(identifier, fmt.Errorf("download: %w", err))
		return "", false
	}

	if err := c.write(dest, resp.Body); err != nil {
		c.fail(identifier, err)
		return "", false
	}

	c.logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCacheStore, Comp: "cache", Source: identifier, Count: len(resp.Body)})
	return dest, true
}

// write persists data at dest via temp file + rename.
func (c *Cache) write(dest string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into cache: %w", err)
	}
	return nil
}

func (c *Cache) fail(identifier string, err error) {
	c.logger.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCacheError, Comp: "cache", Source: identifier, Err: err.Error()})
}

// fileName builds "<safe-prefix>-<hash>.jpg". The hash covers the full
// identifier, which keeps names collision-free even when two identifiers
// sanitize to the same prefix.
func fileName(identifier string) string {
	return sanitize(identifier) + "-" + fetch.HashString(identifier) + ".jpg"
}

// sanitize keeps a short human-readable prefix for people browsing the directory.
func sanitize(identifier string) string {
	var b strings.Builder
	for _, r := range identifier {
		if b.Len() >= 40 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
