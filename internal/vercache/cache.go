// Package vercache memoizes the protocol version of each release by tag so a
// release's source archive is downloaded and inspected at most once.
package vercache

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/singleflight"

	"wz-channels/internal/journal"
	"wz-channels/internal/netcode"
	"wz-channels/internal/release"
)

// Fetcher downloads a release's source archive to a temporary file and
// returns its path.
type Fetcher interface {
	Fetch(ctx context.Context, rel release.Release) (string, error)
}

type Cache struct {
	store   *Store
	fetcher Fetcher
	journal *journal.Journal

	// extract is swapped in tests.
	extract func(path string) (netcode.ProtocolVersion, error)

	flight singleflight.Group
}

func New(store *Store, fetcher Fetcher, j *journal.Journal) *Cache {
	return &Cache{
		store:   store,
		fetcher: fetcher,
		journal: j,
		extract: netcode.ExtractFile,
	}
}

// GetOrExtract returns the protocol version of rel, consulting the store
// first and falling back to downloading and inspecting the source archive.
// Concurrent misses for the same tag share one download.
func (c *Cache) GetOrExtract(ctx context.Context, rel release.Release) (netcode.ProtocolVersion, error) {
	v, err, _ := c.flight.Do(rel.Tag, func() (any, error) {
		return c.getOrExtract(ctx, rel)
	})
	if err != nil {
		return netcode.ProtocolVersion{}, err
	}
	return v.(netcode.ProtocolVersion), nil
}

func (c *Cache) getOrExtract(ctx context.Context, rel release.Release) (netcode.ProtocolVersion, error) {
	v, ok, err := c.store.Get(rel.Tag)
	if err != nil {
		return netcode.ProtocolVersion{}, err
	}
	if ok {
		slog.Info("cached netcode version", "tag", rel.Tag, "major", v.Major, "minor", v.Minor)
		c.journal.Log(journal.Record{Type: journal.TypeCacheHit, Tag: rel.Tag, Major: v.Major, Minor: v.Minor})
		return v, nil
	}

	slog.Info("netcode version not cached", "tag", rel.Tag)
	path, err := c.fetcher.Fetch(ctx, rel)
	if err != nil {
		return netcode.ProtocolVersion{}, err
	}
	c.journal.Log(journal.Record{Type: journal.TypeDownload, Tag: rel.Tag, Path: path})
	defer func() {
		if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
			slog.Warn("remove downloaded archive failed", "tag", rel.Tag, "path", path, "err", rerr)
		}
	}()

	v, err = c.extract(path)
	if err != nil {
		return netcode.ProtocolVersion{}, fmt.Errorf("release %s: %w", rel.Tag, err)
	}
	slog.Info("extracted netcode version", "tag", rel.Tag, "major", v.Major, "minor", v.Minor)
	c.journal.Log(journal.Record{Type: journal.TypeExtract, Tag: rel.Tag, Major: v.Major, Minor: v.Minor})

	if err := c.store.Put(rel.Tag, v); err != nil {
		return netcode.ProtocolVersion{}, err
	}
	c.journal.Log(journal.Record{Type: journal.TypeCacheStore, Tag: rel.Tag})
	return v, nil
}
