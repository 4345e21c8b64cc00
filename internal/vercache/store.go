package vercache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wz-channels/internal/netcode"
)

type entryFile struct {
	NetcodeVer *struct {
		Major *string `json:"Major"`
		Minor *string `json:"Minor"`
	} `json:"NetcodeVer"`
}

// Store keeps one JSON file per release tag under {Root}/net_ver/.
type Store struct {
	Root string
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Path returns the entry file for tag.
func (s *Store) Path(tag string) (string, error) {
	if tag == "" || tag == "." || tag == ".." || strings.ContainsAny(tag, `/\`) {
		return "", fmt.Errorf("release tag %q cannot be used as a cache key", tag)
	}
	return filepath.Join(s.Root, "net_ver", tag+".json"), nil
}

// Get returns the cached version for tag. Entries that are unreadable or lack
// either field are reported as misses.
func (s *Store) Get(tag string) (netcode.ProtocolVersion, bool, error) {
	p, err := s.Path(tag)
	if err != nil {
		return netcode.ProtocolVersion{}, false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return netcode.ProtocolVersion{}, false, nil
		}
		return netcode.ProtocolVersion{}, false, fmt.Errorf("read cache entry %s: %w", p, err)
	}
	var e entryFile
	if err := json.Unmarshal(b, &e); err != nil {
		slog.Warn("ignoring malformed cache entry", "tag", tag, "path", p, "err", err)
		return netcode.ProtocolVersion{}, false, nil
	}
	if e.NetcodeVer == nil || e.NetcodeVer.Major == nil || e.NetcodeVer.Minor == nil {
		slog.Warn("ignoring incomplete cache entry", "tag", tag, "path", p)
		return netcode.ProtocolVersion{}, false, nil
	}
	return netcode.ProtocolVersion{Major: *e.NetcodeVer.Major, Minor: *e.NetcodeVer.Minor}, true, nil
}

// Put records v for tag. A valid existing entry is left untouched: a tag's
// protocol version never changes once published.
func (s *Store) Put(tag string, v netcode.ProtocolVersion) error {
	if _, ok, err := s.Get(tag); err != nil {
		return err
	} else if ok {
		return nil
	}

	p, err := s.Path(tag)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	var e entryFile
	e.NetcodeVer = &struct {
		Major *string `json:"Major"`
		Minor *string `json:"Minor"`
	}{Major: &v.Major, Minor: &v.Minor}
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+tag+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	_, werr := tmp.Write(append(b, '\n'))
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry %s: %w", p, errors.Join(werr, cerr))
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry %s: %w", p, err)
	}
	return nil
}
