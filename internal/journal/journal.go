// Package journal writes an optional NDJSON record of a resolution run:
// cache hits, downloads, extractions and channels that failed to build.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record types.
const (
	TypeStartup      = "startup"
	TypeCacheHit     = "cache_hit"
	TypeDownload     = "download"
	TypeExtract      = "extract"
	TypeCacheStore   = "cache_store"
	TypeChannelError = "channel_error"
	TypeOutput       = "output"
)

type Record struct {
	RunID     string `json:"run_id"`
	Timestamp string `json:"ts"`
	Type      string `json:"type"`
	Tag       string `json:"tag,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Path      string `json:"path,omitempty"`
	Major     string `json:"major,omitempty"`
	Minor     string `json:"minor,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Journal appends records to a file. A nil *Journal discards everything.
type Journal struct {
	runID string

	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

func New(path, runID string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{
		runID: runID,
		f:     f,
		w:     bufio.NewWriterSize(f, 64*1024),
	}, nil
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.w != nil {
		_ = j.w.Flush()
	}
	if j.f != nil {
		return j.f.Close()
	}
	return nil
}

// Log stamps rec with the run id and current time and appends it.
func (j *Journal) Log(rec Record) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.w == nil {
		return
	}
	rec.RunID = j.runID
	if rec.Timestamp == "" {
		rec.Timestamp = NowTS()
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_, _ = j.w.Write(append(line, '\n'))
	_ = j.w.Flush()
}

func NowTS() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func MakeRunID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UTC().UnixNano())
	}
	return "run-" + id.String()
}
