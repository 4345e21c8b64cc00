package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJournal_AppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.ndjson")
	j, err := New(path, "run-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j.Log(Record{Type: TypeCacheHit, Tag: "4.4.0", Major: "0x1010", Minor: "3"})
	j.Log(Record{Type: TypeDownload, Tag: "4.4.1"})
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var recs []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line=%q err=%v", sc.Text(), err)
		}
		recs = append(recs, r)
	}
	if len(recs) != 2 {
		t.Fatalf("records=%d", len(recs))
	}
	if recs[0].RunID != "run-test" || recs[0].Type != TypeCacheHit || recs[0].Minor != "3" {
		t.Fatalf("rec0=%+v", recs[0])
	}
	if recs[1].Timestamp == "" {
		t.Fatalf("timestamp not stamped")
	}
}

func TestJournal_NilIsNoop(t *testing.T) {
	var j *Journal
	j.Log(Record{Type: TypeStartup})
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMakeRunID(t *testing.T) {
	a, b := MakeRunID(), MakeRunID()
	if !strings.HasPrefix(a, "run-") || a == b {
		t.Fatalf("a=%q b=%q", a, b)
	}
}
