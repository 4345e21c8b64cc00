package release

import (
	"fmt"
	"time"
)

// TimestampLayout is the release host's JSON date format.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Asset is a named downloadable artifact attached to a release.
type Asset struct {
	ID   int64
	Name string
	URL  string
}

// Release is one entry of the release history.
// ID increases with creation time; history slices are kept newest-first.
type Release struct {
	ID          int64
	Tag         string
	PublishedAt string
	HTMLURL     string
	Draft       bool
	Prerelease  bool
	Assets      []Asset
}

// Published parses PublishedAt. Drafts usually have no publish date and fail here.
func (r Release) Published() (time.Time, error) {
	t, err := time.Parse(TimestampLayout, r.PublishedAt)
	if err != nil {
		return time.Time{}, &DateParseError{Tag: r.Tag, Value: r.PublishedAt, Err: err}
	}
	return t.UTC(), nil
}

// Stable reports whether r is neither a draft nor a prerelease.
func (r Release) Stable() bool { return !r.Draft && !r.Prerelease }

// DevCommit is the newest commit on the development branch.
type DevCommit struct {
	SHA         string
	CommittedAt string
	// CommitCount is the branch history length, used as the dev build counter.
	CommitCount int
}

// ShortSHA returns the 7-character abbreviated hash.
func (c DevCommit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// MissingFieldError reports a required key absent from an input document.
type MissingFieldError struct {
	Document string
	Field    string
	// Tag identifies the offending release when known.
	Tag string
}

func (e *MissingFieldError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("missing expected key %q in %s JSON (release %s)", e.Field, e.Document, e.Tag)
	}
	return fmt.Sprintf("missing expected key %q in %s JSON", e.Field, e.Document)
}

// DateParseError reports a malformed release timestamp.
type DateParseError struct {
	Tag   string
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("release %s: parse published_at %q: %v", e.Tag, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }
