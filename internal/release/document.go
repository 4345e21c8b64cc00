package release

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Document names used in MissingFieldError.
const (
	DocLatestRelease = "latestrelease"
	DocReleaseList   = "releaselist"
	DocDevCommit     = "latestdevcommit"
)

type assetDoc struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
	URL  string  `json:"url"`
}

type releaseDoc struct {
	ID          *int64     `json:"id"`
	TagName     *string    `json:"tag_name"`
	PublishedAt *string    `json:"published_at"`
	HTMLURL     *string    `json:"html_url"`
	Draft       *bool      `json:"draft"`
	Prerelease  *bool      `json:"prerelease"`
	Assets      []assetDoc `json:"assets"`
}

type devCommitDoc struct {
	SHA    *string `json:"sha"`
	Commit *struct {
		Committer *struct {
			Date *string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
	History *struct {
		CommitCount json.RawMessage `json:"commit_count"`
	} `json:"wz_history"`
}

func (d releaseDoc) toRelease(doc string, requireFlags bool) (Release, error) {
	tag := ""
	if d.TagName != nil {
		tag = *d.TagName
	}
	missing := func(field string) error {
		return &MissingFieldError{Document: doc, Field: field, Tag: tag}
	}
	if d.ID == nil {
		return Release{}, missing("id")
	}
	if d.TagName == nil {
		return Release{}, missing("tag_name")
	}
	if requireFlags {
		if d.Draft == nil {
			return Release{}, missing("draft")
		}
		if d.Prerelease == nil {
			return Release{}, missing("prerelease")
		}
	}

	r := Release{ID: *d.ID, Tag: tag}
	if d.PublishedAt != nil {
		r.PublishedAt = *d.PublishedAt
	}
	if d.HTMLURL != nil {
		r.HTMLURL = *d.HTMLURL
	}
	if d.Draft != nil {
		r.Draft = *d.Draft
	}
	if d.Prerelease != nil {
		r.Prerelease = *d.Prerelease
	}
	for _, a := range d.Assets {
		if a.Name == nil {
			return Release{}, missing("assets[].name")
		}
		asset := Asset{Name: *a.Name, URL: a.URL}
		if a.ID != nil {
			asset.ID = *a.ID
		}
		r.Assets = append(r.Assets, asset)
	}
	return r, nil
}

// DecodeLatest reads the designated latest release. id, tag_name and
// published_at are required.
func DecodeLatest(r io.Reader) (Release, error) {
	var d releaseDoc
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Release{}, fmt.Errorf("decode %s: %w", DocLatestRelease, err)
	}
	rel, err := d.toRelease(DocLatestRelease, false)
	if err != nil {
		return Release{}, err
	}
	if d.PublishedAt == nil {
		return Release{}, &MissingFieldError{Document: DocLatestRelease, Field: "published_at", Tag: rel.Tag}
	}
	return rel, nil
}

// DecodeList reads the release history. Order is preserved as given and is
// expected to be newest-first.
func DecodeList(r io.Reader) ([]Release, error) {
	var docs []releaseDoc
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", DocReleaseList, err)
	}
	out := make([]Release, 0, len(docs))
	for _, d := range docs {
		rel, err := d.toRelease(DocReleaseList, true)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// DecodeDevCommit reads the latest development-branch commit document.
func DecodeDevCommit(r io.Reader) (DevCommit, error) {
	var d devCommitDoc
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return DevCommit{}, fmt.Errorf("decode %s: %w", DocDevCommit, err)
	}
	missing := func(field string) error {
		return &MissingFieldError{Document: DocDevCommit, Field: field}
	}
	if d.SHA == nil {
		return DevCommit{}, missing("sha")
	}
	if d.Commit == nil || d.Commit.Committer == nil || d.Commit.Committer.Date == nil {
		return DevCommit{}, missing("commit.committer.date")
	}
	if d.History == nil || len(d.History.CommitCount) == 0 || string(d.History.CommitCount) == "null" {
		return DevCommit{}, missing("wz_history.commit_count")
	}
	count, err := parseCount(d.History.CommitCount)
	if err != nil {
		return DevCommit{}, fmt.Errorf("decode %s: wz_history.commit_count: %w", DocDevCommit, err)
	}
	return DevCommit{
		SHA:         *d.SHA,
		CommittedAt: *d.Commit.Committer.Date,
		CommitCount: count,
	}, nil
}

// parseCount accepts the counter either as a JSON number or a numeric string.
func parseCount(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	return strconv.Atoi(s)
}

// LoadLatest decodes the latest release document at path.
func LoadLatest(path string) (Release, error) {
	f, err := os.Open(path)
	if err != nil {
		return Release{}, err
	}
	defer f.Close()
	return DecodeLatest(f)
}

// LoadList decodes the release history document at path.
func LoadList(path string) ([]Release, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeList(f)
}

// LoadDevCommit decodes the development commit document at path.
func LoadDevCommit(path string) (DevCommit, error) {
	f, err := os.Open(path)
	if err != nil {
		return DevCommit{}, err
	}
	defer f.Close()
	return DecodeDevCommit(f)
}
