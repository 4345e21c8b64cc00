package release

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeList(t *testing.T) {
	in := `[
	  {"id": 5, "tag_name": "4.4.0", "draft": false, "prerelease": false,
	   "published_at": "2026-10-01T12:00:00Z", "html_url": "https://example.invalid/4.4.0",
	   "assets": [{"id": 77, "name": "warzone2100_src.tar.xz", "url": "https://api.example.invalid/assets/77"}]},
	  {"id": 4, "tag_name": "4.4.0-rc1", "draft": false, "prerelease": true, "published_at": null}
	]`
	rs, err := DecodeList(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rs, 2)

	assert.Equal(t, int64(5), rs[0].ID)
	assert.Equal(t, "4.4.0", rs[0].Tag)
	assert.Equal(t, []Asset{{ID: 77, Name: "warzone2100_src.tar.xz", URL: "https://api.example.invalid/assets/77"}}, rs[0].Assets)
	assert.True(t, rs[1].Prerelease)
	assert.Empty(t, rs[1].PublishedAt)
}

func TestDecodeList_MissingFlag(t *testing.T) {
	_, err := DecodeList(strings.NewReader(`[{"id": 5, "tag_name": "4.4.0", "draft": false}]`))
	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf), "err=%v", err)
	assert.Equal(t, "prerelease", mf.Field)
	assert.Equal(t, DocReleaseList, mf.Document)
	assert.Contains(t, err.Error(), "4.4.0")
}

func TestDecodeLatest_RequiresPublishedAt(t *testing.T) {
	_, err := DecodeLatest(strings.NewReader(`{"id": 5, "tag_name": "4.4.0"}`))
	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf), "err=%v", err)
	assert.Equal(t, "published_at", mf.Field)

	rel, err := DecodeLatest(strings.NewReader(`{"id": 5, "tag_name": "4.4.0", "published_at": "2026-10-01T12:00:00Z"}`))
	require.NoError(t, err)
	assert.False(t, rel.Draft)
}

func TestDecodeDevCommit(t *testing.T) {
	in := `{"sha": "0123456789abcdef", "commit": {"committer": {"date": "2026-10-13T08:00:00Z"}}, "wz_history": {"commit_count": "1000"}}`
	c, err := DecodeDevCommit(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1000, c.CommitCount)
	assert.Equal(t, "0123456", c.ShortSHA())

	in = `{"sha": "abc", "commit": {"committer": {"date": "x"}}, "wz_history": {"commit_count": 17}}`
	c, err = DecodeDevCommit(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 17, c.CommitCount)
	assert.Equal(t, "abc", c.ShortSHA())

	_, err = DecodeDevCommit(strings.NewReader(`{"sha": "abc", "commit": {"committer": {"date": "x"}}}`))
	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, "wz_history.commit_count", mf.Field)
}

func TestPublished(t *testing.T) {
	ts, err := Release{Tag: "4.4.0", PublishedAt: "2026-10-01T12:00:00Z"}.Published()
	require.NoError(t, err)
	assert.Equal(t, 2026, ts.Year())

	_, err = Release{Tag: "4.4.0", PublishedAt: "yesterday"}.Published()
	var de *DateParseError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "4.4.0", de.Tag)
}
