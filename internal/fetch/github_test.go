package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wz-channels/internal/release"
)

func rel44() release.Release {
	return release.Release{
		ID:  5,
		Tag: "4.4.0",
		Assets: []release.Asset{
			{ID: 1, Name: "warzone2100_win_x64_installer.exe"},
			{ID: 77, Name: SourceAssetName},
		},
	}
}

func newTestGitHub(t *testing.T, h http.Handler, token string) *GitHub {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g, err := NewGitHub(Options{
		Repository: "Warzone2100/warzone2100",
		Token:      token,
		APIURL:     srv.URL,
		TempDir:    t.TempDir(),
	})
	require.NoError(t, err)
	return g
}

func TestSourceAsset(t *testing.T) {
	a, err := SourceAsset(rel44())
	require.NoError(t, err)
	assert.Equal(t, int64(77), a.ID)

	_, err = SourceAsset(release.Release{Tag: "4.0.0"})
	var le *LookupError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "4.0.0", le.Tag)
}

func TestFetch_FollowsRedirectWithoutToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/Warzone2100/warzone2100/releases/assets/77", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/octet-stream", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		http.Redirect(w, r, "/storage/source.tar.xz", http.StatusFound)
	})
	mux.HandleFunc("/storage/source.tar.xz", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("archive-bytes"))
	})
	g := newTestGitHub(t, mux, "secret")

	p, err := g.Fetch(context.Background(), rel44())
	require.NoError(t, err)
	assert.Equal(t, g.TempPath("4.4.0"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(b))
}

func TestFetch_DirectBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/Warzone2100/warzone2100/releases/assets/77", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("direct"))
	})
	g := newTestGitHub(t, mux, "")

	p, err := g.Fetch(context.Background(), rel44())
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "direct", string(b))
}

func TestFetch_NetworkError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/Warzone2100/warzone2100/releases/assets/77", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	g := newTestGitHub(t, mux, "")

	_, err := g.Fetch(context.Background(), rel44())
	var ne *NetworkError
	require.True(t, errors.As(err, &ne), "err=%v", err)
	assert.Equal(t, "4.4.0", ne.Tag)

	_, statErr := os.Stat(g.TempPath("4.4.0"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetch_LookupError(t *testing.T) {
	g := newTestGitHub(t, http.NotFoundHandler(), "")
	_, err := g.Fetch(context.Background(), release.Release{Tag: "3.1.0"})
	var le *LookupError
	require.True(t, errors.As(err, &le), "err=%v", err)
}

func TestNewGitHub_InvalidRepository(t *testing.T) {
	_, err := NewGitHub(Options{Repository: "warzone2100"})
	require.Error(t, err)
}
