// Package fetch downloads the source archive attached to a release.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"

	"wz-channels/internal/release"
)

// SourceAssetName is the asset every release publishes its source tarball as.
const SourceAssetName = "warzone2100_src.tar.xz"

// LookupError reports a release without a source tarball asset.
type LookupError struct {
	Tag   string
	Asset string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no source tarball asset %q found for release %s", e.Asset, e.Tag)
}

// NetworkError reports a failed download.
type NetworkError struct {
	Tag     string
	AssetID int64
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("download source tarball for release %s (asset %d): %v", e.Tag, e.AssetID, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SourceAsset returns the source tarball asset of rel.
func SourceAsset(rel release.Release) (release.Asset, error) {
	for _, a := range rel.Assets {
		if a.Name == SourceAssetName {
			return a, nil
		}
	}
	return release.Asset{}, &LookupError{Tag: rel.Tag, Asset: SourceAssetName}
}

// GitHub downloads release assets through the GitHub REST API.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string

	// storage follows the redirect to the asset's storage host. It carries
	// no credentials.
	storage *http.Client

	tempDir string
}

// Options configure NewGitHub.
type Options struct {
	// Repository is "owner/name".
	Repository string
	// Token is optional; it is only sent to the API host.
	Token string
	// APIURL overrides the API base URL (GitHub Enterprise, tests).
	APIURL  string
	TempDir string
	Timeout time.Duration
}

func NewGitHub(opts Options) (*GitHub, error) {
	owner, repo, ok := strings.Cut(opts.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q (want owner/name)", opts.Repository)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}

	client := github.NewClient(&http.Client{Timeout: opts.Timeout})
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.APIURL != "" {
		u, err := url.Parse(strings.TrimSuffix(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github api url: %w", err)
		}
		client.BaseURL = u
	}

	return &GitHub{
		client:  client,
		owner:   owner,
		repo:    repo,
		storage: &http.Client{Timeout: opts.Timeout},
		tempDir: opts.TempDir,
	}, nil
}

// TempPath is where the archive for tag is downloaded.
func (g *GitHub) TempPath(tag string) string {
	return filepath.Join(g.tempDir, "release", tag, "source.tar.xz")
}

// Fetch downloads rel's source tarball to a temporary file and returns its
// path. The caller owns the file and removes it.
func (g *GitHub) Fetch(ctx context.Context, rel release.Release) (string, error) {
	asset, err := SourceAsset(rel)
	if err != nil {
		return "", err
	}

	dst := g.TempPath(rel.Tag)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	slog.Info("downloading source tarball", "tag", rel.Tag, "asset_id", asset.ID, "url", asset.URL)
	rc, _, err := g.client.Repositories.DownloadReleaseAsset(ctx, g.owner, g.repo, asset.ID, g.storage)
	if err != nil {
		return "", &NetworkError{Tag: rel.Tag, AssetID: asset.ID, Err: err}
	}
	defer rc.Close()

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	n, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", &NetworkError{Tag: rel.Tag, AssetID: asset.ID, Err: err}
	}
	slog.Info("downloaded source tarball", "tag", rel.Tag, "bytes", n, "path", dst)
	return dst, nil
}
