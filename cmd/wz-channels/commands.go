package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"wz-channels/internal/channels"
	"wz-channels/internal/config"
	"wz-channels/internal/fetch"
	"wz-channels/internal/grace"
	"wz-channels/internal/journal"
	"wz-channels/internal/motd"
	"wz-channels/internal/release"
	"wz-channels/internal/vercache"
)

type app struct {
	cfg     config.Config
	journal *journal.Journal
	now     func() time.Time

	// stdout receives documents when no output path is given.
	stdout io.Writer
}

// inputPaths holds the release host exports named on the command line.
type inputPaths struct {
	latest    string
	list      string
	devCommit string
	output    string
}

type need struct {
	list, dev bool
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "wz-channels",
		Short: "Resolve release channels and netcode compatibility documents",
		Long: "wz-channels reads the latest release, the release list and the latest\n" +
			"development commit, and writes the update, compatibility or lobby\n" +
			"document clients evaluate locally.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		a.documentCommand("updates", "Write the auto-update channels document", need{list: true, dev: true},
			func(cmd *cobra.Command, c *channels.Compiler, in channels.Input) (any, error) {
				doc, err := c.Updates(cmd.Context(), in)
				return nilIfEmpty(doc), err
			}),
		a.documentCommand("compat", "Write the compatibility notices document", need{},
			func(cmd *cobra.Command, c *channels.Compiler, in channels.Input) (any, error) {
				doc, err := c.Compat(cmd.Context(), in)
				return nilIfEmpty(doc), err
			}),
		a.documentCommand("lobby", "Write the lobby configuration document", need{list: true, dev: true},
			func(cmd *cobra.Command, c *channels.Compiler, in channels.Input) (any, error) {
				doc, err := c.Lobby(cmd.Context(), in)
				return nilIfEmpty(doc), err
			}),
	)
	return root
}

// nilIfEmpty turns a typed nil document into an untyped nil.
func nilIfEmpty[D any](doc *D) any {
	if doc == nil {
		return nil
	}
	return doc
}

type compileFunc func(cmd *cobra.Command, c *channels.Compiler, in channels.Input) (any, error)

func (a *app) documentCommand(name, short string, n need, compile compileFunc) *cobra.Command {
	var p inputPaths
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.journal.Log(journal.Record{Type: journal.TypeStartup, Channel: name, Path: p.output})
			in, err := loadInput(p, n)
			if err != nil {
				return err
			}
			c, err := a.compiler()
			if err != nil {
				return err
			}
			doc, cerr := compile(cmd, c, in)
			if doc == nil {
				// Terminal failure; nothing is written.
				return cerr
			}
			if err := a.write(p.output, doc); err != nil {
				return errors.Join(cerr, err)
			}
			a.journal.Log(journal.Record{Type: journal.TypeOutput, Channel: name, Path: p.output})
			slog.Info("document written", "document", name, "path", p.output, "partial", cerr != nil)
			return cerr
		},
	}

	cmd.Flags().StringVarP(&p.latest, "latestrelease", "r", "", "Path to the latest release JSON export")
	_ = cmd.MarkFlagRequired("latestrelease")
	if n.list {
		cmd.Flags().StringVarP(&p.list, "releaselist", "i", "", "Path to the release list JSON export")
		_ = cmd.MarkFlagRequired("releaselist")
	}
	if n.dev {
		cmd.Flags().StringVarP(&p.devCommit, "latestdevcommit", "d", "", "Path to the latest development commit JSON export")
		_ = cmd.MarkFlagRequired("latestdevcommit")
	}
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func loadInput(p inputPaths, n need) (channels.Input, error) {
	var in channels.Input
	var err error
	if in.Latest, err = release.LoadLatest(p.latest); err != nil {
		return channels.Input{}, err
	}
	if n.list {
		if in.History, err = release.LoadList(p.list); err != nil {
			return channels.Input{}, err
		}
	}
	if n.dev {
		if in.Dev, err = release.LoadDevCommit(p.devCommit); err != nil {
			return channels.Input{}, err
		}
	}
	return in, nil
}

func (a *app) compiler() (*channels.Compiler, error) {
	cfg := a.cfg
	renderer, err := motd.New()
	if err != nil {
		return nil, err
	}
	gh, err := fetch.NewGitHub(fetch.Options{
		Repository: cfg.GitHubRepository,
		Token:      cfg.GitHubToken,
		APIURL:     cfg.GitHubAPIURL,
		TempDir:    cfg.TempDir,
		Timeout:    cfg.DownloadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("github client: %w", err)
	}
	versions := vercache.New(vercache.NewStore(cfg.CacheDir), gh, a.journal)

	s := channels.Settings{
		ReleaseGrace:        grace.Policy{Days: cfg.ReleaseGraceDays},
		StoreGrace:          grace.Policy{Days: cfg.StoreGraceDays},
		DevBuilds:           cfg.DevSupportedBuilds,
		DevBranch:           cfg.DevBranch,
		Distributor:         cfg.Distributor,
		StorePackagePattern: cfg.StorePackagePattern,
		Platforms:           cfg.Platforms,
		LegacyMajor:         cfg.LegacyNetcodeMajor,
		DevMajor:            cfg.DevNetcodeMajor,
		UnsupportedNote:     cfg.UnsupportedNote,
		ValidFor:            cfg.ValidFor,
		Links: channels.Links{
			ReleaseUpdate: cfg.ReleaseUpdateLink,
			StoreUpdate:   cfg.StoreUpdateLink,
			DevUpdate:     cfg.DevUpdateLink,
			CompatInfo:    cfg.CompatInfoLink,
			Site:          cfg.SiteURL,
		},
	}
	return channels.NewCompiler(s, versions, renderer,
		channels.WithClock(a.now),
		channels.WithJournal(a.journal),
	), nil
}

func encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// write renders doc to path, replacing any previous file atomically. An
// empty path writes to stdout.
func (a *app) write(path string, doc any) error {
	b, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if path == "" {
		out := a.stdout
		if out == nil {
			out = os.Stdout
		}
		_, err := out.Write(b)
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
