package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wz-channels/internal/grace"
	"wz-channels/internal/journal"
	"wz-channels/internal/motd"
	"wz-channels/internal/netcode"
	"wz-channels/internal/release"
)

// ValidThruLayout renders validThru with an explicit +00:00 offset.
const ValidThruLayout = "2006-01-02T15:04:05-07:00"

// VersionResolver returns the protocol version a release was built with.
type VersionResolver interface {
	GetOrExtract(ctx context.Context, rel release.Release) (netcode.ProtocolVersion, error)
}

type Links struct {
	ReleaseUpdate string
	StoreUpdate   string
	DevUpdate     string
	CompatInfo    string
	Site          string
}

type Settings struct {
	// ReleaseGrace bounds which prior stable releases stay in the lobby's
	// netcode matrix.
	ReleaseGrace grace.Policy
	// StoreGrace bounds which prior stable releases storefront builds are
	// not told to update from.
	StoreGrace grace.Policy

	DevBuilds   int
	DevBranch   string
	Distributor string

	StorePackagePattern string
	Platforms           []string

	LegacyMajor string
	DevMajor    string

	// UnsupportedNote is appended to the lobby's last-hosted-game banner.
	UnsupportedNote string

	ValidFor time.Duration
	Links    Links
}

// Input is one resolution run's view of the release host.
type Input struct {
	Latest  release.Release
	History []release.Release
	Dev     release.DevCommit
}

type Compiler struct {
	settings Settings
	versions VersionResolver
	motd     *motd.Renderer
	journal  *journal.Journal
	now      func() time.Time
}

type Option func(*Compiler)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) { c.now = now }
}

func WithJournal(j *journal.Journal) Option {
	return func(c *Compiler) { c.journal = j }
}

func NewCompiler(s Settings, versions VersionResolver, r *motd.Renderer, opts ...Option) *Compiler {
	c := &Compiler{
		settings: s,
		versions: versions,
		motd:     r,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.settings.ReleaseGrace.Now == nil {
		c.settings.ReleaseGrace.Now = c.now
	}
	if c.settings.StoreGrace.Now == nil {
		c.settings.StoreGrace.Now = c.now
	}
	return c
}

func (c *Compiler) validThru() string {
	return c.now().UTC().Add(c.settings.ValidFor).Truncate(time.Second).Format(ValidThruLayout)
}

// eligiblePrior applies p to the stable releases older than latest. A
// malformed timestamp only drops the extra releases: it is logged and nil is
// returned.
func (c *Compiler) eligiblePrior(channel string, p grace.Policy, in Input, part release.Partition) []release.Release {
	out, err := p.EligiblePrior(part.PriorStable, in.Latest)
	if err != nil {
		var de *release.DateParseError
		if !errors.As(err, &de) {
			slog.Error("grace window failed", "channel", channel, "err", err)
			return nil
		}
		slog.Warn("skipping prior stable releases: bad publish date", "channel", channel, "tag", de.Tag, "err", err)
		c.journal.Log(journal.Record{Type: journal.TypeChannelError, Channel: channel, Tag: de.Tag, Message: err.Error()})
		return nil
	}
	return out
}

// builder accumulates the channels of one document. Each step returns a new
// builder; failed channels are recorded instead of aborting.
type builder[C any] struct {
	channels []C
	errs     []error
	terminal error
}

type step[C any] func() (ch C, ok bool, err error)

func (b builder[C]) add(c *Compiler, name string, fn step[C]) builder[C] {
	if b.terminal != nil {
		return b
	}
	ch, ok, err := fn()
	if err != nil {
		var mf *release.MissingFieldError
		if errors.As(err, &mf) {
			b.terminal = err
			return b
		}
		slog.Error("channel failed", "channel", name, "err", err)
		c.journal.Log(journal.Record{Type: journal.TypeChannelError, Channel: name, Message: err.Error()})
		b.errs = append(b.errs, &ChannelError{Channel: name, Err: err})
		return b
	}
	if ok {
		b.channels = append(b.channels, ch)
	}
	return b
}

func (b builder[C]) result() ([]C, error) {
	if b.terminal != nil {
		return nil, b.terminal
	}
	return b.channels, errors.Join(b.errs...)
}

// ChannelError is one channel (or lobby netcode entry) that could not be built.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string { return fmt.Sprintf("channel %s: %v", e.Channel, e.Err) }

func (e *ChannelError) Unwrap() error { return e.Err }
