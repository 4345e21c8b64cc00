package channels

import (
	"context"

	"wz-channels/internal/condition"
	"wz-channels/internal/release"
)

// Channel names.
const (
	ChannelPrerelease  = "prerelease"
	ChannelRelease     = "release"
	ChannelStore       = "release_ms_store"
	ChannelDevelopment = "development"
)

const (
	notifyPrerelease = "prerelease_update"
	notifyRelease    = "release_update"
	notifyDev        = "dev_update"
)

// Updates builds the updates document. On partial failure the document holds
// the channels that built and the error lists the rest; a missing input
// field returns a nil document.
func (c *Compiler) Updates(_ context.Context, in Input) (*UpdatesDocument, error) {
	part := release.Split(in.History, in.Latest)

	var b builder[UpdateChannel]
	b = b.add(c, ChannelPrerelease, func() (UpdateChannel, bool, error) { return c.prereleaseChannel(part) })
	b = b.add(c, ChannelStore, func() (UpdateChannel, bool, error) { return c.storeChannel(in, part) })
	b = b.add(c, ChannelRelease, func() (UpdateChannel, bool, error) { return c.releaseChannel(in) })
	b = b.add(c, ChannelDevelopment, func() (UpdateChannel, bool, error) { return c.developmentChannel(in.Dev) })

	chs, err := b.result()
	if b.terminal != nil {
		return nil, err
	}
	return &UpdatesDocument{ValidThru: c.validThru(), Channels: nonNil(chs)}, err
}

func (c *Compiler) platformMatch() condition.Expr {
	if len(c.settings.Platforms) == 0 {
		return ""
	}
	return condition.OneOf(condition.Platform, c.settings.Platforms)
}

// prereleaseChannel targets builds of any prerelease newer than the latest
// stable release and offers them the newest prerelease.
func (c *Compiler) prereleaseChannel(part release.Partition) (UpdateChannel, bool, error) {
	latestPre, ok := part.LatestPrerelease()
	if !ok {
		return UpdateChannel{}, false, nil
	}
	if latestPre.HTMLURL == "" {
		return UpdateChannel{}, false, &release.MissingFieldError{Document: release.DocReleaseList, Field: "html_url", Tag: latestPre.Tag}
	}

	tags := make([]condition.Expr, 0, len(part.PriorPrereleases))
	for _, r := range part.PriorPrereleases {
		tags = append(tags, condition.Exact(condition.GitTag, r.Tag))
	}
	return UpdateChannel{
		Name:      ChannelPrerelease,
		Condition: condition.Or(tags...),
		Releases: []UpdateEntry{{
			BuildPropertyMatch: condition.And(condition.Not(condition.Exact(condition.GitTag, latestPre.Tag)), c.platformMatch()),
			Version:            latestPre.Tag,
			PublishedAt:        latestPre.PublishedAt,
			Notification:       Notification{Base: notifyPrerelease, ID: latestPre.Tag},
			UpdateLink:         latestPre.HTMLURL,
		}},
	}, true, nil
}

func (c *Compiler) releaseChannel(in Input) (UpdateChannel, bool, error) {
	latest := in.Latest
	return UpdateChannel{
		Name:      ChannelRelease,
		Condition: condition.Present(condition.GitTag),
		Releases: []UpdateEntry{{
			BuildPropertyMatch: condition.And(condition.Not(condition.Exact(condition.GitTag, latest.Tag)), c.platformMatch()),
			Version:            latest.Tag,
			PublishedAt:        latest.PublishedAt,
			Notification:       Notification{Base: notifyRelease, ID: latest.Tag},
			UpdateLink:         c.settings.Links.ReleaseUpdate,
		}},
	}, true, nil
}

func (c *Compiler) storeCondition() condition.Expr {
	return condition.And(
		condition.Match(condition.WinPackageFullName, c.settings.StorePackagePattern),
		condition.Present(condition.GitTag),
	)
}

// storeChannel offers the latest release to storefront builds, except builds
// of a prior release still inside the store grace window: storefront
// certification lags the release host.
func (c *Compiler) storeChannel(in Input, part release.Partition) (UpdateChannel, bool, error) {
	latest := in.Latest
	exclude := []condition.Expr{condition.Not(condition.Exact(condition.GitTag, latest.Tag))}
	for _, r := range c.eligiblePrior(ChannelStore, c.settings.StoreGrace, in, part) {
		exclude = append(exclude, condition.Not(condition.Exact(condition.GitTag, r.Tag)))
	}
	return UpdateChannel{
		Name:      ChannelStore,
		Condition: c.storeCondition(),
		Releases: []UpdateEntry{{
			BuildPropertyMatch: condition.And(exclude...),
			Version:            latest.Tag,
			PublishedAt:        latest.PublishedAt,
			Notification:       Notification{Base: notifyRelease, ID: latest.Tag},
			UpdateLink:         c.settings.Links.StoreUpdate,
		}},
	}, true, nil
}

func (c *Compiler) devVersion(dev release.DevCommit) string {
	return c.settings.DevBranch + "_" + dev.ShortSHA()
}

// developmentChannel targets untagged builds of the development branch
// published by the official distributor.
func (c *Compiler) developmentChannel(dev release.DevCommit) (UpdateChannel, bool, error) {
	version := c.devVersion(dev)
	return UpdateChannel{
		Name: ChannelDevelopment,
		Condition: condition.And(
			condition.Exact(condition.GitBranch, c.settings.DevBranch),
			condition.Not(condition.Present(condition.GitTag)),
			condition.Exact(condition.Distributor, c.settings.Distributor),
		),
		Releases: []UpdateEntry{{
			BuildPropertyMatch: condition.Not(condition.Exact(condition.GitFullHash, dev.SHA)),
			Version:            version,
			PublishedAt:        dev.CommittedAt,
			Notification:       Notification{Base: notifyDev, ID: version},
			UpdateLink:         c.settings.Links.DevUpdate,
		}},
	}, true, nil
}

func nonNil[C any](s []C) []C {
	if s == nil {
		return []C{}
	}
	return s
}
