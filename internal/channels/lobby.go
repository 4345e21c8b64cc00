package channels

import (
	"context"
	"errors"
	"log/slog"

	"wz-channels/internal/journal"
	"wz-channels/internal/motd"
	"wz-channels/internal/release"
)

// Lobby builds the lobby document. Releases whose netcode version cannot be
// resolved are left out of the matrix and reported in the returned error;
// the rest of the document, including the development window, is still built.
func (c *Compiler) Lobby(ctx context.Context, in Input) (*LobbyDocument, error) {
	part := release.Split(in.History, in.Latest)
	data := motd.Data{
		LatestTag:       in.Latest.Tag,
		SiteURL:         c.settings.Links.Site,
		UnsupportedNote: c.settings.UnsupportedNote,
	}

	doc := &LobbyDocument{ValidThru: c.validThru()}
	var err error
	render := func(name string) string {
		s, rerr := c.motd.Render(name, data)
		err = errors.Join(err, rerr)
		return s
	}
	doc.ListMOTDDefault = render(motd.Default)
	doc.ListMOTDLastHostedGame = render(motd.LastHostedGame)
	doc.UnsupportedHostMessage = render(motd.UnsupportedHost)

	if pre, ok := part.LatestPrerelease(); ok {
		doc.VersionProperties = append(doc.VersionProperties, VersionProperty{
			VersionStringGlob: pre.Tag, MOTD: render(motd.WelcomePrerelease), Supported: true,
		})
	}
	doc.VersionProperties = append(doc.VersionProperties,
		VersionProperty{VersionStringGlob: in.Latest.Tag, MOTD: render(motd.WelcomeRelease), Supported: true},
		VersionProperty{VersionStringGlob: c.settings.DevBranch + " *", MOTD: render(motd.WelcomeDevelopment), Supported: true},
		VersionProperty{VersionStringGlob: "*", MOTD: render(motd.UpgradeRequired), Supported: false},
	)
	if err != nil {
		return nil, err
	}

	m, merr := c.netcodeMatrix(ctx, in, part)
	doc.SupportedNetcode = m
	return doc, merr
}

// netcodeMatrix lists the legacy custom-build major, the development window,
// and the versions of every advertised release: eligible prior stable
// releases, the latest release and the newest prerelease.
func (c *Compiler) netcodeMatrix(ctx context.Context, in Input, part release.Partition) (*Matrix, error) {
	m := NewMatrix()
	m.AddMajor(c.settings.LegacyMajor)
	m.Set(c.settings.DevMajor, DevWindow(in.Dev.CommitCount, c.settings.DevBuilds))

	advertised := c.eligiblePrior("lobby", c.settings.ReleaseGrace, in, part)
	advertised = append(advertised, in.Latest)
	if pre, ok := part.LatestPrerelease(); ok {
		advertised = append(advertised, pre)
	}

	var errs []error
	for _, rel := range advertised {
		v, err := c.versions.GetOrExtract(ctx, rel)
		if err != nil {
			slog.Error("netcode version unavailable", "tag", rel.Tag, "err", err)
			c.journal.Log(journal.Record{Type: journal.TypeChannelError, Channel: "lobby", Tag: rel.Tag, Message: err.Error()})
			errs = append(errs, &ChannelError{Channel: "netcode:" + rel.Tag, Err: err})
			continue
		}
		m.Add(v.Major, v.Minor)
	}
	return m, errors.Join(errs...)
}
