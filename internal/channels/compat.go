package channels

import (
	"context"

	"wz-channels/internal/condition"
)

const (
	notifyCompat   = "compatNotice"
	compatMinShown = 10
)

// overlayNotice describes the legacy notice for builds running with a
// third-party overlay injected. It only targets installs whose first launch
// falls outside the window in which the affected builds were shipped.
var overlayNotice = struct {
	ID     string
	Module string

	// ExcludedFirstLaunch patterns mark the affected install window;
	// ReincludedFirstLaunch carve the unaffected part back out of it.
	ExcludedFirstLaunch   []string
	ReincludedFirstLaunch []string
}{
	ID:                    "compat-1",
	Module:                "gameoverlayrenderer64.dll",
	ExcludedFirstLaunch:   []string{"^2022-.+", "^2021-.+"},
	ReincludedFirstLaunch: []string{"^2022-1.+", "^2022-0[4-9].+", "^2022-03-[1-3].+"},
}

func (c *Compiler) overlayMatch(tagRule condition.Expr) condition.Expr {
	outside := make([]condition.Expr, 0, len(overlayNotice.ExcludedFirstLaunch))
	for _, p := range overlayNotice.ExcludedFirstLaunch {
		outside = append(outside, condition.Not(condition.Match(condition.FirstLaunch, p)))
	}
	window := []condition.Expr{condition.And(outside...)}
	for _, p := range overlayNotice.ReincludedFirstLaunch {
		window = append(window, condition.Match(condition.FirstLaunch, p))
	}
	return condition.And(
		tagRule,
		condition.Exact(condition.Distributor, c.settings.Distributor),
		condition.Match(condition.WinLoadedModules, `"`+overlayNotice.Module+`"`),
		condition.Or(window...),
	)
}

// Compat builds the compat document: a notice-free storefront channel, the
// overlay notice for the latest release, and the legacy catch-all whose
// notice id rotates daily so it is shown again.
func (c *Compiler) Compat(_ context.Context, in Input) (*CompatDocument, error) {
	latest := in.Latest

	var b builder[CompatChannel]
	b = b.add(c, ChannelStore, func() (CompatChannel, bool, error) {
		return CompatChannel{Name: ChannelStore, Condition: c.storeCondition(), CompatNotices: []CompatNotice{}}, true, nil
	})
	b = b.add(c, ChannelRelease, func() (CompatChannel, bool, error) {
		tag := condition.Exact(condition.GitTag, latest.Tag)
		return CompatChannel{
			Name:      ChannelRelease,
			Condition: tag,
			CompatNotices: []CompatNotice{{
				PropertyMatch: c.overlayMatch(tag),
				ID:            overlayNotice.ID,
				Notification:  Notification{Base: notifyCompat, ID: "steam-compat-" + latest.Tag, MinShown: compatMinShown},
				InfoLink:      c.settings.Links.CompatInfo,
			}},
		}, true, nil
	})
	b = b.add(c, ChannelRelease, func() (CompatChannel, bool, error) {
		anyTag := condition.Present(condition.GitTag)
		return CompatChannel{
			Name:      ChannelRelease,
			Condition: anyTag,
			CompatNotices: []CompatNotice{{
				PropertyMatch: c.overlayMatch(anyTag),
				ID:            overlayNotice.ID,
				Notification:  Notification{Base: notifyCompat, ID: "steam-compat-1-" + c.now().UTC().Format("2006-01-02"), MinShown: compatMinShown},
				InfoLink:      c.settings.Links.CompatInfo,
			}},
		}, true, nil
	})

	chs, err := b.result()
	if b.terminal != nil {
		return nil, err
	}
	return &CompatDocument{ValidThru: c.validThru(), Channels: nonNil(chs)}, err
}
