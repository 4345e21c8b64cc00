package channels

import "wz-channels/internal/condition"

type Notification struct {
	Base     string `json:"base"`
	ID       string `json:"id"`
	MinShown int    `json:"minShown,omitempty"`
}

// UpdateEntry offers Version to builds matching BuildPropertyMatch.
type UpdateEntry struct {
	BuildPropertyMatch condition.Expr `json:"buildPropertyMatch"`
	Version            string         `json:"version"`
	PublishedAt        string         `json:"published_at"`
	Notification       Notification   `json:"notification"`
	UpdateLink         string         `json:"updateLink"`
}

// UpdateChannel applies to builds matching Condition.
type UpdateChannel struct {
	Name      string         `json:"channel"`
	Condition condition.Expr `json:"channelConditional"`
	Releases  []UpdateEntry  `json:"releases"`
}

type CompatNotice struct {
	PropertyMatch condition.Expr `json:"propertyMatch"`
	ID            string         `json:"id"`
	Notification  Notification   `json:"notification"`
	InfoLink      string         `json:"infoLink"`
}

type CompatChannel struct {
	Name          string         `json:"channel"`
	Condition     condition.Expr `json:"channelConditional"`
	CompatNotices []CompatNotice `json:"compatNotices"`
}

type UpdatesDocument struct {
	ValidThru string          `json:"validThru"`
	Channels  []UpdateChannel `json:"channels"`
}

type CompatDocument struct {
	ValidThru string          `json:"validThru"`
	Channels  []CompatChannel `json:"channels"`
}

type VersionProperty struct {
	VersionStringGlob string `json:"versionStringGlob"`
	MOTD              string `json:"motd"`
	Supported         bool   `json:"supported"`
}

type LobbyDocument struct {
	ValidThru              string            `json:"validThru"`
	ListMOTDDefault        string            `json:"listMOTD_Default"`
	ListMOTDLastHostedGame string            `json:"listMOTD_LastHostedGame"`
	UnsupportedHostMessage string            `json:"unsupportedHostMessage"`
	VersionProperties      []VersionProperty `json:"versionProperties"`
	SupportedNetcode       *Matrix           `json:"supportedNetcodeVerMajorMinor"`
}
