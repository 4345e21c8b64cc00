package grace

import (
	"errors"
	"testing"
	"time"

	"wz-channels/internal/release"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func fixed() time.Time { return now }

func at(d time.Duration) string { return now.Add(-d).Format(release.TimestampLayout) }

func TestEligiblePrior_ForcesNewestFallback(t *testing.T) {
	p := Policy{Days: 2, Now: fixed}
	latest := release.Release{Tag: "4.4.0", PublishedAt: at(0)}
	prior := []release.Release{
		{Tag: "4.3.0", PublishedAt: at(90 * 24 * time.Hour)},
		{Tag: "4.2.0", PublishedAt: at(200 * 24 * time.Hour)},
	}
	got, err := p.EligiblePrior(prior, latest)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(got) != 1 || got[0].Tag != "4.3.0" {
		t.Fatalf("got=%v", got)
	}
}

func TestEligiblePrior_FiltersByWindow(t *testing.T) {
	p := Policy{Days: 2, Now: fixed}
	latest := release.Release{Tag: "4.4.1", PublishedAt: at(time.Hour)}
	prior := []release.Release{
		{Tag: "4.4.0", PublishedAt: at(36 * time.Hour)},
		{Tag: "4.3.5", PublishedAt: at(60 * time.Hour)},
		{Tag: "4.3.0", PublishedAt: at(80 * time.Hour)},
	}
	got, err := p.EligiblePrior(prior, latest)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	// 60h is 2 whole days, 80h is 3.
	if len(got) != 2 || got[0].Tag != "4.4.0" || got[1].Tag != "4.3.5" {
		t.Fatalf("got=%v", got)
	}
}

func TestEligiblePrior_EstablishedLatest(t *testing.T) {
	p := Policy{Days: 2, Now: fixed}
	latest := release.Release{Tag: "4.4.0", PublishedAt: at(3 * 24 * time.Hour)}
	prior := []release.Release{{Tag: "4.3.0", PublishedAt: at(3 * 24 * time.Hour)}}
	got, err := p.EligiblePrior(prior, latest)
	if err != nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v", got, err)
	}
}

func TestEligiblePrior_NoPrior(t *testing.T) {
	p := Policy{Days: 2, Now: fixed}
	got, err := p.EligiblePrior(nil, release.Release{PublishedAt: at(0)})
	if err != nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v", got, err)
	}
}

func TestEligiblePrior_IndependentWindows(t *testing.T) {
	latest := release.Release{Tag: "4.4.0", PublishedAt: at(4 * 24 * time.Hour)}
	prior := []release.Release{{Tag: "4.3.0", PublishedAt: at(5 * 24 * time.Hour)}}

	lobby := Policy{Days: 2, Now: fixed}
	store := Policy{Days: 7, Now: fixed}

	got, _ := lobby.EligiblePrior(prior, latest)
	if len(got) != 0 {
		t.Fatalf("lobby got=%v", got)
	}
	got, _ = store.EligiblePrior(prior, latest)
	if len(got) != 1 {
		t.Fatalf("store got=%v", got)
	}
}

func TestEligiblePrior_MalformedDate(t *testing.T) {
	p := Policy{Days: 2, Now: fixed}
	latest := release.Release{Tag: "4.4.0", PublishedAt: at(0)}
	prior := []release.Release{{Tag: "4.3.0", PublishedAt: "not-a-date"}}

	_, err := p.EligiblePrior(prior, latest)
	var de *release.DateParseError
	if !errors.As(err, &de) || de.Tag != "4.3.0" {
		t.Fatalf("err=%v", err)
	}
}
