// Package grace decides which prior stable releases stay advertised as
// fallback targets while a newer release is still rolling out.
package grace

import (
	"time"

	"wz-channels/internal/release"
)

// Policy is one grace window. Release and storefront channels each hold their
// own Policy value.
type Policy struct {
	Days int

	// Now defaults to time.Now when nil.
	Now func() time.Time
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

// Within reports whether ts is no more than Days whole days old.
func (p Policy) Within(ts time.Time) bool {
	elapsedDays := int(p.now().Sub(ts) / (24 * time.Hour))
	return elapsedDays <= p.Days
}

// EligiblePrior returns the prior stable releases (newest-first) that remain
// eligible while latest is fresh. Once latest is older than the window nothing
// is returned. While it is fresh and none of prior qualify on their own, the
// newest prior release is kept so clients always have a fallback.
//
// A malformed timestamp aborts the whole step with a *release.DateParseError.
func (p Policy) EligiblePrior(prior []release.Release, latest release.Release) ([]release.Release, error) {
	latestAt, err := latest.Published()
	if err != nil {
		return nil, err
	}
	if !p.Within(latestAt) {
		return nil, nil
	}

	var out []release.Release
	for _, r := range prior {
		at, err := r.Published()
		if err != nil {
			return nil, err
		}
		if p.Within(at) {
			out = append(out, r)
		}
	}
	if len(out) == 0 && len(prior) > 0 {
		out = append(out, prior[0])
	}
	return out, nil
}
