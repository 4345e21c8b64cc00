package release

// Partition is the history split around the latest stable release.
// Both slices are newest-first.
type Partition struct {
	PriorStable      []Release
	PriorPrereleases []Release
}

// LatestPrerelease returns the newest prerelease newer than latest, if any.
func (p Partition) LatestPrerelease() (Release, bool) {
	if len(p.PriorPrereleases) == 0 {
		return Release{}, false
	}
	return p.PriorPrereleases[0], true
}

// Split partitions history (newest-first) around latest. When latest.ID does
// not occur in history both results are empty.
func Split(history []Release, latest Release) Partition {
	if !contains(history, latest.ID) {
		return Partition{}
	}
	return Partition{
		PriorStable:      PriorStable(history, latest),
		PriorPrereleases: PriorPrereleases(history, latest),
	}
}

// PriorPrereleases collects the non-draft prereleases that precede both
// latest and the first stable release in history.
func PriorPrereleases(history []Release, latest Release) []Release {
	if !contains(history, latest.ID) {
		return nil
	}
	var out []Release
	for _, r := range history {
		if r.ID == latest.ID {
			break
		}
		if r.Draft {
			continue
		}
		if !r.Prerelease {
			break
		}
		out = append(out, r)
	}
	return out
}

// PriorStable collects every stable release older than latest.
func PriorStable(history []Release, latest Release) []Release {
	var out []Release
	found := false
	for _, r := range history {
		if r.ID == latest.ID {
			found = true
			continue
		}
		if !found || !r.Stable() {
			continue
		}
		out = append(out, r)
	}
	return out
}

func contains(history []Release, id int64) bool {
	for _, r := range history {
		if r.ID == id {
			return true
		}
	}
	return false
}
