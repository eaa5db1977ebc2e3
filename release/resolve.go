package release

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/aexvir/setup-roc/action"
	"github.com/aexvir/setup-roc/failure"
	"github.com/aexvir/setup-roc/platform"
)

// suggestions caps the number of tags listed when a version can't be found.
const suggestions = 5

// Resolve picks the asset to install out of the catalog.
//
// The release tag must equal version exactly. Among the assets of that release
// whose name contains the platform tag, the most recently updated one wins.
// Assets updated at exactly the same time keep their catalog order, so the first
// listed one is picked; the catalog order itself isn't guaranteed by GitHub,
// so callers must not rely on which of them gets chosen.
func Resolve(releases []Release, version string, tag platform.Tag, log action.Logger) (Target, error) {
	if log == nil {
		log = action.Discard
	}

	idx := slices.IndexFunc(releases, func(r Release) bool { return r.Tag == version })
	if idx < 0 {
		msg := fmt.Sprintf("A release with the tag '%s' could not be found.", version)
		if known := recentTags(releases); len(known) > 0 {
			msg += fmt.Sprintf(" Available tags include: %s.", strings.Join(known, ", "))
		}
		return Target{}, failure.New(failure.ReleaseNotFound, "%s", msg)
	}

	release := releases[idx]
	log.Info(fmt.Sprintf("Found a release with the tag '%s'.", release.Tag))

	if len(release.Assets) == 0 {
		return Target{}, failure.New(failure.NoAssets, "Release '%s' has no assets.", release.Tag)
	}

	var candidates []Asset
	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, tag.String()) {
			candidates = append(candidates, asset)
		}
	}
	if len(candidates) == 0 {
		return Target{}, failure.New(
			failure.NoMatchingAsset,
			"Release '%s' has no assets matching the platform and architecture '%s'.", release.Tag, tag,
		)
	}

	slices.SortStableFunc(candidates, func(a, b Asset) int {
		return strings.Compare(b.UpdatedAt, a.UpdatedAt)
	})

	asset := candidates[0]
	log.Info(fmt.Sprintf("Found the asset '%s'.", asset.Name))

	return Target{Release: release, Asset: asset}, nil
}

// recentTags returns a few tags to help spot a mistyped version: semver tags
// first, highest version first, then the remaining tags in catalog order.
func recentTags(releases []Release) []string {
	var versioned, others []string
	for _, release := range releases {
		if semver.IsValid(release.Tag) {
			versioned = append(versioned, release.Tag)
			continue
		}
		others = append(others, release.Tag)
	}

	semver.Sort(versioned)
	slices.Reverse(versioned)

	tags := append(versioned, others...)
	if len(tags) > suggestions {
		tags = tags[:suggestions]
	}
	return tags
}
