// Package release knows about published roc releases: it fetches the release
// catalog from GitHub and picks the asset a run should install.
package release

// Release is one published, tagged version of roc.
type Release struct {
	// Tag is the release tag, matched exactly against the requested version.
	Tag string
	// Assets are the downloadable files attached to the release, in catalog order.
	Assets []Asset
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string
	DownloadURL string
	// UpdatedAt is an RFC 3339 UTC timestamp; timestamps compare correctly as strings.
	UpdatedAt string
}

// Target is the asset chosen for this run, together with its release.
type Target struct {
	Release Release
	Asset   Asset
}
