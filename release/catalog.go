package release

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v52/github"
	"golang.org/x/oauth2"

	"github.com/aexvir/setup-roc/action"
	"github.com/aexvir/setup-roc/failure"
)

const (
	// RocOwner and RocRepo locate the canonical roc repository.
	RocOwner = "roc-lang"
	RocRepo  = "roc"

	// perPage is the page size of the single list call; older releases are not fetched.
	perPage = 100
)

// Config locates the repository a catalog reads releases from.
type Config struct {
	Owner string
	Repo  string
	// Token is optional; anonymous access is rate limited by GitHub.
	Token string
	// BaseURL is the REST API root; empty means https://api.github.com/.
	BaseURL string
	// HTTPClient is the transport used for API calls; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// RocConfig returns the configuration pointing at the roc repository.
func RocConfig(token, baseURL string) Config {
	return Config{
		Owner:   RocOwner,
		Repo:    RocRepo,
		Token:   token,
		BaseURL: baseURL,
	}
}

// Catalog lists the releases of one repository.
type Catalog struct {
	client *github.Client
	owner  string
	repo   string
	log    action.Logger
}

// NewCatalog builds a catalog client for cfg.
func NewCatalog(ctx context.Context, cfg Config, log action.Logger) (*Catalog, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("repository owner and name must be set")
	}
	if log == nil {
		log = action.Discard
	}

	httpclient := cfg.HTTPClient
	if cfg.Token != "" {
		if httpclient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpclient)
		}
		httpclient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}

	client := github.NewClient(httpclient)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}

		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid api url %s: %w", cfg.BaseURL, err)
		}
		client.BaseURL = parsed
	}

	return &Catalog{
		client: client,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		log:    log,
	}, nil
}

// Releases fetches the releases of the repository with a single list call.
// An empty catalog is not an error.
func (c *Catalog) Releases(ctx context.Context) ([]Release, error) {
	raw, _, err := c.client.Repositories.ListReleases(
		ctx, c.owner, c.repo,
		&github.ListOptions{PerPage: perPage},
	)
	if err != nil {
		return nil, failure.Wrap(failure.CatalogFetch, err, "failed to list releases of %s/%s", c.owner, c.repo)
	}

	releases := make([]Release, 0, len(raw))
	for _, rel := range raw {
		if rel == nil {
			continue
		}
		releases = append(releases, normalize(rel))
	}

	c.log.Info(fmt.Sprintf("Found %d releases.", len(releases)))
	return releases, nil
}

// normalize converts the api representation into a Release.
func normalize(rel *github.RepositoryRelease) Release {
	assets := make([]Asset, 0, len(rel.Assets))
	for _, asset := range rel.Assets {
		if asset == nil {
			continue
		}

		var updated string
		if ts := asset.GetUpdatedAt(); !ts.IsZero() {
			updated = ts.UTC().Format(time.RFC3339)
		}

		assets = append(assets, Asset{
			Name:        asset.GetName(),
			DownloadURL: asset.GetBrowserDownloadURL(),
			UpdatedAt:   updated,
		})
	}

	return Release{
		Tag:    rel.GetTagName(),
		Assets: assets,
	}
}
