// Package setuproc installs a roc release on a GitHub Actions runner.
//
// A [Setup] runs the whole pipeline once: it decides which version to install,
// identifies the host platform, lists the published releases, picks the matching
// asset, installs it and publishes the results to the runner.
package setuproc

import (
	"context"
	"fmt"
	"time"

	"github.com/aexvir/setup-roc/action"
	"github.com/aexvir/setup-roc/binary"
	"github.com/aexvir/setup-roc/platform"
	"github.com/aexvir/setup-roc/release"
	"github.com/aexvir/setup-roc/version"
)

// Catalog lists published releases.
type Catalog interface {
	Releases(ctx context.Context) ([]release.Release, error)
}

// Installer puts the asset of a release on disk.
type Installer interface {
	Install(ctx context.Context, asset release.Asset) (binary.Installation, error)
}

// Host is the runner the results are published to.
type Host interface {
	action.Logger
	Step(text string)
	Error(msg string)
	Elapsed(start time.Time, err error)
	SetOutput(name, value string) error
	AddPath(dir string) error
}

// PlatformDetector identifies the platform tag of the running host.
type PlatformDetector func(ctx context.Context, log action.Logger) (platform.Tag, error)

// Setup sequences one installation.
type Setup struct {
	inputs action.Inputs
	host   Host

	catalog   Catalog
	installer Installer
	detect    PlatformDetector
}

// New constructs a setup for the given inputs.
// Unless overridden through options, releases are read from the roc
// repository and assets are installed under the runner temp directory.
func New(ctx context.Context, inputs action.Inputs, host Host, opts ...Option) (*Setup, error) {
	s := Setup{
		inputs: inputs,
		host:   host,
		detect: platform.Detect,
	}

	for _, opt := range opts {
		opt(&s)
	}

	if s.catalog == nil {
		catalog, err := release.NewCatalog(ctx, release.RocConfig(inputs.Token, inputs.APIURL), host)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize release catalog: %w", err)
		}
		s.catalog = catalog
	}

	if s.installer == nil {
		s.installer = binary.NewInstaller(
			binary.WithToken(inputs.Token),
			binary.WithLogger(host),
		)
	}

	return &s, nil
}

// Execute runs the pipeline. The first error stops the run and is reported
// to the runner as the failure reason before being returned; nothing is
// retried or rolled back.
func (s *Setup) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			s.host.Error(err.Error())
		}
		s.host.Elapsed(start, err)
	}()

	return s.run(ctx)
}

func (s *Setup) run(ctx context.Context) error {
	s.host.Step("resolving version")
	rocversion, err := version.Resolve(
		version.Source{Version: s.inputs.Version, File: s.inputs.VersionFile},
		s.host,
	)
	if err != nil {
		return err
	}
	if err := s.host.SetOutput(action.OutputVersion, rocversion); err != nil {
		return fmt.Errorf("failed to set output %s: %w", action.OutputVersion, err)
	}

	s.host.Step("identifying platform")
	tag, err := s.detect(ctx, s.host)
	if err != nil {
		return err
	}

	s.host.Step("fetching releases")
	releases, err := s.catalog.Releases(ctx)
	if err != nil {
		return err
	}

	s.host.Step("selecting asset")
	target, err := release.Resolve(releases, rocversion, tag, s.host)
	if err != nil {
		return err
	}

	s.host.Step(fmt.Sprintf("installing roc %s", target.Release.Tag))
	installation, err := s.installer.Install(ctx, target.Asset)
	if err != nil {
		return err
	}

	if err := s.host.SetOutput(action.OutputPath, installation.Binary); err != nil {
		return fmt.Errorf("failed to set output %s: %w", action.OutputPath, err)
	}

	s.host.Info(fmt.Sprintf("Adding '%s' to the PATH.", installation.Dir))
	if err := s.host.AddPath(installation.Dir); err != nil {
		return fmt.Errorf("failed to add %s to the PATH: %w", installation.Dir, err)
	}

	s.host.Info("Roc has been set up successfully.")
	return nil
}

type Option func(s *Setup)

// WithCatalog replaces the release catalog.
func WithCatalog(catalog Catalog) Option {
	return func(s *Setup) {
		s.catalog = catalog
	}
}

// WithInstaller replaces the asset installer.
func WithInstaller(installer Installer) Option {
	return func(s *Setup) {
		s.installer = installer
	}
}

// WithPlatformDetector replaces host platform detection.
func WithPlatformDetector(detect PlatformDetector) Option {
	return func(s *Setup) {
		s.detect = detect
	}
}
