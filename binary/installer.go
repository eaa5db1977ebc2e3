package binary

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aexvir/setup-roc/action"
	"github.com/aexvir/setup-roc/failure"
	"github.com/aexvir/setup-roc/release"
)

// DefaultBinaryName is the executable shipped in roc release archives.
const DefaultBinaryName = "roc"

// Installation is the outcome of installing an asset.
type Installation struct {
	// Dir is the folder holding the extracted distribution, binary included.
	Dir string
	// Binary is the absolute path of the executable.
	Binary string
}

// Installer downloads, extracts and locates release binaries.
type Installer struct {
	binary  string
	tempdir string
	token   string
	client  *http.Client
	log     action.Logger
}

func NewInstaller(options ...Option) *Installer {
	inst := Installer{
		binary:  DefaultBinaryName,
		tempdir: os.Getenv("RUNNER_TEMP"),
		client:  http.DefaultClient,
		log:     action.Discard,
	}

	for _, opt := range options {
		opt(&inst)
	}

	if inst.tempdir == "" {
		inst.tempdir = os.TempDir()
	}

	return &inst
}

// Install downloads the asset, extracts it and returns where the binary is.
// Temporary files of a failed run are left behind.
func (i *Installer) Install(ctx context.Context, asset release.Asset) (Installation, error) {
	if err := os.MkdirAll(i.tempdir, 0o755); err != nil {
		return Installation{}, failure.Wrap(failure.Download, err, "failed to create temporary folder %s", i.tempdir)
	}

	archive, err := i.download(ctx, asset.DownloadURL)
	if err != nil {
		return Installation{}, err
	}

	destination, err := os.MkdirTemp(i.tempdir, "roc-")
	if err != nil {
		return Installation{}, failure.Wrap(failure.Extraction, err, "failed to create extraction folder")
	}

	if err := i.extract(archive, destination); err != nil {
		return Installation{}, err
	}

	return i.locate(destination)
}

// download fetches url into a new temporary file and returns its path.
func (i *Installer) download(ctx context.Context, url string) (path string, err error) {
	i.log.Info(fmt.Sprintf("Downloading asset from '%s'.", url))

	start := time.Now()
	defer func() { i.elapsed(start, err) }()

	file, err := os.CreateTemp(i.tempdir, "roc-*.download")
	if err != nil {
		return "", failure.Wrap(failure.Download, err, "failed to create download file")
	}
	defer file.Close()

	if err := fetch(ctx, i.client, url, i.token, file); err != nil {
		return "", failure.Wrap(failure.Download, err, "failed to download %s", url)
	}

	if err := file.Close(); err != nil {
		return "", failure.Wrap(failure.Download, err, "failed to write %s", file.Name())
	}

	return file.Name(), nil
}

// extract unpacks the archive into destination and removes the archive.
func (i *Installer) extract(archive, destination string) (err error) {
	i.log.Info(fmt.Sprintf("Extracting archive at '%s'.", archive))

	start := time.Now()
	defer func() { i.elapsed(start, err) }()

	if err := extract(archive, destination); err != nil {
		return failure.Wrap(failure.Extraction, err, "failed to extract %s", archive)
	}

	return nil
}

// locate finds the binary inside the single root folder of the extracted archive.
func (i *Installer) locate(destination string) (Installation, error) {
	entries, err := os.ReadDir(destination)
	if err != nil {
		return Installation{}, failure.Wrap(failure.Extraction, err, "failed to read %s", destination)
	}
	if len(entries) == 0 {
		return Installation{}, failure.New(failure.BinaryNotFound, "The downloaded archive is empty.")
	}

	root := entries[0]
	if !root.IsDir() {
		return Installation{}, failure.New(
			failure.BinaryNotFound,
			"Expected a single folder at the root of the archive, found the file '%s'.", root.Name(),
		)
	}

	dir, err := filepath.Abs(filepath.Join(destination, root.Name()))
	if err != nil {
		return Installation{}, failure.Wrap(failure.BinaryNotFound, err, "failed to resolve %s", root.Name())
	}
	bin := filepath.Join(dir, i.binary)

	info, err := os.Stat(bin)
	if err != nil || !info.Mode().IsRegular() {
		return Installation{}, failure.New(failure.BinaryNotFound, "The Roc binary was not found at '%s'.", bin)
	}

	if err := setExecutable(bin); err != nil {
		return Installation{}, failure.Wrap(failure.BinaryNotFound, err, "failed to make %s executable", bin)
	}

	i.log.Info(fmt.Sprintf("The Roc binary was downloaded to '%s'.", bin))
	return Installation{Dir: dir, Binary: bin}, nil
}

// elapsed reports how long a step took when the logger can show it.
func (i *Installer) elapsed(start time.Time, err error) {
	if timer, ok := i.log.(interface{ Elapsed(time.Time, error) }); ok {
		timer.Elapsed(start, err)
	}
}

func setExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.Chmod(path, info.Mode().Perm()|0o111)
}
