package binary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aexvir/setup-roc/action"
	"github.com/aexvir/setup-roc/failure"
	"github.com/aexvir/setup-roc/release"
)

type entry struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	linkname string
}

func tarball(t *testing.T, compress bool, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	var sink = &buf
	var gz *gzip.Writer
	tw := tar.NewWriter(sink)
	if compress {
		gz = gzip.NewWriter(sink)
		tw = tar.NewWriter(gz)
	}

	for _, e := range entries {
		header := &tar.Header{
			Name:     e.name,
			Mode:     e.mode,
			Size:     int64(len(e.body)),
			Typeflag: e.typeflag,
			Linkname: e.linkname,
		}
		if header.Typeflag == 0 {
			header.Typeflag = tar.TypeReg
		}
		if header.Typeflag != tar.TypeReg {
			header.Size = 0
		}
		if header.Mode == 0 {
			header.Mode = 0o644
		}

		require.NoError(t, tw.WriteHeader(header))
		if header.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	if gz != nil {
		require.NoError(t, gz.Close())
	}

	return buf.Bytes()
}

func rocArchive(t *testing.T, compress bool) []byte {
	return tarball(
		t, compress,
		entry{name: "roc_nightly-linux_x86_64-2024-01-02/", typeflag: tar.TypeDir, mode: 0o755},
		entry{name: "roc_nightly-linux_x86_64-2024-01-02/roc", body: "#!/bin/sh\necho roc\n"},
		entry{name: "roc_nightly-linux_x86_64-2024-01-02/LICENSE", body: "UPL"},
		entry{name: "roc_nightly-linux_x86_64-2024-01-02/examples/hello.roc", body: "app"},
	)
}

// serve returns a server answering every request with payload, and a channel
// receiving the Authorization header of each request.
func serve(t *testing.T, payload []byte) (*httptest.Server, <-chan string) {
	t.Helper()

	auth := make(chan string, 16)
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				auth <- r.Header.Get("Authorization")
				w.Write(payload)
			},
		),
	)
	t.Cleanup(server.Close)
	return server, auth
}

func asset(server *httptest.Server) release.Asset {
	return release.Asset{
		Name:        "roc_nightly-linux_x86_64-2024-01-02.tar.gz",
		DownloadURL: server.URL + "/roc.tar.gz",
		UpdatedAt:   "2024-01-02T00:00:00Z",
	}
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("archives ship a unix binary")
	}
}

func TestInstaller_Install(t *testing.T) {
	skipOnWindows(t)

	for name, compress := range map[string]bool{"tar.gz": true, "tar": false} {
		t.Run(name, func(t *testing.T) {
			server, auth := serve(t, rocArchive(t, compress))
			tmpdir := t.TempDir()

			installer := NewInstaller(WithTempDir(tmpdir), WithToken("secret"))

			installation, err := installer.Install(context.Background(), asset(server))
			require.NoError(t, err)

			assert.Equal(t, "token secret", <-auth)
			assert.True(t, filepath.IsAbs(installation.Binary))
			assert.Equal(t, filepath.Join(installation.Dir, "roc"), installation.Binary)
			assert.Equal(t, "roc_nightly-linux_x86_64-2024-01-02", filepath.Base(installation.Dir))
			assert.True(t, strings.HasPrefix(installation.Dir, tmpdir))

			content, err := os.ReadFile(installation.Binary)
			require.NoError(t, err)
			assert.Equal(t, "#!/bin/sh\necho roc\n", string(content))

			info, err := os.Stat(installation.Binary)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

			assert.FileExists(t, filepath.Join(installation.Dir, "examples", "hello.roc"))

			// the downloaded archive is cleaned up after extraction
			leftovers, err := filepath.Glob(filepath.Join(tmpdir, "*.download"))
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestInstaller_InstallWithoutToken(t *testing.T) {
	skipOnWindows(t)

	server, auth := serve(t, rocArchive(t, true))

	_, err := NewInstaller(WithTempDir(t.TempDir())).Install(context.Background(), asset(server))
	require.NoError(t, err)

	assert.Empty(t, <-auth)
}

func TestInstaller_InstallLogs(t *testing.T) {
	skipOnWindows(t)

	color.NoColor = true
	server, _ := serve(t, rocArchive(t, true))

	var out bytes.Buffer
	installer := NewInstaller(
		WithTempDir(t.TempDir()),
		WithLogger(action.NewConsole(&out)),
	)

	_, err := installer.Install(context.Background(), asset(server))
	require.NoError(t, err)

	logs := out.String()
	assert.Contains(t, logs, "Downloading asset from '"+server.URL+"/roc.tar.gz'.")
	assert.Contains(t, logs, "Extracting archive at '")
	assert.Contains(t, logs, "The Roc binary was downloaded to '")
	assert.Equal(t, 2, strings.Count(logs, "✔"))
}

func TestInstaller_CustomBinaryName(t *testing.T) {
	skipOnWindows(t)

	server, _ := serve(t, tarball(t, true, entry{name: "dist/roc-nightly", body: "bin", mode: 0o755}))

	installation, err := NewInstaller(
		WithTempDir(t.TempDir()),
		WithBinaryName("roc-nightly"),
	).Install(context.Background(), asset(server))
	require.NoError(t, err)

	assert.Equal(t, "roc-nightly", filepath.Base(installation.Binary))
}

func TestInstaller_InstallHardLinkedBinary(t *testing.T) {
	skipOnWindows(t)

	server, _ := serve(t, tarball(
		t, true,
		entry{name: "roc_nightly/", typeflag: tar.TypeDir, mode: 0o755},
		entry{name: "roc_nightly/bin/roc", body: "#!/bin/sh\n", mode: 0o755},
		entry{name: "roc_nightly/roc", typeflag: tar.TypeLink, linkname: "roc_nightly/bin/roc"},
		entry{name: "roc_nightly/lib", typeflag: tar.TypeSymlink, linkname: "bin"},
	))

	installation, err := NewInstaller(WithTempDir(t.TempDir())).Install(context.Background(), asset(server))
	require.NoError(t, err)

	content, err := os.ReadFile(installation.Binary)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(content))
	assert.FileExists(t, filepath.Join(installation.Dir, "lib", "roc"))
}

func TestInstaller_NilOptionsKeepDefaults(t *testing.T) {
	skipOnWindows(t)

	server, _ := serve(t, rocArchive(t, true))

	installer := NewInstaller(
		WithTempDir(t.TempDir()),
		WithHTTPClient(nil),
		WithLogger(nil),
	)

	assert.NotPanics(t, func() {
		_, err := installer.Install(context.Background(), asset(server))
		assert.NoError(t, err)
	})
}

func TestInstaller_InstallFailures(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name    string
		payload []byte
		status  int
		kind    failure.Kind
		message string
	}{
		{
			name:    "http error",
			status:  http.StatusNotFound,
			kind:    failure.Download,
			message: "unexpected response: http404",
		},
		{
			name:    "not an archive",
			payload: []byte(strings.Repeat("definitely not a tarball ", 64)),
			kind:    failure.Extraction,
		},
		{
			name:    "empty download",
			payload: []byte{},
			kind:    failure.Extraction,
			message: "archive is empty",
		},
		{
			name:    "path traversal",
			payload: tarball(t, true, entry{name: "../escape", body: "x"}),
			kind:    failure.Extraction,
			message: "illegal file path",
		},
		{
			name:    "symlink out of the archive",
			payload: tarball(t, true, entry{name: "roc/roc", typeflag: tar.TypeSymlink, linkname: "/usr/bin/env"}),
			kind:    failure.Extraction,
			message: "illegal link target",
		},
		{
			name: "symlink chain out of the archive",
			payload: tarball(
				t, true,
				entry{name: "a", typeflag: tar.TypeSymlink, linkname: "."},
				entry{name: "a/b", typeflag: tar.TypeSymlink, linkname: ".."},
				entry{name: "b/pwned", body: "x"},
			),
			kind:    failure.Extraction,
			message: "illegal link target",
		},
		{
			name: "file through an escaping symlink folder",
			payload: tarball(
				t, true,
				entry{name: "up", typeflag: tar.TypeSymlink, linkname: "../x"},
				entry{name: "up/pwned", body: "x"},
			),
			kind:    failure.Extraction,
			message: "illegal link target",
		},
		{
			name:    "hard link out of the archive",
			payload: tarball(t, true, entry{name: "roc/roc", typeflag: tar.TypeLink, linkname: "../../etc/passwd"}),
			kind:    failure.Extraction,
			message: "illegal link target",
		},
		{
			name:    "device entry",
			payload: tarball(t, true, entry{name: "roc/null", typeflag: tar.TypeChar}),
			kind:    failure.Extraction,
			message: "unsupported entry type",
		},
		{
			name:    "empty archive",
			payload: tarball(t, true),
			kind:    failure.BinaryNotFound,
			message: "empty",
		},
		{
			name:    "file at the root",
			payload: tarball(t, true, entry{name: "roc", body: "bin"}),
			kind:    failure.BinaryNotFound,
			message: "found the file 'roc'",
		},
		{
			name:    "binary missing from root folder",
			payload: tarball(t, true, entry{name: "roc_nightly/README.md", body: "readme"}),
			kind:    failure.BinaryNotFound,
			message: "The Roc binary was not found at '",
		},
		{
			name: "binary is a folder",
			payload: tarball(
				t, true,
				entry{name: "roc_nightly/roc/", typeflag: tar.TypeDir, mode: 0o755},
			),
			kind: failure.BinaryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						if tt.status != 0 {
							w.WriteHeader(tt.status)
							return
						}
						w.Write(tt.payload)
					},
				),
			)
			defer server.Close()

			tmpdir := t.TempDir()
			_, err := NewInstaller(WithTempDir(tmpdir)).Install(context.Background(), asset(server))
			require.Error(t, err)

			assert.Equal(t, tt.kind, failure.KindOf(err), err.Error())
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
			assert.NoFileExists(t, filepath.Join(tmpdir, "pwned"))
			assert.NoFileExists(t, filepath.Join(tmpdir, "x", "pwned"))
		})
	}
}

func TestInstaller_InstallUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewInstaller(WithTempDir(t.TempDir())).Install(
		context.Background(),
		release.Asset{DownloadURL: url + "/roc.tar.gz"},
	)
	require.Error(t, err)

	assert.ErrorIs(t, err, failure.Download)
}

func TestProgress(t *testing.T) {
	t.Run("returns wrapped reader and finish function", func(t *testing.T) {
		content := []byte("test content")

		wrapped, finish := progress(bytes.NewReader(content), int64(len(content)))

		require.NotNil(t, wrapped)
		require.NotNil(t, finish)

		buf := make([]byte, len(content))
		n, err := wrapped.Read(buf)
		assert.NoError(t, err)
		assert.Equal(t, len(content), n)
		assert.Equal(t, content, buf)

		assert.NotPanics(t, func() {
			finish()
		})
	})
}
