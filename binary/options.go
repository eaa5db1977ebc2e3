package binary

import (
	"net/http"

	"github.com/aexvir/setup-roc/action"
)

type Option func(i *Installer)

// WithBinaryName changes the name of the executable looked up inside the
// archive root folder; "roc" by default.
func WithBinaryName(name string) Option {
	return func(i *Installer) {
		i.binary = name
	}
}

// WithTempDir sets the directory under which archives are downloaded and
// extracted. By default RUNNER_TEMP is used when set, the os temp dir otherwise.
func WithTempDir(dir string) Option {
	return func(i *Installer) {
		i.tempdir = dir
	}
}

// WithToken authenticates download requests.
// The credential is only sent to the host of the asset url; the http client
// drops it when following redirects to other hosts.
func WithToken(token string) Option {
	return func(i *Installer) {
		i.token = token
	}
}

// WithHTTPClient replaces the client used for downloads; nil is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Installer) {
		if client != nil {
			i.client = client
		}
	}
}

// WithLogger sets where progress messages are written; nil is ignored.
func WithLogger(log action.Logger) Option {
	return func(i *Installer) {
		if log != nil {
			i.log = log
		}
	}
}
