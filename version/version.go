// Package version decides which roc release tag a run installs.
package version

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aexvir/setup-roc/action"
	"github.com/aexvir/setup-roc/failure"
)

// Source is the pair of mutually exclusive inputs a version can come from.
type Source struct {
	// Version is an explicit release tag.
	Version string
	// File is the path of a file holding the release tag.
	File string
}

// Resolve returns the release tag to install.
//
// An explicit version always wins; if a file was given as well, a warning is
// logged and the file is not read. A version file is used as is, its contents
// are not trimmed.
func Resolve(src Source, log action.Logger) (string, error) {
	if log == nil {
		log = action.Discard
	}

	switch {
	case src.Version != "" && src.File != "":
		log.Warning(
			fmt.Sprintf(
				"Both '%s' and '%s' inputs were specified, only '%s' will be used.",
				action.InputVersion, action.InputVersionFile, action.InputVersion,
			),
		)
		log.Info(fmt.Sprintf("Using version '%s' from '%s'.", src.Version, action.InputVersion))
		return src.Version, nil

	case src.Version != "":
		log.Info(fmt.Sprintf("Using version '%s' from '%s'.", src.Version, action.InputVersion))
		return src.Version, nil

	case src.File != "":
		data, err := os.ReadFile(src.File)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", failure.New(
					failure.Configuration,
					"The specified Roc version file at: '%s' doesn't exist.", src.File,
				)
			}
			return "", failure.Wrap(failure.Configuration, err, "failed to read version file '%s'", src.File)
		}

		version := string(data)
		log.Info(fmt.Sprintf("Using version '%s' from file '%s'.", version, src.File))
		return version, nil

	default:
		return "", failure.New(
			failure.Configuration,
			"Neither '%s' or '%s' inputs were specified.", action.InputVersion, action.InputVersionFile,
		)
	}
}
