// Package failure defines the kinds of terminal errors a setup run can end with.
//
// Every stage returns a [*Error] carrying one [Kind]; callers match on the kind
// with [errors.Is] (e.g. errors.Is(err, failure.ReleaseNotFound)) or [KindOf]
// instead of inspecting message text.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	Unknown Kind = iota
	Configuration
	UnsupportedPlatform
	CatalogFetch
	ReleaseNotFound
	NoAssets
	NoMatchingAsset
	Download
	Extraction
	BinaryNotFound
)

var kindnames = map[Kind]string{
	Unknown:             "unknown",
	Configuration:       "configuration",
	UnsupportedPlatform: "unsupported platform",
	CatalogFetch:        "catalog fetch",
	ReleaseNotFound:     "release not found",
	NoAssets:            "no assets",
	NoMatchingAsset:     "no matching asset",
	Download:            "download",
	Extraction:          "extraction",
	BinaryNotFound:      "binary not found",
}

func (k Kind) String() string {
	if name, ok := kindnames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error implements the error interface so a bare Kind can be used as an
// [errors.Is] target.
func (k Kind) Error() string {
	return k.String()
}

// Error is a classified failure. Its message is what gets reported to the user.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Kind.String()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same kind of failure.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return t != nil && e.Kind == t.Kind
	}
	return false
}

// New returns a failure of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of the given kind that keeps err as its cause.
// The message is "<formatted message>: <cause>".
func Wrap(kind Kind, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err)
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first failure in err's chain, or Unknown.
func KindOf(err error) Kind {
	var ferr *Error
	if errors.As(err, &ferr) {
		return ferr.Kind
	}
	return Unknown
}
