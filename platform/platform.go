// Package platform maps the host operating system and cpu architecture to the
// token roc uses in its release asset names.
package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/aexvir/setup-roc/action"
	"github.com/aexvir/setup-roc/failure"
)

// Tag identifies a supported (os, architecture) pair, e.g. "linux_x86_64".
// Release assets are matched by containing the tag in their name.
type Tag string

const (
	LinuxX8664        Tag = "linux_x86_64"
	LinuxARM64        Tag = "linux_arm64"
	MacOSX8664        Tag = "macos_x86_64"
	MacOSAppleSilicon Tag = "macos_apple_silicon"
)

func (t Tag) String() string {
	return string(t)
}

type pair struct {
	os   string
	arch string
}

// tags lists every supported combination; anything else is unsupported.
var tags = map[pair]Tag{
	{"linux", "amd64"}:  LinuxX8664,
	{"linux", "arm64"}:  LinuxARM64,
	{"darwin", "amd64"}: MacOSX8664,
	{"darwin", "arm64"}: MacOSAppleSilicon,
}

// Identify returns the tag for the given os and architecture.
// Both GOOS/GOARCH values and the common uname style aliases are accepted.
func Identify(goos, goarch string) (Tag, error) {
	tag, ok := tags[pair{normalizeOS(goos), normalizeArch(goarch)}]
	if !ok {
		return "", failure.New(
			failure.UnsupportedPlatform,
			"Unsupported combination of platform '%s' and architecture '%s'.", goos, goarch,
		)
	}
	return tag, nil
}

// Detect identifies the tag of the running host.
// The os and architecture are the ones this binary was built for; the host
// details reported by gopsutil are logged, with a warning on an architecture
// mismatch.
func Detect(ctx context.Context, log action.Logger) (Tag, error) {
	if log == nil {
		log = action.Discard
	}

	tag, err := Identify(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		reportHost(log, info, runtime.GOARCH, tag)
	}

	log.Info(fmt.Sprintf("Using platform and architecture '%s'.", tag))
	return tag, nil
}

// reportHost logs the distribution details of the host and warns when its
// kernel runs a different architecture than the one this binary targets, as
// happens under emulation. The tag is left unchanged.
func reportHost(log action.Logger, info *host.InfoStat, goarch string, tag Tag) {
	if info == nil {
		return
	}

	if info.Platform != "" {
		log.Info(
			fmt.Sprintf(
				"Detected %s %s (%s family, kernel arch %s).",
				info.Platform, info.PlatformVersion, info.PlatformFamily, info.KernelArch,
			),
		)
	}

	if info.KernelArch != "" && normalizeArch(info.KernelArch) != normalizeArch(goarch) {
		log.Warning(
			fmt.Sprintf(
				"The host kernel reports architecture '%s' but this build targets '%s', installing the '%s' asset.",
				info.KernelArch, goarch, tag,
			),
		)
	}
}

func normalizeOS(goos string) string {
	switch os := strings.ToLower(strings.TrimSpace(goos)); os {
	case "macos", "darwin":
		return "darwin"
	default:
		return os
	}
}

func normalizeArch(goarch string) string {
	switch arch := strings.ToLower(strings.TrimSpace(goarch)); arch {
	case "amd64", "x86_64", "x64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	default:
		return arch
	}
}
