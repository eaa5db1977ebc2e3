package action

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Input names, as declared in action.yml.
const (
	InputToken       = "token"
	InputVersion     = "roc-version"
	InputVersionFile = "roc-version-file"
	InputAPIURL      = "github-api-url"
)

// Output names, as declared in action.yml.
const (
	OutputVersion = "roc-version"
	OutputPath    = "roc-path"
)

const defaultAPIURL = "https://api.github.com/"

// Inputs holds the configuration of one run.
type Inputs struct {
	// Token authenticates against the GitHub API and asset downloads; optional.
	Token string
	// Version is the release tag to install.
	Version string
	// VersionFile points to a file whose contents are the release tag.
	VersionFile string
	// APIURL is the GitHub REST API root.
	APIURL string
}

// LoadInputs reads the inputs from command-line args and from the runner's
// INPUT_<NAME> environment variables, flags taking precedence.
// Values are trimmed of surrounding whitespace, as the runner does.
func LoadInputs(args []string) (Inputs, error) {
	flags := pflag.NewFlagSet("setup-roc", pflag.ContinueOnError)
	flags.String(InputToken, "", "token used to query the GitHub API and download assets")
	flags.String(InputVersion, "", "roc release tag to install")
	flags.String(InputVersionFile, "", "file containing the roc release tag to install")
	flags.String(InputAPIURL, defaultAPIURL, "GitHub REST API root")

	if err := flags.Parse(args); err != nil {
		return Inputs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	cfg := viper.New()
	cfg.SetEnvPrefix("INPUT")
	cfg.AutomaticEnv()
	cfg.SetDefault(InputAPIURL, defaultAPIURL)

	if err := cfg.BindPFlags(flags); err != nil {
		return Inputs{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	inputs := Inputs{
		Token:       strings.TrimSpace(cfg.GetString(InputToken)),
		Version:     strings.TrimSpace(cfg.GetString(InputVersion)),
		VersionFile: strings.TrimSpace(cfg.GetString(InputVersionFile)),
		APIURL:      strings.TrimSpace(cfg.GetString(InputAPIURL)),
	}
	if inputs.APIURL == "" {
		inputs.APIURL = defaultAPIURL
	}

	return inputs, nil
}
