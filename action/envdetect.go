package action

import "os"

// IsActionsEnv returns true when running as a GitHub Actions step.
func IsActionsEnv() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// IsCIEnv returns true if the current environment is a known ci system.
func IsCIEnv() bool {
	return os.Getenv("CI") != ""
}
