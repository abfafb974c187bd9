package config

import "fmt"

// ModuleName is the canonical import path of this module.
const ModuleName = "github/chapool/go-near"

// Build arguments, injected via -ldflags at build time.
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns "<module> @ <commit> (<build date>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
