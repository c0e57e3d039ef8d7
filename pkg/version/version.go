// Package version holds the release identity of the csstree binary.
package version

import "runtime/debug"

// Version is the csstree release. Overridden at link time with
// -ldflags "-X github.com/Sumatoshi-tech/csstree/pkg/version.Version=...".
var Version = "0.1.0"

// GitHash is the commit the binary was built from.
var GitHash = "<unknown>"

// String returns "version (hash)". The hash falls back to the VCS
// revision recorded by the Go toolchain.
func String() string {
	hash := GitHash

	if hash == "<unknown>" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && setting.Value != "" {
					hash = setting.Value

					break
				}
			}
		}
	}

	return Version + " (" + hash + ")"
}
