// Package version pins the CLI version stamped into builds and shown by
// --version.
package version

const Version = "0.3.0"

// FullVersion returns the version with the v prefix used in release tags.
func FullVersion() string {
	return "v" + Version
}
