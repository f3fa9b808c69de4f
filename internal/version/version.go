// Package version holds the DuelScope build version, set with
//
//	go build -ldflags "-X github.com/ramonehamilton/duelscope/internal/version.Version=v1.2.3"
package version

// Version defaults to "dev" for untagged builds.
var Version = "dev"

// GetVersion returns the build version.
func GetVersion() string {
	return Version
}
