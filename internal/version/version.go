// Package version holds the server version string.
package version

import "strings"

// Version is the current released version.
var Version = "0.3.1"

// DevVersion is the development version.
var DevVersion = "0.3.2"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

// GetMinorVersion returns the minor version, e.g. "0.3" for "0.3.1".
func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 3 {
		return version
	}
	return versionList[0] + "." + versionList[1]
}
