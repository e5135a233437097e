package client

// Version is a REST API version path segment.
type Version string

// Known REST API versions. VersionLatest lets the switch pick its newest.
const (
	VersionV1     Version = "v1"
	VersionV10_04 Version = "v10.04"
	VersionV10_08 Version = "v10.08"
	VersionV10_09 Version = "v10.09"
	VersionV10_10 Version = "v10.10"
	VersionLatest Version = "latest"
)

// DefaultVersion is used when no version is configured.
const DefaultVersion = VersionV1

// Versions lists every known version.
var Versions = []Version{VersionV1, VersionV10_04, VersionV10_08, VersionV10_09, VersionV10_10, VersionLatest}

// Known reports whether v is one of Versions.
func (v Version) Known() bool {
	for _, k := range Versions {
		if v == k {
			return true
		}
	}
	return false
}
