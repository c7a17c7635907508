package version

// Build metadata, overridden with -ldflags "-X kiosk/version.Version=x.y.z" etc.
var (
	Version    = "0.3.0"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// ShortCommit returns the first 7 characters of the commit hash, or "" when unknown.
func ShortCommit() string {
	if CommitHash == "" || CommitHash == "unknown" {
		return ""
	}
	if len(CommitHash) <= 7 {
		return CommitHash
	}
	return CommitHash[:7]
}

// GetFullVersion returns the version including the short commit hash when known.
func GetFullVersion() string {
	if c := ShortCommit(); c != "" {
		return Version + " (" + c + ")"
	}
	return Version
}

// GetBuildInfo returns multi-line build metadata for -version output.
func GetBuildInfo() string {
	return "Museo de Ciencias kiosk\nVersion: " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime
}
