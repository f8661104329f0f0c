// Package version exposes build metadata stamped in via -ldflags.
package version

// Build-time variables. Override via -ldflags.
var (
	Version   = "1.0.0"
	Commit    = "dev"
	BuildDate = "dev"
)

// Info describes build/version metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Get returns version info with empty fields filled from defaults.
func Get() Info {
	return Info{
		Version:   defaultOr(Version, "1.0.0"),
		Commit:    defaultOr(Commit, "dev"),
		BuildDate: defaultOr(BuildDate, "dev"),
	}
}

func defaultOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
