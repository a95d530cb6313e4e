package meridian

const (
	Version   = "0.1.0"
	BuildDate = "2026-07-30"
	GoVersion = "1.24.0"
)

// GetVersion returns library version info.
func GetVersion() map[string]string {
	return map[string]string{
		"version":    Version,
		"build_date": BuildDate,
		"go_version": GoVersion,
		"library":    "meridian",
	}
}
