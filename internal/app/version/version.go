package version

// Overridden at build time via -ldflags. Keep these lower-case so ldflags can
// set them without exporting internals.
var (
	buildVersion = "dev"
	builtAt      = "unknown"
)

type Info struct {
	BuildVersion string
	BuiltAt      string
}

func Get() Info {
	return Info{
		BuildVersion: buildVersion,
		BuiltAt:      builtAt,
	}
}

// String renders the build for `ipcatalog --version`.
func (i Info) String() string {
	if i.BuiltAt == "" || i.BuiltAt == "unknown" {
		return i.BuildVersion
	}
	return i.BuildVersion + " (built " + i.BuiltAt + ")"
}
