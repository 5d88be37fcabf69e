package lifecycle

// AppType classifies an application's runtime profile. SYSTEM apps never
// get a VPU (spec §4.5).
type AppType string

const (
	AppTypeSystem      AppType = "SYSTEM"
	AppTypeInteractive AppType = "INTERACTIVE"
)

// RuntimeConfig is the package-supplied portion of the container-spec
// builder's input -- the contract with the PackageCollaborator (spec §3).
// Fields this core doesn't understand are still round-tripped into the
// builder untouched via the Extra map.
type RuntimeConfig struct {
	AppType AppType
	Command string

	AppPath         string
	RuntimePath     string
	UnpackedDataPath string

	SystemMemoryLimitKB int
	WaylandSocketPath   string

	EnvVariables []string

	WANLANAccess bool
	IPCBusAccess bool
	DIAL         bool

	FKPSFiles      []string
	FireboltVersion string
	Rialto          bool

	UID int
	GID int

	Extra map[string]string
}
