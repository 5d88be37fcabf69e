// Package config holds the process-wide configuration for lifecycled:
// flags common to every subcommand plus the device-specific defaults
// loaded from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is populated from command-line flags via NewFromFlags. Every
// field that should be settable on the command line carries a `flag`
// struct tag naming its flag.
type Config struct {
	RootDir      string `flag:"root"`
	LogLevel     string `flag:"log-level"`
	Debug        bool   `flag:"debug"`
	DeviceConfig string `flag:"device-config"`

	// GateDeadlineSeconds bounds every gate wait performed by a state
	// action (spec's recommended 30s baseline, configurable).
	GateDeadlineSeconds int `flag:"gate-deadline-seconds"`

	// WaitForAppReadyOnPause opts a device profile into waiting on the
	// app_ready gate when entering Paused, a behavior the reference
	// implementation leaves commented out.
	WaitForAppReadyOnPause bool `flag:"wait-for-app-ready-on-pause"`

	// RuntimeBusName, DisplayBusName, StorageBusName name the D-Bus
	// service each collaborator adapter dials.
	RuntimeBusName string `flag:"runtime-bus-name"`
	DisplayBusName string `flag:"display-bus-name"`
	StorageBusName string `flag:"storage-bus-name"`

	Defaults DeviceDefaults
}

// DeviceDefaults captures device-wide defaults that don't belong on the
// command line: they vary per hardware SKU and are shipped as a TOML
// file alongside the binary, mirroring how the teacher's Bundle
// mechanism layers named flag sets on top of command-line flags.
type DeviceDefaults struct {
	// SystemMemoryLimitKB is decoded but not read by the spec builder.
	SystemMemoryLimitKB int `toml:"system_memory_limit_kb"`
	// InteractiveMemoryLimitKB is the memory and GPU-memory limit for any
	// app, SYSTEM or INTERACTIVE, whose RuntimeConfig sets no limit.
	InteractiveMemoryLimitKB int `toml:"interactive_memory_limit_kb"`
	// DefaultWaylandSocketPath is decoded but not read by the spec
	// builder: an empty RuntimeConfig.WaylandSocketPath leaves the GPU
	// block and wayland env lines out.
	DefaultWaylandSocketPath string `toml:"default_wayland_socket_path"`
	// RuntimeRoot is the directory under which per-instance container
	// state and unpacked-data paths are rooted.
	RuntimeRoot string `toml:"runtime_root"`
	// DefaultFireboltVersion is decoded but not read by the spec builder.
	DefaultFireboltVersion string `toml:"default_firebolt_version"`

	// VPUBlacklist lists app ids that never get a VPU regardless of type.
	VPUBlacklist []string `toml:"vpu_blacklist"`
	// DBusAllowlist lists app ids granted a system D-Bus block.
	DBusAllowlist []string `toml:"dbus_allowlist"`
	// CPUSetMask is the device's enabled-cores bitmask (bit i => core i
	// eligible), intersected at build time with the online CPU count.
	CPUSetMask uint64 `toml:"cpu_set_mask"`
	// LDPreloadList is emitted verbatim as etc.ld-preload.
	LDPreloadList []string `toml:"ld_preload_list"`
	// MAPIEnabled and MAPIPorts feed etc.services and the appservicesrdk
	// plugin's port list.
	MAPIEnabled bool  `toml:"mapi_enabled"`
	MAPIPorts   []int `toml:"mapi_ports"`
	// EnvVariables are appended to every generated spec's env block.
	EnvVariables []string `toml:"env_variables"`
	// ResourceManagerEnabled gates the ESSRMGR env lines and bind mount.
	ResourceManagerEnabled bool `toml:"resource_manager_enabled"`
	// GstRegistrySourcePath, non-empty, gates the GStreamer registry env
	// lines, which point GST_REGISTRY at GstRegistryDestinationPath. No
	// mount is generated for the registry file.
	GstRegistrySourcePath      string `toml:"gst_registry_source_path"`
	GstRegistryDestinationPath string `toml:"gst_registry_destination_path"`
	// IonHeaps feeds the ionmemory plugin's device-default heap list.
	IonHeaps map[string]int `toml:"ion_heaps"`
	// MinidumpSecurePath and MinidumpInsecurePath are chosen between by a
	// filesystem probe at build time: SecureDumpDisableFlagPath readable
	// means secure dumps are disabled, so the insecure path is used.
	MinidumpSecurePath        string `toml:"minidump_secure_path"`
	MinidumpInsecurePath      string `toml:"minidump_insecure_path"`
	SecureDumpDisableFlagPath string `toml:"secure_dump_disable_flag_path"`
	// DRMAppAllowlist lists app ids that need the opencdm plugin.
	DRMAppAllowlist []string `toml:"drm_app_allowlist"`
	// ThunderBearerURL, non-empty, is emitted on the thunder plugin.
	ThunderBearerURL string `toml:"thunder_bearer_url"`
}

// LoadDeviceDefaults reads a TOML device-defaults file. A missing path is
// not an error: callers get the zero-value DeviceDefaults and device
// integrators are expected to supply one in production.
func LoadDeviceDefaults(path string) (DeviceDefaults, error) {
	if path == "" {
		return DeviceDefaults{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DeviceDefaults{}, nil
	}
	var d DeviceDefaults
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return DeviceDefaults{}, fmt.Errorf("decoding device defaults from %q: %w", path, err)
	}
	return d, nil
}
