package specbuilder

import (
	"encoding/json"
	"fmt"
	"net/url"
	"runtime"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

// Builder holds the device-wide defaults a single process reuses across
// every Build call. It carries no per-app state: two calls with the same
// arguments produce byte-identical output (spec §4.5's "byte-stable"
// requirement), mirroring the reference generator's own statelessness
// once its device-wide fields (mIonMemoryPluginData, mPackageMountPoint,
// ...) are fixed at construction.
type Builder struct {
	defaults config.DeviceDefaults
}

// New constructs a Builder bound to the given device defaults.
func New(defaults config.DeviceDefaults) *Builder {
	return &Builder{defaults: defaults}
}

// Build renders appId's ContainerSpec from rc and the Builder's device
// defaults, and matches lifecycle.SpecBuilderFunc's signature so the
// Service composition root can pass Builder.Build directly into
// lifecycle.Collaborators.BuildSpec.
func (b *Builder) Build(appId lifecycle.AppId, rc lifecycle.RuntimeConfig) (json.RawMessage, error) {
	spec := ContainerSpec{
		Args:       []string{rc.RuntimePath + "/" + rc.Command},
		Cwd:        b.workingDir(rc),
		MemLimitKB: b.memLimit(rc),
		VPU:        VPUSpec{Enable: b.vpuEnabled(appId, rc)},
		CPU:        CPUSpec{Cores: b.cpuCores()},
		Etc:        b.etc(),
		Network:    b.network(rc),
		User:       UserSpec{UID: rc.UID, GID: rc.GID},
		Env:        b.env(appId, rc),
		Mounts:     b.mounts(rc),
		RDKPlugins: b.rdkPlugins(appId, rc),
		Plugins:    b.plugins(),
	}

	if rc.WaylandSocketPath != "" {
		spec.GPU = &GPUSpec{Enable: true, MemLimitKB: b.gpuMemLimit(rc)}
	}
	if b.inList(b.defaults.DBusAllowlist, appId) {
		spec.DBus = &DBusSpec{System: "system"}
	}

	out, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshaling container spec for %s: %w", appId, err)
	}
	return out, nil
}

func (b *Builder) workingDir(rc lifecycle.RuntimeConfig) string {
	return "/package"
}

func (b *Builder) memLimit(rc lifecycle.RuntimeConfig) int {
	if rc.SystemMemoryLimitKB > 0 {
		return rc.SystemMemoryLimitKB
	}
	return b.defaults.InteractiveMemoryLimitKB
}

func (b *Builder) gpuMemLimit(rc lifecycle.RuntimeConfig) int {
	return b.memLimit(rc)
}

func (b *Builder) vpuEnabled(appId lifecycle.AppId, rc lifecycle.RuntimeConfig) bool {
	if rc.AppType == lifecycle.AppTypeSystem {
		return false
	}
	return !b.inList(b.defaults.VPUBlacklist, appId)
}

// cpuCores intersects the device's enabled-cores bitmask with the number
// of cores actually online, clamping to the full set when the
// intersection would otherwise be empty (spec §4.5).
func (b *Builder) cpuCores() string {
	online := runtime.NumCPU()
	var enabled []int
	for i := 0; i < online; i++ {
		if b.defaults.CPUSetMask&(1<<uint(i)) != 0 {
			enabled = append(enabled, i)
		}
	}
	if len(enabled) == 0 {
		for i := 0; i < online; i++ {
			enabled = append(enabled, i)
		}
	}
	parts := make([]string, len(enabled))
	for i, core := range enabled {
		parts[i] = fmt.Sprintf("%d", core)
	}
	return strings.Join(parts, ",")
}

func (b *Builder) etc() EtcSpec {
	services := []string{"ftp", "domain", "http", "ntp", "https"}
	if b.defaults.MAPIEnabled {
		for _, port := range b.defaults.MAPIPorts {
			services = append(services, fmt.Sprintf("mapi-%d", port))
		}
	}
	return EtcSpec{
		Hosts:     []string{"127.0.0.1 localhost"},
		Services:  services,
		LDPreload: append([]string(nil), b.defaults.LDPreloadList...),
	}
}

func (b *Builder) network(rc lifecycle.RuntimeConfig) string {
	if rc.WANLANAccess {
		return "nat"
	}
	return "private"
}

// env composes the spec's env array in the order spec §4.5 lists:
// identity, caller-supplied vars, device-default vars, wayland block,
// resource-manager block, DIAL block, GStreamer registry block.
func (b *Builder) env(appId lifecycle.AppId, rc lifecycle.RuntimeConfig) []string {
	env := []string{fmt.Sprintf("APPLICATION_NAME=%s", appId)}
	env = append(env, rc.EnvVariables...)
	env = append(env, b.defaults.EnvVariables...)

	if rc.WaylandSocketPath != "" {
		env = append(env,
			"XDG_RUNTIME_DIR="+rc.WaylandSocketPath,
			"WAYLAND_DISPLAY=westeros",
			"WESTEROS_SINK_VIRTUAL_WIDTH=1920",
			"WESTEROS_SINK_VIRTUAL_HEIGHT=1080",
			"QT_WAYLAND_SHELL_INTEGRATION=wl-shell",
			"QT_WAYLAND_DISABLE_WINDOWDECORATION=1",
			"QT_WAYLAND_CLIENT_BUFFER_INTEGRATION=westeros-egl",
			"QT_QPA_PLATFORM=wayland",
		)
	}

	if b.defaults.ResourceManagerEnabled {
		env = append(env,
			fmt.Sprintf("ESSRMGR_APPID=%s", appId),
			fmt.Sprintf("CLIENT_IDENTIFIER=%s", appId),
			"WESTEROS_SINK_USE_ESSRMGR=1",
		)
	}

	if rc.DIAL {
		env = append(env,
			fmt.Sprintf("APPLICATION_DIAL_NAME=%s", appId),
			fmt.Sprintf("ADDITIONAL_DATA_URL=%s", url.QueryEscape(fmt.Sprintf("https://%s/dial-data", appId))),
			fmt.Sprintf("DIAL_USN=%s", appId),
		)
	}

	if b.defaults.GstRegistrySourcePath != "" {
		env = append(env,
			"GST_REGISTRY="+b.defaults.GstRegistryDestinationPath,
			"GST_REGISTRY_UPDATE=no",
		)
	}

	return env
}

// mounts composes the spec's mount list in the order spec §4.5 lists:
// package, runtime, certs, private data, FKPS files, vault tmpfs,
// resource-manager socket.
func (b *Builder) mounts(rc lifecycle.RuntimeConfig) []specs.Mount {
	mounts := []specs.Mount{
		{Destination: "/package", Source: rc.AppPath, Type: "bind", Options: []string{"ro", "bind"}},
		{Destination: "/runtime", Source: rc.RuntimePath, Type: "bind", Options: []string{"ro", "bind"}},
		{Destination: "/etc/ssl/certs", Source: "/etc/ssl/certs", Type: "bind", Options: []string{"ro", "bind"}},
	}

	if rc.UnpackedDataPath != "" {
		mounts = append(mounts, specs.Mount{
			Destination: "/home/private",
			Source:      rc.UnpackedDataPath,
			Type:        "loop",
			Options:     []string{"rw"},
		})
	}

	for _, f := range rc.FKPSFiles {
		mounts = append(mounts, specs.Mount{
			Destination: "/fkps/" + lastPathElement(f),
			Source:      f,
			Type:        "bind",
			Options:     []string{"ro", "bind", fmt.Sprintf("gid=%d", rc.GID)},
		})
	}

	mounts = append(mounts, specs.Mount{
		Destination: "/opt/drm/vault",
		Type:        "tmpfs",
		Options:     []string{"rw", "nosuid", "nodev"},
	})

	if b.defaults.ResourceManagerEnabled {
		mounts = append(mounts, specs.Mount{
			Destination: "/tmp/resourcemgr",
			Source:      "/tmp/resourcemgr",
			Type:        "bind",
			Options:     []string{"bind"},
		})
	}

	return mounts
}

func (b *Builder) rdkPlugins(appId lifecycle.AppId, rc lifecycle.RuntimeConfig) map[string]any {
	networkType := "none"
	if rc.WANLANAccess {
		networkType = "nat"
	}
	networking := map[string]any{
		"type": networkType,
		"ipv4": true,
	}
	if networkType == "nat" {
		networking["dnsmasq"] = true
	}

	ports := append([]int(nil), b.defaults.MAPIPorts...)
	if rc.DIAL {
		ports = append(ports, 0) // DIAL server port; collaborator assigns the real value.
	}

	plugins := map[string]any{
		"networking": networking,
		"ionmemory":  b.defaults.IonHeaps,
		"appservicesrdk": map[string]any{
			"appId": appId,
			"ports": ports,
		},
		"minidump": map[string]any{
			"destinationPath": b.minidumpPath(),
		},
	}

	if b.defaults.ThunderBearerURL != "" {
		plugins["thunder"] = map[string]any{"bearerUrl": b.defaults.ThunderBearerURL}
	}
	if b.inList(b.defaults.DRMAppAllowlist, appId) {
		plugins["opencdm"] = map[string]any{"enable": true}
	}

	return plugins
}

// minidumpPath chooses the dump destination the same way
// DobbySpecGenerator::createMinidumpPlugin does: accessing the disable
// flag file readably means secure dumps are turned off for this device,
// so the insecure path is used instead.
func (b *Builder) minidumpPath() string {
	if b.defaults.MinidumpSecurePath == "" {
		return b.defaults.MinidumpInsecurePath
	}
	if b.defaults.SecureDumpDisableFlagPath != "" && unix.Access(b.defaults.SecureDumpDisableFlagPath, unix.R_OK) == nil {
		return b.defaults.MinidumpInsecurePath
	}
	return b.defaults.MinidumpSecurePath
}

func (b *Builder) plugins() []map[string]any {
	return []map[string]any{
		{"name": "EthanLog", "logLevel": "info"},
	}
}

func (b *Builder) inList(list []string, appId lifecycle.AppId) bool {
	for _, id := range list {
		if id == string(appId) {
			return true
		}
	}
	return false
}

func lastPathElement(p string) string {
	parts := strings.Split(p, "/")
	return parts[len(parts)-1]
}
