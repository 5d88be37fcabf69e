// Package specbuilder implements the C8 container-spec builder: a pure
// function of (AppId, RuntimeConfig, DeviceDefaults) producing the JSON
// ContainerSpec handed to the runtime collaborator's Run method.
//
// Field names mirror the original generator's section-by-section
// breakdown (env vars, mounts, rdkPlugins, plugins), grounded on
// DobbySpecGenerator's createEnvVars/createMounts/createRdkPlugins
// split -- one Go method per JSON section rather than one large literal.
package specbuilder

import (
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// ContainerSpec is the normative wire document spec §4.5/§6 enumerates.
// Field names and nesting are load-bearing: the runtime collaborator on
// the other side of the wire parses this exact shape.
type ContainerSpec struct {
	Args       []string         `json:"args"`
	Cwd        string           `json:"cwd"`
	MemLimitKB int              `json:"memLimit"`
	GPU        *GPUSpec         `json:"gpu,omitempty"`
	VPU        VPUSpec          `json:"vpu"`
	DBus       *DBusSpec        `json:"dbus,omitempty"`
	CPU        CPUSpec          `json:"cpu"`
	Etc        EtcSpec          `json:"etc"`
	Network    string           `json:"network"`
	User       UserSpec         `json:"user"`
	Env        []string         `json:"env"`
	Mounts     []specs.Mount    `json:"mounts"`
	RDKPlugins map[string]any   `json:"rdkPlugins"`
	Plugins    []map[string]any `json:"plugins"`
}

type GPUSpec struct {
	Enable    bool `json:"enable"`
	MemLimitKB int `json:"memLimit"`
}

type VPUSpec struct {
	Enable bool `json:"enable"`
}

type DBusSpec struct {
	System string `json:"system"`
}

type CPUSpec struct {
	Cores string `json:"cores"`
}

type EtcSpec struct {
	Hosts     []string `json:"hosts"`
	Services  []string `json:"services"`
	LDPreload []string `json:"ld-preload"`
}

type UserSpec struct {
	UID int `json:"uid"`
	GID int `json:"gid"`
}
