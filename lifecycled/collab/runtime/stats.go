package runtime

import (
	"fmt"

	cgroups "github.com/containerd/cgroups"
)

// StatsReader reads the cgroup that the runtime collaborator placed a
// given app instance into. Nothing in this repository constructs one:
// GetLoadedApps' verbose runtimeStats field comes from the runtime
// adapter's GetInfo instead. It is grounded on the teacher's go.mod
// dependency on containerd/cgroups, present there because the gVisor shim
// reads cgroup accounting for its own containers.
type StatsReader struct {
	cgroupRoot string
}

// NewStatsReader builds a reader rooted at cgroupRoot, the directory the
// runtime collaborator is configured to create per-instance cgroups
// under.
func NewStatsReader(cgroupRoot string) *StatsReader {
	return &StatsReader{cgroupRoot: cgroupRoot}
}

// Stats renders a short human-readable summary of instanceId's cgroup
// memory and CPU accounting.
func (r *StatsReader) Stats(instanceId string) (string, error) {
	path := r.cgroupRoot + "/" + instanceId

	control, err := cgroups.Load(cgroups.V1, cgroups.StaticPath(path))
	if err != nil {
		return "", fmt.Errorf("loading cgroup for %s: %w", instanceId, err)
	}

	metrics, err := control.Stat()
	if err != nil {
		return "", fmt.Errorf("reading cgroup stats for %s: %w", instanceId, err)
	}

	var memUsage, cpuUsage uint64
	if metrics.Memory != nil && metrics.Memory.Usage != nil {
		memUsage = metrics.Memory.Usage.Usage
	}
	if metrics.CPU != nil && metrics.CPU.Usage != nil {
		cpuUsage = metrics.CPU.Usage.Total
	}

	return fmt.Sprintf("memUsageBytes=%d cpuUsageNanos=%d", memUsage, cpuUsage), nil
}
