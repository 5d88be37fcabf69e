package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
)

// Spawn implements subcommands.Command for the "spawn" command: spec §6's
// SpawnApp.
type Spawn struct {
	appType             string
	command             string
	appPath             string
	runtimePath         string
	unpackedDataPath    string
	waylandSocketPath   string
	systemMemoryLimitKB int
	wanLanAccess        bool
	dial                bool
	uid                 int
	gid                 int
	fireboltVersion     string
	intent              string
	targetState         string
	launchArgs          string
}

func (*Spawn) Name() string     { return "spawn" }
func (*Spawn) Synopsis() string { return "load and run a new application instance" }
func (*Spawn) Usage() string {
	return `spawn [flags] <app id> - spawn an application, printing its instance id.
`
}

func (s *Spawn) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.appType, "app-type", string(lifecycle.AppTypeInteractive), "SYSTEM or INTERACTIVE")
	f.StringVar(&s.command, "command", "", "executable to run inside the container")
	f.StringVar(&s.appPath, "app-path", "", "read-only package mount source")
	f.StringVar(&s.runtimePath, "runtime-path", "", "read-only runtime mount source")
	f.StringVar(&s.unpackedDataPath, "unpacked-data-path", "", "per-instance private data loop mount source")
	f.StringVar(&s.waylandSocketPath, "wayland-socket-path", "", "enables the GPU block when non-empty")
	f.IntVar(&s.systemMemoryLimitKB, "system-memory-limit-kb", 0, "overrides the device default memory limit")
	f.BoolVar(&s.wanLanAccess, "wan-lan-access", false, "grants network access")
	f.BoolVar(&s.dial, "dial", false, "enables the DIAL plugin")
	f.IntVar(&s.uid, "uid", 0, "container uid")
	f.IntVar(&s.gid, "gid", 0, "container gid")
	f.StringVar(&s.fireboltVersion, "firebolt-version", "", "Firebolt version recorded in the runtime config")
	f.StringVar(&s.intent, "intent", "", "navigationIntent carried with the launch")
	f.StringVar(&s.targetState, "target-state", "ACTIVE", "initial target lifecycle state")
	f.StringVar(&s.launchArgs, "args", "", "launch argument string stored in launch_params")
}

func (s *Spawn) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	appId := lifecycle.AppId(f.Arg(0))
	conf := args[0].(*config.Config)

	target, err := parseState(s.targetState)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	svc, log, err := newService(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := svc.Start(ctx); err != nil {
		log.WithError(err).Error("starting service")
		return subcommands.ExitFailure
	}
	defer svc.Stop()

	rc := lifecycle.RuntimeConfig{
		AppType:             lifecycle.AppType(s.appType),
		Command:             s.command,
		AppPath:             s.appPath,
		RuntimePath:         s.runtimePath,
		UnpackedDataPath:    s.unpackedDataPath,
		SystemMemoryLimitKB: s.systemMemoryLimitKB,
		WaylandSocketPath:   s.waylandSocketPath,
		WANLANAccess:        s.wanLanAccess,
		DIAL:                s.dial,
		UID:                 s.uid,
		GID:                 s.gid,
		FireboltVersion:     s.fireboltVersion,
	}

	instanceId, err := svc.SpawnApp(ctx, appId, s.intent, target, rc, s.launchArgs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(os.Stdout, instanceId)
	return subcommands.ExitSuccess
}
