// Package cli is the main entrypoint for lifecycled.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/cmd"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
)

// Main is the main entrypoint.
func Main() {
	// Help and flags commands are generated automatically.
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")

	// The one long-running command.
	subcommands.Register(new(cmd.Serve), "")

	// Ops tooling, each its own short-lived invocation of the core (spec
	// §A.1/§A.6 -- no RPC/IPC framework connects these to a running
	// serve process).
	const opsGroup = "ops"
	subcommands.Register(new(cmd.Spawn), opsGroup)
	subcommands.Register(new(cmd.SetState), opsGroup)
	subcommands.Register(new(cmd.Unload), opsGroup)
	subcommands.Register(new(cmd.Kill), opsGroup)
	subcommands.Register(new(cmd.CloseApp), opsGroup)
	subcommands.Register(new(cmd.List), opsGroup)
	subcommands.Register(new(cmd.Intent), opsGroup)
	subcommands.Register(new(cmd.Ready), opsGroup)

	config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	conf, err := config.NewFromFlags(flag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lifecycled: %v\n", err)
		os.Exit(2)
	}

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	logrus.WithFields(logrus.Fields{
		"root_dir":                    conf.RootDir,
		"device_config":               conf.DeviceConfig,
		"gate_deadline_seconds":       conf.GateDeadlineSeconds,
		"wait_for_app_ready_on_pause": conf.WaitForAppReadyOnPause,
	}).Debug("starting lifecycled")

	os.Exit(int(subcommands.Execute(context.Background(), conf)))
}
