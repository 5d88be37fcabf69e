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

// Kill implements subcommands.Command for the "kill" command: spec §6's
// KillApp (Terminating with force=true).
type Kill struct{}

func (*Kill) Name() string     { return "kill" }
func (*Kill) Synopsis() string { return "terminate an app instance forcefully" }
func (*Kill) Usage() string {
	return `kill <app instance id> - terminate an app instance forcefully.
`
}

func (*Kill) SetFlags(*flag.FlagSet) {}

func (*Kill) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	instanceId := lifecycle.AppInstanceId(f.Arg(0))
	conf := args[0].(*config.Config)

	svc, log, err := newService(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := svc.Start(ctx); err != nil {
		log.WithError(err).Error("starting service")
		return subcommands.ExitFailure
	}
	defer drain(svc)

	if err := svc.KillApp(instanceId); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
