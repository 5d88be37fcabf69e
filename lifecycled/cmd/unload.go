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

// Unload implements subcommands.Command for the "unload" command: spec
// §6's UnloadApp (Terminating with force=false).
type Unload struct{}

func (*Unload) Name() string     { return "unload" }
func (*Unload) Synopsis() string { return "terminate an app instance gracefully" }
func (*Unload) Usage() string {
	return `unload <app instance id> - terminate an app instance gracefully.
`
}

func (*Unload) SetFlags(*flag.FlagSet) {}

func (*Unload) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
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

	if err := svc.UnloadApp(instanceId); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
