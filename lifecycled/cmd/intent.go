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

// Intent implements subcommands.Command for the "intent" command: spec
// §6's SendIntentToActiveApp.
type Intent struct{}

func (*Intent) Name() string     { return "intent" }
func (*Intent) Synopsis() string { return "record a navigation intent for a loaded app" }
func (*Intent) Usage() string {
	return `intent <app instance id> <intent> - record an intent on the app's context.
`
}

func (*Intent) SetFlags(*flag.FlagSet) {}

func (*Intent) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	instanceId := lifecycle.AppInstanceId(f.Arg(0))
	intent := f.Arg(1)
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
	defer svc.Stop()

	if err := svc.SendIntentToActiveApp(ctx, instanceId, intent); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
