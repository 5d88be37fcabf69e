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

// Ready implements subcommands.Command for the "ready" command: spec §6's
// AppReady, the external app_ready readiness signal.
type Ready struct{}

func (*Ready) Name() string     { return "ready" }
func (*Ready) Synopsis() string { return "signal that an app has reached app_ready" }
func (*Ready) Usage() string {
	return `ready <app id> - post the app_ready gate for an app.
`
}

func (*Ready) SetFlags(*flag.FlagSet) {}

func (*Ready) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	appId := lifecycle.AppId(f.Arg(0))
	conf := args[0].(*config.Config)

	svc, _, err := newService(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := svc.AppReady(appId); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
