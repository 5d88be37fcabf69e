package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/service"
)

// CloseApp implements subcommands.Command for the "closeapp" command:
// spec §6's CloseApp.
type CloseApp struct {
	reason string
}

func (*CloseApp) Name() string     { return "closeapp" }
func (*CloseApp) Synopsis() string { return "close an app, optionally relaunching it" }
func (*CloseApp) Usage() string {
	return `closeapp [flags] <app id> - kill, kill-and-run, or kill-and-activate.
`
}

func (c *CloseApp) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.reason, "reason", "kill", "one of: kill, kill-and-run, kill-and-activate")
}

func (c *CloseApp) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	appId := lifecycle.AppId(f.Arg(0))
	conf := args[0].(*config.Config)

	var reason service.CloseReason
	switch c.reason {
	case "kill":
		reason = service.CloseKill
	case "kill-and-run":
		reason = service.CloseKillAndRun
	case "kill-and-activate":
		reason = service.CloseKillAndActivate
	default:
		fmt.Fprintf(os.Stderr, "unknown -reason %q\n", c.reason)
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
	defer drain(svc)

	instanceId, err := svc.CloseApp(ctx, appId, reason)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if instanceId != "" {
		fmt.Fprintln(os.Stdout, instanceId)
	}
	return subcommands.ExitSuccess
}
