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

// SetState implements subcommands.Command for the "setstate" command:
// spec §6's SetTargetAppState.
type SetState struct {
	intent string
}

func (*SetState) Name() string     { return "setstate" }
func (*SetState) Synopsis() string { return "set an app instance's target lifecycle state" }
func (*SetState) Usage() string {
	return `setstate [flags] <app instance id> <target state> - enqueue a transition.
`
}

func (s *SetState) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.intent, "intent", "", "navigationIntent carried with the transition")
}

func (s *SetState) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	instanceId := lifecycle.AppInstanceId(f.Arg(0))
	target, err := parseState(f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
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

	if err := svc.SetTargetAppState(instanceId, target, s.intent); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
