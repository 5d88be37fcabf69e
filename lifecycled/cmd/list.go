package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
)

// List implements subcommands.Command for the "list" command: spec §6's
// GetLoadedApps.
type List struct {
	verbose bool
}

func (*List) Name() string     { return "list" }
func (*List) Synopsis() string { return "list every loaded app instance" }
func (*List) Usage() string {
	return `list [flags] - print a JSON array of loaded app summaries.
`
}

func (l *List) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&l.verbose, "verbose", false, "include per-instance runtime stats")
}

func (l *List) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf := args[0].(*config.Config)

	svc, _, err := newService(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	summaries := svc.GetLoadedApps(ctx, l.verbose)
	b, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	os.Stdout.Write(b)
	fmt.Fprintln(os.Stdout)
	return subcommands.ExitSuccess
}
