package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/subcommands"
	"golang.org/x/sys/unix"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
)

// Serve implements subcommands.Command for the "serve" command: it is the
// one long-running invocation of this binary, the others are ops tooling
// that each construct their own short-lived Service (spec §A.1/§A.6).
type Serve struct{}

func (*Serve) Name() string     { return "serve" }
func (*Serve) Synopsis() string { return "run the application lifecycle supervisor" }
func (*Serve) Usage() string {
	return `serve [flags] - run the lifecycle supervisor until SIGTERM/SIGINT.
`
}

func (*Serve) SetFlags(*flag.FlagSet) {}

func (*Serve) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf := args[0].(*config.Config)

	svc, log, err := newService(conf)
	if err != nil {
		log.WithError(err).Error("constructing service")
		return subcommands.ExitFailure
	}

	if err := svc.Start(ctx); err != nil {
		log.WithError(err).Error("starting service")
		return subcommands.ExitFailure
	}
	log.Info("lifecycle supervisor running")

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.WithError(err).Warn("sd_notify READY=1 failed")
	} else if !ok {
		log.Debug("not running under systemd notify, skipping readiness notification")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGTERM, unix.SIGINT)
	<-sig

	log.Info("shutting down")
	svc.Stop()
	return subcommands.ExitSuccess
}
