// Package cmd implements the operator-facing subcommands (spec §A.2's
// CLI/entrypoint component): one subcommands.Command per operation,
// exactly the shape the teacher uses for its OCI commands.
package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/service"
)

// drainGrace bounds how long a one-shot ops command keeps its own Service
// running after enqueueing a transition. There is no RPC/IPC framework
// connecting this invocation to an already-running serve process (the
// core's explicit Non-goal), so every enqueue here is processed by a
// dispatcher this same invocation owns; stopping immediately after
// Enqueue would race the worker goroutine popping the item at all.
const drainGrace = 2 * time.Second

// parseState maps a state's String() spelling back to its ordinal. Every
// subcommand that takes a target state on the command line accepts this
// spelling rather than the raw ordinal. GetLoadedApps output reports
// states as ordinals, not in this spelling.
func parseState(name string) (lifecycle.State, error) {
	for s := lifecycle.Unloaded; s.Valid(); s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown lifecycle state %q", name)
}

// newLogger builds the logrus entry every subcommand logs through, level
// set from the parsed Config exactly as the running service would.
func newLogger(conf *config.Config) *logrus.Entry {
	logger := logrus.New()
	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logrus.NewEntry(logger)
}

// newService constructs a fresh, unstarted Service from conf. Every
// subcommand but serve builds one of these per invocation and starts it
// itself: there is no RPC framework connecting a CLI invocation to an
// already-running serve process (spec's Non-goals), so "driving the §6
// operations locally" means each invocation is its own short-lived
// instance of the core.
func newService(conf *config.Config) (*service.Service, *logrus.Entry, error) {
	log := newLogger(conf)
	svc, err := service.New(conf, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, log, nil
}

// drain sleeps out drainGrace before stopping svc, giving its dispatcher
// time to process work enqueued earlier in the same invocation.
func drain(svc *service.Service) {
	time.Sleep(drainGrace)
	svc.Stop()
}
