// Package service is the composition root: it is the only package that
// imports lifecycle, dispatch, events, specbuilder, config, and collab/*
// together, wiring concrete collaborator adapters into lifecycle's local
// interfaces so lifecycle itself never needs to know any of them exist.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rdkcentral/lifecyclemanager/lifecycled/collab/display"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/collab/runtime"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/collab/storage"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/config"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/dispatch"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/errs"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/events"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/lifecycle"
	"github.com/rdkcentral/lifecyclemanager/lifecycled/specbuilder"
)

// Service is the single constructed value this core exposes in place of
// the reference implementation's two process-wide singletons
// (RequestHandler::getInstance(), StateTransitionHandler::getInstance()).
// Every operation in §6 is a method on *Service.
type Service struct {
	registry   *lifecycle.Registry
	dispatcher *dispatch.Dispatcher
	fanout     *events.FanOut
	collab     lifecycle.Collaborators
	log        *logrus.Entry

	runtimeAdapter *runtime.Adapter
	displayAdapter *display.Adapter
	storageAdapter *storage.Adapter
}

// New wires a Service from conf: it dials every collaborator, builds the
// spec builder closure, and constructs (but does not yet start) the
// dispatcher.
func New(conf *config.Config, log *logrus.Entry) (*Service, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	registry := lifecycle.NewRegistry()
	fanout := events.New()

	runtimeAdapter, err := runtime.New(conf.RuntimeBusName, registry, log.WithField("collaborator", "runtime"))
	if err != nil {
		return nil, err
	}
	displayAdapter, err := display.New(conf.DisplayBusName, registry, log.WithField("collaborator", "display"))
	if err != nil {
		return nil, err
	}
	storageAdapter, err := storage.New(conf.StorageBusName, log.WithField("collaborator", "storage"))
	if err != nil {
		return nil, err
	}

	builder := specbuilder.New(conf.Defaults)

	collab := lifecycle.Collaborators{
		Runtime:                runtimeAdapter,
		Display:                displayAdapter,
		Storage:                storageAdapter,
		BuildSpec:              builder.Build,
		GateDeadline:           time.Duration(conf.GateDeadlineSeconds) * time.Second,
		WaitForAppReadyOnPause: conf.WaitForAppReadyOnPause,
	}

	dispatcher := dispatch.New(registry, collab, fanout, log.WithField("component", "dispatcher"))

	return &Service{
		registry:       registry,
		dispatcher:     dispatcher,
		fanout:         fanout,
		collab:         collab,
		log:            log,
		runtimeAdapter: runtimeAdapter,
		displayAdapter: displayAdapter,
		storageAdapter: storageAdapter,
	}, nil
}

// Start launches the dispatcher's worker goroutine and the collaborator
// notification listeners.
func (s *Service) Start(ctx context.Context) error {
	if err := s.runtimeAdapter.Listen(ctx); err != nil {
		return errs.Wrap(errs.CollaboratorUnavailable, err, "starting runtime notification listener")
	}
	if err := s.displayAdapter.Listen(ctx); err != nil {
		return errs.Wrap(errs.CollaboratorUnavailable, err, "starting display notification listener")
	}
	s.dispatcher.Start()
	return nil
}

// Stop drains the dispatcher and closes the event fan-out. In-flight gate
// waits observe a Shutdown error (spec §5).
func (s *Service) Stop() {
	s.dispatcher.Stop()
	s.fanout.Close()
}
