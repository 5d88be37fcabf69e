package runtime

// Named wire-method constants for the runtime collaborator's D-Bus
// interface, grounded on the teacher's own catalog of named in-sandbox
// control methods (ContMgr*/Lifecycle* in its boot controller) but
// repurposed: there they name methods this process' own in-sandbox
// controller serves; here they name methods this adapter calls on an
// external collaborator process.
const (
	methodRun       = "Run"
	methodSuspend   = "Suspend"
	methodResume    = "Resume"
	methodHibernate = "Hibernate"
	methodWake      = "Wake"
	methodTerminate = "Terminate"
	methodKill      = "Kill"
	methodGetInfo   = "GetInfo"
)

// Signal names the runtime collaborator emits, translated by the adapter
// into internal gate signals (spec §4.8).
const (
	signalStarted      = "OnStarted"
	signalTerminated   = "OnTerminated"
	signalStateChanged = "OnStateChanged"
	signalFailure      = "OnFailure"
)

// Runtime state values carried as OnStateChanged's second body argument.
// onStarted only logs in the reference onStateChanged/onStarted handler
// (LifecycleManagerImplementation::handleRuntimeManagerEvent); it is
// onStateChanged(RUNNING) that actually posts app_running.
const (
	runtimeStateUnknown = iota
	runtimeStateStarting
	runtimeStateRunning
	runtimeStateSuspended
	runtimeStateHibernated
)
