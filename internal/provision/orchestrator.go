// File: internal/provision/orchestrator.go
// Brief: Sequential fail-fast bring-up of a planned service stack.

package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/example/stackup/internal/runtime"
	"github.com/example/stackup/internal/stack"
)

// Options configure a provisioning run.
type Options struct {
	// Network is the bridge network every container joins.
	Network string

	// Values feed the services' environment templates.
	Values map[string]string

	// Reset tears down any prior instance of the stack before bring-up.
	Reset bool

	// InstallDir anchors relative volume sources.
	InstallDir string

	Observers []EventObserver

	// Sleep replaces time.Sleep in tests. Nil means real sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Result summarizes a run. On failure, Succeeded holds every service that
// started before the failing one and FailedService names the aborter.
type Result struct {
	Succeeded     []string
	FailedService string
}

// Orchestrator drives a runtime gateway through a stack plan one service at
// a time. A failed service aborts the run; already-started services are left
// running for inspection.
type Orchestrator struct {
	gw        runtime.Gateway
	log       *zap.SugaredLogger
	observers []EventObserver
	sleep     func(ctx context.Context, d time.Duration) error
	opts      Options
}

// New builds an orchestrator over the given gateway.
func New(gw runtime.Gateway, log *zap.SugaredLogger, opts Options) *Orchestrator {
	o := &Orchestrator{
		gw:        gw,
		log:       log,
		observers: append([]EventObserver(nil), opts.Observers...),
		sleep:     opts.Sleep,
		opts:      opts,
	}
	if o.sleep == nil {
		o.sleep = sleepFor
	}
	return o
}

func sleepFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (o *Orchestrator) emit(typ EventType, service, message string, err error) {
	ev := Event{TS: time.Now(), Type: typ, Service: service, Message: message, Err: err}
	for _, obs := range o.observers {
		obs.ObserveEvent(ev)
	}
}

// Provision brings up every service in plan order. The first start failure
// aborts the run; the returned Result reports what got up before the abort.
func (o *Orchestrator) Provision(ctx context.Context, specs []stack.ServiceSpec, plan stack.Plan) (Result, error) {
	byName := make(map[string]stack.ServiceSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	o.emit(RunStarted, "", fmt.Sprintf("services=%d network=%s", len(plan.Order), o.opts.Network), nil)

	if o.opts.Reset {
		o.emit(ResetStarted, "", "", nil)
		o.reset(ctx, plan)
		o.emit(ResetCompleted, "", "", nil)
	}

	if err := o.ensureNetwork(ctx); err != nil {
		o.emit(RunCompleted, "", "failed", err)
		return Result{}, err
	}
	o.emit(NetworkReady, "", o.opts.Network, nil)

	var res Result
	for _, name := range plan.Order {
		svc := byName[name]
		if err := o.startService(ctx, svc); err != nil {
			res.FailedService = name
			wrapped := &ServiceStartError{Service: name, Err: err}
			o.emit(ServiceFailed, name, "", wrapped)
			o.emit(RunCompleted, "", "failed", wrapped)
			return res, wrapped
		}
		res.Succeeded = append(res.Succeeded, name)
	}

	o.emit(RunCompleted, "", "ok", nil)
	return res, nil
}

// ensureNetwork creates the stack network when absent. Re-running against an
// existing network is not an error.
func (o *Orchestrator) ensureNetwork(ctx context.Context) error {
	exists, err := o.gw.NetworkExists(ctx, o.opts.Network)
	if err != nil {
		return &NetworkError{Network: o.opts.Network, Op: "inspect", Err: err}
	}
	if exists {
		return nil
	}
	if err := o.gw.CreateNetwork(ctx, o.opts.Network); err != nil {
		return &NetworkError{Network: o.opts.Network, Op: "create", Err: err}
	}
	return nil
}

func (o *Orchestrator) startService(ctx context.Context, svc stack.ServiceSpec) error {
	env, err := svc.ResolveEnv(o.opts.Values)
	if err != nil {
		return err
	}

	spec := runtime.StartSpec{
		Name:          svc.Name,
		Image:         svc.Image,
		Env:           env,
		Network:       o.opts.Network,
		RestartPolicy: svc.Restart,
	}
	for _, p := range svc.Ports {
		spec.Ports = append(spec.Ports, runtime.FormatPort(p.Host, p.Container))
	}
	for _, v := range svc.Volumes {
		spec.Volumes = append(spec.Volumes, v.Binding(o.opts.InstallDir))
	}

	o.emit(ServiceStarting, svc.Name, svc.Image, nil)
	id, err := o.gw.CreateAndStart(ctx, spec)
	if err != nil {
		return err
	}
	o.log.Debugw("container started", "service", svc.Name, "id", id)

	if d := svc.Ready.Settle; d > 0 {
		o.emit(ServiceSettling, svc.Name, d.String(), nil)
		if err := o.sleep(ctx, d); err != nil {
			return err
		}
	}
	o.emit(ServiceStarted, svc.Name, "", nil)

	if svc.PostStart != "" {
		o.runHook(ctx, svc)
	}
	return nil
}

// runHook executes the service's one-time post-start command. Hook failures
// are reported but never abort the run.
func (o *Orchestrator) runHook(ctx context.Context, svc stack.ServiceSpec) {
	o.emit(HookStarted, svc.Name, svc.PostStart, nil)
	argv, err := shellwords.Parse(svc.PostStart)
	if err != nil {
		o.log.Warnw("post-start hook unparseable", "service", svc.Name, "command", svc.PostStart, "error", err)
		o.emit(HookFailed, svc.Name, svc.PostStart, err)
		return
	}
	code, err := o.gw.ExecOnce(ctx, svc.Name, argv)
	switch {
	case err != nil:
		o.log.Warnw("post-start hook failed", "service", svc.Name, "error", err)
		o.emit(HookFailed, svc.Name, svc.PostStart, err)
	case code != 0:
		err := fmt.Errorf("exit code %d", code)
		o.log.Warnw("post-start hook failed", "service", svc.Name, "exitCode", code)
		o.emit(HookFailed, svc.Name, svc.PostStart, err)
	default:
		o.emit(HookSucceeded, svc.Name, "", nil)
	}
}

// reset removes any leftover containers and the network from a prior run,
// in reverse plan order. Nothing here is fatal; missing pieces are expected.
func (o *Orchestrator) reset(ctx context.Context, plan stack.Plan) {
	for _, name := range plan.Reverse() {
		o.removeContainer(ctx, name)
	}
	if err := o.gw.RemoveNetwork(ctx, o.opts.Network); err != nil && !errors.Is(err, runtime.ErrNotFound) {
		o.log.Warnw("network removal failed", "network", o.opts.Network, "error", err)
	}
}

func (o *Orchestrator) removeContainer(ctx context.Context, name string) {
	if err := o.gw.Stop(ctx, name); err != nil && !errors.Is(err, runtime.ErrNotFound) {
		o.log.Warnw("stop failed", "container", name, "error", err)
	}
	if err := o.gw.Remove(ctx, name); err != nil && !errors.Is(err, runtime.ErrNotFound) {
		o.log.Warnw("remove failed", "container", name, "error", err)
	} else if err == nil {
		o.emit(ServiceStopped, name, "", nil)
	}
}

// Teardown stops and removes the whole stack in reverse plan order, then
// drops the network. Used by `down`; tolerates a partially-present stack.
func (o *Orchestrator) Teardown(ctx context.Context, plan stack.Plan) {
	o.emit(ResetStarted, "", "", nil)
	o.reset(ctx, plan)
	o.emit(ResetCompleted, "", "", nil)
}
