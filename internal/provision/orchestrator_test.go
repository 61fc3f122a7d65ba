// File: internal/provision/orchestrator_test.go
// Brief: Orchestrator sequencing tests against a scripted fake gateway.

package provision

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/stackup/internal/runtime"
	"github.com/example/stackup/internal/stack"
)

type fakeGateway struct {
	calls []string

	networkExists bool
	startErr      map[string]error
	execExit      map[string]int
	execErr       map[string]error
	stopErr       map[string]error
	removeErr     map[string]error
}

func (f *fakeGateway) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeGateway) NetworkExists(ctx context.Context, name string) (bool, error) {
	f.record("network-exists %s", name)
	return f.networkExists, nil
}

func (f *fakeGateway) CreateNetwork(ctx context.Context, name string) error {
	f.record("network-create %s", name)
	return nil
}

func (f *fakeGateway) RemoveNetwork(ctx context.Context, name string) error {
	f.record("network-rm %s", name)
	return nil
}

func (f *fakeGateway) CreateAndStart(ctx context.Context, spec runtime.StartSpec) (string, error) {
	f.record("start %s", spec.Name)
	if err := f.startErr[spec.Name]; err != nil {
		return "", err
	}
	return "id-" + spec.Name, nil
}

func (f *fakeGateway) Stop(ctx context.Context, name string) error {
	f.record("stop %s", name)
	if err := f.stopErr[name]; err != nil {
		return err
	}
	return nil
}

func (f *fakeGateway) Remove(ctx context.Context, name string) error {
	f.record("rm %s", name)
	if err := f.removeErr[name]; err != nil {
		return err
	}
	return nil
}

func (f *fakeGateway) ExecOnce(ctx context.Context, name string, argv []string) (int, error) {
	f.record("exec %s %v", name, argv)
	if err := f.execErr[name]; err != nil {
		return -1, err
	}
	return f.execExit[name], nil
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func testSpecs() []stack.ServiceSpec {
	return []stack.ServiceSpec{
		{Name: "db", Image: "img/db", Ready: stack.SettleFor(time.Minute)},
		{Name: "api", Image: "img/api", Needs: []string{"db"}},
		{Name: "web", Image: "img/web", Needs: []string{"api"}},
	}
}

func mustPlan(t *testing.T, specs []stack.ServiceSpec) stack.Plan {
	t.Helper()
	plan, err := stack.BuildPlan(specs)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func newOrchestrator(gw runtime.Gateway, opts Options) *Orchestrator {
	if opts.Network == "" {
		opts.Network = "stackup"
	}
	if opts.Sleep == nil {
		opts.Sleep = noSleep
	}
	return New(gw, zap.NewNop().Sugar(), opts)
}

func TestProvision_StartsInPlanOrder(t *testing.T) {
	gw := &fakeGateway{}
	o := newOrchestrator(gw, Options{})
	specs := testSpecs()

	res, err := o.Provision(context.Background(), specs, mustPlan(t, specs))
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if !reflect.DeepEqual(res.Succeeded, []string{"db", "api", "web"}) {
		t.Fatalf("succeeded = %v", res.Succeeded)
	}
	want := []string{
		"network-exists stackup",
		"network-create stackup",
		"start db",
		"start api",
		"start web",
	}
	if !reflect.DeepEqual(gw.calls, want) {
		t.Fatalf("calls = %v, want %v", gw.calls, want)
	}
}

func TestProvision_NetworkEnsureIsIdempotent(t *testing.T) {
	gw := &fakeGateway{networkExists: true}
	o := newOrchestrator(gw, Options{})
	specs := []stack.ServiceSpec{{Name: "db", Image: "img/db"}}

	if _, err := o.Provision(context.Background(), specs, mustPlan(t, specs)); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	for _, c := range gw.calls {
		if c == "network-create stackup" {
			t.Fatal("network created despite already existing")
		}
	}
}

func TestProvision_FailFast(t *testing.T) {
	gw := &fakeGateway{startErr: map[string]error{"api": errors.New("image pull failed")}}
	o := newOrchestrator(gw, Options{})
	specs := testSpecs()

	res, err := o.Provision(context.Background(), specs, mustPlan(t, specs))
	var startErr *ServiceStartError
	if !errors.As(err, &startErr) {
		t.Fatalf("err = %v, want ServiceStartError", err)
	}
	if startErr.Service != "api" {
		t.Fatalf("failing service = %s", startErr.Service)
	}
	if res.FailedService != "api" || !reflect.DeepEqual(res.Succeeded, []string{"db"}) {
		t.Fatalf("result = %+v", res)
	}
	for _, c := range gw.calls {
		if c == "start web" {
			t.Fatal("web attempted after api failed")
		}
	}
}

func TestProvision_ResetRunsInReverseOrder(t *testing.T) {
	gw := &fakeGateway{}
	o := newOrchestrator(gw, Options{Reset: true})
	specs := testSpecs()

	if _, err := o.Provision(context.Background(), specs, mustPlan(t, specs)); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	want := []string{
		"stop web", "rm web",
		"stop api", "rm api",
		"stop db", "rm db",
		"network-rm stackup",
	}
	if !reflect.DeepEqual(gw.calls[:len(want)], want) {
		t.Fatalf("reset calls = %v, want prefix %v", gw.calls, want)
	}
}

func TestProvision_ResetToleratesMissingContainers(t *testing.T) {
	gw := &fakeGateway{
		stopErr:   map[string]error{"web": runtime.ErrNotFound, "api": runtime.ErrNotFound},
		removeErr: map[string]error{"web": runtime.ErrNotFound, "api": runtime.ErrNotFound},
	}
	o := newOrchestrator(gw, Options{Reset: true})
	specs := testSpecs()

	if _, err := o.Provision(context.Background(), specs, mustPlan(t, specs)); err != nil {
		t.Fatalf("Provision after partial reset: %v", err)
	}
}

func TestProvision_SettleDelayObserved(t *testing.T) {
	gw := &fakeGateway{}
	var slept []time.Duration
	o := newOrchestrator(gw, Options{
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	})
	specs := testSpecs()

	if _, err := o.Provision(context.Background(), specs, mustPlan(t, specs)); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if !reflect.DeepEqual(slept, []time.Duration{time.Minute}) {
		t.Fatalf("slept = %v, want one minute for db only", slept)
	}
}

func TestProvision_HookFailureIsNotFatal(t *testing.T) {
	gw := &fakeGateway{execExit: map[string]int{"api": 1}}
	o := newOrchestrator(gw, Options{})
	specs := []stack.ServiceSpec{
		{Name: "api", Image: "img/api", PostStart: "/app/bin/migrate"},
		{Name: "web", Image: "img/web", Needs: []string{"api"}},
	}

	var hookFailed bool
	o.observers = append(o.observers, EventObserverFunc(func(ev Event) {
		if ev.Type == HookFailed && ev.Service == "api" {
			hookFailed = true
		}
	}))

	res, err := o.Provision(context.Background(), specs, mustPlan(t, specs))
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if !hookFailed {
		t.Fatal("expected HOOK_FAILED event")
	}
	if !reflect.DeepEqual(res.Succeeded, []string{"api", "web"}) {
		t.Fatalf("succeeded = %v", res.Succeeded)
	}
}

func TestProvision_HookRunsOnceInsideContainer(t *testing.T) {
	gw := &fakeGateway{}
	o := newOrchestrator(gw, Options{})
	specs := []stack.ServiceSpec{
		{Name: "realtime", Image: "img/rt", PostStart: "/app/bin/migrate --quiet"},
	}

	if _, err := o.Provision(context.Background(), specs, mustPlan(t, specs)); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	var execs []string
	for _, c := range gw.calls {
		if len(c) > 4 && c[:4] == "exec" {
			execs = append(execs, c)
		}
	}
	want := []string{"exec realtime [/app/bin/migrate --quiet]"}
	if !reflect.DeepEqual(execs, want) {
		t.Fatalf("execs = %v, want %v", execs, want)
	}
}

func TestProvision_EnvResolutionFailureAborts(t *testing.T) {
	gw := &fakeGateway{}
	o := newOrchestrator(gw, Options{})
	specs := []stack.ServiceSpec{
		{Name: "auth", Image: "img/auth", Env: []stack.EnvVar{{Name: "SECRET", Value: "${JWT_SECRET}"}}},
	}

	_, err := o.Provision(context.Background(), specs, mustPlan(t, specs))
	var startErr *ServiceStartError
	if !errors.As(err, &startErr) {
		t.Fatalf("err = %v, want ServiceStartError", err)
	}
	if len(gw.calls) != 2 { // network inspect + create only
		t.Fatalf("gateway touched beyond network setup: %v", gw.calls)
	}
}

func TestTeardown_ReverseOrder(t *testing.T) {
	gw := &fakeGateway{}
	o := newOrchestrator(gw, Options{})
	specs := testSpecs()

	o.Teardown(context.Background(), mustPlan(t, specs))
	want := []string{
		"stop web", "rm web",
		"stop api", "rm api",
		"stop db", "rm db",
		"network-rm stackup",
	}
	if !reflect.DeepEqual(gw.calls, want) {
		t.Fatalf("calls = %v, want %v", gw.calls, want)
	}
}
