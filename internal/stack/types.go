// File: internal/stack/types.go
// Brief: Service specification types for the provisioned stack.

// Package stack declares the services that make up a deployment and orders
// them into a dependency-respecting bring-up plan.
package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnvVar is one environment binding in a service's template. Values may
// contain ${NAME} placeholders resolved against the run's credential and
// configuration values.
type EnvVar struct {
	Name  string
	Value string
}

// PortBinding publishes a container port on the host.
type PortBinding struct {
	Host      int
	Container int
}

// VolumeBinding mounts a host path or named volume into the container.
// Relative sources are resolved against the install directory before use.
type VolumeBinding struct {
	Source   string
	Target   string
	ReadOnly bool
}

// Binding renders the mount as a docker-style source:target[:ro] string,
// resolving a relative source against installDir.
func (v VolumeBinding) Binding(installDir string) string {
	src := v.Source
	if !filepath.IsAbs(src) {
		src = filepath.Join(installDir, src)
	}
	b := src + ":" + v.Target
	if v.ReadOnly {
		b += ":ro"
	}
	return b
}

// ReadyPolicy declares how the orchestrator decides a started service is
// ready for its dependents. The zero value means immediately ready; a
// non-zero Settle blocks the bring-up sequence for that long. The
// orchestrator never polls a health endpoint.
type ReadyPolicy struct {
	Settle time.Duration
}

// SettleFor returns a delay-based readiness policy.
func SettleFor(d time.Duration) ReadyPolicy {
	return ReadyPolicy{Settle: d}
}

// ServiceSpec describes one deployable service unit.
type ServiceSpec struct {
	Name    string
	Image   string
	Env     []EnvVar
	Ports   []PortBinding
	Volumes []VolumeBinding

	// Needs lists the names of services that must be started (and ready)
	// before this one. The set over the whole collection must form a DAG.
	Needs []string

	Ready ReadyPolicy

	// PostStart is executed once inside the running container after the
	// service is ready. A failure is logged, not fatal.
	PostStart string

	Restart string
}

// ResolveEnv substitutes ${NAME} placeholders in the spec's environment
// template and returns docker-style KEY=VALUE strings, preserving declaration
// order. Referencing a value that is not in vals is a configuration error.
func (s ServiceSpec) ResolveEnv(vals map[string]string) ([]string, error) {
	out := make([]string, 0, len(s.Env))
	for _, ev := range s.Env {
		var missing error
		expanded := os.Expand(ev.Value, func(key string) string {
			v, ok := vals[key]
			if !ok && missing == nil {
				missing = fmt.Errorf("service %s: env %s references unknown value %q", s.Name, ev.Name, key)
			}
			return v
		})
		if missing != nil {
			return nil, missing
		}
		out = append(out, ev.Name+"="+expanded)
	}
	return out, nil
}
