// File: internal/provision/errors.go
// Brief: Typed failures a provisioning run can end with.

package provision

import "fmt"

// NetworkError reports a failure to ensure or remove the stack network.
type NetworkError struct {
	Network string
	Op      string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %s: %s: %v", e.Network, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceStartError reports which service aborted the run. Services after it
// in the plan were never attempted.
type ServiceStartError struct {
	Service string
	Err     error
}

func (e *ServiceStartError) Error() string {
	return fmt.Sprintf("service %s failed to start: %v", e.Service, e.Err)
}

func (e *ServiceStartError) Unwrap() error { return e.Err }
