// File: internal/runtime/runtime.go
// Brief: Narrow container-runtime gateway the provisioner drives.

package runtime

import (
	"context"
	"errors"
)

// ErrNotFound reports that the named container or network does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable reports that the container runtime cannot be reached at all:
// no CLI on PATH or no daemon answering.
var ErrUnavailable = errors.New("container runtime unavailable")

// StartSpec describes one container for CreateAndStart.
type StartSpec struct {
	Name          string
	Image         string
	Env           []string // KEY=VALUE, already resolved
	Ports         []string // host:container
	Volumes       []string // host-path:container-path[:ro]
	Network       string
	RestartPolicy string
}

// Gateway is the full surface the provisioner needs from a container
// runtime. Implementations must treat every operation as independent; the
// orchestrator owns the sequencing.
type Gateway interface {
	// NetworkExists reports whether the named network is present.
	NetworkExists(ctx context.Context, name string) (bool, error)

	// CreateNetwork creates a bridge network with the given name.
	CreateNetwork(ctx context.Context, name string) error

	// RemoveNetwork deletes the named network. Returns ErrNotFound if the
	// network does not exist.
	RemoveNetwork(ctx context.Context, name string) error

	// CreateAndStart creates a container from spec and starts it, returning
	// the runtime's container ID.
	CreateAndStart(ctx context.Context, spec StartSpec) (string, error)

	// Stop stops the named container. Returns ErrNotFound if no such
	// container exists.
	Stop(ctx context.Context, name string) error

	// Remove deletes the named container and its anonymous volumes. Returns
	// ErrNotFound if no such container exists.
	Remove(ctx context.Context, name string) error

	// ExecOnce runs argv inside the named running container and waits for it
	// to finish, returning the command's exit code.
	ExecOnce(ctx context.Context, name string, argv []string) (int, error)
}
