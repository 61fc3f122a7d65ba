// File: internal/runtime/docker.go
// Brief: Gateway implementation that shells out to the docker CLI.

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DockerCLI drives a local Docker daemon through the docker binary. It keeps
// no state beyond the logger; every call is a fresh CLI invocation.
type DockerCLI struct {
	log *zap.SugaredLogger
}

// NewDockerCLI verifies the docker binary is on PATH and the daemon answers,
// then returns a gateway bound to it.
func NewDockerCLI(ctx context.Context, log *zap.SugaredLogger) (*DockerCLI, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, fmt.Errorf("%w: docker binary not on PATH", ErrUnavailable)
	}
	d := &DockerCLI{log: log}
	if _, err := d.run(ctx, "version", "--format", "{{.Server.Version}}"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return d, nil
}

func (d *DockerCLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	d.log.Debugw("docker", "args", args)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if isNotFound(msg) {
			return "", ErrNotFound
		}
		if strings.Contains(msg, "Cannot connect to the Docker daemon") {
			return "", fmt.Errorf("%w: %s", ErrUnavailable, msg)
		}
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("docker %s: %s", args[0], msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func isNotFound(stderr string) bool {
	return strings.Contains(stderr, "No such container") ||
		strings.Contains(stderr, "No such network") ||
		strings.Contains(stderr, "not found")
}

func (d *DockerCLI) NetworkExists(ctx context.Context, name string) (bool, error) {
	_, err := d.run(ctx, "network", "inspect", name, "--format", "{{.Id}}")
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DockerCLI) CreateNetwork(ctx context.Context, name string) error {
	_, err := d.run(ctx, "network", "create", "--driver", "bridge", name)
	return err
}

func (d *DockerCLI) RemoveNetwork(ctx context.Context, name string) error {
	_, err := d.run(ctx, "network", "rm", name)
	return err
}

func (d *DockerCLI) CreateAndStart(ctx context.Context, spec StartSpec) (string, error) {
	args := []string{"run", "--detach", "--name", spec.Name}
	if spec.Network != "" {
		args = append(args, "--network", spec.Network)
	}
	if spec.RestartPolicy != "" {
		args = append(args, "--restart", spec.RestartPolicy)
	}
	for _, kv := range spec.Env {
		args = append(args, "--env", kv)
	}
	for _, p := range spec.Ports {
		args = append(args, "--publish", p)
	}
	for _, v := range spec.Volumes {
		args = append(args, "--volume", v)
	}
	args = append(args, spec.Image)
	id, err := d.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *DockerCLI) Stop(ctx context.Context, name string) error {
	_, err := d.run(ctx, "stop", name)
	return err
}

func (d *DockerCLI) Remove(ctx context.Context, name string) error {
	_, err := d.run(ctx, "rm", "--volumes", name)
	return err
}

func (d *DockerCLI) ExecOnce(ctx context.Context, name string, argv []string) (int, error) {
	args := append([]string{"exec", name}, argv...)
	cmd := exec.CommandContext(ctx, "docker", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	d.log.Debugw("docker exec", "container", name, "argv", argv)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if isNotFound(msg) {
			return -1, ErrNotFound
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		if msg == "" {
			msg = err.Error()
		}
		return -1, fmt.Errorf("docker exec %s: %s", name, msg)
	}
	return 0, nil
}

// FormatPort renders a binding for docker run.
func FormatPort(host, container int) string {
	return strconv.Itoa(host) + ":" + strconv.Itoa(container)
}
