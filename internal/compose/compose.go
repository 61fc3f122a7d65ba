// File: internal/compose/compose.go
// Brief: Renders the provisioned stack as a docker-compose.yml artifact.

// Package compose projects a service collection into a compose-spec project
// so operators can manage the provisioned stack with standard compose
// tooling after the initial bring-up.
package compose

import (
	"fmt"
	"os"
	"path/filepath"

	composetypes "github.com/compose-spec/compose-go/v2/types"

	"github.com/example/stackup/internal/stack"
)

// FileName is the artifact written into the install directory.
const FileName = "docker-compose.yml"

// Project builds a compose project from resolved service specs. Environment
// values must already be substituted; the artifact carries literal values so
// it stands alone.
func Project(name, network string, specs []stack.ServiceSpec, values map[string]string) (*composetypes.Project, error) {
	services := make(composetypes.Services, len(specs))
	for _, s := range specs {
		svc, err := service(s, network, values)
		if err != nil {
			return nil, err
		}
		services[s.Name] = svc
	}
	return &composetypes.Project{
		Name:     name,
		Services: services,
		Networks: composetypes.Networks{
			network: composetypes.NetworkConfig{
				Name:   network,
				Driver: "bridge",
			},
		},
	}, nil
}

func service(s stack.ServiceSpec, network string, values map[string]string) (composetypes.ServiceConfig, error) {
	env, err := s.ResolveEnv(values)
	if err != nil {
		return composetypes.ServiceConfig{}, fmt.Errorf("compose: %w", err)
	}
	environment := make(composetypes.MappingWithEquals, len(env))
	for i, kv := range env {
		name := s.Env[i].Name
		value := kv[len(name)+1:]
		v := value
		environment[name] = &v
	}

	svc := composetypes.ServiceConfig{
		Name:          s.Name,
		ContainerName: s.Name,
		Image:         s.Image,
		Restart:       s.Restart,
		Environment:   environment,
		Networks: map[string]*composetypes.ServiceNetworkConfig{
			network: nil,
		},
	}

	for _, p := range s.Ports {
		svc.Ports = append(svc.Ports, composetypes.ServicePortConfig{
			Mode:      "ingress",
			Target:    uint32(p.Container),
			Published: fmt.Sprintf("%d", p.Host),
			Protocol:  "tcp",
		})
	}
	for _, v := range s.Volumes {
		svc.Volumes = append(svc.Volumes, composetypes.ServiceVolumeConfig{
			Type:     composetypes.VolumeTypeBind,
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		})
	}
	if len(s.Needs) > 0 {
		svc.DependsOn = make(map[string]composetypes.ServiceDependency, len(s.Needs))
		for _, dep := range s.Needs {
			svc.DependsOn[dep] = composetypes.ServiceDependency{
				Condition: composetypes.ServiceConditionStarted,
				Required:  true,
			}
		}
	}
	return svc, nil
}

// WriteFile renders the project to YAML inside installDir and returns the
// artifact path.
func WriteFile(installDir, name, network string, specs []stack.ServiceSpec, values map[string]string) (string, error) {
	project, err := Project(name, network, specs, values)
	if err != nil {
		return "", err
	}
	data, err := project.MarshalYAML()
	if err != nil {
		return "", fmt.Errorf("compose: marshal: %w", err)
	}
	path := filepath.Join(installDir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("compose: write %s: %w", path, err)
	}
	return path, nil
}
