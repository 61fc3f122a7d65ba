// File: internal/stack/plan.go
// Brief: Dependency validation and deterministic bring-up ordering.

package stack

import (
	"fmt"
	"strings"
)

// Plan is a topological order over a service collection: every dependency
// precedes its dependents. Immutable once built.
type Plan struct {
	Order []string
}

// Reverse returns the teardown order: the exact reverse of bring-up.
func (p Plan) Reverse() []string {
	out := make([]string, len(p.Order))
	for i, name := range p.Order {
		out[len(p.Order)-1-i] = name
	}
	return out
}

// UnknownDependencyError reports a dependency on a service that is not part
// of the collection.
type UnknownDependencyError struct {
	Service    string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("service %s needs unknown dependency %q", e.Service, e.Dependency)
}

// CyclicDependencyError reports a dependency cycle, naming its participants
// in path order.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	closed := append(append([]string(nil), e.Path...), e.Path[0])
	return "dependency cycle detected: " + strings.Join(closed, " -> ")
}

// BuildPlan validates the dependency graph and returns a deterministic
// topological order. Ties among simultaneously-ready services are broken by
// declaration order, never by name, so the order is reproducible run to run.
func BuildPlan(specs []ServiceSpec) (Plan, error) {
	byName := make(map[string]*ServiceSpec, len(specs))
	for i := range specs {
		byName[specs[i].Name] = &specs[i]
	}
	for _, s := range specs {
		for _, dep := range s.Needs {
			if _, ok := byName[dep]; !ok {
				return Plan{}, &UnknownDependencyError{Service: s.Name, Dependency: dep}
			}
		}
	}

	inDegree := make(map[string]int, len(specs))
	for _, s := range specs {
		inDegree[s.Name] = len(s.Needs)
	}

	order := make([]string, 0, len(specs))
	placed := make(map[string]bool, len(specs))
	for len(order) < len(specs) {
		progressed := false
		// Scan in declaration order so the first ready service wins ties.
		for _, s := range specs {
			if placed[s.Name] || inDegree[s.Name] != 0 {
				continue
			}
			placed[s.Name] = true
			order = append(order, s.Name)
			for _, other := range specs {
				for _, dep := range other.Needs {
					if dep == s.Name {
						inDegree[other.Name]--
					}
				}
			}
			progressed = true
			break
		}
		if !progressed {
			return Plan{}, &CyclicDependencyError{Path: cyclePath(specs, placed)}
		}
	}
	return Plan{Order: order}, nil
}

// cyclePath walks the unplaced remainder of the graph until a node repeats,
// then trims the walk to the cycle itself for the error message.
func cyclePath(specs []ServiceSpec, placed map[string]bool) []string {
	needs := make(map[string][]string, len(specs))
	var start string
	for _, s := range specs {
		if placed[s.Name] {
			continue
		}
		if start == "" {
			start = s.Name
		}
		for _, dep := range s.Needs {
			if !placed[dep] {
				needs[s.Name] = append(needs[s.Name], dep)
			}
		}
	}
	seen := map[string]int{}
	var walk []string
	cur := start
	for {
		if at, ok := seen[cur]; ok {
			return walk[at:]
		}
		seen[cur] = len(walk)
		walk = append(walk, cur)
		next := needs[cur]
		if len(next) == 0 {
			return walk
		}
		cur = next[0]
	}
}
