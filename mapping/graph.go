package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// EntityGraph is the association-edge graph over a set of entities: an edge
// from A to B means A declares an association whose target entity is B.
// Unlike schema-level dependency graphs, cycles here are legal - cyclic
// entity graphs are fully supported by the mapping layer - so cycle
// detection is informational and only TopologicalSort treats cycles as an
// error.
type EntityGraph struct {
	nodes map[string]*PersistentEntity
	edges map[string][]string
}

// NewEntityGraph builds the graph for the given entities. Nodes are keyed
// by the entity's canonical type key, not the erased class name, so distinct
// parameterizations of one generic entity stay distinct nodes (the key
// equals the name for non-generic entities). Associations whose target is
// not among the given entities contribute no edge.
func NewEntityGraph(entities []*PersistentEntity) *EntityGraph {
	g := &EntityGraph{
		nodes: make(map[string]*PersistentEntity, len(entities)),
		edges: make(map[string][]string),
	}
	for _, e := range entities {
		g.nodes[entityKey(e)] = e
	}
	for _, e := range entities {
		seen := make(map[string]bool)
		for _, a := range e.Associations() {
			target := a.TargetTypeInformation().Key()
			if _, ok := g.nodes[target]; !ok || seen[target] {
				continue
			}
			seen[target] = true
			g.edges[entityKey(e)] = append(g.edges[entityKey(e)], target)
		}
	}
	return g
}

func entityKey(e *PersistentEntity) string {
	return e.TypeInformation().Key()
}

// DetectCycles returns every association cycle found in the graph.
func (g *EntityGraph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(node string, path []string) bool
	dfs = func(node string, path []string) bool {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, neighbor := range g.edges[node] {
			if !visited[neighbor] {
				if dfs(neighbor, path) {
					return true
				}
			} else if onStack[neighbor] {
				start := -1
				for i, n := range path {
					if n == neighbor {
						start = i
						break
					}
				}
				if start >= 0 {
					cycle := make([]string, len(path)-start)
					copy(cycle, path[start:])
					cycles = append(cycles, cycle)
				}
				return true
			}
		}

		onStack[node] = false
		return false
	}

	for _, node := range g.sortedNodes() {
		if !visited[node] {
			dfs(node, []string{})
		}
	}
	return cycles
}

// TopologicalSort returns entities in dependency order, association targets
// first - the safe creation order for storage adapters. Fails when the
// graph is cyclic.
func (g *EntityGraph) TopologicalSort() ([]string, error) {
	outDegree := make(map[string]int)
	for node := range g.nodes {
		outDegree[node] = len(g.edges[node])
	}

	reverse := make(map[string][]string)
	for source, targets := range g.edges {
		for _, target := range targets {
			reverse[target] = append(reverse[target], source)
		}
	}

	var queue []string
	for _, node := range g.sortedNodes() {
		if outDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range reverse[node] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("association cycle prevents ordering:\n%s", formatCycles(g.DetectCycles()))
	}
	return result, nil
}

// Dependencies returns the association targets of the entity with the given
// type key.
func (g *EntityGraph) Dependencies(key string) []string {
	deps, ok := g.edges[key]
	if !ok {
		return []string{}
	}
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// Dependents returns the type keys of entities holding an association to
// the given one.
func (g *EntityGraph) Dependents(key string) []string {
	dependents := []string{}
	for _, node := range g.sortedNodes() {
		for _, dep := range g.edges[node] {
			if dep == key {
				dependents = append(dependents, node)
				break
			}
		}
	}
	return dependents
}

func (g *EntityGraph) sortedNodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependencyReport is the result of association-dependency analysis over a
// context's cached entities.
type DependencyReport struct {
	TotalEntities    int
	Dependencies     map[string][]string
	Dependents       map[string][]string
	CircularRefs     [][]string
	HasCycles        bool
	TopologicalOrder []string
}

// AnalyzeDependencies builds the association graph over the currently
// cached entities and reports dependencies, cycles, and - when acyclic -
// a safe creation order.
func (c *Context) AnalyzeDependencies() *DependencyReport {
	entities := c.Entities()
	graph := NewEntityGraph(entities)

	report := &DependencyReport{
		TotalEntities: len(entities),
		Dependencies:  make(map[string][]string),
		Dependents:    make(map[string][]string),
	}
	for _, e := range entities {
		report.Dependencies[entityKey(e)] = graph.Dependencies(entityKey(e))
		report.Dependents[entityKey(e)] = graph.Dependents(entityKey(e))
	}

	if cycles := graph.DetectCycles(); len(cycles) > 0 {
		report.CircularRefs = cycles
		report.HasCycles = true
	}
	if order, err := graph.TopologicalSort(); err == nil {
		report.TopologicalOrder = order
	}
	return report
}

// String formats the report.
func (r *DependencyReport) String() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Entity Dependency Report\nTotal Entities: %d\n\n", r.TotalEntities))

	if r.HasCycles {
		b.WriteString("Circular references:\n")
		b.WriteString(formatCycles(r.CircularRefs))
		b.WriteString("\n\n")
	}

	if len(r.TopologicalOrder) > 0 {
		b.WriteString("Safe creation order:\n")
		for i, name := range r.TopologicalOrder {
			deps := r.Dependencies[name]
			if len(deps) > 0 {
				b.WriteString(fmt.Sprintf("  %d. %s (references: %s)\n", i+1, name, strings.Join(deps, ", ")))
			} else {
				b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, name))
			}
		}
	}

	return b.String()
}

func formatCycles(cycles [][]string) string {
	var b strings.Builder
	for i, cycle := range cycles {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("  Cycle %d: %s -> %s", i+1, strings.Join(cycle, " -> "), cycle[0]))
	}
	return b.String()
}
