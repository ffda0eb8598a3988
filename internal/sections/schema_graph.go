package sections

import (
	"fmt"
	"sort"
)

// dependencyGraph holds visibility edges between schema fields. An edge parent -> child means
// the child's visibility depends on the parent's value.
type dependencyGraph struct {
	order    []string
	position map[string]int
	children map[string][]string
	parents  map[string][]string
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{
		position: make(map[string]int),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

func (g *dependencyGraph) addNode(id string) {
	if _, exists := g.children[id]; exists {
		return
	}
	g.position[id] = len(g.order)
	g.order = append(g.order, id)
	g.children[id] = []string{}
	g.parents[id] = []string{}
}

func (g *dependencyGraph) addEdge(parentID, childID string) error {
	if _, ok := g.children[parentID]; !ok {
		return fmt.Errorf("field %q depends on unknown field %q", childID, parentID)
	}
	if _, ok := g.children[childID]; !ok {
		return fmt.Errorf("dependency rule targets unknown field %q", childID)
	}
	if parentID == childID {
		return fmt.Errorf("field %q depends on itself", childID)
	}
	if g.position[parentID] > g.position[childID] {
		return fmt.Errorf("field %q depends on later field %q", childID, parentID)
	}
	if !containsString(g.children[parentID], childID) {
		g.children[parentID] = append(g.children[parentID], childID)
	}
	if !containsString(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// cycle returns the first dependency cycle found, or nil.
func (g *dependencyGraph) cycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	via := make(map[string]string)
	var found []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, child := range g.children[id] {
			if !visited[child] {
				via[child] = id
				if dfs(child) {
					return true
				}
			} else if onStack[child] {
				found = []string{child}
				for curr := id; curr != child; curr = via[curr] {
					found = append([]string{curr}, found...)
				}
				found = append([]string{child}, found...)
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] && dfs(id) {
			return found
		}
	}
	return nil
}

// topologicalOrder lists fields parents-first, keeping declaration order among peers.
func (g *dependencyGraph) topologicalOrder() ([]string, error) {
	if cycle := g.cycle(); cycle != nil {
		return nil, fmt.Errorf("dependency cycle detected: %v", cycle)
	}

	visited := make(map[string]bool)
	result := make([]string, 0, len(g.order))
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		parents := append([]string(nil), g.parents[id]...)
		sort.Slice(parents, func(i, j int) bool { return g.position[parents[i]] < g.position[parents[j]] })
		for _, parent := range parents {
			visit(parent)
		}
		result = append(result, id)
	}
	for _, id := range g.order {
		visit(id)
	}
	return result, nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
