package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/recsnap/internal/ir"
)

// CycleWarning reports a cycle in the model association graph.
//
// Cycles are warnings, not errors: a User -> Post -> User graph is normal.
// Projection does not detect cycles, so instances built over such a graph
// must not show joins along the whole loop.
type CycleWarning struct {
	Path    []string `json:"path"`    // ["User", "Post", "User"]
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// AnalyzeCycles finds association cycles between models.
//
//  1. Build model -> target model edges from model/collection attributes
//  2. Find strongly connected components with Tarjan's algorithm
//  3. Report each SCC with more than one model, or a self reference
func AnalyzeCycles(specs []ir.ModelSpec) []CycleWarning {
	graph := buildAssociationGraph(specs)

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Path[0] < warnings[j].Path[0]
	})
	return warnings
}

// associationGraph maps model name -> target model names, sorted.
type associationGraph map[string][]string

func buildAssociationGraph(specs []ir.ModelSpec) associationGraph {
	graph := make(associationGraph, len(specs))
	for _, spec := range specs {
		if graph[spec.Name] == nil {
			graph[spec.Name] = []string{}
		}
		for _, attr := range spec.Attributes {
			switch {
			case attr.Model != "":
				graph[spec.Name] = append(graph[spec.Name], attr.Model)
			case attr.Collection != "":
				graph[spec.Name] = append(graph[spec.Name], attr.Collection)
			}
		}
	}
	for name, targets := range graph {
		sort.Strings(targets)
		graph[name] = targets
	}
	return graph
}

func hasSelfLoop(node string, graph associationGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components. Nodes are visited in
// sorted order so results are deterministic.
func tarjanSCC(graph associationGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func cycleSCCToWarning(scc []string, graph associationGraph) CycleWarning {
	if len(scc) == 1 {
		model := scc[0]
		return CycleWarning{
			Path:    []string{model, model},
			Message: fmt.Sprintf("Self-referencing model: %s -> %s", model, model),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Association cycle: %s", strings.Join(path, " -> ")),
		Level:   "warning",
	}
}

// reconstructCyclePath walks SCC members from the first one until it
// returns to the start.
func reconstructCyclePath(scc []string, graph associationGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
