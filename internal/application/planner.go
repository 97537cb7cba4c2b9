package application

import (
	"github.com/PedroGaya/sandl/internal/domain"
)

// dependency is a declared edge: the dependent layer cannot start until the
// prerequisite layer has completed.
type dependency struct {
	dependent    string
	prerequisite string
}

// planOrder computes a total order over layers consistent with the declared
// dependency edges using Kahn's algorithm. Ties between simultaneously
// ready layers break by layer registration order, making the order
// deterministic across runs. When initLayer is non-empty an implicit edge
// from every other layer to it is added first, so it sorts at the front.
// A cycle yields a DependencyCycleError naming the layers left unsorted.
func planOrder(layers []string, deps []dependency, initLayer string) ([]string, error) {
	regIndex := make(map[string]int, len(layers))
	for i, name := range layers {
		regIndex[name] = i
	}

	type edge struct{ from, to string }
	seen := make(map[edge]struct{}, len(deps))
	indegree := make(map[string]int, len(layers))
	dependents := make(map[string][]string, len(layers))

	addEdge := func(dependent, prerequisite string) {
		e := edge{from: dependent, to: prerequisite}
		if _, dup := seen[e]; dup || dependent == prerequisite {
			return
		}
		seen[e] = struct{}{}
		indegree[dependent]++
		dependents[prerequisite] = append(dependents[prerequisite], dependent)
	}

	if initLayer != "" {
		for _, name := range layers {
			if name != initLayer {
				addEdge(name, initLayer)
			}
		}
	}
	for _, d := range deps {
		addEdge(d.dependent, d.prerequisite)
	}

	ready := make([]string, 0, len(layers))
	for _, name := range layers {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(layers))
	for len(ready) > 0 {
		// Pick the ready layer registered earliest.
		best := 0
		for i := 1; i < len(ready); i++ {
			if regIndex[ready[i]] < regIndex[ready[best]] {
				best = i
			}
		}
		name := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, name)

		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(layers) {
		emitted := make(map[string]struct{}, len(order))
		for _, name := range order {
			emitted[name] = struct{}{}
		}
		var remaining []string
		for _, name := range layers {
			if _, ok := emitted[name]; !ok {
				remaining = append(remaining, name)
			}
		}
		return nil, &domain.DependencyCycleError{Layers: remaining}
	}
	return order, nil
}
