package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/midbel/sheetspread/layout"
)

var ErrCircular = errors.New("circular reference")

// CircularReferenceError reports that making Node depend on Dep would close a
// cycle.
type CircularReferenceError struct {
	Node layout.Position
	Dep  layout.Position
}

func (e CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference between %s and %s", e.Node.Addr(), e.Dep.Addr())
}

func (e CircularReferenceError) Is(err error) bool {
	return err == ErrCircular
}

type set map[layout.Position]struct{}

func (s set) list() []layout.Position {
	list := slices.Collect(maps.Keys(s))
	slices.SortFunc(list, layout.Position.Compare)
	return list
}

// Graph records for each tracked cell the set of cells that read its value.
// An edge from a to b means b has to be recomputed when a changes.
type Graph struct {
	nodes map[layout.Position]set
}

func New() *Graph {
	return &Graph{
		nodes: make(map[layout.Position]set),
	}
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) Has(node layout.Position) bool {
	_, ok := g.nodes[node]
	return ok
}

// Dependents returns the cells reading directly the value of node.
func (g *Graph) Dependents(node layout.Position) []layout.Position {
	return g.nodes[node].list()
}

// Dependencies returns the cells whose value is read directly by node.
func (g *Graph) Dependencies(node layout.Position) []layout.Position {
	var list []layout.Position
	for n, deps := range g.nodes {
		if _, ok := deps[node]; ok {
			list = append(list, n)
		}
	}
	slices.SortFunc(list, layout.Position.Compare)
	return list
}

func (g *Graph) Nodes() []layout.Position {
	list := slices.Collect(maps.Keys(g.nodes))
	slices.SortFunc(list, layout.Position.Compare)
	return list
}

// AddDependencies adds an edge from every dep to target. The whole batch is
// checked before the graph is modified: nothing is added when one of the
// edges would close a cycle.
func (g *Graph) AddDependencies(target layout.Position, deps []layout.Position) error {
	if err := g.Check(target, deps); err != nil {
		return err
	}
	g.ensure(target)
	for _, d := range deps {
		g.ensure(d)
		g.nodes[d][target] = struct{}{}
	}
	return nil
}

// Replace drops the edges going into target before adding the new ones. The
// graph is left untouched when the new set of edges is rejected.
func (g *Graph) Replace(target layout.Position, deps []layout.Position) error {
	if err := g.Check(target, deps); err != nil {
		return err
	}
	g.Remove(target)
	return g.AddDependencies(target, deps)
}

// Check reports whether adding an edge from each dep to target would create a
// cycle.
func (g *Graph) Check(target layout.Position, deps []layout.Position) error {
	for _, d := range deps {
		if d.Equal(target) || g.reachable(target, d) {
			return CircularReferenceError{
				Node: target,
				Dep:  d,
			}
		}
	}
	return nil
}

func (g *Graph) reachable(from, to layout.Position) bool {
	var (
		queue = []layout.Position{from}
		seen  = set{from: {}}
	)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for next := range g.nodes[curr] {
			if next.Equal(to) {
				return true
			}
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return false
}

// Remove strips every edge going into node. The node itself stays tracked
// with its dependents.
func (g *Graph) Remove(node layout.Position) {
	for _, deps := range g.nodes {
		delete(deps, node)
	}
}

// RemoveNode forgets node and every edge touching it.
func (g *Graph) RemoveNode(node layout.Position) {
	g.Remove(node)
	delete(g.nodes, node)
}

// Remap moves node old to pos keeping its edges in both directions.
func (g *Graph) Remap(old, pos layout.Position) {
	if old.Equal(pos) {
		return
	}
	deps, ok := g.nodes[old]
	if ok {
		delete(g.nodes, old)
		g.ensure(pos)
		maps.Copy(g.nodes[pos], deps)
	}
	for _, deps := range g.nodes {
		if _, ok := deps[old]; ok {
			delete(deps, old)
			deps[pos] = struct{}{}
		}
	}
}

// TopologicalSort orders every tracked cell so that a cell always comes
// before the cells reading its value.
func (g *Graph) TopologicalSort() []layout.Position {
	var (
		seen  = make(set)
		stack []layout.Position
	)
	for _, n := range g.Nodes() {
		if _, ok := seen[n]; !ok {
			g.visit(n, seen, &stack)
		}
	}
	slices.Reverse(stack)
	return stack
}

// SortFrom orders start and every cell depending on it, directly or not.
// start comes first. The result is empty if start is not tracked.
func (g *Graph) SortFrom(start layout.Position) []layout.Position {
	if !g.Has(start) {
		return nil
	}
	var stack []layout.Position
	g.visit(start, make(set), &stack)
	slices.Reverse(stack)
	return stack
}

func (g *Graph) visit(node layout.Position, seen set, stack *[]layout.Position) {
	seen[node] = struct{}{}
	for _, child := range g.nodes[node].list() {
		if _, ok := seen[child]; !ok {
			g.visit(child, seen, stack)
		}
	}
	*stack = append(*stack, node)
}

// String gives a JSON object mapping the key of each node to the keys of its
// dependents.
func (g *Graph) String() string {
	all := make(map[string][]string, len(g.nodes))
	for n, deps := range g.nodes {
		list := []string{}
		for _, d := range deps.list() {
			list = append(list, d.Key())
		}
		all[n.Key()] = list
	}
	buf, _ := json.Marshal(all)
	return string(buf)
}

func (g *Graph) ensure(node layout.Position) {
	if _, ok := g.nodes[node]; !ok {
		g.nodes[node] = make(set)
	}
}
