package viz

import (
	"slices"
	"strings"

	"github.com/LSST/pipe-base/pgraph"
)

// Node carries the display attributes of one node in an exported graph.
// After merging, Keys holds every original NodeKey collapsed into this node.
type Node struct {
	Keys []pgraph.NodeKey
	Type pgraph.NodeType

	Dimensions   string
	StorageClass string
	TaskClass    string
}

// Merged reports whether this node stands for more than one original node.
func (n *Node) Merged() bool { return len(n.Keys) > 1 }

// Label returns the display label: the member names, largest first, matching
// how merged nodes are conventionally shown.
func (n *Node) Label() string {
	names := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		names[i] = k.Name
	}
	slices.Sort(names)
	slices.Reverse(names)
	return strings.Join(names, ", ")
}

// Graph is an exported, display-oriented directed graph. It is a plain
// string-keyed digraph: merging and layout never touch the authoritative
// PipelineGraph, only copies of this.
type Graph struct {
	nodes map[string]*Node
	order []string // insertion order

	succ map[string]map[string]struct{}
	pred map[string]map[string]struct{}
}

// NewGraph creates an empty display graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		succ:  make(map[string]map[string]struct{}),
		pred:  make(map[string]map[string]struct{}),
	}
}

// AddNode adds a node under the given identity, replacing any existing node
// with that identity.
func (g *Graph) AddNode(id string, node *Node) {
	if _, exists := g.nodes[id]; !exists {
		g.order = append(g.order, id)
		g.succ[id] = make(map[string]struct{})
		g.pred[id] = make(map[string]struct{})
	}
	g.nodes[id] = node
}

// AddEdge adds a directed edge; both endpoints must already exist. Parallel
// edges collapse: the graph is not a multigraph.
func (g *Graph) AddEdge(from, to string) {
	if _, ok := g.nodes[from]; !ok {
		return
	}
	if _, ok := g.nodes[to]; !ok {
		return
	}
	g.succ[from][to] = struct{}{}
	g.pred[to][from] = struct{}{}
}

// RemoveNode removes a node and every edge incident to it.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for to := range g.succ[id] {
		delete(g.pred[to], id)
	}
	for from := range g.pred[id] {
		delete(g.succ[from], id)
	}
	delete(g.succ, id)
	delete(g.pred, id)
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(o string) bool { return o == id })
}

// Node returns the node stored under id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all node identities in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.order)
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int {
	n := 0
	for _, out := range g.succ {
		n += len(out)
	}
	return n
}

// Successors returns the out-neighbors of id, sorted.
func (g *Graph) Successors(id string) []string {
	return sortedKeys(g.succ[id])
}

// Predecessors returns the in-neighbors of id, sorted.
func (g *Graph) Predecessors(id string) []string {
	return sortedKeys(g.pred[id])
}

// InDegree returns the number of in-edges of id.
func (g *Graph) InDegree(id string) int { return len(g.pred[id]) }

// OutDegree returns the number of out-edges of id.
func (g *Graph) OutDegree(id string) int { return len(g.succ[id]) }

// Copy returns an independent copy sharing the Node values.
func (g *Graph) Copy() *Graph {
	out := NewGraph()
	for _, id := range g.order {
		out.AddNode(id, g.nodes[id])
	}
	for _, id := range g.order {
		for to := range g.succ[id] {
			out.AddEdge(id, to)
		}
	}
	return out
}

// ancestors returns every node from which id is reachable, not including id.
func (g *Graph) ancestors(id string) map[string]struct{} {
	result := make(map[string]struct{})
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for p := range g.pred[cur] {
			if _, seen := result[p]; !seen {
				result[p] = struct{}{}
				stack = append(stack, p)
			}
		}
	}
	return result
}

// weaklyConnectedComponents returns the node sets of the weakly connected
// components, ordered by the smallest insertion index they contain.
func (g *Graph) weaklyConnectedComponents() []map[string]struct{} {
	var components []map[string]struct{}
	seen := make(map[string]struct{}, len(g.nodes))
	for _, id := range g.order {
		if _, ok := seen[id]; ok {
			continue
		}
		component := map[string]struct{}{id: {}}
		seen[id] = struct{}{}
		stack := []string{id}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for n := range g.succ[cur] {
				if _, ok := seen[n]; !ok {
					seen[n] = struct{}{}
					component[n] = struct{}{}
					stack = append(stack, n)
				}
			}
			for n := range g.pred[cur] {
				if _, ok := seen[n]; !ok {
					seen[n] = struct{}{}
					component[n] = struct{}{}
					stack = append(stack, n)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

// topoOrderWithin returns a deterministic topological order of the nodes in
// within (nil means all nodes), or ok=false if they contain a cycle.
func (g *Graph) topoOrderWithin(within map[string]struct{}) ([]string, bool) {
	contains := func(id string) bool {
		if within == nil {
			return true
		}
		_, ok := within[id]
		return ok
	}
	inDegree := make(map[string]int)
	var queue []string
	for _, id := range g.order {
		if !contains(id) {
			continue
		}
		d := 0
		for p := range g.pred[id] {
			if contains(p) {
				d++
			}
		}
		inDegree[id] = d
		if d == 0 {
			queue = append(queue, id)
		}
	}
	slices.Sort(queue)
	var result []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)
		for _, next := range g.Successors(id) {
			if !contains(next) {
				continue
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				idx, _ := slices.BinarySearch(queue, next)
				queue = slices.Insert(queue, idx, next)
			}
		}
	}
	return result, len(result) == len(inDegree)
}

// longestPathWithin returns a longest directed path (by edge count) among
// the nodes in within (nil means all nodes). Ties break deterministically.
func (g *Graph) longestPathWithin(within map[string]struct{}) ([]string, bool) {
	order, ok := g.topoOrderWithin(within)
	if !ok {
		return nil, false
	}
	contains := func(id string) bool {
		if within == nil {
			return true
		}
		_, ok := within[id]
		return ok
	}
	length := make(map[string]int, len(order))
	prev := make(map[string]string, len(order))
	for _, id := range order {
		for p := range g.pred[id] {
			if !contains(p) {
				continue
			}
			if l := length[p] + 1; l > length[id] || (l == length[id] && p < prev[id]) {
				length[id] = l
				prev[id] = p
			}
		}
	}
	best := ""
	for _, id := range order {
		if best == "" || length[id] > length[best] || (length[id] == length[best] && id < best) {
			best = id
		}
	}
	if best == "" {
		return nil, true
	}
	var path []string
	for cur := best; ; {
		path = append(path, cur)
		p, ok := prev[cur]
		if !ok || length[cur] == 0 {
			break
		}
		cur = p
	}
	slices.Reverse(path)
	return path, true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
