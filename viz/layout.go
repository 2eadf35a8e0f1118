package viz

import (
	"slices"
	"strings"
)

// EdgeEnd is an edge terminating at the current row, identified by the
// column and identity of its origin node.
type EdgeEnd struct {
	X      int
	Origin string
}

// ActiveEdge is an edge passing through the current row on its way to one or
// more later rows.
type ActiveEdge struct {
	X            int
	Origin       string
	Destinations []string
}

// LayoutRow is one row of a terminal layout: the node placed on it, its
// column, and the edges that end at or continue past it.
type LayoutRow struct {
	ID   string
	Node *Node
	X    int

	Terminating []EdgeEnd
	Continuing  []ActiveEdge
}

// Layout assigns every node of a display graph a column such that each row
// holds exactly one node and no two nodes share a column while an edge is
// live in it. Long dependency chains hug the low columns so the drawing
// reads top to bottom like a program.
type Layout struct {
	graph     *Graph
	todo      *Graph
	active    map[int]map[string]struct{}
	locations map[string]int
	order     []string
	xMax      int
}

// NewLayout computes a layout for the graph. The graph is copied; later
// mutation of it does not affect the layout.
func NewLayout(g *Graph) *Layout {
	l := &Layout{
		graph:     g,
		todo:      g.Copy(),
		active:    make(map[int]map[string]struct{}),
		locations: make(map[string]int),
	}
	for _, component := range g.weaklyConnectedComponents() {
		l.addConnectedGraph(component)
	}
	// Anything still unplaced sits on a cycle. Place it anyway so every node
	// gets a row, breaking ties and cycles on node identity.
	for l.todo.NumNodes() > 0 {
		remaining := l.todo.Nodes()
		slices.Sort(remaining)
		placed := false
		for _, id := range remaining {
			if l.todo.InDegree(id) == 0 {
				l.addUnblockedNode(id)
				placed = true
				break
			}
		}
		if !placed {
			l.addUnblockedNode(remaining[0])
		}
	}
	l.todo = nil
	l.active = nil
	return l
}

// XMax returns the highest column in use.
func (l *Layout) XMax() int { return l.xMax }

// addUnblockedNode places a node with no unplaced predecessors in the
// smallest free column, retiring any active column segments that were
// waiting on it.
func (l *Layout) addUnblockedNode(id string) int {
	for x, endpoints := range l.active {
		if _, ok := endpoints[id]; ok {
			delete(endpoints, id)
			if len(endpoints) == 0 {
				delete(l.active, x)
			}
		}
	}
	x := 0
	for {
		if _, busy := l.active[x]; !busy {
			break
		}
		x++
	}
	outgoing := l.todo.Successors(id)
	l.locations[id] = x
	l.order = append(l.order, id)
	if x > l.xMax {
		l.xMax = x
	}
	l.todo.RemoveNode(id)
	if len(outgoing) > 0 {
		endpoints := make(map[string]struct{}, len(outgoing))
		for _, o := range outgoing {
			endpoints[o] = struct{}{}
		}
		l.active[x] = endpoints
	}
	return x
}

// addActiveUnblocked drains the endpoints of active columns that have become
// unblocked, except avoid. Endpoints without outgoing edges go first since
// they free their column after a single row; the rest are placed by
// decreasing out-degree, repeating until nothing but avoid is unblocked.
func (l *Layout) addActiveUnblocked(avoid string) {
	for {
		var unblocked []string
		for _, node := range l.activeEndpoints() {
			if node == avoid || !l.todo.Has(node) || l.todo.InDegree(node) != 0 {
				continue
			}
			if l.todo.OutDegree(node) == 0 {
				l.addUnblockedNode(node)
			} else {
				unblocked = append(unblocked, node)
			}
		}
		if len(unblocked) == 0 {
			return
		}
		slices.SortFunc(unblocked, func(a, b string) int {
			if d := l.todo.OutDegree(b) - l.todo.OutDegree(a); d != 0 {
				return d
			}
			return strings.Compare(a, b)
		})
		for _, node := range unblocked {
			if l.todo.Has(node) {
				l.addUnblockedNode(node)
			}
		}
	}
}

// addConnectedGraph places a weakly connected node set by walking its
// longest path. Before each path node is placed, all of its remaining
// ancestors are placed by recursing on them, so the path node is never
// blocked when its turn comes.
func (l *Layout) addConnectedGraph(within map[string]struct{}) {
	path, ok := l.graph.longestPathWithin(within)
	if !ok {
		return
	}
	for _, node := range path {
		if !l.todo.Has(node) {
			continue
		}
		l.addActiveUnblocked(node)
		ancestors := l.todo.ancestors(node)
		if len(ancestors) > 0 {
			ancestors[node] = struct{}{}
			l.addConnectedGraph(ancestors)
		} else {
			l.addUnblockedNode(node)
		}
	}
}

func (l *Layout) activeEndpoints() []string {
	set := make(map[string]struct{})
	for _, endpoints := range l.active {
		for node := range endpoints {
			set[node] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Rows returns the layout rows in placement order. Columns are mirrored so
// the longest chains sit on the right, where terminal rendering wants them.
func (l *Layout) Rows() []LayoutRow {
	activeOrigins := make([]string, 0, len(l.order))
	activeEdges := make(map[string]map[string]struct{})
	rows := make([]LayoutRow, 0, len(l.order))
	for _, id := range l.order {
		node, _ := l.graph.Node(id)
		row := LayoutRow{ID: id, Node: node, X: l.xMax - l.locations[id]}
		for _, origin := range activeOrigins {
			destinations := activeEdges[origin]
			if _, ok := destinations[id]; ok {
				row.Terminating = append(row.Terminating, EdgeEnd{X: l.xMax - l.locations[origin], Origin: origin})
				delete(destinations, id)
			}
			if len(destinations) > 0 {
				row.Continuing = append(row.Continuing, ActiveEdge{
					X:            l.xMax - l.locations[origin],
					Origin:       origin,
					Destinations: sortedKeys(destinations),
				})
			}
		}
		slices.SortFunc(row.Terminating, func(a, b EdgeEnd) int {
			if a.X != b.X {
				return a.X - b.X
			}
			return strings.Compare(a.Origin, b.Origin)
		})
		slices.SortFunc(row.Continuing, func(a, b ActiveEdge) int {
			if a.X != b.X {
				return a.X - b.X
			}
			return strings.Compare(a.Origin, b.Origin)
		})
		rows = append(rows, row)

		successors := l.graph.Successors(id)
		if len(successors) > 0 {
			destinations := make(map[string]struct{}, len(successors))
			for _, s := range successors {
				destinations[s] = struct{}{}
			}
			activeOrigins = append(activeOrigins, id)
			activeEdges[id] = destinations
		}
	}
	return rows
}
