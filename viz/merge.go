package viz

import (
	"slices"
	"strings"

	"github.com/LSST/pipe-base/pgraph"
)

// MergedNodeKey is the set of original NodeKeys collapsed into one display
// node. It only ever appears in display graphs, never in the authoritative
// PipelineGraph.
type MergedNodeKey []pgraph.NodeKey

func (k MergedNodeKey) String() string {
	names := make([]string, len(k))
	for i, m := range k {
		names[i] = m.Name
	}
	slices.Sort(names)
	slices.Reverse(names)
	return strings.Join(names, ", ")
}

// mergeKey is the structure-and-attribute signature that decides two nodes
// are isomorphic for display collapsing. All set-valued parts are stored as
// canonical sorted strings so the key itself is comparable.
type mergeKey struct {
	nodeType     pgraph.NodeType
	parents      string
	dimensions   string
	storageClass string
	taskClass    string
	children     string
}

// signature is the canonical string form of a key, used when a key becomes a
// member of another key's children set.
func (k mergeKey) signature() string {
	return strings.Join([]string{
		k.nodeType.String(), k.parents, k.dimensions, k.storageClass, k.taskClass, k.children,
	}, "\x1e")
}

func makeMergeKey(node *Node, parents, childSigs []string, options NodeAttributeOptions) mergeKey {
	k := mergeKey{
		nodeType: node.Type,
		parents:  canonicalSet(parents),
		children: canonicalSet(childSigs),
	}
	if options.Dimensions {
		k.dimensions = node.Dimensions
	}
	if options.StorageClasses {
		k.storageClass = node.StorageClass
	}
	if options.TaskClasses {
		k.taskClass = node.TaskClass
	}
	return k
}

func canonicalSet(members []string) string {
	s := slices.Clone(members)
	slices.Sort(s)
	s = slices.Compact(s)
	return strings.Join(s, "\x1f")
}

// MergeIntermediates collapses interchangeable intermediate nodes: every
// node with at least one parent and at least one child that shares an
// identical (parent-set, child-set, compared-attributes) signature with a
// sibling is grouped with those siblings into one merged node. External
// edges are preserved in aggregate.
func MergeIntermediates(g *Graph, options NodeAttributeOptions) {
	type group struct {
		parents  []string
		children []string
		members  []string
	}
	groups := make(map[mergeKey]*group)
	var order []mergeKey
	for _, id := range g.Nodes() {
		node := g.nodes[id]
		parents := g.Predecessors(id)
		children := g.Successors(id)
		if len(parents) == 0 || len(children) == 0 {
			continue
		}
		k := makeMergeKey(node, parents, children, options)
		k.children = canonicalSet(children)
		grp, ok := groups[k]
		if !ok {
			grp = &group{parents: parents, children: children}
			groups[k] = grp
			order = append(order, k)
		}
		grp.members = append(grp.members, id)
	}

	replacements := make(map[string]string)
	for _, k := range order {
		grp := groups[k]
		if len(grp.members) < 2 {
			continue
		}
		mid, merged := newMergedNode(g, grp.members, k)
		g.AddNode(mid, merged)
		for _, p := range grp.parents {
			g.AddEdge(replaceID(replacements, p), mid)
		}
		for _, c := range grp.children {
			g.AddEdge(mid, replaceID(replacements, c))
		}
		for _, m := range grp.members {
			replacements[m] = mid
		}
		for _, m := range grp.members {
			g.RemoveNode(m)
		}
	}
}

// MergeInputTrees collapses isomorphic input trees: starting from sourceless
// nodes, nodes are grouped level by level using a signature of their
// consumers, their already-grouped children, and the compared attributes, up
// to the given maximum tree depth.
func MergeInputTrees(g *Graph, options NodeAttributeOptions, depth int) {
	applyTreeMerges(g, makeTreeMergeGroups(g, options, depth, false))
}

// MergeOutputTrees is MergeInputTrees on the reversed graph: it collapses
// isomorphic output trees hanging off sinkless nodes.
func MergeOutputTrees(g *Graph, options NodeAttributeOptions, depth int) {
	applyTreeMerges(g, makeTreeMergeGroups(g, options, depth, true))
}

type treeGroup struct {
	key     mergeKey
	parents []string
	members []string
}

type treeLevel struct {
	groups map[mergeKey]*treeGroup
	order  []mergeKey
}

func newTreeLevel() *treeLevel {
	return &treeLevel{groups: make(map[mergeKey]*treeGroup)}
}

func (l *treeLevel) add(k mergeKey, node string, parents []string) {
	grp, ok := l.groups[k]
	if !ok {
		grp = &treeGroup{key: k, parents: parents}
		l.groups[k] = grp
		l.order = append(l.order, k)
	}
	grp.members = append(grp.members, node)
}

// makeTreeMergeGroups groups trees of nodes by merge key, one level map per
// tree depth. Merge keys are built bottom-up: a root's key includes the keys
// of the subtrees under it, so nested isomorphic subtrees group in one pass.
func makeTreeMergeGroups(g *Graph, options NodeAttributeOptions, depth int, reversed bool) []*treeLevel {
	rootDegree := g.InDegree
	up := g.Successors
	if reversed {
		rootDegree = g.OutDegree
		up = g.Predecessors
	}

	levels := []*treeLevel{newTreeLevel()} // index 0: empty, for 0-depth trees
	if depth == 0 {
		return levels
	}

	// Candidates are potential tree roots, each with the merge keys of the
	// subtree roots directly under it. The initial candidates are the nodes
	// with no predecessors (in the working orientation); single nodes are
	// trivially trees.
	current := make(map[string]map[string]mergeKey)
	for _, id := range g.Nodes() {
		if rootDegree(id) == 0 {
			current[id] = nil
		}
	}

	for len(current) > 0 {
		next := make(map[string]map[string]mergeKey)
		// Nodes one level up that are not tree roots because some node has
		// both them and another node as a consumer.
		nontrees := make(map[string]struct{})
		level := newTreeLevel()
		for _, node := range sortedCandidates(current) {
			children := current[node]
			parents := up(node)
			childSigs := make([]string, 0, len(children))
			for _, ck := range children {
				childSigs = append(childSigs, ck.signature())
			}
			k := makeMergeKey(g.nodes[node], parents, childSigs, options)
			level.add(k, node, parents)
			if len(levels) <= depth {
				if len(parents) == 1 {
					sub := k
					sub.parents = ""
					parent := parents[0]
					if next[parent] == nil {
						next[parent] = make(map[string]mergeKey)
					}
					next[parent][node] = sub
				} else {
					for _, p := range parents {
						nontrees[p] = struct{}{}
					}
				}
			}
		}
		levels = append(levels, level)
		for p := range nontrees {
			delete(next, p)
		}
		current = next
	}
	return levels
}

// applyTreeMerges rewrites the graph according to the grouped levels,
// deepest trees first, so that a merged root becomes the shared parent its
// children group under. Each member resolves to its eventual merged
// identity before edges are re-derived; stale edges disappear with the
// replaced nodes at the end.
func applyTreeMerges(g *Graph, levels []*treeLevel) {
	replacements := make(map[string]string)
	for i := len(levels) - 1; i >= 0; i-- {
		level := levels[i]
		regrouped := newTreeLevel()
		for _, k := range level.order {
			grp := level.groups[k]
			rp := make([]string, len(grp.parents))
			changed := false
			for j, p := range grp.parents {
				if r, ok := replacements[p]; ok {
					rp[j] = r
					changed = true
				} else {
					rp[j] = p
				}
			}
			nk := k
			if changed {
				nk.parents = canonicalSet(rp)
			}
			if existing, ok := regrouped.groups[nk]; ok {
				existing.members = append(existing.members, grp.members...)
			} else {
				regrouped.add(nk, "", rp)
				regrouped.groups[nk].members = slices.Clone(grp.members)
			}
		}
		for _, k := range regrouped.order {
			grp := regrouped.groups[k]
			if len(grp.members) < 2 {
				continue
			}
			mid, merged := newMergedNode(g, grp.members, k)
			for _, m := range grp.members {
				replacements[m] = mid
			}
			type edge struct{ from, to string }
			newEdges := make(map[edge]struct{})
			for _, m := range grp.members {
				for _, p := range g.Predecessors(m) {
					newEdges[edge{replaceID(replacements, p), replaceID(replacements, m)}] = struct{}{}
				}
				for _, c := range g.Successors(m) {
					newEdges[edge{replaceID(replacements, m), replaceID(replacements, c)}] = struct{}{}
				}
			}
			g.AddNode(mid, merged)
			edges := make([]edge, 0, len(newEdges))
			for e := range newEdges {
				edges = append(edges, e)
			}
			slices.SortFunc(edges, func(a, b edge) int {
				if a.from != b.from {
					return strings.Compare(a.from, b.from)
				}
				return strings.Compare(a.to, b.to)
			})
			for _, e := range edges {
				g.AddEdge(e.from, e.to)
			}
		}
	}
	for m := range replacements {
		g.RemoveNode(m)
	}
}

// newMergedNode builds the display node for a group of members: its key set
// is the union of the members' key sets, and only the compared attributes
// survive onto the merged node.
func newMergedNode(g *Graph, members []string, k mergeKey) (string, *Node) {
	var keys MergedNodeKey
	for _, m := range members {
		if node, ok := g.Node(m); ok {
			keys = append(keys, node.Keys...)
		}
	}
	slices.SortFunc(keys, func(a, b pgraph.NodeKey) int { return strings.Compare(a.Name, b.Name) })
	ids := slices.Clone(members)
	slices.Sort(ids)
	return strings.Join(ids, "|"), &Node{
		Keys:         keys,
		Type:         k.nodeType,
		Dimensions:   k.dimensions,
		StorageClass: k.storageClass,
		TaskClass:    k.taskClass,
	}
}

func replaceID(replacements map[string]string, id string) string {
	if r, ok := replacements[id]; ok {
		return r
	}
	return id
}

func sortedCandidates(m map[string]map[string]mergeKey) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
