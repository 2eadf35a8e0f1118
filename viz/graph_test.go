package viz

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestGraphBasics(t *testing.T) {
	t.Run("nodes keep insertion order", func(t *testing.T) {
		g := NewGraph()
		g.AddNode("c", taskNode("c"))
		g.AddNode("a", taskNode("a"))
		g.AddNode("b", taskNode("b"))
		assert.Equal(t, []string{"c", "a", "b"}, g.Nodes())
	})

	t.Run("edges need both endpoints", func(t *testing.T) {
		g := NewGraph()
		g.AddNode("a", taskNode("a"))
		g.AddEdge("a", "ghost")
		g.AddEdge("ghost", "a")
		assert.Equal(t, 0, g.NumEdges())
	})

	t.Run("parallel edges collapse", func(t *testing.T) {
		g := lineGraph("a->b", "a->b")
		assert.Equal(t, 1, g.NumEdges())
	})

	t.Run("remove node drops incident edges", func(t *testing.T) {
		g := lineGraph("a->b", "b->c", "a->c")
		g.RemoveNode("b")
		assert.Equal(t, 2, g.NumNodes())
		assert.Equal(t, 1, g.NumEdges())
		assert.Equal(t, []string{"c"}, g.Successors("a"))
	})

	t.Run("copy is independent", func(t *testing.T) {
		g := lineGraph("a->b")
		cp := g.Copy()
		cp.RemoveNode("a")
		assert.True(t, g.Has("a"))
		assert.Equal(t, 1, g.NumEdges())
	})
}

func TestGraphAlgorithms(t *testing.T) {
	t.Run("ancestors", func(t *testing.T) {
		g := lineGraph("a->b", "b->c", "x->c", "c->d")
		anc := g.ancestors("c")
		assert.Equal(t, 3, len(anc))
		_, hasD := anc["d"]
		assert.False(t, hasD)
	})

	t.Run("weakly connected components", func(t *testing.T) {
		g := lineGraph("a->b", "x->y")
		g.AddNode("lone", taskNode("lone"))
		components := g.weaklyConnectedComponents()
		assert.Equal(t, 3, len(components))
		assert.Equal(t, 2, len(components[0]))
		assert.Equal(t, 1, len(components[2]))
	})

	t.Run("topological order", func(t *testing.T) {
		g := lineGraph("b->c", "a->b", "a->c")
		order, ok := g.topoOrderWithin(nil)
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("topological order detects cycles", func(t *testing.T) {
		g := lineGraph("a->b", "b->a")
		_, ok := g.topoOrderWithin(nil)
		assert.False(t, ok)
	})

	t.Run("topological order restricted to a subset", func(t *testing.T) {
		g := lineGraph("a->b", "b->c", "c->a")
		// The cycle is broken once a is excluded.
		order, ok := g.topoOrderWithin(map[string]struct{}{"b": {}, "c": {}})
		assert.True(t, ok)
		assert.Equal(t, []string{"b", "c"}, order)
	})

	t.Run("longest path", func(t *testing.T) {
		g := lineGraph("a->b", "b->c", "a->c", "x->c")
		path, ok := g.longestPathWithin(nil)
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, path)
	})

	t.Run("longest path of an edgeless graph", func(t *testing.T) {
		g := NewGraph()
		g.AddNode("a", taskNode("a"))
		path, ok := g.longestPathWithin(nil)
		assert.True(t, ok)
		assert.Equal(t, []string{"a"}, path)
	})
}
