package viz

import (
	"strings"

	"github.com/LSST/pipe-base/pgraph"
)

// Export copies a pipeline graph into a display graph. The copy is
// independent: merging and layout never touch the source.
//
// Dataset-type attributes come from the resolved nodes where available;
// unresolved vertices export with the attributes left empty.
func Export(pg *pgraph.PipelineGraph, opts ExportOptions) *Graph {
	g := NewGraph()

	keyOf := func(k pgraph.NodeKey) string { return k.String() }

	for _, task := range pg.Tasks() {
		g.AddNode(keyOf(task.Key()), &Node{
			Keys:       []pgraph.NodeKey{task.Key()},
			Type:       pgraph.NodeTypeTask,
			Dimensions: strings.Join(task.Dimensions, ", "),
			TaskClass:  task.TaskClass,
		})
		if opts.Init && task.HasInit() {
			g.AddNode(keyOf(task.InitKey()), &Node{
				Keys:      []pgraph.NodeKey{task.InitKey()},
				Type:      pgraph.NodeTypeTaskInit,
				TaskClass: task.TaskClass,
			})
			// The init node always precedes its task.
			g.AddEdge(keyOf(task.InitKey()), keyOf(task.Key()))
		}
	}

	if opts.DatasetTypes {
		for _, name := range pg.DatasetTypeNames() {
			node := &Node{
				Keys: []pgraph.NodeKey{pgraph.DatasetTypeKey(name)},
				Type: pgraph.NodeTypeDatasetType,
			}
			if resolved, ok := pg.DatasetTypeNode(name); ok {
				node.Dimensions = strings.Join(resolved.Definition.Dimensions, ", ")
				node.StorageClass = resolved.Definition.StorageClass
			}
			g.AddNode(keyOf(pgraph.DatasetTypeKey(name)), node)
		}
		for _, name := range pg.DatasetTypeNames() {
			dt := keyOf(pgraph.DatasetTypeKey(name))
			for _, w := range pg.WriteEdges(name) {
				if includeTaskKey(w.Task, opts) {
					g.AddEdge(keyOf(w.Task), dt)
				}
			}
			for _, r := range pg.ReadEdges(name) {
				if includeTaskKey(r.Task, opts) {
					g.AddEdge(dt, keyOf(r.Task))
				}
			}
		}
		return g
	}

	// Task-only projection: connect producer directly to consumers.
	for _, name := range pg.DatasetTypeNames() {
		for _, w := range pg.WriteEdges(name) {
			if !includeTaskKey(w.Task, opts) {
				continue
			}
			for _, r := range pg.ReadEdges(name) {
				if includeTaskKey(r.Task, opts) && w.Task != r.Task {
					g.AddEdge(keyOf(w.Task), keyOf(r.Task))
				}
			}
		}
	}
	return g
}

func includeTaskKey(k pgraph.NodeKey, opts ExportOptions) bool {
	return k.Type == pgraph.NodeTypeTask || opts.Init
}
