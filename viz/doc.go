// Package viz turns pipeline graphs into things people can look at.
//
// # Overview
//
// Export copies a pipeline graph into a display Graph, a plain string-keyed
// digraph that the rest of the package is free to rewrite. The merge
// functions collapse structurally interchangeable nodes so wide pipelines
// stay readable:
//
//	g := viz.Export(pipelineGraph, viz.ExportOptions{DatasetTypes: true})
//	viz.MergeInputTrees(g, options, 4)
//	viz.MergeOutputTrees(g, options, 4)
//	viz.MergeIntermediates(g, options)
//	layout := viz.NewLayout(g)
//	(&viz.Printer{Options: options}).Print(os.Stdout, layout)
//
// NewLayout assigns one row per node and a column per node such that no two
// nodes share a column while an edge is live in it. Dot renders the same
// display graph as Graphviz source instead.
//
// AnnotateStatus attaches execution progress from a StatusSource as an
// overlay keyed by display node identity; the display graph itself is never
// mutated by annotation.
//
// # Invariants
//
// Display graphs are copies. Nothing in this package reads from or writes to
// the originating PipelineGraph after Export returns.
//
// Merged nodes remember every original NodeKey they absorbed, so overlays
// and labels can always be traced back to pipeline nodes.
//
// All operations are deterministic: equal inputs produce identical node
// orders, layouts, and rendered output.
package viz
