// Package pgraph builds and resolves the bipartite graph describing a
// data-processing pipeline: task nodes connected to dataset-type nodes by
// typed read and write edges.
//
// # Overview
//
// The graph is built incrementally from task declarations and then resolved
// against a Registry of dataset type definitions:
//
//	g := pgraph.New()
//	err := g.AddTask(&pgraph.TaskNode{
//	    Label: "calibrate",
//	    Reads: []pgraph.ReadEdge{{Connection: "exposure", DatasetType: "postISRCCD", ...}},
//	    Writes: []pgraph.WriteEdge{{Connection: "calexp", DatasetType: "calexp", ...}},
//	})
//	err = g.Resolve(registry)
//	node, ok := g.DatasetTypeNode("calexp")
//
// Resolution determines, for every dataset type name, a single definition
// consistent with the registry and with every producing and consuming edge,
// plus whether the dataset type is a prerequisite input and whether it
// constrains the initial data discovery query.
//
// # Invariants
//
//   - Every edge connects a task (or task-init) node to a dataset-type node;
//     the typed edge records make anything else unrepresentable.
//   - At most one task may write a given dataset type name; a second writer
//     fails resolution with ErrDuplicateOutput naming both tasks.
//   - Mutations invalidate only the resolutions of the dataset types whose
//     incident edges changed; everything else is reused without touching the
//     registry result again.
//
// # Error Handling
//
// All failures wrap sentinel errors (ErrDuplicateOutput,
// ErrIncompatibleEdge, ErrConnectionMismatch, ...) that can be checked with
// errors.Is. Resolve aggregates per-vertex failures with multierr so one bad
// declaration does not hide the rest.
//
// # Thread Safety
//
// PipelineGraph is NOT safe for concurrent use. Build and resolve under
// exclusive access; resolved DatasetTypeNode snapshots are immutable and may
// be shared freely.
package pgraph
