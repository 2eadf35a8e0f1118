package pipebase

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMissingDependency means a quantum predicts an input that no quantum in
// the graph produces and that does not already exist in the data repository.
var ErrMissingDependency = errors.New("no producing quantum for predicted input")

// QuantumIterData is one traversal result: a quantum, its enumerated ID, the
// task it belongs to, and the IDs of the quanta whose outputs it consumes.
//
// IDs are assigned during a single traversal and are not intrinsic to the
// graph; they are only comparable within the traversal that produced them.
// Every ID in Dependencies is strictly less than QuantumID.
type QuantumIterData struct {
	QuantumID    int
	Quantum      Quantum
	Task         *TaskDef
	Dependencies []int
}

// Traversal streams the quanta of a QuantumGraph in dependency order. It is
// one-shot: re-iterating requires a new Traversal, which assigns IDs from
// scratch.
//
//	tr, err := g.Traverse()
//	for tr.Next() {
//	    data := tr.Quantum()
//	    ...
//	}
//	if err := tr.Err(); err != nil { ... }
type Traversal struct {
	groups     []*TaskQuanta
	splitGraph bool

	outputs map[outputKey]int // (dataset type, data ID) -> producing quantum ID
	gi, qi  int
	next    int

	current QuantumIterData
	err     error
}

type outputKey struct {
	datasetType string
	dataID      string
}

// Traverse orders the graph's quanta and returns a Traversal over them.
//
// The task-level order is re-derived with a topological sort rather than
// trusting the stored group order.
func (g *QuantumGraph) Traverse() (*Traversal, error) {
	pipeline := make(Pipeline, 0, len(g.groups))
	byLabel := make(map[string]*TaskQuanta, len(g.groups))
	for _, group := range g.groups {
		pipeline = append(pipeline, group.Task)
		byLabel[group.Task.Label] = group
	}
	ordered, err := OrderPipeline(pipeline)
	if err != nil {
		return nil, err
	}
	groups := make([]*TaskQuanta, 0, len(ordered))
	for _, task := range ordered {
		groups = append(groups, byLabel[task.Label])
	}
	return &Traversal{
		groups: groups,
		// Known special case, kept for compatibility: a graph holding
		// exactly one task with exactly one quantum (a "split graph")
		// tolerates predicted inputs with no producer. Never generalized
		// beyond that exact shape.
		splitGraph: len(groups) == 1 && len(groups[0].Quanta) == 1,
		outputs:    make(map[outputKey]int),
	}, nil
}

// Next advances to the next quantum. Returns false when the traversal is
// exhausted or an error occurred; check Err afterwards.
func (t *Traversal) Next() bool {
	if t.err != nil {
		return false
	}
	for t.gi < len(t.groups) {
		group := t.groups[t.gi]
		if t.qi >= len(group.Quanta) {
			t.gi++
			t.qi = 0
			continue
		}
		quantum := group.Quanta[t.qi]
		t.qi++

		var deps []int
		for _, ref := range quantum.Inputs {
			if ref.Exists() {
				// Already stored in the repository; no graph edge.
				continue
			}
			key := outputKey{ref.DatasetType, ref.DataID.Canonical()}
			producer, ok := t.outputs[key]
			if !ok {
				if t.splitGraph {
					continue
				}
				t.err = fmt.Errorf("%w: quantum of task %q needs %s",
					ErrMissingDependency, group.Task.Label, ref)
				return false
			}
			deps = append(deps, producer)
		}
		slices.Sort(deps)
		deps = slices.Compact(deps)

		for _, ref := range quantum.Outputs {
			t.outputs[outputKey{ref.DatasetType, ref.DataID.Canonical()}] = t.next
		}

		t.current = QuantumIterData{
			QuantumID:    t.next,
			Quantum:      quantum,
			Task:         group.Task,
			Dependencies: deps,
		}
		t.next++
		return true
	}
	return false
}

// Quantum returns the current traversal record. Only valid after Next
// returned true.
func (t *Traversal) Quantum() QuantumIterData { return t.current }

// Err returns the error that terminated the traversal, if any.
func (t *Traversal) Err() error { return t.err }
