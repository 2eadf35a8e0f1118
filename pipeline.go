package pipebase

import (
	"fmt"

	"github.com/LSST/pipe-base/pgraph"
)

// TaskDef describes one processing task in a pipeline: its label, the class
// implementing it, its dimensions, and its connection schema. TaskDefs are
// supplied by the configuration layer; this package only consumes them.
type TaskDef struct {
	Label       string
	TaskClass   string
	Dimensions  []string
	Connections ConnectionSet
}

func (t *TaskDef) String() string {
	return fmt.Sprintf("%s (%s)", t.Label, t.TaskClass)
}

// node converts the definition into a pgraph task node.
func (t *TaskDef) node() (*pgraph.TaskNode, error) {
	if err := t.Connections.Validate(); err != nil {
		return nil, fmt.Errorf("task %q: %w", t.Label, err)
	}
	node := &pgraph.TaskNode{
		Label:      t.Label,
		TaskClass:  t.TaskClass,
		Dimensions: t.Dimensions,
	}
	for _, in := range t.Connections.Inputs {
		node.Reads = append(node.Reads, readEdge(in, false))
	}
	for _, in := range t.Connections.PrerequisiteInputs {
		node.Reads = append(node.Reads, readEdge(in, true))
	}
	for _, out := range t.Connections.Outputs {
		node.Writes = append(node.Writes, writeEdge(out))
	}
	for _, in := range t.Connections.InitInputs {
		node.InitReads = append(node.InitReads, readEdge(in, false))
	}
	for _, out := range t.Connections.InitOutputs {
		node.InitWrites = append(node.InitWrites, writeEdge(out))
	}
	return node, nil
}

// Pipeline is an ordered sequence of task definitions.
type Pipeline []*TaskDef

// Graph builds the bipartite pipeline graph for these tasks. The graph is
// returned unresolved; call Resolve with a registry to finish it.
func (p Pipeline) Graph(opts ...pgraph.Option) (*pgraph.PipelineGraph, error) {
	g := pgraph.New(opts...)
	for _, task := range p {
		node, err := task.node()
		if err != nil {
			return nil, err
		}
		if err := g.AddTask(node); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// OrderPipeline returns a copy of the pipeline with tasks in dependency
// order: every producer before its consumers. The relative order of
// independent tasks is deterministic but otherwise unspecified.
func OrderPipeline(p Pipeline) (Pipeline, error) {
	g, err := p.Graph()
	if err != nil {
		return nil, err
	}
	order, err := g.TaskOrder()
	if err != nil {
		return nil, err
	}
	byLabel := make(map[string]*TaskDef, len(p))
	for _, task := range p {
		byLabel[task.Label] = task
	}
	out := make(Pipeline, 0, len(p))
	for _, label := range order {
		out = append(out, byLabel[label])
	}
	return out, nil
}
