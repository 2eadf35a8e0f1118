package pgraph

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
)

// TaskNode is the build-time representation of one processing task: its
// label, the class implementing it, its dimensions, and the edges it
// declares. Init edges belong to the task's TASK_INIT counterpart node.
type TaskNode struct {
	Label      string
	TaskClass  string
	Dimensions []string

	Reads  []ReadEdge
	Writes []WriteEdge

	InitReads  []ReadEdge
	InitWrites []WriteEdge
}

// Key returns the vertex identity of this task.
func (t *TaskNode) Key() NodeKey { return TaskKey(t.Label) }

// InitKey returns the vertex identity of this task's init node.
func (t *TaskNode) InitKey() NodeKey { return TaskInitKey(t.Label) }

// HasInit reports whether this task declares any init edges.
func (t *TaskNode) HasInit() bool {
	return len(t.InitReads) > 0 || len(t.InitWrites) > 0
}

// PipelineGraph is the mutable bipartite graph of task nodes and
// dataset-type nodes. Every edge connects a task (or task-init) node to a
// dataset-type node; that invariant holds by construction, since edges are
// typed records owned by tasks.
//
// PipelineGraph is NOT safe for concurrent use. Build and resolve it under
// exclusive access; the resolved DatasetTypeNode snapshots it hands out are
// immutable and safe to share.
type PipelineGraph struct {
	log logr.Logger

	tasks     map[string]*TaskNode
	taskOrder []string // insertion order

	// Per dataset-type vertex: incident edges, the latest resolution, and a
	// dirty flag set by every mutation that touches the vertex.
	writes   map[string][]WriteEdge
	reads    map[string][]ReadEdge
	resolved map[string]*DatasetTypeNode
	dirty    map[string]bool
}

// Option configures a PipelineGraph.
type Option func(*PipelineGraph)

// WithLogger sets the logger used for resolution events.
func WithLogger(log logr.Logger) Option {
	return func(g *PipelineGraph) {
		g.log = log
	}
}

// New creates an empty PipelineGraph.
func New(opts ...Option) *PipelineGraph {
	g := &PipelineGraph{
		log:      logr.Discard(),
		tasks:    make(map[string]*TaskNode),
		writes:   make(map[string][]WriteEdge),
		reads:    make(map[string][]ReadEdge),
		resolved: make(map[string]*DatasetTypeNode),
		dirty:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddTask adds a task and all of its declared edges to the graph,
// invalidating the resolutions of exactly the dataset types it touches.
// The task node is copied; the caller's value is not retained.
func (g *PipelineGraph) AddTask(task *TaskNode) error {
	if task.Label == "" {
		return fmt.Errorf("%w: task label must not be empty", ErrMalformedGraph)
	}
	if _, exists := g.tasks[task.Label]; exists {
		return fmt.Errorf("%w: %q", ErrTaskAlreadyExists, task.Label)
	}
	node := &TaskNode{
		Label:      task.Label,
		TaskClass:  task.TaskClass,
		Dimensions: slices.Clone(task.Dimensions),
		Reads:      normalizeReads(task.Reads, task.Key()),
		Writes:     normalizeWrites(task.Writes, task.Key()),
		InitReads:  normalizeReads(task.InitReads, task.InitKey()),
		InitWrites: normalizeWrites(task.InitWrites, task.InitKey()),
	}
	for _, e := range node.Reads {
		if err := g.checkEdgeNames(e.DatasetType, e.Connection, node.Label); err != nil {
			return err
		}
	}
	for _, e := range node.InitReads {
		if err := g.checkEdgeNames(e.DatasetType, e.Connection, node.Label); err != nil {
			return err
		}
	}
	for _, e := range node.Writes {
		if err := g.checkEdgeNames(e.DatasetType, e.Connection, node.Label); err != nil {
			return err
		}
	}
	for _, e := range node.InitWrites {
		if err := g.checkEdgeNames(e.DatasetType, e.Connection, node.Label); err != nil {
			return err
		}
	}

	g.tasks[node.Label] = node
	g.taskOrder = append(g.taskOrder, node.Label)
	for _, e := range node.Reads {
		g.addRead(e)
	}
	for _, e := range node.InitReads {
		g.addRead(e)
	}
	for _, e := range node.Writes {
		g.addWrite(e)
	}
	for _, e := range node.InitWrites {
		g.addWrite(e)
	}
	g.log.V(1).Info("task added", "label", node.Label, "reads", len(node.Reads), "writes", len(node.Writes))
	return nil
}

// RemoveTask removes a task and its edges, invalidating the resolutions of
// the dataset types it touched. Dataset-type vertices left with no incident
// edges disappear.
func (g *PipelineGraph) RemoveTask(label string) error {
	node, ok := g.tasks[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, label)
	}
	delete(g.tasks, label)
	g.taskOrder = slices.DeleteFunc(g.taskOrder, func(l string) bool { return l == label })
	for _, e := range node.Reads {
		g.removeRead(e)
	}
	for _, e := range node.InitReads {
		g.removeRead(e)
	}
	for _, e := range node.Writes {
		g.removeWrite(e)
	}
	for _, e := range node.InitWrites {
		g.removeWrite(e)
	}
	g.log.V(1).Info("task removed", "label", label)
	return nil
}

// Resolve rebuilds every dirty dataset-type node against the registry and
// re-checks clean ones against the registry's current definitions. Failures
// are aggregated so a single bad declaration does not mask the others.
func (g *PipelineGraph) Resolve(registry Registry) error {
	names := maps.Keys(g.dirty)
	for name := range g.resolved {
		if !g.dirty[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	var errs error
	resolvedCount := 0
	for _, name := range names {
		node, err := resolveDatasetTypeNode(
			DatasetTypeKey(name), g.writes[name], g.reads[name], registry, g.resolved[name], g.dirty[name],
		)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if node != g.resolved[name] {
			resolvedCount++
		}
		g.resolved[name] = node
		delete(g.dirty, name)
	}
	if errs != nil {
		return errs
	}
	g.log.V(1).Info("graph resolved", "datasetTypes", len(g.resolved), "rebuilt", resolvedCount)
	return nil
}

// IsResolved reports whether every dataset-type vertex has a current
// resolution.
func (g *PipelineGraph) IsResolved() bool {
	return len(g.dirty) == 0
}

// Task returns the task with the given label.
func (g *PipelineGraph) Task(label string) (*TaskNode, bool) {
	t, ok := g.tasks[label]
	return t, ok
}

// Tasks returns all task nodes in insertion order.
func (g *PipelineGraph) Tasks() []*TaskNode {
	out := make([]*TaskNode, 0, len(g.taskOrder))
	for _, label := range g.taskOrder {
		out = append(out, g.tasks[label])
	}
	return out
}

// DatasetTypeNode returns the resolved node for a dataset type name, if the
// vertex exists and has been resolved since it was last touched.
func (g *PipelineGraph) DatasetTypeNode(name string) (*DatasetTypeNode, bool) {
	if g.dirty[name] {
		return nil, false
	}
	n, ok := g.resolved[name]
	return n, ok
}

// DatasetTypeNodes returns all resolved dataset-type nodes sorted by name.
func (g *PipelineGraph) DatasetTypeNodes() []*DatasetTypeNode {
	names := maps.Keys(g.resolved)
	slices.Sort(names)
	out := make([]*DatasetTypeNode, 0, len(names))
	for _, name := range names {
		if !g.dirty[name] {
			out = append(out, g.resolved[name])
		}
	}
	return out
}

// DatasetTypeNames returns the names of all dataset-type vertices, resolved
// or not, sorted.
func (g *PipelineGraph) DatasetTypeNames() []string {
	seen := make(map[string]struct{}, len(g.writes)+len(g.reads))
	for name := range g.writes {
		seen[name] = struct{}{}
	}
	for name := range g.reads {
		seen[name] = struct{}{}
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}

// Producer returns the label of the task writing the given dataset type.
func (g *PipelineGraph) Producer(name string) (string, bool) {
	writes := g.writes[name]
	if len(writes) == 0 {
		return "", false
	}
	return writes[0].TaskLabel(), true
}

// Consumers returns the labels of tasks reading the given dataset type, in
// sorted order without duplicates.
func (g *PipelineGraph) Consumers(name string) []string {
	var labels []string
	for _, e := range g.reads[name] {
		labels = append(labels, e.TaskLabel())
	}
	slices.Sort(labels)
	return slices.Compact(labels)
}

// ReadEdges returns the read edges incident to a dataset-type vertex.
func (g *PipelineGraph) ReadEdges(name string) []ReadEdge {
	return slices.Clone(g.reads[name])
}

// WriteEdges returns the write edges incident to a dataset-type vertex.
func (g *PipelineGraph) WriteEdges(name string) []WriteEdge {
	return slices.Clone(g.writes[name])
}

func (g *PipelineGraph) addRead(e ReadEdge) {
	g.reads[e.DatasetType] = append(g.reads[e.DatasetType], e)
	g.dirty[e.DatasetType] = true
}

func (g *PipelineGraph) addWrite(e WriteEdge) {
	g.writes[e.DatasetType] = append(g.writes[e.DatasetType], e)
	g.dirty[e.DatasetType] = true
}

func (g *PipelineGraph) removeRead(e ReadEdge) {
	g.reads[e.DatasetType] = slices.DeleteFunc(g.reads[e.DatasetType], func(o ReadEdge) bool {
		return o.Task == e.Task && o.Connection == e.Connection
	})
	g.vertexTouched(e.DatasetType)
}

func (g *PipelineGraph) removeWrite(e WriteEdge) {
	g.writes[e.DatasetType] = slices.DeleteFunc(g.writes[e.DatasetType], func(o WriteEdge) bool {
		return o.Task == e.Task && o.Connection == e.Connection
	})
	g.vertexTouched(e.DatasetType)
}

func (g *PipelineGraph) vertexTouched(name string) {
	if len(g.reads[name]) == 0 && len(g.writes[name]) == 0 {
		delete(g.reads, name)
		delete(g.writes, name)
		delete(g.resolved, name)
		delete(g.dirty, name)
		return
	}
	g.dirty[name] = true
}

func (g *PipelineGraph) checkEdgeNames(datasetType, connection, label string) error {
	if datasetType == "" {
		return fmt.Errorf("%w: connection %q of task %q names no dataset type",
			ErrMalformedGraph, connection, label)
	}
	if connection == "" {
		return fmt.Errorf("%w: task %q declares a connection with no name",
			ErrMalformedGraph, label)
	}
	return nil
}

func normalizeReads(edges []ReadEdge, owner NodeKey) []ReadEdge {
	out := make([]ReadEdge, len(edges))
	for i, e := range edges {
		e.Task = owner
		e.Dimensions = DatasetTypeDefinition{Dimensions: e.Dimensions}.Normalize().Dimensions
		out[i] = e
	}
	return out
}

func normalizeWrites(edges []WriteEdge, owner NodeKey) []WriteEdge {
	out := make([]WriteEdge, len(edges))
	for i, e := range edges {
		e.Task = owner
		e.Dimensions = DatasetTypeDefinition{Dimensions: e.Dimensions}.Normalize().Dimensions
		out[i] = e
	}
	return out
}
