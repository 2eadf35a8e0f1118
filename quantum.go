package pipebase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DataCoordinate is a fully bound data ID: dimension name to value.
type DataCoordinate map[string]string

// Canonical returns a stable string form usable as a map key.
func (d DataCoordinate) Canonical() string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+d[k])
	}
	return strings.Join(parts, ",")
}

// DatasetRef identifies one concrete dataset: a dataset type name plus a
// fully bound data coordinate. ID is the dataset's identity in the data
// repository; a nil ID means the dataset does not exist yet and is predicted
// to be produced somewhere in the graph.
type DatasetRef struct {
	DatasetType string
	DataID      DataCoordinate
	ID          *uuid.UUID
}

// Exists reports whether the dataset is already stored in the repository.
func (r DatasetRef) Exists() bool { return r.ID != nil }

func (r DatasetRef) String() string {
	return fmt.Sprintf("%s@{%s}", r.DatasetType, r.DataID.Canonical())
}

// Quantum is one execution unit of a task: the concrete inputs it will read
// and the concrete outputs it will write. Quanta are produced by an external
// data-selection collaborator; this package only orders them.
type Quantum struct {
	TaskLabel string
	DataID    DataCoordinate
	Inputs    []DatasetRef
	Outputs   []DatasetRef
}

// TaskQuanta is the per-task group of quanta in a quantum graph, together
// with the datasets involved in constructing the task itself.
type TaskQuanta struct {
	Task   *TaskDef
	Quanta []Quantum

	// InitInputs must be loaded or created to construct the task;
	// InitOutputs may be written right after construction.
	InitInputs  []DatasetRef
	InitOutputs []DatasetRef
}

// QuantumGraph is a sequence of per-task quantum groups. The task-level
// order of the groups is usually already topological, but Traverse
// re-derives it rather than trusting the input.
type QuantumGraph struct {
	// BuildID identifies this particular graph build.
	BuildID uuid.UUID

	groups []*TaskQuanta
}

// NewQuantumGraph creates a quantum graph from per-task groups, assigning a
// fresh build ID.
func NewQuantumGraph(groups ...*TaskQuanta) *QuantumGraph {
	return &QuantumGraph{BuildID: uuid.New(), groups: groups}
}

// Groups returns the per-task groups in their stored order.
func (g *QuantumGraph) Groups() []*TaskQuanta { return g.groups }

// NumQuanta returns the total number of quanta across all tasks.
func (g *QuantumGraph) NumQuanta() int {
	n := 0
	for _, group := range g.groups {
		n += len(group.Quanta)
	}
	return n
}
