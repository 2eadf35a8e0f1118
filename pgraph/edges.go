package pgraph

import (
	"fmt"
	"slices"
)

// WriteEdge is an immutable record of a task producing a dataset type. The
// edge is owned by the task node that declares it; the dataset-type vertex
// only ever sees zero or one of these.
type WriteEdge struct {
	// Task is the task or task-init node that owns this edge.
	Task NodeKey

	// Connection is the task-local role name of this output.
	Connection string

	// DatasetType is the name of the produced dataset type.
	DatasetType string

	// StorageClass and Dimensions are the definition the task declares for
	// the dataset type it writes.
	StorageClass string
	Dimensions   []string
}

// TaskLabel returns the label of the declaring task.
func (e WriteEdge) TaskLabel() string { return e.Task.Name }

// Key returns the dataset-type vertex this edge points to.
func (e WriteEdge) Key() NodeKey { return DatasetTypeKey(e.DatasetType) }

func (e WriteEdge) declared() DatasetTypeDefinition {
	return DatasetTypeDefinition{
		Name:         e.DatasetType,
		Dimensions:   e.Dimensions,
		StorageClass: e.StorageClass,
	}.Normalize()
}

// resolveDatasetType reconciles this edge's declared definition with the
// current candidate definition (from the registry, if registered). A write
// edge may define the dataset type when nothing else has; once a definition
// exists it must match exactly.
func (e WriteEdge) resolveDatasetType(current *DatasetTypeDefinition) (DatasetTypeDefinition, error) {
	declared := e.declared()
	if current == nil {
		return declared, nil
	}
	if err := checkCompatible(*current, declared, e.Task, e.Connection); err != nil {
		return DatasetTypeDefinition{}, err
	}
	return *current, nil
}

// ReadEdge is an immutable record of a task consuming a dataset type, or a
// component of one.
type ReadEdge struct {
	// Task is the task or task-init node that owns this edge.
	Task NodeKey

	// Connection is the task-local role name of this input.
	Connection string

	// DatasetType is the parent dataset type name; Component, if non-empty,
	// names the sub-part of it this edge actually reads.
	DatasetType string
	Component   string

	// StorageClass and Dimensions are the definition the task expects.
	StorageClass string
	Dimensions   []string

	// IsPrerequisite marks an input that must already exist in the data
	// repository and is excluded from the initial data discovery query.
	IsPrerequisite bool

	// DeferQueryConstraint opts this dataset type out of being used as a
	// constraint in the initial data discovery query. A single opt-out by
	// any consumer disables the constraint for everyone.
	DeferQueryConstraint bool

	// ManualLoad marks an input the task loads itself instead of having the
	// execution harness load it.
	ManualLoad bool
}

// TaskLabel returns the label of the declaring task.
func (e ReadEdge) TaskLabel() string { return e.Task.Name }

// Key returns the dataset-type vertex this edge points to. Components never
// get their own vertex; the edge attaches to the parent dataset type.
func (e ReadEdge) Key() NodeKey { return DatasetTypeKey(e.DatasetType) }

func (e ReadEdge) declared() DatasetTypeDefinition {
	return DatasetTypeDefinition{
		Name:         e.DatasetType,
		Dimensions:   e.Dimensions,
		StorageClass: e.StorageClass,
	}.Normalize()
}

// resolveDatasetType reconciles this edge with the current candidate
// definition. Whole-dataset reads are processed before component reads, so a
// component edge that finds a definition in place never overrides it; its
// dimensions still have to agree with the parent's.
func (e ReadEdge) resolveDatasetType(current *DatasetTypeDefinition) (DatasetTypeDefinition, error) {
	declared := e.declared()
	if current == nil {
		return declared, nil
	}
	if !slices.Equal(current.Dimensions, declared.Dimensions) {
		return DatasetTypeDefinition{}, fmt.Errorf(
			"%w: %s of %s requests dimensions {%v} for dataset type %q, which is defined with {%v}",
			ErrIncompatibleEdge, e.Connection, e.Task, declared.Dimensions, e.DatasetType, current.Dimensions,
		)
	}
	// A component read names the component's storage class, not the
	// parent's; only whole-dataset reads constrain the parent storage class.
	if e.Component == "" && current.StorageClass != declared.StorageClass {
		return DatasetTypeDefinition{}, fmt.Errorf(
			"%w: %s of %s requests storage class %q for dataset type %q, which is defined with %q",
			ErrIncompatibleEdge, e.Connection, e.Task, declared.StorageClass, e.DatasetType, current.StorageClass,
		)
	}
	return *current, nil
}

func checkCompatible(current, declared DatasetTypeDefinition, task NodeKey, connection string) error {
	if !slices.Equal(current.Dimensions, declared.Dimensions) {
		return fmt.Errorf(
			"%w: %s of %s declares dimensions {%v} for dataset type %q, which is defined with {%v}",
			ErrIncompatibleEdge, connection, task, declared.Dimensions, declared.Name, current.Dimensions,
		)
	}
	if current.StorageClass != declared.StorageClass {
		return fmt.Errorf(
			"%w: %s of %s declares storage class %q for dataset type %q, which is defined with %q",
			ErrIncompatibleEdge, connection, task, declared.StorageClass, declared.Name, current.StorageClass,
		)
	}
	return nil
}
