package pipebase

import (
	"fmt"

	"github.com/LSST/pipe-base/pgraph"
)

// Input declares one named input role of a task: which dataset type it
// reads, what definition it expects, and how it participates in data
// discovery.
type Input struct {
	// Name is the task-local role name.
	Name string

	// DatasetType is the parent dataset type name; Component, if set, names
	// the sub-part of it actually read.
	DatasetType string
	Component   string

	StorageClass string
	Dimensions   []string

	Multiplicity Multiplicity

	// DeferQueryConstraint opts the dataset type out of constraining the
	// initial data discovery query, for every consumer.
	DeferQueryConstraint bool

	// ManualLoad marks an input the task loads itself.
	ManualLoad bool
}

// Output declares one named output role of a task.
type Output struct {
	Name string

	DatasetType  string
	StorageClass string
	Dimensions   []string

	Multiplicity Multiplicity
}

// ConnectionSet is the explicit, enumerated schema of a task's edges. It is
// built at task-definition time; nothing is discovered reflectively.
type ConnectionSet struct {
	Inputs             []Input
	PrerequisiteInputs []Input
	Outputs            []Output

	// Init connections attach to the task's TASK_INIT node: datasets needed
	// to construct the task and datasets written right after construction.
	InitInputs  []Input
	InitOutputs []Output
}

// Validate checks that role names are unique within the task and that every
// connection names a dataset type.
func (c ConnectionSet) Validate() error {
	seen := make(map[string]struct{})
	check := func(name, datasetType string) error {
		if name == "" {
			return fmt.Errorf("connection with dataset type %q has no role name", datasetType)
		}
		if datasetType == "" {
			return fmt.Errorf("connection %q names no dataset type", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate connection name %q", name)
		}
		seen[name] = struct{}{}
		return nil
	}
	for _, in := range c.Inputs {
		if err := check(in.Name, in.DatasetType); err != nil {
			return err
		}
	}
	for _, in := range c.PrerequisiteInputs {
		if err := check(in.Name, in.DatasetType); err != nil {
			return err
		}
		if in.DeferQueryConstraint {
			return fmt.Errorf("prerequisite input %q cannot defer a query constraint it never imposes", in.Name)
		}
	}
	for _, out := range c.Outputs {
		if err := check(out.Name, out.DatasetType); err != nil {
			return err
		}
	}
	for _, in := range c.InitInputs {
		if err := check(in.Name, in.DatasetType); err != nil {
			return err
		}
	}
	for _, out := range c.InitOutputs {
		if err := check(out.Name, out.DatasetType); err != nil {
			return err
		}
	}
	return nil
}

func readEdge(in Input, prerequisite bool) pgraph.ReadEdge {
	return pgraph.ReadEdge{
		Connection:           in.Name,
		DatasetType:          in.DatasetType,
		Component:            in.Component,
		StorageClass:         in.StorageClass,
		Dimensions:           in.Dimensions,
		IsPrerequisite:       prerequisite,
		DeferQueryConstraint: in.DeferQueryConstraint,
		ManualLoad:           in.ManualLoad,
	}
}

func writeEdge(out Output) pgraph.WriteEdge {
	return pgraph.WriteEdge{
		Connection:   out.Name,
		DatasetType:  out.DatasetType,
		StorageClass: out.StorageClass,
		Dimensions:   out.Dimensions,
	}
}
