package pgraph

import (
	"errors"
	"fmt"
	"sort"
)

// DatasetTypeNode is the resolved, read-only snapshot for one dataset type
// name: the single definition consistent with every incident edge and with
// the registry, plus the flags that drive data discovery.
//
// Nodes are rebuilt whenever an incident edge changes or the registry
// definition changes, and reused unchanged otherwise.
type DatasetTypeNode struct {
	// Definition is the common definition of this dataset type for the
	// whole graph. It is always the parent dataset type, never a component.
	Definition DatasetTypeDefinition

	// IsPrerequisite is true if this dataset type must already exist in the
	// data repository before a quantum graph can be built. Prerequisites do
	// not constrain the initial data discovery query.
	IsPrerequisite bool

	// IsInitialQueryConstraint is true if this dataset type should narrow
	// the initial data discovery query. Only overall regular inputs qualify,
	// and only if no consuming edge opted out via DeferQueryConstraint.
	IsInitialQueryConstraint bool

	// registryDefinition records the registry lookup that produced this
	// node (nil if the dataset type was unregistered), so an unchanged node
	// can be reused without re-deriving anything.
	registryDefinition *DatasetTypeDefinition
}

// Name returns the dataset type name.
func (n *DatasetTypeNode) Name() string { return n.Definition.Name }

// Key returns the vertex identity of this node.
func (n *DatasetTypeNode) Key() NodeKey { return DatasetTypeKey(n.Definition.Name) }

func (n *DatasetTypeNode) String() string { return n.Definition.String() }

// resolveDatasetTypeNode builds the DatasetTypeNode for one dataset-type
// vertex from its incident edges and the registry.
//
// If the vertex is not dirty (no incident edge changed since the previous
// resolution) and the registry still reports the same definition, the
// previous node is returned as-is; registry lookups are assumed to be the
// expensive part, everything else is cheap enough to redo.
func resolveDatasetTypeNode(
	key NodeKey,
	writes []WriteEdge,
	reads []ReadEdge,
	registry Registry,
	previous *DatasetTypeNode,
	dirty bool,
) (*DatasetTypeNode, error) {
	var registryDef *DatasetTypeDefinition
	if def, err := registry.GetDatasetType(key.Name); err == nil {
		def = def.Normalize()
		registryDef = &def
	} else if !errors.Is(err, ErrMissingDatasetType) {
		return nil, fmt.Errorf("look up dataset type %q: %w", key.Name, err)
	}
	if previous != nil && !dirty && definitionPtrEqual(previous.registryDefinition, registryDef) {
		return previous, nil
	}

	if len(writes) == 0 && len(reads) == 0 {
		// Unreachable in a well-formed graph: vertices only exist while
		// they have incident edges.
		return nil, fmt.Errorf("%w: dataset type %q has no incident edges", ErrMalformedGraph, key.Name)
	}

	current := registryDef
	isInitialQueryConstraint := true
	var isPrerequisite *bool
	producer := ""
	for _, w := range writes {
		if producer != "" {
			return nil, fmt.Errorf(
				"%w: dataset type %q is produced by both %q and %q",
				ErrDuplicateOutput, key.Name, w.TaskLabel(), producer,
			)
		}
		producer = w.TaskLabel()
		resolved, err := w.resolveDatasetType(current)
		if err != nil {
			return nil, err
		}
		current = &resolved
		// Something produced in-graph can never be a prerequisite or a
		// discovery-query constraint.
		isPrerequisite = ptr(false)
		isInitialQueryConstraint = false
	}

	// Whole-dataset reads before component reads, so parent-level
	// definitions and constraints take precedence over component-only ones.
	ordered := make([]ReadEdge, len(reads))
	copy(ordered, reads)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Component == "" && ordered[j].Component != ""
	})
	var consumers []string
	for _, r := range ordered {
		resolved, err := r.resolveDatasetType(current)
		if err != nil {
			return nil, err
		}
		current = &resolved
		if producer != "" {
			if r.IsPrerequisite {
				return nil, fmt.Errorf(
					"%w: dataset type %q is produced by %q but is a prerequisite input of %q",
					ErrConnectionMismatch, key.Name, producer, r.TaskLabel(),
				)
			}
		} else {
			switch {
			case isPrerequisite == nil:
				isPrerequisite = ptr(r.IsPrerequisite)
			case *isPrerequisite != r.IsPrerequisite:
				prereqTask, regularTask := r.TaskLabel(), consumers[0]
				if !r.IsPrerequisite {
					prereqTask, regularTask = regularTask, prereqTask
				}
				return nil, fmt.Errorf(
					"%w: dataset type %q is a prerequisite input of %q but a regular input of %q",
					ErrConnectionMismatch, key.Name, prereqTask, regularTask,
				)
			}
			if r.IsPrerequisite || r.DeferQueryConstraint {
				isInitialQueryConstraint = false
			}
		}
		consumers = append(consumers, r.TaskLabel())
	}

	return &DatasetTypeNode{
		Definition:               *current,
		IsPrerequisite:           *isPrerequisite,
		IsInitialQueryConstraint: isInitialQueryConstraint,
		registryDefinition:       registryDef,
	}, nil
}

func definitionPtrEqual(a, b *DatasetTypeDefinition) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func ptr(b bool) *bool { return &b }
