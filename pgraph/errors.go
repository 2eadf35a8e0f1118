package pgraph

import "errors"

// Sentinel errors for common failure cases.
var (
	// ErrDuplicateOutput means two tasks both declare a write edge to the
	// same dataset type name.
	ErrDuplicateOutput = errors.New("duplicate output")

	// ErrIncompatibleEdge means an edge's requested storage class or
	// dimensions do not match the canonical definition of its dataset type.
	ErrIncompatibleEdge = errors.New("incompatible storage class or dimensions")

	// ErrConnectionMismatch means consuming edges disagree about whether a
	// dataset type is a prerequisite, or a task declares a produced dataset
	// type as a prerequisite.
	ErrConnectionMismatch = errors.New("inconsistent connection declarations")

	// ErrMissingDatasetType is wrapped by Registry implementations when a
	// dataset type has not been registered. Resolution tolerates it.
	ErrMissingDatasetType = errors.New("dataset type not registered")

	// ErrMalformedGraph means a structural invariant was violated, e.g. a
	// dataset-type vertex with no incident edges.
	ErrMalformedGraph = errors.New("malformed pipeline graph")

	ErrTaskAlreadyExists = errors.New("task already exists")
	ErrTaskNotFound      = errors.New("task not found")
	ErrCycleDetected     = errors.New("cycle detected in pipeline")
)
