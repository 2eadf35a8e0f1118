package pipebase

import (
	"fmt"
)

// MultiplicityKind tags the variants of Multiplicity.
type MultiplicityKind int

const (
	// MultiplicityScalar means exactly one dataset (or zero, if optional).
	MultiplicityScalar MultiplicityKind = iota
	// MultiplicitySequence means a bounded list of datasets.
	MultiplicitySequence
)

// Multiplicity describes how many datasets a connection binds per quantum.
// It is a tagged variant rather than a class hierarchy: Check and Adapt are
// plain functions over the variant.
type Multiplicity struct {
	Kind     MultiplicityKind
	Optional bool // scalar only
	Min, Max int  // sequence only; Max <= 0 means unbounded
}

// Scalar returns a scalar multiplicity.
func Scalar(optional bool) Multiplicity {
	return Multiplicity{Kind: MultiplicityScalar, Optional: optional}
}

// Sequence returns a sequence multiplicity with inclusive bounds.
// Pass max <= 0 for no upper bound.
func Sequence(min, max int) Multiplicity {
	return Multiplicity{Kind: MultiplicitySequence, Min: min, Max: max}
}

// Check verifies that n datasets satisfy this multiplicity.
func (m Multiplicity) Check(n int) error {
	switch m.Kind {
	case MultiplicityScalar:
		if n == 0 && m.Optional {
			return nil
		}
		if n != 1 {
			return fmt.Errorf("expected a single dataset, got %d", n)
		}
		return nil
	case MultiplicitySequence:
		if n < m.Min {
			return fmt.Errorf("expected at least %d datasets, got %d", m.Min, n)
		}
		if m.Max > 0 && n > m.Max {
			return fmt.Errorf("expected at most %d datasets, got %d", m.Max, n)
		}
		return nil
	default:
		return fmt.Errorf("unknown multiplicity kind %d", m.Kind)
	}
}

// Adapt validates refs against this multiplicity and returns them in the
// shape callers should consume: a scalar yields at most one element.
func (m Multiplicity) Adapt(refs []DatasetRef) ([]DatasetRef, error) {
	if err := m.Check(len(refs)); err != nil {
		return nil, err
	}
	return refs, nil
}

func (m Multiplicity) String() string {
	switch m.Kind {
	case MultiplicityScalar:
		if m.Optional {
			return "scalar?"
		}
		return "scalar"
	case MultiplicitySequence:
		if m.Max > 0 {
			return fmt.Sprintf("sequence[%d..%d]", m.Min, m.Max)
		}
		return fmt.Sprintf("sequence[%d..]", m.Min)
	default:
		return "unknown"
	}
}
