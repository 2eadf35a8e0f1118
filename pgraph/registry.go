package pgraph

import (
	"fmt"
	"slices"
	"strings"
)

// DatasetTypeDefinition is the canonical description of a dataset type: its
// name, the dimensions that identify a single dataset, and the storage class
// used to read and write it.
type DatasetTypeDefinition struct {
	Name         string
	Dimensions   []string
	StorageClass string
}

// Normalize returns a copy with sorted, deduplicated dimensions. All
// definitions stored by this package are normalized, so Equal can compare
// dimension slices directly.
func (d DatasetTypeDefinition) Normalize() DatasetTypeDefinition {
	dims := slices.Clone(d.Dimensions)
	slices.Sort(dims)
	dims = slices.Compact(dims)
	d.Dimensions = dims
	return d
}

// Equal reports whether two normalized definitions are identical.
func (d DatasetTypeDefinition) Equal(other DatasetTypeDefinition) bool {
	return d.Name == other.Name &&
		d.StorageClass == other.StorageClass &&
		slices.Equal(d.Dimensions, other.Dimensions)
}

func (d DatasetTypeDefinition) String() string {
	return fmt.Sprintf("%s (%s, {%s})", d.Name, d.StorageClass, strings.Join(d.Dimensions, ", "))
}

// Registry supplies externally registered dataset type definitions. It is the
// only view of the data repository this package consumes; implementations
// typically wrap a persistent store.
type Registry interface {
	// GetDatasetType returns the registered definition for name, or an error
	// wrapping ErrMissingDatasetType if the name has not been registered yet.
	// A missing registration is not fatal: resolution falls back to the
	// definitions declared by producing and consuming tasks.
	GetDatasetType(name string) (DatasetTypeDefinition, error)
}

// MapRegistry is an in-memory Registry backed by a plain map. Useful for
// tests and for tools that load definitions from a file.
type MapRegistry struct {
	defs map[string]DatasetTypeDefinition
}

// NewMapRegistry creates a MapRegistry holding the given definitions.
func NewMapRegistry(defs ...DatasetTypeDefinition) *MapRegistry {
	r := &MapRegistry{defs: make(map[string]DatasetTypeDefinition, len(defs))}
	for _, d := range defs {
		r.defs[d.Name] = d.Normalize()
	}
	return r
}

// Register adds or replaces a definition.
func (r *MapRegistry) Register(d DatasetTypeDefinition) {
	r.defs[d.Name] = d.Normalize()
}

func (r *MapRegistry) GetDatasetType(name string) (DatasetTypeDefinition, error) {
	d, ok := r.defs[name]
	if !ok {
		return DatasetTypeDefinition{}, fmt.Errorf("%w: %q", ErrMissingDatasetType, name)
	}
	return d, nil
}
