package viz

// NodeAttributeOptions selects which node attributes participate in display:
// they are shown by renderers and compared by the merge engine when deciding
// that two nodes are isomorphic.
type NodeAttributeOptions struct {
	Dimensions     bool
	StorageClasses bool
	TaskClasses    bool
}

// Any reports whether any attribute is selected.
func (o NodeAttributeOptions) Any() bool {
	return o.Dimensions || o.StorageClasses || o.TaskClasses
}

// ExportOptions controls what an exported display graph contains.
type ExportOptions struct {
	// DatasetTypes includes dataset-type nodes. When false, the export is a
	// task-only projection: tasks are connected directly whenever one reads
	// what another writes.
	DatasetTypes bool

	// Init includes TASK_INIT nodes and their edges.
	Init bool
}
