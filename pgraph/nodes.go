package pgraph

import "fmt"

// NodeType represents the kind of node in a pipeline graph.
type NodeType int

const (
	NodeTypeTask NodeType = iota
	NodeTypeTaskInit
	NodeTypeDatasetType
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeTask:
		return "task"
	case NodeTypeTaskInit:
		return "task-init"
	case NodeTypeDatasetType:
		return "dataset-type"
	default:
		return "unknown"
	}
}

// NodeKey is the typed identifier for a vertex in any graph variant built by
// this package. It is a value type: two keys with the same type and name are
// the same vertex everywhere.
type NodeKey struct {
	Type NodeType
	Name string
}

// TaskKey returns the key for a task node.
func TaskKey(label string) NodeKey {
	return NodeKey{Type: NodeTypeTask, Name: label}
}

// TaskInitKey returns the key for the init counterpart of a task node.
func TaskInitKey(label string) NodeKey {
	return NodeKey{Type: NodeTypeTaskInit, Name: label}
}

// DatasetTypeKey returns the key for a dataset-type node.
func DatasetTypeKey(name string) NodeKey {
	return NodeKey{Type: NodeTypeDatasetType, Name: name}
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.Name)
}
