package pgraph

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// TaskOrder returns task labels in a deterministic topological order of the
// task-level graph: task A precedes task B whenever B reads something A
// writes (init edges included, attributed to their owning task).
//
// Uses Kahn's algorithm with a sorted queue so that the order is stable
// across runs. Returns ErrCycleDetected if the tasks cannot be ordered.
func (g *PipelineGraph) TaskOrder() ([]string, error) {
	successors := make(map[string]map[string]struct{}, len(g.tasks))
	inDegree := make(map[string]int, len(g.tasks))
	for label := range g.tasks {
		successors[label] = make(map[string]struct{})
		inDegree[label] = 0
	}
	for name, writes := range g.writes {
		for _, w := range writes {
			producer := w.TaskLabel()
			for _, r := range g.reads[name] {
				consumer := r.TaskLabel()
				if consumer == producer {
					continue
				}
				if _, dup := successors[producer][consumer]; !dup {
					successors[producer][consumer] = struct{}{}
					inDegree[consumer]++
				}
			}
		}
	}

	queue := make([]string, 0, len(g.tasks))
	for label, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, label)
		}
	}
	slices.Sort(queue)

	result := make([]string, 0, len(g.tasks))
	for len(queue) > 0 {
		label := queue[0]
		queue = queue[1:]
		result = append(result, label)

		children := maps.Keys(successors[label])
		slices.Sort(children)
		for _, child := range children {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = insertSorted(queue, child)
			}
		}
	}

	if len(result) != len(g.tasks) {
		var remaining []string
		for label := range g.tasks {
			if !slices.Contains(result, label) {
				remaining = append(remaining, label)
			}
		}
		slices.Sort(remaining)
		return nil, fmt.Errorf("%w: tasks %s cannot be ordered", ErrCycleDetected, strings.Join(remaining, ", "))
	}
	return result, nil
}

// insertSorted inserts an item into a sorted slice maintaining sort order.
func insertSorted(slice []string, item string) []string {
	idx := sort.SearchStrings(slice, item)
	return slices.Insert(slice, idx, item)
}
