package viz

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/LSST/pipe-base/pgraph"
)

// TaskStatus counts the quanta of one task by outcome.
type TaskStatus struct {
	Expected  int
	Succeeded int
	Failed    int
	Blocked   int
	Ready     int
	Running   int
	Wonky     int
}

func (s TaskStatus) add(o TaskStatus) TaskStatus {
	s.Expected += o.Expected
	s.Succeeded += o.Succeeded
	s.Failed += o.Failed
	s.Blocked += o.Blocked
	s.Ready += o.Ready
	s.Running += o.Running
	s.Wonky += o.Wonky
	return s
}

// DatasetTypeStatus counts the datasets of one type.
type DatasetTypeStatus struct {
	Expected int
	Produced int
}

func (s DatasetTypeStatus) add(o DatasetTypeStatus) DatasetTypeStatus {
	s.Expected += o.Expected
	s.Produced += o.Produced
	return s
}

// StatusSource supplies execution status by task label and dataset type
// name, typically backed by a provenance store. A false ok means the source
// has no record for that name, which is not an error.
type StatusSource interface {
	TaskStatus(ctx context.Context, label string) (TaskStatus, bool, error)
	DatasetTypeStatus(ctx context.Context, name string) (DatasetTypeStatus, bool, error)
}

// StatusOverlay holds status per display node identity, computed alongside a
// graph rather than written into it. Merged nodes carry the sum of their
// members' statuses.
type StatusOverlay struct {
	Tasks        map[string]TaskStatus
	DatasetTypes map[string]DatasetTypeStatus
}

// AnnotateStatus builds a status overlay for the display graph. The task and
// dataset-type passes query the source concurrently; each pass writes only
// its own map. The graph itself is not modified.
func AnnotateStatus(ctx context.Context, g *Graph, src StatusSource) (*StatusOverlay, error) {
	overlay := &StatusOverlay{
		Tasks:        make(map[string]TaskStatus),
		DatasetTypes: make(map[string]DatasetTypeStatus),
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		for _, id := range g.Nodes() {
			node, _ := g.Node(id)
			if node.Type != pgraph.NodeTypeTask {
				continue
			}
			var sum TaskStatus
			found := false
			for _, key := range node.Keys {
				if key.Type != pgraph.NodeTypeTask {
					continue
				}
				status, ok, err := src.TaskStatus(ctx, key.Name)
				if err != nil {
					return err
				}
				if ok {
					sum = sum.add(status)
					found = true
				}
			}
			if found {
				overlay.Tasks[id] = sum
			}
		}
		return nil
	})
	eg.Go(func() error {
		for _, id := range g.Nodes() {
			node, _ := g.Node(id)
			if node.Type != pgraph.NodeTypeDatasetType {
				continue
			}
			var sum DatasetTypeStatus
			found := false
			for _, key := range node.Keys {
				status, ok, err := src.DatasetTypeStatus(ctx, key.Name)
				if err != nil {
					return err
				}
				if ok {
					sum = sum.add(status)
					found = true
				}
			}
			if found {
				overlay.DatasetTypes[id] = sum
			}
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return overlay, nil
}
