package viz

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// fakeStatusSource serves canned statuses and records what was asked for.
type fakeStatusSource struct {
	tasks    map[string]TaskStatus
	datasets map[string]DatasetTypeStatus
	err      error
}

func (s *fakeStatusSource) TaskStatus(_ context.Context, label string) (TaskStatus, bool, error) {
	if s.err != nil {
		return TaskStatus{}, false, s.err
	}
	status, ok := s.tasks[label]
	return status, ok, nil
}

func (s *fakeStatusSource) DatasetTypeStatus(_ context.Context, name string) (DatasetTypeStatus, bool, error) {
	if s.err != nil {
		return DatasetTypeStatus{}, false, s.err
	}
	status, ok := s.datasets[name]
	return status, ok, nil
}

func TestAnnotateStatus(t *testing.T) {
	t.Run("tasks and dataset types get separate overlays", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})

		src := &fakeStatusSource{
			tasks: map[string]TaskStatus{
				"isr": {Expected: 10, Succeeded: 8, Failed: 2},
			},
			datasets: map[string]DatasetTypeStatus{
				"postISRCCD": {Expected: 10, Produced: 8},
			},
		}
		overlay, err := AnnotateStatus(context.Background(), g, src)
		assert.NoError(t, err)

		status, ok := overlay.Tasks["task:isr"]
		assert.True(t, ok)
		assert.Equal(t, 8, status.Succeeded)
		_, ok = overlay.Tasks["task:calibrate"]
		assert.False(t, ok)

		dsStatus, ok := overlay.DatasetTypes["dataset-type:postISRCCD"]
		assert.True(t, ok)
		assert.Equal(t, 8, dsStatus.Produced)
	})

	t.Run("merged nodes sum member statuses", func(t *testing.T) {
		g := NewGraph()
		a := addTaskNode(g, "a")
		b := addTaskNode(g, "b")
		for _, name := range []string{"d1", "d2"} {
			id := addDatasetNode(g, name, "Image")
			g.AddEdge(a, id)
			g.AddEdge(id, b)
		}
		MergeIntermediates(g, NodeAttributeOptions{})
		mergedID, _ := mergedWith(t, g, "d1", "d2")

		src := &fakeStatusSource{
			datasets: map[string]DatasetTypeStatus{
				"d1": {Expected: 5, Produced: 3},
				"d2": {Expected: 5, Produced: 4},
			},
		}
		overlay, err := AnnotateStatus(context.Background(), g, src)
		assert.NoError(t, err)

		status, ok := overlay.DatasetTypes[mergedID]
		assert.True(t, ok)
		assert.Equal(t, 10, status.Expected)
		assert.Equal(t, 7, status.Produced)
	})

	t.Run("source errors abort annotation", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})
		boom := errors.New("provenance store unavailable")
		_, err := AnnotateStatus(context.Background(), g, &fakeStatusSource{err: boom})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, boom))
	})
}
