package pipebase

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/LSST/pipe-base/pgraph"
)

// chainTask is a test helper: a task reading and writing whole dataset types
// with matching definitions.
func chainTask(label string, reads, writes []string) *TaskDef {
	task := &TaskDef{Label: label, TaskClass: "tasks." + label}
	for _, name := range reads {
		task.Connections.Inputs = append(task.Connections.Inputs, Input{
			Name: name + "_in", DatasetType: name,
			StorageClass: "Image", Dimensions: []string{"visit", "detector"},
		})
	}
	for _, name := range writes {
		task.Connections.Outputs = append(task.Connections.Outputs, Output{
			Name: name + "_out", DatasetType: name,
			StorageClass: "Image", Dimensions: []string{"visit", "detector"},
		})
	}
	return task
}

func TestPipelineGraph(t *testing.T) {
	t.Run("builds and resolves", func(t *testing.T) {
		p := Pipeline{
			chainTask("isr", []string{"raw"}, []string{"postISRCCD"}),
			chainTask("calibrate", []string{"postISRCCD"}, []string{"calexp"}),
		}
		g, err := p.Graph()
		assert.NoError(t, err)
		assert.NoError(t, g.Resolve(pgraph.NewMapRegistry()))

		node, ok := g.DatasetTypeNode("postISRCCD")
		assert.True(t, ok)
		assert.False(t, node.IsPrerequisite)

		producer, ok := g.Producer("calexp")
		assert.True(t, ok)
		assert.Equal(t, "calibrate", producer)
	})

	t.Run("invalid connections fail the build", func(t *testing.T) {
		task := chainTask("isr", []string{"raw"}, nil)
		task.Connections.Inputs = append(task.Connections.Inputs, Input{
			Name: "raw_in", DatasetType: "other",
		})
		_, err := Pipeline{task}.Graph()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate connection name")
	})

	t.Run("prerequisite inputs map to prerequisite edges", func(t *testing.T) {
		task := chainTask("astrom", nil, []string{"matches"})
		task.Connections.PrerequisiteInputs = []Input{{
			Name: "refcat_in", DatasetType: "refcat",
			StorageClass: "Catalog", Dimensions: []string{"htm7"},
		}}
		g, err := Pipeline{task}.Graph()
		assert.NoError(t, err)
		assert.NoError(t, g.Resolve(pgraph.NewMapRegistry()))

		node, ok := g.DatasetTypeNode("refcat")
		assert.True(t, ok)
		assert.True(t, node.IsPrerequisite)
	})
}

func TestOrderPipeline(t *testing.T) {
	t.Run("orders producers before consumers", func(t *testing.T) {
		p := Pipeline{
			chainTask("coadd", []string{"calexp"}, []string{"deepCoadd"}),
			chainTask("isr", []string{"raw"}, []string{"postISRCCD"}),
			chainTask("calibrate", []string{"postISRCCD"}, []string{"calexp"}),
		}
		ordered, err := OrderPipeline(p)
		assert.NoError(t, err)

		var labels []string
		for _, task := range ordered {
			labels = append(labels, task.Label)
		}
		assert.Equal(t, []string{"isr", "calibrate", "coadd"}, labels)
	})

	t.Run("cycles are reported", func(t *testing.T) {
		p := Pipeline{
			chainTask("a", []string{"y"}, []string{"x"}),
			chainTask("b", []string{"x"}, []string{"y"}),
		}
		_, err := OrderPipeline(p)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, pgraph.ErrCycleDetected))
	})
}
