package viz

import (
	"slices"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/LSST/pipe-base/pgraph"
)

func calibrationGraph(t *testing.T) *pgraph.PipelineGraph {
	t.Helper()
	g := pgraph.New()
	isr := &pgraph.TaskNode{
		Label:      "isr",
		TaskClass:  "lsst.ip.isr.IsrTask",
		Dimensions: []string{"visit", "detector"},
		Reads: []pgraph.ReadEdge{{
			Connection: "raw_in", DatasetType: "raw",
			StorageClass: "Image", Dimensions: []string{"visit", "detector"},
		}},
		Writes: []pgraph.WriteEdge{{
			Connection: "postISRCCD_out", DatasetType: "postISRCCD",
			StorageClass: "Image", Dimensions: []string{"visit", "detector"},
		}},
	}
	calibrate := &pgraph.TaskNode{
		Label:     "calibrate",
		TaskClass: "lsst.pipe.tasks.CalibrateTask",
		Reads: []pgraph.ReadEdge{{
			Connection: "postISRCCD_in", DatasetType: "postISRCCD",
			StorageClass: "Image", Dimensions: []string{"visit", "detector"},
		}},
		Writes: []pgraph.WriteEdge{{
			Connection: "calexp_out", DatasetType: "calexp",
			StorageClass: "Image", Dimensions: []string{"visit", "detector"},
		}},
		InitWrites: []pgraph.WriteEdge{{
			Connection: "schema_out", DatasetType: "src_schema", StorageClass: "Schema",
		}},
	}
	assert.NoError(t, g.AddTask(isr))
	assert.NoError(t, g.AddTask(calibrate))
	return g
}

func TestExport(t *testing.T) {
	t.Run("bipartite export", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})

		isr := pgraph.TaskKey("isr").String()
		raw := pgraph.DatasetTypeKey("raw").String()
		post := pgraph.DatasetTypeKey("postISRCCD").String()
		calibrate := pgraph.TaskKey("calibrate").String()

		assert.True(t, g.Has(isr))
		assert.True(t, g.Has(raw))
		assert.Equal(t, []string{isr}, g.Successors(raw))
		assert.Equal(t, []string{post}, g.Successors(isr))
		assert.Equal(t, []string{calibrate}, g.Successors(post))

		// Init nodes are excluded by default, but their dataset types remain
		// as orphaned vertices only when produced by an included node; here
		// src_schema has no included producer and keeps no in-edge.
		schema := pgraph.DatasetTypeKey("src_schema").String()
		assert.True(t, g.Has(schema))
		assert.Equal(t, 0, g.InDegree(schema))
	})

	t.Run("init nodes", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true, Init: true})

		initID := pgraph.TaskInitKey("calibrate").String()
		taskID := pgraph.TaskKey("calibrate").String()
		schema := pgraph.DatasetTypeKey("src_schema").String()

		assert.True(t, g.Has(initID))
		// Init precedes its task, and produces its init outputs.
		succ := g.Successors(initID)
		assert.True(t, slices.Contains(succ, taskID))
		assert.True(t, slices.Contains(succ, schema))

		// isr declares no init connections and gets no init node.
		assert.False(t, g.Has(pgraph.TaskInitKey("isr").String()))
	})

	t.Run("task-only projection", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{})

		isr := pgraph.TaskKey("isr").String()
		calibrate := pgraph.TaskKey("calibrate").String()
		assert.Equal(t, 2, g.NumNodes())
		assert.Equal(t, []string{calibrate}, g.Successors(isr))
	})

	t.Run("resolved attributes are carried", func(t *testing.T) {
		pg := calibrationGraph(t)
		assert.NoError(t, pg.Resolve(pgraph.NewMapRegistry()))
		g := Export(pg, ExportOptions{DatasetTypes: true})

		node, ok := g.Node(pgraph.DatasetTypeKey("postISRCCD").String())
		assert.True(t, ok)
		assert.Equal(t, "Image", node.StorageClass)
		assert.Equal(t, "detector, visit", node.Dimensions)

		task, ok := g.Node(pgraph.TaskKey("isr").String())
		assert.True(t, ok)
		assert.Equal(t, "lsst.ip.isr.IsrTask", task.TaskClass)
	})

	t.Run("exported copy is independent", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})
		before := len(pg.Tasks())
		g.RemoveNode(pgraph.TaskKey("isr").String())
		assert.Equal(t, before, len(pg.Tasks()))
	})
}
