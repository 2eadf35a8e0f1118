package viz

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/LSST/pipe-base/pgraph"
)

func TestDot(t *testing.T) {
	t.Run("renders nodes and edges", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})

		src, err := Dot(g, NodeAttributeOptions{}, nil)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(src, "digraph pipeline"))
		assert.Contains(t, src, `"task:isr"`)
		assert.Contains(t, src, `"dataset-type:raw"`)
		assert.Contains(t, src, `"dataset-type:raw"->"task:isr"`)
		assert.Contains(t, src, "shape=box")
		assert.Contains(t, src, "shape=ellipse")
	})

	t.Run("attributes become label lines", func(t *testing.T) {
		pg := calibrationGraph(t)
		assert.NoError(t, pg.Resolve(pgraph.NewMapRegistry()))
		g := Export(pg, ExportOptions{DatasetTypes: true})

		src, err := Dot(g, NodeAttributeOptions{StorageClasses: true}, nil)
		assert.NoError(t, err)
		assert.Contains(t, src, `\nImage`)
	})

	t.Run("status lines", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})
		overlay := &StatusOverlay{
			Tasks: map[string]TaskStatus{
				"task:isr": {Expected: 4, Succeeded: 4},
			},
			DatasetTypes: map[string]DatasetTypeStatus{},
		}
		src, err := Dot(g, NodeAttributeOptions{}, overlay)
		assert.NoError(t, err)
		assert.Contains(t, src, "succeeded 4/4")
	})
}

func TestPrinter(t *testing.T) {
	t.Run("one row per node", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})
		layout := NewLayout(g)

		var buf strings.Builder
		printer := &Printer{}
		assert.NoError(t, printer.Print(&buf, layout))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		assert.Equal(t, g.NumNodes(), len(lines))
		assert.Contains(t, buf.String(), "isr")
		assert.Contains(t, buf.String(), "postISRCCD")
	})

	t.Run("status is appended to labels", func(t *testing.T) {
		pg := calibrationGraph(t)
		g := Export(pg, ExportOptions{DatasetTypes: true})
		layout := NewLayout(g)

		var buf strings.Builder
		printer := &Printer{Overlay: &StatusOverlay{
			Tasks: map[string]TaskStatus{
				"task:isr": {Expected: 3, Succeeded: 2, Failed: 1},
			},
		}}
		assert.NoError(t, printer.Print(&buf, layout))
		assert.Contains(t, buf.String(), "succeeded 2/3, failed 1")
	})
}
