package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/LSST/pipe-base/pgraph"
)

// Printer renders a layout as text, one row per node, with live edges drawn
// as vertical rules through the columns they occupy.
type Printer struct {
	Options NodeAttributeOptions

	// Overlay, when set, appends status counts to node labels.
	Overlay *StatusOverlay
}

// Print writes the layout to w.
func (p *Printer) Print(w io.Writer, layout *Layout) error {
	width := layout.XMax() + 1
	for _, row := range layout.Rows() {
		line := make([]rune, width)
		for i := range line {
			line[i] = ' '
		}
		for _, edge := range row.Continuing {
			if edge.X != row.X {
				line[edge.X] = '│'
			}
		}
		for _, edge := range row.Terminating {
			if edge.X != row.X {
				line[edge.X] = '•'
			}
		}
		line[row.X] = nodeSymbol(row.Node)
		if _, err := fmt.Fprintf(w, "%s %s\n", string(line), p.describe(row.ID, row.Node)); err != nil {
			return err
		}
	}
	return nil
}

func nodeSymbol(n *Node) rune {
	if n == nil {
		return '●'
	}
	switch n.Type {
	case pgraph.NodeTypeTask:
		if n.Merged() {
			return '◉'
		}
		return '●'
	case pgraph.NodeTypeTaskInit:
		return '◍'
	case pgraph.NodeTypeDatasetType:
		if n.Merged() {
			return '◎'
		}
		return '○'
	}
	return '●'
}

func (p *Printer) describe(id string, n *Node) string {
	if n == nil {
		return id
	}
	parts := []string{n.Label()}
	if p.Options.Dimensions && n.Dimensions != "" {
		parts = append(parts, fmt.Sprintf("{%s}", n.Dimensions))
	}
	if p.Options.StorageClasses && n.StorageClass != "" {
		parts = append(parts, n.StorageClass)
	}
	if p.Options.TaskClasses && n.TaskClass != "" {
		parts = append(parts, n.TaskClass)
	}
	if p.Overlay != nil {
		if status, ok := p.Overlay.Tasks[id]; ok {
			parts = append(parts, formatTaskStatus(status))
		}
		if status, ok := p.Overlay.DatasetTypes[id]; ok {
			parts = append(parts, fmt.Sprintf("produced %d/%d", status.Produced, status.Expected))
		}
	}
	return strings.Join(parts, " ")
}

func formatTaskStatus(s TaskStatus) string {
	out := fmt.Sprintf("succeeded %d/%d", s.Succeeded, s.Expected)
	if s.Failed > 0 {
		out += fmt.Sprintf(", failed %d", s.Failed)
	}
	if s.Blocked > 0 {
		out += fmt.Sprintf(", blocked %d", s.Blocked)
	}
	if s.Wonky > 0 {
		out += fmt.Sprintf(", wonky %d", s.Wonky)
	}
	return out
}
