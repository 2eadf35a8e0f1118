package viz

import (
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"

	"github.com/LSST/pipe-base/pgraph"
)

const dotGraphName = "pipeline"

// Dot renders the display graph as Graphviz DOT source. Tasks draw as boxes
// and dataset types as ellipses; the selected attributes and any status
// overlay become extra label lines.
func Dot(g *Graph, options NodeAttributeOptions, overlay *StatusOverlay) (string, error) {
	gv := gographviz.NewGraph()
	if err := gv.SetName(dotGraphName); err != nil {
		return "", err
	}
	if err := gv.SetDir(true); err != nil {
		return "", err
	}
	for _, id := range g.Nodes() {
		node, _ := g.Node(id)
		attrs := map[string]string{
			"label": strconv.Quote(dotLabel(id, node, options, overlay)),
			"shape": dotShape(node),
		}
		if node != nil && node.Merged() {
			attrs["peripheries"] = "2"
		}
		if err := gv.AddNode(dotGraphName, strconv.Quote(id), attrs); err != nil {
			return "", err
		}
	}
	for _, from := range g.Nodes() {
		for _, to := range g.Successors(from) {
			if err := gv.AddEdge(strconv.Quote(from), strconv.Quote(to), true, nil); err != nil {
				return "", err
			}
		}
	}
	return gv.String(), nil
}

func dotShape(n *Node) string {
	if n == nil {
		return "box"
	}
	switch n.Type {
	case pgraph.NodeTypeTaskInit:
		return "box3d"
	case pgraph.NodeTypeDatasetType:
		return "ellipse"
	}
	return "box"
}

func dotLabel(id string, n *Node, options NodeAttributeOptions, overlay *StatusOverlay) string {
	if n == nil {
		return id
	}
	lines := []string{n.Label()}
	if options.Dimensions && n.Dimensions != "" {
		lines = append(lines, "{"+n.Dimensions+"}")
	}
	if options.StorageClasses && n.StorageClass != "" {
		lines = append(lines, n.StorageClass)
	}
	if options.TaskClasses && n.TaskClass != "" {
		lines = append(lines, n.TaskClass)
	}
	if overlay != nil {
		if status, ok := overlay.Tasks[id]; ok {
			lines = append(lines, formatTaskStatus(status))
		}
		if status, ok := overlay.DatasetTypes[id]; ok {
			lines = append(lines, "produced "+strconv.Itoa(status.Produced)+"/"+strconv.Itoa(status.Expected))
		}
	}
	return strings.Join(lines, "\n")
}
