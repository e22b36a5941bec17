package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportJSON serializes the graph to indented JSON.
func ExportJSON(data *Data) ([]byte, error) {
	if data == nil {
		return nil, ErrNilGraph
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportDOT renders the graph as an undirected Graphviz document. Clusters
// become subgraphs and placed nodes carry a pos attribute.
func ExportDOT(data *Data) string {
	var b strings.Builder
	b.WriteString("graph issues {\n")
	b.WriteString("  node [fontname=\"Helvetica\" style=filled];\n")
	b.WriteString("  edge [fontname=\"Helvetica\" fontsize=10];\n\n")
	if data == nil {
		b.WriteString("}\n")
		return b.String()
	}

	clustered := make(map[string]struct{})
	// Names that sanitize alike stay distinct through the index.
	for i, c := range data.Clusters {
		fmt.Fprintf(&b, "  subgraph cluster_%d_%s {\n", i, sanitizeDOTID(c.Name))
		fmt.Fprintf(&b, "    label=%s;\n", quoteDOT(c.Name))
		b.WriteString("    style=dashed;\n")
		fmt.Fprintf(&b, "    color=%s;\n", quoteDOT(colorRepository))
		for _, id := range c.Members {
			if n := data.Node(id); n != nil {
				b.WriteString("    " + dotNode(n) + "\n")
				clustered[id] = struct{}{}
			}
		}
		b.WriteString("  }\n\n")
	}

	for _, n := range data.Nodes {
		if _, ok := clustered[n.ID]; ok {
			continue
		}
		b.WriteString("  " + dotNode(n) + "\n")
	}
	b.WriteString("\n")

	for _, e := range data.Edges {
		style := "solid"
		if e.Type == EdgeTypeSimilarity {
			style = "dashed"
		}
		fmt.Fprintf(&b, "  %s -- %s [style=%s color=%s penwidth=%.2f label=%s];\n",
			quoteDOT(e.Source), quoteDOT(e.Target), style, quoteDOT(e.Color), e.Width, quoteDOT(string(e.Type)))
	}

	b.WriteString("}\n")
	return b.String()
}

func dotNode(n *Node) string {
	attrs := fmt.Sprintf("label=%s shape=%s fillcolor=%s", quoteDOT(n.Title), dotShape(n.Type), quoteDOT(n.Color))
	if n.Position != nil {
		attrs += fmt.Sprintf(" pos=\"%.1f,%.1f!\"", n.Position.X, n.Position.Y)
	}
	return quoteDOT(n.ID) + " [" + attrs + "];"
}

func dotShape(t NodeType) string {
	switch t {
	case NodeTypeRepository:
		return "box"
	case NodeTypeUser:
		return "ellipse"
	case NodeTypeLabel:
		return "note"
	default:
		return "circle"
	}
}

func quoteDOT(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}

func sanitizeDOTID(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}
