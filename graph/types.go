package graph

import (
	"time"
)

// NodeType tags the variant of a graph node.
type NodeType string

const (
	NodeTypeRecord     NodeType = "record"
	NodeTypeRepository NodeType = "repository"
	NodeTypeUser       NodeType = "user"
	NodeTypeLabel      NodeType = "label"
)

// EdgeType describes why two nodes are connected.
type EdgeType string

const (
	EdgeTypeCoRepository EdgeType = "co-repository"
	EdgeTypeCoAuthor     EdgeType = "co-author"
	EdgeTypeSharedLabel  EdgeType = "shared-label"
	EdgeTypeSimilarity   EdgeType = "similarity"
)

// Position is a 2D canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeMetadata carries optional per-node details for rendering.
type NodeMetadata struct {
	Kind           string     `json:"kind,omitempty"`
	Repository     string     `json:"repository,omitempty"`
	State          string     `json:"state,omitempty"`
	Author         string     `json:"author,omitempty"`
	Labels         []string   `json:"labels,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	RelevanceScore *float64   `json:"relevance_score,omitempty"`
	URL            string     `json:"url,omitempty"`
	Count          int        `json:"count,omitempty"` // Input records referencing a repository, user or label node
}

// Node is a vertex of the relationship graph.
type Node struct {
	ID       string       `json:"id"`
	Type     NodeType     `json:"type"`
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle,omitempty"`
	Size     float64      `json:"size"`
	Color    string       `json:"color"`
	Group    string       `json:"group,omitempty"`
	Position *Position    `json:"position,omitempty"` // nil until placed by the layout
	Metadata NodeMetadata `json:"metadata"`
}

// Edge is an undirected weighted connection between two nodes.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
	Weight float64  `json:"weight"`
	Width  float64  `json:"width"`
	Color  string   `json:"color"`
	Reason string   `json:"reason"`
}

// Cluster groups the nodes that share a repository.
type Cluster struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Color   string   `json:"color"`
	Center  Position `json:"center"`
}

// Stats summarizes a built graph.
type Stats struct {
	Nodes       int              `json:"nodes"`
	Edges       int              `json:"edges"`
	Clusters    int              `json:"clusters"`
	NodesByType map[NodeType]int `json:"nodes_by_type"`
	EdgesByType map[EdgeType]int `json:"edges_by_type"`
	Density     float64          `json:"density"`
}

// Data is one synthesized relationship graph.
type Data struct {
	ID       string     `json:"id"`
	Nodes    []*Node    `json:"nodes"`
	Edges    []*Edge    `json:"edges"`
	Clusters []*Cluster `json:"clusters"`
	Stats    Stats      `json:"stats"`
}

// Node returns the node with the given ID, or nil.
func (d *Data) Node(id string) *Node {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Fixed palette.
const (
	colorIssue       = "#2da44e"
	colorPullRequest = "#8250df"
	colorDiscussion  = "#bf8700"
	colorRepository  = "#0969da"
	colorUser        = "#57606a"
	colorLabel       = "#d1242f"
	colorSimilarity  = "#a475f9"

	// clusterAlpha is appended to the repository colour for translucent cluster fills.
	clusterAlpha = "1a"
)

var edgeColors = map[EdgeType]string{
	EdgeTypeCoRepository: colorRepository,
	EdgeTypeCoAuthor:     colorUser,
	EdgeTypeSharedLabel:  colorLabel,
	EdgeTypeSimilarity:   colorSimilarity,
}
