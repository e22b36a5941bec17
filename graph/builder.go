package graph

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/issuegraph/core"
)

const (
	// MaxLabelNodes caps how many shared labels become nodes.
	MaxLabelNodes = 10

	// unscoredRelevance sizes record nodes built from bare records.
	unscoredRelevance = 0.5

	recordBaseSize  = 10.0
	recordScaleSize = 20.0
)

// Builder synthesizes relationship graphs from search results or records.
// A Builder holds no per-build state and is safe for concurrent use.
type Builder struct {
	layout    *Layout
	prefilter bool
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithLayout replaces the default layout. A nil layout leaves every node unplaced.
func WithLayout(layout *Layout) Option {
	return func(b *Builder) error {
		b.layout = layout
		return nil
	}
}

// WithCandidatePrefilter restricts similarity comparisons to record pairs that
// share a repository, author or label. Pairs related only by title words are
// then never compared.
func WithCandidatePrefilter(enabled bool) Option {
	return func(b *Builder) error {
		b.prefilter = enabled
		return nil
	}
}

// NewBuilder creates a graph builder with an unseeded default layout.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		layout: NewLayout(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "graph")
	return b, nil
}

// item is one input record with its optional relevance.
type item struct {
	record    *core.Record
	relevance *float64
}

// Build synthesizes a graph from ranked search results.
func (b *Builder) Build(results []*core.ScoredResult) *Data {
	items := make([]item, 0, len(results))
	for _, r := range results {
		if r == nil || r.Record == nil {
			continue
		}
		score := r.RelevanceScore
		items = append(items, item{record: r.Record, relevance: &score})
	}
	return b.build(items)
}

// BuildFromRecords synthesizes a graph from records that carry no relevance.
// Record nodes are sized as if scored 0.5 and have no relevance metadata.
func (b *Builder) BuildFromRecords(records []*core.Record) *Data {
	items := make([]item, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		items = append(items, item{record: r})
	}
	return b.build(items)
}

// graphState accumulates one build. Nodes are appended before any edge that
// references them.
type graphState struct {
	data      *Data
	nodeIndex map[string]*Node
	edgeIndex map[string]struct{}
}

func (s *graphState) addNode(n *Node) *Node {
	if existing, ok := s.nodeIndex[n.ID]; ok {
		return existing
	}
	s.nodeIndex[n.ID] = n
	s.data.Nodes = append(s.data.Nodes, n)
	return n
}

func (s *graphState) addEdge(edgeType EdgeType, source, target string, weight float64, reason string) {
	if source == target {
		return
	}
	if _, ok := s.nodeIndex[source]; !ok {
		return
	}
	if _, ok := s.nodeIndex[target]; !ok {
		return
	}
	id := edgeID(edgeType, source, target)
	if _, ok := s.edgeIndex[id]; ok {
		return
	}
	s.edgeIndex[id] = struct{}{}
	s.data.Edges = append(s.data.Edges, &Edge{
		ID:     id,
		Source: source,
		Target: target,
		Type:   edgeType,
		Weight: weight,
		Width:  1 + weight*4,
		Color:  edgeColors[edgeType],
		Reason: reason,
	})
}

func (b *Builder) build(items []item) *Data {
	s := &graphState{
		data: &Data{
			ID:       uuid.NewString(),
			Nodes:    []*Node{},
			Edges:    []*Edge{},
			Clusters: []*Cluster{},
		},
		nodeIndex: make(map[string]*Node),
		edgeIndex: make(map[string]struct{}),
	}

	// 1. Record nodes, first occurrence wins
	records := make([]*core.Record, 0, len(items))
	for _, it := range items {
		id := recordNodeID(it.record)
		if _, dup := s.nodeIndex[id]; dup {
			continue
		}
		s.addNode(newRecordNode(it.record, it.relevance))
		records = append(records, it.record)
	}

	// 2-3. Repository and user nodes, deduplicated by value
	repoCounts := make(map[string]int)
	userCounts := make(map[string]int)
	for _, r := range records {
		if r.Repository != "" {
			repoCounts[r.Repository]++
		}
		if r.Author.Login != "" {
			userCounts[r.Author.Login]++
		}
	}
	for _, r := range records {
		if r.Repository != "" {
			s.addNode(newRepositoryNode(r.Repository, repoCounts[r.Repository]))
		}
	}
	for _, r := range records {
		if r.Author.Login != "" {
			s.addNode(newUserNode(r.Author, userCounts[r.Author.Login]))
		}
	}

	// 4. Label nodes for labels shared by more than one record
	labels := topSharedLabels(records)
	for _, l := range labels {
		s.addNode(newLabelNode(l.name, l.color, l.count))
	}

	// 5. Structural edges
	for _, r := range records {
		id := recordNodeID(r)
		if r.Repository != "" {
			s.addEdge(EdgeTypeCoRepository, id, repositoryNodeID(r.Repository), 1, "in repository "+r.Repository)
		}
		if r.Author.Login != "" {
			s.addEdge(EdgeTypeCoAuthor, id, userNodeID(r.Author.Login), 1, "authored by "+r.Author.Login)
		}
		for _, l := range r.Labels {
			s.addEdge(EdgeTypeSharedLabel, id, labelNodeID(l.Name), 1, "labeled "+l.Name)
		}
	}

	// 6. Similarity edges
	compared := 0
	for _, p := range candidatePairs(records, b.prefilter) {
		compared++
		a, c := records[p[0]], records[p[1]]
		sim := Similarity(a, c)
		if sim <= SimilarityThreshold {
			continue
		}
		s.addEdge(EdgeTypeSimilarity, recordNodeID(a), recordNodeID(c), sim,
			fmt.Sprintf("similarity %.2f", sim))
	}

	// 7. Clusters and layout
	s.data.Clusters = assignClusters(s.data.Nodes)
	if b.layout != nil {
		b.layout.Apply(s.data)
	}
	s.data.Stats = ComputeStats(s.data)

	b.logger.Debug("built graph",
		"records", len(records),
		"nodes", s.data.Stats.Nodes,
		"edges", s.data.Stats.Edges,
		"pairsCompared", compared)

	return s.data
}

// recordNodeID namespaces the record ID by kind. Records that were never
// stored get the same content ID storage would assign.
func recordNodeID(r *core.Record) string {
	id := r.Id
	if id == 0 {
		id = core.RecordID(r.Kind, r.Repository, r.Number)
	}
	return r.Kind.String() + "-" + strconv.FormatUint(uint64(id), 10)
}

func repositoryNodeID(name string) string {
	return "repo-" + name
}

func userNodeID(login string) string {
	return "user-" + login
}

func labelNodeID(name string) string {
	return "label-" + name
}

// edgeID is deterministic in the edge type and endpoints. Similarity edges
// are undirected, so their endpoints are ordered first.
func edgeID(edgeType EdgeType, source, target string) string {
	if edgeType == EdgeTypeSimilarity && target < source {
		source, target = target, source
	}
	return string(edgeType) + ":" + source + ":" + target
}

func newRecordNode(r *core.Record, relevance *float64) *Node {
	sizeScore := unscoredRelevance
	if relevance != nil {
		sizeScore = *relevance
	}

	subtitle := "#" + strconv.Itoa(r.Number)
	if r.Repository != "" {
		subtitle = r.Repository + subtitle
	}

	meta := NodeMetadata{
		Kind:           r.Kind.String(),
		Repository:     r.Repository,
		State:          r.State.String(),
		Author:         r.Author.Login,
		Labels:         r.LabelNames(),
		RelevanceScore: relevance,
		URL:            r.URL,
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		meta.CreatedAt = &created
	}
	if len(meta.Labels) == 0 {
		meta.Labels = nil
	}

	return &Node{
		ID:       recordNodeID(r),
		Type:     NodeTypeRecord,
		Title:    r.Title,
		Subtitle: subtitle,
		Size:     recordBaseSize + sizeScore*recordScaleSize,
		Color:    recordColor(r.Kind),
		Group:    r.Repository,
		Metadata: meta,
	}
}

func recordColor(kind core.RecordKind) string {
	switch kind {
	case core.RecordKindPullRequest:
		return colorPullRequest
	case core.RecordKindDiscussion:
		return colorDiscussion
	default:
		return colorIssue
	}
}

func newRepositoryNode(name string, count int) *Node {
	return &Node{
		ID:       repositoryNodeID(name),
		Type:     NodeTypeRepository,
		Title:    name,
		Subtitle: pluralRecords(count),
		Size:     min(15+float64(count)*2, 40),
		Color:    colorRepository,
		Group:    name,
		Metadata: NodeMetadata{Repository: name, Count: count},
	}
}

func newUserNode(u core.User, count int) *Node {
	subtitle := u.Name
	if subtitle == "" {
		subtitle = pluralRecords(count)
	}
	return &Node{
		ID:       userNodeID(u.Login),
		Type:     NodeTypeUser,
		Title:    u.Login,
		Subtitle: subtitle,
		Size:     min(10+float64(count)*2, 30),
		Color:    colorUser,
		Metadata: NodeMetadata{Author: u.Login, Count: count},
	}
}

func newLabelNode(name, color string, count int) *Node {
	c := colorLabel
	if color != "" {
		c = "#" + strings.TrimPrefix(color, "#")
	}
	return &Node{
		ID:       labelNodeID(name),
		Type:     NodeTypeLabel,
		Title:    name,
		Subtitle: pluralRecords(count),
		Size:     min(8+float64(count)*2, 25),
		Color:    c,
		Metadata: NodeMetadata{Labels: []string{name}, Count: count},
	}
}

func pluralRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return strconv.Itoa(n) + " records"
}

type labelFrequency struct {
	name  string
	color string
	count int
}

// topSharedLabels returns labels carried by more than one record, most
// frequent first (ties by name), capped at MaxLabelNodes.
func topSharedLabels(records []*core.Record) []labelFrequency {
	freq := make(map[string]*labelFrequency)
	for _, r := range records {
		seen := make(map[string]struct{}, len(r.Labels))
		for _, l := range r.Labels {
			if l.Name == "" {
				continue
			}
			if _, ok := seen[l.Name]; ok {
				continue
			}
			seen[l.Name] = struct{}{}
			f, ok := freq[l.Name]
			if !ok {
				f = &labelFrequency{name: l.Name, color: l.Color}
				freq[l.Name] = f
			}
			f.count++
		}
	}

	shared := make([]labelFrequency, 0, len(freq))
	for _, f := range freq {
		if f.count > 1 {
			shared = append(shared, *f)
		}
	}
	sort.Slice(shared, func(i, j int) bool {
		if shared[i].count != shared[j].count {
			return shared[i].count > shared[j].count
		}
		return shared[i].name < shared[j].name
	})
	if len(shared) > MaxLabelNodes {
		shared = shared[:MaxLabelNodes]
	}
	return shared
}
