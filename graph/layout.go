package graph

import (
	"math"
	"math/rand/v2"
)

// Default canvas geometry.
const (
	DefaultWidth          = 1200.0
	DefaultHeight         = 800.0
	DefaultRingRadius     = 300.0
	DefaultMinRecordDist  = 80.0
	DefaultMaxRecordDist  = 140.0
	userRingScale         = 1.6
	labelScatterScale     = 0.5
	scatterJitterFraction = 0.25
)

// Layout places nodes on a 2D canvas in a single pass.
//
// Repositories sit evenly spaced on a ring around the canvas center. Each
// record lands at a random offset (uniform angle, distance in
// [MinRecordDist, MaxRecordDist]) from its repository. Users are scattered on
// an outer ring and labels near the center. Records without a placed
// repository keep a nil position. There is no force relaxation.
type Layout struct {
	Width         float64
	Height        float64
	RingRadius    float64
	MinRecordDist float64
	MaxRecordDist float64

	seed   uint64
	seeded bool
}

// LayoutOption configures a Layout.
type LayoutOption func(*Layout)

// WithSeed makes every Apply reproducible for the same input.
func WithSeed(seed uint64) LayoutOption {
	return func(l *Layout) {
		l.seed = seed
		l.seeded = true
	}
}

// WithCanvas sets the canvas size.
func WithCanvas(width, height float64) LayoutOption {
	return func(l *Layout) {
		l.Width = width
		l.Height = height
	}
}

// WithRingRadius sets the radius of the repository ring.
func WithRingRadius(radius float64) LayoutOption {
	return func(l *Layout) {
		l.RingRadius = radius
	}
}

// NewLayout creates a layout with the default geometry and a fresh seed per Apply.
func NewLayout(opts ...LayoutOption) *Layout {
	l := &Layout{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		RingRadius:    DefaultRingRadius,
		MinRecordDist: DefaultMinRecordDist,
		MaxRecordDist: DefaultMaxRecordDist,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// newRand returns a per-call source so concurrent Applies never share state.
func (l *Layout) newRand() *rand.Rand {
	seed := l.seed
	if !l.seeded {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Apply assigns positions to the nodes of data and anchors cluster centers on
// their repository.
func (l *Layout) Apply(data *Data) {
	if data == nil {
		return
	}
	rng := l.newRand()
	cx, cy := l.Width/2, l.Height/2

	var repos []*Node
	for _, n := range data.Nodes {
		if n.Type == NodeTypeRepository {
			repos = append(repos, n)
		}
	}

	// Repository ring
	anchors := make(map[string]Position, len(repos))
	for i, n := range repos {
		angle := 2 * math.Pi * float64(i) / float64(len(repos))
		pos := Position{
			X: cx + l.RingRadius*math.Cos(angle),
			Y: cy + l.RingRadius*math.Sin(angle),
		}
		n.Position = &pos
		anchors[n.Title] = pos
	}

	for _, n := range data.Nodes {
		switch n.Type {
		case NodeTypeRecord:
			anchor, ok := anchors[n.Metadata.Repository]
			if n.Metadata.Repository == "" || !ok {
				n.Position = nil
				continue
			}
			angle := rng.Float64() * 2 * math.Pi
			dist := l.MinRecordDist + rng.Float64()*(l.MaxRecordDist-l.MinRecordDist)
			n.Position = &Position{
				X: anchor.X + dist*math.Cos(angle),
				Y: anchor.Y + dist*math.Sin(angle),
			}
		case NodeTypeUser:
			n.Position = l.scatter(rng, cx, cy, l.RingRadius*userRingScale)
		case NodeTypeLabel:
			n.Position = l.scatter(rng, cx, cy, l.RingRadius*labelScatterScale)
		}
	}

	for _, c := range data.Clusters {
		if anchor, ok := anchors[c.Name]; ok {
			c.Center = anchor
		}
	}
}

// scatter picks a random point near a circle of the given radius.
func (l *Layout) scatter(rng *rand.Rand, cx, cy, radius float64) *Position {
	angle := rng.Float64() * 2 * math.Pi
	r := radius * (1 + (rng.Float64()*2-1)*scatterJitterFraction)
	return &Position{
		X: cx + r*math.Cos(angle),
		Y: cy + r*math.Sin(angle),
	}
}
