package engine

import (
	"fmt"
	"math"
)

// Point is a position in track (pixel) coordinates.
type Point struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Path is the ordered, immutable list of waypoints every balloon follows.
// Index 0 is the spawn point, the last index is the leak point.
type Path struct {
	points []Point
}

// NewPath copies points into a Path. An empty list is a load error.
func NewPath(points []Point) (*Path, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("new path: %w", ErrEmptyPath)
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	return &Path{points: cp}, nil
}

func (p *Path) Len() int { return len(p.points) }

// At returns waypoint i. Callers keep i inside [0, Len()).
func (p *Path) At(i int) Point { return p.points[i] }

func (p *Path) Start() Point { return p.points[0] }

func (p *Path) End() Point { return p.points[len(p.points)-1] }

// Points returns a copy of the waypoint list.
func (p *Path) Points() []Point {
	cp := make([]Point, len(p.points))
	copy(cp, p.points)
	return cp
}

// PlacementValidator decides whether a tower may be placed at pos given the
// towers already on the field.
type PlacementValidator interface {
	ValidPlacement(pos Point, towers []*Tower) bool
}

// TrackPlacement keeps towers off the track and away from each other.
type TrackPlacement struct {
	Path          *Path
	PathClearance float64
	TowerSpacing  float64
	Width         float64
	Height        float64
}

// NewTrackPlacement returns the default placement rules for an 800x600 board.
func NewTrackPlacement(path *Path) *TrackPlacement {
	return &TrackPlacement{
		Path:          path,
		PathClearance: 15,
		TowerSpacing:  30,
		Width:         800,
		Height:        600,
	}
}

func (tp *TrackPlacement) ValidPlacement(pos Point, towers []*Tower) bool {
	if tp.Width > 0 && (pos.X < 0 || pos.X >= tp.Width) {
		return false
	}
	if tp.Height > 0 && (pos.Y < 0 || pos.Y >= tp.Height) {
		return false
	}
	for _, wp := range tp.Path.points {
		if pos.Dist(wp) < tp.PathClearance {
			return false
		}
	}
	for _, t := range towers {
		if pos.Dist(t.Pos) < tp.TowerSpacing {
			return false
		}
	}
	return true
}
