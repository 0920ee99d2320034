package signal

import "math"

// Point is a location in normalized [0,1]x[0,1] image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is a rectangle in normalized [0,1]x[0,1] image coordinates,
// expressed as top-left corner plus width and height.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the normalized area of the box (0-1).
func (b BoundingBox) Area() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// Center returns the center point of the box.
func (b BoundingBox) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
