package geo

import "math/rand"

// Position is a point inside the bounding box.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is the rectangular region devices are confined to.
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LngMin float64
	LngMax float64
}

// Contains reports whether p lies within the box.
func (b BoundingBox) Contains(p Position) bool {
	return p.Latitude >= b.LatMin && p.Latitude <= b.LatMax &&
		p.Longitude >= b.LngMin && p.Longitude <= b.LngMax
}

// Walker generates random-walk trajectories inside a bounding box. The
// RNG is injected so tests can fix a seed.
type Walker struct {
	box BoundingBox
	rng *rand.Rand
}

// NewWalker creates a walker over the given box.
func NewWalker(box BoundingBox, rng *rand.Rand) *Walker {
	return &Walker{box: box, rng: rng}
}

// Box returns the walker's bounding box.
func (w *Walker) Box() BoundingBox {
	return w.box
}

// Initial samples a starting position uniformly per axis.
func (w *Walker) Initial() Position {
	return Position{
		Latitude:  w.box.LatMin + w.rng.Float64()*(w.box.LatMax-w.box.LatMin),
		Longitude: w.box.LngMin + w.rng.Float64()*(w.box.LngMax-w.box.LngMin),
	}
}

// Step perturbs each axis by a uniform delta in [-maxDelta, maxDelta] and
// clamps the result back into the box. A device pushed against an edge
// stays pinned there until a delta points back inward.
func (w *Walker) Step(current Position, maxDelta float64) Position {
	deltaLat := (w.rng.Float64()*2 - 1) * maxDelta
	deltaLng := (w.rng.Float64()*2 - 1) * maxDelta

	return Position{
		Latitude:  clamp(current.Latitude+deltaLat, w.box.LatMin, w.box.LatMax),
		Longitude: clamp(current.Longitude+deltaLng, w.box.LngMin, w.box.LngMax),
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
