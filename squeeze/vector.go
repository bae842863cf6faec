// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package squeeze

import "math"

// Vector is an immutable multidimensional vector with the small set of
// calculus helpers the squeeze features are built on. Representing a
// measurement as a vector lets the engine derive amplitude from the
// magnitude and a magnitude-free description of the squeeze's shape from
// the direction.
type Vector struct {
	x []float64
}

// NewVector builds a vector from the given components. The slice is copied,
// so the caller may reuse it.
func NewVector(components []float64) Vector {
	x := make([]float64, len(components))
	copy(x, components)
	return Vector{x: x}
}

// Dim returns the number of components.
func (v Vector) Dim() int {
	return len(v.x)
}

// At returns the component at position i.
func (v Vector) At(i int) float64 {
	return v.x[i]
}

// Components returns the components as a fresh slice.
func (v Vector) Components() []float64 {
	out := make([]float64, len(v.x))
	copy(out, v.x)
	return out
}

// Magnitude returns the Euclidean length of the vector.
func (v Vector) Magnitude() float64 {
	sum := 0.0
	for _, c := range v.x {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// Direction returns the unit vector pointing the same way as v. A vector of
// zero magnitude (a sensor at rest) has no direction; the zero vector of the
// same dimension is returned rather than dividing by zero.
func (v Vector) Direction() Vector {
	dir := make([]float64, len(v.x))
	if mag := v.Magnitude(); mag > 0 {
		for i, c := range v.x {
			dir[i] = c / mag
		}
	}
	return Vector{x: dir}
}

// Dot returns the dot product between the unit directions of v and w. The
// result relates to the angle between the two vectors and is bounded to
// [-1, 1]; for non-negative sensor data it stays in [0, 1], with 1 meaning
// the same squeeze shape regardless of depth. Vectors of different
// dimension yield 0.
func (v Vector) Dot(w Vector) float64 {
	if v.Dim() != w.Dim() {
		return 0
	}
	u1 := v.Direction()
	u2 := w.Direction()
	sum := 0.0
	for i := range u1.x {
		sum += u1.x[i] * u2.x[i]
	}
	return sum
}
