package core

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits x to the inclusive range [lo, hi]
func Clamp[T constraints.Float | constraints.Integer](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// DegreesToRadians converts an angle in degrees to radians
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
