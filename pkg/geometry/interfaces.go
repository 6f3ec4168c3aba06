package geometry

import (
	"errors"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

var (
	// ErrInvalidRadius is returned when a sphere is built with a non-positive or non-finite radius
	ErrInvalidRadius = errors.New("sphere radius must be positive")
	// ErrNilMaterial is returned when a shape is built without a material
	ErrNilMaterial = errors.New("shape material must not be nil")
)

// Shape interface for objects that can be hit by rays.
// Hit reports the nearest intersection with tMin < t <= tMax. The returned
// record is owned by the caller.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}
