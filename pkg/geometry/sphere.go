package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere. The material is shared, not copied.
func NewSphere(center core.Vec3, radius float64, mat material.Material) (*Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	if mat == nil {
		return nil, ErrNilMaterial
	}
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}, nil
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2*halfB*t + c = 0
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root <= tMin || root > tMax {
		// Try the farther intersection point
		root = (-halfB + sqrtD) / a
		if root <= tMin || root > tMax {
			return nil, false
		}
	}

	hitRecord := &material.HitRecord{
		T:        root,
		Point:    ray.At(root),
		Material: s.Material,
	}

	// Outward normal from center to hit point, unit length by construction
	outwardNormal := hitRecord.Point.Subtract(s.Center).Divide(s.Radius)
	hitRecord.SetFaceNormal(ray, outwardNormal)

	return hitRecord, true
}
