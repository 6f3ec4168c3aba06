package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Material interface for surfaces that can scatter rays.
// Implementations are immutable and may be shared by any number of shapes and goroutines.
type Material interface {
	// Scatter returns the attenuation and the scattered ray for an incoming ray at hit.
	// A false result means the ray was absorbed.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit surface normal, always facing against the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether the ray arrived from outside the surface
	Material  Material  // Material of the hit object (shared, read-only)
}

// SetFaceNormal orients the normal against the ray and records which side was hit.
// outwardNormal must have unit length.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
